package models

import "time"

// Session is a server-side refresh credential. Only the SHA-256 hash of the
// opaque token is stored; the token itself lives in the client's cookie.
type Session struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	UserID           string     `json:"user_id" gorm:"index;size:36;not null"`
	RefreshTokenHash string     `json:"-" gorm:"uniqueIndex:uni_sessions_refresh_token_hash;size:64;not null"`
	UserAgent        string     `json:"user_agent" gorm:"size:512"`
	IP               string     `json:"ip" gorm:"size:64"`
	ExpiresAt        time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty" gorm:"index"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Active reports whether the session can still mint access tokens.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

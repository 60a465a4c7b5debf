package storage

import (
	"context"
	"errors"
	"time"
)

// ErrCredentialNotFound indicates that no refresh credential is stored.
var ErrCredentialNotFound = errors.New("refresh credential not found")

// Credential is the client's persisted refresh material: the raw value
// of the server's refresh cookie and when it stops being worth
// presenting. Access tokens are never stored; they live only in memory
// for the lifetime of a process.
type Credential struct {
	Cookie    string    `json:"cookie"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the credential is past its lifetime.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// CredentialStore persists the refresh credential between CLI
// invocations, playing the role a cookie jar plays in a browser.
type CredentialStore interface {
	// SaveCredential stores the credential, replacing any previous one.
	SaveCredential(ctx context.Context, cred *Credential) error

	// GetCredential returns the stored credential.
	// Returns ErrCredentialNotFound if none exists.
	GetCredential(ctx context.Context) (*Credential, error)

	// DeleteCredential removes the stored credential (logout). Deleting
	// an absent credential is not an error.
	DeleteCredential(ctx context.Context) error
}

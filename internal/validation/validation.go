package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// SlugPattern defines the accepted slug format: lowercase latin letters,
// digits and single hyphens, 1-255 characters.
var SlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// emailPattern is a permissive check; deliverability is not our problem,
// only obvious garbage is rejected.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	MinPasswordLen = 8
	// MaxPasswordLen is bcrypt's input limit; longer passwords make
	// GenerateFromPassword fail outright.
	MaxPasswordLen = 72
	MaxSlugLen     = 255
	MaxTitleLen    = 255
	MaxNameLen     = 255
	MaxTagNameLen  = 64
	MaxSummaryLen  = 1024
	MaxCommentLen  = 4096
)

// ValidateEmail checks that email looks like an address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > MaxNameLen {
		return fmt.Errorf("email must not exceed %d characters", MaxNameLen)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("email is not a valid address")
	}
	return nil
}

// ValidatePassword checks minimum password requirements.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLen)
	}
	return nil
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLen)
	}
	return nil
}

// ValidateSlug checks that slug matches the URL-safe format used by the
// reader site.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if len(slug) > MaxSlugLen {
		return fmt.Errorf("slug must not exceed %d characters", MaxSlugLen)
	}
	if !SlugPattern.MatchString(slug) {
		return fmt.Errorf("slug can only contain lowercase letters, numbers, and hyphens")
	}
	return nil
}

// ValidateTitle checks a post title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if len(title) > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}
	return nil
}

// ValidateBody checks a post body.
func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("body cannot be empty")
	}
	return nil
}

// ValidateTagName checks a tag name.
func ValidateTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("tag name cannot be empty")
	}
	if len(name) > MaxTagNameLen {
		return fmt.Errorf("tag name must not exceed %d characters", MaxTagNameLen)
	}
	return nil
}

// ValidateComment checks a reader comment body.
func ValidateComment(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment cannot be empty")
	}
	if len(body) > MaxCommentLen {
		return fmt.Errorf("comment must not exceed %d characters", MaxCommentLen)
	}
	return nil
}

// Slugify derives a slug from free text: lowercase, non-alphanumerics
// collapsed to single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

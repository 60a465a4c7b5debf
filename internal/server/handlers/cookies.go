package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/inkwell-cms/inkwell/pkg/api"
)

// RefreshCookieName is the name of the HTTP-only refresh cookie.
const RefreshCookieName = api.RefreshCookieName

// RefreshCookiePath scopes the cookie to the auth endpoints so it never
// rides along on ordinary API calls.
const RefreshCookiePath = "/api/v1/auth"

// CookieConfig holds refresh-cookie settings. Secret signs the cookie
// value so a tampered cookie is rejected before any database lookup.
type CookieConfig struct {
	Secret []byte
	Domain string
	Secure bool
}

// signCookie produces "<token>.<signature>" with an HMAC-SHA256 signature.
func (c CookieConfig) signCookie(token string) string {
	mac := hmac.New(sha256.New, c.Secret)
	mac.Write([]byte(token))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return token + "." + sig
}

// verifyCookie checks the signature and returns the embedded token.
func (c CookieConfig) verifyCookie(value string) (string, error) {
	i := strings.LastIndexByte(value, '.')
	if i <= 0 || i == len(value)-1 {
		return "", fmt.Errorf("malformed cookie value")
	}
	token, sig := value[:i], value[i+1:]

	mac := hmac.New(sha256.New, c.Secret)
	mac.Write([]byte(token))
	expected := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", fmt.Errorf("invalid cookie signature")
	}

	return token, nil
}

// SetRefreshCookie writes the signed refresh cookie.
func (c CookieConfig) SetRefreshCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    c.signCookie(token),
		Path:     RefreshCookiePath,
		Domain:   c.Domain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadRefreshCookie extracts and verifies the refresh token from the
// request cookie. A missing cookie is a normal outcome at first visit, not
// an exceptional one; both absence and tampering surface as an error the
// caller turns into a uniform 401.
func (c CookieConfig) ReadRefreshCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return "", fmt.Errorf("refresh cookie not present: %w", err)
	}
	return c.verifyCookie(cookie.Value)
}

// ClearRefreshCookie expires the refresh cookie.
func (c CookieConfig) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		Domain:   c.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

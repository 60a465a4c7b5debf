package api

// RefreshCookieName is the HTTP-only cookie that carries the refresh
// credential. It is part of the wire contract: clients that are not
// browsers must capture and present it themselves.
const RefreshCookieName = "inkwell_refresh"

// LoginRequest is the payload for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login. The refresh credential
// travels separately as an HTTP-only cookie and never appears in the body.
type LoginResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

// TokenResponse is returned by GET /api/v1/auth/token (silent refresh).
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// User is the wire representation of an account. Password material never
// leaves the server.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ErrorResponse is the uniform error body. Validation failures populate
// Errors with per-field messages; everything else uses ErrorMessage alone.
type ErrorResponse struct {
	ErrorMessage string            `json:"errorMessage,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	Title        string            `json:"title,omitempty"`
}

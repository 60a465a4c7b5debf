package domainerr

import (
	"fmt"
	"net/http"
)

// Stable error names surfaced to clients. They mirror the HTTP status each
// one carries but stay constant even if the status mapping ever changes.
const (
	NameNotFound         = "NotFoundError"
	NameSignIn           = "SignInError"
	NameValidation       = "ValidationError"
	NameUniqueConstraint = "UniqueConstraintError"
)

// Error is an application-level error carrying an HTTP status and a stable
// classification. Instances are terminal: constructed at the failure point,
// used to render one response, never mutated.
type Error struct {
	Name       string
	Message    string
	StatusCode int
	Details    map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// NotFound builds a 404 error for an absent or access-scoped-away resource.
func NotFound(resource string) *Error {
	return &Error{
		Name:       NameNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// SignIn builds the uniform 401 returned for any credential mismatch at
// login. The message never distinguishes unknown email from wrong password.
func SignIn() *Error {
	return &Error{
		Name:       NameSignIn,
		Message:    "invalid email or password",
		StatusCode: http.StatusUnauthorized,
	}
}

// Validation builds a 400 error with per-field details.
func Validation(details map[string]string) *Error {
	return &Error{
		Name:       NameValidation,
		Message:    "request validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// UniqueConstraint builds a 400 error for a uniqueness collision on the
// given field.
func UniqueConstraint(field string) *Error {
	msg := "given value already exists"
	if field != "" {
		msg = fmt.Sprintf("%s already exists", field)
	}
	details := map[string]string(nil)
	if field != "" {
		details = map[string]string{field: msg}
	}
	return &Error{
		Name:       NameUniqueConstraint,
		Message:    msg,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

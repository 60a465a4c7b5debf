package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/inkwell-cms/inkwell/pkg/api"
)

// ErrorKind classifies a DomainError by the failure the server reported.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindSignIn           ErrorKind = "sign_in"
	KindValidation       ErrorKind = "validation"
	KindUniqueConstraint ErrorKind = "unique_constraint"
	KindForbidden        ErrorKind = "forbidden"
	KindRateLimited      ErrorKind = "rate_limited"
)

// NetworkError means the request never produced an HTTP response:
// connection refused, DNS failure, timeout, canceled context.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError means the server answered with a non-2xx status whose body
// did not carry a recognizable domain error.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// DomainError is a structured failure the server explained: the status
// code, a classified kind, a human-readable message, and for validation
// failures a per-field breakdown.
type DomainError struct {
	StatusCode int
	Kind       ErrorKind
	Message    string
	Details    map[string]string
}

func (e *DomainError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	fields := make([]string, 0, len(e.Details))
	for field := range e.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Details[field])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// kindForTitle maps the server's error titles to client-side kinds.
var kindForTitle = map[string]ErrorKind{
	"NotFoundError":         KindNotFound,
	"SignInError":           KindSignIn,
	"ValidationError":       KindValidation,
	"UniqueConstraintError": KindUniqueConstraint,
}

// parseError turns a non-2xx response into the most specific error the
// body allows. A body that names a known error title becomes a
// DomainError; anything else, including an empty or malformed body,
// degrades to an HTTPError.
func parseError(statusCode int, body []byte) error {
	var resp api.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		if kind, ok := kindForTitle[resp.Title]; ok {
			msg := resp.ErrorMessage
			if msg == "" {
				msg = messageFrom(resp, statusCode)
			}
			return &DomainError{
				StatusCode: statusCode,
				Kind:       kind,
				Message:    msg,
				Details:    resp.Errors,
			}
		}
		switch statusCode {
		case http.StatusForbidden:
			return &DomainError{StatusCode: statusCode, Kind: KindForbidden, Message: messageFrom(resp, statusCode)}
		case http.StatusTooManyRequests:
			return &DomainError{StatusCode: statusCode, Kind: KindRateLimited, Message: messageFrom(resp, statusCode)}
		}
		return &HTTPError{StatusCode: statusCode, Message: messageFrom(resp, statusCode)}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &HTTPError{StatusCode: statusCode, Message: msg}
}

// messageFrom picks the most descriptive text the body offers, falling
// back to the status text so the message is never empty.
func messageFrom(resp api.ErrorResponse, statusCode int) string {
	if len(resp.Errors) > 0 {
		fields := make([]string, 0, len(resp.Errors))
		for field := range resp.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return resp.Errors[fields[0]]
	}
	if resp.ErrorMessage != "" {
		return resp.ErrorMessage
	}
	if resp.Title != "" {
		return resp.Title
	}
	return http.StatusText(statusCode)
}

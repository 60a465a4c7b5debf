// Package session holds the client's authentication state: whether the
// user is signed in, who they are, and the in-memory access token. It
// drives the silent sign-in performed at startup from the persisted
// refresh credential.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	clientapi "github.com/inkwell-cms/inkwell/internal/client/api"
	"github.com/inkwell-cms/inkwell/internal/client/storage"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

// State is the session's position in its lifecycle.
type State string

const (
	// StateInitializing is the state before Bootstrap has resolved.
	// Callers should treat it as "unknown", not as signed out.
	StateInitializing State = "initializing"

	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// ErrCanceled is returned when a CancelToken stopped an operation
// before it committed a state transition.
var ErrCanceled = errors.New("session operation canceled")

// ErrAlreadyBootstrapped is returned when Bootstrap is called on a
// session that has already left StateInitializing.
var ErrAlreadyBootstrapped = errors.New("session already bootstrapped")

// CancelToken lets a caller abandon an in-flight bootstrap. The token
// is checked after every network round trip: once canceled, no further
// state transition or credential write happens.
type CancelToken struct {
	mu       sync.Mutex
	canceled bool
}

// NewCancelToken returns a fresh, uncanceled token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel marks the token. Safe to call more than once.
func (t *CancelToken) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.canceled = true
}

// Canceled reports whether Cancel has been called.
func (t *CancelToken) Canceled() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

// Client is the slice of the API client the session needs.
type Client interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, string, time.Time, error)
	Refresh(ctx context.Context, refreshCookie string) (*api.TokenResponse, string, time.Time, error)
	Logout(ctx context.Context, refreshCookie string) error
	Me(ctx context.Context) (*api.User, error)
	SetAccessToken(token string)
}

// Session tracks authentication state across one client process.
type Session struct {
	mu     sync.Mutex
	logger *slog.Logger
	client Client
	creds  storage.CredentialStore
	state  State
	user   *api.User
}

// New creates a session in StateInitializing.
func New(logger *slog.Logger, client Client, creds storage.CredentialStore) *Session {
	return &Session{
		logger: logger,
		client: client,
		creds:  creds,
		state:  StateInitializing,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the signed-in account, or nil.
func (s *Session) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Bootstrap attempts a silent sign-in from the persisted refresh
// credential and resolves the session to authenticated or
// unauthenticated. It runs at most once per session.
//
// cancel may be nil. A canceled token abandons the attempt without a
// state transition, so a new session (for example after a fast logout
// during startup) never sees a stale sign-in land on top of it.
func (s *Session) Bootstrap(ctx context.Context, cancel *CancelToken) error {
	s.mu.Lock()
	if s.state != StateInitializing {
		s.mu.Unlock()
		return ErrAlreadyBootstrapped
	}
	s.mu.Unlock()

	cred, err := s.creds.GetCredential(ctx)
	if errors.Is(err, storage.ErrCredentialNotFound) {
		s.resolve(StateUnauthenticated, nil)
		return nil
	}
	if err != nil {
		return err
	}
	if cred.Expired(time.Now()) {
		_ = s.creds.DeleteCredential(ctx)
		s.resolve(StateUnauthenticated, nil)
		return nil
	}

	if cancel.Canceled() {
		return ErrCanceled
	}

	token, rotated, expires, err := s.client.Refresh(ctx, cred.Cookie)
	if err != nil {
		if cancel.Canceled() {
			return ErrCanceled
		}
		if isAuthRejection(err) {
			// Routine: the credential is dead server-side. Drop it so
			// the next start does not retry a doomed refresh.
			s.logger.DebugContext(ctx, "no server session", slog.Any("error", err))
			_ = s.creds.DeleteCredential(ctx)
		} else {
			s.logger.ErrorContext(ctx, "silent refresh failed", slog.Any("error", err))
		}
		s.resolve(StateUnauthenticated, nil)
		return nil
	}

	if cancel.Canceled() {
		return ErrCanceled
	}

	s.client.SetAccessToken(token.AccessToken)

	user, err := s.client.Me(ctx)
	if err != nil {
		if cancel.Canceled() {
			s.client.SetAccessToken("")
			return ErrCanceled
		}
		// The token worked for refresh but the account fetch failed.
		// Discard everything rather than carry a half-authenticated
		// session.
		s.logger.ErrorContext(ctx, "account fetch failed, discarding token", slog.Any("error", err))
		s.client.SetAccessToken("")
		_ = s.creds.DeleteCredential(ctx)
		s.resolve(StateUnauthenticated, nil)
		return nil
	}

	if cancel.Canceled() {
		s.client.SetAccessToken("")
		return ErrCanceled
	}

	if rotated != "" {
		_ = s.creds.SaveCredential(ctx, &storage.Credential{Cookie: rotated, ExpiresAt: expires})
	}
	s.resolve(StateAuthenticated, user)
	return nil
}

// Login signs in with email and password, persists the refresh
// credential, and moves the session to StateAuthenticated.
func (s *Session) Login(ctx context.Context, email, password string) (*api.User, error) {
	resp, cookie, expires, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.client.SetAccessToken(resp.AccessToken)
	if cookie != "" {
		if err := s.creds.SaveCredential(ctx, &storage.Credential{Cookie: cookie, ExpiresAt: expires}); err != nil {
			return nil, err
		}
	}

	user := resp.User
	s.resolve(StateAuthenticated, &user)
	return &user, nil
}

// Logout clears local state unconditionally and asks the server to
// revoke the session on a best-effort basis. Logging out while already
// signed out succeeds.
func (s *Session) Logout(ctx context.Context) error {
	cred, err := s.creds.GetCredential(ctx)
	if err == nil && cred.Cookie != "" {
		// Server-side revocation is advisory. A dead network must not
		// keep the user signed in locally.
		_ = s.client.Logout(ctx, cred.Cookie)
	}

	s.client.SetAccessToken("")
	if err := s.creds.DeleteCredential(ctx); err != nil {
		return err
	}
	s.resolve(StateUnauthenticated, nil)
	return nil
}

func (s *Session) resolve(state State, user *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = user
}

// isAuthRejection reports whether the server explicitly refused the
// credential, as opposed to the request not getting through at all.
func isAuthRejection(err error) bool {
	var domainErr *clientapi.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.StatusCode == http.StatusUnauthorized || domainErr.StatusCode == http.StatusForbidden
	}
	var httpErr *clientapi.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden
	}
	return false
}

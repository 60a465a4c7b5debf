package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-cms/inkwell/internal/domainerr"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/server/storage"
	"github.com/inkwell-cms/inkwell/internal/validation"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

// AuthHandler issues access tokens and manages refresh sessions.
type AuthHandler struct {
	logger         *slog.Logger
	users          storage.UserStore
	sessions       storage.SessionStore
	jwtConfig      JWTConfig
	cookieConfig   CookieConfig
	revokeOnLogout bool
}

func NewAuthHandler(
	logger *slog.Logger,
	users storage.UserStore,
	sessions storage.SessionStore,
	jwtConfig JWTConfig,
	cookieConfig CookieConfig,
	revokeOnLogout bool,
) *AuthHandler {
	return &AuthHandler{
		logger:         logger,
		users:          users,
		sessions:       sessions,
		jwtConfig:      jwtConfig,
		cookieConfig:   cookieConfig,
		revokeOnLogout: revokeOnLogout,
	}
}

// Login handles POST /api/v1/auth/login. It verifies credentials, sets
// the refresh cookie and returns the user together with a short-lived
// access token. Unknown email and wrong password are indistinguishable
// in the response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details := map[string]string{}
	if err := validation.ValidateEmail(req.Email); err != nil {
		details["email"] = err.Error()
	}
	if req.Password == "" {
		details["password"] = "password is required"
	}
	if len(details) > 0 {
		writeDomainError(w, domainerr.Validation(details))
		return
	}

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.logger.WarnContext(ctx, "login for unknown email", slog.String("email", req.Email))
			writeDomainError(w, domainerr.SignIn())
			return
		}
		h.logger.ErrorContext(ctx, "failed to load user", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "login with wrong password", slog.String("user_id", user.ID))
		writeDomainError(w, domainerr.SignIn())
		return
	}

	accessToken, err := GenerateAccessToken(h.jwtConfig, user.ID, user.Email, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	refreshToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	session := &models.Session{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		RefreshTokenHash: HashRefreshToken(refreshToken),
		UserAgent:        r.UserAgent(),
		IP:               clientIP(r),
		ExpiresAt:        expiresAt,
	}
	if err := h.sessions.CreateSession(ctx, session); err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	h.cookieConfig.SetRefreshCookie(w, refreshToken, expiresAt)
	writeJSON(w, http.StatusOK, api.LoginResponse{
		User:        toAPIUser(user),
		AccessToken: accessToken,
	})
}

// Refresh handles GET /api/v1/auth/token. It rotates the refresh
// session and returns a fresh access token. Every failure mode answers
// the same 401 so the cookie reveals nothing about why it was rejected.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken, err := h.cookieConfig.ReadRefreshCookie(r)
	if err != nil {
		h.refreshFailed(w)
		return
	}

	session, err := h.sessions.GetSessionByTokenHash(ctx, HashRefreshToken(refreshToken))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.ErrorContext(ctx, "failed to load session", slog.Any("error", err))
		}
		h.refreshFailed(w)
		return
	}
	if !session.Active(time.Now()) {
		h.refreshFailed(w)
		return
	}

	user, err := h.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.logger.ErrorContext(ctx, "failed to load user", slog.Any("error", err))
		}
		h.refreshFailed(w)
		return
	}

	newToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Rotation: the presented token is single-use.
	if err := h.sessions.RevokeSession(ctx, session.ID, time.Now()); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke session", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	next := &models.Session{
		ID:               uuid.New().String(),
		UserID:           user.ID,
		RefreshTokenHash: HashRefreshToken(newToken),
		UserAgent:        r.UserAgent(),
		IP:               clientIP(r),
		ExpiresAt:        expiresAt,
	}
	if err := h.sessions.CreateSession(ctx, next); err != nil {
		h.logger.ErrorContext(ctx, "failed to create session", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	accessToken, err := GenerateAccessToken(h.jwtConfig, user.ID, user.Email, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.cookieConfig.SetRefreshCookie(w, newToken, expiresAt)
	writeJSON(w, http.StatusOK, api.TokenResponse{AccessToken: accessToken})
}

// Logout handles POST /api/v1/auth/logout. It clears the refresh
// cookie and answers 204 whether or not a session existed. Server-side
// revocation of the presented session is controlled by configuration.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.revokeOnLogout {
		if refreshToken, err := h.cookieConfig.ReadRefreshCookie(r); err == nil {
			session, err := h.sessions.GetSessionByTokenHash(ctx, HashRefreshToken(refreshToken))
			if err == nil {
				if err := h.sessions.RevokeSession(ctx, session.ID, time.Now()); err != nil {
					h.logger.ErrorContext(ctx, "failed to revoke session on logout", slog.Any("error", err))
				} else {
					h.logger.InfoContext(ctx, "session revoked on logout", slog.String("user_id", session.UserID))
				}
			}
		}
	}

	h.cookieConfig.ClearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll handles POST /api/v1/auth/logout-all (bearer required). It
// revokes every active session of the calling user, so a leaked refresh
// cookie on another device stops working, then clears the local cookie.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	count, err := h.sessions.RevokeUserSessions(ctx, userID, time.Now())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke user sessions", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.logger.InfoContext(ctx, "all sessions revoked",
		slog.String("user_id", userID),
		slog.Int64("count", count),
	)

	h.cookieConfig.ClearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) refreshFailed(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "not authenticated")
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/server/handlers"
)

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"errorMessage":"` + message + `","title":"Unauthorized"}`))
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Returns "" when the header is absent or malformed.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func claimsContext(ctx context.Context, claims *handlers.CustomClaims) context.Context {
	ctx = context.WithValue(ctx, handlers.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, handlers.EmailKey, claims.Email)
	ctx = context.WithValue(ctx, handlers.RoleKey, claims.Role)
	return ctx
}

// Auth requires a valid access token and puts its claims on the request
// context.
func Auth(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing or malformed Authorization header")
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, token)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid access token", slog.Any("error", err))
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(claimsContext(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is presented but lets
// anonymous requests through. A token that is present and invalid is
// still rejected: bad credentials never downgrade silently to an
// anonymous view.
func OptionalAuth(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, token)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid access token", slog.Any("error", err))
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(claimsContext(r.Context(), claims)))
		})
	}
}

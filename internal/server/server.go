package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/inkwell-cms/inkwell/internal/domainerr"
	"github.com/inkwell-cms/inkwell/internal/server/handlers"
	"github.com/inkwell-cms/inkwell/internal/server/middleware"
	"github.com/inkwell-cms/inkwell/internal/server/storage"
)

// Config holds everything the HTTP server needs beyond its stores.
type Config struct {
	Addr   string
	JWT    handlers.JWTConfig
	Cookie handlers.CookieConfig

	// RevokeRefreshOnLogout enables server-side session revocation on
	// logout in addition to clearing the client cookie.
	RevokeRefreshOnLogout bool

	// Rate limiting: a tight budget for login, a generous default for
	// everything else.
	LoginRateLimit    int
	LoginRateWindow   time.Duration
	DefaultRateLimit  int
	DefaultRateWindow time.Duration

	// SessionCleanupInterval is how often expired refresh sessions are
	// purged from storage. Zero disables the cleanup loop.
	SessionCleanupInterval time.Duration

	ShutdownTimeout time.Duration
}

// Server is the inkwell HTTP API server.
type Server struct {
	logger   *slog.Logger
	cfg      Config
	sessions storage.SessionStore
	http     *http.Server
}

// New wires the router over the given store and returns a runnable
// server.
func New(logger *slog.Logger, store storage.Store, pinger handlers.Pinger, classifier domainerr.PersistenceErrorClassifier, cfg Config) *Server {
	router := NewRouter(logger, store, pinger, classifier, cfg)

	return &Server{
		logger:   logger,
		cfg:      cfg,
		sessions: store,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
	}
}

// NewRouter builds the full route tree. Exposed separately so tests can
// drive the router without binding a port.
func NewRouter(logger *slog.Logger, store storage.Store, pinger handlers.Pinger, classifier domainerr.PersistenceErrorClassifier, cfg Config) http.Handler {
	mapper := domainerr.NewMapper(classifier)

	authHandler := handlers.NewAuthHandler(logger, store, store, cfg.JWT, cfg.Cookie, cfg.RevokeRefreshOnLogout)
	userHandler := handlers.NewUserHandler(logger, store, mapper)
	postHandler := handlers.NewPostHandler(logger, store, store, mapper)
	tagHandler := handlers.NewTagHandler(logger, store, mapper)
	commentHandler := handlers.NewCommentHandler(logger, store, store, mapper)
	healthHandler := handlers.NewHealthHandler(pinger)

	requireAuth := middleware.Auth(logger, cfg.JWT)
	optionalAuth := middleware.OptionalAuth(logger, cfg.JWT)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.LoggingWithSkip(logger, []string{"/health"}))
	if cfg.DefaultRateLimit > 0 {
		r.Use(middleware.RateLimitByPath(
			[]middleware.PathRateLimit{
				{Path: "/api/v1/auth/login", Rate: cfg.LoginRateLimit, Window: cfg.LoginRateWindow},
			},
			cfg.DefaultRateLimit, cfg.DefaultRateWindow, logger,
		))
	}

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Get("/token", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		// Public reads; authentication widens what is visible.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/posts", postHandler.List)
			r.Get("/posts/{slug}", postHandler.Get)
			r.Get("/posts/{slug}/comments", commentHandler.List)
			r.Post("/posts/{slug}/comments", commentHandler.Create)
			r.Get("/tags", tagHandler.List)
		})

		// The CMS surface.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/auth/logout-all", authHandler.LogoutAll)
			r.Get("/users/me", userHandler.Me)
			r.Post("/users", userHandler.Create)
			r.Post("/posts", postHandler.Create)
			r.Put("/posts/{id}", postHandler.Update)
			r.Post("/posts/{id}/publish", postHandler.Publish)
			r.Delete("/posts/{id}", postHandler.Delete)
			r.Post("/tags", tagHandler.Create)
			r.Delete("/tags/{id}", tagHandler.Delete)
			r.Delete("/comments/{id}", commentHandler.Delete)
		})
	})

	return r
}

// Run serves until ctx is canceled, then drains connections within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.cfg.SessionCleanupInterval > 0 {
		go s.cleanupSessions(ctx)
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// cleanupSessions periodically deletes refresh sessions whose expiry has
// passed. Revoked rows age out the same way once they expire.
func (s *Server) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.sessions.DeleteExpiredSessions(ctx, time.Now())
			if err != nil {
				s.logger.ErrorContext(ctx, "session cleanup failed", slog.Any("error", err))
				continue
			}
			if count > 0 {
				s.logger.InfoContext(ctx, "expired sessions deleted", slog.Int64("count", count))
			}
		}
	}
}

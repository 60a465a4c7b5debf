package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkwell-cms/inkwell/internal/config"
	"github.com/inkwell-cms/inkwell/internal/server"
	"github.com/inkwell-cms/inkwell/internal/server/handlers"
	"github.com/inkwell-cms/inkwell/internal/server/storage/gormstore"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	migrateOnly := flag.Bool("migrate", false, "Run database migrations and exit")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, *migrateOnly); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, migrateOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := gormstore.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if migrateOnly {
		logger.Info("migrations applied")
		return nil
	}

	srv := server.New(logger, store, store, gormstore.Classifier{}, server.Config{
		Addr: cfg.HTTPAddr,
		JWT: handlers.JWTConfig{
			Secret:          []byte(cfg.JWTSecret),
			AccessTokenTTL:  cfg.AccessTokenTTL,
			RefreshTokenTTL: cfg.RefreshTokenTTL,
			Issuer:          cfg.JWTIssuer,
		},
		Cookie: handlers.CookieConfig{
			Secret: []byte(cfg.CookieSecret),
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
		},
		RevokeRefreshOnLogout:  cfg.RevokeRefreshOnLogout,
		LoginRateLimit:         cfg.LoginRateLimitPerMin,
		LoginRateWindow:        time.Minute,
		DefaultRateLimit:       cfg.APIRateLimitPerMin,
		DefaultRateWindow:      time.Minute,
		SessionCleanupInterval: cfg.SessionCleanupInterval,
		ShutdownTimeout:        cfg.ShutdownTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func printVersion() {
	fmt.Printf("Inkwell Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

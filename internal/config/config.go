package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	JWTIssuer       string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	CookieSecret string
	CookieDomain string
	CookieSecure bool

	RevokeRefreshOnLogout bool

	LoginRateLimitPerMin int
	APIRateLimitPerMin   int

	SessionCleanupInterval time.Duration
	ShutdownTimeout        time.Duration
}

// Load reads and validates the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		JWTIssuer:             getEnv("JWT_ISSUER", "inkwell"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		CookieSecret:          os.Getenv("COOKIE_SECRET"),
		CookieDomain:          os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:          getEnvBool("COOKIE_SECURE", true),
		RevokeRefreshOnLogout: getEnvBool("AUTH_REVOKE_REFRESH_ON_LOGOUT", false),
		LoginRateLimitPerMin:  getEnvInt("LOGIN_RATE_LIMIT_PER_MIN", 10),
		APIRateLimitPerMin:    getEnvInt("API_RATE_LIMIT_PER_MIN", 300),
	}

	accessTTL, err := time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("parse ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.AccessTokenTTL = accessTTL

	refreshTTL, err := time.ParseDuration(getEnv("REFRESH_TOKEN_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("parse REFRESH_TOKEN_TTL: %w", err)
	}
	cfg.RefreshTokenTTL = refreshTTL

	shutdown, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = shutdown

	cleanup, err := time.ParseDuration(getEnv("SESSION_CLEANUP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_CLEANUP_INTERVAL: %w", err)
	}
	cfg.SessionCleanupInterval = cleanup

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate collects every configuration problem instead of stopping at
// the first one.
func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if len(c.CookieSecret) < 32 {
		errs = append(errs, "COOKIE_SECRET must be at least 32 chars")
	}
	if c.JWTSecret != "" && c.JWTSecret == c.CookieSecret {
		errs = append(errs, "JWT_SECRET and COOKIE_SECRET must differ")
	}
	if c.AccessTokenTTL <= 0 || c.AccessTokenTTL > time.Hour {
		errs = append(errs, "ACCESS_TOKEN_TTL must be between 1s and 1h")
	}
	if c.RefreshTokenTTL <= 0 || c.RefreshTokenTTL > 90*24*time.Hour {
		errs = append(errs, "REFRESH_TOKEN_TTL must be between 1s and 90d")
	}
	if c.LoginRateLimitPerMin <= 0 {
		errs = append(errs, "LOGIN_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

package gormstore

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inkwell-cms/inkwell/internal/server/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store implements storage.Store on top of GORM.
type Store struct {
	db *gorm.DB
}

// Compile-time check that Store implements the full storage surface
var _ storage.Store = (*Store)(nil)

// Open connects to Postgres and returns a Store. TranslateError is enabled
// so uniqueness violations surface as gorm.ErrDuplicatedKey regardless of
// driver.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing GORM connection. Used by tests with the in-memory
// SQLite driver.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate runs the embedded goose migrations against the Postgres schema.
func (s *Store) Migrate() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	goose.SetBaseFS(embedMigrations)

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// Ping checks database reachability.
func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the underlying GORM connection for testing purposes.
func (s *Store) DB() *gorm.DB {
	return s.db
}

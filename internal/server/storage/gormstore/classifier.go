package gormstore

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/internal/domainerr"
	"github.com/inkwell-cms/inkwell/internal/server/storage"
)

// pgUniqueViolation is the Postgres SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// constraintFields resolves known unique-constraint names to the field a
// client can act on. Unlisted constraints fall back to the caller-supplied
// field name in the error mapper.
var constraintFields = map[string]string{
	"uni_users_email":                 "email",
	"uni_posts_slug":                  "slug",
	"uni_tags_name":                   "name",
	"uni_tags_slug":                   "slug",
	"uni_sessions_refresh_token_hash": "refresh token",
}

// Classifier implements domainerr.PersistenceErrorClassifier for the GORM/
// Postgres backend.
type Classifier struct{}

var _ domainerr.PersistenceErrorClassifier = Classifier{}

// IsUniqueViolation reports whether err carries a unique-constraint signal.
// When the Postgres driver exposes the constraint name, the offending field
// is resolved from it; otherwise the field is left empty.
func (Classifier) IsUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return constraintFields[pgErr.ConstraintName], true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, storage.ErrDuplicate) {
		return "", true
	}
	return "", false
}

// IsNotFound reports whether err means the record is absent.
func (Classifier) IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, storage.ErrNotFound)
}

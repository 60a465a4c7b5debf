package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inkwell-cms/inkwell/internal/models"
)

// newTestStore opens an in-memory SQLite database with the schema applied.
// TranslateError is on, matching the production configuration, so
// uniqueness violations surface as gorm.ErrDuplicatedKey here too.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Tag{},
		&models.Comment{},
		&models.Session{},
	)
	require.NoError(t, err)

	return New(db)
}

// newTestUser inserts an author account and returns it.
func newTestUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         "Test Author",
		PasswordHash: "x",
		Role:         models.RoleAuthor,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

// newTestPost inserts a post for the given author.
func newTestPost(t *testing.T, s *Store, author *models.User, slug string, published bool) *models.Post {
	t.Helper()

	post := &models.Post{
		ID:        uuid.New().String(),
		Slug:      slug,
		Title:     "Title " + slug,
		Summary:   "Summary " + slug,
		Body:      "Body " + slug,
		Published: published,
		AuthorID:  author.ID,
	}
	if published {
		now := time.Now()
		post.PublishedAt = &now
	}
	require.NoError(t, s.CreatePost(context.Background(), post))
	return post
}

package storage

import (
	"context"
	"time"

	"github.com/inkwell-cms/inkwell/internal/models"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PostFilter narrows ListPosts. Zero values mean "no filter".
type PostFilter struct {
	// Search matches title or summary, case-insensitive substring.
	Search string
	// TagSlug restricts to posts carrying the tag.
	TagSlug string
	// PublishedOnly hides drafts (the public reader view).
	PublishedOnly bool
	// AuthorID restricts to one author's posts (the CMS "my posts" view).
	AuthorID string

	Page Page
}

// PostStore persists posts and their tag associations.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	ReplacePostTags(ctx context.Context, post *models.Post, tags []models.Tag) error
	DeletePost(ctx context.Context, id string) error
}

// TagStore persists tags.
type TagStore interface {
	CreateTag(ctx context.Context, tag *models.Tag) error
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error)
	// EnsureTags returns the tags with the given names, creating any that
	// do not exist yet.
	EnsureTags(ctx context.Context, names []string) ([]models.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// CommentStore persists reader comments.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error)
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// SessionStore persists refresh credentials. Tokens are stored hashed; all
// lookups go through the hash.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
	RevokeUserSessions(ctx context.Context, userID string, at time.Time) (int64, error)
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// Store bundles every store the server needs.
type Store interface {
	UserStore
	PostStore
	TagStore
	CommentStore
	SessionStore
}

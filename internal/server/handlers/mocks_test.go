package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-cms/inkwell/internal/domainerr"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/server/storage"
	"github.com/inkwell-cms/inkwell/internal/validation"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sentinelClassifier classifies the storage sentinel errors the mocks
// return, the way a real backend classifier does for driver errors.
type sentinelClassifier struct{}

func (sentinelClassifier) IsUniqueViolation(err error) (string, bool) {
	if err != nil && strings.Contains(err.Error(), storage.ErrDuplicate.Error()) {
		return "", true
	}
	return "", false
}

func (sentinelClassifier) IsNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), storage.ErrNotFound.Error())
}

func newTestMapper() *domainerr.Mapper {
	return domainerr.NewMapper(sentinelClassifier{})
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withClaims simulates the auth middleware for a logged-in request.
func withClaims(r *http.Request, userID, role string) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, userID)
	ctx = context.WithValue(ctx, RoleKey, role)
	return r.WithContext(ctx)
}

// mockUserStore is an in-memory UserStore for testing.
type mockUserStore struct {
	users       map[string]*models.User // id -> User
	createError error
	getError    error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*models.User)}
}

func (m *mockUserStore) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return storage.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	user, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

// mockSessionStore is an in-memory SessionStore for testing.
type mockSessionStore struct {
	sessions    map[string]*models.Session // id -> Session
	createError error
	revoked     []string // ids passed to RevokeSession
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*models.Session)}
}

func (m *mockSessionStore) CreateSession(ctx context.Context, session *models.Session) error {
	if m.createError != nil {
		return m.createError
	}
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionStore) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	for _, s := range m.sessions {
		if s.RefreshTokenHash == tokenHash {
			return s, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *mockSessionStore) RevokeSession(ctx context.Context, id string, at time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return storage.ErrNotFound
	}
	if s.RevokedAt == nil {
		s.RevokedAt = &at
		m.revoked = append(m.revoked, id)
	}
	return nil
}

func (m *mockSessionStore) RevokeUserSessions(ctx context.Context, userID string, at time.Time) (int64, error) {
	var n int64
	for _, s := range m.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &at
			n++
		}
	}
	return n, nil
}

func (m *mockSessionStore) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(before) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// activeSessions returns sessions not yet revoked.
func (m *mockSessionStore) activeSessions() []*models.Session {
	var out []*models.Session
	for _, s := range m.sessions {
		if s.RevokedAt == nil {
			out = append(out, s)
		}
	}
	return out
}

// mockPostStore is an in-memory PostStore for testing. Filtering is
// deliberately partial: only what the handler tests exercise.
type mockPostStore struct {
	posts       map[string]*models.Post // id -> Post
	createError error
	updateError error
	deleted     []string
}

func newMockPostStore() *mockPostStore {
	return &mockPostStore{posts: make(map[string]*models.Post)}
}

func (m *mockPostStore) CreatePost(ctx context.Context, post *models.Post) error {
	if m.createError != nil {
		return m.createError
	}
	for _, p := range m.posts {
		if p.Slug == post.Slug {
			return storage.ErrDuplicate
		}
	}
	m.posts[post.ID] = post
	return nil
}

func (m *mockPostStore) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	post, ok := m.posts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return post, nil
}

func (m *mockPostStore) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	for _, p := range m.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *mockPostStore) ListPosts(ctx context.Context, filter storage.PostFilter) ([]models.Post, int64, error) {
	var out []models.Post
	for _, p := range m.posts {
		if filter.PublishedOnly && !p.Published {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, int64(len(out)), nil
}

func (m *mockPostStore) UpdatePost(ctx context.Context, post *models.Post) error {
	if m.updateError != nil {
		return m.updateError
	}
	if _, ok := m.posts[post.ID]; !ok {
		return storage.ErrNotFound
	}
	for _, p := range m.posts {
		if p.ID != post.ID && p.Slug == post.Slug {
			return storage.ErrDuplicate
		}
	}
	m.posts[post.ID] = post
	return nil
}

func (m *mockPostStore) ReplacePostTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	p, ok := m.posts[post.ID]
	if !ok {
		return storage.ErrNotFound
	}
	p.Tags = tags
	return nil
}

func (m *mockPostStore) DeletePost(ctx context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.posts, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// mockTagStore is an in-memory TagStore for testing.
type mockTagStore struct {
	tags        map[string]*models.Tag // slug -> Tag
	createError error
	listError   error
}

func newMockTagStore() *mockTagStore {
	return &mockTagStore{tags: make(map[string]*models.Tag)}
}

func (m *mockTagStore) CreateTag(ctx context.Context, tag *models.Tag) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.tags[tag.Slug]; exists {
		return storage.ErrDuplicate
	}
	m.tags[tag.Slug] = tag
	return nil
}

func (m *mockTagStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var out []models.Tag
	for _, t := range m.tags {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockTagStore) GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	tag, ok := m.tags[slug]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return tag, nil
}

func (m *mockTagStore) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	var out []models.Tag
	for _, name := range names {
		slug := validation.Slugify(name)
		if t, ok := m.tags[slug]; ok {
			out = append(out, *t)
			continue
		}
		tag := &models.Tag{ID: "tag-" + slug, Name: name, Slug: slug}
		m.tags[slug] = tag
		out = append(out, *tag)
	}
	return out, nil
}

func (m *mockTagStore) DeleteTag(ctx context.Context, id string) error {
	for slug, t := range m.tags {
		if t.ID == id {
			delete(m.tags, slug)
			return nil
		}
	}
	return storage.ErrNotFound
}

// mockCommentStore is an in-memory CommentStore for testing.
type mockCommentStore struct {
	comments    map[string]*models.Comment // id -> Comment
	createError error
	listError   error
}

func newMockCommentStore() *mockCommentStore {
	return &mockCommentStore{comments: make(map[string]*models.Comment)}
}

func (m *mockCommentStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if m.createError != nil {
		return m.createError
	}
	m.comments[comment.ID] = comment
	return nil
}

func (m *mockCommentStore) ListCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var out []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockCommentStore) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	comment, ok := m.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return comment, nil
}

func (m *mockCommentStore) DeleteComment(ctx context.Context, id string) error {
	if _, ok := m.comments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

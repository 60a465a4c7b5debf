package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkwell-cms/inkwell/internal/domainerr"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/server/storage"
	"github.com/inkwell-cms/inkwell/internal/validation"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

// PostHandler serves the post CRUD surface. The public reader view and
// the authenticated CMS view share the same routes; authentication
// widens what is visible.
type PostHandler struct {
	logger *slog.Logger
	posts  storage.PostStore
	tags   storage.TagStore
	mapper *domainerr.Mapper
}

func NewPostHandler(logger *slog.Logger, posts storage.PostStore, tags storage.TagStore, mapper *domainerr.Mapper) *PostHandler {
	return &PostHandler{logger: logger, posts: posts, tags: tags, mapper: mapper}
}

// List handles GET /api/v1/posts. Anonymous callers only see published
// posts; authenticated callers see drafts too.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, authenticated := UserIDFromContext(ctx)

	q := r.URL.Query()
	filter := storage.PostFilter{
		Search:        q.Get("search"),
		TagSlug:       q.Get("tag"),
		PublishedOnly: !authenticated,
		Page: storage.Page{
			Number: atoiOrZero(q.Get("page")),
			Size:   atoiOrZero(q.Get("pageSize")),
		}.Normalize(),
	}
	if authenticated && q.Get("mine") == "true" {
		filter.AuthorID = userID
	}

	// An unknown tag is a 404, not an empty page: the filter names a
	// resource that does not exist.
	if filter.TagSlug != "" {
		if _, err := h.tags.GetTagBySlug(ctx, filter.TagSlug); err != nil {
			writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "tag"})
			return
		}
	}

	posts, total, err := h.posts.ListPosts(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list posts", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]api.Post, 0, len(posts))
	for i := range posts {
		// Listings omit the body to keep pages small.
		p := toAPIPost(&posts[i])
		p.Body = ""
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, api.PostList{
		Posts:      out,
		Page:       filter.Page.Number,
		PageSize:   filter.Page.Size,
		Total:      total,
		TotalPages: storage.TotalPages(total, filter.Page.Size),
	})
}

// Get handles GET /api/v1/posts/{slug}. Drafts are only visible to
// authenticated callers; anonymous requests for them report not found
// rather than forbidden, so draft slugs stay unguessable.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "post"})
		return
	}

	if !post.Published {
		if _, authenticated := UserIDFromContext(r.Context()); !authenticated {
			writeDomainError(w, domainerr.NotFound("post"))
			return
		}
	}

	writeJSON(w, http.StatusOK, toAPIPost(post))
}

// Create handles POST /api/v1/posts. The new post is owned by the
// caller; an empty slug is derived from the title.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req api.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create post request", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Slug == "" {
		req.Slug = validation.Slugify(req.Title)
	}

	details := map[string]string{}
	if err := validation.ValidateTitle(req.Title); err != nil {
		details["title"] = err.Error()
	}
	if err := validation.ValidateSlug(req.Slug); err != nil {
		details["slug"] = err.Error()
	}
	if err := validation.ValidateBody(req.Body); err != nil {
		details["body"] = err.Error()
	}
	for _, name := range req.Tags {
		if err := validation.ValidateTagName(name); err != nil {
			details["tags"] = err.Error()
			break
		}
	}
	if len(details) > 0 {
		writeDomainError(w, domainerr.Validation(details))
		return
	}

	tags, err := h.tags.EnsureTags(ctx, req.Tags)
	if err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{UniqueConstraintField: "tags"})
		return
	}

	post := &models.Post{
		ID:       uuid.New().String(),
		Slug:     req.Slug,
		Title:    req.Title,
		Summary:  req.Summary,
		Body:     req.Body,
		AuthorID: userID,
		Tags:     tags,
	}
	if req.Publish {
		now := time.Now()
		post.Published = true
		post.PublishedAt = &now
	}

	if err := h.posts.CreatePost(ctx, post); err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{UniqueConstraintField: "slug"})
		return
	}

	h.logger.InfoContext(ctx, "post created",
		slog.String("post_id", post.ID),
		slog.String("slug", post.Slug),
		slog.Bool("published", post.Published))

	created, err := h.posts.GetPostByID(ctx, post.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reload post", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toAPIPost(created))
}

// Update handles PUT /api/v1/posts/{id}: a partial update of a post
// owned by the caller. Admins may edit any post.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}

	var req api.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode update post request", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details := map[string]string{}
	if req.Title != nil {
		if err := validation.ValidateTitle(*req.Title); err != nil {
			details["title"] = err.Error()
		} else {
			post.Title = *req.Title
		}
	}
	if req.Slug != nil {
		if err := validation.ValidateSlug(*req.Slug); err != nil {
			details["slug"] = err.Error()
		} else {
			post.Slug = *req.Slug
		}
	}
	if req.Body != nil {
		if err := validation.ValidateBody(*req.Body); err != nil {
			details["body"] = err.Error()
		} else {
			post.Body = *req.Body
		}
	}
	if req.Summary != nil {
		post.Summary = *req.Summary
	}
	for _, name := range req.Tags {
		if err := validation.ValidateTagName(name); err != nil {
			details["tags"] = err.Error()
			break
		}
	}
	if len(details) > 0 {
		writeDomainError(w, domainerr.Validation(details))
		return
	}

	if err := h.posts.UpdatePost(ctx, post); err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{
			Resource:              "post",
			UniqueConstraintField: "slug",
		})
		return
	}

	if req.Tags != nil {
		tags, err := h.tags.EnsureTags(ctx, req.Tags)
		if err != nil {
			writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{UniqueConstraintField: "tags"})
			return
		}
		if err := h.posts.ReplacePostTags(ctx, post, tags); err != nil {
			h.logger.ErrorContext(ctx, "failed to replace post tags", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	updated, err := h.posts.GetPostByID(ctx, post.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to reload post", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toAPIPost(updated))
}

// Publish handles POST /api/v1/posts/{id}/publish. Publishing a
// published post is a no-op that keeps the original publication time.
func (h *PostHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}

	if !post.Published {
		now := time.Now()
		post.Published = true
		post.PublishedAt = &now
		if err := h.posts.UpdatePost(ctx, post); err != nil {
			writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "post"})
			return
		}
		h.logger.InfoContext(ctx, "post published", slog.String("post_id", post.ID))
	}

	writeJSON(w, http.StatusOK, toAPIPost(post))
}

// Delete handles DELETE /api/v1/posts/{id}. Comments and tag links go
// with the post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := h.loadOwnedPost(w, r)
	if !ok {
		return
	}

	if err := h.posts.DeletePost(ctx, post.ID); err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "post"})
		return
	}

	h.logger.InfoContext(ctx, "post deleted", slog.String("post_id", post.ID))
	w.WriteHeader(http.StatusNoContent)
}

// loadOwnedPost fetches the post from the {id} route param and checks
// that the caller owns it or is an admin. On failure the response has
// already been written.
func (h *PostHandler) loadOwnedPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}

	post, err := h.posts.GetPostByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "post"})
		return nil, false
	}

	role, _ := RoleFromContext(r.Context())
	if post.AuthorID != userID && role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "you do not own this post")
		return nil, false
	}
	return post, true
}

func toAPIPost(p *models.Post) api.Post {
	out := api.Post{
		ID:        p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Summary:   p.Summary,
		Body:      p.Body,
		Published: p.Published,
		Tags:      make([]api.Tag, 0, len(p.Tags)),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
	if p.PublishedAt != nil {
		out.PublishedAt = p.PublishedAt.Format(time.RFC3339)
	}
	if p.Author != nil {
		out.Author = toAPIUser(p.Author)
	}
	for _, t := range p.Tags {
		out.Tags = append(out.Tags, api.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	return out
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkwell-cms/inkwell/internal/domainerr"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/server/storage"
	"github.com/inkwell-cms/inkwell/internal/validation"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

// CommentHandler serves reader comments. Submitting and listing are
// public; moderation requires an account.
type CommentHandler struct {
	logger   *slog.Logger
	posts    storage.PostStore
	comments storage.CommentStore
	mapper   *domainerr.Mapper
}

func NewCommentHandler(logger *slog.Logger, posts storage.PostStore, comments storage.CommentStore, mapper *domainerr.Mapper) *CommentHandler {
	return &CommentHandler{logger: logger, posts: posts, comments: comments, mapper: mapper}
}

// List handles GET /api/v1/posts/{slug}/comments, oldest first.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := h.loadVisiblePost(w, r)
	if !ok {
		return
	}

	comments, err := h.comments.ListCommentsByPost(ctx, post.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list comments", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]api.Comment, 0, len(comments))
	for i := range comments {
		out = append(out, toAPIComment(&comments[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/v1/posts/{slug}/comments: a reader submits
// a comment. No account required.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	post, ok := h.loadVisiblePost(w, r)
	if !ok {
		return
	}

	var req api.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create comment request", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details := map[string]string{}
	if err := validation.ValidateName(req.AuthorName); err != nil {
		details["authorName"] = err.Error()
	}
	if req.AuthorEmail != "" {
		if err := validation.ValidateEmail(req.AuthorEmail); err != nil {
			details["authorEmail"] = err.Error()
		}
	}
	if err := validation.ValidateComment(req.Body); err != nil {
		details["body"] = err.Error()
	}
	if len(details) > 0 {
		writeDomainError(w, domainerr.Validation(details))
		return
	}

	comment := &models.Comment{
		ID:          uuid.New().String(),
		PostID:      post.ID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Body:        req.Body,
	}
	if err := h.comments.CreateComment(ctx, comment); err != nil {
		h.logger.ErrorContext(ctx, "failed to create comment", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "comment created",
		slog.String("comment_id", comment.ID),
		slog.String("post_id", post.ID))
	writeJSON(w, http.StatusCreated, toAPIComment(comment))
}

// Delete handles DELETE /api/v1/comments/{id}. The post's author and
// admins may moderate.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	comment, err := h.comments.GetCommentByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "comment"})
		return
	}

	post, err := h.posts.GetPostByID(ctx, comment.PostID)
	if err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "post"})
		return
	}

	role, _ := RoleFromContext(ctx)
	if post.AuthorID != userID && role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "you do not moderate this post")
		return
	}

	if err := h.comments.DeleteComment(ctx, comment.ID); err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "comment"})
		return
	}

	h.logger.InfoContext(ctx, "comment deleted", slog.String("comment_id", comment.ID))
	w.WriteHeader(http.StatusNoContent)
}

// loadVisiblePost resolves the {slug} route param to a post the caller
// may see. Drafts exist only for authenticated callers.
func (h *CommentHandler) loadVisiblePost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	post, err := h.posts.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "post"})
		return nil, false
	}
	if !post.Published {
		if _, authenticated := UserIDFromContext(r.Context()); !authenticated {
			writeDomainError(w, domainerr.NotFound("post"))
			return nil, false
		}
	}
	return post, true
}

func toAPIComment(c *models.Comment) api.Comment {
	return api.Comment{
		ID:          c.ID,
		PostID:      c.PostID,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		Body:        c.Body,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

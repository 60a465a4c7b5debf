package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkwell-cms/inkwell/internal/domainerr"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/server/storage"
	"github.com/inkwell-cms/inkwell/internal/validation"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

// TagHandler serves the tag vocabulary.
type TagHandler struct {
	logger *slog.Logger
	tags   storage.TagStore
	mapper *domainerr.Mapper
}

func NewTagHandler(logger *slog.Logger, tags storage.TagStore, mapper *domainerr.Mapper) *TagHandler {
	return &TagHandler{logger: logger, tags: tags, mapper: mapper}
}

// List handles GET /api/v1/tags: every tag, ordered by name.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tags, err := h.tags.ListTags(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tags", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]api.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, api.Tag{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/v1/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create tag request", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.ValidateTagName(req.Name); err != nil {
		writeDomainError(w, domainerr.Validation(map[string]string{"name": err.Error()}))
		return
	}

	tag := &models.Tag{
		ID:   uuid.New().String(),
		Name: req.Name,
		Slug: validation.Slugify(req.Name),
	}
	if err := h.tags.CreateTag(ctx, tag); err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{UniqueConstraintField: "name"})
		return
	}

	h.logger.InfoContext(ctx, "tag created", slog.String("tag_id", tag.ID), slog.String("slug", tag.Slug))
	writeJSON(w, http.StatusCreated, api.Tag{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
}

// Delete handles DELETE /api/v1/tags/{id}. Admin only: tags are shared
// across authors.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if role, ok := RoleFromContext(ctx); !ok || role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	if err := h.tags.DeleteTag(ctx, chi.URLParam(r, "id")); err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{Resource: "tag"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

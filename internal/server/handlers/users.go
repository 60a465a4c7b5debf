package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-cms/inkwell/internal/domainerr"
	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/server/storage"
	"github.com/inkwell-cms/inkwell/internal/validation"
	"github.com/inkwell-cms/inkwell/pkg/api"
)

// UserHandler serves the authenticated user profile and admin-only
// user management.
type UserHandler struct {
	logger *slog.Logger
	users  storage.UserStore
	mapper *domainerr.Mapper
}

func NewUserHandler(logger *slog.Logger, users storage.UserStore, mapper *domainerr.Mapper) *UserHandler {
	return &UserHandler{logger: logger, users: users, mapper: mapper}
}

// Me handles GET /api/v1/users/me: the profile of the user the access
// token belongs to.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := UserIDFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The token outlived the account.
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load user", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toAPIUser(user))
}

// Create handles the admin-only POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if role, ok := RoleFromContext(ctx); !ok || role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}

	var req api.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create user request", slog.Any("error", err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	details := map[string]string{}
	if err := validation.ValidateEmail(req.Email); err != nil {
		details["email"] = err.Error()
	}
	if err := validation.ValidateName(req.Name); err != nil {
		details["name"] = err.Error()
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		details["password"] = err.Error()
	}
	role := req.Role
	if role == "" {
		role = models.RoleAuthor
	}
	if role != models.RoleAdmin && role != models.RoleAuthor {
		details["role"] = "role must be admin or author"
	}
	if len(details) > 0 {
		writeDomainError(w, domainerr.Validation(details))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := h.users.CreateUser(ctx, user); err != nil {
		writeStorageError(w, h.logger, h.mapper, err, domainerr.MapOptions{UniqueConstraintField: "email"})
		return
	}

	h.logger.InfoContext(ctx, "user created", slog.String("user_id", user.ID), slog.String("role", user.Role))
	writeJSON(w, http.StatusCreated, toAPIUser(user))
}

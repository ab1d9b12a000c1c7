package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/articlehub/articlehub/internal/cache"
	"github.com/articlehub/articlehub/internal/handler/dto"
	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/pagination"
	"github.com/articlehub/articlehub/internal/service"
)

// UserService is the user directory as seen by the HTTP layer.
type UserService interface {
	List(ctx context.Context, f service.UserFilter) (pagination.Page[*model.User], error)
	GetByIdentity(ctx context.Context, identity service.Identity) (*model.User, error)
	Create(ctx context.Context, input service.CreateUserInput) (*model.User, error)
	Update(ctx context.Context, input service.UpdateUserInput) (*model.User, error)
	SoftDelete(ctx context.Context, id int64) error
	HardDelete(ctx context.Context, id int64) error
}

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc    UserService
	cache  *cache.Cache
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserService, c *cache.Cache, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		cache:  c,
		logger: logger,
	}
}

// List handles GET /users/all.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseUserFilter(r.URL.Query())
	if err != nil {
		writeValidationError(w, err)
		return
	}

	serveCached(w, r, h.cache, h.logger, func(ctx context.Context) (pagination.Page[*model.User], error) {
		return h.svc.List(ctx, filter)
	})
}

// Get handles GET /users?id= or GET /users?email=.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := dto.ParseIdentity(r.URL.Query())
	if err != nil {
		writeValidationError(w, err)
		return
	}

	serveCached(w, r, h.cache, h.logger, func(ctx context.Context) (*model.User, error) {
		user, err := h.svc.GetByIdentity(ctx, identity)
		if err != nil {
			return nil, err
		}
		return user.Scrubbed(), nil
	})
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.svc.Create(r.Context(), req.ToInput())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Update handles PUT /users.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.svc.Update(r.Context(), req.ToInput())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SoftDelete handles DELETE /users/delete?id=.
func (h *UserHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.svc.SoftDelete)
}

// HardDelete handles DELETE /users/purge?id=.
func (h *UserHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, h.svc.HardDelete)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request, del func(context.Context, int64) error) {
	id, err := dto.ParseID("id", r.URL.Query().Get("id"))
	if err != nil {
		writeValidationError(w, err)
		return
	}

	if err := del(r.Context(), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

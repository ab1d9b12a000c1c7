package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/articlehub/articlehub/internal/cache"
	"github.com/articlehub/articlehub/internal/handler/dto"
	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/pagination"
	"github.com/articlehub/articlehub/internal/service"
)

// ArticleService is the article catalog as seen by the HTTP layer.
type ArticleService interface {
	List(ctx context.Context, f service.ArticleFilter) (pagination.Page[*model.Article], error)
	GetByID(ctx context.Context, id int64) (*model.Article, error)
	Create(ctx context.Context, input service.CreateArticleInput) (*model.Article, error)
	Update(ctx context.Context, input service.UpdateArticleInput) (*model.Article, error)
	Delete(ctx context.Context, id int64) service.DeleteResult
}

// ArticleHandler handles HTTP requests for article operations.
type ArticleHandler struct {
	svc    ArticleService
	cache  *cache.Cache
	logger *slog.Logger
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(svc ArticleService, c *cache.Cache, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		svc:    svc,
		cache:  c,
		logger: logger,
	}
}

// List handles GET /articles.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseArticleFilter(r.URL.Query())
	if err != nil {
		writeValidationError(w, err)
		return
	}

	serveCached(w, r, h.cache, h.logger, func(ctx context.Context) (pagination.Page[*model.Article], error) {
		return h.svc.List(ctx, filter)
	})
}

// Get handles GET /articles/{id}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := dto.ParseID("id", chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, err)
		return
	}

	serveCached(w, r, h.cache, h.logger, func(ctx context.Context) (*model.Article, error) {
		return h.svc.GetByID(ctx, id)
	})
}

// Create handles POST /articles.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateArticleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	article, err := h.svc.Create(r.Context(), req.ToInput())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, article)
}

// Update handles PUT /articles. The response echoes the supplied columns.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateArticleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	article, err := h.svc.Update(r.Context(), req.ToInput())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

// Delete handles DELETE /articles/delete?id=.
// Service failures are reported in the body with status 200.
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := dto.ParseID("id", r.URL.Query().Get("id"))
	if err != nil {
		writeValidationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.svc.Delete(r.Context(), id))
}

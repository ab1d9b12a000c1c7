package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/articlehub/articlehub/internal/metrics"
	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/pagination"
	"github.com/articlehub/articlehub/internal/repository"
)

// DefaultArticleLimit is the page size when the caller gives none.
const DefaultArticleLimit = 10

// ArticleService handles article business logic.
type ArticleService struct {
	articles ArticleStore
	users    UserDirectory
	cache    CacheInvalidator
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewArticleService creates a new ArticleService.
func NewArticleService(articles ArticleStore, users UserDirectory, cache CacheInvalidator, recorder metrics.Recorder, logger *slog.Logger) *ArticleService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArticleService{
		articles: articles,
		users:    users,
		cache:    cache,
		metrics:  recorder,
		logger:   logger,
	}
}

// ArticleFilter defines an article listing request. Set filters are AND-combined.
type ArticleFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AuthorID  *int64
	Author    model.NameFilter
	Limit     *int // nil means DefaultArticleLimit, 0 means unlimited
	Skip      int
}

// CreateArticleInput defines input for creating an article.
type CreateArticleInput struct {
	Title       string
	Description string
	AuthorID    int64
}

// UpdateArticleInput carries the supplied columns of an article update.
// Nil fields are not written.
type UpdateArticleInput struct {
	ID          int64
	Title       *string
	Description *string
}

// DeleteResult reports the outcome of an article delete.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// List returns one page of live articles matching the filter.
func (s *ArticleService) List(ctx context.Context, f ArticleFilter) (pagination.Page[*model.Article], error) {
	limit := DefaultArticleLimit
	if f.Limit != nil {
		limit = *f.Limit
	}

	q := model.ArticleQuery{
		CreatedFrom: f.StartDate,
		CreatedTo:   f.EndDate,
		AuthorID:    f.AuthorID,
		Limit:       limit,
		Offset:      pagination.Offset(limit, f.Skip),
	}
	if !f.Author.IsEmpty() {
		ids, err := s.users.MatchingIDs(ctx, f.Author)
		if err != nil {
			return pagination.Page[*model.Article]{}, err
		}
		if len(ids) == 0 {
			return pagination.Empty[*model.Article](limit, f.Skip), nil
		}
		q.AuthorIDs = ids
	}

	articles, total, err := s.articles.ListArticles(ctx, q)
	if err != nil {
		return pagination.Page[*model.Article]{}, fmt.Errorf("list articles: %w", err)
	}

	return pagination.New(articles, total, limit, f.Skip), nil
}

// GetByID returns a live article.
func (s *ArticleService) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	article, err := s.articles.GetArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// Create stores a new article for an existing author and returns it with
// the author attached.
func (s *ArticleService) Create(ctx context.Context, input CreateArticleInput) (*model.Article, error) {
	author, err := s.users.GetByIdentity(ctx, Identity{ID: input.AuthorID})
	if err != nil {
		return nil, err
	}

	article := &model.Article{
		Title:       input.Title,
		Description: input.Description,
		AuthorID:    author.ID,
	}
	if err := s.articles.CreateArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	article.Author = author.Scrubbed()

	s.metrics.IncArticleWrite("create")
	s.logger.Info("article_created", "article_id", article.ID, "author_id", author.ID)

	if err := s.cache.Invalidate(ctx, articleListKeys()...); err != nil {
		return nil, fmt.Errorf("invalidate article cache: %w", err)
	}

	return article, nil
}

// Update writes exactly the supplied columns of an existing article and
// returns the supplied payload. Nothing is merged from the stored row and
// the author never changes.
func (s *ArticleService) Update(ctx context.Context, input UpdateArticleInput) (*model.Article, error) {
	if _, err := s.GetByID(ctx, input.ID); err != nil {
		return nil, err
	}

	if err := s.articles.UpdateArticle(ctx, input.ID, input.Title, input.Description); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}

	s.metrics.IncArticleWrite("update")
	s.logger.Info("article_updated", "article_id", input.ID)

	if err := s.cache.Invalidate(ctx, append(articleListKeys(), articleKey(input.ID))...); err != nil {
		return nil, fmt.Errorf("invalidate article cache: %w", err)
	}

	article := &model.Article{ID: input.ID}
	if input.Title != nil {
		article.Title = *input.Title
	}
	if input.Description != nil {
		article.Description = *input.Description
	}
	return article, nil
}

// Delete removes an article. Failures are reported in the result, never
// returned.
func (s *ArticleService) Delete(ctx context.Context, id int64) DeleteResult {
	if err := s.delete(ctx, id); err != nil {
		s.logger.Warn("article_delete_failed", "article_id", id, "error", err)
		return DeleteResult{Success: false, Message: err.Error()}
	}
	return DeleteResult{Success: true, Message: "article deleted"}
}

func (s *ArticleService) delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.articles.DeleteArticle(ctx, id); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return ErrArticleNotFound
		}
		return fmt.Errorf("delete article: %w", err)
	}

	s.metrics.IncArticleWrite("delete")
	s.logger.Info("article_deleted", "article_id", id)

	if err := s.cache.Invalidate(ctx, append(articleListKeys(), articleKey(id))...); err != nil {
		return fmt.Errorf("invalidate article cache: %w", err)
	}
	return nil
}

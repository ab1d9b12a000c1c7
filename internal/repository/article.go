package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/articlehub/articlehub/internal/model"
)

// Common errors for article repository operations.
var (
	ErrArticleNotFound = errors.New("article not found")
)

const articleColumns = `id, title, description, author_id, created_at, updated_at, deleted_at`

// ListArticles returns one page of live articles and the total matching count.
func (r *Repository) ListArticles(ctx context.Context, q model.ArticleQuery) ([]*model.Article, int, error) {
	var w whereBuilder
	w.add("deleted_at IS NULL")
	if q.CreatedFrom != nil {
		w.add("created_at >= ?", *q.CreatedFrom)
	}
	if q.CreatedTo != nil {
		w.add("created_at <= ?", *q.CreatedTo)
	}
	if q.AuthorID != nil {
		w.add("author_id = ?", *q.AuthorID)
	}
	if q.AuthorIDs != nil {
		w.add("author_id = ANY(?)", q.AuthorIDs)
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM articles"+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	page, args := w.page(q.Limit, q.Offset)
	query := "SELECT " + articleColumns + " FROM articles" + w.sql() +
		" ORDER BY created_at ASC NULLS LAST, id ASC" + page

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*model.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating articles: %w", err)
	}

	return articles, total, nil
}

// GetArticleByID retrieves a live article by its ID.
func (r *Repository) GetArticleByID(ctx context.Context, id int64) (*model.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 AND deleted_at IS NULL`

	article, err := scanArticle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to get article by ID: %w", err)
	}

	return article, nil
}

// CreateArticle inserts a new article and fills in the generated id and timestamps.
func (r *Repository) CreateArticle(ctx context.Context, article *model.Article) error {
	query := `
		INSERT INTO articles (title, description, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		article.Title,
		article.Description,
		article.AuthorID,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}

	return nil
}

// UpdateArticle writes the supplied columns of a live article. Nil fields
// keep their stored value; the author is never changed.
func (r *Repository) UpdateArticle(ctx context.Context, id int64, title, description *string) error {
	query := `
		UPDATE articles
		SET title = COALESCE($2, title), description = COALESCE($3, description), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, title, description)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

// DeleteArticle physically removes an article.
func (r *Repository) DeleteArticle(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

func scanArticle(row pgx.Row) (*model.Article, error) {
	var article model.Article
	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Description,
		&article.AuthorID,
		&article.CreatedAt,
		&article.UpdatedAt,
		&article.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

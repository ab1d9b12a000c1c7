package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/pagination"
	"github.com/articlehub/articlehub/internal/service"
)

var longDescription = strings.Repeat("lorem ipsum ", 30)

func sampleArticle(id int64) *model.Article {
	ts := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	return &model.Article{
		ID:          id,
		Title:       "First post",
		Description: longDescription,
		AuthorID:    1,
		Timestamps:  model.Timestamps{CreatedAt: ts, UpdatedAt: ts},
	}
}

func articleBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestArticleHandler_List(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	var got service.ArticleFilter
	env.articles.list = func(f service.ArticleFilter) (pagination.Page[*model.Article], error) {
		got = f
		return pagination.New([]*model.Article{sampleArticle(5)}, 1, 10, 0), nil
	}

	target := "/articles?startDate=2024-01-01&authorId=1&lastname=lee"
	for i := 0; i < 2; i++ {
		rec := env.do(http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code)
		page := decodeBody[pagination.Page[*model.Article]](t, rec)
		require.Len(t, page.Items, 1)
		assert.Equal(t, int64(5), page.Items[0].ID)
	}

	assert.Equal(t, 1, env.articles.count("List"))
	assert.True(t, env.redis.Exists(target))
	require.NotNil(t, got.StartDate)
	require.NotNil(t, got.AuthorID)
	assert.Equal(t, int64(1), *got.AuthorID)
	assert.Equal(t, "lee", got.Author.LastName)
	assert.Nil(t, got.Limit)

	rec := env.do(http.MethodGet, "/articles?endDate=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArticleHandler_Get(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.articles.get = func(id int64) (*model.Article, error) {
		if id == 5 {
			return sampleArticle(5), nil
		}
		return nil, service.ErrArticleNotFound
	}

	for i := 0; i < 3; i++ {
		rec := env.do(http.MethodGet, "/articles/5", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "First post", decodeBody[model.Article](t, rec).Title)
	}
	assert.Equal(t, 1, env.articles.count("GetByID"))

	rec := env.do(http.MethodGet, "/articles/6", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodGet, "/articles/6", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 3, env.articles.count("GetByID"), "not found is never cached")

	rec = env.do(http.MethodGet, "/articles/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArticleHandler_Create(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.articles.create = func(in service.CreateArticleInput) (*model.Article, error) {
		if in.AuthorID != 1 {
			return nil, service.ErrUserNotFound
		}
		a := sampleArticle(9)
		a.Title = in.Title
		a.Author = sampleUser(1).Scrubbed()
		return a, nil
	}

	body := articleBody(t, map[string]any{"title": "Hello world", "description": longDescription, "authorId": 1})
	rec := env.do(http.MethodPost, "/articles", body, env.sessionCookie(t))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[model.Article](t, rec)
	assert.Equal(t, "Hello world", created.Title)
	require.NotNil(t, created.Author)
	assert.Equal(t, "Ann", created.Author.FirstName)
	assert.NotContains(t, rec.Body.String(), "argon2id")

	body = articleBody(t, map[string]any{"title": "Hello world", "description": longDescription, "authorId": 2})
	rec = env.do(http.MethodPost, "/articles", body, env.sessionCookie(t))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body = articleBody(t, map[string]any{"title": "Hi", "description": longDescription, "authorId": 1})
	rec = env.do(http.MethodPost, "/articles", body, env.sessionCookie(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 2, env.articles.count("Create"))
}

func TestArticleHandler_UpdateEchoesPayload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	var got service.UpdateArticleInput
	env.articles.update = func(in service.UpdateArticleInput) (*model.Article, error) {
		got = in
		return &model.Article{ID: in.ID, Description: *in.Description}, nil
	}

	body := articleBody(t, map[string]any{"id": 1, "description": longDescription})
	rec := env.do(http.MethodPut, "/articles", body, env.sessionCookie(t))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, int64(1), got.ID)
	assert.Nil(t, got.Title, "omitted title is not written")
	require.NotNil(t, got.Description)

	resp := decodeBody[model.Article](t, rec)
	assert.Equal(t, int64(1), resp.ID)
	assert.Empty(t, resp.Title)

	body = articleBody(t, map[string]any{"id": 1, "title": "New title"})
	rec = env.do(http.MethodPut, "/articles", body, env.sessionCookie(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "description is required")
	assert.Equal(t, 1, env.articles.count("Update"))
}

func TestArticleHandler_DeleteAlwaysOK(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.articles.delete = func(id int64) service.DeleteResult {
		if id == 1 {
			return service.DeleteResult{Success: true, Message: "article deleted"}
		}
		return service.DeleteResult{Success: false, Message: service.ErrArticleNotFound.Error()}
	}

	rec := env.do(http.MethodDelete, "/articles/delete?id=1", "", env.sessionCookie(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.DeleteResult{Success: true, Message: "article deleted"}, decodeBody[service.DeleteResult](t, rec))

	rec = env.do(http.MethodDelete, "/articles/delete?id=404", "", env.sessionCookie(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.DeleteResult{Success: false, Message: "article not found"}, decodeBody[service.DeleteResult](t, rec))

	rec = env.do(http.MethodDelete, "/articles/delete", "", env.sessionCookie(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

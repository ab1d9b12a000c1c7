package handler

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/articlehub/articlehub/internal/handler/dto"
	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/pagination"
	"github.com/articlehub/articlehub/internal/service"
)

func sampleUser(id int64) *model.User {
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.User{
		ID:           id,
		FirstName:    "Ann",
		LastName:     "Lee",
		Email:        "ann@example.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		Timestamps:   model.Timestamps{CreatedAt: ts, UpdatedAt: ts},
	}
}

func TestUserHandler_ListIsCached(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	var got service.UserFilter
	env.users.list = func(f service.UserFilter) (pagination.Page[*model.User], error) {
		got = f
		return pagination.New([]*model.User{sampleUser(1)}, 1, 5, 0), nil
	}

	for i := 0; i < 2; i++ {
		rec := env.do(http.MethodGet, "/users/all?limit=5&firstname=an", "")
		require.Equal(t, http.StatusOK, rec.Code)

		page := decodeBody[pagination.Page[*model.User]](t, rec)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Ann", page.Items[0].FirstName)
		assert.Equal(t, 1, page.PaginationInfo.TotalItems)
	}

	assert.Equal(t, 1, env.users.count("List"))
	require.NotNil(t, got.Limit)
	assert.Equal(t, 5, *got.Limit)
	assert.Equal(t, "an", got.Names.FirstName)
	assert.True(t, env.redis.Exists("/users/all?limit=5&firstname=an"))

	// A different query string is a different cache entry.
	rec := env.do(http.MethodGet, "/users/all?limit=6", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, env.users.count("List"))
}

func TestUserHandler_ListRejectsBadPaging(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/users/all?skip=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody[dto.ErrorResponse](t, rec).Code)
	assert.Zero(t, env.users.count("List"))
}

func TestUserHandler_Get(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.users.get = func(id service.Identity) (*model.User, error) {
		switch {
		case id.ID == 1:
			return sampleUser(1), nil
		case id.Email == "ann@example.com":
			return sampleUser(1), nil
		default:
			return nil, service.ErrUserNotFound
		}
	}

	rec := env.do(http.MethodGet, "/users?id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "argon2id")
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Equal(t, int64(1), decodeBody[model.User](t, rec).ID)

	rec = env.do(http.MethodGet, "/users?id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.users.count("GetByIdentity"))

	cached, err := env.redis.Get("/users?id=1")
	require.NoError(t, err)
	assert.NotContains(t, cached, "argon2id")

	rec = env.do(http.MethodGet, "/users?email=ann@example.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/users?id=99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.redis.Exists("/users?id=99"), "errors must not be cached")

	rec = env.do(http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_Create(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.users.create = func(in service.CreateUserInput) (*model.User, error) {
		if in.Email == "taken@example.com" {
			return nil, service.ErrEmailTaken
		}
		u := sampleUser(7)
		u.Email = in.Email
		return u.Scrubbed(), nil
	}

	rec := env.do(http.MethodPost, "/users", `{"firstname":"Ann","lastname":"Lee","email":"new@example.com","password":"password1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[model.User](t, rec)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "new@example.com", created.Email)

	rec = env.do(http.MethodPost, "/users", `{"firstname":"Ann","lastname":"Lee","email":"taken@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "user with this email already exists", decodeBody[dto.ErrorResponse](t, rec).Error)

	rec = env.do(http.MethodPost, "/users", `{"firstname":"Ann","lastname":"Lee","email":"new@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[dto.ErrorResponse](t, rec).Error, "password")

	assert.Equal(t, 2, env.users.count("Create"))
}

func TestUserHandler_Update(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	var got service.UpdateUserInput
	env.users.update = func(in service.UpdateUserInput) (*model.User, error) {
		got = in
		u := sampleUser(in.ID)
		u.FirstName = *in.FirstName
		return u.Scrubbed(), nil
	}

	rec := env.do(http.MethodPut, "/users", `{"id":3,"firstname":"Bea"}`, env.sessionCookie(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bea", decodeBody[model.User](t, rec).FirstName)
	assert.Equal(t, int64(3), got.ID)
	assert.Nil(t, got.Email)
	assert.Nil(t, got.Password)

	rec = env.do(http.MethodPut, "/users", `{"firstname":"Bea"}`, env.sessionCookie(t))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, env.users.count("Update"))
}

func TestUserHandler_Delete(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.users.softDelete = func(id int64) error {
		if id != 1 {
			return service.ErrUserNotFound
		}
		return nil
	}
	env.users.hardDelete = env.users.softDelete

	tests := []struct {
		target     string
		wantStatus int
	}{
		{"/users/delete?id=1", http.StatusNoContent},
		{"/users/delete?id=2", http.StatusNotFound},
		{"/users/delete", http.StatusBadRequest},
		{"/users/delete?id=abc", http.StatusBadRequest},
		{"/users/purge?id=1", http.StatusNoContent},
		{"/users/purge?id=2", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := env.do(http.MethodDelete, tt.target, "", env.sessionCookie(t))
		assert.Equal(t, tt.wantStatus, rec.Code, tt.target)
	}

	assert.Equal(t, 2, env.users.count("SoftDelete"))
	assert.Equal(t, 2, env.users.count("HardDelete"))
}

func TestUserHandler_InternalErrorHidesCause(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.users.list = func(service.UserFilter) (pagination.Page[*model.User], error) {
		return pagination.Page[*model.User]{}, errString("pgx: password authentication failed")
	}

	rec := env.do(http.MethodGet, "/users/all", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "pgx"))
}

type errString string

func (e errString) Error() string { return string(e) }

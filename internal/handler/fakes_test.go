package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/articlehub/articlehub/internal/auth"
	"github.com/articlehub/articlehub/internal/cache"
	"github.com/articlehub/articlehub/internal/middleware"
	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/pagination"
	"github.com/articlehub/articlehub/internal/service"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testCookie = "jwt"
)

// calls counts invocations per method name.
type calls struct {
	mu sync.Mutex
	n  map[string]int
}

func (c *calls) inc(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == nil {
		c.n = make(map[string]int)
	}
	c.n[name]++
}

func (c *calls) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n[name]
}

type fakeUsers struct {
	calls
	list       func(service.UserFilter) (pagination.Page[*model.User], error)
	get        func(service.Identity) (*model.User, error)
	create     func(service.CreateUserInput) (*model.User, error)
	update     func(service.UpdateUserInput) (*model.User, error)
	softDelete func(int64) error
	hardDelete func(int64) error
}

func (f *fakeUsers) List(ctx context.Context, filter service.UserFilter) (pagination.Page[*model.User], error) {
	f.inc("List")
	return f.list(filter)
}

func (f *fakeUsers) GetByIdentity(ctx context.Context, identity service.Identity) (*model.User, error) {
	f.inc("GetByIdentity")
	return f.get(identity)
}

func (f *fakeUsers) Create(ctx context.Context, input service.CreateUserInput) (*model.User, error) {
	f.inc("Create")
	return f.create(input)
}

func (f *fakeUsers) Update(ctx context.Context, input service.UpdateUserInput) (*model.User, error) {
	f.inc("Update")
	return f.update(input)
}

func (f *fakeUsers) SoftDelete(ctx context.Context, id int64) error {
	f.inc("SoftDelete")
	return f.softDelete(id)
}

func (f *fakeUsers) HardDelete(ctx context.Context, id int64) error {
	f.inc("HardDelete")
	return f.hardDelete(id)
}

type fakeArticles struct {
	calls
	list   func(service.ArticleFilter) (pagination.Page[*model.Article], error)
	get    func(int64) (*model.Article, error)
	create func(service.CreateArticleInput) (*model.Article, error)
	update func(service.UpdateArticleInput) (*model.Article, error)
	delete func(int64) service.DeleteResult
}

func (f *fakeArticles) List(ctx context.Context, filter service.ArticleFilter) (pagination.Page[*model.Article], error) {
	f.inc("List")
	return f.list(filter)
}

func (f *fakeArticles) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	f.inc("GetByID")
	return f.get(id)
}

func (f *fakeArticles) Create(ctx context.Context, input service.CreateArticleInput) (*model.Article, error) {
	f.inc("Create")
	return f.create(input)
}

func (f *fakeArticles) Update(ctx context.Context, input service.UpdateArticleInput) (*model.Article, error) {
	f.inc("Update")
	return f.update(input)
}

func (f *fakeArticles) Delete(ctx context.Context, id int64) service.DeleteResult {
	f.inc("Delete")
	return f.delete(id)
}

type fakeAuth struct {
	calls
	register  func(service.CreateUserInput) (*model.User, error)
	login     func(service.LoginInput) (*service.LoginResult, error)
	logout    func(string) (service.LogoutResult, error)
	lastToken string
}

func (f *fakeAuth) Register(ctx context.Context, input service.CreateUserInput) (*model.User, error) {
	f.inc("Register")
	return f.register(input)
}

func (f *fakeAuth) Login(ctx context.Context, input service.LoginInput) (*service.LoginResult, error) {
	f.inc("Login")
	return f.login(input)
}

func (f *fakeAuth) Logout(ctx context.Context, token string) (service.LogoutResult, error) {
	f.inc("Logout")
	f.lastToken = token
	return f.logout(token)
}

type testEnv struct {
	router   http.Handler
	users    *fakeUsers
	articles *fakeArticles
	auth     *fakeAuth
	cache    *cache.Cache
	redis    *miniredis.Miniredis
	signer   *auth.TokenSigner
}

type envOption func(*RouterConfig, *testEnv)

func withLoginLimit(burst int) envOption {
	return func(cfg *RouterConfig, env *testEnv) {
		cfg.LoginRateLimit = middleware.RateLimitIP(middleware.RateLimitConfig{
			Logger:  cfg.Logger,
			Limiter: env.cache,
			Enabled: true,
			Scope:   "login",
			RPS:     1,
			Burst:   burst,
		})
	}
}

func withSecureCookie() envOption {
	return func(cfg *RouterConfig, env *testEnv) {
		cfg.Auth.cookie.Secure = true
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewWithClient(client, cache.WithLogger(logger))

	signer, err := auth.NewTokenSigner(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenSigner: %v", err)
	}

	env := &testEnv{
		users:    &fakeUsers{},
		articles: &fakeArticles{},
		auth:     &fakeAuth{},
		cache:    c,
		redis:    mr,
		signer:   signer,
	}

	cfg := RouterConfig{
		Logger:   logger,
		Health:   NewHealthHandler(Dependency{Name: "redis", Checker: c}),
		Auth:     NewAuthHandler(env.auth, CookieConfig{Name: testCookie}, logger),
		Users:    NewUserHandler(env.users, c, logger),
		Articles: NewArticleHandler(env.articles, c, logger),
		RequireSession: middleware.RequireSession(middleware.SessionConfig{
			Logger:     logger,
			Verifier:   signer,
			CookieName: testCookie,
		}),
		Security:           middleware.SecurityConfig{IsDevelopment: true},
		CORS:               middleware.DefaultCORSConfig(),
		MaxRequestBodySize: 1 << 16,
	}
	for _, opt := range opts {
		opt(&cfg, env)
	}

	env.router = NewRouter(cfg)
	return env
}

// sessionCookie returns a valid session cookie for user 1.
func (e *testEnv) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()

	token, err := e.signer.Issue(1, "ann@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return &http.Cookie{Name: testCookie, Value: token}
}

func (e *testEnv) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

func strPtr(s string) *string { return &s }

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/articlehub/articlehub/internal/middleware"
)

// RouterConfig collects everything the HTTP surface is built from.
type RouterConfig struct {
	Logger   *slog.Logger
	Health   *HealthHandler
	Auth     *AuthHandler
	Users    *UserHandler
	Articles *ArticleHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler

	// RequireSession guards write routes.
	RequireSession func(http.Handler) http.Handler
	// LoginRateLimit is applied to POST /auth/login when set.
	LoginRateLimit func(http.Handler) http.Handler

	Security           middleware.SecurityConfig
	CORS               middleware.CORSConfig
	MaxRequestBodySize int64
	// VerbosePanics prints recovered panic stacks to stderr.
	VerbosePanics bool
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	guard := cfg.RequireSession
	if guard == nil {
		panic("handler: RouterConfig.RequireSession is required")
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.VerbosePanics))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	loginLimit := cfg.LoginRateLimit
	if loginLimit == nil {
		loginLimit = passThrough
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/registration", cfg.Auth.Register)
		r.With(loginLimit).Post("/login", cfg.Auth.Login)
		r.Post("/logout", cfg.Auth.Logout)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", cfg.Users.Get)
		r.Get("/all", cfg.Users.List)
		r.Post("/", cfg.Users.Create)
		r.With(guard).Put("/", cfg.Users.Update)
		r.With(guard).Delete("/delete", cfg.Users.SoftDelete)
		r.With(guard).Delete("/purge", cfg.Users.HardDelete)
	})

	r.Route("/articles", func(r chi.Router) {
		r.Get("/", cfg.Articles.List)
		r.Get("/{id}", cfg.Articles.Get)
		r.With(guard).Post("/", cfg.Articles.Create)
		r.With(guard).Put("/", cfg.Articles.Update)
		r.With(guard).Delete("/delete", cfg.Articles.Delete)
	})

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}

func passThrough(next http.Handler) http.Handler {
	return next
}

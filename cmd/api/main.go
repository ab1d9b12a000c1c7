// Package main is the entrypoint for the articlehub API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/articlehub/articlehub/internal/auth"
	"github.com/articlehub/articlehub/internal/cache"
	"github.com/articlehub/articlehub/internal/config"
	"github.com/articlehub/articlehub/internal/database"
	"github.com/articlehub/articlehub/internal/handler"
	"github.com/articlehub/articlehub/internal/metrics"
	"github.com/articlehub/articlehub/internal/middleware"
	"github.com/articlehub/articlehub/internal/repository"
	"github.com/articlehub/articlehub/internal/server"
	"github.com/articlehub/articlehub/internal/service"
	"github.com/articlehub/articlehub/internal/worker/cleanup"
)

var (
	_ service.UserStore    = (*repository.Repository)(nil)
	_ service.ArticleStore = (*repository.Repository)(nil)
	_ service.SessionStore = (*repository.Repository)(nil)

	_ service.CacheInvalidator = (*cache.Cache)(nil)
	_ middleware.IPRateLimiter = (*cache.Cache)(nil)

	_ service.PasswordHasher   = (*auth.Argon2Hasher)(nil)
	_ service.TokenIssuer      = (*auth.TokenSigner)(nil)
	_ middleware.TokenVerifier = (*auth.TokenSigner)(nil)

	_ service.UserDirectory     = (*service.UserService)(nil)
	_ middleware.SessionChecker = (*service.AuthService)(nil)

	_ handler.UserService    = (*service.UserService)(nil)
	_ handler.ArticleService = (*service.ArticleService)(nil)
	_ handler.AuthService    = (*service.AuthService)(nil)

	_ cleanup.ExpiredSessionDeleter = (*repository.Repository)(nil)
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("server error", "error", sanitizeError(err, cfg.DatabaseURL, cfg.RedisURL))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.MigrateOnStart {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Error(
				"failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return fmt.Errorf("migrate: %w", err)
		}
		version, dirty, err := database.Version(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("schema version: %w", err)
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", version)
		}
		logger.Info("database schema is current", "version", version)
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return fmt.Errorf("connect database: %w", err)
	}
	logger.Info("connected to database")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)

	cacheClient, err := cache.New(ctx, cfg.RedisURL,
		cache.WithLogger(logger),
		cache.WithMetrics(recorder),
	)
	if err != nil {
		repo.Close()
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("connected to Redis")

	tokens, err := auth.NewTokenSigner(cfg.JWTSecret, cfg.JWTExpires)
	if err != nil {
		repo.Close()
		_ = cacheClient.Close()
		return fmt.Errorf("token signer: %w", err)
	}
	hasher := auth.NewArgon2Hasher(auth.DefaultArgon2Params)

	userSvc := service.NewUserService(repo, hasher, cacheClient, recorder, logger)
	articleSvc := service.NewArticleService(repo, userSvc, cacheClient, recorder, logger)
	authSvc := service.NewAuthService(userSvc, repo, hasher, tokens, recorder, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	router := handler.NewRouter(handler.RouterConfig{
		Logger: logger,
		Health: handler.NewHealthHandler(
			handler.Dependency{Name: "database", Checker: repo},
			handler.Dependency{Name: "redis", Checker: cacheClient},
		),
		Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
			Name:   cfg.CookieName,
			Secure: cfg.IsProduction(),
		}, logger),
		Users:    handler.NewUserHandler(userSvc, cacheClient, logger),
		Articles: handler.NewArticleHandler(articleSvc, cacheClient, logger),
		Metrics:  metrics.Handler(registry),
		RequireSession: middleware.RequireSession(middleware.SessionConfig{
			Logger:          logger,
			Verifier:        tokens,
			CookieName:      cfg.CookieName,
			Sessions:        authSvc,
			CheckRevocation: cfg.SessionCheckRevocation,
		}),
		LoginRateLimit: middleware.RateLimitIP(middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cacheClient,
			Enabled: cfg.RateLimitLoginEnabled,
			Scope:   "login",
			RPS:     cfg.RateLimitLoginRPS,
			Burst:   cfg.RateLimitLoginBurst,
		}),
		Security:           middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		CORS:               cors,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		VerbosePanics:      cfg.IsDevelopment(),
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Hooks run in reverse, so the sweeper stops before its stores close.
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	sweeper := cleanup.NewSweeper(repo, cfg.SessionSweepInterval, logger, recorder)
	sweeper.Start(ctx)
	srv.OnShutdown("session sweeper", sweeper.Stop)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"session_revocation", cfg.SessionCheckRevocation,
		"login_rate_limit", cfg.RateLimitLoginEnabled,
	)

	return srv.Run()
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "articlehub")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package testutil holds shared fixtures for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/articlehub/articlehub/internal/database"
	"github.com/articlehub/articlehub/internal/model"
)

// PostgresImage is the server image integration tests run against.
const PostgresImage = "postgres:16-alpine"

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// StartPostgres runs a disposable Postgres container with the schema
// migrated and returns its connection string. The container is terminated
// when the test finishes.
func StartPostgres(t testing.TB) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithDatabase("articlehub_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	if err := database.RunMigrations(connStr); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return connStr
}

// ResetSchema empties every table and restarts id sequences.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE sessions, articles, users RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// StartRedis runs an in-process Redis and returns a client bound to it.
func StartRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

var seq atomic.Int64

// UniqueEmail returns an address no other call in this process returns.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@example.com", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestUser creates an unsaved user with sensible defaults.
func NewTestUser(t testing.TB, first, last, email string) *model.User {
	t.Helper()
	return &model.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
	}
}

// NewTestArticle creates an unsaved article by authorID.
func NewTestArticle(t testing.TB, authorID int64, title string) *model.Article {
	t.Helper()
	return &model.Article{
		Title:       title,
		Description: LongText(300),
		AuthorID:    authorID,
	}
}

// LongText returns n characters of filler text.
func LongText(n int) string {
	const filler = "lorem ipsum dolor sit amet "
	b := make([]byte, 0, n)
	for len(b) < n {
		b = append(b, filler[len(b)%len(filler)])
	}
	return string(b)
}

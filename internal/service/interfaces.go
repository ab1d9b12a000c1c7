package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/articlehub/articlehub/internal/model"
)

type UserStore interface {
	FindUserIDs(ctx context.Context, filter model.NameFilter) ([]int64, error)
	ListUsers(ctx context.Context, q model.UserQuery) ([]*model.User, int, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ArticleStore interface {
	ListArticles(ctx context.Context, q model.ArticleQuery) ([]*model.Article, int, error)
	GetArticleByID(ctx context.Context, id int64) (*model.Article, error)
	CreateArticle(ctx context.Context, article *model.Article) error
	UpdateArticle(ctx context.Context, id int64, title, description *string) error
	DeleteArticle(ctx context.Context, id int64) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, id int64) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// UserDirectory is the slice of user operations other services depend on.
type UserDirectory interface {
	GetByIdentity(ctx context.Context, identity Identity) (*model.User, error)
	Create(ctx context.Context, input CreateUserInput) (*model.User, error)
	MatchingIDs(ctx context.Context, filter model.NameFilter) ([]int64, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
	TTL() time.Duration
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, patterns ...string) error
}

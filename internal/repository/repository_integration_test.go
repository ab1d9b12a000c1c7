//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/articlehub/articlehub/internal/database"
	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/testutil"
)

type RepositoryIntegrationSuite struct {
	suite.Suite
	ctx  context.Context
	repo *Repository
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	connStr := testutil.StartPostgres(s.T())
	// Second run is a no-op.
	s.Require().NoError(database.RunMigrations(connStr))

	version, dirty, err := database.Version(connStr)
	s.Require().NoError(err)
	s.Equal(uint(3), version)
	s.False(dirty)

	repo, err := New(s.ctx, connStr)
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *RepositoryIntegrationSuite) SetupTest() {
	s.Require().NoError(testutil.ResetSchema(s.ctx, s.repo.Pool()))
}

func TestRepositoryIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RepositoryIntegrationSuite))
}

func (s *RepositoryIntegrationSuite) createUser(first, last, email string) *model.User {
	u := testutil.NewTestUser(s.T(), first, last, email)
	s.Require().NoError(s.repo.CreateUser(s.ctx, u))
	return u
}

func (s *RepositoryIntegrationSuite) TestCreateUser_AssignsIDAndRejectsDuplicateEmail() {
	u := s.createUser("Ada", "Lovelace", "ada@example.com")
	s.Positive(u.ID)
	s.False(u.CreatedAt.IsZero())

	dup := &model.User{FirstName: "Other", LastName: "Person", Email: "ada@example.com", PasswordHash: "x"}
	s.ErrorIs(s.repo.CreateUser(s.ctx, dup), ErrEmailExists)
}

func (s *RepositoryIntegrationSuite) TestSoftDeletedUserIsHidden() {
	u := s.createUser("Ada", "Lovelace", "ada@example.com")

	now := time.Now()
	u.DeletedAt = &now
	s.Require().NoError(s.repo.UpdateUser(s.ctx, u))

	_, err := s.repo.GetUserByID(s.ctx, u.ID)
	s.ErrorIs(err, ErrUserNotFound)
	_, err = s.repo.GetUserByEmail(s.ctx, u.Email)
	s.ErrorIs(err, ErrUserNotFound)

	users, total, err := s.repo.ListUsers(s.ctx, model.UserQuery{Limit: 10})
	s.Require().NoError(err)
	s.Empty(users)
	s.Zero(total)
}

func (s *RepositoryIntegrationSuite) TestFindUserIDs_AndCombinedCaseInsensitive() {
	a := s.createUser("Anna", "Smith", "anna@example.com")
	s.createUser("Anna", "Jones", "anna.j@example.com")
	s.createUser("Bob", "Smithers", "bob@example.com")
	s.createUser("100%", "Literal", "pct@example.com")

	ids, err := s.repo.FindUserIDs(s.ctx, model.NameFilter{FirstName: "ann", LastName: "SMI"})
	s.Require().NoError(err)
	s.Equal([]int64{a.ID}, ids)

	ids, err = s.repo.FindUserIDs(s.ctx, model.NameFilter{FirstName: "%"})
	s.Require().NoError(err)
	s.Len(ids, 1, "percent sign must match literally")
}

func (s *RepositoryIntegrationSuite) TestListUsers_PaginatesInCreationOrder() {
	for _, e := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		s.createUser("First", "Last", e)
	}

	users, total, err := s.repo.ListUsers(s.ctx, model.UserQuery{Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(users, 1)
	s.Equal("c@x.io", users[0].Email)

	users, _, err = s.repo.ListUsers(s.ctx, model.UserQuery{IDs: []int64{}})
	s.Require().NoError(err)
	s.Empty(users, "empty id set matches nothing")
}

func (s *RepositoryIntegrationSuite) TestArticles_FilterUpdateAndCascade() {
	author := s.createUser("Ada", "Lovelace", "ada@example.com")
	other := s.createUser("Alan", "Turing", "alan@example.com")

	a := &model.Article{Title: "Engines", Description: "notes", AuthorID: author.ID}
	s.Require().NoError(s.repo.CreateArticle(s.ctx, a))
	s.Require().NoError(s.repo.CreateArticle(s.ctx, &model.Article{Title: "Machines", Description: "x", AuthorID: other.ID}))

	articles, total, err := s.repo.ListArticles(s.ctx, model.ArticleQuery{AuthorID: &author.ID, Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal("Engines", articles[0].Title)

	future := time.Now().Add(time.Hour)
	_, total, err = s.repo.ListArticles(s.ctx, model.ArticleQuery{CreatedFrom: &future})
	s.Require().NoError(err)
	s.Zero(total)

	title := "Analytical Engines"
	s.Require().NoError(s.repo.UpdateArticle(s.ctx, a.ID, &title, nil))

	got, err := s.repo.GetArticleByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("Analytical Engines", got.Title)
	s.Equal("notes", got.Description, "omitted column keeps its value")
	s.Equal(author.ID, got.AuthorID)

	s.ErrorIs(s.repo.UpdateArticle(s.ctx, 9999, &title, nil), ErrArticleNotFound)

	s.Require().NoError(s.repo.DeleteUser(s.ctx, author.ID))
	_, err = s.repo.GetArticleByID(s.ctx, a.ID)
	s.ErrorIs(err, ErrArticleNotFound)

	s.ErrorIs(s.repo.DeleteArticle(s.ctx, a.ID), ErrArticleNotFound)
}

func (s *RepositoryIntegrationSuite) TestSessions_LifecycleAndSweep() {
	u := s.createUser("Ada", "Lovelace", "ada@example.com")

	live := &model.Session{Token: "live-token", Exp: 3600, UserID: u.ID}
	s.Require().NoError(s.repo.CreateSession(s.ctx, live))
	stale := &model.Session{Token: "stale-token", Exp: 1, UserID: u.ID}
	s.Require().NoError(s.repo.CreateSession(s.ctx, stale))

	got, err := s.repo.GetSessionByToken(s.ctx, "live-token")
	s.Require().NoError(err)
	s.Equal(live.ID, got.ID)

	n, err := s.repo.DeleteExpiredSessions(s.ctx, time.Now().Add(time.Minute))
	s.Require().NoError(err)
	s.EqualValues(1, n)

	_, err = s.repo.GetSessionByToken(s.ctx, "stale-token")
	s.ErrorIs(err, ErrSessionNotFound)

	s.Require().NoError(s.repo.DeleteSession(s.ctx, live.ID))
	s.ErrorIs(s.repo.DeleteSession(s.ctx, live.ID), ErrSessionNotFound)
}

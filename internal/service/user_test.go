package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/articlehub/articlehub/internal/metrics"
	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/repository"
	"github.com/articlehub/articlehub/internal/service"
	"github.com/articlehub/articlehub/internal/service/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

type UserServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller
	ctx  context.Context

	users   *mocks.MockUserStore
	hasher  *mocks.MockPasswordHasher
	cache   *mocks.MockCacheInvalidator
	metrics *metrics.InMemoryRecorder

	service *service.UserService
}

func (s *UserServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ctx = context.Background()

	s.users = mocks.NewMockUserStore(s.ctrl)
	s.hasher = mocks.NewMockPasswordHasher(s.ctrl)
	s.cache = mocks.NewMockCacheInvalidator(s.ctrl)
	s.metrics = metrics.NewInMemory()

	s.service = service.NewUserService(s.users, s.hasher, s.cache, s.metrics, discardLogger())
}

func (s *UserServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) TestList_EmptyStorage() {
	s.users.EXPECT().ListUsers(s.ctx, model.UserQuery{Limit: 10, Offset: 0}).Return(nil, 0, nil)

	page, err := s.service.List(s.ctx, service.UserFilter{Limit: intPtr(10)})

	s.Require().NoError(err)
	s.NotNil(page.Items)
	s.Empty(page.Items)
	s.Equal(0, page.PaginationInfo.TotalItems)
	s.Equal(0, page.PaginationInfo.TotalPages)
	s.Equal(0, page.PaginationInfo.Page)
	s.False(page.PaginationInfo.HasNextPage)
	s.False(page.PaginationInfo.HasPreviousPage)
}

func (s *UserServiceTestSuite) TestList_DefaultsAndScrubs() {
	stored := []*model.User{{ID: 1, Email: "a@example.com", PasswordHash: "secret"}}
	s.users.EXPECT().ListUsers(s.ctx, model.UserQuery{Limit: service.DefaultUserLimit, Offset: 200}).Return(stored, 201, nil)

	page, err := s.service.List(s.ctx, service.UserFilter{Skip: 2})

	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Empty(page.Items[0].PasswordHash)
	s.Equal(3, page.PaginationInfo.Page)
	s.True(page.PaginationInfo.HasPreviousPage)
}

func (s *UserServiceTestSuite) TestList_NameFilterWithoutMatchesShortCircuits() {
	names := model.NameFilter{FirstName: "zz"}
	s.users.EXPECT().FindUserIDs(s.ctx, names).Return([]int64{}, nil)

	page, err := s.service.List(s.ctx, service.UserFilter{Names: names, Limit: intPtr(5)})

	s.Require().NoError(err)
	s.Empty(page.Items)
	s.Equal(0, page.PaginationInfo.TotalItems)
}

func (s *UserServiceTestSuite) TestList_NameFilterRestrictsIDs() {
	names := model.NameFilter{LastName: "smi"}
	s.users.EXPECT().FindUserIDs(s.ctx, names).Return([]int64{4, 9}, nil)
	s.users.EXPECT().ListUsers(s.ctx, model.UserQuery{IDs: []int64{4, 9}, Limit: 5}).Return([]*model.User{{ID: 4}, {ID: 9}}, 2, nil)

	page, err := s.service.List(s.ctx, service.UserFilter{Names: names, Limit: intPtr(5)})

	s.Require().NoError(err)
	s.Len(page.Items, 2)
}

func (s *UserServiceTestSuite) TestGetByIdentity() {
	s.users.EXPECT().GetUserByID(s.ctx, int64(3)).Return(&model.User{ID: 3}, nil)
	u, err := s.service.GetByIdentity(s.ctx, service.Identity{ID: 3, Email: "ignored@example.com"})
	s.Require().NoError(err)
	s.Equal(int64(3), u.ID)

	s.users.EXPECT().GetUserByEmail(s.ctx, "nobody@example.com").Return(nil, repository.ErrUserNotFound)
	_, err = s.service.GetByIdentity(s.ctx, service.Identity{Email: "nobody@example.com"})
	s.ErrorIs(err, service.ErrUserNotFound)
	s.Equal(service.KindNotFound, service.KindOf(err))
}

func (s *UserServiceTestSuite) TestCreate_DuplicateEmailIsConflict() {
	s.users.EXPECT().GetUserByEmail(s.ctx, "taken@example.com").Return(&model.User{ID: 1}, nil)

	_, err := s.service.Create(s.ctx, service.CreateUserInput{Email: "taken@example.com", Password: "password1"})

	s.ErrorIs(err, service.ErrEmailTaken)
	s.Equal(service.KindConflict, service.KindOf(err))
}

func (s *UserServiceTestSuite) TestCreate_RaceOnUniqueIndexIsConflict() {
	s.users.EXPECT().GetUserByEmail(s.ctx, "race@example.com").Return(nil, repository.ErrUserNotFound)
	s.hasher.EXPECT().Hash("password1").Return("hash", nil)
	s.users.EXPECT().CreateUser(s.ctx, gomock.Any()).Return(repository.ErrEmailExists)

	_, err := s.service.Create(s.ctx, service.CreateUserInput{Email: "race@example.com", Password: "password1"})

	s.ErrorIs(err, service.ErrEmailTaken)
}

func (s *UserServiceTestSuite) TestCreate_OtherInsertFailureIsBadRequest() {
	s.users.EXPECT().GetUserByEmail(s.ctx, "x@example.com").Return(nil, repository.ErrUserNotFound)
	s.hasher.EXPECT().Hash("password1").Return("hash", nil)
	s.users.EXPECT().CreateUser(s.ctx, gomock.Any()).Return(errors.New("connection reset"))

	_, err := s.service.Create(s.ctx, service.CreateUserInput{Email: "x@example.com", Password: "password1"})

	s.Equal(service.KindBadRequest, service.KindOf(err))
	s.EqualError(err, "failed to create user, x@example.com")
}

func (s *UserServiceTestSuite) TestCreate_HashesAndInvalidates() {
	s.users.EXPECT().GetUserByEmail(s.ctx, "new@example.com").Return(nil, repository.ErrUserNotFound)
	s.hasher.EXPECT().Hash("password1").Return("$argon2id$hash", nil)
	s.users.EXPECT().CreateUser(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *model.User) error {
		s.Equal("$argon2id$hash", u.PasswordHash)
		s.Equal("Ada", u.FirstName)
		u.ID = 11
		return nil
	})
	s.cache.EXPECT().Invalidate(s.ctx, "/users/all", "/users/all?*").Return(nil)

	u, err := s.service.Create(s.ctx, service.CreateUserInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "new@example.com", Password: "password1",
	})

	s.Require().NoError(err)
	s.Equal(int64(11), u.ID)
	s.Empty(u.PasswordHash)
	s.EqualValues(1, s.metrics.Snapshot().UserWrites["create"])
}

func (s *UserServiceTestSuite) TestUpdate_MergesProvidedFieldsOnly() {
	stored := &model.User{ID: 5, FirstName: "Old", LastName: "Name", Email: "old@example.com", PasswordHash: "oldhash"}
	s.users.EXPECT().GetUserByID(s.ctx, int64(5)).Return(stored, nil)
	s.hasher.EXPECT().Hash("newpassword").Return("newhash", nil)
	s.users.EXPECT().UpdateUser(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *model.User) error {
		s.Equal("New", u.FirstName)
		s.Equal("Name", u.LastName)
		s.Equal("old@example.com", u.Email)
		s.Equal("newhash", u.PasswordHash)
		return nil
	})
	s.cache.EXPECT().Invalidate(s.ctx, "/users?*", "/users/all", "/users/all?*", "/articles", "/articles?*").Return(nil)

	u, err := s.service.Update(s.ctx, service.UpdateUserInput{ID: 5, FirstName: strPtr("New"), Password: strPtr("newpassword")})

	s.Require().NoError(err)
	s.Equal("New", u.FirstName)
	s.Empty(u.PasswordHash)
}

func (s *UserServiceTestSuite) TestUpdate_NotFound() {
	s.users.EXPECT().GetUserByID(s.ctx, int64(5)).Return(nil, repository.ErrUserNotFound)

	_, err := s.service.Update(s.ctx, service.UpdateUserInput{ID: 5})

	s.ErrorIs(err, service.ErrUserNotFound)
}

func (s *UserServiceTestSuite) TestUpdate_EmailCollisionIsConflict() {
	s.users.EXPECT().GetUserByID(s.ctx, int64(5)).Return(&model.User{ID: 5}, nil)
	s.users.EXPECT().UpdateUser(s.ctx, gomock.Any()).Return(repository.ErrEmailExists)

	_, err := s.service.Update(s.ctx, service.UpdateUserInput{ID: 5, Email: strPtr("taken@example.com")})

	s.ErrorIs(err, service.ErrEmailTaken)
}

func (s *UserServiceTestSuite) TestSoftDelete_StampsDeletedAt() {
	s.users.EXPECT().GetUserByID(s.ctx, int64(8)).Return(&model.User{ID: 8}, nil)
	s.users.EXPECT().UpdateUser(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *model.User) error {
		s.NotNil(u.DeletedAt)
		return nil
	})
	s.cache.EXPECT().Invalidate(s.ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	s.Require().NoError(s.service.SoftDelete(s.ctx, 8))
	s.EqualValues(1, s.metrics.Snapshot().UserWrites["soft_delete"])
}

func (s *UserServiceTestSuite) TestHardDelete_InvalidatesArticleDetails() {
	s.users.EXPECT().GetUserByID(s.ctx, int64(8)).Return(&model.User{ID: 8}, nil)
	s.users.EXPECT().DeleteUser(s.ctx, int64(8)).Return(nil)
	s.cache.EXPECT().Invalidate(s.ctx, "/users?*", "/users/all", "/users/all?*", "/articles", "/articles?*", "/articles/*").Return(nil)

	s.Require().NoError(s.service.HardDelete(s.ctx, 8))
}

func (s *UserServiceTestSuite) TestHardDelete_InvalidationErrorPropagates() {
	s.users.EXPECT().GetUserByID(s.ctx, int64(8)).Return(&model.User{ID: 8}, nil)
	s.users.EXPECT().DeleteUser(s.ctx, int64(8)).Return(nil)
	s.cache.EXPECT().Invalidate(s.ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	err := s.service.HardDelete(s.ctx, 8)

	s.Error(err)
	s.Equal(service.KindInternal, service.KindOf(err))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/articlehub/articlehub/internal/metrics"
	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/pagination"
	"github.com/articlehub/articlehub/internal/repository"
)

// DefaultUserLimit is the page size when the caller gives none.
const DefaultUserLimit = 100

// UserService handles user business logic.
type UserService struct {
	users   UserStore
	hasher  PasswordHasher
	cache   CacheInvalidator
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, hasher PasswordHasher, cache CacheInvalidator, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:   users,
		hasher:  hasher,
		cache:   cache,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// Identity selects a single user by id, or by email when ID is zero.
type Identity struct {
	ID    int64
	Email string
}

// UserFilter defines a user listing request.
type UserFilter struct {
	Names model.NameFilter
	Limit *int // nil means DefaultUserLimit, 0 means unlimited
	Skip  int
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	FirstName  string
	LastName   string
	Patronymic *string
	Email      string
	Password   string
}

// UpdateUserInput defines a partial update. Nil fields are left unchanged.
type UpdateUserInput struct {
	ID         int64
	FirstName  *string
	LastName   *string
	Patronymic *string
	Email      *string
	Password   *string
}

// List returns one page of live users matching the filter.
func (s *UserService) List(ctx context.Context, f UserFilter) (pagination.Page[*model.User], error) {
	limit := DefaultUserLimit
	if f.Limit != nil {
		limit = *f.Limit
	}

	q := model.UserQuery{Limit: limit, Offset: pagination.Offset(limit, f.Skip)}
	if !f.Names.IsEmpty() {
		ids, err := s.MatchingIDs(ctx, f.Names)
		if err != nil {
			return pagination.Page[*model.User]{}, err
		}
		if len(ids) == 0 {
			return pagination.Empty[*model.User](limit, f.Skip), nil
		}
		q.IDs = ids
	}

	users, total, err := s.users.ListUsers(ctx, q)
	if err != nil {
		return pagination.Page[*model.User]{}, fmt.Errorf("list users: %w", err)
	}
	for i, u := range users {
		users[i] = u.Scrubbed()
	}

	return pagination.New(users, total, limit, f.Skip), nil
}

// MatchingIDs resolves name fragments to the ids of matching live users.
func (s *UserService) MatchingIDs(ctx context.Context, filter model.NameFilter) ([]int64, error) {
	ids, err := s.users.FindUserIDs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find users by name: %w", err)
	}
	return ids, nil
}

// GetByIdentity returns the live user with the given id or email.
// The returned user still carries its password hash.
func (s *UserService) GetByIdentity(ctx context.Context, identity Identity) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	if identity.ID != 0 {
		user, err = s.users.GetUserByID(ctx, identity.ID)
	} else {
		user, err = s.users.GetUserByEmail(ctx, identity.Email)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Create registers a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	_, err := s.users.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Patronymic:   input.Patronymic,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, badRequest("failed to create user, "+input.Email, err)
	}

	s.metrics.IncUserWrite("create")
	s.logger.Info("user_created", "user_id", user.ID)

	if err := s.cache.Invalidate(ctx, usersAllKey, usersAllPattern); err != nil {
		return nil, fmt.Errorf("invalidate user cache: %w", err)
	}

	return user.Scrubbed(), nil
}

// Update merges the provided fields into the stored user.
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*model.User, error) {
	user, err := s.GetByIdentity(ctx, Identity{ID: input.ID})
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Patronymic != nil {
		user.Patronymic = input.Patronymic
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.persist(ctx, user, "update"); err != nil {
		return nil, err
	}

	return user.Scrubbed(), nil
}

// SoftDelete marks the user as deleted without removing the row.
func (s *UserService) SoftDelete(ctx context.Context, id int64) error {
	user, err := s.GetByIdentity(ctx, Identity{ID: id})
	if err != nil {
		return err
	}

	now := s.now()
	user.DeletedAt = &now
	return s.persist(ctx, user, "soft_delete")
}

// HardDelete removes the user row. Articles and sessions cascade.
func (s *UserService) HardDelete(ctx context.Context, id int64) error {
	if _, err := s.GetByIdentity(ctx, Identity{ID: id}); err != nil {
		return err
	}

	if err := s.users.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.metrics.IncUserWrite("hard_delete")
	s.logger.Info("user_purged", "user_id", id)

	keys := append(userWriteKeys(), articlesAllPattern)
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate user cache: %w", err)
	}
	return nil
}

func (s *UserService) persist(ctx context.Context, user *model.User, op string) error {
	if err := s.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrEmailExists):
			return ErrEmailTaken
		}
		return fmt.Errorf("update user: %w", err)
	}

	s.metrics.IncUserWrite(op)
	s.logger.Info("user_"+op, "user_id", user.ID)

	if err := s.cache.Invalidate(ctx, userWriteKeys()...); err != nil {
		return fmt.Errorf("invalidate user cache: %w", err)
	}
	return nil
}

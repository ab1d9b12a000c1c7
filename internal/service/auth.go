package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/articlehub/articlehub/internal/metrics"
	"github.com/articlehub/articlehub/internal/model"
	"github.com/articlehub/articlehub/internal/repository"
)

// Messages returned by the session lifecycle.
const (
	MessageLoginSuccessful  = "login successful"
	MessageLoggedOut        = "logged out"
	MessageAlreadyLoggedOut = "already logged out"
	MessageAccessDenied     = "access denied"
)

// AuthService handles registration, login and logout.
type AuthService struct {
	users    UserDirectory
	sessions SessionStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserDirectory, sessions SessionStore, hasher PasswordHasher, tokens TokenIssuer, recorder metrics.Recorder, logger *slog.Logger) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		metrics:  recorder,
		logger:   logger,
	}
}

// LoginInput defines login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the issued token and its cookie lifetime.
type LoginResult struct {
	Token   string
	MaxAge  time.Duration
	Message string
}

// LogoutResult describes the logout outcome. ClearCookie is set only when
// a session was revoked.
type LogoutResult struct {
	Message     string
	ClearCookie bool
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, input CreateUserInput) (*model.User, error) {
	return s.users.Create(ctx, input)
}

// Login verifies credentials and records a new session.
// An unknown email surfaces as ErrUserNotFound.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.GetByIdentity(ctx, Identity{Email: input.Email})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metrics.IncLogin("not_found")
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin("invalid_credentials")
		s.logger.Warn("login_failed", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	ttl := s.tokens.TTL()
	session := &model.Session{
		Token:  token,
		Exp:    int(ttl / time.Second),
		UserID: user.ID,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.metrics.IncLogin("success")
	s.logger.Info("login_succeeded", "user_id", user.ID, "session_id", session.ID)

	return &LoginResult{Token: token, MaxAge: ttl, Message: MessageLoginSuccessful}, nil
}

// Logout revokes the session recorded for token.
func (s *AuthService) Logout(ctx context.Context, token string) (LogoutResult, error) {
	if token == "" {
		return LogoutResult{Message: MessageAlreadyLoggedOut}, nil
	}

	session, err := s.sessions.GetSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return LogoutResult{Message: MessageAccessDenied}, nil
		}
		return LogoutResult{}, fmt.Errorf("find session: %w", err)
	}

	if err := s.sessions.DeleteSession(ctx, session.ID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return LogoutResult{Message: MessageAccessDenied}, nil
		}
		return LogoutResult{}, fmt.Errorf("delete session: %w", err)
	}

	s.metrics.IncSessionRevoked()
	s.logger.Info("logout", "user_id", session.UserID, "session_id", session.ID)

	return LogoutResult{Message: MessageLoggedOut, ClearCookie: true}, nil
}

// SessionActive reports whether token still has a live session row.
func (s *AuthService) SessionActive(ctx context.Context, token string) (bool, error) {
	_, err := s.sessions.GetSessionByToken(ctx, token)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrSessionNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("find session: %w", err)
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/guard"
	"github.com/kickoff/fantasy/internal/provider"
	"github.com/kickoff/fantasy/internal/repository"
)

// Authenticator checks email/password credentials with the identity provider.
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error)
}

// UserService mirrors provider accounts into the users table and handles login.
type UserService struct {
	db      repository.DBTX
	users   repository.UserRepository
	authn   Authenticator
	lockout *guard.Lockout
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	db repository.DBTX,
	users repository.UserRepository,
	authn Authenticator,
	lockout *guard.Lockout,
	logger *slog.Logger,
) *UserService {
	return &UserService{db: db, users: users, authn: authn, lockout: lockout, logger: logger}
}

// SyncUserInput holds the sync-user request. Nil means the field was absent.
type SyncUserInput struct {
	ID       *string `json:"id"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
}

// SyncUserResult is returned by SyncUser; Data is set only when a row was inserted.
type SyncUserResult struct {
	Message string        `json:"message"`
	Data    []domain.User `json:"data,omitempty"`
}

// SyncUser inserts the provider account if it is not already mirrored.
func (s *UserService) SyncUser(ctx context.Context, in SyncUserInput) (*SyncUserResult, error) {
	if field, missing := domain.FirstMissing([]string{"id", "full_name", "email"}, in.ID, in.FullName, in.Email); missing {
		return nil, domain.ErrValidation(field + " is required")
	}

	user, err := s.users.CreateIfAbsent(ctx, s.db, domain.User{
		ID:       *in.ID,
		FullName: *in.FullName,
		Username: *in.Email,
		Role:     domain.RoleUser,
	})
	if err != nil {
		return nil, domain.ErrStoreUnavailable("sync user", err)
	}
	if user == nil {
		return &SyncUserResult{Message: "User already exists"}, nil
	}

	s.logger.Info("user synced", "user_id", user.ID)
	return &SyncUserResult{Message: "User inserted", Data: []domain.User{*user}}, nil
}

// LoginInput holds the login request. Nil means the field was absent.
type LoginInput struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

// Login verifies credentials with the identity provider and returns the mirrored user.
func (s *UserService) Login(ctx context.Context, in LoginInput, clientIP string) (*LoginResult, error) {
	if field, missing := domain.FirstMissing([]string{"email", "password"}, in.Email, in.Password); missing {
		return nil, domain.ErrValidation(field + " is required")
	}
	email, password := *in.Email, *in.Password

	if err := s.lockout.CheckLocked(ctx, email); err != nil {
		return nil, err
	}

	identity, err := s.authn.SignInWithPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, provider.ErrRejected) {
			s.lockout.RecordAttempt(ctx, email, clientIP, false)
			return nil, domain.ErrUnauthorized("invalid credentials")
		}
		return nil, domain.ErrStoreUnavailable("auth provider unavailable", err)
	}
	s.lockout.RecordAttempt(ctx, email, clientIP, true)

	user, err := s.users.FindByID(ctx, s.db, identity.ID)
	if err != nil {
		return nil, domain.ErrStoreUnavailable("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user not found in database")
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return &LoginResult{Message: "Login successful", User: *user}, nil
}

// GetUser returns a mirrored user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, domain.ErrStoreUnavailable("find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	return user, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/service/auth"
	"github.com/openswap/barter-api/internal/store"
)

// UserService provides account operations: registration, credential
// verification, and profile reads.
type UserService interface {
	// Register creates a new account with a hashed password.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Authenticate verifies the credentials and returns the user on
	// success. Returns auth.ErrInvalidCredentials when either the email
	// is unknown or the password does not match, without distinguishing
	// the two.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	logger   *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	log *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}

	if log == nil {
		log = slog.Default()
	}

	return &userServiceImpl{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		logger:   log.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, email)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	// The plaintext never leaves this function.
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed

	if err := s.users.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("registration rejected on duplicate field",
				slog.String("username", username))
		} else {
			log.Error("failed to save user",
				slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))

	return user, nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("authentication failed: unknown email")
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("authentication failed: password mismatch",
			slog.Int64("user_id", user.ID))
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

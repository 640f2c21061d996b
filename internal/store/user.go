package store

import (
	"context"

	"github.com/openswap/barter-api/internal/domain"
)

// UserStore defines the interface for user persistence.
// User writes are single-row operations and never join a larger
// transaction, so there is no WithTx variant.
type UserStore interface {
	// Create saves a new user. The user's ID is populated on success.
	// Returns ErrUsernameTaken or ErrEmailTaken on unique violations.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email, including the password hash,
	// for credential verification.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CategoryStore lists the fixed browse categories.
type CategoryStore interface {
	// List retrieves all categories ordered by name, each with its
	// current post count.
	List(ctx context.Context) ([]*domain.Category, error)
}

package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrPostNotFound, ErrOfferNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or when it references a row that does not exist
	// (foreign key violation). Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrStaleStatus is returned by guarded status transitions when the
	// row's current status no longer matches the expected one - typically
	// because a concurrent operation settled it first.
	ErrStaleStatus = errors.New("entity status changed concurrently")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrPostNotFound indicates that the requested post does not exist in the store.
	ErrPostNotFound = fmt.Errorf("%w: post", ErrNotFound)

	// ErrOfferNotFound indicates that the requested offer does not exist in the store.
	ErrOfferNotFound = fmt.Errorf("%w: offer", ErrNotFound)

	// ErrTradeNotFound indicates that the requested trade does not exist in the store.
	ErrTradeNotFound = fmt.Errorf("%w: trade", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrUsernameTaken indicates that a user with the given username already exists.
	ErrUsernameTaken = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrEmailTaken indicates that a user with the given email already exists.
	ErrEmailTaken = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrPostAlreadyTraded indicates that a settlement already exists for the
	// post or offer, enforced by the unique constraint on trades.response_id.
	ErrPostAlreadyTraded = fmt.Errorf("%w: trade", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}


// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application. ErrValidation and
// ErrInvalidArgument are the roots of the taxonomy; the more specific
// sentinels wrap one of them so errors.Is matches at either granularity.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidArgument is returned when caller-supplied data is malformed
	// in a way the domain cannot accept, such as a self-referential
	// child-post link on an offer.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrInvalidArgument)

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = fmt.Errorf("%w: invalid password", ErrValidation)

	// ErrInvalidPostStatus is returned when a post status is not valid.
	ErrInvalidPostStatus = fmt.Errorf("%w: invalid post status", ErrValidation)

	// ErrInvalidOfferStatus is returned when an offer status is not valid.
	ErrInvalidOfferStatus = fmt.Errorf("%w: invalid offer status", ErrValidation)

	// ErrInvalidTradeStatus is returned when a trade status is not valid.
	ErrInvalidTradeStatus = fmt.Errorf("%w: invalid trade status", ErrValidation)
)

// ValidationError wraps a sentinel error with the field that failed and a
// human-readable reason, so callers can both match with errors.Is and
// present a useful message.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap returns the wrapped sentinel to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

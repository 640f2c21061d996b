package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/service"
	"github.com/openswap/barter-api/internal/service/auth"
	"github.com/openswap/barter-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes. This is the single place the error taxonomy turns into transport
// semantics: NotFound 404, Forbidden 403, Conflict 409, InvalidArgument
// 400, anything unrecognized 500.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotPostOwner),
		errors.Is(err, service.ErrNotOfferAuthor),
		errors.Is(err, service.ErrChildPostNotOwned):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrPostNotOpen),
		errors.Is(err, service.ErrOfferNotPending),
		store.IsDuplicateError(err),
		errors.Is(err, store.ErrStaleStatus):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrSelfChildPost),
		errors.Is(err, domain.ErrAmbiguousConsideration),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Authorization errors
	case errors.Is(err, service.ErrNotPostOwner):
		return "Only the post owner can do this"

	case errors.Is(err, service.ErrNotOfferAuthor):
		return "Only the offer author can do this"

	case errors.Is(err, service.ErrChildPostNotOwned):
		return "You can only link your own post"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrPostNotFound):
		return "Post not found"

	case errors.Is(err, store.ErrOfferNotFound):
		return "Offer not found"

	case errors.Is(err, store.ErrTradeNotFound):
		return "Trade not found"

	case store.IsNotFoundError(err):
		return "Not found"

	// Conflict errors
	case errors.Is(err, service.ErrPostNotOpen):
		return "Post is not open for offers"

	case errors.Is(err, service.ErrOfferNotPending),
		errors.Is(err, store.ErrStaleStatus):
		return "Offer has already been settled"

	case errors.Is(err, store.ErrPostAlreadyTraded):
		return "Post has already been traded"

	case errors.Is(err, store.ErrUsernameTaken):
		return "Username already taken"

	case errors.Is(err, store.ErrEmailTaken):
		return "Email already registered"

	case store.IsDuplicateError(err):
		return "Already exists"

	// Bad request errors
	case errors.Is(err, domain.ErrSelfChildPost):
		return "Offer cannot link the post it targets"

	case errors.Is(err, domain.ErrAmbiguousConsideration):
		return "Offer cannot carry both items and a linked post"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, store.ErrInvalidEntity):
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return "Invalid " + vErr.Field + ": " + vErr.Message
		}
		return "Invalid request data"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing internal struct names back to the client.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format:
	// "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, validationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// validationTagMessage maps validation tags to user-friendly error messages
func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// Package service provides application-level services for posts, offers,
// trades, and users.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotPostOwner indicates the acting user does not own the post the
	// operation targets. Accepting and rejecting offers, editing a post,
	// and deleting a post all require ownership.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotPostOwner = errors.New("post is owned by another user")

	// ErrNotOfferAuthor indicates the acting user did not author the offer
	// they are trying to edit.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOfferAuthor = errors.New("offer was made by another user")

	// ErrChildPostNotOwned indicates the post linked as an offer's child
	// belongs to someone other than the offer's author. You can only put
	// your own listings on the table.
	// API layer should map this to HTTP 403 Forbidden.
	ErrChildPostNotOwned = errors.New("child post is owned by another user")

	// ErrPostNotOpen indicates the post is no longer accepting offers.
	// API layer should map this to HTTP 409 Conflict.
	ErrPostNotOpen = errors.New("post is not open for offers")

	// ErrOfferNotPending indicates the offer has already been settled.
	// Accepted and rejected are terminal states; no edit or second
	// settlement is possible.
	// API layer should map this to HTTP 409 Conflict.
	ErrOfferNotPending = errors.New("offer is no longer pending")
)

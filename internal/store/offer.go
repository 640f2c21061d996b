package store

import (
	"context"
	"database/sql"

	"github.com/openswap/barter-api/internal/domain"
)

// Pagination bounds for offer listings.
const (
	DefaultOfferLimit = 20
	MaxOfferLimit     = 100
)

// OfferFilter narrows an offer listing. Nil fields are omitted from the
// query, not defaulted; populated fields combine with AND.
type OfferFilter struct {
	PostID      *int64
	AuthorID    *int64
	ChildPostID *int64
	Status      *domain.OfferStatus

	Limit  int
	Offset int
}

// Normalize clamps pagination to the supported window: limit to
// [1, MaxOfferLimit] with DefaultOfferLimit when unset, offset to >= 0.
func (f OfferFilter) Normalize() OfferFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultOfferLimit
	}
	if f.Limit > MaxOfferLimit {
		f.Limit = MaxOfferLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// StatusCount is one row of a per-status offer tally.
type StatusCount struct {
	Status domain.OfferStatus `json:"status"`
	Count  int                `json:"count"`
}

// OfferStore defines the interface for offer ("response") persistence.
type OfferStore interface {
	// Create saves a new offer together with its items in one atomic unit.
	// The offer's ID is populated on success.
	// Returns ErrInvalidEntity if the post, author, or child post does not exist.
	Create(ctx context.Context, offer *domain.Offer) error

	// GetByID retrieves an offer with its items and display references
	// (author identity, parent post, child post when present).
	// Returns ErrOfferNotFound if the offer does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Offer, error)

	// GetForUpdate retrieves an offer's row and locks it for the duration
	// of the enclosing transaction. Items and display references are not
	// loaded. Only meaningful on a transaction-scoped store.
	// Returns ErrOfferNotFound if the offer does not exist.
	GetForUpdate(ctx context.Context, id int64) (*domain.Offer, error)

	// List retrieves offers matching the filter ordered by created_at
	// descending with id descending as tiebreaker, plus the total count
	// matching the filter ignoring pagination.
	List(ctx context.Context, filter OfferFilter) ([]*domain.Offer, int, error)

	// StatusSummary tallies offers touching the post from either
	// direction - as the parent post or as the child-post target.
	StatusSummary(ctx context.Context, postID int64) ([]StatusCount, error)

	// Update persists changes to the offer's message and child-post link.
	// Items and status are managed by dedicated methods.
	// Returns ErrOfferNotFound if the offer does not exist.
	Update(ctx context.Context, offer *domain.Offer) error

	// ReplaceItems deletes the offer's items and inserts the given ones.
	// Callers must run it inside a transaction; a nil or empty slice
	// leaves the offer with zero items.
	ReplaceItems(ctx context.Context, offerID int64, items []domain.Item) error

	// UpdateStatusIfPending transitions the offer's status only if it is
	// still pending. Returns ErrStaleStatus when the guard misses, which
	// means a concurrent operation settled the offer first.
	// Returns ErrOfferNotFound if the offer does not exist.
	UpdateStatusIfPending(ctx context.Context, id int64, status domain.OfferStatus) error

	// RejectPendingByPost bulk-transitions every pending offer on the post
	// to rejected, excluding excludeID (pass 0 to exclude nothing).
	// Returns the number of offers rejected.
	RejectPendingByPost(ctx context.Context, postID, excludeID int64) (int64, error)

	// WithTx returns an OfferStore bound to the given transaction.
	WithTx(tx *sql.Tx) OfferStore
}

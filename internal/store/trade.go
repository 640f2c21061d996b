package store

import (
	"context"
	"database/sql"

	"github.com/openswap/barter-api/internal/domain"
)

// TradeStore defines the interface for the append-only trade ledger.
// There is deliberately no update or delete: a trade once recorded is
// historical fact.
type TradeStore interface {
	// Create appends a trade record. The trade's ID is populated on
	// success. Returns ErrPostAlreadyTraded if a trade already references
	// the same offer.
	Create(ctx context.Context, trade *domain.Trade) error

	// ListByPost retrieves trades settling the given post, newest first.
	ListByPost(ctx context.Context, postID int64) ([]*domain.Trade, error)

	// ListByUser retrieves trades involving the user from either side:
	// as owner of the settled post or as author of the winning offer.
	// Newest first.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Trade, error)

	// WithTx returns a TradeStore bound to the given transaction.
	WithTx(tx *sql.Tx) TradeStore
}

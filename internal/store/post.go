package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/openswap/barter-api/internal/domain"
)

// PostFilter narrows a post listing. Zero-valued fields are omitted from
// the query rather than defaulted; populated fields combine with AND.
type PostFilter struct {
	AuthorID *int64
	Status   *domain.PostStatus

	// Query matches title or description case-insensitively.
	Query string
}

// PostStore defines the interface for post persistence.
type PostStore interface {
	// Create saves a new post together with its items in one atomic unit.
	// The post's ID and the items' IDs are populated on success.
	// Returns ErrInvalidEntity if the author or category does not exist.
	Create(ctx context.Context, post *domain.Post) error

	// GetByID retrieves a post with its items and author display name.
	// Returns ErrPostNotFound if the post does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Post, error)

	// GetForUpdate retrieves a post's row and locks it for the duration of
	// the enclosing transaction. Items are not loaded. Only meaningful on a
	// transaction-scoped store.
	// Returns ErrPostNotFound if the post does not exist.
	GetForUpdate(ctx context.Context, id int64) (*domain.Post, error)

	// List retrieves posts matching the filter, newest-updated first,
	// capped at 100 rows. Returns an empty slice when nothing matches.
	List(ctx context.Context, filter PostFilter) ([]*domain.Post, error)

	// Update persists changes to title, description, category, and status,
	// bumping updated_at. Items are not touched.
	// Returns ErrPostNotFound if the post does not exist.
	Update(ctx context.Context, post *domain.Post) error

	// UpdateStatus transitions a post's status and sets updated_at.
	// Returns ErrPostNotFound if the post does not exist.
	UpdateStatus(ctx context.Context, id int64, status domain.PostStatus, updatedAt time.Time) error

	// Delete removes a post. Its items and offers' items go with it via
	// the schema's ON DELETE CASCADE constraints.
	// Returns ErrPostNotFound if the post does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a PostStore bound to the given transaction.
	WithTx(tx *sql.Tx) PostStore
}

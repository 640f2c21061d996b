package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/store"
)

// offerSelectColumns is the projection shared by GetByID and List. The
// child post join is LEFT so offers carrying a loose item list still match.
const offerSelectColumns = `
	r.id, r.post_id, r.author_id, r.child_post_id, r.message, r.status, r.created_at,
	u.id, u.username,
	p.id, p.title, p.author_id,
	cp.id, cp.title, cp.author_id
`

const offerSelectJoins = `
	FROM responses r
	JOIN users u ON u.id = r.author_id
	JOIN posts p ON p.id = r.post_id
	LEFT JOIN posts cp ON cp.id = r.child_post_id
`

// PostgresOfferStore implements the store.OfferStore interface
// using a PostgreSQL database as the storage backend. The underlying table
// is named "responses" for historical reasons; the rest of the codebase
// says "offer".
type PostgresOfferStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresOfferStore creates a new PostgreSQL implementation of the
// OfferStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger is used.
func NewPostgresOfferStore(db store.DBTX, log *slog.Logger) *PostgresOfferStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresOfferStore{
		db:     db,
		logger: log.With(slog.String("component", "offer_store")),
	}
}

// Ensure PostgresOfferStore implements store.OfferStore interface
var _ store.OfferStore = (*PostgresOfferStore)(nil)

// WithTx implements store.OfferStore.WithTx
func (s *PostgresOfferStore) WithTx(tx *sql.Tx) store.OfferStore {
	return &PostgresOfferStore{db: tx, logger: s.logger}
}

// Create implements store.OfferStore.Create
func (s *PostgresOfferStore) Create(ctx context.Context, offer *domain.Offer) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := offer.Validate(); err != nil {
		log.Warn("offer validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO responses (post_id, author_id, child_post_id, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		offer.PostID,
		offer.AuthorID,
		offer.ChildPostID,
		offer.Message,
		offer.Status,
		offer.CreatedAt,
	).Scan(&offer.ID)

	if err != nil {
		log.Error("failed to create offer",
			slog.String("error", err.Error()),
			slog.Int64("post_id", offer.PostID),
			slog.Int64("author_id", offer.AuthorID))
		return MapError(err)
	}

	for i := range offer.Items {
		if err := s.insertItem(ctx, offer.ID, i, &offer.Items[i]); err != nil {
			log.Error("failed to create offer item",
				slog.String("error", err.Error()),
				slog.Int64("offer_id", offer.ID))
			return MapError(err)
		}
	}

	log.Info("offer created successfully",
		slog.Int64("offer_id", offer.ID),
		slog.Int64("post_id", offer.PostID),
		slog.Int64("author_id", offer.AuthorID),
		slog.Int("item_count", len(offer.Items)))
	return nil
}

// insertItem saves one offer item at the given position.
func (s *PostgresOfferStore) insertItem(
	ctx context.Context,
	offerID int64,
	position int,
	item *domain.Item,
) error {
	query := `
		INSERT INTO response_items (response_id, name, description, condition, image_url, quantity, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return s.db.QueryRowContext(
		ctx,
		query,
		offerID,
		item.Name,
		item.Description,
		item.Condition,
		item.ImageURL,
		item.Quantity,
		position,
	).Scan(&item.ID)
}

// GetByID implements store.OfferStore.GetByID
// Returns store.ErrOfferNotFound if the offer does not exist.
func (s *PostgresOfferStore) GetByID(ctx context.Context, id int64) (*domain.Offer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := "SELECT " + offerSelectColumns + offerSelectJoins + " WHERE r.id = $1"

	offer, err := s.scanOffer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("offer not found", slog.Int64("offer_id", id))
			return nil, store.ErrOfferNotFound
		}
		log.Error("failed to get offer by ID",
			slog.String("error", err.Error()),
			slog.Int64("offer_id", id))
		return nil, MapError(err)
	}

	items, err := s.loadItems(ctx, offer.ID)
	if err != nil {
		log.Error("failed to load offer items",
			slog.String("error", err.Error()),
			slog.Int64("offer_id", id))
		return nil, MapError(err)
	}
	offer.Items = items

	return offer, nil
}

// GetForUpdate implements store.OfferStore.GetForUpdate
// It locks the offer row for the enclosing transaction; items and display
// references are not loaded.
func (s *PostgresOfferStore) GetForUpdate(ctx context.Context, id int64) (*domain.Offer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, post_id, author_id, child_post_id, message, status, created_at
		FROM responses
		WHERE id = $1
		FOR UPDATE
	`

	var offer domain.Offer
	var status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&offer.ID,
		&offer.PostID,
		&offer.AuthorID,
		&offer.ChildPostID,
		&offer.Message,
		&status,
		&offer.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrOfferNotFound
		}
		log.Error("failed to lock offer row",
			slog.String("error", err.Error()),
			slog.Int64("offer_id", id))
		return nil, MapError(err)
	}

	offer.Status = domain.OfferStatus(status)
	return &offer, nil
}

// List implements store.OfferStore.List
// Nil filter fields are omitted; the rest combine with AND. Ordering is
// created_at descending with id descending as tiebreaker so pagination
// stays stable across equal timestamps.
func (s *PostgresOfferStore) List(
	ctx context.Context,
	filter store.OfferFilter,
) ([]*domain.Offer, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter = filter.Normalize()

	var conditions []string
	var args []any

	if filter.PostID != nil {
		args = append(args, *filter.PostID)
		conditions = append(conditions, fmt.Sprintf("r.post_id = $%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		conditions = append(conditions, fmt.Sprintf("r.author_id = $%d", len(args)))
	}
	if filter.ChildPostID != nil {
		args = append(args, *filter.ChildPostID)
		conditions = append(conditions, fmt.Sprintf("r.child_post_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM responses r" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count offers", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := "SELECT " + offerSelectColumns + offerSelectJoins + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC, r.id DESC LIMIT $%d OFFSET $%d",
			len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list offers", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	offers := []*domain.Offer{}
	for rows.Next() {
		offer, err := s.scanOffer(rows)
		if err != nil {
			log.Error("failed to scan offer row", slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	for _, offer := range offers {
		items, err := s.loadItems(ctx, offer.ID)
		if err != nil {
			log.Error("failed to load offer items",
				slog.String("error", err.Error()),
				slog.Int64("offer_id", offer.ID))
			return nil, 0, MapError(err)
		}
		offer.Items = items
	}

	return offers, total, nil
}

// StatusSummary implements store.OfferStore.StatusSummary
// It tallies offers touching the post as parent or as child-post target.
func (s *PostgresOfferStore) StatusSummary(
	ctx context.Context,
	postID int64,
) ([]store.StatusCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT status, COUNT(*)
		FROM responses
		WHERE post_id = $1 OR child_post_id = $1
		GROUP BY status
		ORDER BY status
	`

	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		log.Error("failed to summarize offers",
			slog.String("error", err.Error()),
			slog.Int64("post_id", postID))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	summary := []store.StatusCount{}
	for rows.Next() {
		var sc store.StatusCount
		var status string
		if err := rows.Scan(&status, &sc.Count); err != nil {
			return nil, MapError(err)
		}
		sc.Status = domain.OfferStatus(status)
		summary = append(summary, sc)
	}

	return summary, MapError(rows.Err())
}

// Update implements store.OfferStore.Update
// It persists the message and child-post link only.
func (s *PostgresOfferStore) Update(ctx context.Context, offer *domain.Offer) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE responses
		SET message = $1, child_post_id = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, offer.Message, offer.ChildPostID, offer.ID)
	if err != nil {
		log.Error("failed to update offer",
			slog.String("error", err.Error()),
			slog.Int64("offer_id", offer.ID))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrOfferNotFound)
}

// ReplaceItems implements store.OfferStore.ReplaceItems
// Delete-then-insert; run it on a transaction-scoped store so a failure
// between the two steps cannot leave the offer half-replaced.
func (s *PostgresOfferStore) ReplaceItems(
	ctx context.Context,
	offerID int64,
	items []domain.Item,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(
		ctx, `DELETE FROM response_items WHERE response_id = $1`, offerID,
	); err != nil {
		log.Error("failed to delete offer items",
			slog.String("error", err.Error()),
			slog.Int64("offer_id", offerID))
		return MapError(err)
	}

	for i := range items {
		if err := s.insertItem(ctx, offerID, i, &items[i]); err != nil {
			log.Error("failed to insert replacement item",
				slog.String("error", err.Error()),
				slog.Int64("offer_id", offerID))
			return MapError(err)
		}
	}

	log.Debug("offer items replaced",
		slog.Int64("offer_id", offerID),
		slog.Int("item_count", len(items)))
	return nil
}

// UpdateStatusIfPending implements store.OfferStore.UpdateStatusIfPending
// The status guard in the WHERE clause is what makes concurrent accepts
// safe: the second writer matches zero rows and gets ErrStaleStatus.
func (s *PostgresOfferStore) UpdateStatusIfPending(
	ctx context.Context,
	id int64,
	status domain.OfferStatus,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE responses
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, id, domain.OfferStatusPending)
	if err != nil {
		log.Error("failed to transition offer status",
			slog.String("error", err.Error()),
			slog.Int64("offer_id", id),
			slog.String("status", string(status)))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Distinguish a missing offer from one already settled.
		var current string
		err := s.db.QueryRowContext(
			ctx, `SELECT status FROM responses WHERE id = $1`, id,
		).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrOfferNotFound
		}
		if err != nil {
			return MapError(err)
		}
		log.Debug("offer status guard missed",
			slog.Int64("offer_id", id),
			slog.String("current_status", current))
		return store.ErrStaleStatus
	}

	log.Info("offer status transitioned",
		slog.Int64("offer_id", id),
		slog.String("status", string(status)))
	return nil
}

// RejectPendingByPost implements store.OfferStore.RejectPendingByPost
func (s *PostgresOfferStore) RejectPendingByPost(
	ctx context.Context,
	postID, excludeID int64,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE responses
		SET status = $1
		WHERE post_id = $2 AND status = $3 AND id <> $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.OfferStatusRejected,
		postID,
		domain.OfferStatusPending,
		excludeID,
	)
	if err != nil {
		log.Error("failed to bulk-reject offers",
			slog.String("error", err.Error()),
			slog.Int64("post_id", postID))
		return 0, MapError(err)
	}

	rejected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Debug("bulk-rejected pending offers",
		slog.Int64("post_id", postID),
		slog.Int64("rejected", rejected))
	return rejected, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanOffer reads one row of the shared offer projection.
func (s *PostgresOfferStore) scanOffer(row rowScanner) (*domain.Offer, error) {
	var offer domain.Offer
	var status string
	var author domain.Identity
	var post domain.PostRef
	var childID sql.NullInt64
	var childTitle sql.NullString
	var childAuthor sql.NullInt64

	err := row.Scan(
		&offer.ID,
		&offer.PostID,
		&offer.AuthorID,
		&offer.ChildPostID,
		&offer.Message,
		&status,
		&offer.CreatedAt,
		&author.ID,
		&author.Username,
		&post.ID,
		&post.Title,
		&post.AuthorID,
		&childID,
		&childTitle,
		&childAuthor,
	)
	if err != nil {
		return nil, err
	}

	offer.Status = domain.OfferStatus(status)
	offer.Author = &author
	offer.PostRef = &post
	if childID.Valid {
		offer.ChildPost = &domain.PostRef{
			ID:       childID.Int64,
			Title:    childTitle.String,
			AuthorID: childAuthor.Int64,
		}
	}

	return &offer, nil
}

// loadItems retrieves an offer's items in insertion order.
func (s *PostgresOfferStore) loadItems(ctx context.Context, offerID int64) ([]domain.Item, error) {
	query := `
		SELECT id, name, description, condition, image_url, quantity
		FROM response_items
		WHERE response_id = $1
		ORDER BY position ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, offerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.Item{}
	for rows.Next() {
		var item domain.Item
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Description,
			&item.Condition,
			&item.ImageURL,
			&item.Quantity,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

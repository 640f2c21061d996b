package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/store"
)

// PostgresTradeStore implements the store.TradeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTradeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTradeStore creates a new PostgreSQL implementation of the
// TradeStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger is used.
func NewPostgresTradeStore(db store.DBTX, log *slog.Logger) *PostgresTradeStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresTradeStore{
		db:     db,
		logger: log.With(slog.String("component", "trade_store")),
	}
}

// Ensure PostgresTradeStore implements store.TradeStore interface
var _ store.TradeStore = (*PostgresTradeStore)(nil)

// WithTx implements store.TradeStore.WithTx
func (s *PostgresTradeStore) WithTx(tx *sql.Tx) store.TradeStore {
	return &PostgresTradeStore{db: tx, logger: s.logger}
}

// Create implements store.TradeStore.Create
// The unique index on response_id turns a double settlement into
// store.ErrPostAlreadyTraded instead of a second ledger row.
func (s *PostgresTradeStore) Create(ctx context.Context, trade *domain.Trade) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := trade.Validate(); err != nil {
		log.Warn("trade validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO trades (post_id, response_id, agreed_at, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		trade.PostID,
		trade.OfferID,
		trade.AgreedAt,
		trade.Status,
	).Scan(&trade.ID)

	if err != nil {
		if IsUniqueViolation(err, "") {
			log.Warn("trade already recorded for offer",
				slog.Int64("post_id", trade.PostID),
				slog.Int64("offer_id", trade.OfferID))
			return store.ErrPostAlreadyTraded
		}
		log.Error("failed to create trade",
			slog.String("error", err.Error()),
			slog.Int64("post_id", trade.PostID),
			slog.Int64("offer_id", trade.OfferID))
		return MapError(err)
	}

	log.Info("trade recorded",
		slog.Int64("trade_id", trade.ID),
		slog.Int64("post_id", trade.PostID),
		slog.Int64("offer_id", trade.OfferID))
	return nil
}

// ListByPost implements store.TradeStore.ListByPost
func (s *PostgresTradeStore) ListByPost(ctx context.Context, postID int64) ([]*domain.Trade, error) {
	query := `
		SELECT id, post_id, response_id, agreed_at, status
		FROM trades
		WHERE post_id = $1
		ORDER BY agreed_at DESC, id DESC
	`
	return s.queryTrades(ctx, query, postID)
}

// ListByUser implements store.TradeStore.ListByUser
// A trade involves the user when they owned the settled post or authored
// the winning offer.
func (s *PostgresTradeStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Trade, error) {
	query := `
		SELECT t.id, t.post_id, t.response_id, t.agreed_at, t.status
		FROM trades t
		JOIN posts p ON p.id = t.post_id
		JOIN responses r ON r.id = t.response_id
		WHERE p.author_id = $1 OR r.author_id = $1
		ORDER BY t.agreed_at DESC, t.id DESC
	`
	return s.queryTrades(ctx, query, userID)
}

// queryTrades runs a trade projection query and scans the result.
func (s *PostgresTradeStore) queryTrades(
	ctx context.Context,
	query string,
	arg any,
) ([]*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		log.Error("failed to query trades", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	trades := []*domain.Trade{}
	for rows.Next() {
		var trade domain.Trade
		var status string

		err := rows.Scan(
			&trade.ID,
			&trade.PostID,
			&trade.OfferID,
			&trade.AgreedAt,
			&status,
		)
		if err != nil {
			log.Error("failed to scan trade row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		trade.Status = domain.TradeStatus(status)
		trades = append(trades, &trade)
	}

	return trades, MapError(rows.Err())
}

package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/store"
)

// PostgresCategoryStore implements the store.CategoryStore interface.
type PostgresCategoryStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCategoryStore creates a new PostgreSQL implementation of the
// CategoryStore interface.
func NewPostgresCategoryStore(db *sql.DB, log *slog.Logger) *PostgresCategoryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresCategoryStore{
		db:     db,
		logger: log.With(slog.String("component", "category_store")),
	}
}

// Ensure PostgresCategoryStore implements store.CategoryStore interface
var _ store.CategoryStore = (*PostgresCategoryStore)(nil)

// List implements store.CategoryStore.List
func (s *PostgresCategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT c.id, c.name, COUNT(p.id)
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list categories", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	categories := []*domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.PostCount); err != nil {
			log.Error("failed to scan category row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		categories = append(categories, &c)
	}

	return categories, MapError(rows.Err())
}

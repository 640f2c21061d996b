package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/store"
)

// PostgresPostStore implements the store.PostStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPostStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPostStore creates a new PostgreSQL implementation of the
// PostStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger is used.
func NewPostgresPostStore(db store.DBTX, log *slog.Logger) *PostgresPostStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresPostStore{
		db:     db,
		logger: log.With(slog.String("component", "post_store")),
	}
}

// Ensure PostgresPostStore implements store.PostStore interface
var _ store.PostStore = (*PostgresPostStore)(nil)

// WithTx implements store.PostStore.WithTx
func (s *PostgresPostStore) WithTx(tx *sql.Tx) store.PostStore {
	return &PostgresPostStore{db: tx, logger: s.logger}
}

// Create implements store.PostStore.Create
// It inserts the post and its items in sequence; callers that need the pair
// atomic run it through store.RunInTransaction with a tx-scoped store.
func (s *PostgresPostStore) Create(ctx context.Context, post *domain.Post) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := post.Validate(); err != nil {
		log.Warn("post validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO posts (author_id, category_id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		post.AuthorID,
		post.CategoryID,
		post.Title,
		post.Description,
		post.Status,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID)

	if err != nil {
		log.Error("failed to create post",
			slog.String("error", err.Error()),
			slog.Int64("author_id", post.AuthorID))
		return MapError(err)
	}

	for i := range post.Items {
		if err := s.insertItem(ctx, post.ID, i, &post.Items[i]); err != nil {
			log.Error("failed to create post item",
				slog.String("error", err.Error()),
				slog.Int64("post_id", post.ID))
			return MapError(err)
		}
	}

	log.Info("post created successfully",
		slog.Int64("post_id", post.ID),
		slog.Int64("author_id", post.AuthorID),
		slog.Int("item_count", len(post.Items)))
	return nil
}

// insertItem saves one post item at the given position.
func (s *PostgresPostStore) insertItem(
	ctx context.Context,
	postID int64,
	position int,
	item *domain.Item,
) error {
	query := `
		INSERT INTO post_items (post_id, name, description, condition, image_url, quantity, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return s.db.QueryRowContext(
		ctx,
		query,
		postID,
		item.Name,
		item.Description,
		item.Condition,
		item.ImageURL,
		item.Quantity,
		position,
	).Scan(&item.ID)
}

// GetByID implements store.PostStore.GetByID
// It retrieves a post with its items and the author's display name.
// Returns store.ErrPostNotFound if the post does not exist.
func (s *PostgresPostStore) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT p.id, p.author_id, p.category_id, p.title, p.description, p.status,
		       p.created_at, p.updated_at, u.username
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`

	var post domain.Post
	var status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.AuthorID,
		&post.CategoryID,
		&post.Title,
		&post.Description,
		&status,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.AuthorName,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("post not found", slog.Int64("post_id", id))
			return nil, store.ErrPostNotFound
		}
		log.Error("failed to get post by ID",
			slog.String("error", err.Error()),
			slog.Int64("post_id", id))
		return nil, MapError(err)
	}

	post.Status = domain.PostStatus(status)

	items, err := s.loadItems(ctx, post.ID)
	if err != nil {
		log.Error("failed to load post items",
			slog.String("error", err.Error()),
			slog.Int64("post_id", id))
		return nil, MapError(err)
	}
	post.Items = items

	return &post, nil
}

// GetForUpdate implements store.PostStore.GetForUpdate
// It locks the post row for the enclosing transaction; items are not loaded.
func (s *PostgresPostStore) GetForUpdate(ctx context.Context, id int64) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, author_id, category_id, title, description, status, created_at, updated_at
		FROM posts
		WHERE id = $1
		FOR UPDATE
	`

	var post domain.Post
	var status string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.AuthorID,
		&post.CategoryID,
		&post.Title,
		&post.Description,
		&status,
		&post.CreatedAt,
		&post.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPostNotFound
		}
		log.Error("failed to lock post row",
			slog.String("error", err.Error()),
			slog.Int64("post_id", id))
		return nil, MapError(err)
	}

	post.Status = domain.PostStatus(status)
	return &post, nil
}

// List implements store.PostStore.List
// Filters combine with AND; ordering is newest-updated first with id as the
// final tiebreaker, capped at 100 rows.
func (s *PostgresPostStore) List(
	ctx context.Context,
	filter store.PostFilter,
) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var conditions []string
	var args []any

	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", n, n))
	}

	query := `
		SELECT p.id, p.author_id, p.category_id, p.title, p.description, p.status,
		       p.created_at, p.updated_at, u.username
		FROM posts p
		JOIN users u ON u.id = p.author_id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.updated_at DESC, p.created_at DESC, p.id DESC LIMIT 100"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	posts := []*domain.Post{}
	for rows.Next() {
		var post domain.Post
		var status string

		err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.CategoryID,
			&post.Title,
			&post.Description,
			&status,
			&post.CreatedAt,
			&post.UpdatedAt,
			&post.AuthorName,
		)
		if err != nil {
			log.Error("failed to scan post row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}

		post.Status = domain.PostStatus(status)
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	for _, post := range posts {
		items, err := s.loadItems(ctx, post.ID)
		if err != nil {
			log.Error("failed to load post items",
				slog.String("error", err.Error()),
				slog.Int64("post_id", post.ID))
			return nil, MapError(err)
		}
		post.Items = items
	}

	return posts, nil
}

// Update implements store.PostStore.Update
// It persists title, description, category, and status, bumping updated_at.
func (s *PostgresPostStore) Update(ctx context.Context, post *domain.Post) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	post.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE posts
		SET title = $1, description = $2, category_id = $3, status = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		post.Title,
		post.Description,
		post.CategoryID,
		post.Status,
		post.UpdatedAt,
		post.ID,
	)

	if err != nil {
		log.Error("failed to update post",
			slog.String("error", err.Error()),
			slog.Int64("post_id", post.ID))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrPostNotFound); err != nil {
		return err
	}

	log.Info("post updated successfully",
		slog.Int64("post_id", post.ID),
		slog.String("status", string(post.Status)))
	return nil
}

// UpdateStatus implements store.PostStore.UpdateStatus
func (s *PostgresPostStore) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.PostStatus,
	updatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		log.Error("failed to update post status",
			slog.String("error", err.Error()),
			slog.Int64("post_id", id),
			slog.String("status", string(status)))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrPostNotFound); err != nil {
		return err
	}

	log.Info("post status updated",
		slog.Int64("post_id", id),
		slog.String("status", string(status)))
	return nil
}

// Delete implements store.PostStore.Delete
// Items and dependent offer rows are removed by the schema's ON DELETE
// CASCADE constraints.
func (s *PostgresPostStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete post",
			slog.String("error", err.Error()),
			slog.Int64("post_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrPostNotFound); err != nil {
		return err
	}

	log.Info("post deleted", slog.Int64("post_id", id))
	return nil
}

// loadItems retrieves a post's items in insertion order.
func (s *PostgresPostStore) loadItems(ctx context.Context, postID int64) ([]domain.Item, error) {
	query := `
		SELECT id, name, description, condition, image_url, quantity
		FROM post_items
		WHERE post_id = $1
		ORDER BY position ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, postID)
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

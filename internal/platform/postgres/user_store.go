package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. It accepts a database connection that should be
// initialized and managed by the caller.
func NewPostgresUserStore(db *sql.DB, log *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: log.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create
// Unique violations are mapped to ErrUsernameTaken or ErrEmailTaken by
// inspecting the constraint name.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO users (username, email, password_hash, profile_image_url, location, bio, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.ProfileImageURL,
		user.Location,
		user.Bio,
		user.CreatedAt,
	).Scan(&user.ID)

	if err != nil {
		if IsUniqueViolation(err, "users_username_key") ||
			(IsUniqueViolation(err, "") && strings.Contains(err.Error(), "username")) {
			return store.ErrUsernameTaken
		}
		if IsUniqueViolation(err, "") {
			return store.ErrEmailTaken
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("username", user.Username))
		return MapError(err)
	}

	log.Info("user created successfully",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	return nil
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, profile_image_url, location, bio, created_at
		FROM users
		WHERE id = $1
	`
	return s.queryUser(ctx, query, id)
}

// GetByEmail implements store.UserStore.GetByEmail
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, profile_image_url, location, bio, created_at
		FROM users
		WHERE email = $1
	`
	return s.queryUser(ctx, query, email)
}

// queryUser runs a single-row user query and scans the result.
func (s *PostgresUserStore) queryUser(
	ctx context.Context,
	query string,
	arg any,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.HashedPassword,
		&user.ProfileImageURL,
		&user.Location,
		&user.Bio,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return &user, nil
}

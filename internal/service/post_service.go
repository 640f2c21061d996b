package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/store"
)

// PostUpdate carries the changes for UpdatePost. Nil fields are untouched.
type PostUpdate struct {
	Title       *string
	Description *string

	// CategoryID rewrites the category link when SetCategory is true; a
	// nil CategoryID clears it.
	SetCategory bool
	CategoryID  *int64

	// Status may only move between open and closed here. Trading states
	// are owned by the settlement transaction.
	Status *domain.PostStatus
}

// PostDetail is the aggregate read model for a single post: the post with
// its items, a per-status tally of every offer touching it from either
// direction, and the offers that put this post on the table as their
// child. Field names follow the public API payload.
type PostDetail struct {
	Post *domain.Post `json:"post"`

	// OfferSummary tallies offers where this post is the parent or the
	// child, grouped by status.
	OfferSummary []store.StatusCount `json:"responses_summary"`

	// LinkedOffers are offers on other posts that reference this post as
	// their child, newest first.
	LinkedOffers []*domain.Offer `json:"linked_offers"`
}

// PostService manages listings: creation, edits, deletion, the browse
// list, and the aggregate detail view. Ownership checks live here; status
// transitions driven by settlement live in OfferService.
type PostService interface {
	// CreatePost creates an open post with its normalized items.
	CreatePost(
		ctx context.Context,
		authorID int64,
		title, description string,
		categoryID *int64,
		items []domain.Item,
	) (*domain.Post, error)

	// GetPost retrieves a post with its items.
	GetPost(ctx context.Context, postID int64) (*domain.Post, error)

	// GetPostDetail retrieves the aggregate view of a post. It is a pure
	// projection and runs in a read-only snapshot so a concurrent
	// settlement cannot show through half-applied.
	GetPostDetail(ctx context.Context, postID int64) (*PostDetail, error)

	// ListPosts retrieves posts matching the filter, newest-updated first.
	ListPosts(ctx context.Context, filter store.PostFilter) ([]*domain.Post, error)

	// UpdatePost edits a post. Only the author may edit.
	UpdatePost(ctx context.Context, postID, actorID int64, update PostUpdate) (*domain.Post, error)

	// DeletePost removes a post and everything hanging off it. Only the
	// author may delete.
	DeletePost(ctx context.Context, postID, actorID int64) error

	// ListCategories retrieves the browse categories with post counts.
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// postServiceImpl implements the PostService interface
type postServiceImpl struct {
	db         *sql.DB
	posts      store.PostStore
	offers     store.OfferStore
	categories store.CategoryStore
	logger     *slog.Logger

	runTx func(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn store.TxFn) error
}

// NewPostService creates a new PostService.
// It returns an error if any of the required dependencies are nil.
func NewPostService(
	db *sql.DB,
	posts store.PostStore,
	offers store.OfferStore,
	categories store.CategoryStore,
	log *slog.Logger,
) (PostService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if posts == nil {
		return nil, domain.NewValidationError("posts", "cannot be nil", domain.ErrValidation)
	}
	if offers == nil {
		return nil, domain.NewValidationError("offers", "cannot be nil", domain.ErrValidation)
	}
	if categories == nil {
		return nil, domain.NewValidationError("categories", "cannot be nil", domain.ErrValidation)
	}

	if log == nil {
		log = slog.Default()
	}

	return &postServiceImpl{
		db:         db,
		posts:      posts,
		offers:     offers,
		categories: categories,
		logger:     log.With(slog.String("component", "post_service")),
		runTx:      store.RunInTransactionWithOptions,
	}, nil
}

// CreatePost implements PostService.CreatePost
func (s *postServiceImpl) CreatePost(
	ctx context.Context,
	authorID int64,
	title, description string,
	categoryID *int64,
	items []domain.Item,
) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	post, err := domain.NewPost(authorID, title, description, categoryID, items)
	if err != nil {
		return nil, err
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	log.Info("post created",
		slog.Int64("post_id", post.ID),
		slog.Int64("author_id", authorID),
		slog.Int("item_count", len(post.Items)))

	return s.posts.GetByID(ctx, post.ID)
}

// GetPost implements PostService.GetPost
func (s *postServiceImpl) GetPost(ctx context.Context, postID int64) (*domain.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

// GetPostDetail implements PostService.GetPostDetail
func (s *postServiceImpl) GetPostDetail(ctx context.Context, postID int64) (*PostDetail, error) {
	opts := &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	}

	var detail *PostDetail
	err := s.runTx(ctx, s.db, opts, func(ctx context.Context, tx *sql.Tx) error {
		txPosts := s.posts.WithTx(tx)
		txOffers := s.offers.WithTx(tx)

		post, err := txPosts.GetByID(ctx, postID)
		if err != nil {
			return err
		}

		summary, err := txOffers.StatusSummary(ctx, postID)
		if err != nil {
			return err
		}

		linked, _, err := txOffers.List(ctx, store.OfferFilter{
			ChildPostID: &postID,
			Limit:       store.MaxOfferLimit,
		})
		if err != nil {
			return err
		}

		detail = &PostDetail{
			Post:         post,
			OfferSummary: summary,
			LinkedOffers: linked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// ListPosts implements PostService.ListPosts
func (s *postServiceImpl) ListPosts(ctx context.Context, filter store.PostFilter) ([]*domain.Post, error) {
	return s.posts.List(ctx, filter)
}

// UpdatePost implements PostService.UpdatePost
func (s *postServiceImpl) UpdatePost(
	ctx context.Context,
	postID, actorID int64,
	update PostUpdate,
) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		txPosts := s.posts.WithTx(tx)

		post, err := txPosts.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != actorID {
			return ErrNotPostOwner
		}

		if update.Title != nil {
			post.Title = strings.TrimSpace(*update.Title)
		}
		if update.Description != nil {
			post.Description = *update.Description
		}
		if update.SetCategory {
			post.CategoryID = update.CategoryID
		}
		if update.Status != nil {
			switch *update.Status {
			case domain.PostStatusOpen, domain.PostStatusClosed:
				post.Status = *update.Status
			default:
				return domain.NewValidationError(
					"status",
					"status can only be set to open or closed",
					domain.ErrInvalidPostStatus,
				)
			}
		}

		// GetForUpdate does not carry items, so full entity validation is
		// not possible here; check the fields this path can change.
		if post.Title == "" {
			return domain.ErrEmptyPostTitle
		}

		return txPosts.Update(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	log.Info("post updated",
		slog.Int64("post_id", postID),
		slog.Int64("actor_id", actorID))

	return s.posts.GetByID(ctx, postID)
}

// DeletePost implements PostService.DeletePost
func (s *postServiceImpl) DeletePost(ctx context.Context, postID, actorID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		txPosts := s.posts.WithTx(tx)

		post, err := txPosts.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != actorID {
			return ErrNotPostOwner
		}

		return txPosts.Delete(ctx, postID)
	})
	if err != nil {
		return err
	}

	log.Info("post deleted",
		slog.Int64("post_id", postID),
		slog.Int64("actor_id", actorID))
	return nil
}

// ListCategories implements PostService.ListCategories
func (s *postServiceImpl) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

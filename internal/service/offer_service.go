package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/store"
)

// OfferUpdate carries the changes for UpdateOffer. Nil pointer fields mean
// "untouched"; the Set flags distinguish "clear this" from "leave alone"
// for fields where nil is itself a meaningful value.
type OfferUpdate struct {
	// Message replaces the offer's message when non-nil.
	Message *string

	// Items replaces the offer's item list wholesale when SetItems is
	// true. An empty slice strips the offer down to its message.
	SetItems bool
	Items    []domain.Item

	// ChildPostID rewrites the child-post link when SetChildPost is true.
	// A nil ChildPostID clears the link.
	SetChildPost bool
	ChildPostID  *int64
}

// OfferService drives the offer lifecycle: creation and edits while an
// offer is pending, and the settlement transaction that accepts one offer,
// rejects its siblings, records the trade, and closes the post (and the
// child post, for two-way listings). All authorization decisions for
// offers live here, not in the HTTP layer.
type OfferService interface {
	// CreateOffer makes a new pending offer against an open post.
	CreateOffer(
		ctx context.Context,
		postID, authorID int64,
		message string,
		consideration domain.Consideration,
	) (*domain.Offer, error)

	// UpdateOffer edits a pending offer. Only the offer's author may edit.
	UpdateOffer(ctx context.Context, offerID, actorID int64, update OfferUpdate) (*domain.Offer, error)

	// AcceptOffer settles the post: the target offer becomes accepted,
	// every sibling pending offer becomes rejected, a trade is recorded,
	// and the post is marked traded. When the offer carries a child post,
	// that post is settled the same way. Only the post's owner may accept,
	// and exactly one accept can ever succeed per post.
	AcceptOffer(ctx context.Context, offerID, actorID int64) (*domain.Trade, error)

	// RejectOffer declines a single pending offer. Only the post's owner
	// may reject. Sibling offers and the post itself are untouched.
	RejectOffer(ctx context.Context, offerID, actorID int64) error

	// ListOffers retrieves offers matching the filter plus the total
	// count ignoring pagination.
	ListOffers(ctx context.Context, filter store.OfferFilter) ([]*domain.Offer, int, error)

	// GetOffer retrieves a single offer with its display references.
	GetOffer(ctx context.Context, offerID int64) (*domain.Offer, error)

	// ListTradesByPost retrieves the trades settling a post.
	ListTradesByPost(ctx context.Context, postID int64) ([]*domain.Trade, error)

	// ListTradesByUser retrieves the trades a user took part in, from
	// either side of the table.
	ListTradesByUser(ctx context.Context, userID int64) ([]*domain.Trade, error)
}

// offerServiceImpl implements the OfferService interface
type offerServiceImpl struct {
	db     *sql.DB
	posts  store.PostStore
	offers store.OfferStore
	trades store.TradeStore
	logger *slog.Logger

	// runTx is swapped out in tests to run against fake stores without a
	// real database.
	runTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewOfferService creates a new OfferService.
// It returns an error if any of the required dependencies are nil.
func NewOfferService(
	db *sql.DB,
	posts store.PostStore,
	offers store.OfferStore,
	trades store.TradeStore,
	log *slog.Logger,
) (OfferService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if posts == nil {
		return nil, domain.NewValidationError("posts", "cannot be nil", domain.ErrValidation)
	}
	if offers == nil {
		return nil, domain.NewValidationError("offers", "cannot be nil", domain.ErrValidation)
	}
	if trades == nil {
		return nil, domain.NewValidationError("trades", "cannot be nil", domain.ErrValidation)
	}

	if log == nil {
		log = slog.Default()
	}

	return &offerServiceImpl{
		db:     db,
		posts:  posts,
		offers: offers,
		trades: trades,
		logger: log.With(slog.String("component", "offer_service")),
		runTx:  store.RunInTransaction,
	}, nil
}

// CreateOffer implements OfferService.CreateOffer
func (s *offerServiceImpl) CreateOffer(
	ctx context.Context,
	postID, authorID int64,
	message string,
	consideration domain.Consideration,
) (*domain.Offer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var offer *domain.Offer
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txPosts := s.posts.WithTx(tx)
		txOffers := s.offers.WithTx(tx)

		// Lock the parent post so the open check cannot race with a
		// concurrent settlement.
		post, err := txPosts.GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if !post.Open() {
			return ErrPostNotOpen
		}

		if consideration.ChildPostID != nil {
			if err := s.checkChildPost(ctx, txPosts, postID, authorID, *consideration.ChildPostID); err != nil {
				return err
			}
		}

		offer, err = domain.NewOffer(postID, authorID, message, consideration)
		if err != nil {
			return err
		}

		return txOffers.Create(ctx, offer)
	})
	if err != nil {
		return nil, err
	}

	log.Info("offer created",
		slog.Int64("offer_id", offer.ID),
		slog.Int64("post_id", postID),
		slog.Int64("author_id", authorID))

	// Reload to pick up the display references the insert cannot return.
	return s.offers.GetByID(ctx, offer.ID)
}

// UpdateOffer implements OfferService.UpdateOffer
func (s *offerServiceImpl) UpdateOffer(
	ctx context.Context,
	offerID, actorID int64,
	update OfferUpdate,
) (*domain.Offer, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.SetItems && update.SetChildPost && update.ChildPostID != nil && len(update.Items) > 0 {
		return nil, domain.ErrAmbiguousConsideration
	}

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txPosts := s.posts.WithTx(tx)
		txOffers := s.offers.WithTx(tx)

		offer, err := txOffers.GetForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer.AuthorID != actorID {
			return ErrNotOfferAuthor
		}
		if !offer.Pending() {
			return ErrOfferNotPending
		}

		if update.Message != nil {
			offer.Message = *update.Message
		}

		if update.SetChildPost {
			if update.ChildPostID != nil {
				if err := s.checkChildPost(ctx, txPosts, offer.PostID, actorID, *update.ChildPostID); err != nil {
					return err
				}
				// The two consideration modes are exclusive, so linking a
				// post displaces any loose items.
				if !update.SetItems {
					update.SetItems = true
					update.Items = nil
				}
			}
			offer.ChildPostID = update.ChildPostID
		}

		if update.SetItems {
			items := domain.NormalizeItems(update.Items)
			if len(items) > 0 {
				offer.ChildPostID = nil
			}
			if err := txOffers.ReplaceItems(ctx, offerID, items); err != nil {
				return err
			}
		}

		return txOffers.Update(ctx, offer)
	})
	if err != nil {
		return nil, err
	}

	log.Info("offer updated",
		slog.Int64("offer_id", offerID),
		slog.Int64("actor_id", actorID))

	return s.offers.GetByID(ctx, offerID)
}

// AcceptOffer implements OfferService.AcceptOffer
//
// Every step runs inside one transaction; a failure anywhere leaves no
// partial state. The post row is locked before the offer row so every
// settlement on a post serializes at the same lock, the pending-status
// guard turns the loser's write into ErrStaleStatus, and the trade
// ledger's unique offer reference backstops both at the schema level.
func (s *offerServiceImpl) AcceptOffer(
	ctx context.Context,
	offerID, actorID int64,
) (*domain.Trade, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var trade *domain.Trade
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txPosts := s.posts.WithTx(tx)
		txOffers := s.offers.WithTx(tx)
		txTrades := s.trades.WithTx(tx)

		// The unlocked read only resolves the post reference, which never
		// changes after the offer is created. Locking the post first keeps
		// concurrent settlements from holding their own offer rows while
		// waiting on each other.
		offer, err := txOffers.GetByID(ctx, offerID)
		if err != nil {
			return err
		}
		post, err := txPosts.GetForUpdate(ctx, offer.PostID)
		if err != nil {
			return err
		}
		offer, err = txOffers.GetForUpdate(ctx, offerID)
		if err != nil {
			return err
		}

		if post.AuthorID != actorID {
			return ErrNotPostOwner
		}
		if !offer.Pending() {
			return ErrOfferNotPending
		}

		if err := txOffers.UpdateStatusIfPending(ctx, offerID, domain.OfferStatusAccepted); err != nil {
			return err
		}

		rejected, err := txOffers.RejectPendingByPost(ctx, post.ID, offerID)
		if err != nil {
			return err
		}

		trade, err = domain.NewTrade(post.ID, offer.ID)
		if err != nil {
			return err
		}
		if err := txTrades.Create(ctx, trade); err != nil {
			return err
		}

		if err := txPosts.UpdateStatus(ctx, post.ID, domain.PostStatusTraded, trade.AgreedAt); err != nil {
			return err
		}

		// Two-way listing: the offer put one of the author's own posts on
		// the table, so that post is settled by the same trade.
		if offer.ChildPostID != nil {
			childID := *offer.ChildPostID
			if _, err := txPosts.GetForUpdate(ctx, childID); err != nil {
				return err
			}
			childRejected, err := txOffers.RejectPendingByPost(ctx, childID, offerID)
			if err != nil {
				return err
			}
			rejected += childRejected
			if err := txPosts.UpdateStatus(ctx, childID, domain.PostStatusTraded, trade.AgreedAt); err != nil {
				return err
			}
		}

		log.Info("offer accepted",
			slog.Int64("offer_id", offerID),
			slog.Int64("post_id", post.ID),
			slog.Int64("actor_id", actorID),
			slog.Int64("siblings_rejected", rejected))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return trade, nil
}

// RejectOffer implements OfferService.RejectOffer
func (s *offerServiceImpl) RejectOffer(ctx context.Context, offerID, actorID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txPosts := s.posts.WithTx(tx)
		txOffers := s.offers.WithTx(tx)

		// Same lock order as AcceptOffer: post row first, then the offer.
		offer, err := txOffers.GetByID(ctx, offerID)
		if err != nil {
			return err
		}
		post, err := txPosts.GetForUpdate(ctx, offer.PostID)
		if err != nil {
			return err
		}
		offer, err = txOffers.GetForUpdate(ctx, offerID)
		if err != nil {
			return err
		}

		if post.AuthorID != actorID {
			return ErrNotPostOwner
		}
		if !offer.Pending() {
			return ErrOfferNotPending
		}

		return txOffers.UpdateStatusIfPending(ctx, offerID, domain.OfferStatusRejected)
	})
	if err != nil {
		return err
	}

	log.Info("offer rejected",
		slog.Int64("offer_id", offerID),
		slog.Int64("actor_id", actorID))
	return nil
}

// ListOffers implements OfferService.ListOffers
func (s *offerServiceImpl) ListOffers(
	ctx context.Context,
	filter store.OfferFilter,
) ([]*domain.Offer, int, error) {
	return s.offers.List(ctx, filter)
}

// GetOffer implements OfferService.GetOffer
func (s *offerServiceImpl) GetOffer(ctx context.Context, offerID int64) (*domain.Offer, error) {
	return s.offers.GetByID(ctx, offerID)
}

// ListTradesByPost implements OfferService.ListTradesByPost
func (s *offerServiceImpl) ListTradesByPost(ctx context.Context, postID int64) ([]*domain.Trade, error) {
	return s.trades.ListByPost(ctx, postID)
}

// ListTradesByUser implements OfferService.ListTradesByUser
func (s *offerServiceImpl) ListTradesByUser(ctx context.Context, userID int64) ([]*domain.Trade, error) {
	return s.trades.ListByUser(ctx, userID)
}

// checkChildPost validates a child-post link: the target must exist, must
// not be the parent post itself, and must belong to the offer's author.
// A missing target surfaces as a validation error rather than NotFound
// because the absent entity is an input reference, not the request target.
func (s *offerServiceImpl) checkChildPost(
	ctx context.Context,
	posts store.PostStore,
	parentPostID, authorID, childPostID int64,
) error {
	if childPostID == parentPostID {
		return domain.ErrSelfChildPost
	}

	child, err := posts.GetByID(ctx, childPostID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewValidationError(
				"child_post_id",
				"referenced post does not exist",
				domain.ErrInvalidArgument,
			)
		}
		return err
	}

	if child.AuthorID != authorID {
		return ErrChildPostNotOwned
	}

	return nil
}

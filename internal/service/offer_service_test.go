package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestOfferService(
	posts *fakePostStore,
	offers *fakeOfferStore,
	trades *fakeTradeStore,
) *offerServiceImpl {
	return &offerServiceImpl{
		posts:  posts,
		offers: offers,
		trades: trades,
		logger: discardLogger(),
		runTx:  fakeRunTx,
	}
}

func openPost(id, authorID int64) *domain.Post {
	now := time.Now().UTC()
	return &domain.Post{
		ID:        id,
		AuthorID:  authorID,
		Title:     "Vintage camera",
		Status:    domain.PostStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     []domain.Item{{Name: "Camera", Condition: "used", Quantity: 1}},
	}
}

func pendingOffer(id, postID, authorID int64) *domain.Offer {
	return &domain.Offer{
		ID:        id,
		PostID:    postID,
		AuthorID:  authorID,
		Message:   "interested",
		Status:    domain.OfferStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCreateOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending offer with items", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.add(openPost(1, 10))
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		offer, err := svc.CreateOffer(ctx, 1, 20, "trade you for it", domain.Consideration{
			Items: []domain.Item{{Name: "Tripod"}},
		})

		require.NoError(t, err)
		assert.Equal(t, domain.OfferStatusPending, offer.Status)
		assert.Equal(t, int64(1), offer.PostID)
		assert.Equal(t, int64(20), offer.AuthorID)
		require.Len(t, offer.Items, 1)
		assert.Equal(t, "Tripod", offer.Items[0].Name)
	})

	t.Run("allows a message-only offer with no usable items", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.add(openPost(1, 10))
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		offer, err := svc.CreateOffer(ctx, 1, 20, "cash on pickup?", domain.Consideration{
			Items: []domain.Item{{Name: "   "}, {Name: ""}},
		})

		require.NoError(t, err)
		assert.Equal(t, domain.OfferStatusPending, offer.Status)
		assert.Empty(t, offer.Items)
	})

	t.Run("rejects offers on posts that are not open", func(t *testing.T) {
		posts := newFakePostStore()
		post := openPost(1, 10)
		post.Status = domain.PostStatusTraded
		posts.add(post)
		svc := newTestOfferService(posts, newFakeOfferStore(), newFakeTradeStore())

		_, err := svc.CreateOffer(ctx, 1, 20, "too late", domain.Consideration{})

		assert.ErrorIs(t, err, ErrPostNotOpen)
	})

	t.Run("returns not found for a missing post", func(t *testing.T) {
		svc := newTestOfferService(newFakePostStore(), newFakeOfferStore(), newFakeTradeStore())

		_, err := svc.CreateOffer(ctx, 99, 20, "hello", domain.Consideration{})

		assert.ErrorIs(t, err, store.ErrPostNotFound)
	})

	t.Run("links the author's own post as child", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.add(openPost(1, 10))
		posts.add(openPost(2, 20))
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		childID := int64(2)
		offer, err := svc.CreateOffer(ctx, 1, 20, "swap posts", domain.Consideration{
			ChildPostID: &childID,
		})

		require.NoError(t, err)
		require.NotNil(t, offer.ChildPostID)
		assert.Equal(t, int64(2), *offer.ChildPostID)
	})

	t.Run("rejects a child post pointing at the parent post", func(t *testing.T) {
		posts := newFakePostStore()
		posts.add(openPost(1, 10))
		svc := newTestOfferService(posts, newFakeOfferStore(), newFakeTradeStore())

		childID := int64(1)
		_, err := svc.CreateOffer(ctx, 1, 20, "self swap", domain.Consideration{
			ChildPostID: &childID,
		})

		assert.ErrorIs(t, err, domain.ErrSelfChildPost)
	})

	t.Run("treats a missing child post as invalid input", func(t *testing.T) {
		posts := newFakePostStore()
		posts.add(openPost(1, 10))
		svc := newTestOfferService(posts, newFakeOfferStore(), newFakeTradeStore())

		childID := int64(77)
		_, err := svc.CreateOffer(ctx, 1, 20, "ghost post", domain.Consideration{
			ChildPostID: &childID,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.NotErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("rejects a child post owned by someone else", func(t *testing.T) {
		posts := newFakePostStore()
		posts.add(openPost(1, 10))
		posts.add(openPost(2, 30))
		svc := newTestOfferService(posts, newFakeOfferStore(), newFakeTradeStore())

		childID := int64(2)
		_, err := svc.CreateOffer(ctx, 1, 20, "not mine", domain.Consideration{
			ChildPostID: &childID,
		})

		assert.ErrorIs(t, err, ErrChildPostNotOwned)
	})

	t.Run("rejects items and child post together", func(t *testing.T) {
		posts := newFakePostStore()
		posts.add(openPost(1, 10))
		posts.add(openPost(2, 20))
		svc := newTestOfferService(posts, newFakeOfferStore(), newFakeTradeStore())

		childID := int64(2)
		_, err := svc.CreateOffer(ctx, 1, 20, "both", domain.Consideration{
			Items:       []domain.Item{{Name: "Tripod"}},
			ChildPostID: &childID,
		})

		assert.ErrorIs(t, err, domain.ErrAmbiguousConsideration)
	})
}

func TestUpdateOffer(t *testing.T) {
	ctx := context.Background()

	setup := func() (*offerServiceImpl, *fakePostStore, *fakeOfferStore) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.add(openPost(1, 10))
		offers.add(pendingOffer(5, 1, 20))
		return newTestOfferService(posts, offers, newFakeTradeStore()), posts, offers
	}

	t.Run("updates the message only", func(t *testing.T) {
		svc, _, offers := setup()

		msg := "sweetened the deal"
		offer, err := svc.UpdateOffer(ctx, 5, 20, OfferUpdate{Message: &msg})

		require.NoError(t, err)
		assert.Equal(t, "sweetened the deal", offer.Message)
		assert.Equal(t, "sweetened the deal", offers.offers[5].Message)
	})

	t.Run("replaces the item list wholesale", func(t *testing.T) {
		svc, _, offers := setup()
		offers.offers[5].Items = []domain.Item{{Name: "Old lens", Quantity: 1}}

		offer, err := svc.UpdateOffer(ctx, 5, 20, OfferUpdate{
			SetItems: true,
			Items:    []domain.Item{{Name: "New lens"}, {Name: "Filter"}},
		})

		require.NoError(t, err)
		require.Len(t, offer.Items, 2)
		assert.Equal(t, "New lens", offer.Items[0].Name)
	})

	t.Run("replacement with no usable items wipes the prior list", func(t *testing.T) {
		svc, _, offers := setup()
		offers.offers[5].Items = []domain.Item{{Name: "Old lens", Quantity: 1}}

		offer, err := svc.UpdateOffer(ctx, 5, 20, OfferUpdate{
			SetItems: true,
			Items:    []domain.Item{{Name: "   "}, {Name: ""}},
		})

		require.NoError(t, err)
		assert.Empty(t, offer.Items)
		assert.Empty(t, offers.offers[5].Items)
	})

	t.Run("setting items clears an existing child post link", func(t *testing.T) {
		svc, posts, offers := setup()
		posts.add(openPost(2, 20))
		childID := int64(2)
		offers.offers[5].ChildPostID = &childID

		offer, err := svc.UpdateOffer(ctx, 5, 20, OfferUpdate{
			SetItems: true,
			Items:    []domain.Item{{Name: "Lens"}},
		})

		require.NoError(t, err)
		assert.Nil(t, offer.ChildPostID)
		require.Len(t, offer.Items, 1)
	})

	t.Run("setting a child post clears existing items", func(t *testing.T) {
		svc, posts, offers := setup()
		posts.add(openPost(2, 20))
		offers.offers[5].Items = []domain.Item{{Name: "Lens", Quantity: 1}}

		childID := int64(2)
		offer, err := svc.UpdateOffer(ctx, 5, 20, OfferUpdate{
			SetChildPost: true,
			ChildPostID:  &childID,
		})

		require.NoError(t, err)
		require.NotNil(t, offer.ChildPostID)
		assert.Equal(t, int64(2), *offer.ChildPostID)
		assert.Empty(t, offer.Items)
	})

	t.Run("clears the child post link", func(t *testing.T) {
		svc, posts, offers := setup()
		posts.add(openPost(2, 20))
		childID := int64(2)
		offers.offers[5].ChildPostID = &childID

		offer, err := svc.UpdateOffer(ctx, 5, 20, OfferUpdate{SetChildPost: true})

		require.NoError(t, err)
		assert.Nil(t, offer.ChildPostID)
	})

	t.Run("rejects items and child post in one request", func(t *testing.T) {
		svc, posts, _ := setup()
		posts.add(openPost(2, 20))

		childID := int64(2)
		_, err := svc.UpdateOffer(ctx, 5, 20, OfferUpdate{
			SetItems:     true,
			Items:        []domain.Item{{Name: "Lens"}},
			SetChildPost: true,
			ChildPostID:  &childID,
		})

		assert.ErrorIs(t, err, domain.ErrAmbiguousConsideration)
	})

	t.Run("only the author may edit", func(t *testing.T) {
		svc, _, _ := setup()

		msg := "hijack"
		_, err := svc.UpdateOffer(ctx, 5, 99, OfferUpdate{Message: &msg})

		assert.ErrorIs(t, err, ErrNotOfferAuthor)
	})

	t.Run("settled offers cannot be edited", func(t *testing.T) {
		svc, _, offers := setup()
		offers.offers[5].Status = domain.OfferStatusRejected

		msg := "second wind"
		_, err := svc.UpdateOffer(ctx, 5, 20, OfferUpdate{Message: &msg})

		assert.ErrorIs(t, err, ErrOfferNotPending)
	})
}

func TestAcceptOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("settles the post in one pass", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		trades := newFakeTradeStore()
		posts.add(openPost(1, 10))
		offers.add(pendingOffer(5, 1, 20))
		offers.add(pendingOffer(6, 1, 30))
		offers.add(pendingOffer(7, 1, 40))
		svc := newTestOfferService(posts, offers, trades)

		trade, err := svc.AcceptOffer(ctx, 5, 10)

		require.NoError(t, err)
		assert.Equal(t, int64(1), trade.PostID)
		assert.Equal(t, int64(5), trade.OfferID)
		assert.Equal(t, domain.TradeStatusCompleted, trade.Status)

		assert.Equal(t, domain.OfferStatusAccepted, offers.offers[5].Status)
		assert.Equal(t, domain.OfferStatusRejected, offers.offers[6].Status)
		assert.Equal(t, domain.OfferStatusRejected, offers.offers[7].Status)
		assert.Equal(t, domain.PostStatusTraded, posts.posts[1].Status)
		require.Len(t, trades.trades, 1)
	})

	t.Run("locks the post before the offer", func(t *testing.T) {
		// Settlements on the same post must all queue on the post row
		// before touching any offer row; taking the offer lock first lets
		// two accepters deadlock against each other's offers.
		var locks []string
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.lockLog = &locks
		offers.lockLog = &locks
		posts.add(openPost(1, 10))
		offers.add(pendingOffer(5, 1, 20))
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		_, err := svc.AcceptOffer(ctx, 5, 10)

		require.NoError(t, err)
		require.GreaterOrEqual(t, len(locks), 2)
		assert.Equal(t, []string{"post:1", "offer:5"}, locks[:2])
	})

	t.Run("settles the child post alongside the parent", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		trades := newFakeTradeStore()
		posts.add(openPost(1, 10))
		posts.add(openPost(2, 20))
		winner := pendingOffer(5, 1, 20)
		childID := int64(2)
		winner.ChildPostID = &childID
		offers.add(winner)
		offers.add(pendingOffer(6, 2, 50)) // pending offer on the child post
		svc := newTestOfferService(posts, offers, trades)

		_, err := svc.AcceptOffer(ctx, 5, 10)

		require.NoError(t, err)
		assert.Equal(t, domain.PostStatusTraded, posts.posts[1].Status)
		assert.Equal(t, domain.PostStatusTraded, posts.posts[2].Status)
		assert.Equal(t, domain.OfferStatusRejected, offers.offers[6].Status)
	})

	t.Run("only the post owner may accept", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.add(openPost(1, 10))
		offers.add(pendingOffer(5, 1, 20))
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		_, err := svc.AcceptOffer(ctx, 5, 20)

		assert.ErrorIs(t, err, ErrNotPostOwner)
		assert.Equal(t, domain.OfferStatusPending, offers.offers[5].Status)
	})

	t.Run("cannot accept a settled offer", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.add(openPost(1, 10))
		settled := pendingOffer(5, 1, 20)
		settled.Status = domain.OfferStatusRejected
		offers.add(settled)
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		_, err := svc.AcceptOffer(ctx, 5, 10)

		assert.ErrorIs(t, err, ErrOfferNotPending)
	})

	t.Run("second accept on the same post loses", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		trades := newFakeTradeStore()
		posts.add(openPost(1, 10))
		offers.add(pendingOffer(5, 1, 20))
		offers.add(pendingOffer(6, 1, 30))
		svc := newTestOfferService(posts, offers, trades)

		_, err := svc.AcceptOffer(ctx, 5, 10)
		require.NoError(t, err)

		_, err = svc.AcceptOffer(ctx, 6, 10)

		assert.ErrorIs(t, err, ErrOfferNotPending)
		require.Len(t, trades.trades, 1)
	})

	t.Run("returns not found for a missing offer", func(t *testing.T) {
		svc := newTestOfferService(newFakePostStore(), newFakeOfferStore(), newFakeTradeStore())

		_, err := svc.AcceptOffer(ctx, 99, 10)

		assert.ErrorIs(t, err, store.ErrOfferNotFound)
	})
}

func TestRejectOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a single offer and leaves the rest alone", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.add(openPost(1, 10))
		offers.add(pendingOffer(5, 1, 20))
		offers.add(pendingOffer(6, 1, 30))
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		err := svc.RejectOffer(ctx, 5, 10)

		require.NoError(t, err)
		assert.Equal(t, domain.OfferStatusRejected, offers.offers[5].Status)
		assert.Equal(t, domain.OfferStatusPending, offers.offers[6].Status)
		assert.Equal(t, domain.PostStatusOpen, posts.posts[1].Status)
	})

	t.Run("locks the post before the offer", func(t *testing.T) {
		var locks []string
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.lockLog = &locks
		offers.lockLog = &locks
		posts.add(openPost(1, 10))
		offers.add(pendingOffer(5, 1, 20))
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		err := svc.RejectOffer(ctx, 5, 10)

		require.NoError(t, err)
		assert.Equal(t, []string{"post:1", "offer:5"}, locks)
	})

	t.Run("only the post owner may reject", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.add(openPost(1, 10))
		offers.add(pendingOffer(5, 1, 20))
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		err := svc.RejectOffer(ctx, 5, 20)

		assert.ErrorIs(t, err, ErrNotPostOwner)
	})

	t.Run("cannot reject a settled offer", func(t *testing.T) {
		posts := newFakePostStore()
		offers := newFakeOfferStore()
		posts.add(openPost(1, 10))
		settled := pendingOffer(5, 1, 20)
		settled.Status = domain.OfferStatusAccepted
		offers.add(settled)
		svc := newTestOfferService(posts, offers, newFakeTradeStore())

		err := svc.RejectOffer(ctx, 5, 10)

		assert.ErrorIs(t, err, ErrOfferNotPending)
	})
}

func TestListOffers(t *testing.T) {
	ctx := context.Background()

	posts := newFakePostStore()
	offers := newFakeOfferStore()
	posts.add(openPost(1, 10))
	base := time.Now().UTC()
	for i := int64(1); i <= 5; i++ {
		o := pendingOffer(i, 1, 20+i)
		o.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		offers.add(o)
	}
	svc := newTestOfferService(posts, offers, newFakeTradeStore())

	t.Run("orders newest first with total ignoring pagination", func(t *testing.T) {
		postID := int64(1)
		got, total, err := svc.ListOffers(ctx, store.OfferFilter{PostID: &postID, Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, got, 2)
		assert.Equal(t, int64(5), got[0].ID)
		assert.Equal(t, int64(4), got[1].ID)
	})

	t.Run("offset walks the same ordering", func(t *testing.T) {
		postID := int64(1)
		got, total, err := svc.ListOffers(ctx, store.OfferFilter{
			PostID: &postID,
			Limit:  2,
			Offset: 4,
		})

		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})
}

func TestListTrades(t *testing.T) {
	ctx := context.Background()

	posts := newFakePostStore()
	offers := newFakeOfferStore()
	trades := newFakeTradeStore()
	posts.add(openPost(1, 10))
	posts.add(openPost(2, 11))
	offers.add(pendingOffer(5, 1, 20))
	offers.add(pendingOffer(6, 2, 20))
	svc := newTestOfferService(posts, offers, trades)

	_, err := svc.AcceptOffer(ctx, 5, 10)
	require.NoError(t, err)
	_, err = svc.AcceptOffer(ctx, 6, 11)
	require.NoError(t, err)

	t.Run("by post returns only that post's trade", func(t *testing.T) {
		got, err := svc.ListTradesByPost(ctx, 1)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].PostID)
		assert.Equal(t, int64(5), got[0].OfferID)
		assert.Equal(t, domain.TradeStatusCompleted, got[0].Status)
	})

	t.Run("by post with no trades returns empty", func(t *testing.T) {
		got, err := svc.ListTradesByPost(ctx, 99)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("by user spans both trades", func(t *testing.T) {
		got, err := svc.ListTradesByUser(ctx, 20)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

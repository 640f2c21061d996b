package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/store"
)

// The fakes below are in-memory store implementations. Services under
// test get a runTx that invokes the function with a nil transaction, and
// every fake's WithTx returns the fake itself, so transactional flows run
// against plain maps.

func fakeRunTx(ctx context.Context, db *sql.DB, fn store.TxFn) error {
	return fn(ctx, nil)
}

func fakeRunTxWithOptions(
	ctx context.Context,
	db *sql.DB,
	opts *sql.TxOptions,
	fn store.TxFn,
) error {
	return fn(ctx, nil)
}

// fakePostStore implements store.PostStore over a map.
type fakePostStore struct {
	posts  map[int64]*domain.Post
	nextID int64

	// lockLog, when shared with a fakeOfferStore, records the order in
	// which row locks were taken.
	lockLog *[]string
}

var _ store.PostStore = (*fakePostStore)(nil)

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[int64]*domain.Post), nextID: 1}
}

func (f *fakePostStore) add(post *domain.Post) *domain.Post {
	if post.ID == 0 {
		post.ID = f.nextID
		f.nextID++
	} else if post.ID >= f.nextID {
		f.nextID = post.ID + 1
	}
	f.posts[post.ID] = post
	return post
}

func copyPost(p *domain.Post) *domain.Post {
	cp := *p
	cp.Items = append([]domain.Item(nil), p.Items...)
	return &cp
}

func (f *fakePostStore) Create(ctx context.Context, post *domain.Post) error {
	post.ID = f.nextID
	f.nextID++
	f.posts[post.ID] = copyPost(post)
	return nil
}

func (f *fakePostStore) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return nil, store.ErrPostNotFound
	}
	return copyPost(post), nil
}

func (f *fakePostStore) GetForUpdate(ctx context.Context, id int64) (*domain.Post, error) {
	if f.lockLog != nil {
		*f.lockLog = append(*f.lockLog, fmt.Sprintf("post:%d", id))
	}
	return f.GetByID(ctx, id)
}

func (f *fakePostStore) List(ctx context.Context, filter store.PostFilter) ([]*domain.Post, error) {
	var out []*domain.Post
	for _, p := range f.posts {
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		out = append(out, copyPost(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakePostStore) Update(ctx context.Context, post *domain.Post) error {
	if _, ok := f.posts[post.ID]; !ok {
		return store.ErrPostNotFound
	}
	stored := f.posts[post.ID]
	stored.Title = post.Title
	stored.Description = post.Description
	stored.CategoryID = post.CategoryID
	stored.Status = post.Status
	stored.UpdatedAt = post.UpdatedAt
	return nil
}

func (f *fakePostStore) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.PostStatus,
	updatedAt time.Time,
) error {
	post, ok := f.posts[id]
	if !ok {
		return store.ErrPostNotFound
	}
	post.Status = status
	post.UpdatedAt = updatedAt
	return nil
}

func (f *fakePostStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.posts[id]; !ok {
		return store.ErrPostNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostStore) WithTx(tx *sql.Tx) store.PostStore { return f }

// fakeOfferStore implements store.OfferStore over a map.
type fakeOfferStore struct {
	offers map[int64]*domain.Offer
	nextID int64

	lockLog *[]string
}

var _ store.OfferStore = (*fakeOfferStore)(nil)

func newFakeOfferStore() *fakeOfferStore {
	return &fakeOfferStore{offers: make(map[int64]*domain.Offer), nextID: 1}
}

func (f *fakeOfferStore) add(offer *domain.Offer) *domain.Offer {
	if offer.ID == 0 {
		offer.ID = f.nextID
		f.nextID++
	} else if offer.ID >= f.nextID {
		f.nextID = offer.ID + 1
	}
	f.offers[offer.ID] = offer
	return offer
}

func copyOffer(o *domain.Offer) *domain.Offer {
	cp := *o
	cp.Items = append([]domain.Item(nil), o.Items...)
	if o.ChildPostID != nil {
		id := *o.ChildPostID
		cp.ChildPostID = &id
	}
	return &cp
}

func (f *fakeOfferStore) Create(ctx context.Context, offer *domain.Offer) error {
	offer.ID = f.nextID
	f.nextID++
	f.offers[offer.ID] = copyOffer(offer)
	return nil
}

func (f *fakeOfferStore) GetByID(ctx context.Context, id int64) (*domain.Offer, error) {
	offer, ok := f.offers[id]
	if !ok {
		return nil, store.ErrOfferNotFound
	}
	return copyOffer(offer), nil
}

func (f *fakeOfferStore) GetForUpdate(ctx context.Context, id int64) (*domain.Offer, error) {
	if f.lockLog != nil {
		*f.lockLog = append(*f.lockLog, fmt.Sprintf("offer:%d", id))
	}
	return f.GetByID(ctx, id)
}

func (f *fakeOfferStore) List(
	ctx context.Context,
	filter store.OfferFilter,
) ([]*domain.Offer, int, error) {
	filter = filter.Normalize()

	var matched []*domain.Offer
	for _, o := range f.offers {
		if filter.PostID != nil && o.PostID != *filter.PostID {
			continue
		}
		if filter.AuthorID != nil && o.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.ChildPostID != nil &&
			(o.ChildPostID == nil || *o.ChildPostID != *filter.ChildPostID) {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		matched = append(matched, copyOffer(o))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	if filter.Offset >= len(matched) {
		return []*domain.Offer{}, total, nil
	}
	matched = matched[filter.Offset:]
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (f *fakeOfferStore) StatusSummary(
	ctx context.Context,
	postID int64,
) ([]store.StatusCount, error) {
	counts := make(map[domain.OfferStatus]int)
	for _, o := range f.offers {
		if o.PostID == postID || (o.ChildPostID != nil && *o.ChildPostID == postID) {
			counts[o.Status]++
		}
	}
	var out []store.StatusCount
	for _, status := range []domain.OfferStatus{
		domain.OfferStatusPending,
		domain.OfferStatusAccepted,
		domain.OfferStatusRejected,
	} {
		if n, ok := counts[status]; ok {
			out = append(out, store.StatusCount{Status: status, Count: n})
		}
	}
	return out, nil
}

func (f *fakeOfferStore) Update(ctx context.Context, offer *domain.Offer) error {
	stored, ok := f.offers[offer.ID]
	if !ok {
		return store.ErrOfferNotFound
	}
	stored.Message = offer.Message
	if offer.ChildPostID != nil {
		id := *offer.ChildPostID
		stored.ChildPostID = &id
	} else {
		stored.ChildPostID = nil
	}
	return nil
}

func (f *fakeOfferStore) ReplaceItems(
	ctx context.Context,
	offerID int64,
	items []domain.Item,
) error {
	stored, ok := f.offers[offerID]
	if !ok {
		return store.ErrOfferNotFound
	}
	stored.Items = append([]domain.Item(nil), items...)
	return nil
}

func (f *fakeOfferStore) UpdateStatusIfPending(
	ctx context.Context,
	id int64,
	status domain.OfferStatus,
) error {
	stored, ok := f.offers[id]
	if !ok {
		return store.ErrOfferNotFound
	}
	if stored.Status != domain.OfferStatusPending {
		return store.ErrStaleStatus
	}
	stored.Status = status
	return nil
}

func (f *fakeOfferStore) RejectPendingByPost(
	ctx context.Context,
	postID, excludeID int64,
) (int64, error) {
	var n int64
	for _, o := range f.offers {
		if o.PostID == postID && o.Status == domain.OfferStatusPending && o.ID != excludeID {
			o.Status = domain.OfferStatusRejected
			n++
		}
	}
	return n, nil
}

func (f *fakeOfferStore) WithTx(tx *sql.Tx) store.OfferStore { return f }

// fakeTradeStore implements store.TradeStore over a slice.
type fakeTradeStore struct {
	trades []*domain.Trade
	nextID int64
}

var _ store.TradeStore = (*fakeTradeStore)(nil)

func newFakeTradeStore() *fakeTradeStore {
	return &fakeTradeStore{nextID: 1}
}

func (f *fakeTradeStore) Create(ctx context.Context, trade *domain.Trade) error {
	for _, t := range f.trades {
		if t.OfferID == trade.OfferID {
			return store.ErrPostAlreadyTraded
		}
	}
	trade.ID = f.nextID
	f.nextID++
	cp := *trade
	f.trades = append(f.trades, &cp)
	return nil
}

func (f *fakeTradeStore) ListByPost(ctx context.Context, postID int64) ([]*domain.Trade, error) {
	var out []*domain.Trade
	for _, t := range f.trades {
		if t.PostID == postID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeTradeStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Trade, error) {
	// The fake has no join data, so user scoping is not modeled.
	var out []*domain.Trade
	for _, t := range f.trades {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeTradeStore) WithTx(tx *sql.Tx) store.TradeStore { return f }

// fakeUserStore implements store.UserStore over a map.
type fakeUserStore struct {
	users  map[int64]*domain.User
	nextID int64
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*domain.User), nextID: 1}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return store.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return store.ErrEmailTaken
		}
	}
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// fakeCategoryStore implements store.CategoryStore over a slice.
type fakeCategoryStore struct {
	categories []*domain.Category
}

var _ store.CategoryStore = (*fakeCategoryStore)(nil)

func (f *fakeCategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	return f.categories, nil
}

package domain

import (
	"fmt"
	"time"
)

// OfferStatus represents the lifecycle state of an offer.
// Accepted and rejected are both terminal.
type OfferStatus string

// Possible offer status values
const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

// Offer-specific validation errors
var (
	ErrEmptyOfferPost   = fmt.Errorf("%w: offer post ID cannot be empty", ErrValidation)
	ErrEmptyOfferAuthor = fmt.Errorf("%w: offer author ID cannot be empty", ErrValidation)

	// ErrSelfChildPost is returned when an offer's child post is the post
	// being offered on.
	ErrSelfChildPost = fmt.Errorf(
		"%w: child post cannot be the post being offered on", ErrInvalidArgument)

	// ErrAmbiguousConsideration is returned when an offer carries both a
	// loose item list and a child-post link. The two consideration modes
	// are mutually exclusive.
	ErrAmbiguousConsideration = fmt.Errorf(
		"%w: offer cannot carry both items and a child post", ErrInvalidArgument)
)

// Consideration is what the offering user puts on the table: either an
// ad-hoc list of items or a link to one of their own posts (the child
// post). Exactly one mode may be populated; both empty is a bare offer
// carried by its message alone.
type Consideration struct {
	Items       []Item `json:"items,omitempty"`
	ChildPostID *int64 `json:"child_post_id,omitempty"`
}

// Validate enforces mutual exclusion between the two consideration modes.
func (c Consideration) Validate() error {
	if len(c.Items) > 0 && c.ChildPostID != nil {
		return ErrAmbiguousConsideration
	}
	return nil
}

// Offer is a proposal made against a post. The data layer calls these
// "responses"; the API surface and domain language say "offer".
type Offer struct {
	ID          int64       `json:"id"`
	PostID      int64       `json:"post_id"`
	AuthorID    int64       `json:"user_id"`
	ChildPostID *int64      `json:"child_post_id,omitempty"`
	Message     string      `json:"message"`
	Status      OfferStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []Item      `json:"items"`

	// Display-only denormalizations populated by read queries.
	Author    *Identity `json:"author,omitempty"`
	PostRef   *PostRef  `json:"post,omitempty"`
	ChildPost *PostRef  `json:"child_post,omitempty"`
}

// PostRef is the compact post reference embedded in offer projections.
type PostRef struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	AuthorID int64  `json:"author_id"`
}

// NewOffer creates a pending Offer against the given post. The
// consideration's items are normalized; invalid entries are dropped rather
// than rejected, since items are optional enrichment.
func NewOffer(postID, authorID int64, message string, consideration Consideration) (*Offer, error) {
	if err := consideration.Validate(); err != nil {
		return nil, err
	}

	o := &Offer{
		PostID:      postID,
		AuthorID:    authorID,
		ChildPostID: consideration.ChildPostID,
		Message:     message,
		Status:      OfferStatusPending,
		CreatedAt:   time.Now().UTC(),
		Items:       NormalizeItems(consideration.Items),
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate checks if the Offer has valid data.
// Returns an error if any field fails validation.
func (o *Offer) Validate() error {
	if o.PostID == 0 {
		return ErrEmptyOfferPost
	}

	if o.AuthorID == 0 {
		return ErrEmptyOfferAuthor
	}

	if o.ChildPostID != nil && *o.ChildPostID == o.PostID {
		return ErrSelfChildPost
	}

	if o.ChildPostID != nil && len(o.Items) > 0 {
		return ErrAmbiguousConsideration
	}

	if err := validateItems(o.Items); err != nil {
		return err
	}

	if !isValidOfferStatus(o.Status) {
		return ErrInvalidOfferStatus
	}

	return nil
}

// Pending reports whether the offer can still be edited or settled.
func (o *Offer) Pending() bool {
	return o.Status == OfferStatusPending
}

// isValidOfferStatus checks if the given status is a valid OfferStatus.
func isValidOfferStatus(status OfferStatus) bool {
	switch status {
	case OfferStatusPending, OfferStatusAccepted, OfferStatusRejected:
		return true
	default:
		return false
	}
}

package domain

import (
	"fmt"
	"time"
)

// TradeStatus represents the settlement state of a trade record.
type TradeStatus string

// Possible trade status values
const (
	TradeStatusPending   TradeStatus = "pending"
	TradeStatusCompleted TradeStatus = "completed"
)

// Trade-specific validation errors
var (
	ErrEmptyTradePost  = fmt.Errorf("%w: trade post ID cannot be empty", ErrValidation)
	ErrEmptyTradeOffer = fmt.Errorf("%w: trade offer ID cannot be empty", ErrValidation)
)

// Trade is the immutable settlement record created when an offer is
// accepted. It links the post and the winning offer and is never mutated
// afterward; no update or delete operation exists anywhere in the system.
type Trade struct {
	ID       int64       `json:"id"`
	PostID   int64       `json:"post_id"`
	OfferID  int64       `json:"offer_id"`
	AgreedAt time.Time   `json:"agreed_at"`
	Status   TradeStatus `json:"status"`
}

// NewTrade creates a completed Trade linking a post and its winning offer.
func NewTrade(postID, offerID int64) (*Trade, error) {
	t := &Trade{
		PostID:   postID,
		OfferID:  offerID,
		AgreedAt: time.Now().UTC(),
		Status:   TradeStatusCompleted,
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// Validate checks if the Trade has valid data.
func (t *Trade) Validate() error {
	if t.PostID == 0 {
		return ErrEmptyTradePost
	}

	if t.OfferID == 0 {
		return ErrEmptyTradeOffer
	}

	if t.Status != TradeStatusPending && t.Status != TradeStatusCompleted {
		return ErrInvalidTradeStatus
	}

	return nil
}

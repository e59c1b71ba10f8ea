package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingExpiring  ListingStatus = "expiring"
	ListingStarting  ListingStatus = "starting"
	ListingExpired   ListingStatus = "expired"
	ListingInactive  ListingStatus = "inactive"
	ListingFulfilled ListingStatus = "fulfilled"
)

func ListingStatuses() []ListingStatus {
	return []ListingStatus{ListingActive, ListingExpiring, ListingStarting, ListingExpired, ListingInactive, ListingFulfilled}
}

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingActive, ListingExpiring, ListingStarting, ListingExpired, ListingInactive, ListingFulfilled:
		return true
	}
	return false
}

// CanTransition reports whether a listing may move from s to next.
// expired, inactive and fulfilled are terminal.
func (s ListingStatus) CanTransition(next ListingStatus) bool {
	switch s {
	case ListingActive:
		switch next {
		case ListingFulfilled, ListingInactive, ListingExpired:
			return true
		}
	case ListingExpiring, ListingStarting:
		switch next {
		case ListingActive, ListingInactive, ListingExpired:
			return true
		}
	case ListingExpired, ListingInactive, ListingFulfilled:
		return false
	}
	return false
}

type Listing struct {
	bun.BaseModel `bun:"table:listings,alias:l"`

	ID              string              `bun:"id,pk,type:uuid"`
	CardID          string              `bun:"card_id,notnull,type:uuid"`
	SellerID        string              `bun:"seller_id,notnull,type:uuid"`
	BuyerID         string              `bun:"buyer_id,type:uuid,nullzero"`
	Price           decimal.Decimal     `bun:"price,type:numeric(78,0),notnull"`
	HighestBid      decimal.NullDecimal `bun:"highest_bid,type:numeric(78,0)"`
	HighestBidderID string              `bun:"highest_bidder_id,type:uuid,nullzero"`
	ExpirationTime  time.Time           `bun:"expiration_time,notnull"`
	OrderColumns
	Status    ListingStatus `bun:"status,notnull"`
	CreatedAt time.Time     `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time     `bun:"updated_at,notnull,default:current_timestamp"`

	// Relations
	Card   *Card `bun:"rel:belongs-to,join:card_id=id"`
	Seller *User `bun:"rel:belongs-to,join:seller_id=id"`
}

// Open reports whether the listing can still be bought at now.
func (l *Listing) Open(now time.Time) bool {
	return l.Status == ListingActive && l.ExpirationTime.After(now)
}

// Transition moves the listing to next or returns a *TransitionError.
func (l *Listing) Transition(next ListingStatus, at time.Time) error {
	if !l.Status.CanTransition(next) {
		return &TransitionError{Entity: "listing", ID: l.ID, From: string(l.Status), To: string(next)}
	}
	l.Status = next
	l.UpdatedAt = at
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type BidType string

const (
	BidTypeListing BidType = "listing"
	BidTypeOpen    BidType = "open"
)

func BidTypes() []BidType {
	return []BidType{BidTypeListing, BidTypeOpen}
}

type BidStatus string

const (
	BidActive    BidStatus = "active"
	BidFilled    BidStatus = "filled"
	BidTopBid    BidStatus = "topbid"
	BidOutbid    BidStatus = "outbid"
	BidWithdrawn BidStatus = "withdrawn"
)

func BidStatuses() []BidStatus {
	return []BidStatus{BidActive, BidFilled, BidTopBid, BidOutbid, BidWithdrawn}
}

func (s BidStatus) Valid() bool {
	switch s {
	case BidActive, BidFilled, BidTopBid, BidOutbid, BidWithdrawn:
		return true
	}
	return false
}

// Live reports whether a bid in this status can still be filled.
func (s BidStatus) Live() bool {
	return s == BidActive || s == BidTopBid
}

// CanTransition reports whether a bid may move from s to next.
// filled and withdrawn are terminal.
func (s BidStatus) CanTransition(next BidStatus) bool {
	switch s {
	case BidActive:
		switch next {
		case BidTopBid, BidFilled, BidOutbid, BidWithdrawn:
			return true
		}
	case BidTopBid:
		switch next {
		case BidOutbid, BidFilled, BidWithdrawn:
			return true
		}
	case BidOutbid:
		return next == BidWithdrawn
	case BidFilled, BidWithdrawn:
		return false
	}
	return false
}

type Bid struct {
	bun.BaseModel `bun:"table:bids,alias:b"`

	ID             string          `bun:"id,pk,type:uuid"`
	ListingID      string          `bun:"listing_id,type:uuid,nullzero"`
	CardID         string          `bun:"card_id,notnull,type:uuid"`
	BidderID       string          `bun:"bidder_id,notnull,type:uuid"`
	Price          decimal.Decimal `bun:"price,type:numeric(78,0),notnull"`
	BidAmount      decimal.Decimal `bun:"bid_amount,type:numeric(78,0),notnull"`
	OrderColumns
	BidType        BidType   `bun:"bid_type,notnull"`
	Status         BidStatus `bun:"status,notnull"`
	ExpirationTime time.Time `bun:"expiration_time,notnull"`
	AcceptedAt     time.Time `bun:"accepted_at,nullzero"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:current_timestamp"`

	// Relations
	Card    *Card    `bun:"rel:belongs-to,join:card_id=id"`
	Listing *Listing `bun:"rel:belongs-to,join:listing_id=id"`
	Bidder  *User    `bun:"rel:belongs-to,join:bidder_id=id"`
}

// Open reports whether the bid is live and unexpired at now.
func (b *Bid) Open(now time.Time) bool {
	return b.Status.Live() && b.ExpirationTime.After(now)
}

// Transition moves the bid to next or returns a *TransitionError.
func (b *Bid) Transition(next BidStatus, at time.Time) error {
	if !b.Status.CanTransition(next) {
		return &TransitionError{Entity: "bid", ID: b.ID, From: string(b.Status), To: string(next)}
	}
	b.Status = next
	b.UpdatedAt = at
	return nil
}

// ReconcileFill marks the bid filled because the chain transfer it paid for is
// final. Unlike Transition it may move outbid and withdrawn bids, since local
// state lost the race the chain already settled. A filled bid is left as is.
func (b *Bid) ReconcileFill(at time.Time) error {
	switch b.Status {
	case BidActive, BidTopBid, BidOutbid, BidWithdrawn:
		b.Status = BidFilled
		b.AcceptedAt = at
		b.UpdatedAt = at
		return nil
	case BidFilled:
		return nil
	}
	return &TransitionError{Entity: "bid", ID: b.ID, From: string(b.Status), To: string(BidFilled)}
}

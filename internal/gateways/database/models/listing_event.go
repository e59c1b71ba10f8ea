package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type ListingEventType string

const (
	EventListed    ListingEventType = "listed"
	EventBid       ListingEventType = "bid"
	EventCancelled ListingEventType = "cancelled"
	EventExpired   ListingEventType = "expired"
	EventSold      ListingEventType = "sold"
)

func ListingEventTypes() []ListingEventType {
	return []ListingEventType{EventListed, EventBid, EventCancelled, EventExpired, EventSold}
}

// ListingEvent is the append-only market ledger.
type ListingEvent struct {
	bun.BaseModel `bun:"table:listing_events,alias:le"`

	ID        string              `bun:"id,pk,type:uuid"`
	ListingID string              `bun:"listing_id,type:uuid,nullzero"`
	CardID    string              `bun:"card_id,notnull,type:uuid"`
	ActorID   string              `bun:"actor_id,notnull,type:uuid"`
	EventType ListingEventType    `bun:"event_type,notnull"`
	Amount    decimal.NullDecimal `bun:"amount,type:numeric(78,0)"`
	CreatedAt time.Time           `bun:"created_at,notnull,default:current_timestamp"`
}

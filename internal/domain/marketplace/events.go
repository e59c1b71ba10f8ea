package marketplace

import (
	"context"
	"log/slog"
	"time"
)

//go:generate mockgen -destination=mock/publisher.go -package=mock . Publisher

type EventType string

const (
	EventListingCreated   EventType = "listing.created"
	EventListingCancelled EventType = "listing.cancelled"
	EventListingExpired   EventType = "listing.expired"
	EventBidPlaced        EventType = "bid.placed"
	EventBidAccepted      EventType = "bid.accepted"
	EventCardSettled      EventType = "card.settled"
)

// Event is published after the transaction that produced it commits.
type Event struct {
	Type       EventType `json:"type"`
	CardID     string    `json:"card_id"`
	ListingID  string    `json:"listing_id,omitempty"`
	BidID      string    `json:"bid_id,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	TxHash     string    `json:"tx_hash,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

// outbox collects events inside a transaction closure. A rolled back
// transaction may retry the closure, so reset runs at the top of each attempt.
type outbox struct {
	events []Event
}

func (o *outbox) add(e Event) {
	o.events = append(o.events, e)
}

func (o *outbox) reset() {
	o.events = o.events[:0]
}

func (m *Manager) flush(ctx context.Context, box *outbox) {
	for _, e := range box.events {
		if err := m.publisher.Publish(ctx, e); err != nil {
			slog.Warn("Failed to publish market event",
				slog.String("type", "mkt"),
				slog.String("event", string(e.Type)),
				slog.String("card_id", e.CardID),
				slog.Any("error", err))
		}
	}
}

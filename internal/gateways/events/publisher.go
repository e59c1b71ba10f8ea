package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
)

const (
	streamMaxAge   = 7 * 24 * time.Hour
	publishTimeout = 5 * time.Second
)

// Stream is the slice of jetstream.JetStream the publisher needs.
type Stream interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// JetStreamPublisher persists market events on <prefix>.<event type>.
type JetStreamPublisher struct {
	js     Stream
	prefix string
}

var _ marketplace.Publisher = (*JetStreamPublisher)(nil)

// NewJetStreamPublisher makes sure the event stream exists and returns a publisher bound to it.
func NewJetStreamPublisher(ctx context.Context, nc *nats.Conn, stream string) (*JetStreamPublisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        stream,
		Description: "Marketplace listing, bid and settlement events",
		Subjects:    []string{config.EventSubjectPrefix + ".>"},
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      streamMaxAge,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create or update stream %s: %w", stream, err)
	}

	slog.Info("Event stream ready",
		slog.String("type", "sys"),
		slog.String("stream", stream))
	return NewPublisher(js, config.EventSubjectPrefix), nil
}

func NewPublisher(js Stream, prefix string) *JetStreamPublisher {
	if js == nil {
		panic("jetstream cannot be nil")
	}
	return &JetStreamPublisher{js: js, prefix: prefix}
}

// Publish waits for the stream ack. The message id dedupes retries of the same event.
func (p *JetStreamPublisher) Publish(ctx context.Context, event marketplace.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	subject := p.prefix + "." + string(event.Type)
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(messageID(event)))
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	slog.Debug("Market event published",
		slog.String("type", "mkt"),
		slog.String("subject", subject),
		slog.Uint64("seq", ack.Sequence))
	return nil
}

func messageID(e marketplace.Event) string {
	id := e.BidID
	if id == "" {
		id = e.ListingID
	}
	return fmt.Sprintf("%s:%s:%s:%d", e.Type, e.CardID, id, e.OccurredAt.UnixNano())
}

package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

//go:generate mockgen -destination=mock/service.go -package=mock . Service

// Service is the surface the route layer calls. Callers are already authenticated.
type Service interface {
	CreateListing(ctx context.Context, in CreateListingInput) (*models.Listing, error)
	GetListings(ctx context.Context, filter ListingFilter) ([]*models.Listing, error)
	CancelListing(ctx context.Context, listingID, sellerID string) error
	ExpireListings(ctx context.Context) (int, error)

	PlaceListingBid(ctx context.Context, in ListingBidInput) (*BidResult, error)
	PlaceOpenBid(ctx context.Context, in OpenBidInput) (*models.Bid, error)
	AcceptOpenBid(ctx context.Context, bidID, sellerID, txHash string) (*models.Settlement, error)
	GetOpenBidsForCard(ctx context.Context, cardID string) ([]*models.Bid, error)
	GetAllUserBids(ctx context.Context, userID string) ([]*models.Bid, error)

	ReconcileOrphans(ctx context.Context) (int, error)
}

type CreateListingInput struct {
	CardID         string
	SellerID       string
	Price          decimal.Decimal
	Order          models.SignedOrder
	ExpirationTime time.Time
}

type ListingBidInput struct {
	ListingID string
	BidderID  string
	Amount    decimal.Decimal
	Order     models.SignedOrder
}

type OpenBidInput struct {
	CardID         string
	BidderID       string
	Amount         decimal.Decimal
	Order          models.SignedOrder
	ExpirationTime time.Time
}

// BidResult carries the settlement when the bid met the ask.
type BidResult struct {
	Bid        *models.Bid
	Settlement *models.Settlement
}

func (r *BidResult) Settled() bool {
	return r != nil && r.Settlement != nil
}

// Manager implements Service. Chain calls never run inside a database transaction:
// every settlement path asks the verifier first and commits local state after.
type Manager struct {
	repo       Repository
	verifier   Verifier
	publisher  Publisher
	now        func() time.Time
	newID      func() string
	sweepBatch int
}

var _ Service = (*Manager)(nil)

type Option func(*Manager)

func WithPublisher(p Publisher) Option {
	return func(m *Manager) {
		if p != nil {
			m.publisher = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func WithSweepBatch(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.sweepBatch = n
		}
	}
}

func NewManager(repo Repository, verifier Verifier, opts ...Option) *Manager {
	if repo == nil {
		panic("marketplace repository cannot be nil")
	}
	if verifier == nil {
		panic("chain verifier cannot be nil")
	}

	m := &Manager{
		repo:       repo,
		verifier:   verifier,
		publisher:  nopPublisher{},
		now:        time.Now,
		newID:      func() string { return uuid.Must(uuid.NewV7()).String() },
		sweepBatch: config.DefaultSweepBatchSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// verify asks the chain whether the order is still good to trade.
func (m *Manager) verify(ctx context.Context, order models.SignedOrder) error {
	ok, err := m.verifier.VerifyOrder(ctx, order)
	if err != nil {
		return marketplaceErr("order verification failed", err)
	}
	if !ok {
		return validation("order was rejected by the chain verifier")
	}
	return nil
}

func validatePrice(field string, price decimal.Decimal) error {
	if !price.IsPositive() || !price.IsInteger() {
		return validation("%s must be a positive integer amount", field)
	}
	return nil
}

func validateOrder(order models.SignedOrder, side models.OrderSide, price decimal.Decimal, now time.Time) error {
	if order.IsZero() || order.Signature == "" {
		return validation("a signed order is required")
	}
	if order.Order.Side != side {
		return validation("order side must be %s", side)
	}
	if !order.Order.Price.Equal(price) {
		return validation("order price %s does not match %s", order.Order.Price, price)
	}
	if order.Order.ExpirationTime > 0 && !order.Order.ExpiresAt().After(now) {
		return validation("order has expired")
	}
	return nil
}

func (m *Manager) loadCard(ctx context.Context, cardID string) (*models.Card, error) {
	card, err := m.repo.GetCard(ctx, cardID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("card %s not found", cardID)
	}
	if err != nil {
		return nil, classify("load card", err)
	}
	return card, nil
}

func (m *Manager) ledger(listingID, cardID, actorID string, kind models.ListingEventType, amount *decimal.Decimal, at time.Time) *models.ListingEvent {
	event := &models.ListingEvent{
		ID:        m.newID(),
		ListingID: listingID,
		CardID:    cardID,
		ActorID:   actorID,
		EventType: kind,
		CreatedAt: at,
	}
	if amount != nil {
		event.Amount = decimal.NewNullDecimal(*amount)
	}
	return event
}

// lockCard wraps Tx.LockCard with the engine's error vocabulary.
func lockCard(ctx context.Context, tx Tx, cardID string) (*models.Card, error) {
	card, err := tx.LockCard(ctx, cardID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("card %s not found", cardID)
	}
	return card, err
}

func lockListing(ctx context.Context, tx Tx, listingID string) (*models.Listing, error) {
	listing, err := tx.LockListing(ctx, listingID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("listing %s not found", listingID)
	}
	return listing, err
}

func lockBid(ctx context.Context, tx Tx, bidID string) (*models.Bid, error) {
	bid, err := tx.LockBid(ctx, bidID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("bid %s not found", bidID)
	}
	return bid, err
}

func notOwned(cardID, userID string) *Error {
	return newError(KindNotOwned, "card %s is not owned by %s", cardID, userID)
}

func transitionErr(err error) error {
	return &Error{Kind: KindMarketplace, Message: "invalid state transition", Err: err}
}

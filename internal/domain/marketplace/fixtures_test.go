package marketplace_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace/mock"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	t        *testing.T
	store    *memStore
	verifier *mock.MockVerifier
	manager  *marketplace.Manager

	mu      sync.Mutex
	now     time.Time
	tokenID int64
}

// newHarness wires a Manager over memStore. The verifier accepts every order;
// tests that care about chain calls add their own expectations first.
func newHarness(t *testing.T, opts ...marketplace.Option) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		store: newMemStore(),
		now:   baseTime,
	}
	h.verifier = mock.NewMockVerifier(gomock.NewController(t))
	opts = append([]marketplace.Option{marketplace.WithClock(h.clock)}, opts...)
	h.manager = marketplace.NewManager(h.store, h.verifier, opts...)
	return h
}

func (h *harness) acceptOrders() {
	h.verifier.EXPECT().VerifyOrder(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = h.now.Add(d)
}

func (h *harness) user(name string) string {
	id := uuid.NewString()
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.users[id] = &models.User{ID: id, Username: name, CreatedAt: baseTime}
	return id
}

func (h *harness) card(ownerID, runner string, rarity models.Rarity) *models.Card {
	h.mu.Lock()
	h.tokenID++
	token := h.tokenID
	h.mu.Unlock()

	card := &models.Card{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		TokenID:         token,
		AcquisitionType: models.AcquisitionMint,
		CreatedAt:       baseTime,
		UpdatedAt:       baseTime,
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.cards[card.ID] = copyCard(card)
	h.store.metadata[token] = &models.CardMetadata{
		TokenID:    token,
		RunnerID:   uuid.NewString(),
		RunnerName: runner,
		Rarity:     rarity,
		Multiplier: rarity.Multiplier(),
		Season:     "s1",
	}
	return card
}

type testingT interface {
	require.TestingT
	Helper()
}

func signedOrder(t testingT, trader string, side models.OrderSide, price int64, expires time.Time) models.SignedOrder {
	t.Helper()
	var exp int64
	if !expires.IsZero() {
		exp = expires.Unix()
	}
	raw := fmt.Sprintf(
		`{"trader":%q,"side":%q,"collection":"0xrunners","token_id":"1","payment_token":"0xeth","price":"%d","expiration_time":%d,"merkle_root":"","salt":"%s"}`,
		trader, side, price, exp, uuid.NewString(),
	)
	order, err := models.NewSignedOrder(json.RawMessage(raw), "0xsig-"+trader, "0xhash-"+uuid.NewString())
	require.NoError(t, err)
	return order
}

func (h *harness) list(cardID, sellerID string, price int64, ttl time.Duration) *models.Listing {
	h.t.Helper()
	listing, err := h.manager.CreateListing(context.Background(), marketplace.CreateListingInput{
		CardID:         cardID,
		SellerID:       sellerID,
		Price:          decimal.NewFromInt(price),
		Order:          signedOrder(h.t, sellerID, models.OrderSideSell, price, time.Time{}),
		ExpirationTime: h.clock().Add(ttl),
	})
	require.NoError(h.t, err)
	return listing
}

func (h *harness) listingBid(listingID, bidderID string, amount int64) (*marketplace.BidResult, error) {
	return h.manager.PlaceListingBid(context.Background(), marketplace.ListingBidInput{
		ListingID: listingID,
		BidderID:  bidderID,
		Amount:    decimal.NewFromInt(amount),
		Order:     signedOrder(h.t, bidderID, models.OrderSideBuy, amount, time.Time{}),
	})
}

func (h *harness) openBid(cardID, bidderID string, amount int64, ttl time.Duration) (*models.Bid, error) {
	return h.manager.PlaceOpenBid(context.Background(), marketplace.OpenBidInput{
		CardID:         cardID,
		BidderID:       bidderID,
		Amount:         decimal.NewFromInt(amount),
		Order:          signedOrder(h.t, bidderID, models.OrderSideBuy, amount, time.Time{}),
		ExpirationTime: h.clock().Add(ttl),
	})
}

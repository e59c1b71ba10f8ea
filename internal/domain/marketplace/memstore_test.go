package marketplace_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

// memStore is an in-memory Repository. RunInTx holds one global lock for the
// whole closure, which is stricter than row locks but gives the same
// serialisation per card. A failed closure restores the pre-transaction state.
type memStore struct {
	mu          sync.Mutex
	users       map[string]*models.User
	cards       map[string]*models.Card
	metadata    map[int64]*models.CardMetadata
	listings    map[string]*models.Listing
	bids        map[string]*models.Bid
	settlements map[string]*models.Settlement
	events      []*models.ListingEvent

	// failConfirmed makes every insert of a confirmed settlement fail.
	failConfirmed error
	txCount       int
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[string]*models.User{},
		cards:       map[string]*models.Card{},
		metadata:    map[int64]*models.CardMetadata{},
		listings:    map[string]*models.Listing{},
		bids:        map[string]*models.Bid{},
		settlements: map[string]*models.Settlement{},
	}
}

var _ marketplace.Repository = (*memStore)(nil)

type snapshot struct {
	cards       map[string]*models.Card
	listings    map[string]*models.Listing
	bids        map[string]*models.Bid
	settlements map[string]*models.Settlement
	events      int
}

func (s *memStore) snapshot() snapshot {
	snap := snapshot{
		cards:       make(map[string]*models.Card, len(s.cards)),
		listings:    make(map[string]*models.Listing, len(s.listings)),
		bids:        make(map[string]*models.Bid, len(s.bids)),
		settlements: make(map[string]*models.Settlement, len(s.settlements)),
		events:      len(s.events),
	}
	for k, v := range s.cards {
		snap.cards[k] = copyCard(v)
	}
	for k, v := range s.listings {
		snap.listings[k] = copyListing(v)
	}
	for k, v := range s.bids {
		snap.bids[k] = copyBid(v)
	}
	for k, v := range s.settlements {
		c := *v
		snap.settlements[k] = &c
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.cards = snap.cards
	s.listings = snap.listings
	s.bids = snap.bids
	s.settlements = snap.settlements
	s.events = s.events[:snap.events]
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx marketplace.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++

	snap := s.snapshot()
	if err := fn(ctx, &memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func copyCard(c *models.Card) *models.Card {
	out := *c
	out.Metadata = nil
	out.Owner = nil
	return &out
}

func copyListing(l *models.Listing) *models.Listing {
	out := *l
	out.Card = nil
	out.Seller = nil
	return &out
}

func copyBid(b *models.Bid) *models.Bid {
	out := *b
	out.Card = nil
	out.Listing = nil
	out.Bidder = nil
	return &out
}

// withCard attaches a card copy with metadata, the way the bun relations load it.
func (s *memStore) withCard(cardID string) *models.Card {
	card, ok := s.cards[cardID]
	if !ok {
		return nil
	}
	out := copyCard(card)
	if meta, ok := s.metadata[card.TokenID]; ok {
		m := *meta
		out.Metadata = &m
	}
	return out
}

func (s *memStore) GetCard(_ context.Context, cardID string) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[cardID]; !ok {
		return nil, marketplace.ErrRecordNotFound
	}
	return s.withCard(cardID), nil
}

func (s *memStore) GetListing(_ context.Context, listingID string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[listingID]
	if !ok {
		return nil, marketplace.ErrRecordNotFound
	}
	return copyListing(l), nil
}

func (s *memStore) GetBid(_ context.Context, bidID string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bids[bidID]
	if !ok {
		return nil, marketplace.ErrRecordNotFound
	}
	return copyBid(b), nil
}

func (s *memStore) FindListings(_ context.Context, filter marketplace.ListingFilter, now time.Time) ([]*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Listing
	for _, l := range s.listings {
		if l.Status != models.ListingActive || !l.ExpirationTime.After(now) {
			continue
		}
		if filter.MinPrice.Valid && l.Price.LessThan(filter.MinPrice.Decimal) {
			continue
		}
		if filter.MaxPrice.Valid && l.Price.GreaterThan(filter.MaxPrice.Decimal) {
			continue
		}
		c := copyListing(l)
		c.Card = s.withCard(l.CardID)
		if len(filter.Rarities) > 0 && !hasRarity(c.Card, filter.Rarities) {
			continue
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		switch filter.Sort {
		case marketplace.SortPriceAsc:
			return out[i].Price.LessThan(out[j].Price)
		case marketplace.SortPriceDesc:
			return out[i].Price.GreaterThan(out[j].Price)
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})

	if filter.Offset >= len(out) {
		return []*models.Listing{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func hasRarity(card *models.Card, rarities []models.Rarity) bool {
	if card == nil || card.Metadata == nil {
		return false
	}
	for _, r := range rarities {
		if card.Metadata.Rarity == r {
			return true
		}
	}
	return false
}

func (s *memStore) FindOpenBidsForCard(_ context.Context, cardID string, now time.Time) ([]*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Bid
	for _, b := range s.bids {
		if b.CardID == cardID && b.BidType == models.BidTypeOpen && b.Open(now) {
			c := copyBid(b)
			if u, ok := s.users[b.BidderID]; ok {
				uc := *u
				c.Bidder = &uc
			}
			out = append(out, c)
		}
	}
	sortBids(out)
	return out, nil
}

func (s *memStore) FindUserBids(_ context.Context, userID string, now time.Time) ([]*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Bid
	for _, b := range s.bids {
		if b.BidderID == userID && b.ExpirationTime.After(now) {
			c := copyBid(b)
			c.Card = s.withCard(b.CardID)
			out = append(out, c)
		}
	}
	sortBids(out)
	return out, nil
}

func (s *memStore) FindOrphanedSettlements(_ context.Context, limit int) ([]*models.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Settlement
	for _, st := range s.settlements {
		if st.Status == models.SettlementOrphaned {
			c := *st
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortBids(bids []*models.Bid) {
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].ID < bids[j].ID
		}
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})
}

// memTx runs with memStore.mu already held.
type memTx struct {
	s *memStore
}

func (t *memTx) LockCard(_ context.Context, cardID string) (*models.Card, error) {
	c, ok := t.s.cards[cardID]
	if !ok {
		return nil, marketplace.ErrRecordNotFound
	}
	return copyCard(c), nil
}

func (t *memTx) LockListing(_ context.Context, listingID string) (*models.Listing, error) {
	l, ok := t.s.listings[listingID]
	if !ok {
		return nil, marketplace.ErrRecordNotFound
	}
	return copyListing(l), nil
}

func (t *memTx) LockBid(_ context.Context, bidID string) (*models.Bid, error) {
	b, ok := t.s.bids[bidID]
	if !ok {
		return nil, marketplace.ErrRecordNotFound
	}
	return copyBid(b), nil
}

func (t *memTx) LockSettlement(_ context.Context, settlementID string) (*models.Settlement, error) {
	st, ok := t.s.settlements[settlementID]
	if !ok {
		return nil, marketplace.ErrRecordNotFound
	}
	c := *st
	return &c, nil
}

func (t *memTx) SettlementsByTxHash(_ context.Context, txHash string) ([]*models.Settlement, error) {
	var out []*models.Settlement
	for _, st := range t.s.settlements {
		if st.TxHash == txHash {
			c := *st
			out = append(out, &c)
		}
	}
	return out, nil
}

func (t *memTx) ActiveListingsForCard(_ context.Context, cardID string) ([]*models.Listing, error) {
	var out []*models.Listing
	for _, l := range t.s.listings {
		if l.CardID == cardID && l.Status == models.ListingActive {
			out = append(out, copyListing(l))
		}
	}
	return out, nil
}

func pending(b *models.Bid) bool {
	return b.Status == models.BidActive || b.Status == models.BidTopBid || b.Status == models.BidOutbid
}

func (t *memTx) PendingBidsForCard(_ context.Context, cardID string) ([]*models.Bid, error) {
	var out []*models.Bid
	for _, b := range t.s.bids {
		if b.CardID == cardID && pending(b) {
			out = append(out, copyBid(b))
		}
	}
	sortBids(out)
	return out, nil
}

func (t *memTx) PendingBidsForListing(_ context.Context, listingID string) ([]*models.Bid, error) {
	var out []*models.Bid
	for _, b := range t.s.bids {
		if b.ListingID == listingID && pending(b) {
			out = append(out, copyBid(b))
		}
	}
	sortBids(out)
	return out, nil
}

func (t *memTx) ExpirableListings(_ context.Context, now time.Time, limit int) ([]*models.Listing, error) {
	var out []*models.Listing
	for _, l := range t.s.listings {
		if l.Status == models.ListingActive && !l.ExpirationTime.After(now) {
			out = append(out, copyListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// checkActive mirrors the partial unique index on listings(card_id) WHERE status = 'active'.
func (t *memTx) checkActive(l *models.Listing) error {
	if l.Status != models.ListingActive {
		return nil
	}
	for _, other := range t.s.listings {
		if other.ID != l.ID && other.CardID == l.CardID && other.Status == models.ListingActive {
			return marketplace.ErrActiveListingExists
		}
	}
	return nil
}

func (t *memTx) InsertListing(_ context.Context, listing *models.Listing) error {
	if _, ok := t.s.listings[listing.ID]; ok {
		return marketplace.ErrConflict
	}
	if err := t.checkActive(listing); err != nil {
		return err
	}
	t.s.listings[listing.ID] = copyListing(listing)
	return nil
}

func (t *memTx) UpdateListing(_ context.Context, listing *models.Listing) error {
	if _, ok := t.s.listings[listing.ID]; !ok {
		return marketplace.ErrRecordNotFound
	}
	if err := t.checkActive(listing); err != nil {
		return err
	}
	t.s.listings[listing.ID] = copyListing(listing)
	return nil
}

func (t *memTx) InsertBid(_ context.Context, bid *models.Bid) error {
	if _, ok := t.s.bids[bid.ID]; ok {
		return marketplace.ErrConflict
	}
	t.s.bids[bid.ID] = copyBid(bid)
	return nil
}

func (t *memTx) UpdateBid(_ context.Context, bid *models.Bid) error {
	if _, ok := t.s.bids[bid.ID]; !ok {
		return marketplace.ErrRecordNotFound
	}
	t.s.bids[bid.ID] = copyBid(bid)
	return nil
}

func (t *memTx) UpdateCard(_ context.Context, card *models.Card) error {
	if _, ok := t.s.cards[card.ID]; !ok {
		return marketplace.ErrRecordNotFound
	}
	t.s.cards[card.ID] = copyCard(card)
	return nil
}

func (t *memTx) InsertEvent(_ context.Context, event *models.ListingEvent) error {
	c := *event
	t.s.events = append(t.s.events, &c)
	return nil
}

func (t *memTx) InsertSettlement(_ context.Context, settlement *models.Settlement) error {
	if settlement.Status == models.SettlementConfirmed && t.s.failConfirmed != nil {
		return t.s.failConfirmed
	}
	c := *settlement
	t.s.settlements[settlement.ID] = &c
	return nil
}

func (t *memTx) UpdateSettlement(_ context.Context, settlement *models.Settlement) error {
	if _, ok := t.s.settlements[settlement.ID]; !ok {
		return marketplace.ErrRecordNotFound
	}
	c := *settlement
	t.s.settlements[settlement.ID] = &c
	return nil
}

// read helpers for assertions

func (s *memStore) card(id string) *models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCard(s.cards[id])
}

func (s *memStore) listing(id string) *models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyListing(s.listings[id])
}

func (s *memStore) bid(id string) *models.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyBid(s.bids[id])
}

func (s *memStore) bidsForCard(cardID string) []*models.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Bid
	for _, b := range s.bids {
		if b.CardID == cardID {
			out = append(out, copyBid(b))
		}
	}
	sortBids(out)
	return out
}

func (s *memStore) settlementsFor(cardID string) []*models.Settlement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Settlement
	for _, st := range s.settlements {
		if st.CardID == cardID {
			c := *st
			out = append(out, &c)
		}
	}
	return out
}

func (s *memStore) eventsFor(cardID string) []models.ListingEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ListingEventType
	for _, e := range s.events {
		if e.CardID == cardID {
			out = append(out, e.EventType)
		}
	}
	return out
}

func (s *memStore) setFailConfirmed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failConfirmed = err
}

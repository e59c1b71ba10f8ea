package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/shopspring/decimal"

	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
	"github.com/fantasyrun/runner-market/internal/logger"
)

type ListingSort string

const (
	SortPriceAsc  ListingSort = "price_asc"
	SortPriceDesc ListingSort = "price_desc"
	SortRecent    ListingSort = "recent"
)

type ListingFilter struct {
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal
	Rarities []models.Rarity
	// Runner fuzzy-matches the runner display name.
	Runner string
	Sort   ListingSort
	Limit  int
	Offset int
}

func (f ListingFilter) normalize() (ListingFilter, error) {
	switch f.Sort {
	case "":
		f.Sort = SortRecent
	case SortPriceAsc, SortPriceDesc, SortRecent:
	default:
		return f, validation("unknown sort order %q", f.Sort)
	}
	for _, r := range f.Rarities {
		if !r.Valid() {
			return f, validation("unknown rarity %q", r)
		}
	}
	if f.MinPrice.Valid && f.MinPrice.Decimal.IsNegative() {
		return f, validation("min price cannot be negative")
	}
	if f.MinPrice.Valid && f.MaxPrice.Valid && f.MinPrice.Decimal.GreaterThan(f.MaxPrice.Decimal) {
		return f, validation("min price is above max price")
	}
	if f.Offset < 0 {
		return f, validation("offset cannot be negative")
	}
	if f.Limit <= 0 {
		f.Limit = config.DefaultPageSize
	}
	if f.Limit > config.MaxPageSize {
		f.Limit = config.MaxPageSize
	}
	return f, nil
}

func (m *Manager) CreateListing(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	now := m.now()
	if err := validatePrice("price", in.Price); err != nil {
		return nil, err
	}
	if !in.ExpirationTime.After(now) {
		return nil, validation("expiration time must be in the future")
	}
	if err := validateOrder(in.Order, models.OrderSideSell, in.Price, now); err != nil {
		return nil, err
	}

	card, err := m.loadCard(ctx, in.CardID)
	if err != nil {
		return nil, err
	}
	if card.OwnerID != in.SellerID || card.Burned {
		return nil, notOwned(in.CardID, in.SellerID)
	}
	if err := m.verify(ctx, in.Order); err != nil {
		return nil, err
	}

	listing := &models.Listing{
		ID:             m.newID(),
		CardID:         in.CardID,
		SellerID:       in.SellerID,
		Price:          in.Price,
		ExpirationTime: in.ExpirationTime,
		Status:         models.ListingActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := listing.SetOrder(in.Order); err != nil {
		return nil, validation("order cannot be stored: %v", err)
	}

	box := &outbox{}
	err = m.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		box.reset()
		card, err := lockCard(ctx, tx, in.CardID)
		if err != nil {
			return err
		}
		if card.OwnerID != in.SellerID || card.Burned {
			return notOwned(in.CardID, in.SellerID)
		}

		active, err := tx.ActiveListingsForCard(ctx, card.ID)
		if err != nil {
			return err
		}
		for _, existing := range active {
			if existing.Open(now) {
				return &Error{Kind: KindDuplicateActiveListing, Message: "card already has an active listing"}
			}
			// lapsed but not swept yet; it must leave active before the new row can enter
			if err := m.expireListing(ctx, tx, existing, now, box); err != nil {
				return err
			}
		}

		if err := tx.InsertListing(ctx, listing); err != nil {
			return err
		}
		box.add(Event{
			Type:       EventListingCreated,
			CardID:     card.ID,
			ListingID:  listing.ID,
			ActorID:    in.SellerID,
			Amount:     listing.Price.String(),
			OccurredAt: now,
		})
		return tx.InsertEvent(ctx, m.ledger(listing.ID, card.ID, in.SellerID, models.EventListed, &listing.Price, now))
	})
	if err != nil {
		return nil, classify("create listing", err)
	}

	m.flush(ctx, box)
	logger.LogMarket("Listing created",
		slog.String("listing_id", listing.ID),
		slog.String("card_id", listing.CardID),
		slog.String("seller_id", listing.SellerID),
		slog.String("price", listing.Price.String()))
	return listing, nil
}

func (m *Manager) GetListings(ctx context.Context, filter ListingFilter) ([]*models.Listing, error) {
	filter, err := filter.normalize()
	if err != nil {
		return nil, err
	}

	query := filter
	if filter.Runner != "" {
		// fuzzy matching happens here, so page after it
		query.Limit, query.Offset = 0, 0
	}

	now := m.now()
	listings, err := m.repo.FindListings(ctx, query, now)
	if err != nil {
		return nil, classify("load listings", err)
	}

	open := listings[:0]
	for _, l := range listings {
		if l.Open(now) {
			open = append(open, l)
		}
	}
	listings = open

	if filter.Runner == "" {
		return listings, nil
	}
	return paginate(matchRunner(listings, filter.Runner), filter.Offset, filter.Limit), nil
}

type runnerNames []*models.Listing

func (r runnerNames) String(i int) string {
	if card := r[i].Card; card != nil && card.Metadata != nil {
		return card.Metadata.RunnerName
	}
	return ""
}

func (r runnerNames) Len() int {
	return len(r)
}

// matchRunner keeps listings whose runner name fuzzy-matches query, in their original order.
func matchRunner(listings []*models.Listing, query string) []*models.Listing {
	matches := fuzzy.FindFrom(query, runnerNames(listings))
	idx := make([]int, 0, len(matches))
	for _, match := range matches {
		idx = append(idx, match.Index)
	}
	sort.Ints(idx)

	out := make([]*models.Listing, 0, len(idx))
	for _, i := range idx {
		out = append(out, listings[i])
	}
	return out
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (m *Manager) CancelListing(ctx context.Context, listingID, sellerID string) error {
	now := m.now()
	listing, err := m.repo.GetListing(ctx, listingID)
	if errors.Is(err, ErrRecordNotFound) {
		return notFound("listing %s not found", listingID)
	}
	if err != nil {
		return classify("load listing", err)
	}

	box := &outbox{}
	err = m.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		box.reset()
		if _, err := lockCard(ctx, tx, listing.CardID); err != nil {
			return err
		}
		locked, err := lockListing(ctx, tx, listingID)
		if err != nil {
			return err
		}
		if !locked.Open(now) || locked.SellerID != sellerID {
			return notFound("no active listing %s for seller %s", listingID, sellerID)
		}

		if err := locked.Transition(models.ListingInactive, now); err != nil {
			return transitionErr(err)
		}
		if err := tx.UpdateListing(ctx, locked); err != nil {
			return err
		}
		if err := withdrawBids(ctx, tx, tx.PendingBidsForListing, locked.ID, "", now); err != nil {
			return err
		}

		box.add(Event{
			Type:       EventListingCancelled,
			CardID:     locked.CardID,
			ListingID:  locked.ID,
			ActorID:    sellerID,
			OccurredAt: now,
		})
		return tx.InsertEvent(ctx, m.ledger(locked.ID, locked.CardID, sellerID, models.EventCancelled, nil, now))
	})
	if err != nil {
		return classify("cancel listing", err)
	}

	m.flush(ctx, box)
	logger.LogMarket("Listing cancelled",
		slog.String("listing_id", listingID),
		slog.String("seller_id", sellerID))
	return nil
}

// ExpireListings flips lapsed active listings to expired in batches and returns how many moved.
func (m *Manager) ExpireListings(ctx context.Context) (int, error) {
	now := m.now()
	total := 0
	for {
		var moved int
		box := &outbox{}
		err := m.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
			box.reset()
			due, err := tx.ExpirableListings(ctx, now, m.sweepBatch)
			if err != nil {
				return err
			}
			for _, listing := range due {
				if err := m.expireListing(ctx, tx, listing, now, box); err != nil {
					return err
				}
			}
			moved = len(due)
			return nil
		})
		if err != nil {
			return total, classify("expire listings", err)
		}
		m.flush(ctx, box)

		total += moved
		if moved < m.sweepBatch {
			break
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}

	if total > 0 {
		logger.LogMarket("Listings expired", slog.Int("count", total))
	}
	return total, nil
}

func (m *Manager) expireListing(ctx context.Context, tx Tx, listing *models.Listing, now time.Time, box *outbox) error {
	if err := listing.Transition(models.ListingExpired, now); err != nil {
		return transitionErr(err)
	}
	if err := tx.UpdateListing(ctx, listing); err != nil {
		return err
	}
	box.add(Event{
		Type:       EventListingExpired,
		CardID:     listing.CardID,
		ListingID:  listing.ID,
		ActorID:    listing.SellerID,
		OccurredAt: now,
	})
	return tx.InsertEvent(ctx, m.ledger(listing.ID, listing.CardID, listing.SellerID, models.EventExpired, nil, now))
}

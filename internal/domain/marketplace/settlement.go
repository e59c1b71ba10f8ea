package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
	"github.com/fantasyrun/runner-market/internal/logger"
)

type settleArgs struct {
	card     *models.Card
	listing  *models.Listing // nil for open bids
	bid      *models.Bid
	sellerID string
	txHash   string
	order    models.SignedOrder
}

// settle fills the bid, fulfils the listing, moves the card and closes out every
// competing bid and listing on it. All rows must already be locked by tx.
func (m *Manager) settle(ctx context.Context, tx Tx, args settleArgs, now time.Time, box *outbox) (*models.Settlement, error) {
	bid := args.bid
	if err := bid.Transition(models.BidFilled, now); err != nil {
		return nil, transitionErr(err)
	}
	bid.AcceptedAt = now
	if err := tx.UpdateBid(ctx, bid); err != nil {
		return nil, err
	}

	var listingID string
	if args.listing != nil {
		listingID = args.listing.ID
		if err := args.listing.Transition(models.ListingFulfilled, now); err != nil {
			return nil, transitionErr(err)
		}
		args.listing.BuyerID = bid.BidderID
		if err := tx.UpdateListing(ctx, args.listing); err != nil {
			return nil, err
		}
	}

	if err := transferCard(ctx, tx, args.card, bid.BidderID, now); err != nil {
		return nil, err
	}
	if err := invalidateCompetitors(ctx, tx, args.card.ID, bid.ID, now); err != nil {
		return nil, err
	}

	settlement := &models.Settlement{
		ID:        m.newID(),
		CardID:    args.card.ID,
		ListingID: listingID,
		BidID:     bid.ID,
		SellerID:  args.sellerID,
		BuyerID:   bid.BidderID,
		Price:     bid.BidAmount,
		TxHash:    args.txHash,
		Status:    models.SettlementConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := settlement.SetOrder(args.order); err != nil {
		return nil, validation("order cannot be stored: %v", err)
	}
	if err := tx.InsertSettlement(ctx, settlement); err != nil {
		return nil, err
	}
	if err := tx.InsertEvent(ctx, m.ledger(listingID, args.card.ID, bid.BidderID, models.EventSold, &bid.BidAmount, now)); err != nil {
		return nil, err
	}

	box.add(Event{
		Type:       EventCardSettled,
		CardID:     args.card.ID,
		ListingID:  listingID,
		BidID:      bid.ID,
		ActorID:    bid.BidderID,
		Amount:     bid.BidAmount.String(),
		TxHash:     args.txHash,
		OccurredAt: now,
	})
	return settlement, nil
}

func transferCard(ctx context.Context, tx Tx, card *models.Card, buyerID string, now time.Time) error {
	card.OwnerID = buyerID
	card.AcquisitionType = models.AcquisitionMarketplace
	card.UpdatedAt = now
	return tx.UpdateCard(ctx, card)
}

// invalidateCompetitors withdraws every pending bid on the card except keepBidID
// and deactivates any listing still active for it.
func invalidateCompetitors(ctx context.Context, tx Tx, cardID, keepBidID string, now time.Time) error {
	if err := withdrawBids(ctx, tx, tx.PendingBidsForCard, cardID, keepBidID, now); err != nil {
		return err
	}

	active, err := tx.ActiveListingsForCard(ctx, cardID)
	if err != nil {
		return err
	}
	for _, l := range active {
		if err := l.Transition(models.ListingInactive, now); err != nil {
			return transitionErr(err)
		}
		if err := tx.UpdateListing(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

func withdrawBids(ctx context.Context, tx Tx, fetch func(ctx context.Context, id string) ([]*models.Bid, error), id, keepBidID string, now time.Time) error {
	bids, err := fetch(ctx, id)
	if err != nil {
		return err
	}
	for _, b := range bids {
		if b.ID == keepBidID {
			continue
		}
		if err := b.Transition(models.BidWithdrawn, now); err != nil {
			return transitionErr(err)
		}
		if err := tx.UpdateBid(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

type orphanArgs struct {
	cardID    string
	listingID string
	bidID     string
	sellerID  string
	buyerID   string
	price     decimal.Decimal
	txHash    string
	order     models.SignedOrder
}

// orphan records a chain-final transfer whose local commit failed so the
// sweeper can replay it. Nothing is written when the transaction hash is already
// recorded by another settlement.
func (m *Manager) orphan(ctx context.Context, args orphanArgs, cause error) error {
	now := m.now()
	settlement := &models.Settlement{
		ID:        m.newID(),
		CardID:    args.cardID,
		ListingID: args.listingID,
		BidID:     args.bidID,
		SellerID:  args.sellerID,
		BuyerID:   args.buyerID,
		Price:     args.price,
		TxHash:    args.txHash,
		Status:    models.SettlementOrphaned,
		Reason:    cause.Error(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := settlement.SetOrder(args.order); err != nil {
		logger.LogError("Orphaned settlement order cannot be stored", err,
			slog.String("card_id", args.cardID),
			slog.String("bid_id", args.bidID),
			slog.String("tx_hash", args.txHash))
	}

	var recordedBy *models.Settlement
	err := m.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		recordedBy = nil
		existing, err := tx.SettlementsByTxHash(ctx, args.txHash)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			recordedBy = existing[0]
			return nil
		}
		return tx.InsertSettlement(ctx, settlement)
	})
	if err != nil {
		logger.LogError("Failed to record orphaned settlement", err,
			slog.String("card_id", args.cardID),
			slog.String("bid_id", args.bidID),
			slog.String("tx_hash", args.txHash),
			slog.String("cause", cause.Error()))
		return marketplaceErr("transfer completed on chain but could not be recorded", errors.Join(cause, err))
	}
	if recordedBy != nil {
		slog.Warn("Chain transfer already recorded, orphan skipped",
			slog.String("type", "mkt"),
			slog.String("settlement_id", recordedBy.ID),
			slog.String("status", string(recordedBy.Status)),
			slog.String("tx_hash", args.txHash),
			slog.Any("cause", cause))
		return classify("settle transfer", cause)
	}

	slog.Warn("Settlement orphaned after chain transfer",
		slog.String("type", "mkt"),
		slog.String("settlement_id", settlement.ID),
		slog.String("card_id", args.cardID),
		slog.String("tx_hash", args.txHash),
		slog.Any("cause", cause))
	return marketplaceErr("transfer completed on chain, local state will be reconciled", cause)
}

// ReconcileOrphans replays orphaned settlements against local state and returns
// how many were resolved.
func (m *Manager) ReconcileOrphans(ctx context.Context) (int, error) {
	orphans, err := m.repo.FindOrphanedSettlements(ctx, config.OrphanRetryLimit)
	if err != nil {
		return 0, classify("load orphaned settlements", err)
	}

	var errs []error
	resolved := 0
	for _, s := range orphans {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		ok, err := m.reconcile(ctx, s.ID)
		if err != nil {
			logger.LogError("Failed to reconcile settlement", err,
				slog.String("settlement_id", s.ID),
				slog.String("card_id", s.CardID))
			errs = append(errs, err)
			continue
		}
		if ok {
			resolved++
		}
	}

	if resolved > 0 {
		logger.LogMarket("Orphaned settlements reconciled", slog.Int("count", resolved))
	}
	if len(errs) > 0 {
		return resolved, classify("reconcile settlements", errors.Join(errs...))
	}
	return resolved, nil
}

func (m *Manager) reconcile(ctx context.Context, settlementID string) (bool, error) {
	now := m.now()
	resolved := false
	box := &outbox{}
	err := m.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		box.reset()
		resolved = false

		s, err := tx.LockSettlement(ctx, settlementID)
		if err != nil {
			return err
		}
		if s.Status != models.SettlementOrphaned {
			return nil
		}
		card, err := lockCard(ctx, tx, s.CardID)
		if err != nil {
			return err
		}

		switch {
		case card.OwnerID == s.BuyerID:
			// local state already caught up
		case card.OwnerID == s.SellerID && card.Transferable():
			if err := m.replay(ctx, tx, s, card, now, box); err != nil {
				return err
			}
		default:
			slog.Warn("Orphaned settlement needs manual review",
				slog.String("type", "mkt"),
				slog.String("settlement_id", s.ID),
				slog.String("card_id", card.ID),
				slog.String("owner_id", card.OwnerID))
			return nil
		}

		s.Status = models.SettlementReconciled
		s.UpdatedAt = now
		resolved = true
		return tx.UpdateSettlement(ctx, s)
	})
	if err != nil {
		return false, err
	}
	m.flush(ctx, box)
	return resolved, nil
}

// replay applies an orphaned transfer: the bid is filled (or recreated from the
// stored buy order), the listing fulfilled when still active, and the card moved.
func (m *Manager) replay(ctx context.Context, tx Tx, s *models.Settlement, card *models.Card, now time.Time, box *outbox) error {
	bid, err := tx.LockBid(ctx, s.BidID)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		bid, err = m.restoreBid(ctx, tx, s, now)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	case bid.Status != models.BidFilled:
		// a later write may have closed the bid; the chain result stands regardless
		if err := bid.ReconcileFill(now); err != nil {
			return transitionErr(err)
		}
		if err := tx.UpdateBid(ctx, bid); err != nil {
			return err
		}
	}

	if s.ListingID != "" {
		listing, err := tx.LockListing(ctx, s.ListingID)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		if listing != nil && listing.Status == models.ListingActive {
			if err := listing.Transition(models.ListingFulfilled, now); err != nil {
				return transitionErr(err)
			}
			listing.BuyerID = s.BuyerID
			if err := tx.UpdateListing(ctx, listing); err != nil {
				return err
			}
		}
	}

	if err := transferCard(ctx, tx, card, s.BuyerID, now); err != nil {
		return err
	}
	if err := invalidateCompetitors(ctx, tx, card.ID, bid.ID, now); err != nil {
		return err
	}
	if err := tx.InsertEvent(ctx, m.ledger(s.ListingID, card.ID, s.BuyerID, models.EventSold, &s.Price, now)); err != nil {
		return err
	}

	box.add(Event{
		Type:       EventCardSettled,
		CardID:     card.ID,
		ListingID:  s.ListingID,
		BidID:      bid.ID,
		ActorID:    s.BuyerID,
		Amount:     s.Price.String(),
		TxHash:     s.TxHash,
		OccurredAt: now,
	})
	return nil
}

func (m *Manager) restoreBid(ctx context.Context, tx Tx, s *models.Settlement, now time.Time) (*models.Bid, error) {
	order, err := s.SignedOrder()
	if err != nil {
		return nil, marketplaceErr("stored buy order is unreadable", err)
	}

	bid := &models.Bid{
		ID:             s.BidID,
		ListingID:      s.ListingID,
		CardID:         s.CardID,
		BidderID:       s.BuyerID,
		Price:          s.Price,
		BidAmount:      s.Price,
		BidType:        models.BidTypeOpen,
		Status:         models.BidFilled,
		ExpirationTime: order.Order.ExpiresAt(),
		AcceptedAt:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if s.ListingID != "" {
		bid.BidType = models.BidTypeListing
	}
	if order.Order.ExpirationTime == 0 {
		bid.ExpirationTime = now
	}
	if err := bid.SetOrder(order); err != nil {
		return nil, validation("order cannot be stored: %v", err)
	}
	if err := tx.InsertBid(ctx, bid); err != nil {
		return nil, err
	}
	return bid, nil
}

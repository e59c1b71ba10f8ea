package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
	"github.com/fantasyrun/runner-market/internal/logger"
)

// PlaceListingBid records a bid on an active listing. A bid at or above the ask
// is an immediate buy: the chain transfer runs first, then the bid and the
// settlement commit together.
func (m *Manager) PlaceListingBid(ctx context.Context, in ListingBidInput) (*BidResult, error) {
	now := m.now()
	if err := validatePrice("bid amount", in.Amount); err != nil {
		return nil, err
	}
	if err := validateOrder(in.Order, models.OrderSideBuy, in.Amount, now); err != nil {
		return nil, err
	}

	listing, err := m.repo.GetListing(ctx, in.ListingID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("listing %s not found", in.ListingID)
	}
	if err != nil {
		return nil, classify("load listing", err)
	}
	if err := checkListingBid(listing, in, now); err != nil {
		return nil, err
	}
	if err := m.verify(ctx, in.Order); err != nil {
		return nil, err
	}

	bid := &models.Bid{
		ID:             m.newID(),
		ListingID:      listing.ID,
		CardID:         listing.CardID,
		BidderID:       in.BidderID,
		Price:          in.Amount,
		BidAmount:      in.Amount,
		BidType:        models.BidTypeListing,
		Status:         models.BidTopBid,
		ExpirationTime: listing.ExpirationTime,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.Order.Order.ExpirationTime > 0 && in.Order.Order.ExpiresAt().Before(bid.ExpirationTime) {
		bid.ExpirationTime = in.Order.Order.ExpiresAt()
	}
	if err := bid.SetOrder(in.Order); err != nil {
		return nil, validation("order cannot be stored: %v", err)
	}

	settles := in.Amount.GreaterThanOrEqual(listing.Price)
	var txHash string
	if settles {
		txHash, err = m.executeTransfer(ctx, listing, in)
		if err != nil {
			return nil, err
		}
	}

	result := &BidResult{Bid: bid}
	box := &outbox{}
	err = m.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		box.reset()
		result.Settlement = nil
		// the chain call may have taken a while; expiry is judged at commit time
		now = m.now()
		bid.UpdatedAt = now

		card, err := lockCard(ctx, tx, listing.CardID)
		if err != nil {
			return err
		}
		locked, err := lockListing(ctx, tx, listing.ID)
		if err != nil {
			return err
		}
		if err := checkListingBid(locked, in, now); err != nil {
			return err
		}
		if !card.Transferable() || card.OwnerID != locked.SellerID {
			return notFound("listing %s is no longer valid", locked.ID)
		}

		pending, err := tx.PendingBidsForListing(ctx, locked.ID)
		if err != nil {
			return err
		}
		for _, prev := range pending {
			if !prev.Status.Live() {
				continue
			}
			if err := prev.Transition(models.BidOutbid, now); err != nil {
				return transitionErr(err)
			}
			if err := tx.UpdateBid(ctx, prev); err != nil {
				return err
			}
		}

		if err := tx.InsertBid(ctx, bid); err != nil {
			return err
		}
		locked.HighestBid.Decimal = bid.BidAmount
		locked.HighestBid.Valid = true
		locked.HighestBidderID = bid.BidderID
		locked.UpdatedAt = now
		if err := tx.UpdateListing(ctx, locked); err != nil {
			return err
		}
		if err := tx.InsertEvent(ctx, m.ledger(locked.ID, card.ID, bid.BidderID, models.EventBid, &bid.BidAmount, now)); err != nil {
			return err
		}
		box.add(Event{
			Type:       EventBidPlaced,
			CardID:     card.ID,
			ListingID:  locked.ID,
			BidID:      bid.ID,
			ActorID:    bid.BidderID,
			Amount:     bid.BidAmount.String(),
			OccurredAt: now,
		})

		if !settles {
			return nil
		}
		settlement, err := m.settle(ctx, tx, settleArgs{
			card:     card,
			listing:  locked,
			bid:      bid,
			sellerID: locked.SellerID,
			txHash:   txHash,
			order:    in.Order,
		}, now, box)
		if err != nil {
			return err
		}
		result.Settlement = settlement
		return nil
	})
	if err != nil {
		if txHash != "" {
			return nil, m.orphan(ctx, orphanArgs{
				cardID:    listing.CardID,
				listingID: listing.ID,
				bidID:     bid.ID,
				sellerID:  listing.SellerID,
				buyerID:   in.BidderID,
				price:     in.Amount,
				txHash:    txHash,
				order:     in.Order,
			}, err)
		}
		return nil, classify("place listing bid", err)
	}

	m.flush(ctx, box)
	logger.LogMarket("Listing bid placed",
		slog.String("bid_id", bid.ID),
		slog.String("listing_id", listing.ID),
		slog.String("bidder_id", in.BidderID),
		slog.String("amount", in.Amount.String()),
		slog.Bool("settled", result.Settled()))
	return result, nil
}

func checkListingBid(listing *models.Listing, in ListingBidInput, now time.Time) error {
	if !listing.Open(now) {
		return notFound("listing %s is not active", listing.ID)
	}
	if listing.SellerID == in.BidderID {
		return newError(KindPermission, "sellers cannot bid on their own listing")
	}
	if listing.HighestBid.Valid && in.Amount.LessThanOrEqual(listing.HighestBid.Decimal) {
		return &Error{Kind: KindBidTooLow, Message: "bid must exceed the current highest bid of " + listing.HighestBid.Decimal.String()}
	}
	return nil
}

func (m *Manager) executeTransfer(ctx context.Context, listing *models.Listing, in ListingBidInput) (string, error) {
	sell, err := listing.SignedOrder()
	if err != nil {
		return "", marketplaceErr("stored sell order is unreadable", err)
	}
	card, err := m.loadCard(ctx, listing.CardID)
	if err != nil {
		return "", err
	}

	txHash, err := m.verifier.ExecuteTransfer(ctx, TransferRequest{
		Sell:     sell,
		Buy:      in.Order,
		TokenID:  card.TokenID,
		SellerID: listing.SellerID,
		BuyerID:  in.BidderID,
		Price:    in.Amount,
	})
	if err != nil {
		return "", marketplaceErr("chain transfer failed", err)
	}
	if txHash == "" {
		return "", marketplaceErr("chain transfer returned no transaction hash", nil)
	}
	return txHash, nil
}

func (m *Manager) PlaceOpenBid(ctx context.Context, in OpenBidInput) (*models.Bid, error) {
	now := m.now()
	if err := validatePrice("bid amount", in.Amount); err != nil {
		return nil, err
	}
	if !in.ExpirationTime.After(now) {
		return nil, validation("expiration time must be in the future")
	}
	if err := validateOrder(in.Order, models.OrderSideBuy, in.Amount, now); err != nil {
		return nil, err
	}

	card, err := m.loadCard(ctx, in.CardID)
	if err != nil {
		return nil, err
	}
	if err := checkOpenBidCard(card, in.BidderID); err != nil {
		return nil, err
	}
	if err := m.verify(ctx, in.Order); err != nil {
		return nil, err
	}

	bid := &models.Bid{
		ID:             m.newID(),
		CardID:         in.CardID,
		BidderID:       in.BidderID,
		Price:          in.Amount,
		BidAmount:      in.Amount,
		BidType:        models.BidTypeOpen,
		Status:         models.BidActive,
		ExpirationTime: in.ExpirationTime,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := bid.SetOrder(in.Order); err != nil {
		return nil, validation("order cannot be stored: %v", err)
	}

	box := &outbox{}
	err = m.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		box.reset()
		card, err := lockCard(ctx, tx, in.CardID)
		if err != nil {
			return err
		}
		if err := checkOpenBidCard(card, in.BidderID); err != nil {
			return err
		}

		active, err := tx.ActiveListingsForCard(ctx, card.ID)
		if err != nil {
			return err
		}
		for _, l := range active {
			if l.Open(now) {
				return &Error{Kind: KindCardCurrentlyListed, Message: "card has an active listing, bid on the listing instead"}
			}
		}

		if err := tx.InsertBid(ctx, bid); err != nil {
			return err
		}
		box.add(Event{
			Type:       EventBidPlaced,
			CardID:     card.ID,
			BidID:      bid.ID,
			ActorID:    bid.BidderID,
			Amount:     bid.BidAmount.String(),
			OccurredAt: now,
		})
		return tx.InsertEvent(ctx, m.ledger("", card.ID, bid.BidderID, models.EventBid, &bid.BidAmount, now))
	})
	if err != nil {
		return nil, classify("place open bid", err)
	}

	m.flush(ctx, box)
	logger.LogMarket("Open bid placed",
		slog.String("bid_id", bid.ID),
		slog.String("card_id", in.CardID),
		slog.String("bidder_id", in.BidderID),
		slog.String("amount", in.Amount.String()))
	return bid, nil
}

func checkOpenBidCard(card *models.Card, bidderID string) error {
	if !card.Transferable() {
		return notFound("card %s not found", card.ID)
	}
	if card.OwnerID == bidderID {
		return newError(KindPermission, "cannot bid on a card you own")
	}
	return nil
}

// AcceptOpenBid fills an open bid chosen by the card owner. txHash must be the
// chain transaction that performed the transfer; it is confirmed before any local write.
func (m *Manager) AcceptOpenBid(ctx context.Context, bidID, sellerID, txHash string) (*models.Settlement, error) {
	now := m.now()
	if txHash == "" {
		return nil, validation("transaction hash is required")
	}

	bid, err := m.repo.GetBid(ctx, bidID)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, notFound("bid %s not found", bidID)
	}
	if err != nil {
		return nil, classify("load bid", err)
	}
	if err := checkAcceptable(bid, now); err != nil {
		return nil, err
	}
	card, err := m.loadCard(ctx, bid.CardID)
	if err != nil {
		return nil, err
	}
	if card.OwnerID != sellerID || card.Burned {
		return nil, notOwned(card.ID, sellerID)
	}

	order, err := bid.SignedOrder()
	if err != nil {
		return nil, marketplaceErr("stored buy order is unreadable", err)
	}
	confirmed, err := m.verifier.ConfirmTransfer(ctx, order, txHash)
	if err != nil {
		return nil, marketplaceErr("transfer confirmation failed", err)
	}
	if !confirmed {
		return nil, validation("transaction %s does not confirm this transfer", txHash)
	}

	var settlement *models.Settlement
	box := &outbox{}
	err = m.repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		box.reset()
		now = m.now()

		card, err := lockCard(ctx, tx, bid.CardID)
		if err != nil {
			return err
		}
		locked, err := lockBid(ctx, tx, bidID)
		if err != nil {
			return err
		}
		if err := checkAcceptable(locked, now); err != nil {
			return err
		}
		if card.OwnerID != sellerID || card.Burned {
			return notOwned(card.ID, sellerID)
		}

		settlement, err = m.settle(ctx, tx, settleArgs{
			card:     card,
			bid:      locked,
			sellerID: sellerID,
			txHash:   txHash,
			order:    order,
		}, now, box)
		if err != nil {
			return err
		}
		box.add(Event{
			Type:       EventBidAccepted,
			CardID:     card.ID,
			BidID:      locked.ID,
			ActorID:    sellerID,
			Amount:     locked.BidAmount.String(),
			TxHash:     txHash,
			OccurredAt: now,
		})
		return nil
	})
	if rejected(err) {
		// the seller ran the chain transaction, so a refused accept records nothing
		return nil, err
	}
	if err != nil {
		return nil, m.orphan(ctx, orphanArgs{
			cardID:   bid.CardID,
			bidID:    bid.ID,
			sellerID: sellerID,
			buyerID:  bid.BidderID,
			price:    bid.BidAmount,
			txHash:   txHash,
			order:    order,
		}, err)
	}

	m.flush(ctx, box)
	logger.LogMarket("Open bid accepted",
		slog.String("bid_id", bidID),
		slog.String("card_id", bid.CardID),
		slog.String("seller_id", sellerID),
		slog.String("buyer_id", bid.BidderID),
		slog.String("tx_hash", txHash))
	return settlement, nil
}

func checkAcceptable(bid *models.Bid, now time.Time) error {
	if bid.BidType != models.BidTypeOpen || bid.Status != models.BidActive || !bid.ExpirationTime.After(now) {
		return notFound("no active open bid %s", bid.ID)
	}
	return nil
}

func (m *Manager) GetOpenBidsForCard(ctx context.Context, cardID string) ([]*models.Bid, error) {
	now := m.now()
	bids, err := m.repo.FindOpenBidsForCard(ctx, cardID, now)
	if err != nil {
		return nil, classify("load open bids", err)
	}

	open := make([]*models.Bid, 0, len(bids))
	for _, b := range bids {
		if b.BidType == models.BidTypeOpen && b.Open(now) {
			open = append(open, b)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].BidAmount.GreaterThan(open[j].BidAmount)
	})
	return open, nil
}

func (m *Manager) GetAllUserBids(ctx context.Context, userID string) ([]*models.Bid, error) {
	now := m.now()
	bids, err := m.repo.FindUserBids(ctx, userID, now)
	if err != nil {
		return nil, classify("load user bids", err)
	}

	out := make([]*models.Bid, 0, len(bids))
	for _, b := range bids {
		if b.ExpirationTime.After(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

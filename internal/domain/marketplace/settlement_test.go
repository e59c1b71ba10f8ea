package marketplace_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

var errDiskFull = errors.New("could not extend file: no space left on device")

func TestListingSettlementOrphanedAndReconciled(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.acceptOrders()
	seller := h.user("seller")
	buyer := h.user("buyer")
	rival := h.user("rival")
	card := h.card(seller, "Haile Gebrselassie", models.RarityOpal)
	listing := h.list(card.ID, seller, 10, time.Hour)
	rivalBid, err := h.listingBid(listing.ID, rival, 4)
	require.NoError(t, err)

	h.verifier.EXPECT().ExecuteTransfer(gomock.Any(), gomock.Any()).Return("0xchain", nil)
	h.store.setFailConfirmed(errDiskFull)

	_, err = h.listingBid(listing.ID, buyer, 12)
	require.ErrorIs(t, err, marketplace.ErrMarketplace)
	require.ErrorIs(t, err, errDiskFull)

	// the failed commit left nothing behind except the orphan record
	assert.Equal(t, seller, h.store.card(card.ID).OwnerID)
	assert.Equal(t, models.ListingActive, h.store.listing(listing.ID).Status)
	assert.Len(t, h.store.bidsForCard(card.ID), 1)
	settlements := h.store.settlementsFor(card.ID)
	require.Len(t, settlements, 1)
	orphan := settlements[0]
	assert.Equal(t, models.SettlementOrphaned, orphan.Status)
	assert.Equal(t, "0xchain", orphan.TxHash)
	assert.Equal(t, listing.ID, orphan.ListingID)
	assert.Equal(t, buyer, orphan.BuyerID)
	assert.Contains(t, orphan.Reason, "no space left")
	assert.NotEmpty(t, orphan.OrderData)
	assert.Equal(t, "0xsig-"+buyer, orphan.Signature)

	h.store.setFailConfirmed(nil)
	n, err := h.manager.ReconcileOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, buyer, h.store.card(card.ID).OwnerID)
	fulfilled := h.store.listing(listing.ID)
	assert.Equal(t, models.ListingFulfilled, fulfilled.Status)
	assert.Equal(t, buyer, fulfilled.BuyerID)

	restored := h.store.bid(orphan.BidID)
	assert.Equal(t, models.BidFilled, restored.Status)
	assert.Equal(t, models.BidTypeListing, restored.BidType)
	assert.Equal(t, buyer, restored.BidderID)
	assert.Equal(t, models.BidWithdrawn, h.store.bid(rivalBid.Bid.ID).Status)
	assert.Equal(t, models.SettlementReconciled, h.store.settlementsFor(card.ID)[0].Status)

	n, err = h.manager.ReconcileOrphans(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenBidSettlementOrphanedAndReconciled(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.acceptOrders()
	owner := h.user("owner")
	buyer := h.user("buyer")
	other := h.user("other")
	card := h.card(owner, "Derartu Tulu", models.RaritySilver)

	bid, err := h.openBid(card.ID, buyer, 5, time.Hour)
	require.NoError(t, err)
	competing, err := h.openBid(card.ID, other, 9, time.Hour)
	require.NoError(t, err)

	h.verifier.EXPECT().ConfirmTransfer(gomock.Any(), gomock.Any(), "0xopen").Return(true, nil)
	h.store.setFailConfirmed(errDiskFull)

	_, err = h.manager.AcceptOpenBid(ctx, bid.ID, owner, "0xopen")
	require.ErrorIs(t, err, marketplace.ErrMarketplace)
	assert.Equal(t, owner, h.store.card(card.ID).OwnerID)
	assert.Equal(t, models.BidActive, h.store.bid(bid.ID).Status)

	h.store.setFailConfirmed(nil)
	n, err := h.manager.ReconcileOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, buyer, h.store.card(card.ID).OwnerID)
	assert.Equal(t, models.BidFilled, h.store.bid(bid.ID).Status)
	assert.Equal(t, models.BidWithdrawn, h.store.bid(competing.ID).Status)
}

func TestReconcileSkipsDivergedCards(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.acceptOrders()
	owner := h.user("owner")
	buyer := h.user("buyer")
	third := h.user("third")

	caughtUp := h.card(owner, "Abebe Bikila", models.RarityBronze)
	diverged := h.card(owner, "Mamo Wolde", models.RarityBronze)
	first, err := h.openBid(caughtUp.ID, buyer, 5, time.Hour)
	require.NoError(t, err)
	second, err := h.openBid(diverged.ID, buyer, 5, time.Hour)
	require.NoError(t, err)

	h.verifier.EXPECT().ConfirmTransfer(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(2)
	h.store.setFailConfirmed(errDiskFull)
	_, err = h.manager.AcceptOpenBid(ctx, first.ID, owner, "0x1")
	require.Error(t, err)
	_, err = h.manager.AcceptOpenBid(ctx, second.ID, owner, "0x2")
	require.Error(t, err)
	h.store.setFailConfirmed(nil)

	h.store.mu.Lock()
	h.store.cards[caughtUp.ID].OwnerID = buyer
	h.store.cards[diverged.ID].OwnerID = third
	h.store.mu.Unlock()

	n, err := h.manager.ReconcileOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, models.SettlementReconciled, h.store.settlementsFor(caughtUp.ID)[0].Status)
	assert.Equal(t, models.SettlementOrphaned, h.store.settlementsFor(diverged.ID)[0].Status)
	assert.Equal(t, third, h.store.card(diverged.ID).OwnerID)
	assert.Equal(t, models.BidActive, h.store.bid(second.ID).Status)
}

func TestSettlementRollsBackOnFailure(t *testing.T) {
	h := newHarness(t)
	h.acceptOrders()
	seller := h.user("seller")
	buyer := h.user("buyer")
	card := h.card(seller, "Paul Tergat", models.RarityGold)
	listing := h.list(card.ID, seller, 10, time.Hour)

	h.verifier.EXPECT().ExecuteTransfer(gomock.Any(), gomock.Any()).Return("0x1", nil)
	h.store.setFailConfirmed(errDiskFull)
	before := len(h.store.eventsFor(card.ID))

	_, err := h.listingBid(listing.ID, buyer, 10)
	require.Error(t, err)
	assert.Equal(t, marketplace.KindMarketplace, marketplace.KindOf(err))

	stored := h.store.listing(listing.ID)
	assert.False(t, stored.HighestBid.Valid)
	assert.Empty(t, stored.BuyerID)
	assert.Len(t, h.store.eventsFor(card.ID), before)
}

func TestAcceptOpenBidExpiresDuringConfirmation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.acceptOrders()
	owner := h.user("owner")
	bidder := h.user("bidder")
	card := h.card(owner, "Faith Kipyegon", models.RarityRuby)
	bid, err := h.openBid(card.ID, bidder, 5, time.Minute)
	require.NoError(t, err)

	h.verifier.EXPECT().ConfirmTransfer(gomock.Any(), gomock.Any(), "0xslow").
		DoAndReturn(func(context.Context, models.SignedOrder, string) (bool, error) {
			h.advance(2 * time.Minute)
			return true, nil
		})

	_, err = h.manager.AcceptOpenBid(ctx, bid.ID, owner, "0xslow")
	require.ErrorIs(t, err, marketplace.ErrNotFound)

	assert.Equal(t, owner, h.store.card(card.ID).OwnerID)
	assert.Equal(t, models.BidActive, h.store.bid(bid.ID).Status)
	assert.Empty(t, h.store.settlementsFor(card.ID))
}

func TestListingBidAtAskExpiresDuringTransfer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.acceptOrders()
	seller := h.user("seller")
	buyer := h.user("buyer")
	card := h.card(seller, "Sifan Hassan", models.RarityGold)
	listing := h.list(card.ID, seller, 10, time.Minute)

	h.verifier.EXPECT().ExecuteTransfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, marketplace.TransferRequest) (string, error) {
			h.advance(2 * time.Minute)
			return "0xlate", nil
		})

	_, err := h.listingBid(listing.ID, buyer, 10)
	require.ErrorIs(t, err, marketplace.ErrMarketplace)

	// the lapsed listing is not settled locally, the chain transfer is kept as an orphan
	assert.Equal(t, seller, h.store.card(card.ID).OwnerID)
	assert.Equal(t, models.ListingActive, h.store.listing(listing.ID).Status)
	assert.Empty(t, h.store.bidsForCard(card.ID))
	settlements := h.store.settlementsFor(card.ID)
	require.Len(t, settlements, 1)
	assert.Equal(t, models.SettlementOrphaned, settlements[0].Status)
	assert.Equal(t, "0xlate", settlements[0].TxHash)

	n, err := h.manager.ReconcileOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, buyer, h.store.card(card.ID).OwnerID)
	assert.Equal(t, models.ListingFulfilled, h.store.listing(listing.ID).Status)
}

func TestConcurrentAcceptOpenBid(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.acceptOrders()
	owner := h.user("owner")
	bidder := h.user("bidder")
	card := h.card(owner, "Brigid Kosgei", models.RaritySapphire)
	bid, err := h.openBid(card.ID, bidder, 5, time.Hour)
	require.NoError(t, err)

	// both callers pass the pre-checks before either one commits
	var arrived sync.WaitGroup
	arrived.Add(2)
	h.verifier.EXPECT().ConfirmTransfer(gomock.Any(), gomock.Any(), "0xsame").
		DoAndReturn(func(context.Context, models.SignedOrder, string) (bool, error) {
			arrived.Done()
			arrived.Wait()
			return true, nil
		}).Times(2)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.manager.AcceptOpenBid(ctx, bid.ID, owner, "0xsame")
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, marketplace.ErrNotFound):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	settlements := h.store.settlementsFor(card.ID)
	require.Len(t, settlements, 1)
	assert.Equal(t, models.SettlementConfirmed, settlements[0].Status)
	assert.Equal(t, bidder, h.store.card(card.ID).OwnerID)
}

func TestOrphanSkippedWhenTxHashRecorded(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.acceptOrders()
	owner := h.user("owner")
	bidder := h.user("bidder")
	first := h.card(owner, "Kelvin Kiptum", models.RarityBronze)
	second := h.card(owner, "Tamirat Tola", models.RarityBronze)
	firstBid, err := h.openBid(first.ID, bidder, 5, time.Hour)
	require.NoError(t, err)
	secondBid, err := h.openBid(second.ID, bidder, 5, time.Hour)
	require.NoError(t, err)

	h.verifier.EXPECT().ConfirmTransfer(gomock.Any(), gomock.Any(), "0xonce").Return(true, nil).Times(2)
	_, err = h.manager.AcceptOpenBid(ctx, firstBid.ID, owner, "0xonce")
	require.NoError(t, err)

	h.store.setFailConfirmed(errDiskFull)
	_, err = h.manager.AcceptOpenBid(ctx, secondBid.ID, owner, "0xonce")
	require.ErrorIs(t, err, marketplace.ErrDatabase)
	require.ErrorIs(t, err, errDiskFull)

	assert.Empty(t, h.store.settlementsFor(second.ID))
	assert.Len(t, h.store.settlementsFor(first.ID), 1)
}

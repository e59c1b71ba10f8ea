package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

var (
	// ErrRecordNotFound is returned by lookups that match no row.
	ErrRecordNotFound = errors.New("record not found")
	// ErrActiveListingExists is returned when the one-active-listing-per-card index rejects a write.
	ErrActiveListingExists = errors.New("active listing already exists for card")
	// ErrConflict is returned for any other uniqueness violation.
	ErrConflict = errors.New("conflicting record")
)

// Repository is the storage the engine runs against. Reads take no locks and
// may be slightly stale. Every decision that matters is re-made inside RunInTx.
type Repository interface {
	// RunInTx runs fn in a single read-committed transaction. Any error rolls it back.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetCard(ctx context.Context, cardID string) (*models.Card, error)
	GetListing(ctx context.Context, listingID string) (*models.Listing, error)
	GetBid(ctx context.Context, bidID string) (*models.Bid, error)

	// FindListings returns active listings expiring after now, with Card.Metadata loaded.
	FindListings(ctx context.Context, filter ListingFilter, now time.Time) ([]*models.Listing, error)
	// FindOpenBidsForCard returns live open bids expiring after now, with Bidder loaded.
	FindOpenBidsForCard(ctx context.Context, cardID string, now time.Time) ([]*models.Bid, error)
	// FindUserBids returns the user's bids expiring after now with card, metadata, owner and listing loaded.
	FindUserBids(ctx context.Context, userID string, now time.Time) ([]*models.Bid, error)
	FindOrphanedSettlements(ctx context.Context, limit int) ([]*models.Settlement, error)
}

// Tx is the locked view used by mutating operations. Lock the card row first,
// then listing and bid rows, so writers on one card always queue in the same order.
type Tx interface {
	LockCard(ctx context.Context, cardID string) (*models.Card, error)
	LockListing(ctx context.Context, listingID string) (*models.Listing, error)
	LockBid(ctx context.Context, bidID string) (*models.Bid, error)
	LockSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	// SettlementsByTxHash returns every settlement recorded for a chain transaction.
	SettlementsByTxHash(ctx context.Context, txHash string) ([]*models.Settlement, error)

	// ActiveListingsForCard returns every listing in status active, expired or not.
	ActiveListingsForCard(ctx context.Context, cardID string) ([]*models.Listing, error)
	// PendingBidsForCard returns bids in status active, topbid or outbid.
	PendingBidsForCard(ctx context.Context, cardID string) ([]*models.Bid, error)
	// PendingBidsForListing returns bids in status active, topbid or outbid.
	PendingBidsForListing(ctx context.Context, listingID string) ([]*models.Bid, error)
	// ExpirableListings locks up to limit active listings whose expiration is at or before now,
	// skipping rows another transaction holds.
	ExpirableListings(ctx context.Context, now time.Time, limit int) ([]*models.Listing, error)

	InsertListing(ctx context.Context, listing *models.Listing) error
	UpdateListing(ctx context.Context, listing *models.Listing) error
	InsertBid(ctx context.Context, bid *models.Bid) error
	UpdateBid(ctx context.Context, bid *models.Bid) error
	UpdateCard(ctx context.Context, card *models.Card) error
	InsertEvent(ctx context.Context, event *models.ListingEvent) error
	InsertSettlement(ctx context.Context, settlement *models.Settlement) error
	UpdateSettlement(ctx context.Context, settlement *models.Settlement) error
}

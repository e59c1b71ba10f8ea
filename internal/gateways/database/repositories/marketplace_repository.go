package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

var pendingBidStatuses = []models.BidStatus{models.BidActive, models.BidTopBid, models.BidOutbid}

type marketplaceRepository struct {
	db *bun.DB
}

var _ marketplace.Repository = (*marketplaceRepository)(nil)

func NewMarketplaceRepository(db *bun.DB) *marketplaceRepository {
	return &marketplaceRepository{db: db}
}

func (r *marketplaceRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx marketplace.Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return r.db.RunInTx(ctx, opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &marketplaceTx{tx: tx})
	})
}

func (r *marketplaceRepository) GetCard(ctx context.Context, cardID string) (*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Relation("Metadata").
		Where("c.id = ?", cardID).
		Scan(ctx)
	if err != nil {
		return nil, wrap("get card", err)
	}
	return card, nil
}

func (r *marketplaceRepository) GetListing(ctx context.Context, listingID string) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	listing := new(models.Listing)
	err := r.db.NewSelect().
		Model(listing).
		Where("l.id = ?", listingID).
		Scan(ctx)
	if err != nil {
		return nil, wrap("get listing", err)
	}
	return listing, nil
}

func (r *marketplaceRepository) GetBid(ctx context.Context, bidID string) (*models.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	bid := new(models.Bid)
	err := r.db.NewSelect().
		Model(bid).
		Where("b.id = ?", bidID).
		Scan(ctx)
	if err != nil {
		return nil, wrap("get bid", err)
	}
	return bid, nil
}

// listingsQuery builds the public listing search. Paging is skipped when Limit is zero.
func listingsQuery(db bun.IDB, listings *[]*models.Listing, filter marketplace.ListingFilter, now time.Time) *bun.SelectQuery {
	q := db.NewSelect().
		Model(listings).
		Relation("Card").
		Relation("Card.Metadata").
		Where("l.status = ?", models.ListingActive).
		Where("l.expiration_time > ?", now)

	if filter.MinPrice.Valid {
		q = q.Where("l.price >= ?", filter.MinPrice.Decimal)
	}
	if filter.MaxPrice.Valid {
		q = q.Where("l.price <= ?", filter.MaxPrice.Decimal)
	}
	if len(filter.Rarities) > 0 {
		q = q.Where("card__metadata.rarity IN (?)", bun.In(filter.Rarities))
	}

	switch filter.Sort {
	case marketplace.SortPriceAsc:
		q = q.Order("l.price ASC", "l.created_at DESC")
	case marketplace.SortPriceDesc:
		q = q.Order("l.price DESC", "l.created_at DESC")
	default:
		q = q.Order("l.created_at DESC")
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	return q
}

func (r *marketplaceRepository) FindListings(ctx context.Context, filter marketplace.ListingFilter, now time.Time) ([]*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var listings []*models.Listing
	if err := listingsQuery(r.db, &listings, filter, now).Scan(ctx); err != nil {
		return nil, wrap("find listings", err)
	}
	return listings, nil
}

func (r *marketplaceRepository) FindOpenBidsForCard(ctx context.Context, cardID string, now time.Time) ([]*models.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var bids []*models.Bid
	err := r.db.NewSelect().
		Model(&bids).
		Relation("Bidder").
		Where("b.card_id = ?", cardID).
		Where("b.bid_type = ?", models.BidTypeOpen).
		Where("b.status = ?", models.BidActive).
		Where("b.expiration_time > ?", now).
		Order("b.bid_amount DESC", "b.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrap("find open bids", err)
	}
	return bids, nil
}

func (r *marketplaceRepository) FindUserBids(ctx context.Context, userID string, now time.Time) ([]*models.Bid, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var bids []*models.Bid
	err := r.db.NewSelect().
		Model(&bids).
		Relation("Card").
		Relation("Card.Metadata").
		Relation("Card.Owner").
		Relation("Listing").
		Where("b.bidder_id = ?", userID).
		Where("b.expiration_time > ?", now).
		Order("b.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, wrap("find user bids", err)
	}
	return bids, nil
}

func (r *marketplaceRepository) FindOrphanedSettlements(ctx context.Context, limit int) ([]*models.Settlement, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	var settlements []*models.Settlement
	err := r.db.NewSelect().
		Model(&settlements).
		Where("s.status = ?", models.SettlementOrphaned).
		Order("s.created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, wrap("find orphaned settlements", err)
	}
	return settlements, nil
}

// marketplaceTx locks rows with SELECT ... FOR UPDATE inside one bun transaction.
type marketplaceTx struct {
	tx bun.Tx
}

var _ marketplace.Tx = (*marketplaceTx)(nil)

func (t *marketplaceTx) LockCard(ctx context.Context, cardID string) (*models.Card, error) {
	card := new(models.Card)
	err := t.tx.NewSelect().
		Model(card).
		Where("c.id = ?", cardID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, wrap("lock card", err)
	}
	return card, nil
}

func (t *marketplaceTx) LockListing(ctx context.Context, listingID string) (*models.Listing, error) {
	listing := new(models.Listing)
	err := t.tx.NewSelect().
		Model(listing).
		Where("l.id = ?", listingID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, wrap("lock listing", err)
	}
	return listing, nil
}

func (t *marketplaceTx) LockBid(ctx context.Context, bidID string) (*models.Bid, error) {
	bid := new(models.Bid)
	err := t.tx.NewSelect().
		Model(bid).
		Where("b.id = ?", bidID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, wrap("lock bid", err)
	}
	return bid, nil
}

func (t *marketplaceTx) LockSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement := new(models.Settlement)
	err := t.tx.NewSelect().
		Model(settlement).
		Where("s.id = ?", settlementID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, wrap("lock settlement", err)
	}
	return settlement, nil
}

func (t *marketplaceTx) SettlementsByTxHash(ctx context.Context, txHash string) ([]*models.Settlement, error) {
	var settlements []*models.Settlement
	err := t.tx.NewSelect().
		Model(&settlements).
		Where("s.tx_hash = ?", txHash).
		Order("s.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, wrap("find settlements by tx hash", err)
	}
	return settlements, nil
}

func (t *marketplaceTx) ActiveListingsForCard(ctx context.Context, cardID string) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := t.tx.NewSelect().
		Model(&listings).
		Where("l.card_id = ?", cardID).
		Where("l.status = ?", models.ListingActive).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, wrap("load active listings", err)
	}
	return listings, nil
}

func (t *marketplaceTx) PendingBidsForCard(ctx context.Context, cardID string) ([]*models.Bid, error) {
	return t.pendingBids(ctx, "b.card_id = ?", cardID)
}

func (t *marketplaceTx) PendingBidsForListing(ctx context.Context, listingID string) ([]*models.Bid, error) {
	return t.pendingBids(ctx, "b.listing_id = ?", listingID)
}

func (t *marketplaceTx) pendingBids(ctx context.Context, where string, id string) ([]*models.Bid, error) {
	var bids []*models.Bid
	err := t.tx.NewSelect().
		Model(&bids).
		Where(where, id).
		Where("b.status IN (?)", bun.In(pendingBidStatuses)).
		Order("b.created_at ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, wrap("load pending bids", err)
	}
	return bids, nil
}

func expirableQuery(db bun.IDB, listings *[]*models.Listing, now time.Time, limit int) *bun.SelectQuery {
	return db.NewSelect().
		Model(listings).
		Where("l.status = ?", models.ListingActive).
		Where("l.expiration_time <= ?", now).
		Order("l.expiration_time ASC").
		Limit(limit).
		For("UPDATE SKIP LOCKED")
}

func (t *marketplaceTx) ExpirableListings(ctx context.Context, now time.Time, limit int) ([]*models.Listing, error) {
	var listings []*models.Listing
	if err := expirableQuery(t.tx, &listings, now, limit).Scan(ctx); err != nil {
		return nil, wrap("load expirable listings", err)
	}
	return listings, nil
}

func (t *marketplaceTx) InsertListing(ctx context.Context, listing *models.Listing) error {
	_, err := t.tx.NewInsert().Model(listing).Exec(ctx)
	return wrap("insert listing", err)
}

func (t *marketplaceTx) UpdateListing(ctx context.Context, listing *models.Listing) error {
	res, err := t.tx.NewUpdate().
		Model(listing).
		Column("buyer_id", "highest_bid", "highest_bidder_id", "status", "updated_at").
		WherePK().
		Exec(ctx)
	return affectedOne("update listing", res, err)
}

func (t *marketplaceTx) InsertBid(ctx context.Context, bid *models.Bid) error {
	_, err := t.tx.NewInsert().Model(bid).Exec(ctx)
	return wrap("insert bid", err)
}

func (t *marketplaceTx) UpdateBid(ctx context.Context, bid *models.Bid) error {
	res, err := t.tx.NewUpdate().
		Model(bid).
		Column("status", "accepted_at", "updated_at").
		WherePK().
		Exec(ctx)
	return affectedOne("update bid", res, err)
}

func (t *marketplaceTx) UpdateCard(ctx context.Context, card *models.Card) error {
	res, err := t.tx.NewUpdate().
		Model(card).
		Column("owner_id", "acquisition_type", "updated_at").
		WherePK().
		Exec(ctx)
	return affectedOne("update card", res, err)
}

func (t *marketplaceTx) InsertEvent(ctx context.Context, event *models.ListingEvent) error {
	_, err := t.tx.NewInsert().Model(event).Exec(ctx)
	return wrap("insert listing event", err)
}

func (t *marketplaceTx) InsertSettlement(ctx context.Context, settlement *models.Settlement) error {
	_, err := t.tx.NewInsert().Model(settlement).Exec(ctx)
	return wrap("insert settlement", err)
}

func (t *marketplaceTx) UpdateSettlement(ctx context.Context, settlement *models.Settlement) error {
	res, err := t.tx.NewUpdate().
		Model(settlement).
		Column("status", "reason", "updated_at").
		WherePK().
		Exec(ctx)
	return affectedOne("update settlement", res, err)
}

// affectedOne treats an update that touched no row as a missing record.
func affectedOne(op string, res sql.Result, err error) error {
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n != 1 {
		return fmt.Errorf("failed to %s: %w", op, marketplace.ErrRecordNotFound)
	}
	return nil
}

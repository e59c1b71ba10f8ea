package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

// TokenIDSequence hands out on-chain token ids at mint time.
const TokenIDSequence = "card_token_id_seq"

type tableSpec struct {
	model       interface{}
	foreignKeys []string
}

// tables are listed parents first so foreign keys resolve.
var tables = []tableSpec{
	{model: (*models.User)(nil)},
	{model: (*models.PackPurchase)(nil), foreignKeys: []string{
		`("buyer_id") REFERENCES "users" ("id")`,
	}},
	{model: (*models.Card)(nil), foreignKeys: []string{
		`("owner_id") REFERENCES "users" ("id")`,
		`("pack_purchase_id") REFERENCES "pack_purchases" ("id")`,
	}},
	{model: (*models.CardMetadata)(nil), foreignKeys: []string{
		`("token_id") REFERENCES "cards" ("token_id") DEFERRABLE INITIALLY DEFERRED`,
	}},
	{model: (*models.Listing)(nil), foreignKeys: []string{
		`("card_id") REFERENCES "cards" ("id")`,
		`("seller_id") REFERENCES "users" ("id")`,
		`("buyer_id") REFERENCES "users" ("id")`,
		`("highest_bidder_id") REFERENCES "users" ("id")`,
	}},
	{model: (*models.Bid)(nil), foreignKeys: []string{
		`("card_id") REFERENCES "cards" ("id")`,
		`("bidder_id") REFERENCES "users" ("id")`,
		`("listing_id") REFERENCES "listings" ("id")`,
	}},
	{model: (*models.ListingEvent)(nil), foreignKeys: []string{
		`("card_id") REFERENCES "cards" ("id")`,
		`("listing_id") REFERENCES "listings" ("id")`,
	}},
	{model: (*models.Settlement)(nil), foreignKeys: []string{
		`("card_id") REFERENCES "cards" ("id")`,
		`("listing_id") REFERENCES "listings" ("id")`,
	}},
}

// checkConstraints keep closed enumerations closed at the storage level.
func checkConstraints() map[string][2]string {
	return map[string][2]string{
		"chk_cards_acquisition_type": {"cards", fmt.Sprintf("acquisition_type IN (%s)", quoteList(models.AcquisitionTypes()))},
		"chk_card_metadata_rarity":   {"card_metadata", fmt.Sprintf("rarity IN (%s)", quoteList(models.Rarities()))},
		"chk_listings_status":        {"listings", fmt.Sprintf("status IN (%s)", quoteList(models.ListingStatuses()))},
		"chk_listings_price":         {"listings", "price > 0"},
		"chk_bids_status":            {"bids", fmt.Sprintf("status IN (%s)", quoteList(models.BidStatuses()))},
		"chk_bids_type":              {"bids", fmt.Sprintf("bid_type IN (%s)", quoteList(models.BidTypes()))},
		"chk_bids_open_listing":      {"bids", "(bid_type = 'open') = (listing_id IS NULL)"},
		"chk_bids_amount":            {"bids", "bid_amount > 0"},
		"chk_listing_events_type":    {"listing_events", fmt.Sprintf("event_type IN (%s)", quoteList(models.ListingEventTypes()))},
		"chk_settlements_status":     {"settlements", fmt.Sprintf("status IN (%s)", quoteList(models.SettlementStatuses()))},
	}
}

var indexes = []string{
	// at most one active listing per card
	"CREATE UNIQUE INDEX IF NOT EXISTS uq_listings_active_card ON listings(card_id) WHERE status = 'active';",
	"CREATE INDEX IF NOT EXISTS idx_cards_owner_id ON cards(owner_id);",
	"CREATE INDEX IF NOT EXISTS idx_cards_pack_purchase_id ON cards(pack_purchase_id);",
	"CREATE INDEX IF NOT EXISTS idx_card_metadata_rarity ON card_metadata(rarity);",
	"CREATE INDEX IF NOT EXISTS idx_listings_active_expiration ON listings(expiration_time) WHERE status = 'active';",
	"CREATE INDEX IF NOT EXISTS idx_listings_active_price ON listings(price) WHERE status = 'active';",
	"CREATE INDEX IF NOT EXISTS idx_listings_seller_id ON listings(seller_id);",
	"CREATE INDEX IF NOT EXISTS idx_bids_listing_status ON bids(listing_id, status);",
	"CREATE INDEX IF NOT EXISTS idx_bids_card_status ON bids(card_id, status);",
	"CREATE INDEX IF NOT EXISTS idx_bids_bidder_expiration ON bids(bidder_id, expiration_time);",
	"CREATE INDEX IF NOT EXISTS idx_listing_events_listing_id ON listing_events(listing_id);",
	"CREATE INDEX IF NOT EXISTS idx_settlements_bid_id ON settlements(bid_id);",
	"CREATE INDEX IF NOT EXISTS idx_settlements_tx_hash ON settlements(tx_hash);",
	"CREATE INDEX IF NOT EXISTS idx_settlements_orphaned ON settlements(created_at) WHERE status = 'orphaned';",
}

// InitializeSchema creates all required database tables and indexes
func (db *DB) InitializeSchema(ctx context.Context) error {
	for _, spec := range tables {
		query := db.bunDB.NewCreateTable().
			Model(spec.model).
			IfNotExists()
		for _, fk := range spec.foreignKeys {
			query = query.ForeignKey(fk)
		}

		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for name, check := range checkConstraints() {
		sql := fmt.Sprintf(
			"ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s; ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);",
			check[0], name, check[0], name, check[1],
		)
		if _, err := db.ExecWithLog(ctx, sql); err != nil {
			return fmt.Errorf("failed to add constraint %s: %w", name, err)
		}
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if _, err := db.ExecWithLog(ctx, fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START 1;", TokenIDSequence)); err != nil {
		return fmt.Errorf("failed to create token sequence: %w", err)
	}

	slog.Info("Database schema initialized",
		slog.String("type", "db"),
		slog.Int("tables", len(tables)),
		slog.Int("indexes", len(indexes)))
	return nil
}

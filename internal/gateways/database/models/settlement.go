package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type SettlementStatus string

const (
	// SettlementConfirmed: chain transfer done and local state committed.
	SettlementConfirmed SettlementStatus = "confirmed"
	// SettlementOrphaned: chain transfer done, local commit failed.
	SettlementOrphaned SettlementStatus = "orphaned"
	// SettlementReconciled: an orphan whose local state was repaired later.
	SettlementReconciled SettlementStatus = "reconciled"
)

func SettlementStatuses() []SettlementStatus {
	return []SettlementStatus{SettlementConfirmed, SettlementOrphaned, SettlementReconciled}
}

type Settlement struct {
	bun.BaseModel `bun:"table:settlements,alias:s"`

	ID        string          `bun:"id,pk,type:uuid"`
	CardID    string          `bun:"card_id,notnull,type:uuid"`
	ListingID string          `bun:"listing_id,type:uuid,nullzero"`
	BidID     string          `bun:"bid_id,notnull,type:uuid"`
	SellerID  string          `bun:"seller_id,notnull,type:uuid"`
	BuyerID   string          `bun:"buyer_id,notnull,type:uuid"`
	Price     decimal.Decimal `bun:"price,type:numeric(78,0),notnull"`
	TxHash    string          `bun:"tx_hash,notnull"`
	// buy side order, kept so an orphan can be replayed without the bid row
	OrderColumns
	Status    SettlementStatus `bun:"status,notnull"`
	Reason    string           `bun:"reason"`
	CreatedAt time.Time        `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time        `bun:"updated_at,notnull,default:current_timestamp"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type PackPurchase struct {
	bun.BaseModel `bun:"table:pack_purchases,alias:pp"`

	ID        string          `bun:"id,pk,type:uuid"`
	BuyerID   string          `bun:"buyer_id,notnull,type:uuid"`
	Price     decimal.Decimal `bun:"price,type:numeric(78,0),notnull"`
	PackType  string          `bun:"pack_type,notnull"`
	TxHash    string          `bun:"tx_hash,notnull,unique"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp"`

	Cards []*Card `bun:"rel:has-many,join:id=pack_purchase_id"`
}

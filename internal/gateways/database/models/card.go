package models

import (
	"time"

	"github.com/uptrace/bun"
)

type AcquisitionType string

const (
	AcquisitionMint        AcquisitionType = "mint"
	AcquisitionTransfer    AcquisitionType = "transfer"
	AcquisitionMarketplace AcquisitionType = "marketplace"
)

func AcquisitionTypes() []AcquisitionType {
	return []AcquisitionType{AcquisitionMint, AcquisitionTransfer, AcquisitionMarketplace}
}

type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID              string          `bun:"id,pk,type:uuid"`
	OwnerID         string          `bun:"owner_id,notnull,type:uuid"`
	PackPurchaseID  string          `bun:"pack_purchase_id,type:uuid,nullzero"`
	TokenID         int64           `bun:"token_id,notnull,unique"`
	AcquisitionType AcquisitionType `bun:"acquisition_type,notnull"`
	Burned          bool            `bun:"burned,notnull,default:false"`
	CreatedAt       time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time       `bun:"updated_at,notnull,default:current_timestamp"`

	// Relations
	Metadata *CardMetadata `bun:"rel:belongs-to,join:token_id=token_id"`
	Owner    *User         `bun:"rel:belongs-to,join:owner_id=id"`
}

// Transferable reports whether the card can take part in a listing or bid.
func (c *Card) Transferable() bool {
	return c != nil && !c.Burned
}

package models

import (
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Rarity string

const (
	RarityBronze   Rarity = "bronze"
	RaritySilver   Rarity = "silver"
	RarityGold     Rarity = "gold"
	RaritySapphire Rarity = "sapphire"
	RarityRuby     Rarity = "ruby"
	RarityOpal     Rarity = "opal"
)

// Rarities lists every tier from lowest to highest.
func Rarities() []Rarity {
	return []Rarity{RarityBronze, RaritySilver, RarityGold, RaritySapphire, RarityRuby, RarityOpal}
}

func (r Rarity) Valid() bool {
	switch r {
	case RarityBronze, RaritySilver, RarityGold, RaritySapphire, RarityRuby, RarityOpal:
		return true
	}
	return false
}

// Multiplier is the score multiplier a runner card of this tier carries.
func (r Rarity) Multiplier() decimal.Decimal {
	switch r {
	case RarityBronze:
		return decimal.NewFromInt(1)
	case RaritySilver:
		return decimal.RequireFromString("1.10")
	case RarityGold:
		return decimal.RequireFromString("1.25")
	case RaritySapphire:
		return decimal.RequireFromString("1.50")
	case RarityRuby:
		return decimal.RequireFromString("1.75")
	case RarityOpal:
		return decimal.NewFromInt(2)
	}
	return decimal.NewFromInt(1)
}

// CardMetadata is written once at mint time and never updated.
type CardMetadata struct {
	bun.BaseModel `bun:"table:card_metadata,alias:cm"`

	TokenID    int64           `bun:"token_id,pk"`
	RunnerID   string          `bun:"runner_id,notnull"`
	RunnerName string          `bun:"runner_name,notnull"`
	Rarity     Rarity          `bun:"rarity,notnull"`
	Multiplier decimal.Decimal `bun:"multiplier,type:numeric(6,2),notnull"`
	ImageRef   string          `bun:"image_ref"`
	Season     string          `bun:"season,notnull"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            string    `bun:"id,pk,type:uuid"`
	Username      string    `bun:"username,notnull,unique"`
	WalletAddress string    `bun:"wallet_address"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

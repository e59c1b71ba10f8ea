package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Order is a trade intent signed off-system. Fields are never re-derived here.
type Order struct {
	Trader         string          `json:"trader"`
	Side           OrderSide       `json:"side"`
	Collection     string          `json:"collection"`
	TokenID        string          `json:"token_id"`
	PaymentToken   string          `json:"payment_token"`
	Price          decimal.Decimal `json:"price"`
	ExpirationTime int64           `json:"expiration_time"`
	MerkleRoot     string          `json:"merkle_root"`
	Salt           string          `json:"salt"`
}

func (o Order) ExpiresAt() time.Time {
	return time.Unix(o.ExpirationTime, 0)
}

// SignedOrder keeps the order bytes exactly as received next to the decoded view.
type SignedOrder struct {
	Order     Order
	Raw       json.RawMessage
	Signature string
	Hash      string
}

var ErrEmptyOrder = errors.New("signed order is empty")

type signedOrderJSON struct {
	Order     json.RawMessage `json:"order"`
	Signature string          `json:"signature"`
	Hash      string          `json:"hash"`
}

func NewSignedOrder(raw json.RawMessage, signature, hash string) (SignedOrder, error) {
	if len(raw) == 0 {
		return SignedOrder{}, ErrEmptyOrder
	}
	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return SignedOrder{}, fmt.Errorf("failed to decode order: %w", err)
	}
	return SignedOrder{
		Order:     order,
		Raw:       append(json.RawMessage(nil), raw...),
		Signature: signature,
		Hash:      hash,
	}, nil
}

func (s SignedOrder) IsZero() bool {
	return len(s.Raw) == 0 && s.Signature == "" && s.Hash == ""
}

func (s SignedOrder) MarshalJSON() ([]byte, error) {
	raw := s.Raw
	if len(raw) == 0 {
		encoded, err := json.Marshal(s.Order)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}
	return json.Marshal(signedOrderJSON{Order: raw, Signature: s.Signature, Hash: s.Hash})
}

func (s *SignedOrder) UnmarshalJSON(data []byte) error {
	var wire signedOrderJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	decoded, err := NewSignedOrder(wire.Order, wire.Signature, wire.Hash)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// OrderColumns is embedded by listings and bids which persist the order verbatim.
type OrderColumns struct {
	OrderData json.RawMessage `bun:"order_data,type:jsonb,notnull"`
	Signature string          `bun:"signature,notnull"`
	OrderHash string          `bun:"order_hash,notnull"`
}

func (c *OrderColumns) SetOrder(order SignedOrder) error {
	raw := order.Raw
	if len(raw) == 0 {
		encoded, err := json.Marshal(order.Order)
		if err != nil {
			return fmt.Errorf("failed to encode order: %w", err)
		}
		raw = encoded
	}
	c.OrderData = raw
	c.Signature = order.Signature
	c.OrderHash = order.Hash
	return nil
}

func (c *OrderColumns) SignedOrder() (SignedOrder, error) {
	return NewSignedOrder(c.OrderData, c.Signature, c.OrderHash)
}

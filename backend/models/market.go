package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fantasyrun/runner-market/internal/domain/catalog"
	"github.com/fantasyrun/runner-market/internal/domain/packs"
	dbmodels "github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

// Requests. Prices travel as decimal strings and times as RFC 3339.

type CreateListingRequest struct {
	CardID         string               `json:"card_id"`
	Price          decimal.Decimal      `json:"price"`
	ExpirationTime time.Time            `json:"expiration_time"`
	Order          dbmodels.SignedOrder `json:"order"`
}

type ListingBidRequest struct {
	Amount decimal.Decimal      `json:"amount"`
	Order  dbmodels.SignedOrder `json:"order"`
}

type OpenBidRequest struct {
	Amount         decimal.Decimal      `json:"amount"`
	ExpirationTime time.Time            `json:"expiration_time"`
	Order          dbmodels.SignedOrder `json:"order"`
}

type AcceptBidRequest struct {
	TxHash string `json:"tx_hash"`
}

type PackPurchaseRequest struct {
	PackType string          `json:"pack_type"`
	Price    decimal.Decimal `json:"price"`
	TxHash   string          `json:"tx_hash"`
}

// Responses.

type CardResponse struct {
	ID              string `json:"id"`
	OwnerID         string `json:"owner_id"`
	OwnerName       string `json:"owner_name,omitempty"`
	TokenID         int64  `json:"token_id"`
	AcquisitionType string `json:"acquisition_type"`
	RunnerID        string `json:"runner_id,omitempty"`
	RunnerName      string `json:"runner_name,omitempty"`
	Rarity          string `json:"rarity,omitempty"`
	Multiplier      string `json:"multiplier,omitempty"`
	ImageRef        string `json:"image_ref,omitempty"`
	Season          string `json:"season,omitempty"`
}

type ListingResponse struct {
	ID              string        `json:"id"`
	CardID          string        `json:"card_id"`
	SellerID        string        `json:"seller_id"`
	BuyerID         string        `json:"buyer_id,omitempty"`
	Price           string        `json:"price"`
	HighestBid      *string       `json:"highest_bid"`
	HighestBidderID string        `json:"highest_bidder_id,omitempty"`
	ExpirationTime  time.Time     `json:"expiration_time"`
	Status          string        `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	Card            *CardResponse `json:"card,omitempty"`
}

type BidResponse struct {
	ID             string           `json:"id"`
	ListingID      string           `json:"listing_id,omitempty"`
	CardID         string           `json:"card_id"`
	BidderID       string           `json:"bidder_id"`
	BidderName     string           `json:"bidder_name,omitempty"`
	BidAmount      string           `json:"bid_amount"`
	BidType        string           `json:"bid_type"`
	Status         string           `json:"status"`
	ExpirationTime time.Time        `json:"expiration_time"`
	AcceptedAt     *time.Time       `json:"accepted_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	Card           *CardResponse    `json:"card,omitempty"`
	Listing        *ListingResponse `json:"listing,omitempty"`
}

type SettlementResponse struct {
	ID        string    `json:"id"`
	CardID    string    `json:"card_id"`
	ListingID string    `json:"listing_id,omitempty"`
	BidID     string    `json:"bid_id"`
	SellerID  string    `json:"seller_id"`
	BuyerID   string    `json:"buyer_id"`
	Price     string    `json:"price"`
	TxHash    string    `json:"tx_hash"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PlaceBidResponse carries the settlement when the bid filled the listing.
type PlaceBidResponse struct {
	Bid        *BidResponse        `json:"bid"`
	Settled    bool                `json:"settled"`
	Settlement *SettlementResponse `json:"settlement,omitempty"`
}

type PackPurchaseResponse struct {
	ID        string          `json:"id"`
	BuyerID   string          `json:"buyer_id"`
	PackType  string          `json:"pack_type"`
	Price     string          `json:"price"`
	TxHash    string          `json:"tx_hash"`
	CreatedAt time.Time       `json:"created_at"`
	Cards     []*CardResponse `json:"cards"`
}

type RunnerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Country  string `json:"country,omitempty"`
	ImageRef string `json:"image_ref,omitempty"`
}

func NewCardResponse(card *dbmodels.Card) *CardResponse {
	if card == nil {
		return nil
	}
	resp := &CardResponse{
		ID:              card.ID,
		OwnerID:         card.OwnerID,
		TokenID:         card.TokenID,
		AcquisitionType: string(card.AcquisitionType),
	}
	if card.Owner != nil {
		resp.OwnerName = card.Owner.Username
	}
	withMetadata(resp, card.Metadata)
	return resp
}

func withMetadata(resp *CardResponse, md *dbmodels.CardMetadata) {
	if md == nil {
		return
	}
	resp.RunnerID = md.RunnerID
	resp.RunnerName = md.RunnerName
	resp.Rarity = string(md.Rarity)
	resp.Multiplier = md.Multiplier.StringFixed(2)
	resp.ImageRef = md.ImageRef
	resp.Season = md.Season
}

func NewListingResponse(l *dbmodels.Listing) *ListingResponse {
	if l == nil {
		return nil
	}
	resp := &ListingResponse{
		ID:              l.ID,
		CardID:          l.CardID,
		SellerID:        l.SellerID,
		BuyerID:         l.BuyerID,
		Price:           l.Price.String(),
		HighestBidderID: l.HighestBidderID,
		ExpirationTime:  l.ExpirationTime,
		Status:          string(l.Status),
		CreatedAt:       l.CreatedAt,
		Card:            NewCardResponse(l.Card),
	}
	if l.HighestBid.Valid {
		highest := l.HighestBid.Decimal.String()
		resp.HighestBid = &highest
	}
	return resp
}

func NewListingResponses(listings []*dbmodels.Listing) []*ListingResponse {
	out := make([]*ListingResponse, len(listings))
	for i, l := range listings {
		out[i] = NewListingResponse(l)
	}
	return out
}

func NewBidResponse(b *dbmodels.Bid) *BidResponse {
	if b == nil {
		return nil
	}
	resp := &BidResponse{
		ID:             b.ID,
		ListingID:      b.ListingID,
		CardID:         b.CardID,
		BidderID:       b.BidderID,
		BidAmount:      b.BidAmount.String(),
		BidType:        string(b.BidType),
		Status:         string(b.Status),
		ExpirationTime: b.ExpirationTime,
		CreatedAt:      b.CreatedAt,
		Card:           NewCardResponse(b.Card),
		Listing:        NewListingResponse(b.Listing),
	}
	if !b.AcceptedAt.IsZero() {
		accepted := b.AcceptedAt
		resp.AcceptedAt = &accepted
	}
	if b.Bidder != nil {
		resp.BidderName = b.Bidder.Username
	}
	return resp
}

func NewBidResponses(bids []*dbmodels.Bid) []*BidResponse {
	out := make([]*BidResponse, len(bids))
	for i, b := range bids {
		out[i] = NewBidResponse(b)
	}
	return out
}

func NewSettlementResponse(s *dbmodels.Settlement) *SettlementResponse {
	if s == nil {
		return nil
	}
	return &SettlementResponse{
		ID:        s.ID,
		CardID:    s.CardID,
		ListingID: s.ListingID,
		BidID:     s.BidID,
		SellerID:  s.SellerID,
		BuyerID:   s.BuyerID,
		Price:     s.Price.String(),
		TxHash:    s.TxHash,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
	}
}

func NewPackPurchaseResponse(p *packs.Purchase) *PackPurchaseResponse {
	resp := &PackPurchaseResponse{
		ID:        p.Pack.ID,
		BuyerID:   p.Pack.BuyerID,
		PackType:  p.Pack.PackType,
		Price:     p.Pack.Price.String(),
		TxHash:    p.Pack.TxHash,
		CreatedAt: p.Pack.CreatedAt,
		Cards:     make([]*CardResponse, len(p.Cards)),
	}
	for i, c := range p.Cards {
		card := NewCardResponse(c.Card)
		withMetadata(card, c.Metadata)
		resp.Cards[i] = card
	}
	return resp
}

func NewRunnerResponses(runners []catalog.Runner) []*RunnerResponse {
	out := make([]*RunnerResponse, len(runners))
	for i, r := range runners {
		out[i] = &RunnerResponse{ID: r.ID, Name: r.Name, Country: r.Country, ImageRef: r.ImageRef}
	}
	return out
}

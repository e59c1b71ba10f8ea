package packs

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fantasyrun/runner-market/internal/domain/catalog"
	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/domain/rarity"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
	"github.com/fantasyrun/runner-market/internal/logger"
)

//go:generate mockgen -destination=mock/repository.go -package=mock . Repository

var (
	// ErrDuplicateTxHash is returned by Mint when the purchase tx hash was already used.
	ErrDuplicateTxHash = errors.New("pack purchase transaction already recorded")
	ErrUnknownBuyer    = errors.New("buyer does not exist")
)

// MintedCard is one card of a pack. Mint fills TokenID on both halves.
type MintedCard struct {
	Card     *models.Card
	Metadata *models.CardMetadata
}

type Repository interface {
	// Mint stores the purchase, its cards and their metadata in one transaction,
	// assigning token ids from the token sequence.
	Mint(ctx context.Context, purchase *models.PackPurchase, cards []MintedCard) error
}

// RunnerSource lists the runners a season can mint.
type RunnerSource interface {
	Runners(ctx context.Context, season string) ([]catalog.Runner, error)
}

type PurchaseInput struct {
	BuyerID  string
	PackType string
	Price    decimal.Decimal
	TxHash   string
}

type Purchase struct {
	Pack  *models.PackPurchase
	Cards []MintedCard
}

type Service struct {
	repo      Repository
	allocator *rarity.Allocator
	runners   RunnerSource
	src       rarity.Source
	season    string
	now       func() time.Time
	newID     func() string
}

func NewService(repo Repository, allocator *rarity.Allocator, runners RunnerSource, src rarity.Source, season string) *Service {
	if repo == nil {
		panic("pack repository cannot be nil")
	}
	if allocator == nil {
		panic("rarity allocator cannot be nil")
	}
	if runners == nil {
		panic("runner source cannot be nil")
	}
	if src == nil {
		panic("random source cannot be nil")
	}
	return &Service{
		repo:      repo,
		allocator: allocator,
		runners:   runners,
		src:       src,
		season:    season,
		now:       time.Now,
		newID:     func() string { return uuid.Must(uuid.NewV7()).String() },
	}
}

func validation(msg string) *marketplace.Error {
	return &marketplace.Error{Kind: marketplace.KindValidation, Message: msg}
}

// PurchasePack mints the cards of a paid pack for the buyer.
func (s *Service) PurchasePack(ctx context.Context, in PurchaseInput) (*Purchase, error) {
	if in.BuyerID == "" {
		return nil, validation("buyer is required")
	}
	if !in.Price.IsPositive() || !in.Price.IsInteger() {
		return nil, validation("price must be a positive integer amount")
	}
	in.TxHash = strings.TrimSpace(in.TxHash)
	if in.TxHash == "" {
		return nil, validation("transaction hash is required")
	}
	if in.PackType == "" {
		in.PackType = rarity.PackBasic
	}

	draws, err := s.allocator.DrawPackRarities(in.PackType)
	if errors.Is(err, rarity.ErrUnknownPackType) {
		return nil, validation("unknown pack type " + in.PackType)
	}
	if err != nil {
		return nil, &marketplace.Error{Kind: marketplace.KindMarketplace, Message: "failed to draw pack", Err: err}
	}
	if _, ok := s.allocator.Pack(in.PackType); !ok {
		in.PackType = rarity.PackBasic
	}

	runners, err := s.runners.Runners(ctx, s.season)
	if err != nil {
		return nil, &marketplace.Error{Kind: marketplace.KindMarketplace, Message: "runner catalog unavailable", Err: err}
	}

	now := s.now()
	purchase := &models.PackPurchase{
		ID:        s.newID(),
		BuyerID:   in.BuyerID,
		Price:     in.Price,
		PackType:  in.PackType,
		TxHash:    in.TxHash,
		CreatedAt: now,
	}

	cards := make([]MintedCard, 0, len(draws))
	for _, r := range draws {
		runner := runners[s.src.IntN(len(runners))]
		cards = append(cards, MintedCard{
			Card: &models.Card{
				ID:              s.newID(),
				OwnerID:         in.BuyerID,
				PackPurchaseID:  purchase.ID,
				AcquisitionType: models.AcquisitionMint,
				CreatedAt:       now,
				UpdatedAt:       now,
			},
			Metadata: &models.CardMetadata{
				RunnerID:   runner.ID,
				RunnerName: runner.Name,
				Rarity:     r,
				Multiplier: r.Multiplier(),
				ImageRef:   runner.ImageRef,
				Season:     s.season,
			},
		})
	}

	err = s.repo.Mint(ctx, purchase, cards)
	switch {
	case errors.Is(err, ErrDuplicateTxHash):
		return nil, validation("transaction " + in.TxHash + " was already used for a pack")
	case errors.Is(err, ErrUnknownBuyer):
		return nil, &marketplace.Error{Kind: marketplace.KindNotFound, Message: "buyer not found", Err: err}
	case err != nil:
		return nil, &marketplace.Error{Kind: marketplace.KindDatabase, Message: "failed to mint pack", Err: err}
	}

	logger.LogMarket("Pack purchased",
		slog.String("purchase_id", purchase.ID),
		slog.String("buyer_id", in.BuyerID),
		slog.String("pack_type", in.PackType),
		slog.Int("cards", len(cards)))
	return &Purchase{Pack: purchase, Cards: cards}, nil
}

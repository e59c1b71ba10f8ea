package rarity

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"sync"

	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

var ErrUnknownPackType = errors.New("unknown pack type")

// Source is the random stream draws come from. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type Weight struct {
	Rarity models.Rarity
	Weight int
}

// DefaultWeights is the mint distribution. Zero-weight tiers exist but cannot be drawn.
var DefaultWeights = []Weight{
	{Rarity: models.RarityBronze, Weight: 50},
	{Rarity: models.RaritySilver, Weight: 10},
	{Rarity: models.RarityGold, Weight: 20},
	{Rarity: models.RaritySapphire, Weight: 0},
	{Rarity: models.RarityRuby, Weight: 0},
	{Rarity: models.RarityOpal, Weight: 0},
}

const (
	PackBasic    = "basic"
	PackSwole    = "swole"
	PackHardcore = "hardcore"
)

// Pack describes how many cards a pack holds and which rarities it guarantees.
type Pack struct {
	Type       string
	Size       int
	Guaranteed []models.Rarity
}

var DefaultPacks = map[string]Pack{
	PackBasic: {Type: PackBasic, Size: 3},
	PackSwole: {Type: PackSwole, Size: 5, Guaranteed: []models.Rarity{
		models.RarityBronze, models.RarityBronze, models.RarityBronze,
	}},
	PackHardcore: {Type: PackHardcore, Size: 5, Guaranteed: []models.Rarity{
		models.RarityBronze, models.RarityBronze, models.RaritySilver,
	}},
}

type Allocator struct {
	weights []Weight
	total   int
	packs   map[string]Pack
	src     Source
	strict  bool
}

type Option func(*Allocator)

func WithSource(src Source) Option {
	return func(a *Allocator) {
		if src != nil {
			a.src = src
		}
	}
}

// WithStrict makes unknown pack types an error instead of a basic pack.
func WithStrict(strict bool) Option {
	return func(a *Allocator) {
		a.strict = strict
	}
}

func WithWeights(weights []Weight) Option {
	return func(a *Allocator) {
		a.weights = weights
	}
}

func WithPacks(packs map[string]Pack) Option {
	return func(a *Allocator) {
		a.packs = packs
	}
}

func NewAllocator(opts ...Option) (*Allocator, error) {
	a := &Allocator{
		weights: DefaultWeights,
		packs:   DefaultPacks,
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, w := range a.weights {
		if w.Weight < 0 {
			return nil, fmt.Errorf("negative weight for %s", w.Rarity)
		}
		a.total += w.Weight
	}
	if a.total == 0 {
		return nil, errors.New("rarity weights sum to zero")
	}
	if _, ok := a.packs[PackBasic]; !ok {
		return nil, errors.New("pack table must define the basic pack")
	}
	for name, p := range a.packs {
		if len(p.Guaranteed) > p.Size {
			return nil, fmt.Errorf("pack %s guarantees more cards than it holds", name)
		}
	}

	if a.src == nil {
		src, err := NewCryptoSeededSource()
		if err != nil {
			return nil, err
		}
		a.src = src
	}
	return a, nil
}

// DrawRarity walks the cumulative weights with one uniform draw in [0, total).
func (a *Allocator) DrawRarity() models.Rarity {
	roll := a.src.IntN(a.total)
	for _, w := range a.weights {
		if roll < w.Weight {
			return w.Rarity
		}
		roll -= w.Weight
	}
	return models.RarityBronze
}

// DrawPackRarities fills the guaranteed slots, draws the rest and shuffles the result.
func (a *Allocator) DrawPackRarities(packType string) ([]models.Rarity, error) {
	pack, ok := a.packs[packType]
	if !ok {
		if a.strict {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPackType, packType)
		}
		slog.Warn("Unknown pack type, using basic",
			slog.String("type", "mkt"),
			slog.String("pack_type", packType))
		pack = a.packs[PackBasic]
	}

	out := make([]models.Rarity, 0, pack.Size)
	out = append(out, pack.Guaranteed...)
	for len(out) < pack.Size {
		out = append(out, a.DrawRarity())
	}

	for i := len(out) - 1; i > 0; i-- {
		j := a.src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (a *Allocator) Pack(packType string) (Pack, bool) {
	p, ok := a.packs[packType]
	return p, ok
}

type lockedSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// NewCryptoSeededSource returns a ChaCha8 stream seeded from crypto/rand, safe for concurrent use.
func NewCryptoSeededSource() (Source, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("failed to seed rarity source: %w", err)
	}
	return &lockedSource{rng: mrand.New(mrand.NewChaCha8(seed))}, nil
}

package rarity

import (
	mrand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

type scripted struct {
	rolls []int
}

func (s *scripted) IntN(n int) int {
	v := s.rolls[0] % n
	s.rolls = s.rolls[1:]
	return v
}

func seeded(seed uint64) Source {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestDrawRarityBuckets(t *testing.T) {
	tests := []struct {
		roll int
		want models.Rarity
	}{
		{0, models.RarityBronze},
		{49, models.RarityBronze},
		{50, models.RaritySilver},
		{59, models.RaritySilver},
		{60, models.RarityGold},
		{79, models.RarityGold},
	}
	for _, tt := range tests {
		a, err := NewAllocator(WithSource(&scripted{rolls: []int{tt.roll}}))
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.DrawRarity(), "roll %d", tt.roll)
	}
}

func TestDrawRarityNeverReturnsZeroWeightTier(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a, err := NewAllocator(WithSource(seeded(rapid.Uint64().Draw(t, "seed"))))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 200; i++ {
			switch r := a.DrawRarity(); r {
			case models.RarityBronze, models.RaritySilver, models.RarityGold:
			default:
				t.Fatalf("drew zero-weight rarity %s", r)
			}
		}
	})
}

func TestDrawRarityDistribution(t *testing.T) {
	a, err := NewAllocator(WithSource(seeded(42)))
	require.NoError(t, err)

	const draws = 80_000
	counts := map[models.Rarity]int{}
	for i := 0; i < draws; i++ {
		counts[a.DrawRarity()]++
	}

	assert.InDelta(t, 50.0/80, float64(counts[models.RarityBronze])/draws, 0.02)
	assert.InDelta(t, 10.0/80, float64(counts[models.RaritySilver])/draws, 0.02)
	assert.InDelta(t, 20.0/80, float64(counts[models.RarityGold])/draws, 0.02)
}

func count(rs []models.Rarity, want models.Rarity) int {
	n := 0
	for _, r := range rs {
		if r == want {
			n++
		}
	}
	return n
}

func TestDrawPackRarities(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a, err := NewAllocator(WithSource(seeded(rapid.Uint64().Draw(t, "seed"))))
		if err != nil {
			t.Fatal(err)
		}
		packType := rapid.SampledFrom([]string{PackBasic, PackSwole, PackHardcore}).Draw(t, "pack")

		got, err := a.DrawPackRarities(packType)
		if err != nil {
			t.Fatal(err)
		}
		pack, _ := a.Pack(packType)
		if len(got) != pack.Size {
			t.Fatalf("%s pack has %d cards, want %d", packType, len(got), pack.Size)
		}
		switch packType {
		case PackSwole:
			if count(got, models.RarityBronze) < 3 {
				t.Fatalf("swole pack %v lacks 3 bronze", got)
			}
		case PackHardcore:
			if count(got, models.RarityBronze) < 2 || count(got, models.RaritySilver) < 1 {
				t.Fatalf("hardcore pack %v lacks its guarantees", got)
			}
		}
	})
}

func TestDrawPackRaritiesShufflesGuarantees(t *testing.T) {
	a, err := NewAllocator(WithSource(seeded(7)))
	require.NoError(t, err)

	silverFirst := 0
	for i := 0; i < 500; i++ {
		got, err := a.DrawPackRarities(PackHardcore)
		require.NoError(t, err)
		if got[2] != models.RaritySilver {
			silverFirst++
		}
	}
	// without a shuffle the guaranteed silver would always sit in slot 2
	assert.Greater(t, silverFirst, 0)
}

func TestUnknownPackType(t *testing.T) {
	lenient, err := NewAllocator(WithSource(seeded(1)))
	require.NoError(t, err)
	got, err := lenient.DrawPackRarities("mythic")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	strict, err := NewAllocator(WithSource(seeded(1)), WithStrict(true))
	require.NoError(t, err)
	_, err = strict.DrawPackRarities("mythic")
	require.ErrorIs(t, err, ErrUnknownPackType)
}

func TestNewAllocatorValidation(t *testing.T) {
	_, err := NewAllocator(WithWeights([]Weight{{Rarity: models.RarityBronze, Weight: 0}}))
	assert.Error(t, err)

	_, err = NewAllocator(WithWeights([]Weight{{Rarity: models.RarityBronze, Weight: -1}, {Rarity: models.RaritySilver, Weight: 5}}))
	assert.Error(t, err)

	_, err = NewAllocator(WithPacks(map[string]Pack{PackSwole: DefaultPacks[PackSwole]}))
	assert.Error(t, err)

	_, err = NewAllocator(WithPacks(map[string]Pack{
		PackBasic: {Type: PackBasic, Size: 1, Guaranteed: []models.Rarity{models.RarityBronze, models.RarityGold}},
	}))
	assert.Error(t, err)

	a, err := NewAllocator()
	require.NoError(t, err)
	assert.True(t, a.DrawRarity().Valid())
}

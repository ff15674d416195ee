package loot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/crownspire/mud/internal/game/loot"
	"github.com/crownspire/mud/internal/game/rng"
)

func TestEntry_Validate(t *testing.T) {
	valid := loot.Entry{ID: 1, DropRate: 50, MinQuantity: 1, MaxQuantity: 3}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.DropRate = 101
	assert.Error(t, bad.Validate())

	bad = valid
	bad.DropRate = -0.5
	assert.Error(t, bad.Validate())

	bad = valid
	bad.MinQuantity = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.MinQuantity = 4
	assert.Error(t, bad.Validate())
}

// TestResolve_Deterministic verifies that the same entries and seed always
// produce the same drop set. This is the per-kill idempotence property.
func TestResolve_Deterministic(t *testing.T) {
	entries := []loot.Entry{
		{ItemID: 1, ItemName: "Slime Gel", DropRate: 80, MinQuantity: 1, MaxQuantity: 3},
		{ItemID: 2, ItemName: "Small Coin", DropRate: 50, MinQuantity: 1, MaxQuantity: 5},
		{ItemID: 3, ItemName: "Rare Core", DropRate: 5, MinQuantity: 1, MaxQuantity: 1},
	}

	first := loot.Resolve(entries, rng.NewSeededSource(99))
	for i := 0; i < 10; i++ {
		again := loot.Resolve(entries, rng.NewSeededSource(99))
		require.Equal(t, first, again, "run %d diverged", i)
	}
}

// TestResolve_EntriesIndependent verifies that entries are not mutually
// exclusive: with two 100% entries, both always drop.
func TestResolve_EntriesIndependent(t *testing.T) {
	entries := []loot.Entry{
		{ItemID: 1, ItemName: "Gel", DropRate: 100, MinQuantity: 1, MaxQuantity: 1},
		{ItemID: 2, ItemName: "Coin", DropRate: 100, MinQuantity: 2, MaxQuantity: 2},
	}
	drops := loot.Resolve(entries, rng.NewSeededSource(1))
	require.Len(t, drops, 2)
	assert.Equal(t, 1, drops[0].ItemID)
	assert.Equal(t, 2, drops[1].ItemID)
	assert.Equal(t, 2, drops[1].Quantity)
}

func TestResolve_ZeroRateNeverDrops(t *testing.T) {
	entries := []loot.Entry{{ItemID: 1, DropRate: 0, MinQuantity: 1, MaxQuantity: 1}}
	for seed := int64(0); seed < 200; seed++ {
		assert.Empty(t, loot.Resolve(entries, rng.NewSeededSource(seed)))
	}
}

func TestResolve_NoEntries(t *testing.T) {
	assert.Empty(t, loot.Resolve(nil, rng.NewSeededSource(1)))
}

// TestResolve_QuantityBounds verifies the quantity postcondition for
// arbitrary tables and seeds.
func TestResolve_QuantityBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "entries")
		entries := make([]loot.Entry, n)
		for i := range entries {
			min := rapid.IntRange(1, 5).Draw(rt, "min")
			entries[i] = loot.Entry{
				ItemID:      i + 1,
				DropRate:    float64(rapid.IntRange(0, 100).Draw(rt, "rate")),
				MinQuantity: min,
				MaxQuantity: rapid.IntRange(min, min+10).Draw(rt, "max"),
			}
		}
		seed := rapid.Int64().Draw(rt, "seed")

		for _, d := range loot.Resolve(entries, rng.NewSeededSource(seed)) {
			entry := entries[d.ItemID-1]
			assert.GreaterOrEqual(rt, d.Quantity, entry.MinQuantity)
			assert.LessOrEqual(rt, d.Quantity, entry.MaxQuantity)
		}
	})
}

// TestResolve_DropRateConverges samples many seeds for a 50% entry and
// expects the observed rate within a tolerance band.
func TestResolve_DropRateConverges(t *testing.T) {
	entries := []loot.Entry{{ItemID: 1, DropRate: 50, MinQuantity: 1, MaxQuantity: 1}}
	src := rng.NewSeededSource(42)

	hits := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		if len(loot.Resolve(entries, src)) > 0 {
			hits++
		}
	}
	rate := float64(hits) / trials
	assert.InDelta(t, 0.50, rate, 0.05)
}

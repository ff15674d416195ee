package item_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/crownspire/mud/internal/game/item"
)

func TestNextFreeSlot_Empty(t *testing.T) {
	assert.Equal(t, 0, item.NextFreeSlot(nil))
}

func TestNextFreeSlot_LowestGap(t *testing.T) {
	// Slots 0, 1, 3 taken: lowest free index is 2.
	assert.Equal(t, 2, item.NextFreeSlot([]int{0, 1, 3}))
}

func TestNextFreeSlot_Full(t *testing.T) {
	used := make([]int, item.InventorySize)
	for i := range used {
		used[i] = i
	}
	assert.Equal(t, item.NoFreeSlot, item.NextFreeSlot(used))
}

func TestNextFreeSlot_IgnoresOutOfRange(t *testing.T) {
	assert.Equal(t, 0, item.NextFreeSlot([]int{-1, 99}))
}

// TestNextFreeSlot_Property verifies the postcondition for arbitrary used
// sets: the returned slot is never in the used set, and NoFreeSlot is
// returned only when all slots are taken.
func TestNextFreeSlot_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		used := rapid.SliceOfDistinct(
			rapid.IntRange(0, item.InventorySize-1),
			func(i int) int { return i },
		).Draw(rt, "used")

		got := item.NextFreeSlot(used)
		if len(used) == item.InventorySize {
			assert.Equal(rt, item.NoFreeSlot, got)
			return
		}
		assert.GreaterOrEqual(rt, got, 0)
		assert.Less(rt, got, item.InventorySize)
		assert.NotContains(rt, used, got)
	})
}

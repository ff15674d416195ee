// Package loot rolls item drops from monster loot tables.
package loot

import (
	"fmt"

	"github.com/crownspire/mud/internal/game/rng"
)

// Entry is one row of a monster's loot table. Each entry is an independent
// Bernoulli trial; entries are never mutually exclusive.
type Entry struct {
	ID        int
	MonsterID int
	ItemID    int
	// ItemName is denormalised from the item catalog for narration.
	ItemName string
	// DropRate is a percentage in [0, 100].
	DropRate    float64
	MinQuantity int
	MaxQuantity int
}

// Validate checks that the entry satisfies its invariants.
//
// Postcondition: Returns nil iff DropRate is in [0, 100] and
// 1 <= MinQuantity <= MaxQuantity.
func (e Entry) Validate() error {
	if e.DropRate < 0 || e.DropRate > 100 {
		return fmt.Errorf("loot entry %d: drop_rate must be in [0, 100], got %f", e.ID, e.DropRate)
	}
	if e.MinQuantity < 1 {
		return fmt.Errorf("loot entry %d: min_quantity must be >= 1, got %d", e.ID, e.MinQuantity)
	}
	if e.MinQuantity > e.MaxQuantity {
		return fmt.Errorf("loot entry %d: min_quantity (%d) must be <= max_quantity (%d)",
			e.ID, e.MinQuantity, e.MaxQuantity)
	}
	return nil
}

// Drop is one item awarded from a kill.
type Drop struct {
	ItemID   int
	ItemName string
	Quantity int
}

// Resolve rolls every entry independently against src.
//
// An entry drops when a uniform draw in [0, 100) is at most its DropRate;
// quantity is uniform in [MinQuantity, MaxQuantity]. Given a fixed source the
// result is deterministic: the entries are consumed in slice order, one
// percent draw each, plus one quantity draw per successful entry.
//
// Postcondition: every Drop's Quantity is within its entry's bounds.
func Resolve(entries []Entry, src rng.Source) []Drop {
	var drops []Drop
	for _, e := range entries {
		if src.Float64()*100 > e.DropRate {
			continue
		}
		drops = append(drops, Drop{
			ItemID:   e.ItemID,
			ItemName: e.ItemName,
			Quantity: rng.IntBetween(src, e.MinQuantity, e.MaxQuantity),
		})
	}
	return drops
}

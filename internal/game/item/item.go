// Package item defines item templates and player inventory records.
package item

import (
	"github.com/google/uuid"
)

// InventorySize is the number of slots in a player's 5x5 inventory grid.
const InventorySize = 25

// NoFreeSlot is returned by NextFreeSlot when the inventory is full.
const NoFreeSlot = -1

// Type classifies an item template.
type Type string

const (
	TypeWeapon     Type = "weapon"
	TypeArmor      Type = "armor"
	TypeConsumable Type = "consumable"
	TypeQuest      Type = "quest"
)

// Item is a static item template from the catalog.
type Item struct {
	ID   int
	Name string
	Type Type
	// Properties holds type-specific attributes as raw JSON, e.g. {"atk": 5}.
	Properties []byte
}

// EquipmentSlot names where an equipped item sits.
type EquipmentSlot string

const (
	SlotNone      EquipmentSlot = "none"
	SlotWeapon    EquipmentSlot = "weapon"
	SlotHead      EquipmentSlot = "head"
	SlotBody      EquipmentSlot = "body"
	SlotHands     EquipmentSlot = "hands"
	SlotFeet      EquipmentSlot = "feet"
	SlotAccessory EquipmentSlot = "accessory"
)

// InventoryItem is one stack of an item in a player's inventory.
//
// Invariant: Quantity >= 1 (a stack reaching zero is deleted, not stored);
// SlotIndex is unique per player within [0, InventorySize).
type InventoryItem struct {
	ID       uuid.UUID
	PlayerID uuid.UUID
	ItemID   int
	Quantity int

	Equipped     bool
	EquippedSlot EquipmentSlot
	SlotIndex    int
}

// NextFreeSlot returns the lowest slot index in [0, InventorySize) absent
// from used, or NoFreeSlot when every slot is taken.
//
// Postcondition: The returned index does not appear in used, or is NoFreeSlot.
func NextFreeSlot(used []int) int {
	var taken [InventorySize]bool
	for _, idx := range used {
		if idx >= 0 && idx < InventorySize {
			taken[idx] = true
		}
	}
	for i := 0; i < InventorySize; i++ {
		if !taken[i] {
			return i
		}
	}
	return NoFreeSlot
}

// Package character defines the player character domain model.
package character

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Class is a character class archetype.
type Class string

const (
	ClassWarrior Class = "warrior"
	ClassMage    Class = "mage"
	ClassPriest  Class = "priest"
)

// Valid reports whether c is one of the three playable classes.
func (c Class) Valid() bool {
	switch c {
	case ClassWarrior, ClassMage, ClassPriest:
		return true
	}
	return false
}

// Stats holds the five base attributes of a character.
type Stats struct {
	Str int
	Dex int
	Int int
	Wis int
	Con int
}

// Value returns the stat named by key ("STR", "DEX", "INT", "WIS", "CON").
// Unknown keys return 10, the baseline attribute value.
func (s Stats) Value(key string) int {
	switch key {
	case "STR":
		return s.Str
	case "DEX":
		return s.Dex
	case "INT":
		return s.Int
	case "WIS":
		return s.Wis
	case "CON":
		return s.Con
	}
	return 10
}

// Player represents a player character's persistent state.
//
// During an active encounter the combat engine owns all mutable fields;
// outside combat the world subsystem owns RoomID and the resource pools.
type Player struct {
	ID    uuid.UUID
	Name  string
	Class Class

	Level int
	// Exp is the accumulated experience toward the next level. It is
	// non-negative; death reduces it but never below zero.
	Exp int64

	MaxHP     int
	CurrentHP int
	MaxMP     int
	CurrentMP int

	Stats Stats

	// RoomID is the id of the room the player currently occupies.
	RoomID int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Starting resource pools and attributes for a fresh level-1 character.
const (
	startingHP     = 100
	startingMP     = 50
	startingStat   = 10
	startingRoomID = 1
	startingLevel  = 1
)

// NewPlayer creates a level-1 player of the given class in the starting room.
//
// Postcondition: The returned player passes Validate, has full resource
// pools, and all attributes at the baseline value.
func NewPlayer(name string, class Class, now time.Time) *Player {
	return &Player{
		ID:        uuid.New(),
		Name:      name,
		Class:     class,
		Level:     startingLevel,
		MaxHP:     startingHP,
		CurrentHP: startingHP,
		MaxMP:     startingMP,
		CurrentMP: startingMP,
		Stats: Stats{
			Str: startingStat,
			Dex: startingStat,
			Int: startingStat,
			Wis: startingStat,
			Con: startingStat,
		},
		RoomID:    startingRoomID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ApplyDamage subtracts dmg from CurrentHP, flooring at zero.
//
// Precondition: dmg >= 0.
// Postcondition: CurrentHP >= 0; returns true if the player is now dead.
func (p *Player) ApplyDamage(dmg int) bool {
	p.CurrentHP -= dmg
	if p.CurrentHP < 0 {
		p.CurrentHP = 0
	}
	return p.CurrentHP == 0
}

// SpendMP deducts cost from CurrentMP.
//
// Precondition: cost <= CurrentMP (callers gate on HasMP first).
func (p *Player) SpendMP(cost int) {
	p.CurrentMP -= cost
}

// RefundMP returns cost to CurrentMP, capped at MaxMP.
func (p *Player) RefundMP(cost int) {
	p.CurrentMP += cost
	if p.CurrentMP > p.MaxMP {
		p.CurrentMP = p.MaxMP
	}
}

// HasMP reports whether the player can pay cost.
func (p *Player) HasMP(cost int) bool {
	return p.CurrentMP >= cost
}

// Validate checks domain invariants on the player record.
//
// Postcondition: Returns nil iff name is non-empty, class is valid,
// level >= 1, exp >= 0, and no resource pool exceeds its maximum.
func (p *Player) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("player: name must not be empty")
	}
	if !p.Class.Valid() {
		return fmt.Errorf("player %q: unknown class %q", p.Name, p.Class)
	}
	if p.Level < 1 {
		return fmt.Errorf("player %q: level must be >= 1, got %d", p.Name, p.Level)
	}
	if p.Exp < 0 {
		return fmt.Errorf("player %q: exp must be >= 0, got %d", p.Name, p.Exp)
	}
	if p.CurrentHP < 0 || p.CurrentHP > p.MaxHP {
		return fmt.Errorf("player %q: current_hp %d outside [0, %d]", p.Name, p.CurrentHP, p.MaxHP)
	}
	if p.CurrentMP < 0 || p.CurrentMP > p.MaxMP {
		return fmt.Errorf("player %q: current_mp %d outside [0, %d]", p.Name, p.CurrentMP, p.MaxMP)
	}
	return nil
}

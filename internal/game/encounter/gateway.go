package encounter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/crownspire/mud/internal/game/character"
	"github.com/crownspire/mud/internal/game/item"
	"github.com/crownspire/mud/internal/game/loot"
	"github.com/crownspire/mud/internal/game/monster"
	"github.com/crownspire/mud/internal/game/skill"
)

// ErrNotFound is the gateway contract error for by-id lookups that match no
// row. Implementations return it (possibly wrapped) from Player, Template,
// Spawn, Encounter, and Skill.
var ErrNotFound = errors.New("entity not found")

// Tx is the unit-of-work surface the engine reads and mutates entities
// through. Every engine operation runs against exactly one Tx; the gateway
// commits on nil return and rolls back otherwise, so a failed operation
// never leaves a partial write behind.
//
// By-id lookups return ErrNotFound when the row is missing. Find and search
// methods return (nil, nil) when nothing matches.
type Tx interface {
	// Player loads a player by id.
	Player(ctx context.Context, id uuid.UUID) (*character.Player, error)
	SavePlayer(ctx context.Context, p *character.Player) error

	// Template loads a monster template by id.
	Template(ctx context.Context, id int) (*monster.Template, error)
	// FindTemplate searches templates homed in roomID whose name contains
	// nameFragment (case-insensitive).
	FindTemplate(ctx context.Context, roomID int, nameFragment string) (*monster.Template, error)

	// Spawn loads a spawn by id.
	Spawn(ctx context.Context, id uuid.UUID) (*monster.Spawn, error)
	// FindSpawn searches live, non-engaged spawns in roomID whose template
	// name contains nameFragment (case-insensitive).
	FindSpawn(ctx context.Context, roomID int, nameFragment string) (*monster.Spawn, error)
	CreateSpawn(ctx context.Context, s *monster.Spawn) error
	SaveSpawn(ctx context.Context, s *monster.Spawn) error
	DeleteSpawn(ctx context.Context, id uuid.UUID) error

	// Encounter loads an encounter by id.
	Encounter(ctx context.Context, id uuid.UUID) (*Encounter, error)
	// EncounterByPlayer returns the player's encounter, or (nil, nil).
	EncounterByPlayer(ctx context.Context, playerID uuid.UUID) (*Encounter, error)
	CreateEncounter(ctx context.Context, e *Encounter) error
	SaveEncounter(ctx context.Context, e *Encounter) error
	DeleteEncounter(ctx context.Context, id uuid.UUID) error

	// Skill loads a static skill definition by its string key.
	Skill(ctx context.Context, skillID string) (*skill.Skill, error)

	// LootEntries returns the loot table rows for a monster template.
	LootEntries(ctx context.Context, monsterID int) ([]loot.Entry, error)

	// StackableItem returns the player's existing non-equipped stack of
	// itemID, or (nil, nil).
	StackableItem(ctx context.Context, playerID uuid.UUID, itemID int) (*item.InventoryItem, error)
	// UsedSlots returns every slot index occupied in the player's inventory.
	UsedSlots(ctx context.Context, playerID uuid.UUID) ([]int, error)
	CreateInventoryItem(ctx context.Context, it *item.InventoryItem) error
	SaveInventoryItem(ctx context.Context, it *item.InventoryItem) error
}

// Gateway opens units of work against the entity store.
type Gateway interface {
	// WithTx runs fn inside one transaction, committing on nil return and
	// rolling back on error (the error is propagated).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// DueEncounters returns ids of all encounters whose NextTick is at or
	// before now. Read-only; runs outside any unit of work.
	DueEncounters(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

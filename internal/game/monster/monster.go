// Package monster defines monster templates and live spawn instances.
package monster

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Template is the immutable stat blueprint shared by all spawns of a monster.
type Template struct {
	ID        int
	Name      string
	MaxHP     int
	Attack    int
	Defense   int
	ExpReward int
	// RoomID is the home room where this template can be engaged.
	RoomID int
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff Name is non-empty, MaxHP >= 1, and
// Attack, Defense, ExpReward are non-negative.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("monster template: name must not be empty")
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("monster template %q: max_hp must be >= 1, got %d", t.Name, t.MaxHP)
	}
	if t.Attack < 0 {
		return fmt.Errorf("monster template %q: attack must be >= 0, got %d", t.Name, t.Attack)
	}
	if t.Defense < 0 {
		return fmt.Errorf("monster template %q: defense must be >= 0, got %d", t.Name, t.Defense)
	}
	if t.ExpReward < 0 {
		return fmt.Errorf("monster template %q: exp_reward must be >= 0, got %d", t.Name, t.ExpReward)
	}
	return nil
}

// Spawn is one live monster instance in a room.
//
// Invariant: EngagedPlayerID is non-nil iff InCombat is true, and at most
// one encounter references a given spawn at a time.
type Spawn struct {
	ID         uuid.UUID
	TemplateID int
	RoomID     int
	CurrentHP  int

	InCombat        bool
	EngagedPlayerID *uuid.UUID

	SpawnedAt time.Time
	KilledAt  *time.Time
}

// NewSpawn creates a fresh spawn of tmpl at full HP in the given room.
//
// Postcondition: The spawn is alive, disengaged, and stamped with now.
func NewSpawn(tmpl *Template, roomID int, now time.Time) *Spawn {
	return &Spawn{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		RoomID:     roomID,
		CurrentHP:  tmpl.MaxHP,
		SpawnedAt:  now,
	}
}

// Alive reports whether the spawn still has hit points.
func (s *Spawn) Alive() bool {
	return s.CurrentHP > 0
}

// Engage marks the spawn as fighting playerID.
//
// Precondition: the spawn must be alive and disengaged.
func (s *Spawn) Engage(playerID uuid.UUID) {
	s.InCombat = true
	s.EngagedPlayerID = &playerID
}

// Disengage clears the combat flags, leaving the spawn available for
// re-engagement.
func (s *Spawn) Disengage() {
	s.InCombat = false
	s.EngagedPlayerID = nil
}

// ApplyDamage subtracts dmg from CurrentHP, flooring at zero.
//
// Precondition: dmg >= 0.
// Postcondition: CurrentHP >= 0; returns true if the spawn died.
func (s *Spawn) ApplyDamage(dmg int) bool {
	s.CurrentHP -= dmg
	if s.CurrentHP < 0 {
		s.CurrentHP = 0
	}
	return s.CurrentHP == 0
}

// MarkKilled stamps the kill time and clears combat flags.
//
// Postcondition: Alive() is false, InCombat is false, KilledAt is set.
func (s *Spawn) MarkKilled(now time.Time) {
	s.CurrentHP = 0
	s.KilledAt = &now
	s.Disengage()
}

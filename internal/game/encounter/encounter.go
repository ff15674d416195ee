// Package encounter implements the combat encounter engine: the lifecycle of
// one player fighting one monster spawn, driven by player commands and by the
// periodic tick scheduler.
package encounter

import (
	"time"

	"github.com/google/uuid"
)

// Encounter ties one player to one monster spawn for the duration of a fight.
//
// Invariant: exactly one Encounter may exist per player, and exactly one per
// spawn. It is created only by Engine.Start and deleted by exactly one of
// flee success, monster-death resolution, or player-death resolution.
type Encounter struct {
	ID       uuid.UUID
	PlayerID uuid.UUID
	SpawnID  uuid.UUID

	StartedAt time.Time
	LastTick  time.Time
	// NextTick is when the scheduler should next drive this encounter.
	NextTick time.Time

	// IsResting is reserved for rest-interrupt semantics; nothing sets it yet.
	IsResting bool
	// QueuedSkillID is reserved for queueing a skill onto the next attack.
	QueuedSkillID *string
}

// New creates an Encounter for playerID against spawnID, with the first tick
// due one tickInterval from now.
func New(playerID, spawnID uuid.UUID, now time.Time, tickInterval time.Duration) *Encounter {
	return &Encounter{
		ID:        uuid.New(),
		PlayerID:  playerID,
		SpawnID:   spawnID,
		StartedAt: now,
		LastTick:  now,
		NextTick:  now.Add(tickInterval),
	}
}

// Advance stamps a completed tick and schedules the next one.
func (e *Encounter) Advance(now time.Time, tickInterval time.Duration) {
	e.LastTick = now
	e.NextTick = now.Add(tickInterval)
}

// Package skill defines static skill definitions and their usage gates.
package skill

import (
	"fmt"

	"github.com/crownspire/mud/internal/game/character"
)

// Type classifies what a skill does.
type Type string

const (
	TypePhysical Type = "physical"
	TypeMagical  Type = "magical"
	TypeHealing  Type = "healing"
)

// Offensive reports whether the skill deals damage and therefore requires
// an active encounter.
func (t Type) Offensive() bool {
	return t == TypePhysical || t == TypeMagical
}

// TargetType describes what a skill can be aimed at. Only Self and
// SingleEnemy are reachable in one-on-one encounters; the rest are carried
// for the catalog.
type TargetType string

const (
	TargetSelf        TargetType = "self"
	TargetSingleEnemy TargetType = "single_enemy"
	TargetAllEnemies  TargetType = "all_enemies"
	TargetSingleAlly  TargetType = "single_ally"
	TargetAllAllies   TargetType = "all_allies"
)

// Skill is a static skill definition. Immutable at runtime.
type Skill struct {
	// SkillID is the internal identifier players invoke, e.g. "fireball".
	SkillID     string
	Name        string
	Description string

	Type       Type
	TargetType TargetType

	MPCost   int
	Cooldown int // seconds

	// BasePower is the flat damage/heal amount before stat scaling.
	BasePower int
	// ScalingStat names the attribute that scales the skill ("STR", "INT", ...).
	ScalingStat string
	// ScalingMultiplier is applied to the scaling stat's value.
	ScalingMultiplier float64

	// RequiredClass restricts the skill to one class; nil means any class.
	RequiredClass *character.Class
	RequiredLevel int
}

// GateError describes why a player may not use a skill.
type GateError struct {
	// Reason is a player-facing rejection sentence.
	Reason string
}

func (e *GateError) Error() string { return e.Reason }

// CheckGates verifies the class and level requirements for p.
//
// Postcondition: Returns nil iff p meets both gates; the returned error is a
// *GateError naming the unmet requirement. No state is mutated.
func (s *Skill) CheckGates(p *character.Player) error {
	if s.RequiredClass != nil && *s.RequiredClass != p.Class {
		return &GateError{Reason: fmt.Sprintf("This skill requires the %s class.", *s.RequiredClass)}
	}
	if s.RequiredLevel > p.Level {
		return &GateError{Reason: fmt.Sprintf("This skill requires level %d.", s.RequiredLevel)}
	}
	return nil
}

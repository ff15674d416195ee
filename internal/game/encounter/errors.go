package encounter

import "errors"

// Gating and state errors surfaced to the command layer. Each pairs with a
// narrative rejection string; none leaves any entity mutated.
var (
	// ErrAlreadyInCombat is returned by Start when the player owns an encounter.
	ErrAlreadyInCombat = errors.New("already in combat")
	// ErrNotInCombat is returned by Flee when the player owns no encounter.
	ErrNotInCombat = errors.New("not in combat")
	// ErrTargetNotFound is returned by Start when neither a live spawn nor a
	// template matches the target fragment in the player's room.
	ErrTargetNotFound = errors.New("target not found")
	// ErrSkillNotFound is returned by UseSkill for an unknown skill id.
	ErrSkillNotFound = errors.New("skill not found")
	// ErrGateNotMet is returned by UseSkill when the skill's class or level
	// requirement is not satisfied.
	ErrGateNotMet = errors.New("skill requirement not met")
	// ErrInsufficientMP is returned by UseSkill when the player cannot pay
	// the MP cost. The cost is not charged.
	ErrInsufficientMP = errors.New("insufficient mp")
	// ErrNotInCombatForAttack is returned by UseSkill for an offensive skill
	// cast outside combat. The MP cost is refunded.
	ErrNotInCombatForAttack = errors.New("attack skill requires combat")
	// ErrStaleEncounter is returned by Tick when the encounter or one of its
	// referenced entities vanished between scheduling and execution.
	ErrStaleEncounter = errors.New("stale encounter")
)

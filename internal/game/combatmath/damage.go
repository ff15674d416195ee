// Package combatmath holds the pure damage and scaling formulas used by the
// encounter engine. All functions are deterministic given a rng.Source.
package combatmath

import (
	"github.com/crownspire/mud/internal/game/rng"
)

// AutoAttackDamage computes a player's basic melee hit against a monster:
// max(1, str*2 - defense), scaled by the universal variance multiplier and
// truncated to an int.
//
// Postcondition: Returns a value >= 0 (the variance floor of an input of 1
// truncates to 0 at minimum multiplier 0.9).
func AutoAttackDamage(str, defense int, src rng.Source) int {
	base := str*2 - defense
	if base < 1 {
		base = 1
	}
	return int(float64(base) * rng.Variance(src))
}

// MonsterDamage computes a monster's hit against a player. Constitution
// mitigates at half value: max(1, attack - con/2), then variance.
func MonsterDamage(attack, con int, src rng.Source) int {
	base := attack - con/2
	if base < 1 {
		base = 1
	}
	return int(float64(base) * rng.Variance(src))
}

// SkillPower computes the effective power of a skill cast:
// basePower + statValue*multiplier, truncated to int, then variance,
// truncated again. Mirrors the two-step truncation of the damage pipeline.
//
// Precondition: basePower >= 0, statValue >= 0, multiplier >= 0.
func SkillPower(basePower, statValue int, multiplier float64, src rng.Source) int {
	power := basePower + int(float64(statValue)*multiplier)
	return int(float64(power) * rng.Variance(src))
}

// SkillDamage applies monster defense to a skill's power: max(1, power - defense).
// Variance is already folded into power by SkillPower.
func SkillDamage(power, defense int) int {
	dmg := power - defense
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// Heal raises current by power, capped at max.
//
// Precondition: 0 <= current <= max; power >= 0.
// Postcondition: newCurrent <= max; healed == newCurrent - current.
func Heal(current, max, power int) (newCurrent, healed int) {
	newCurrent = current + power
	if newCurrent > max {
		newCurrent = max
	}
	return newCurrent, newCurrent - current
}

// Package progression applies experience thresholds and class growth on
// level-up.
package progression

import (
	"github.com/crownspire/mud/internal/game/character"
)

// Growth is the per-level stat and resource delta for one class.
type Growth struct {
	Str, Dex, Int, Wis, Con int
	HP, MP                  int
}

// classGrowth is the fixed growth table for the three archetypes.
var classGrowth = map[character.Class]Growth{
	character.ClassWarrior: {Str: 3, Con: 2, Dex: 1, HP: 15, MP: 5},
	character.ClassMage:    {Int: 3, Wis: 2, Dex: 1, HP: 8, MP: 15},
	character.ClassPriest:  {Wis: 3, Int: 2, Con: 1, HP: 10, MP: 12},
}

// GrowthFor returns the per-level growth for class. Unknown classes get the
// warrior table so a malformed record still levels sanely.
func GrowthFor(class character.Class) Growth {
	if g, ok := classGrowth[class]; ok {
		return g
	}
	return classGrowth[character.ClassWarrior]
}

// Required returns the experience needed to advance from level.
//
// Precondition: level >= 1.
func Required(level int) int64 {
	return int64(level) * 100
}

// LevelUp records one level gained during Apply.
type LevelUp struct {
	NewLevel int
	NewMaxHP int
	NewMaxMP int
}

// Apply consumes accumulated experience on p, advancing it through as many
// level-ups as the pool supports. Each level applies the class growth table,
// then fully restores CurrentHP and CurrentMP to the new maximums.
//
// Precondition: p must not be nil; p.Level >= 1; p.Exp >= 0.
// Postcondition: p.Exp < Required(p.Level); one LevelUp per level gained,
// in order. Returns nil when no threshold was reached.
func Apply(p *character.Player) []LevelUp {
	var ups []LevelUp
	for p.Exp >= Required(p.Level) {
		p.Exp -= Required(p.Level)
		p.Level++

		g := GrowthFor(p.Class)
		p.Stats.Str += g.Str
		p.Stats.Dex += g.Dex
		p.Stats.Int += g.Int
		p.Stats.Wis += g.Wis
		p.Stats.Con += g.Con
		p.MaxHP += g.HP
		p.MaxMP += g.MP

		p.CurrentHP = p.MaxHP
		p.CurrentMP = p.MaxMP

		ups = append(ups, LevelUp{NewLevel: p.Level, NewMaxHP: p.MaxHP, NewMaxMP: p.MaxMP})
	}
	return ups
}

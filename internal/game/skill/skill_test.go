package skill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crownspire/mud/internal/game/character"
	"github.com/crownspire/mud/internal/game/skill"
)

func TestType_Offensive(t *testing.T) {
	assert.True(t, skill.TypePhysical.Offensive())
	assert.True(t, skill.TypeMagical.Offensive())
	assert.False(t, skill.TypeHealing.Offensive())
}

func TestSkill_CheckGates_ClassRestriction(t *testing.T) {
	mage := character.ClassMage
	fireball := &skill.Skill{
		SkillID:       "fireball",
		RequiredClass: &mage,
		RequiredLevel: 1,
	}

	warrior := &character.Player{Class: character.ClassWarrior, Level: 10}
	err := fireball.CheckGates(warrior)
	require.Error(t, err)
	var gateErr *skill.GateError
	require.ErrorAs(t, err, &gateErr)
	assert.Contains(t, gateErr.Reason, "mage")

	caster := &character.Player{Class: character.ClassMage, Level: 1}
	assert.NoError(t, fireball.CheckGates(caster))
}

func TestSkill_CheckGates_LevelRestriction(t *testing.T) {
	bash := &skill.Skill{SkillID: "bash", RequiredLevel: 5}

	low := &character.Player{Class: character.ClassWarrior, Level: 4}
	err := bash.CheckGates(low)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "level 5")

	high := &character.Player{Class: character.ClassWarrior, Level: 5}
	assert.NoError(t, bash.CheckGates(high))
}

func TestSkill_CheckGates_NilClassAllowsAll(t *testing.T) {
	heal := &skill.Skill{SkillID: "heal", RequiredLevel: 1}
	for _, class := range []character.Class{character.ClassWarrior, character.ClassMage, character.ClassPriest} {
		p := &character.Player{Class: class, Level: 1}
		assert.NoError(t, heal.CheckGates(p))
	}
}

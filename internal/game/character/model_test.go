package character_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/crownspire/mud/internal/game/character"
)

func TestClass_Valid(t *testing.T) {
	assert.True(t, character.ClassWarrior.Valid())
	assert.True(t, character.ClassMage.Valid())
	assert.True(t, character.ClassPriest.Valid())
	assert.False(t, character.Class("paladin").Valid())
	assert.False(t, character.Class("").Valid())
}

func TestStats_Value(t *testing.T) {
	s := character.Stats{Str: 12, Dex: 13, Int: 14, Wis: 15, Con: 16}
	assert.Equal(t, 12, s.Value("STR"))
	assert.Equal(t, 13, s.Value("DEX"))
	assert.Equal(t, 14, s.Value("INT"))
	assert.Equal(t, 15, s.Value("WIS"))
	assert.Equal(t, 16, s.Value("CON"))
	assert.Equal(t, 10, s.Value("LUCK"), "unknown stat keys fall back to the baseline 10")
}

// TestPlayer_ApplyDamage_FloorsAtZero verifies HP never goes negative.
func TestPlayer_ApplyDamage_FloorsAtZero(t *testing.T) {
	p := &character.Player{MaxHP: 50, CurrentHP: 10}
	dead := p.ApplyDamage(25)
	assert.True(t, dead)
	assert.Equal(t, 0, p.CurrentHP)
}

func TestPlayer_ApplyDamage_Survives(t *testing.T) {
	p := &character.Player{MaxHP: 50, CurrentHP: 30}
	dead := p.ApplyDamage(29)
	assert.False(t, dead)
	assert.Equal(t, 1, p.CurrentHP)
}

func TestPlayer_MP(t *testing.T) {
	p := &character.Player{MaxMP: 50, CurrentMP: 20}
	assert.True(t, p.HasMP(20))
	assert.False(t, p.HasMP(21))

	p.SpendMP(15)
	assert.Equal(t, 5, p.CurrentMP)

	// Refund never exceeds the maximum.
	p.RefundMP(100)
	assert.Equal(t, 50, p.CurrentMP)
}

func TestNewPlayer(t *testing.T) {
	now := time.Now().UTC()
	p := character.NewPlayer("Mira", character.ClassMage, now)

	assert.NoError(t, p.Validate())
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, int64(0), p.Exp)
	assert.Equal(t, 100, p.CurrentHP)
	assert.Equal(t, 50, p.CurrentMP)
	assert.Equal(t, 10, p.Stats.Int)
	assert.Equal(t, 1, p.RoomID)
	assert.Equal(t, now, p.CreatedAt)
}

func TestPlayer_Validate(t *testing.T) {
	valid := character.Player{
		Name: "Aldric", Class: character.ClassWarrior, Level: 1,
		MaxHP: 100, CurrentHP: 100, MaxMP: 50, CurrentMP: 50,
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*character.Player)
	}{
		{"empty name", func(p *character.Player) { p.Name = "" }},
		{"bad class", func(p *character.Player) { p.Class = "bard" }},
		{"zero level", func(p *character.Player) { p.Level = 0 }},
		{"negative exp", func(p *character.Player) { p.Exp = -1 }},
		{"hp over max", func(p *character.Player) { p.CurrentHP = 101 }},
		{"negative mp", func(p *character.Player) { p.CurrentMP = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

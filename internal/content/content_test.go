package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crownspire/mud/internal/game/character"
	"github.com/crownspire/mud/internal/game/skill"
)

const roomsYAML = `
rooms:
  - id: 1
    name: Village Square
    description: The heart of the starting village.
  - id: 2
    name: Slime Meadow
    description: A damp meadow crawling with slimes.
`

const itemsYAML = `
items:
  - id: 101
    name: Slime Gel
    type: consumable
    properties:
      heal: 5
  - id: 102
    name: Rusty Sword
    type: weapon
    properties:
      atk: 3
`

const skillsYAML = `
skills:
  - skill_id: fireball
    name: Fireball
    description: Hurls a ball of fire.
    type: magical
    target_type: single_enemy
    mp_cost: 10
    base_power: 15
    scaling_stat: INT
    scaling_multiplier: 1.5
    required_class: mage
    required_level: 1
  - skill_id: heal
    name: Heal
    description: Mends wounds.
    type: healing
    target_type: self
    mp_cost: 8
    base_power: 20
    scaling_stat: WIS
    scaling_multiplier: 1.0
`

const monstersYAML = `
monsters:
  - id: 1
    name: Slime
    max_hp: 30
    attack: 5
    defense: 2
    exp_reward: 10
    room_id: 2
    loot:
      - item_id: 101
        drop_rate: 50
        min_quantity: 1
        max_quantity: 2
`

func writeCatalog(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func validCatalogFiles() map[string]string {
	return map[string]string{
		"rooms.yaml":    roomsYAML,
		"items.yaml":    itemsYAML,
		"skills.yaml":   skillsYAML,
		"monsters.yaml": monstersYAML,
	}
}

func TestLoadDir(t *testing.T) {
	dir := writeCatalog(t, validCatalogFiles())

	cat, err := LoadDir(dir)
	require.NoError(t, err)

	require.Len(t, cat.Rooms, 2)
	assert.Equal(t, "Village Square", cat.Rooms[0].Name)

	require.Len(t, cat.Items, 2)
	assert.Equal(t, 101, cat.Items[0].ID)
	assert.JSONEq(t, `{"heal": 5}`, string(cat.Items[0].Properties))

	require.Len(t, cat.Skills, 2)
	fireball := cat.Skills[0]
	assert.Equal(t, skill.TypeMagical, fireball.Type)
	require.NotNil(t, fireball.RequiredClass)
	assert.Equal(t, character.ClassMage, *fireball.RequiredClass)
	assert.Nil(t, cat.Skills[1].RequiredClass)

	require.Len(t, cat.Monsters, 1)
	slime := cat.Monsters[0]
	assert.Equal(t, "Slime", slime.Template.Name)
	require.Len(t, slime.Loot, 1)
	assert.Equal(t, 50.0, slime.Loot[0].DropRate)
	assert.Equal(t, 1, slime.Loot[0].MonsterID)
}

func TestLoadDirMissingFile(t *testing.T) {
	files := validCatalogFiles()
	delete(files, "skills.yaml")
	dir := writeCatalog(t, files)

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestLoadDirRejectsBadContent(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"monster in unknown room", "monsters.yaml", `
monsters:
  - id: 1
    name: Ghost
    max_hp: 10
    attack: 1
    defense: 0
    exp_reward: 5
    room_id: 99
`},
		{"loot references unknown item", "monsters.yaml", `
monsters:
  - id: 1
    name: Slime
    max_hp: 30
    attack: 5
    defense: 2
    exp_reward: 10
    room_id: 2
    loot:
      - item_id: 999
        drop_rate: 50
        min_quantity: 1
        max_quantity: 1
`},
		{"drop rate over 100", "monsters.yaml", `
monsters:
  - id: 1
    name: Slime
    max_hp: 30
    attack: 5
    defense: 2
    exp_reward: 10
    room_id: 2
    loot:
      - item_id: 101
        drop_rate: 150
        min_quantity: 1
        max_quantity: 1
`},
		{"skill with unknown class", "skills.yaml", `
skills:
  - skill_id: smite
    name: Smite
    type: magical
    target_type: single_enemy
    mp_cost: 5
    base_power: 10
    scaling_stat: WIS
    scaling_multiplier: 1.0
    required_class: paladin
`},
		{"skill with unknown type", "skills.yaml", `
skills:
  - skill_id: taunt
    name: Taunt
    type: social
    target_type: single_enemy
    mp_cost: 5
    base_power: 10
    scaling_stat: STR
    scaling_multiplier: 1.0
`},
		{"duplicate item ids", "items.yaml", `
items:
  - id: 101
    name: Slime Gel
    type: consumable
  - id: 101
    name: Slime Gel Copy
    type: consumable
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := validCatalogFiles()
			files[tt.file] = tt.body
			dir := writeCatalog(t, files)
			_, err := LoadDir(dir)
			assert.Error(t, err)
		})
	}
}

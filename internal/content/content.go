// Package content loads the static game catalogs (rooms, items, skills,
// monsters and their loot tables) from YAML files.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/crownspire/mud/internal/game/character"
	"github.com/crownspire/mud/internal/game/loot"
	"github.com/crownspire/mud/internal/game/monster"
	"github.com/crownspire/mud/internal/game/skill"
	"github.com/crownspire/mud/internal/game/world"
)

// Item is a catalog item template with its import-ready properties blob.
type Item struct {
	ID         int
	Name       string
	Type       string
	Properties []byte
}

// Monster pairs a template with its loot table.
type Monster struct {
	Template monster.Template
	Loot     []loot.Entry
}

// Catalog is the full static content set for one world.
type Catalog struct {
	Rooms    []world.Room
	Items    []Item
	Skills   []skill.Skill
	Monsters []Monster
}

// yamlRoomFile is the top-level structure of rooms.yaml.
type yamlRoomFile struct {
	Rooms []yamlRoom `yaml:"rooms"`
}

type yamlRoom struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// yamlItemFile is the top-level structure of items.yaml.
type yamlItemFile struct {
	Items []yamlItem `yaml:"items"`
}

type yamlItem struct {
	ID         int            `yaml:"id"`
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Properties map[string]any `yaml:"properties"`
}

// yamlSkillFile is the top-level structure of skills.yaml.
type yamlSkillFile struct {
	Skills []yamlSkill `yaml:"skills"`
}

type yamlSkill struct {
	SkillID           string  `yaml:"skill_id"`
	Name              string  `yaml:"name"`
	Description       string  `yaml:"description"`
	Type              string  `yaml:"type"`
	TargetType        string  `yaml:"target_type"`
	MPCost            int     `yaml:"mp_cost"`
	Cooldown          int     `yaml:"cooldown"`
	BasePower         int     `yaml:"base_power"`
	ScalingStat       string  `yaml:"scaling_stat"`
	ScalingMultiplier float64 `yaml:"scaling_multiplier"`
	RequiredClass     string  `yaml:"required_class"`
	RequiredLevel     int     `yaml:"required_level"`
}

// yamlMonsterFile is the top-level structure of monsters.yaml.
type yamlMonsterFile struct {
	Monsters []yamlMonster `yaml:"monsters"`
}

type yamlMonster struct {
	ID        int             `yaml:"id"`
	Name      string          `yaml:"name"`
	MaxHP     int             `yaml:"max_hp"`
	Attack    int             `yaml:"attack"`
	Defense   int             `yaml:"defense"`
	ExpReward int             `yaml:"exp_reward"`
	RoomID    int             `yaml:"room_id"`
	Loot      []yamlLootEntry `yaml:"loot"`
}

type yamlLootEntry struct {
	ItemID      int     `yaml:"item_id"`
	DropRate    float64 `yaml:"drop_rate"`
	MinQuantity int     `yaml:"min_quantity"`
	MaxQuantity int     `yaml:"max_quantity"`
}

// LoadDir reads rooms.yaml, items.yaml, skills.yaml, and monsters.yaml from
// dir and returns a validated catalog.
//
// Precondition: dir must contain all four catalog files.
// Postcondition: Every returned entity passes its Validate; loot entries
// reference item ids present in the catalog.
func LoadDir(dir string) (*Catalog, error) {
	var cat Catalog

	if err := loadYAML(filepath.Join(dir, "rooms.yaml"), func(data []byte) error {
		var file yamlRoomFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return err
		}
		for _, yr := range file.Rooms {
			r := world.Room{ID: yr.ID, Name: yr.Name, Description: yr.Description}
			if err := r.Validate(); err != nil {
				return fmt.Errorf("room %d: %w", yr.ID, err)
			}
			cat.Rooms = append(cat.Rooms, r)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadYAML(filepath.Join(dir, "items.yaml"), func(data []byte) error {
		var file yamlItemFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return err
		}
		for _, yi := range file.Items {
			it, err := convertItem(yi)
			if err != nil {
				return err
			}
			cat.Items = append(cat.Items, it)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadYAML(filepath.Join(dir, "skills.yaml"), func(data []byte) error {
		var file yamlSkillFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return err
		}
		for _, ys := range file.Skills {
			sk, err := convertSkill(ys)
			if err != nil {
				return err
			}
			cat.Skills = append(cat.Skills, sk)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := loadYAML(filepath.Join(dir, "monsters.yaml"), func(data []byte) error {
		var file yamlMonsterFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return err
		}
		for _, ym := range file.Monsters {
			m, err := convertMonster(ym)
			if err != nil {
				return err
			}
			cat.Monsters = append(cat.Monsters, m)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := cat.validateReferences(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func loadYAML(path string, parse func(data []byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	if err := parse(data); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func convertItem(yi yamlItem) (Item, error) {
	if yi.ID < 1 {
		return Item{}, fmt.Errorf("item %q: id must be >= 1, got %d", yi.Name, yi.ID)
	}
	if yi.Name == "" {
		return Item{}, fmt.Errorf("item %d: name must not be empty", yi.ID)
	}
	props := yi.Properties
	if props == nil {
		props = map[string]any{}
	}
	blob, err := json.Marshal(props)
	if err != nil {
		return Item{}, fmt.Errorf("item %d: encoding properties: %w", yi.ID, err)
	}
	return Item{ID: yi.ID, Name: yi.Name, Type: yi.Type, Properties: blob}, nil
}

func convertSkill(ys yamlSkill) (skill.Skill, error) {
	sk := skill.Skill{
		SkillID:           ys.SkillID,
		Name:              ys.Name,
		Description:       ys.Description,
		Type:              skill.Type(ys.Type),
		TargetType:        skill.TargetType(ys.TargetType),
		MPCost:            ys.MPCost,
		Cooldown:          ys.Cooldown,
		BasePower:         ys.BasePower,
		ScalingStat:       ys.ScalingStat,
		ScalingMultiplier: ys.ScalingMultiplier,
		RequiredLevel:     ys.RequiredLevel,
	}
	if sk.SkillID == "" {
		return skill.Skill{}, fmt.Errorf("skill %q: skill_id must not be empty", ys.Name)
	}
	if !sk.Type.Offensive() && sk.Type != skill.TypeHealing {
		return skill.Skill{}, fmt.Errorf("skill %q: unknown type %q", sk.SkillID, ys.Type)
	}
	if ys.RequiredClass != "" {
		class := character.Class(ys.RequiredClass)
		if !class.Valid() {
			return skill.Skill{}, fmt.Errorf("skill %q: unknown class %q", sk.SkillID, ys.RequiredClass)
		}
		sk.RequiredClass = &class
	}
	return sk, nil
}

func convertMonster(ym yamlMonster) (Monster, error) {
	m := Monster{
		Template: monster.Template{
			ID:        ym.ID,
			Name:      ym.Name,
			MaxHP:     ym.MaxHP,
			Attack:    ym.Attack,
			Defense:   ym.Defense,
			ExpReward: ym.ExpReward,
			RoomID:    ym.RoomID,
		},
	}
	if err := m.Template.Validate(); err != nil {
		return Monster{}, fmt.Errorf("monster %d: %w", ym.ID, err)
	}
	for _, yl := range ym.Loot {
		e := loot.Entry{
			MonsterID:   ym.ID,
			ItemID:      yl.ItemID,
			DropRate:    yl.DropRate,
			MinQuantity: yl.MinQuantity,
			MaxQuantity: yl.MaxQuantity,
		}
		if err := e.Validate(); err != nil {
			return Monster{}, fmt.Errorf("monster %d loot item %d: %w", ym.ID, yl.ItemID, err)
		}
		m.Loot = append(m.Loot, e)
	}
	return m, nil
}

// validateReferences checks cross-catalog integrity: monsters home in known
// rooms, loot references known items, skill ids are unique.
func (c *Catalog) validateReferences() error {
	rooms := map[int]bool{}
	for _, r := range c.Rooms {
		rooms[r.ID] = true
	}
	items := map[int]bool{}
	for _, it := range c.Items {
		if items[it.ID] {
			return fmt.Errorf("duplicate item id %d", it.ID)
		}
		items[it.ID] = true
	}
	skills := map[string]bool{}
	for _, sk := range c.Skills {
		if skills[sk.SkillID] {
			return fmt.Errorf("duplicate skill id %q", sk.SkillID)
		}
		skills[sk.SkillID] = true
	}
	for _, m := range c.Monsters {
		if !rooms[m.Template.RoomID] {
			return fmt.Errorf("monster %d homes in unknown room %d", m.Template.ID, m.Template.RoomID)
		}
		for _, e := range m.Loot {
			if !items[e.ItemID] {
				return fmt.Errorf("monster %d drops unknown item %d", m.Template.ID, e.ItemID)
			}
		}
	}
	if len(c.Rooms) == 0 {
		return errors.New("catalog has no rooms")
	}
	return nil
}

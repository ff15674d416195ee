package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crownspire/mud/internal/game/loot"
	"github.com/crownspire/mud/internal/game/monster"
	"github.com/crownspire/mud/internal/game/skill"
	"github.com/crownspire/mud/internal/game/world"
)

// CatalogRepository writes static game content: rooms, items, skills,
// monster templates, and loot tables. Imports are idempotent upserts keyed
// on catalog ids so re-running the importer converges on the file contents.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a CatalogRepository backed by the given pool.
func NewCatalogRepository(pool *Pool) *CatalogRepository {
	return &CatalogRepository{db: pool.DB()}
}

// UpsertRoom inserts or updates one room.
func (r *CatalogRepository) UpsertRoom(ctx context.Context, rm *world.Room) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rooms (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description`,
		rm.ID, rm.Name, rm.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting room %d: %w", rm.ID, err)
	}
	return nil
}

// UpsertItem inserts or updates one item template.
func (r *CatalogRepository) UpsertItem(ctx context.Context, id int, name, itemType string, properties []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO items (id, name, type, properties)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type, properties = EXCLUDED.properties`,
		id, name, itemType, properties,
	)
	if err != nil {
		return fmt.Errorf("upserting item %d: %w", id, err)
	}
	return nil
}

// UpsertSkill inserts or updates one skill definition.
func (r *CatalogRepository) UpsertSkill(ctx context.Context, sk *skill.Skill) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO skills
			(skill_id, name, description, type, target_type,
			 mp_cost, cooldown, base_power, scaling_stat, scaling_multiplier,
			 required_class, required_level)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (skill_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			type = EXCLUDED.type,
			target_type = EXCLUDED.target_type,
			mp_cost = EXCLUDED.mp_cost,
			cooldown = EXCLUDED.cooldown,
			base_power = EXCLUDED.base_power,
			scaling_stat = EXCLUDED.scaling_stat,
			scaling_multiplier = EXCLUDED.scaling_multiplier,
			required_class = EXCLUDED.required_class,
			required_level = EXCLUDED.required_level`,
		sk.SkillID, sk.Name, sk.Description, sk.Type, sk.TargetType,
		sk.MPCost, sk.Cooldown, sk.BasePower, sk.ScalingStat, sk.ScalingMultiplier,
		sk.RequiredClass, sk.RequiredLevel,
	)
	if err != nil {
		return fmt.Errorf("upserting skill %q: %w", sk.SkillID, err)
	}
	return nil
}

// UpsertMonsterTemplate inserts or updates one monster template.
func (r *CatalogRepository) UpsertMonsterTemplate(ctx context.Context, m *monster.Template) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO monster_templates (id, name, max_hp, attack, defense, exp_reward, room_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			max_hp = EXCLUDED.max_hp,
			attack = EXCLUDED.attack,
			defense = EXCLUDED.defense,
			exp_reward = EXCLUDED.exp_reward,
			room_id = EXCLUDED.room_id`,
		m.ID, m.Name, m.MaxHP, m.Attack, m.Defense, m.ExpReward, m.RoomID,
	)
	if err != nil {
		return fmt.Errorf("upserting monster template %d: %w", m.ID, err)
	}
	return nil
}

// ReplaceLootTable replaces the full loot table of one monster template.
//
// Postcondition: The monster's loot entries exactly match entries; stale
// rows from previous imports are gone.
func (r *CatalogRepository) ReplaceLootTable(ctx context.Context, monsterID int, entries []loot.Entry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning loot table transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM loot_entries WHERE monster_id = $1`, monsterID); err != nil {
		return fmt.Errorf("clearing loot table for monster %d: %w", monsterID, err)
	}
	for _, e := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO loot_entries (monster_id, item_id, drop_rate, min_quantity, max_quantity)
			VALUES ($1,$2,$3,$4,$5)`,
			monsterID, e.ItemID, e.DropRate, e.MinQuantity, e.MaxQuantity,
		); err != nil {
			return fmt.Errorf("inserting loot entry for item %d: %w", e.ItemID, err)
		}
	}
	return tx.Commit(ctx)
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crownspire/mud/internal/game/character"
	"github.com/crownspire/mud/internal/game/encounter"
	"github.com/crownspire/mud/internal/game/item"
	"github.com/crownspire/mud/internal/game/loot"
	"github.com/crownspire/mud/internal/game/monster"
	"github.com/crownspire/mud/internal/game/skill"
)

// Store exposes combat persistence as transactional units of work. It
// implements encounter.Gateway.
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a Store backed by the given pool.
//
// Precondition: pool must be a connected Pool.
func NewStore(pool *Pool) *Store {
	return &Store{db: pool.DB()}
}

// WithTx runs fn inside one database transaction.
//
// Postcondition: The transaction commits iff fn returns nil; any error from
// fn rolls back and is returned unchanged for sentinel matching.
func (s *Store) WithTx(ctx context.Context, fn func(tx encounter.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DueEncounters returns ids of encounters whose next tick is at or before now.
func (s *Store) DueEncounters(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id FROM encounters WHERE next_tick <= $1`, now)
	if err != nil {
		return nil, fmt.Errorf("querying due encounters: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning encounter id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// storeTx implements encounter.Tx over an open pgx transaction.
type storeTx struct {
	tx pgx.Tx
}

const playerColumns = `id, name, class, level, exp, max_hp, current_hp, max_mp, current_mp,
	stat_str, stat_dex, stat_int, stat_wis, stat_con, room_id, created_at, updated_at`

func scanPlayer(row pgx.Row) (*character.Player, error) {
	var p character.Player
	err := row.Scan(
		&p.ID, &p.Name, &p.Class, &p.Level, &p.Exp,
		&p.MaxHP, &p.CurrentHP, &p.MaxMP, &p.CurrentMP,
		&p.Stats.Str, &p.Stats.Dex, &p.Stats.Int, &p.Stats.Wis, &p.Stats.Con,
		&p.RoomID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *storeTx) Player(ctx context.Context, id uuid.UUID) (*character.Player, error) {
	p, err := scanPlayer(t.tx.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, encounter.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying player: %w", err)
	}
	return p, nil
}

func (t *storeTx) SavePlayer(ctx context.Context, p *character.Player) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE players SET
			level = $2, exp = $3,
			max_hp = $4, current_hp = $5, max_mp = $6, current_mp = $7,
			stat_str = $8, stat_dex = $9, stat_int = $10, stat_wis = $11, stat_con = $12,
			room_id = $13, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Level, p.Exp,
		p.MaxHP, p.CurrentHP, p.MaxMP, p.CurrentMP,
		p.Stats.Str, p.Stats.Dex, p.Stats.Int, p.Stats.Wis, p.Stats.Con,
		p.RoomID,
	)
	if err != nil {
		return fmt.Errorf("updating player: %w", err)
	}
	return nil
}

const templateColumns = `id, name, max_hp, attack, defense, exp_reward, room_id`

func scanTemplate(row pgx.Row) (*monster.Template, error) {
	var m monster.Template
	err := row.Scan(&m.ID, &m.Name, &m.MaxHP, &m.Attack, &m.Defense, &m.ExpReward, &m.RoomID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *storeTx) Template(ctx context.Context, id int) (*monster.Template, error) {
	m, err := scanTemplate(t.tx.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM monster_templates WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, encounter.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying monster template: %w", err)
	}
	return m, nil
}

func (t *storeTx) FindTemplate(ctx context.Context, roomID int, nameFragment string) (*monster.Template, error) {
	m, err := scanTemplate(t.tx.QueryRow(ctx, `
		SELECT `+templateColumns+` FROM monster_templates
		WHERE room_id = $1 AND name ILIKE '%' || $2 || '%'
		ORDER BY id LIMIT 1`,
		roomID, nameFragment))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("searching monster templates: %w", err)
	}
	return m, nil
}

const spawnColumns = `id, template_id, room_id, current_hp, in_combat, engaged_player_id, spawned_at, killed_at`

func scanSpawn(row pgx.Row) (*monster.Spawn, error) {
	var s monster.Spawn
	err := row.Scan(
		&s.ID, &s.TemplateID, &s.RoomID, &s.CurrentHP,
		&s.InCombat, &s.EngagedPlayerID, &s.SpawnedAt, &s.KilledAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *storeTx) Spawn(ctx context.Context, id uuid.UUID) (*monster.Spawn, error) {
	s, err := scanSpawn(t.tx.QueryRow(ctx,
		`SELECT `+spawnColumns+` FROM monster_spawns WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, encounter.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying spawn: %w", err)
	}
	return s, nil
}

func (t *storeTx) FindSpawn(ctx context.Context, roomID int, nameFragment string) (*monster.Spawn, error) {
	s, err := scanSpawn(t.tx.QueryRow(ctx, `
		SELECT s.id, s.template_id, s.room_id, s.current_hp, s.in_combat,
		       s.engaged_player_id, s.spawned_at, s.killed_at
		FROM monster_spawns s
		JOIN monster_templates m ON m.id = s.template_id
		WHERE s.room_id = $1
		  AND s.current_hp > 0
		  AND s.killed_at IS NULL
		  AND NOT s.in_combat
		  AND m.name ILIKE '%' || $2 || '%'
		ORDER BY s.spawned_at LIMIT 1`,
		roomID, nameFragment))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("searching spawns: %w", err)
	}
	return s, nil
}

func (t *storeTx) CreateSpawn(ctx context.Context, s *monster.Spawn) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO monster_spawns
			(id, template_id, room_id, current_hp, in_combat, engaged_player_id, spawned_at, killed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.TemplateID, s.RoomID, s.CurrentHP, s.InCombat, s.EngagedPlayerID, s.SpawnedAt, s.KilledAt,
	)
	if err != nil {
		return fmt.Errorf("inserting spawn: %w", err)
	}
	return nil
}

func (t *storeTx) SaveSpawn(ctx context.Context, s *monster.Spawn) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE monster_spawns SET
			current_hp = $2, in_combat = $3, engaged_player_id = $4, killed_at = $5
		WHERE id = $1`,
		s.ID, s.CurrentHP, s.InCombat, s.EngagedPlayerID, s.KilledAt,
	)
	if err != nil {
		return fmt.Errorf("updating spawn: %w", err)
	}
	return nil
}

func (t *storeTx) DeleteSpawn(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM monster_spawns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting spawn: %w", err)
	}
	return nil
}

const encounterColumns = `id, player_id, spawn_id, started_at, last_tick, next_tick, is_resting, queued_skill_id`

func scanEncounter(row pgx.Row) (*encounter.Encounter, error) {
	var e encounter.Encounter
	err := row.Scan(
		&e.ID, &e.PlayerID, &e.SpawnID,
		&e.StartedAt, &e.LastTick, &e.NextTick,
		&e.IsResting, &e.QueuedSkillID,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (t *storeTx) Encounter(ctx context.Context, id uuid.UUID) (*encounter.Encounter, error) {
	e, err := scanEncounter(t.tx.QueryRow(ctx,
		`SELECT `+encounterColumns+` FROM encounters WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, encounter.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying encounter: %w", err)
	}
	return e, nil
}

func (t *storeTx) EncounterByPlayer(ctx context.Context, playerID uuid.UUID) (*encounter.Encounter, error) {
	e, err := scanEncounter(t.tx.QueryRow(ctx,
		`SELECT `+encounterColumns+` FROM encounters WHERE player_id = $1`, playerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying encounter by player: %w", err)
	}
	return e, nil
}

func (t *storeTx) CreateEncounter(ctx context.Context, e *encounter.Encounter) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO encounters
			(id, player_id, spawn_id, started_at, last_tick, next_tick, is_resting, queued_skill_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.PlayerID, e.SpawnID, e.StartedAt, e.LastTick, e.NextTick, e.IsResting, e.QueuedSkillID,
	)
	if err != nil {
		return fmt.Errorf("inserting encounter: %w", err)
	}
	return nil
}

func (t *storeTx) SaveEncounter(ctx context.Context, e *encounter.Encounter) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE encounters SET
			last_tick = $2, next_tick = $3, is_resting = $4, queued_skill_id = $5
		WHERE id = $1`,
		e.ID, e.LastTick, e.NextTick, e.IsResting, e.QueuedSkillID,
	)
	if err != nil {
		return fmt.Errorf("updating encounter: %w", err)
	}
	return nil
}

func (t *storeTx) DeleteEncounter(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM encounters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting encounter: %w", err)
	}
	return nil
}

func (t *storeTx) Skill(ctx context.Context, skillID string) (*skill.Skill, error) {
	var sk skill.Skill
	err := t.tx.QueryRow(ctx, `
		SELECT skill_id, name, description, type, target_type,
		       mp_cost, cooldown, base_power, scaling_stat, scaling_multiplier,
		       required_class, required_level
		FROM skills WHERE skill_id = $1`, skillID,
	).Scan(
		&sk.SkillID, &sk.Name, &sk.Description, &sk.Type, &sk.TargetType,
		&sk.MPCost, &sk.Cooldown, &sk.BasePower, &sk.ScalingStat, &sk.ScalingMultiplier,
		&sk.RequiredClass, &sk.RequiredLevel,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, encounter.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying skill: %w", err)
	}
	return &sk, nil
}

func (t *storeTx) LootEntries(ctx context.Context, monsterID int) ([]loot.Entry, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT le.id, le.monster_id, le.item_id, i.name,
		       le.drop_rate, le.min_quantity, le.max_quantity
		FROM loot_entries le
		JOIN items i ON i.id = le.item_id
		WHERE le.monster_id = $1
		ORDER BY le.id`, monsterID)
	if err != nil {
		return nil, fmt.Errorf("querying loot entries: %w", err)
	}
	defer rows.Close()

	var entries []loot.Entry
	for rows.Next() {
		var e loot.Entry
		if err := rows.Scan(
			&e.ID, &e.MonsterID, &e.ItemID, &e.ItemName,
			&e.DropRate, &e.MinQuantity, &e.MaxQuantity,
		); err != nil {
			return nil, fmt.Errorf("scanning loot entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const inventoryColumns = `id, player_id, item_id, quantity, equipped, equipped_slot, slot_index`

func (t *storeTx) StackableItem(ctx context.Context, playerID uuid.UUID, itemID int) (*item.InventoryItem, error) {
	var it item.InventoryItem
	err := t.tx.QueryRow(ctx, `
		SELECT `+inventoryColumns+` FROM inventory_items
		WHERE player_id = $1 AND item_id = $2 AND NOT equipped
		ORDER BY slot_index LIMIT 1`,
		playerID, itemID,
	).Scan(
		&it.ID, &it.PlayerID, &it.ItemID, &it.Quantity,
		&it.Equipped, &it.EquippedSlot, &it.SlotIndex,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying stackable item: %w", err)
	}
	return &it, nil
}

func (t *storeTx) UsedSlots(ctx context.Context, playerID uuid.UUID) ([]int, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT slot_index FROM inventory_items WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying used slots: %w", err)
	}
	defer rows.Close()

	var used []int
	for rows.Next() {
		var idx int
		if err := rows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("scanning slot index: %w", err)
		}
		used = append(used, idx)
	}
	return used, rows.Err()
}

func (t *storeTx) CreateInventoryItem(ctx context.Context, it *item.InventoryItem) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO inventory_items
			(id, player_id, item_id, quantity, equipped, equipped_slot, slot_index)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		it.ID, it.PlayerID, it.ItemID, it.Quantity, it.Equipped, it.EquippedSlot, it.SlotIndex,
	)
	if err != nil {
		return fmt.Errorf("inserting inventory item: %w", err)
	}
	return nil
}

func (t *storeTx) SaveInventoryItem(ctx context.Context, it *item.InventoryItem) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE inventory_items SET
			quantity = $2, equipped = $3, equipped_slot = $4, slot_index = $5
		WHERE id = $1`,
		it.ID, it.Quantity, it.Equipped, it.EquippedSlot, it.SlotIndex,
	)
	if err != nil {
		return fmt.Errorf("updating inventory item: %w", err)
	}
	return nil
}

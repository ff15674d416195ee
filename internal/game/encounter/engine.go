package encounter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crownspire/mud/internal/game/character"
	"github.com/crownspire/mud/internal/game/combatmath"
	"github.com/crownspire/mud/internal/game/item"
	"github.com/crownspire/mud/internal/game/loot"
	"github.com/crownspire/mud/internal/game/monster"
	"github.com/crownspire/mud/internal/game/progression"
	"github.com/crownspire/mud/internal/game/rng"
	"github.com/crownspire/mud/internal/game/skill"
)

// Config holds the tunable combat constants.
type Config struct {
	// TickInterval is the delay between auto-attack exchanges.
	TickInterval time.Duration
	// FleeChancePct is the flee success probability in percent.
	FleeChancePct int
	// RespawnRoomID is where a dead player is relocated.
	RespawnRoomID int
}

// withDefaults fills zero fields with the standard combat constants.
func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = 3 * time.Second
	}
	if c.FleeChancePct <= 0 {
		c.FleeChancePct = 50
	}
	if c.RespawnRoomID <= 0 {
		c.RespawnRoomID = 1
	}
	return c
}

// TickResult is the structured outcome of one encounter tick, consumed by
// the scheduler's subscribers for delivery to clients.
type TickResult struct {
	EncounterID uuid.UUID
	PlayerID    uuid.UUID

	Message     string
	CombatEnded bool
	PlayerDied  bool
	MonsterDied bool

	ExpGained int
	Loot      []loot.Drop
	LevelUps  []progression.LevelUp

	PlayerHP     int
	PlayerMaxHP  int
	MonsterHP    int
	MonsterMaxHP int
}

// Engine owns the lifecycle of combat encounters. It is the sole writer of
// Encounter rows, MonsterSpawn combat flags, and player/monster resource
// pools during combat.
//
// Per-player (and therefore per-encounter and per-spawn) operations are
// serialised by a keyed lock held for the whole read-modify-write; operations
// on different players proceed in parallel.
type Engine struct {
	store  Gateway
	src    rng.Source
	cfg    Config
	logger *zap.Logger
	locks  *keyedMutex
}

// NewEngine creates an Engine backed by the given gateway and random source.
//
// Precondition: store, src, and logger must be non-nil.
// Postcondition: Returns a non-nil Engine with defaulted Config fields.
func NewEngine(store Gateway, src rng.Source, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		src:    src,
		cfg:    cfg.withDefaults(),
		logger: logger,
		locks:  newKeyedMutex(),
	}
}

// Start engages the player with a monster matching target in their current
// room. It first searches live, non-engaged spawns; failing that it falls
// back to templates homed in the room and lazily creates a fresh spawn at
// full HP. The spawn engagement and the encounter row are written in one
// unit of work.
//
// Postcondition: On success the player owns exactly one encounter and the
// spawn is engaged. Returns (narrative, ErrAlreadyInCombat) if the player is
// already fighting, (narrative, ErrTargetNotFound) if nothing matches; no
// mutation in either case.
func (e *Engine) Start(ctx context.Context, playerID uuid.UUID, target string) (string, error) {
	unlock := e.locks.Lock(playerID)
	defer unlock()

	var msg string
	err := e.store.WithTx(ctx, func(tx Tx) error {
		p, err := tx.Player(ctx, playerID)
		if err != nil {
			return fmt.Errorf("loading player: %w", err)
		}

		existing, err := tx.EncounterByPlayer(ctx, playerID)
		if err != nil {
			return fmt.Errorf("checking active encounter: %w", err)
		}
		if existing != nil {
			return ErrAlreadyInCombat
		}

		now := time.Now().UTC()

		sp, err := tx.FindSpawn(ctx, p.RoomID, target)
		if err != nil {
			return fmt.Errorf("searching spawns: %w", err)
		}

		var tmpl *monster.Template
		if sp != nil {
			tmpl, err = tx.Template(ctx, sp.TemplateID)
			if err != nil {
				return fmt.Errorf("loading template %d: %w", sp.TemplateID, err)
			}
		} else {
			tmpl, err = tx.FindTemplate(ctx, p.RoomID, target)
			if err != nil {
				return fmt.Errorf("searching templates: %w", err)
			}
			if tmpl == nil {
				return ErrTargetNotFound
			}
			sp = monster.NewSpawn(tmpl, p.RoomID, now)
			if err := tx.CreateSpawn(ctx, sp); err != nil {
				return fmt.Errorf("creating spawn: %w", err)
			}
		}

		sp.Engage(playerID)
		if err := tx.SaveSpawn(ctx, sp); err != nil {
			return fmt.Errorf("engaging spawn: %w", err)
		}
		if err := tx.CreateEncounter(ctx, New(playerID, sp.ID, now, e.cfg.TickInterval)); err != nil {
			return fmt.Errorf("creating encounter: %w", err)
		}

		msg = fmt.Sprintf("Combat started with %s!\n%s HP: %d/%d",
			tmpl.Name, tmpl.Name, sp.CurrentHP, tmpl.MaxHP)
		return nil
	})
	switch {
	case errors.Is(err, ErrAlreadyInCombat):
		return "You are already in combat!", err
	case errors.Is(err, ErrTargetNotFound):
		return fmt.Sprintf("No '%s' found here.", target), err
	case err != nil:
		return "", err
	}
	return msg, nil
}

// Flee attempts to escape the player's active encounter. Success has
// FleeChancePct probability: the spawn is disengaged (alive, available for
// re-engagement) and the encounter deleted. On failure the monster lands one
// free counter-attack and the encounter stays active.
//
// Postcondition: Returns (narrative, ErrNotInCombat) and mutates nothing if
// no encounter exists.
func (e *Engine) Flee(ctx context.Context, playerID uuid.UUID) (string, error) {
	unlock := e.locks.Lock(playerID)
	defer unlock()

	var msg string
	err := e.store.WithTx(ctx, func(tx Tx) error {
		enc, err := tx.EncounterByPlayer(ctx, playerID)
		if err != nil {
			return fmt.Errorf("loading encounter: %w", err)
		}
		if enc == nil {
			return ErrNotInCombat
		}

		sp, err := tx.Spawn(ctx, enc.SpawnID)
		if err != nil {
			return fmt.Errorf("loading spawn: %w", err)
		}

		if !rng.Chance(e.src, e.cfg.FleeChancePct) {
			// Failed: the monster gets a free attack before control returns.
			p, err := tx.Player(ctx, playerID)
			if err != nil {
				return fmt.Errorf("loading player: %w", err)
			}
			tmpl, err := tx.Template(ctx, sp.TemplateID)
			if err != nil {
				return fmt.Errorf("loading template: %w", err)
			}
			dmg := combatmath.MonsterDamage(tmpl.Attack, p.Stats.Con, e.src)
			p.ApplyDamage(dmg)
			if err := tx.SavePlayer(ctx, p); err != nil {
				return fmt.Errorf("saving player: %w", err)
			}
			msg = fmt.Sprintf("You failed to flee!\n%s hits you for %d damage!", tmpl.Name, dmg)
			return nil
		}

		sp.Disengage()
		if err := tx.SaveSpawn(ctx, sp); err != nil {
			return fmt.Errorf("disengaging spawn: %w", err)
		}
		if err := tx.DeleteEncounter(ctx, enc.ID); err != nil {
			return fmt.Errorf("deleting encounter: %w", err)
		}
		msg = "You successfully fled from combat!"
		return nil
	})
	if errors.Is(err, ErrNotInCombat) {
		return "You are not in combat.", err
	}
	if err != nil {
		return "", err
	}
	return msg, nil
}

// UseSkill casts skillID for the player. Gating order: skill existence,
// class gate, level gate, MP check (no charge on failure), then the MP cost
// is deducted. Offensive skills require an active encounter; cast outside
// combat the cost is refunded and ErrNotInCombatForAttack returned. Healing
// skills work regardless of combat state and target the caster.
//
// A monster killed by a skill goes through the same death resolution as an
// auto-attack kill (exp, loot, level-ups, encounter and spawn deleted), but
// the monster does not counter-attack that round.
func (e *Engine) UseSkill(ctx context.Context, playerID uuid.UUID, skillID string) (string, error) {
	unlock := e.locks.Lock(playerID)
	defer unlock()

	var msg string
	err := e.store.WithTx(ctx, func(tx Tx) error {
		p, err := tx.Player(ctx, playerID)
		if err != nil {
			return fmt.Errorf("loading player: %w", err)
		}

		sk, err := tx.Skill(ctx, strings.ToLower(skillID))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrSkillNotFound
			}
			return fmt.Errorf("loading skill: %w", err)
		}

		if gateErr := sk.CheckGates(p); gateErr != nil {
			msg = gateErr.Error()
			return ErrGateNotMet
		}
		if !p.HasMP(sk.MPCost) {
			msg = fmt.Sprintf("Not enough MP! (%d/%d required)", p.CurrentMP, sk.MPCost)
			return ErrInsufficientMP
		}

		// Gating passed: the cost is committed now. Only the
		// attack-without-combat path below refunds it.
		p.SpendMP(sk.MPCost)

		power := combatmath.SkillPower(sk.BasePower, p.Stats.Value(sk.ScalingStat), sk.ScalingMultiplier, e.src)

		switch {
		case sk.Type.Offensive():
			enc, err := tx.EncounterByPlayer(ctx, playerID)
			if err != nil {
				return fmt.Errorf("loading encounter: %w", err)
			}
			if enc == nil {
				p.RefundMP(sk.MPCost)
				return ErrNotInCombatForAttack
			}
			sp, err := tx.Spawn(ctx, enc.SpawnID)
			if err != nil {
				return fmt.Errorf("loading spawn: %w", err)
			}
			tmpl, err := tx.Template(ctx, sp.TemplateID)
			if err != nil {
				return fmt.Errorf("loading template: %w", err)
			}

			dmg := combatmath.SkillDamage(power, tmpl.Defense)
			died := sp.ApplyDamage(dmg)

			lines := []string{fmt.Sprintf("You use %s! Deals %d damage!", sk.Name, dmg)}
			if died {
				outcome, err := e.resolveKill(ctx, tx, p, sp, tmpl, enc, time.Now().UTC())
				if err != nil {
					return err
				}
				lines = append(lines, outcome.narrate(tmpl.Name)...)
			} else if err := tx.SaveSpawn(ctx, sp); err != nil {
				return fmt.Errorf("saving spawn: %w", err)
			}
			if err := tx.SavePlayer(ctx, p); err != nil {
				return fmt.Errorf("saving player: %w", err)
			}
			msg = strings.Join(lines, "\n")

		case sk.Type == skill.TypeHealing:
			newHP, healed := combatmath.Heal(p.CurrentHP, p.MaxHP, power)
			p.CurrentHP = newHP
			if err := tx.SavePlayer(ctx, p); err != nil {
				return fmt.Errorf("saving player: %w", err)
			}
			msg = fmt.Sprintf("You use %s! Healed for %d HP!", sk.Name, healed)

		default:
			return fmt.Errorf("skill %q has unknown type %q", sk.SkillID, sk.Type)
		}
		return nil
	})
	switch {
	case errors.Is(err, ErrSkillNotFound):
		return fmt.Sprintf("Skill '%s' not found.", skillID), err
	case errors.Is(err, ErrGateNotMet), errors.Is(err, ErrInsufficientMP):
		return msg, err
	case errors.Is(err, ErrNotInCombatForAttack):
		return "You need to be in combat to use attack skills!", err
	case err != nil:
		return "", err
	}
	return msg, nil
}

// IsInCombat reports whether the player currently owns an encounter.
func (e *Engine) IsInCombat(ctx context.Context, playerID uuid.UUID) (bool, error) {
	var in bool
	err := e.store.WithTx(ctx, func(tx Tx) error {
		enc, err := tx.EncounterByPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		in = enc != nil
		return nil
	})
	return in, err
}

// DueEncounters returns ids of all encounters whose next tick has elapsed.
func (e *Engine) DueEncounters(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	return e.store.DueEncounters(ctx, now)
}

// Tick resolves one auto-attack exchange for the encounter: the player
// strikes first; a dead monster triggers kill resolution, otherwise the
// monster counter-attacks and a dead player triggers respawn. All mutations
// commit in one unit of work.
//
// A missing encounter, player, spawn, or template yields a TickResult with
// CombatEnded set and ErrStaleEncounter; nothing is mutated in that case.
func (e *Engine) Tick(ctx context.Context, encounterID uuid.UUID) (TickResult, error) {
	res := TickResult{EncounterID: encounterID}

	// Resolve the owning player first so the per-player lock can be taken;
	// the in-lock reload below catches any concurrent deletion.
	var playerID uuid.UUID
	err := e.store.WithTx(ctx, func(tx Tx) error {
		enc, err := tx.Encounter(ctx, encounterID)
		if err != nil {
			return err
		}
		playerID = enc.PlayerID
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			res.CombatEnded = true
			res.Message = "Combat is no longer active."
			return res, ErrStaleEncounter
		}
		return res, fmt.Errorf("resolving encounter owner: %w", err)
	}

	unlock := e.locks.Lock(playerID)
	defer unlock()

	err = e.store.WithTx(ctx, func(tx Tx) error {
		enc, err := tx.Encounter(ctx, encounterID)
		if err != nil {
			return staleOr(err, "loading encounter")
		}
		p, err := tx.Player(ctx, enc.PlayerID)
		if err != nil {
			return staleOr(err, "loading player")
		}
		sp, err := tx.Spawn(ctx, enc.SpawnID)
		if err != nil {
			return staleOr(err, "loading spawn")
		}
		tmpl, err := tx.Template(ctx, sp.TemplateID)
		if err != nil {
			return staleOr(err, "loading template")
		}

		res.PlayerID = p.ID
		res.PlayerMaxHP = p.MaxHP
		res.MonsterMaxHP = tmpl.MaxHP
		now := time.Now().UTC()

		// Player auto-attack.
		dmg := combatmath.AutoAttackDamage(p.Stats.Str, tmpl.Defense, e.src)
		monsterDied := sp.ApplyDamage(dmg)
		lines := []string{fmt.Sprintf("You hit %s for %d damage!", tmpl.Name, dmg)}

		if monsterDied {
			outcome, err := e.resolveKill(ctx, tx, p, sp, tmpl, enc, now)
			if err != nil {
				return err
			}
			lines = append(lines, outcome.narrate(tmpl.Name)...)
			res.CombatEnded = true
			res.MonsterDied = true
			res.ExpGained = outcome.expGained
			res.Loot = outcome.loot
			res.LevelUps = outcome.levelUps
		} else {
			// Monster counter-attack.
			counter := combatmath.MonsterDamage(tmpl.Attack, p.Stats.Con, e.src)
			playerDied := p.ApplyDamage(counter)
			lines = append(lines, fmt.Sprintf("%s hits you for %d damage!", tmpl.Name, counter))

			if playerDied {
				res.CombatEnded = true
				res.PlayerDied = true

				// Respawn policy: half resources, starting room, exp penalty.
				p.CurrentHP = p.MaxHP / 2
				p.CurrentMP = p.MaxMP / 2
				p.RoomID = e.cfg.RespawnRoomID
				p.Exp -= int64(tmpl.ExpReward)
				if p.Exp < 0 {
					p.Exp = 0
				}
				lines = append(lines, "You have died! Respawning at the village square...")

				sp.Disengage()
				if err := tx.SaveSpawn(ctx, sp); err != nil {
					return fmt.Errorf("disengaging spawn: %w", err)
				}
				if err := tx.DeleteEncounter(ctx, enc.ID); err != nil {
					return fmt.Errorf("deleting encounter: %w", err)
				}
			} else {
				enc.Advance(now, e.cfg.TickInterval)
				if err := tx.SaveEncounter(ctx, enc); err != nil {
					return fmt.Errorf("advancing encounter: %w", err)
				}
				if err := tx.SaveSpawn(ctx, sp); err != nil {
					return fmt.Errorf("saving spawn: %w", err)
				}
			}
		}

		if err := tx.SavePlayer(ctx, p); err != nil {
			return fmt.Errorf("saving player: %w", err)
		}

		res.Message = strings.Join(lines, "\n")
		res.PlayerHP = p.CurrentHP
		res.MonsterHP = sp.CurrentHP
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleEncounter) {
			res.CombatEnded = true
			res.Message = "Combat is no longer active."
			return res, ErrStaleEncounter
		}
		return res, err
	}
	return res, nil
}

// staleOr maps a gateway ErrNotFound to ErrStaleEncounter, wrapping anything
// else with op context.
func staleOr(err error, op string) error {
	if errors.Is(err, ErrNotFound) {
		return ErrStaleEncounter
	}
	return fmt.Errorf("%s: %w", op, err)
}

// killOutcome carries the spoils of a monster kill for narration and results.
type killOutcome struct {
	expGained int
	loot      []loot.Drop
	levelUps  []progression.LevelUp
}

// narrate renders the kill lines appended after the killing-blow line.
func (o killOutcome) narrate(monsterName string) []string {
	lines := []string{fmt.Sprintf("%s defeated! +%d EXP", monsterName, o.expGained)}
	if len(o.loot) > 0 {
		parts := make([]string, 0, len(o.loot))
		for _, d := range o.loot {
			parts = append(parts, fmt.Sprintf("%s x%d", d.ItemName, d.Quantity))
		}
		lines = append(lines, "Loot: "+strings.Join(parts, ", "))
	}
	for _, up := range o.levelUps {
		lines = append(lines, fmt.Sprintf("LEVEL UP! You are now level %d!", up.NewLevel))
	}
	return lines
}

// resolveKill runs the shared monster-death path: stamp the kill, award exp,
// roll and bank loot, apply level-ups, then delete the encounter and the
// spawn. Used by both Tick and UseSkill.
//
// Precondition: the caller holds the player lock and sp.CurrentHP == 0.
func (e *Engine) resolveKill(ctx context.Context, tx Tx, p *character.Player, sp *monster.Spawn, tmpl *monster.Template, enc *Encounter, now time.Time) (killOutcome, error) {
	sp.MarkKilled(now)
	p.Exp += int64(tmpl.ExpReward)
	out := killOutcome{expGained: tmpl.ExpReward}

	entries, err := tx.LootEntries(ctx, tmpl.ID)
	if err != nil {
		return out, fmt.Errorf("loading loot table: %w", err)
	}
	for _, drop := range loot.Resolve(entries, e.src) {
		banked, err := e.bankDrop(ctx, tx, p.ID, drop)
		if err != nil {
			return out, err
		}
		if banked {
			out.loot = append(out.loot, drop)
		}
	}

	out.levelUps = progression.Apply(p)

	if err := tx.DeleteEncounter(ctx, enc.ID); err != nil {
		return out, fmt.Errorf("deleting encounter: %w", err)
	}
	if err := tx.DeleteSpawn(ctx, sp.ID); err != nil {
		return out, fmt.Errorf("deleting spawn: %w", err)
	}
	return out, nil
}

// bankDrop adds one drop to the player's inventory, stacking into an
// existing non-equipped slot of the same item when present, otherwise
// allocating the lowest free slot index. A full inventory loses the drop.
func (e *Engine) bankDrop(ctx context.Context, tx Tx, playerID uuid.UUID, drop loot.Drop) (bool, error) {
	stack, err := tx.StackableItem(ctx, playerID, drop.ItemID)
	if err != nil {
		return false, fmt.Errorf("finding stack for item %d: %w", drop.ItemID, err)
	}
	if stack != nil {
		stack.Quantity += drop.Quantity
		if err := tx.SaveInventoryItem(ctx, stack); err != nil {
			return false, fmt.Errorf("stacking item %d: %w", drop.ItemID, err)
		}
		return true, nil
	}

	used, err := tx.UsedSlots(ctx, playerID)
	if err != nil {
		return false, fmt.Errorf("loading slot usage: %w", err)
	}
	slot := item.NextFreeSlot(used)
	if slot == item.NoFreeSlot {
		e.logger.Warn("inventory full, drop lost",
			zap.String("player_id", playerID.String()),
			zap.Int("item_id", drop.ItemID),
			zap.Int("quantity", drop.Quantity),
		)
		return false, nil
	}

	err = tx.CreateInventoryItem(ctx, &item.InventoryItem{
		ID:           uuid.New(),
		PlayerID:     playerID,
		ItemID:       drop.ItemID,
		Quantity:     drop.Quantity,
		EquippedSlot: item.SlotNone,
		SlotIndex:    slot,
	})
	if err != nil {
		return false, fmt.Errorf("inserting item %d: %w", drop.ItemID, err)
	}
	return true, nil
}

package encounter

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crownspire/mud/internal/game/character"
	"github.com/crownspire/mud/internal/game/item"
	"github.com/crownspire/mud/internal/game/loot"
	"github.com/crownspire/mud/internal/game/monster"
	"github.com/crownspire/mud/internal/game/skill"
)

// fakeStore is an in-memory Gateway with copy-on-read rows and full-state
// rollback, mirroring the transactional contract of the Postgres store.
type fakeStore struct {
	mu sync.Mutex

	players    map[uuid.UUID]*character.Player
	templates  map[int]*monster.Template
	spawns     map[uuid.UUID]*monster.Spawn
	encounters map[uuid.UUID]*Encounter
	skills     map[string]*skill.Skill
	lootTables map[int][]loot.Entry
	inventory  map[uuid.UUID]*item.InventoryItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players:    map[uuid.UUID]*character.Player{},
		templates:  map[int]*monster.Template{},
		spawns:     map[uuid.UUID]*monster.Spawn{},
		encounters: map[uuid.UUID]*Encounter{},
		skills:     map[string]*skill.Skill{},
		lootTables: map[int][]loot.Entry{},
		inventory:  map[uuid.UUID]*item.InventoryItem{},
	}
}

type fakeState struct {
	players    map[uuid.UUID]*character.Player
	spawns     map[uuid.UUID]*monster.Spawn
	encounters map[uuid.UUID]*Encounter
	inventory  map[uuid.UUID]*item.InventoryItem
}

func (f *fakeStore) snapshot() fakeState {
	s := fakeState{
		players:    map[uuid.UUID]*character.Player{},
		spawns:     map[uuid.UUID]*monster.Spawn{},
		encounters: map[uuid.UUID]*Encounter{},
		inventory:  map[uuid.UUID]*item.InventoryItem{},
	}
	for id, p := range f.players {
		s.players[id] = clonePlayer(p)
	}
	for id, sp := range f.spawns {
		s.spawns[id] = cloneSpawn(sp)
	}
	for id, e := range f.encounters {
		s.encounters[id] = cloneEncounter(e)
	}
	for id, it := range f.inventory {
		s.inventory[id] = cloneInventoryItem(it)
	}
	return s
}

func (f *fakeStore) WithTx(_ context.Context, fn func(tx Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snapshot()
	if err := fn((*fakeTx)(f)); err != nil {
		f.players = snap.players
		f.spawns = snap.spawns
		f.encounters = snap.encounters
		f.inventory = snap.inventory
		return err
	}
	return nil
}

func (f *fakeStore) DueEncounters(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []uuid.UUID
	for id, e := range f.encounters {
		if !e.NextTick.After(now) {
			due = append(due, id)
		}
	}
	return due, nil
}

// fakeTx exposes the store's maps under an open transaction. The store
// mutex is already held by WithTx.
type fakeTx fakeStore

func (t *fakeTx) Player(_ context.Context, id uuid.UUID) (*character.Player, error) {
	p, ok := t.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePlayer(p), nil
}

func (t *fakeTx) SavePlayer(_ context.Context, p *character.Player) error {
	t.players[p.ID] = clonePlayer(p)
	return nil
}

func (t *fakeTx) Template(_ context.Context, id int) (*monster.Template, error) {
	tmpl, ok := t.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tmpl
	return &cp, nil
}

func (t *fakeTx) FindTemplate(_ context.Context, roomID int, nameFragment string) (*monster.Template, error) {
	frag := strings.ToLower(nameFragment)
	for _, tmpl := range t.templates {
		if tmpl.RoomID == roomID && strings.Contains(strings.ToLower(tmpl.Name), frag) {
			cp := *tmpl
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *fakeTx) Spawn(_ context.Context, id uuid.UUID) (*monster.Spawn, error) {
	sp, ok := t.spawns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSpawn(sp), nil
}

func (t *fakeTx) FindSpawn(_ context.Context, roomID int, nameFragment string) (*monster.Spawn, error) {
	frag := strings.ToLower(nameFragment)
	for _, sp := range t.spawns {
		if sp.RoomID != roomID || !sp.Alive() || sp.InCombat {
			continue
		}
		tmpl, ok := t.templates[sp.TemplateID]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(tmpl.Name), frag) {
			return cloneSpawn(sp), nil
		}
	}
	return nil, nil
}

func (t *fakeTx) CreateSpawn(_ context.Context, s *monster.Spawn) error {
	t.spawns[s.ID] = cloneSpawn(s)
	return nil
}

func (t *fakeTx) SaveSpawn(_ context.Context, s *monster.Spawn) error {
	t.spawns[s.ID] = cloneSpawn(s)
	return nil
}

func (t *fakeTx) DeleteSpawn(_ context.Context, id uuid.UUID) error {
	delete(t.spawns, id)
	return nil
}

func (t *fakeTx) Encounter(_ context.Context, id uuid.UUID) (*Encounter, error) {
	e, ok := t.encounters[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneEncounter(e), nil
}

func (t *fakeTx) EncounterByPlayer(_ context.Context, playerID uuid.UUID) (*Encounter, error) {
	for _, e := range t.encounters {
		if e.PlayerID == playerID {
			return cloneEncounter(e), nil
		}
	}
	return nil, nil
}

func (t *fakeTx) CreateEncounter(_ context.Context, e *Encounter) error {
	t.encounters[e.ID] = cloneEncounter(e)
	return nil
}

func (t *fakeTx) SaveEncounter(_ context.Context, e *Encounter) error {
	t.encounters[e.ID] = cloneEncounter(e)
	return nil
}

func (t *fakeTx) DeleteEncounter(_ context.Context, id uuid.UUID) error {
	delete(t.encounters, id)
	return nil
}

func (t *fakeTx) Skill(_ context.Context, skillID string) (*skill.Skill, error) {
	sk, ok := t.skills[skillID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sk
	return &cp, nil
}

func (t *fakeTx) LootEntries(_ context.Context, monsterID int) ([]loot.Entry, error) {
	return append([]loot.Entry(nil), t.lootTables[monsterID]...), nil
}

func (t *fakeTx) StackableItem(_ context.Context, playerID uuid.UUID, itemID int) (*item.InventoryItem, error) {
	for _, it := range t.inventory {
		if it.PlayerID == playerID && it.ItemID == itemID && !it.Equipped {
			return cloneInventoryItem(it), nil
		}
	}
	return nil, nil
}

func (t *fakeTx) UsedSlots(_ context.Context, playerID uuid.UUID) ([]int, error) {
	var used []int
	for _, it := range t.inventory {
		if it.PlayerID == playerID {
			used = append(used, it.SlotIndex)
		}
	}
	return used, nil
}

func (t *fakeTx) CreateInventoryItem(_ context.Context, it *item.InventoryItem) error {
	t.inventory[it.ID] = cloneInventoryItem(it)
	return nil
}

func (t *fakeTx) SaveInventoryItem(_ context.Context, it *item.InventoryItem) error {
	t.inventory[it.ID] = cloneInventoryItem(it)
	return nil
}

func clonePlayer(p *character.Player) *character.Player {
	cp := *p
	return &cp
}

func cloneSpawn(s *monster.Spawn) *monster.Spawn {
	cp := *s
	if s.EngagedPlayerID != nil {
		id := *s.EngagedPlayerID
		cp.EngagedPlayerID = &id
	}
	if s.KilledAt != nil {
		at := *s.KilledAt
		cp.KilledAt = &at
	}
	return &cp
}

func cloneEncounter(e *Encounter) *Encounter {
	cp := *e
	if e.QueuedSkillID != nil {
		id := *e.QueuedSkillID
		cp.QueuedSkillID = &id
	}
	return &cp
}

func cloneInventoryItem(it *item.InventoryItem) *item.InventoryItem {
	cp := *it
	return &cp
}

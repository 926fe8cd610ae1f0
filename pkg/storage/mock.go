package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/combat"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
)

// MockStorage is an in-memory implementation of Storage for testing.
// Records are copied on the way in and out.
type MockStorage struct {
	mu           sync.RWMutex
	players      map[int]*actor.PlayerSpec
	characters   map[string]*actor.Character
	items        map[int]*world.Item
	rooms        map[int]*world.Room
	enemies      map[int]*actor.Enemy
	inventory    map[int]map[int]time.Time
	interactions map[int]map[int]*world.Interaction
	scores       map[int][]world.ScoreEntry
	encounters   map[int]*combat.Encounter
	locks        map[string]string
	nextPlayerID int
	nextItemID   int
	nextRoomID   int
	pingError    error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		players:      make(map[int]*actor.PlayerSpec),
		characters:   make(map[string]*actor.Character),
		items:        make(map[int]*world.Item),
		rooms:        make(map[int]*world.Room),
		enemies:      make(map[int]*actor.Enemy),
		inventory:    make(map[int]map[int]time.Time),
		interactions: make(map[int]map[int]*world.Interaction),
		scores:       make(map[int][]world.ScoreEntry),
		encounters:   make(map[int]*combat.Encounter),
		locks:        make(map[string]string),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

// Players

func (m *MockStorage) CreatePlayer(ctx context.Context, p *actor.PlayerSpec) (*actor.PlayerSpec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPlayerID++
	c := *p
	c.ID = m.nextPlayerID
	m.players[c.ID] = &c
	out := c
	return &out, nil
}

func (m *MockStorage) GetPlayer(ctx context.Context, id int) (*actor.PlayerSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *MockStorage) SavePlayer(ctx context.Context, p *actor.PlayerSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *p
	m.players[c.ID] = &c
	if c.ID > m.nextPlayerID {
		m.nextPlayerID = c.ID
	}
	return nil
}

func (m *MockStorage) DeletePlayer(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.players, id)
	return nil
}

func (m *MockStorage) ListPlayers(ctx context.Context) ([]*actor.PlayerSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*actor.PlayerSpec, 0, len(m.players))
	for _, p := range m.players {
		c := *p
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *actor.PlayerSpec) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Characters

func (m *MockStorage) SaveCharacter(ctx context.Context, c *actor.Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cc := *c
	m.characters[actor.CharacterKey(c.Name)] = &cc
	return nil
}

func (m *MockStorage) GetCharacter(ctx context.Context, name string) (*actor.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.characters[actor.CharacterKey(name)]
	if !ok {
		return nil, nil
	}
	cc := *c
	return &cc, nil
}

func (m *MockStorage) ListCharacters(ctx context.Context) ([]*actor.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*actor.Character, 0, len(m.characters))
	for _, c := range m.characters {
		cc := *c
		out = append(out, &cc)
	}
	slices.SortFunc(out, func(a, b *actor.Character) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

// Items

func cloneItem(it *world.Item) *world.Item {
	c := *it
	if it.Effect != nil {
		e := *it.Effect
		c.Effect = &e
	}
	return &c
}

func (m *MockStorage) CreateItem(ctx context.Context, it *world.Item) (*world.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cloneItem(it)
	if c.ID == 0 {
		m.nextItemID++
		for m.items[m.nextItemID] != nil {
			m.nextItemID++
		}
		c.ID = m.nextItemID
	}
	m.items[c.ID] = c
	return cloneItem(c), nil
}

func (m *MockStorage) SaveItem(ctx context.Context, it *world.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = cloneItem(it)
	return nil
}

func (m *MockStorage) GetItem(ctx context.Context, id int) (*world.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return cloneItem(it), nil
}

func (m *MockStorage) DeleteItem(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *MockStorage) ListItems(ctx context.Context) ([]*world.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*world.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, cloneItem(it))
	}
	slices.SortFunc(out, func(a, b *world.Item) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Rooms

func (m *MockStorage) CreateRoom(ctx context.Context, r *world.Room) (*world.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := r.Clone()
	if c.ID == 0 {
		m.nextRoomID++
		for m.rooms[m.nextRoomID] != nil {
			m.nextRoomID++
		}
		c.ID = m.nextRoomID
	}
	m.rooms[c.ID] = c
	return c.Clone(), nil
}

func (m *MockStorage) SaveRoom(ctx context.Context, r *world.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r.Clone()
	return nil
}

func (m *MockStorage) GetRoom(ctx context.Context, id int) (*world.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	return r.Clone(), nil
}

func (m *MockStorage) DeleteRoom(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
	return nil
}

func (m *MockStorage) ListRooms(ctx context.Context) ([]*world.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*world.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r.Clone())
	}
	slices.SortFunc(out, func(a, b *world.Room) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Enemies

func cloneEnemy(e *actor.Enemy) *actor.Enemy {
	c := *e
	c.LootItemIDs = slices.Clone(e.LootItemIDs)
	return &c
}

func (m *MockStorage) SaveEnemy(ctx context.Context, e *actor.Enemy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enemies[e.ID] = cloneEnemy(e)
	return nil
}

func (m *MockStorage) GetEnemy(ctx context.Context, id int) (*actor.Enemy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.enemies[id]
	if !ok {
		return nil, nil
	}
	return cloneEnemy(e), nil
}

func (m *MockStorage) ListEnemies(ctx context.Context) ([]*actor.Enemy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*actor.Enemy, 0, len(m.enemies))
	for _, e := range m.enemies {
		out = append(out, cloneEnemy(e))
	}
	slices.SortFunc(out, func(a, b *actor.Enemy) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// Inventory

func (m *MockStorage) AddInventoryItem(ctx context.Context, playerID, itemID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.inventory[playerID]
	if !ok {
		inv = make(map[int]time.Time)
		m.inventory[playerID] = inv
	}
	if _, held := inv[itemID]; held {
		return false, nil
	}
	inv[itemID] = time.Now().UTC()
	return true, nil
}

func (m *MockStorage) RemoveInventoryItem(ctx context.Context, playerID, itemID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := m.inventory[playerID]
	if _, held := inv[itemID]; !held {
		return false, nil
	}
	delete(inv, itemID)
	return true, nil
}

func (m *MockStorage) HasInventoryItem(ctx context.Context, playerID, itemID int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, held := m.inventory[playerID][itemID]
	return held, nil
}

func (m *MockStorage) ListInventory(ctx context.Context, playerID int) ([]world.InventoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inventoryEntries(playerID), nil
}

func (m *MockStorage) inventoryEntries(playerID int) []world.InventoryEntry {
	out := make([]world.InventoryEntry, 0, len(m.inventory[playerID]))
	for itemID, at := range m.inventory[playerID] {
		out = append(out, world.InventoryEntry{PlayerID: playerID, ItemID: itemID, AddedAt: at})
	}
	slices.SortFunc(out, func(a, b world.InventoryEntry) int { return cmp.Compare(a.ItemID, b.ItemID) })
	return out
}

func (m *MockStorage) ListAllInventory(ctx context.Context) ([]world.InventoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	players := make([]int, 0, len(m.inventory))
	for id := range m.inventory {
		players = append(players, id)
	}
	slices.Sort(players)
	var out []world.InventoryEntry
	for _, id := range players {
		out = append(out, m.inventoryEntries(id)...)
	}
	return out, nil
}

func (m *MockStorage) ClearInventory(ctx context.Context, playerID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.inventory[playerID])
	delete(m.inventory, playerID)
	return n, nil
}

// Interactions

func cloneInteraction(in *world.Interaction) *world.Interaction {
	c := *in
	c.ItemsPicked = slices.Clone(in.ItemsPicked)
	c.EnemiesDefeated = slices.Clone(in.EnemiesDefeated)
	return &c
}

func (m *MockStorage) GetInteraction(ctx context.Context, playerID, roomID int) (*world.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.interactions[playerID][roomID]
	if !ok {
		return nil, nil
	}
	return cloneInteraction(in), nil
}

func (m *MockStorage) SaveInteraction(ctx context.Context, in *world.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms, ok := m.interactions[in.PlayerID]
	if !ok {
		rooms = make(map[int]*world.Interaction)
		m.interactions[in.PlayerID] = rooms
	}
	rooms[in.RoomID] = cloneInteraction(in)
	return nil
}

func (m *MockStorage) ListInteractions(ctx context.Context, playerID int) ([]*world.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*world.Interaction, 0, len(m.interactions[playerID]))
	for _, in := range m.interactions[playerID] {
		out = append(out, cloneInteraction(in))
	}
	slices.SortFunc(out, func(a, b *world.Interaction) int { return cmp.Compare(a.RoomID, b.RoomID) })
	return out, nil
}

func (m *MockStorage) ClearInteractions(ctx context.Context, playerID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.interactions, playerID)
	return nil
}

// Scores

func (m *MockStorage) AppendScore(ctx context.Context, e world.ScoreEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[e.PlayerID] = append(m.scores[e.PlayerID], e)
	return nil
}

func (m *MockStorage) ListScores(ctx context.Context, playerID int) ([]world.ScoreEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.scores[playerID]), nil
}

func (m *MockStorage) ClearScores(ctx context.Context, playerID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scores, playerID)
	return nil
}

// Encounters

func cloneEncounter(enc *combat.Encounter) *combat.Encounter {
	c := *enc
	c.Log = slices.Clone(enc.Log)
	return &c
}

func (m *MockStorage) SaveEncounter(ctx context.Context, enc *combat.Encounter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encounters[enc.PlayerID] = cloneEncounter(enc)
	return nil
}

func (m *MockStorage) GetEncounter(ctx context.Context, playerID int) (*combat.Encounter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	enc, ok := m.encounters[playerID]
	if !ok {
		return nil, nil
	}
	return cloneEncounter(enc), nil
}

func (m *MockStorage) DeleteEncounter(ctx context.Context, playerID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.encounters, playerID)
	return nil
}

// Locks never expire in the mock.

func (m *MockStorage) AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[key]; held {
		return false, nil
	}
	m.locks[key] = owner
	return true, nil
}

func (m *MockStorage) ReleaseLock(ctx context.Context, key, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] == owner {
		delete(m.locks, key)
	}
	return nil
}

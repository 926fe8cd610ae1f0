package world

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"gopkg.in/yaml.v3"
)

// EffectKind is what an item does to the player when picked up.
type EffectKind string

const (
	EffectAttack    EffectKind = "attack"
	EffectHeal      EffectKind = "heal"
	EffectMaxHealth EffectKind = "max_health"
)

type ItemEffect struct {
	Kind   EffectKind `json:"kind" yaml:"kind"`
	Amount int        `json:"amount" yaml:"amount"`
}

type Item struct {
	ID          int         `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Points      int         `json:"points,omitempty" yaml:"points,omitempty"`
	Effect      *ItemEffect `json:"effect,omitempty" yaml:"effect,omitempty"`
	IsKey       bool        `json:"is_key,omitempty" yaml:"is_key,omitempty"`
}

func (i *Item) HasEffect() bool {
	return i.Effect != nil && i.Effect.Amount != 0
}

type Room struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ItemIDs     []int  `json:"item_ids" yaml:"item_ids"`
	EnemyIDs    []int  `json:"enemy_ids" yaml:"enemy_ids"`
	DoorLocked  bool   `json:"door_locked" yaml:"door_locked"`
	KeyItemID   int    `json:"key_item_id,omitempty" yaml:"key_item_id,omitempty"`
	Exits       []int  `json:"exits" yaml:"exits"`
}

func (r *Room) HasExit(roomID int) bool {
	return slices.Contains(r.Exits, roomID)
}

func (r *Room) HasItem(itemID int) bool {
	return slices.Contains(r.ItemIDs, itemID)
}

func (r *Room) HasEnemy(enemyID int) bool {
	return slices.Contains(r.EnemyIDs, enemyID)
}

// AddItem returns false if the item is already in the room.
func (r *Room) AddItem(itemID int) bool {
	if r.HasItem(itemID) {
		return false
	}
	r.ItemIDs = append(r.ItemIDs, itemID)
	return true
}

// RemoveItem returns false if the item was not in the room.
func (r *Room) RemoveItem(itemID int) bool {
	i := slices.Index(r.ItemIDs, itemID)
	if i < 0 {
		return false
	}
	r.ItemIDs = slices.Delete(r.ItemIDs, i, i+1)
	return true
}

func (r *Room) AddEnemy(enemyID int) bool {
	if r.HasEnemy(enemyID) {
		return false
	}
	r.EnemyIDs = append(r.EnemyIDs, enemyID)
	return true
}

func (r *Room) RemoveEnemy(enemyID int) bool {
	i := slices.Index(r.EnemyIDs, enemyID)
	if i < 0 {
		return false
	}
	r.EnemyIDs = slices.Delete(r.EnemyIDs, i, i+1)
	return true
}

// Clone returns a deep copy so defaults held by a World are never mutated.
func (r *Room) Clone() *Room {
	c := *r
	c.ItemIDs = slices.Clone(r.ItemIDs)
	c.EnemyIDs = slices.Clone(r.EnemyIDs)
	c.Exits = slices.Clone(r.Exits)
	if c.ItemIDs == nil {
		c.ItemIDs = []int{}
	}
	if c.EnemyIDs == nil {
		c.EnemyIDs = []int{}
	}
	return &c
}

// World is the static definition of the dungeon. It seeds storage and is
// the source of defaults for every reset.
type World struct {
	Name        string            `yaml:"name"`
	StartRoomID int               `yaml:"start_room_id"`
	FinalRoomID int               `yaml:"final_room_id"`
	Characters  []actor.Character `yaml:"characters"`
	Items       []Item            `yaml:"items"`
	Enemies     []actor.Enemy     `yaml:"enemies"`
	Rooms       []Room            `yaml:"rooms"`
}

// Load reads and validates a world definition file.
func Load(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*World, error) {
	var w World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse world: %w", err)
	}
	for i := range w.Enemies {
		w.Enemies[i].Normalize()
	}
	for i := range w.Characters {
		w.Characters[i].Name = actor.NormalizeName(w.Characters[i].Name)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Validate reports every referential problem in the world at once.
func (w *World) Validate() error {
	var errs []error

	items := make(map[int]bool, len(w.Items))
	for _, it := range w.Items {
		if it.ID <= 0 {
			errs = append(errs, fmt.Errorf("item %q: id must be positive", it.Name))
		}
		if items[it.ID] {
			errs = append(errs, fmt.Errorf("item %d: duplicate id", it.ID))
		}
		if it.Name == "" {
			errs = append(errs, fmt.Errorf("item %d: name is required", it.ID))
		}
		if it.Effect != nil {
			switch it.Effect.Kind {
			case EffectAttack, EffectHeal, EffectMaxHealth:
			default:
				errs = append(errs, fmt.Errorf("item %d: unknown effect %q", it.ID, it.Effect.Kind))
			}
		}
		items[it.ID] = true
	}

	enemies := make(map[int]bool, len(w.Enemies))
	for _, e := range w.Enemies {
		if e.ID <= 0 {
			errs = append(errs, fmt.Errorf("enemy %q: id must be positive", e.Name))
		}
		if enemies[e.ID] {
			errs = append(errs, fmt.Errorf("enemy %d: duplicate id", e.ID))
		}
		if e.MaxHealth <= 0 {
			errs = append(errs, fmt.Errorf("enemy %d: health must be positive", e.ID))
		}
		for _, loot := range e.LootItemIDs {
			if !items[loot] {
				errs = append(errs, fmt.Errorf("enemy %d: unknown loot item %d", e.ID, loot))
			}
		}
		enemies[e.ID] = true
	}

	rooms := make(map[int]bool, len(w.Rooms))
	for _, r := range w.Rooms {
		if r.ID <= 0 {
			errs = append(errs, fmt.Errorf("room %q: id must be positive", r.Name))
		}
		if rooms[r.ID] {
			errs = append(errs, fmt.Errorf("room %d: duplicate id", r.ID))
		}
		rooms[r.ID] = true
	}
	for _, r := range w.Rooms {
		for _, id := range r.ItemIDs {
			if !items[id] {
				errs = append(errs, fmt.Errorf("room %d: unknown item %d", r.ID, id))
			}
		}
		for _, id := range r.EnemyIDs {
			if !enemies[id] {
				errs = append(errs, fmt.Errorf("room %d: unknown enemy %d", r.ID, id))
			}
		}
		for _, id := range r.Exits {
			if !rooms[id] {
				errs = append(errs, fmt.Errorf("room %d: exit to unknown room %d", r.ID, id))
			}
		}
		if r.DoorLocked && r.KeyItemID != 0 && !items[r.KeyItemID] {
			errs = append(errs, fmt.Errorf("room %d: unknown key item %d", r.ID, r.KeyItemID))
		}
	}

	if !rooms[w.StartRoomID] {
		errs = append(errs, fmt.Errorf("start room %d does not exist", w.StartRoomID))
	}
	if !rooms[w.FinalRoomID] {
		errs = append(errs, fmt.Errorf("final room %d does not exist", w.FinalRoomID))
	}

	chars := make(map[string]bool, len(w.Characters))
	for _, c := range w.Characters {
		key := actor.CharacterKey(c.Name)
		if key == "" {
			errs = append(errs, errors.New("character name is required"))
			continue
		}
		if chars[key] {
			errs = append(errs, fmt.Errorf("character %s: duplicate name", c.Name))
		}
		if c.HP <= 0 {
			errs = append(errs, fmt.Errorf("character %s: hp must be positive", c.Name))
		}
		if !c.Skill.Valid() {
			errs = append(errs, fmt.Errorf("character %s: unknown skill %q", c.Name, c.Skill))
		}
		chars[key] = true
	}

	return errors.Join(errs...)
}

func (w *World) Room(id int) *Room {
	for i := range w.Rooms {
		if w.Rooms[i].ID == id {
			return &w.Rooms[i]
		}
	}
	return nil
}

func (w *World) Item(id int) *Item {
	for i := range w.Items {
		if w.Items[i].ID == id {
			return &w.Items[i]
		}
	}
	return nil
}

func (w *World) Enemy(id int) *actor.Enemy {
	for i := range w.Enemies {
		if w.Enemies[i].ID == id {
			return &w.Enemies[i]
		}
	}
	return nil
}

func (w *World) Character(name string) *actor.Character {
	key := actor.CharacterKey(name)
	for i := range w.Characters {
		if actor.CharacterKey(w.Characters[i].Name) == key {
			return &w.Characters[i]
		}
	}
	return nil
}

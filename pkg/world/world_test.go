package world

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testWorld = `
name: Test Dungeon
start_room_id: 1
final_room_id: 2
characters:
  - name: warrior
    hp: 100
    skill: berserker
items:
  - id: 1
    name: Sword
    description: sharp
    effect: {kind: attack, amount: 20}
  - id: 2
    name: Key
    description: opens things
    is_key: true
enemies:
  - id: 1
    name: Rat
    description: small
    max_health: 10
    damage: 2
rooms:
  - id: 1
    name: Hall
    description: a hall
    item_ids: [1, 2]
    exits: [2]
  - id: 2
    name: Vault
    description: a vault
    enemy_ids: [1]
    door_locked: true
    key_item_id: 2
    exits: [1]
`

func TestParse(t *testing.T) {
	w, err := Parse([]byte(testWorld))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if w.StartRoomID != 1 || w.FinalRoomID != 2 {
		t.Errorf("unexpected start/final rooms: %d/%d", w.StartRoomID, w.FinalRoomID)
	}
	if c := w.Character("WARRIOR"); c == nil || c.Name != "Warrior" {
		t.Errorf("expected normalized Warrior character, got %+v", c)
	}
	if e := w.Enemy(1); e == nil || e.Health != 10 || e.Attack != 1 {
		t.Errorf("expected normalized enemy, got %+v", e)
	}
	if it := w.Item(1); it == nil || !it.HasEffect() {
		t.Errorf("expected sword with effect, got %+v", it)
	}
	if w.Item(99) != nil {
		t.Error("expected nil for unknown item")
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	bad := `
start_room_id: 5
final_room_id: 1
characters:
  - name: Bard
    hp: 0
    skill: sing
items:
  - id: 1
    name: Lute
    effect: {kind: charm, amount: 1}
enemies:
  - id: 1
    name: Ghost
rooms:
  - id: 1
    name: Stage
    item_ids: [7]
    enemy_ids: [3]
    exits: [9]
`
	_, err := Parse([]byte(bad))
	if err == nil {
		t.Fatal("expected validation error")
	}

	for _, want := range []string{
		"unknown effect",
		"health must be positive",
		"unknown item 7",
		"unknown enemy 3",
		"exit to unknown room 9",
		"start room 5 does not exist",
		"hp must be positive",
		"unknown skill",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got: %v", want, err)
		}
	}
}

func TestLoad_ShippedWorld(t *testing.T) {
	path := filepath.Join("..", "..", "data", "world.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("world file not present")
	}

	w, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(w.Characters) != 4 {
		t.Errorf("expected 4 characters, got %d", len(w.Characters))
	}
	final := w.Room(w.FinalRoomID)
	if final == nil || !final.DoorLocked {
		t.Error("expected the final room to start locked")
	}
}

func TestRoom_ItemAndEnemyLists(t *testing.T) {
	r := &Room{ID: 1}

	if !r.AddItem(3) {
		t.Error("first add should succeed")
	}
	if r.AddItem(3) {
		t.Error("duplicate add should fail")
	}
	if !r.RemoveItem(3) {
		t.Error("remove should succeed")
	}
	if r.RemoveItem(3) {
		t.Error("second remove should fail")
	}

	r.AddEnemy(1)
	r.AddEnemy(2)
	r.RemoveEnemy(1)
	if r.HasEnemy(1) || !r.HasEnemy(2) {
		t.Errorf("unexpected enemies: %v", r.EnemyIDs)
	}
}

func TestRoom_Clone(t *testing.T) {
	orig := &Room{ID: 1, ItemIDs: []int{1}, Exits: []int{2}}
	c := orig.Clone()
	c.AddItem(5)
	c.Exits[0] = 9

	if len(orig.ItemIDs) != 1 || orig.Exits[0] != 2 {
		t.Error("clone shares slices with the original")
	}
	if c.EnemyIDs == nil {
		t.Error("clone should have a non-nil enemy list")
	}
}

func TestInteraction(t *testing.T) {
	i := NewInteraction(1, 2)
	if !i.RecordPickup(4) {
		t.Error("first pickup should record")
	}
	if i.RecordPickup(4) {
		t.Error("duplicate pickup should not record")
	}
	if !i.RecordDefeat(1) || i.RecordDefeat(1) {
		t.Error("defeat should record exactly once")
	}
	if !i.HasPicked(4) || !i.HasDefeated(1) {
		t.Error("expected pickup and defeat to be tracked")
	}
}

func TestTotalScore(t *testing.T) {
	entries := []ScoreEntry{
		{Points: 200, Reason: ReasonEnemyDefeat},
		{Points: 50, Reason: ReasonItemCollection},
		{Points: -10, Reason: ReasonManual},
	}
	if got := TotalScore(entries); got != 240 {
		t.Errorf("expected 240, got %d", got)
	}
	if TotalScore(nil) != 0 {
		t.Error("expected 0 for empty ledger")
	}
}

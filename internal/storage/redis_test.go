package storage

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/combat"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := NewRedisStorage("redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create storage: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
		mr.Close()
	})
	return s, mr
}

func TestNewClient_BareAddress(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	rdb, err := NewClient(mr.Addr())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestRedisStorage_Players(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	first, err := s.CreatePlayer(ctx, actor.NewPlayerSpec("Ash"))
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	second, err := s.CreatePlayer(ctx, actor.NewPlayerSpec("Birch"))
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected sequential ids 1 and 2, got %d and %d", first.ID, second.ID)
	}

	first.RoomID = 2
	first.Health = 40
	if err := s.SavePlayer(ctx, first); err != nil {
		t.Fatalf("SavePlayer: %v", err)
	}

	loaded, err := s.GetPlayer(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if loaded == nil || loaded.RoomID != 2 || loaded.Health != 40 || loaded.Name != "Ash" {
		t.Errorf("unexpected player: %+v", loaded)
	}

	players, err := s.ListPlayers(ctx)
	if err != nil {
		t.Fatalf("ListPlayers: %v", err)
	}
	if len(players) != 2 || players[0].ID != 1 {
		t.Errorf("expected 2 players ordered by id, got %d", len(players))
	}

	if err := s.DeletePlayer(ctx, first.ID); err != nil {
		t.Fatalf("DeletePlayer: %v", err)
	}
	missing, err := s.GetPlayer(ctx, first.ID)
	if err != nil {
		t.Fatalf("expected no error for missing player, got %v", err)
	}
	if missing != nil {
		t.Error("expected nil for deleted player")
	}
}

func TestRedisStorage_WorldRecords(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := s.SaveCharacter(ctx, &actor.Character{Name: "Witch", HP: 70, Skill: actor.SkillPoison}); err != nil {
		t.Fatalf("SaveCharacter: %v", err)
	}
	c, err := s.GetCharacter(ctx, "WITCH")
	if err != nil || c == nil || c.HP != 70 {
		t.Fatalf("expected case-insensitive character lookup, got %+v err=%v", c, err)
	}

	if err := s.SaveItem(ctx, &world.Item{ID: 1, Name: "Golden Sword", Effect: &world.ItemEffect{Kind: world.EffectAttack, Amount: 20}}); err != nil {
		t.Fatalf("SaveItem: %v", err)
	}
	created, err := s.CreateItem(ctx, &world.Item{Name: "Lantern"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if created.ID != 2 {
		t.Errorf("expected allocator to skip seeded id 1, got %d", created.ID)
	}

	sword, err := s.GetItem(ctx, 1)
	if err != nil || sword == nil || !sword.HasEffect() {
		t.Fatalf("expected sword with effect, got %+v err=%v", sword, err)
	}

	room, err := s.CreateRoom(ctx, &world.Room{Name: "Hall", Description: "stone"})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	room.AddItem(1)
	room.AddEnemy(3)
	if err := s.SaveRoom(ctx, room); err != nil {
		t.Fatalf("SaveRoom: %v", err)
	}
	loadedRoom, err := s.GetRoom(ctx, room.ID)
	if err != nil || loadedRoom == nil {
		t.Fatalf("GetRoom: %+v err=%v", loadedRoom, err)
	}
	if !loadedRoom.HasItem(1) || !loadedRoom.HasEnemy(3) {
		t.Errorf("room lists not persisted: %+v", loadedRoom)
	}

	if err := s.SaveEnemy(ctx, &actor.Enemy{ID: 3, Name: "Goblin", Health: 30, MaxHealth: 30}); err != nil {
		t.Fatalf("SaveEnemy: %v", err)
	}
	enemies, err := s.ListEnemies(ctx)
	if err != nil || len(enemies) != 1 {
		t.Fatalf("ListEnemies: %v (%d)", err, len(enemies))
	}

	if err := s.DeleteItem(ctx, 2); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	items, _ := s.ListItems(ctx)
	if len(items) != 1 {
		t.Errorf("expected 1 item after delete, got %d", len(items))
	}
}

func TestRedisStorage_Inventory(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	added, err := s.AddInventoryItem(ctx, 1, 3)
	if err != nil || !added {
		t.Fatalf("first add should succeed: added=%v err=%v", added, err)
	}
	added, err = s.AddInventoryItem(ctx, 1, 3)
	if err != nil || added {
		t.Fatalf("duplicate add should report false: added=%v err=%v", added, err)
	}
	_, _ = s.AddInventoryItem(ctx, 1, 10)
	_, _ = s.AddInventoryItem(ctx, 2, 1)

	entries, err := s.ListInventory(ctx, 1)
	if err != nil {
		t.Fatalf("ListInventory: %v", err)
	}
	if len(entries) != 2 || entries[0].ItemID != 3 || entries[1].ItemID != 10 {
		t.Errorf("unexpected inventory: %+v", entries)
	}

	has, _ := s.HasInventoryItem(ctx, 1, 10)
	if !has {
		t.Error("expected item 10 in inventory")
	}

	all, err := s.ListAllInventory(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("expected 3 entries across players, got %d err=%v", len(all), err)
	}

	removed, _ := s.RemoveInventoryItem(ctx, 1, 10)
	if !removed {
		t.Error("expected remove to succeed")
	}
	removed, _ = s.RemoveInventoryItem(ctx, 1, 10)
	if removed {
		t.Error("expected second remove to report false")
	}

	n, err := s.ClearInventory(ctx, 1)
	if err != nil || n != 1 {
		t.Errorf("expected 1 item cleared, got %d err=%v", n, err)
	}
	n, _ = s.ClearInventory(ctx, 1)
	if n != 0 {
		t.Errorf("expected empty clear to return 0, got %d", n)
	}
}

func TestRedisStorage_InteractionsAndScores(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	missing, err := s.GetInteraction(ctx, 1, 2)
	if err != nil || missing != nil {
		t.Fatalf("expected nil interaction, got %+v err=%v", missing, err)
	}

	in := world.NewInteraction(1, 2)
	in.RecordPickup(3)
	in.RecordDefeat(1)
	if err := s.SaveInteraction(ctx, in); err != nil {
		t.Fatalf("SaveInteraction: %v", err)
	}
	_ = s.SaveInteraction(ctx, world.NewInteraction(1, 1))

	loaded, err := s.GetInteraction(ctx, 1, 2)
	if err != nil || loaded == nil || !loaded.HasPicked(3) || !loaded.HasDefeated(1) {
		t.Fatalf("unexpected interaction: %+v err=%v", loaded, err)
	}

	list, _ := s.ListInteractions(ctx, 1)
	if len(list) != 2 || list[0].RoomID != 1 {
		t.Errorf("expected 2 interactions ordered by room, got %+v", list)
	}

	if err := s.ClearInteractions(ctx, 1); err != nil {
		t.Fatalf("ClearInteractions: %v", err)
	}
	list, _ = s.ListInteractions(ctx, 1)
	if len(list) != 0 {
		t.Errorf("expected no interactions after clear, got %d", len(list))
	}

	_ = s.AppendScore(ctx, world.ScoreEntry{PlayerID: 1, Points: 200, Reason: world.ReasonEnemyDefeat, Timestamp: time.Now()})
	_ = s.AppendScore(ctx, world.ScoreEntry{PlayerID: 1, Points: 50, Reason: world.ReasonItemCollection, Timestamp: time.Now()})
	scores, err := s.ListScores(ctx, 1)
	if err != nil {
		t.Fatalf("ListScores: %v", err)
	}
	if world.TotalScore(scores) != 250 {
		t.Errorf("expected total 250, got %d", world.TotalScore(scores))
	}
	_ = s.ClearScores(ctx, 1)
	scores, _ = s.ListScores(ctx, 1)
	if len(scores) != 0 {
		t.Errorf("expected empty ledger, got %d", len(scores))
	}
}

func TestRedisStorage_Encounter(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	enc := &combat.Encounter{PlayerID: 5, EnemyID: 1, EnemyName: "Goblin", EnemyHealth: 30, Turn: combat.TurnPlayer, Log: []string{"start"}}
	if err := s.SaveEncounter(ctx, enc); err != nil {
		t.Fatalf("SaveEncounter: %v", err)
	}
	loaded, err := s.GetEncounter(ctx, 5)
	if err != nil || loaded == nil || loaded.EnemyName != "Goblin" || len(loaded.Log) != 1 {
		t.Fatalf("unexpected encounter: %+v err=%v", loaded, err)
	}
	if err := s.DeleteEncounter(ctx, 5); err != nil {
		t.Fatalf("DeleteEncounter: %v", err)
	}
	loaded, _ = s.GetEncounter(ctx, 5)
	if loaded != nil {
		t.Error("expected encounter to be deleted")
	}
}

func TestRedisStorage_Locks(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	ok, err := s.AcquireLock(ctx, "player-lock:1", "a", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected lock acquired: ok=%v err=%v", ok, err)
	}
	ok, _ = s.AcquireLock(ctx, "player-lock:1", "b", 30*time.Second)
	if ok {
		t.Fatal("second owner should not acquire the lock")
	}

	if err := s.ReleaseLock(ctx, "player-lock:1", "b"); err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}
	if !mr.Exists("player-lock:1") {
		t.Fatal("non-owner release must not delete the lock")
	}

	if err := s.ReleaseLock(ctx, "player-lock:1", "a"); err != nil {
		t.Fatalf("ReleaseLock: %v", err)
	}
	if mr.Exists("player-lock:1") {
		t.Error("owner release should delete the lock")
	}

	_, _ = s.AcquireLock(ctx, "player-lock:2", "a", time.Second)
	mr.FastForward(2 * time.Second)
	ok, _ = s.AcquireLock(ctx, "player-lock:2", "b", time.Second)
	if !ok {
		t.Error("expired lock should be acquirable")
	}
}

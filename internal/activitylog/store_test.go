package activitylog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/queue"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "activity.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func event(id string, playerID int, action string, at time.Time) *queue.ActivityEvent {
	return &queue.ActivityEvent{EventID: id, PlayerID: playerID, Action: action, Timestamp: at}
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Insert(context.Background(), event("e1", 1, "Entered Room 1: Hall", time.Now())); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	all, err := s.ListAll(context.Background(), 0)
	if err != nil || len(all) != 1 {
		t.Fatalf("expected row to survive reopen, got %d err=%v", len(all), err)
	}
}

func TestStore_InsertAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, ev := range []*queue.ActivityEvent{
		event("a", 1, "Selected character Warrior", base),
		event("b", 1, "Entered Room 1: Entrance Hall", base.Add(time.Minute)),
		event("c", 2, "Viewed inventory", base.Add(2*time.Minute)),
	} {
		inserted, err := s.Insert(ctx, ev)
		if err != nil || !inserted {
			t.Fatalf("insert %d: inserted=%v err=%v", i, inserted, err)
		}
	}

	inserted, err := s.Insert(ctx, event("b", 1, "Entered Room 1: Entrance Hall", base.Add(time.Minute)))
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if inserted {
		t.Error("redelivered event should be ignored")
	}

	mine, err := s.ListByPlayer(ctx, 1, 0)
	if err != nil {
		t.Fatalf("ListByPlayer: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 rows for player 1, got %d", len(mine))
	}
	if mine[0].EventID != "b" {
		t.Errorf("expected newest first, got %s", mine[0].EventID)
	}
	if !mine[1].Timestamp.Equal(base) {
		t.Errorf("timestamp round trip: got %v", mine[1].Timestamp)
	}

	limited, _ := s.ListAll(ctx, 2)
	if len(limited) != 2 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}

	n, err := s.Clear(ctx)
	if err != nil || n != 3 {
		t.Errorf("expected 3 rows cleared, got %d err=%v", n, err)
	}
	all, _ := s.ListAll(ctx, 0)
	if len(all) != 0 {
		t.Errorf("expected empty log, got %d", len(all))
	}
}

func TestStore_InsertRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Insert(context.Background(), event("x", 0, "nothing", time.Now()))
	if !errors.Is(err, queue.ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
}

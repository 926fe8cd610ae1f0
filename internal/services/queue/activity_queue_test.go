package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/dungeon-engine/pkg/queue"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := NewClient("redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	return client, mr
}

func TestActivityQueue_PublishAndDequeue(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	aq := NewActivityQueue(client)
	ctx := context.Background()

	first := queue.NewActivityEvent(1, "Selected character Warrior")
	second := queue.NewActivityEvent(1, "Entered Room 1: Entrance Hall")
	for _, ev := range []*queue.ActivityEvent{first, second} {
		if err := aq.Publish(ctx, ev); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	depth, err := aq.Depth(ctx)
	if err != nil || depth != 2 {
		t.Fatalf("expected depth 2, got %d err=%v", depth, err)
	}

	payload, err := aq.BlockingDequeue(ctx, time.Second)
	if err != nil {
		t.Fatalf("BlockingDequeue: %v", err)
	}
	got, err := queue.FromJSON(payload)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.EventID != first.EventID || got.Action != first.Action {
		t.Errorf("expected FIFO order, got %+v", got)
	}
}

func TestActivityQueue_DequeueEmptyTimesOut(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	aq := NewActivityQueue(client)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	payload, err := aq.BlockingDequeue(ctx, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("expected no error on empty queue, got %v", err)
	}
	if payload != nil {
		t.Errorf("expected nil payload, got %q", payload)
	}
}

func TestActivityQueue_RequeueAndDeadLetter(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	aq := NewActivityQueue(client)
	ctx := context.Background()

	if err := aq.Requeue(ctx, []byte(`{"player_id":1,"action":"x"}`)); err != nil {
		t.Fatalf("Requeue: %v", err)
	}
	if err := aq.DeadLetter(ctx, []byte("not json")); err != nil {
		t.Fatalf("DeadLetter: %v", err)
	}

	if depth, _ := aq.Depth(ctx); depth != 1 {
		t.Errorf("expected 1 pending, got %d", depth)
	}
	if dead, _ := aq.DeadDepth(ctx); dead != 1 {
		t.Errorf("expected 1 dead-lettered, got %d", dead)
	}
	list, err := mr.List(queue.ActivityQueueName + DeadLetterSuffix)
	if err != nil || len(list) != 1 || list[0] != "not json" {
		t.Errorf("unexpected dead-letter list %v err=%v", list, err)
	}

	if err := aq.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if depth, _ := aq.Depth(ctx); depth != 0 {
		t.Errorf("expected empty queue after clear, got %d", depth)
	}
}

func TestNewClientFromRedis_CloseKeepsConnection(t *testing.T) {
	owner, mr := setupTestRedis(t)
	defer mr.Close()
	defer owner.Close()

	shared := NewClientFromRedis(owner.GetRedisClient(), slog.Default())
	if err := shared.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := owner.GetRedisClient().Ping(context.Background()).Err(); err != nil {
		t.Errorf("shared close should not close the connection: %v", err)
	}
}

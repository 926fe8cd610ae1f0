package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jwebster45206/dungeon-engine/internal/services/queue"
	pkgqueue "github.com/jwebster45206/dungeon-engine/pkg/queue"
)

func main() {
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis URL")
	playerID := flag.Int("player", 1, "Player ID the events belong to")
	count := flag.Int("n", 3, "Number of events to enqueue")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client, err := queue.NewClient(*redisURL, logger)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("Connected to Redis successfully!")

	activityQueue := queue.NewActivityQueue(client)
	actions := []string{
		"Entered Room 1: Entrance Hall",
		"Picked up Golden Sword (ID: 1) from room 1",
		"Entered Room 2: Flooded Armory",
		"Started combat with Goblin",
	}
	for i := 0; i < *count; i++ {
		event := pkgqueue.NewActivityEvent(*playerID, actions[i%len(actions)])
		if err := activityQueue.Publish(ctx, event); err != nil {
			log.Fatal("Failed to enqueue event:", err)
		}
		fmt.Printf("✅ Enqueued activity event %s: %s\n", event.EventID, event.Action)
	}

	depth, err := activityQueue.Depth(ctx)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}

	fmt.Printf("\n📊 Queue depth: %d events\n", depth)
	fmt.Println("\n💡 Now start the worker to see it store these events!")
	fmt.Println("   Run: go run ./cmd/worker")
}

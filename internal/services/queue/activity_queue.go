package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
)

// DeadLetterSuffix is appended to a queue name for payloads that could not be
// decoded.
const DeadLetterSuffix = ":dead"

// ActivityQueue carries activity events from the game services to the
// activity worker over a Redis list.
type ActivityQueue struct {
	client *Client
	name   string
}

func NewActivityQueue(client *Client) *ActivityQueue {
	return &ActivityQueue{client: client, name: queue.ActivityQueueName}
}

// Name returns the list key.
func (aq *ActivityQueue) Name() string {
	return aq.name
}

// Publish appends an event to the tail of the queue.
func (aq *ActivityQueue) Publish(ctx context.Context, event *queue.ActivityEvent) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize activity event: %w", err)
	}
	if err := aq.client.rdb.RPush(ctx, aq.name, data).Err(); err != nil {
		return fmt.Errorf("failed to publish activity event: %w", err)
	}
	return nil
}

// BlockingDequeue waits up to timeout for the next raw payload. It returns
// nil with no error when the wait times out or ctx ends.
func (aq *ActivityQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	result, err := aq.client.rdb.BLPop(ctx, timeout, aq.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue activity event: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}
	return []byte(result[1]), nil
}

// Requeue puts a payload back at the tail for a later attempt.
func (aq *ActivityQueue) Requeue(ctx context.Context, payload []byte) error {
	if err := aq.client.rdb.RPush(ctx, aq.name, payload).Err(); err != nil {
		return fmt.Errorf("failed to requeue activity event: %w", err)
	}
	return nil
}

// DeadLetter parks a payload that can never be stored.
func (aq *ActivityQueue) DeadLetter(ctx context.Context, payload []byte) error {
	if err := aq.client.rdb.RPush(ctx, aq.name+DeadLetterSuffix, payload).Err(); err != nil {
		return fmt.Errorf("failed to dead-letter activity event: %w", err)
	}
	return nil
}

// Depth returns the number of pending events.
func (aq *ActivityQueue) Depth(ctx context.Context) (int, error) {
	count, err := aq.client.rdb.LLen(ctx, aq.name).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get activity queue depth: %w", err)
	}
	return int(count), nil
}

// DeadDepth returns the number of dead-lettered payloads.
func (aq *ActivityQueue) DeadDepth(ctx context.Context) (int, error) {
	count, err := aq.client.rdb.LLen(ctx, aq.name+DeadLetterSuffix).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get dead-letter depth: %w", err)
	}
	return int(count), nil
}

// Clear drops pending and dead-lettered payloads.
func (aq *ActivityQueue) Clear(ctx context.Context) error {
	if err := aq.client.rdb.Del(ctx, aq.name, aq.name+DeadLetterSuffix).Err(); err != nil {
		return fmt.Errorf("failed to clear activity queue: %w", err)
	}
	return nil
}

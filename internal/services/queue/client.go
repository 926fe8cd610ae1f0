package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/dungeon-engine/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client for queue operations
type Client struct {
	rdb    *redis.Client
	logger *slog.Logger
	owned  bool
}

// NewClient creates a new queue client with its own connection
func NewClient(redisURL string, logger *slog.Logger) (*Client, error) {
	rdb, err := storage.NewClient(redisURL)
	if err != nil {
		return nil, err
	}

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis for queue service", "url", redisURL)

	return &Client{
		rdb:    rdb,
		logger: logger,
		owned:  true,
	}, nil
}

// NewClientFromRedis shares an existing connection. Close leaves it open.
func NewClientFromRedis(rdb *redis.Client, logger *slog.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.rdb.Close()
}

// GetRedisClient returns the underlying Redis client for direct operations
func (c *Client) GetRedisClient() *redis.Client {
	return c.rdb
}

package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// Key layout. Record keys hold JSON; the plural keys are sets of IDs.
const (
	keyPlayer       = "player:"
	keyPlayers      = "players"
	keyPlayerSeq    = "players:next_id"
	keyCharacter    = "character:"
	keyCharacters   = "characters"
	keyItem         = "item:"
	keyItems        = "items"
	keyItemSeq      = "items:next_id"
	keyRoom         = "room:"
	keyRooms        = "rooms"
	keyRoomSeq      = "rooms:next_id"
	keyEnemy        = "enemy:"
	keyEnemies      = "enemies"
	keyInventory    = "inventory:"
	keyInvPlayers   = "inventory:players"
	keyInteractions = "interactions:"
	keyScores       = "scores:"
	keyEncounter    = "combat:"
)

// RedisStorage implements the Storage interface on top of Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewClient builds a Redis client from either a redis:// URL or a bare
// host:port address.
func NewClient(redisURL string) (*redis.Client, error) {
	if strings.Contains(redisURL, "://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	rdb, err := NewClient(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisStorage{
		client: rdb,
		logger: logger,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Client exposes the underlying client for components sharing the
// connection, such as the activity queue.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// JSON helpers

func getJSON[T any](ctx context.Context, rdb *redis.Client, key string) (*T, error) {
	data, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return &v, nil
}

// setJSON writes a record and adds its ID to the index set in one
// transaction.
func setJSON(ctx context.Context, rdb *redis.Client, key, index, member string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	_, err = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, data, 0)
		if index != "" {
			p.SAdd(ctx, index, member)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func deleteIndexed(ctx context.Context, rdb *redis.Client, key, index, member string) error {
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.SRem(ctx, index, member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// listIndexed loads every record named in an index set, skipping members
// whose record has gone missing.
func listIndexed[T any](ctx context.Context, rdb *redis.Client, index, prefix string) ([]*T, error) {
	members, err := rdb.SMembers(ctx, index).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", index, err)
	}
	sortMembers(members)

	out := make([]*T, 0, len(members))
	for _, m := range members {
		v, err := getJSON[T](ctx, rdb, prefix+m)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// sortMembers orders numeric IDs numerically and everything else lexically.
func sortMembers(members []string) {
	slices.SortFunc(members, func(a, b string) int {
		ai, aerr := strconv.Atoi(a)
		bi, berr := strconv.Atoi(b)
		if aerr == nil && berr == nil {
			return cmp.Compare(ai, bi)
		}
		return strings.Compare(a, b)
	})
}

// Locks

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// AcquireLock attempts to take key for owner. Returns false if another
// owner holds it.
func (r *RedisStorage) AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// ReleaseLock deletes key only if owner still holds it.
func (r *RedisStorage) ReleaseLock(ctx context.Context, key, owner string) error {
	if err := releaseScript.Run(ctx, r.client, []string{key}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/combat"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
	"github.com/redis/go-redis/v9"
)

// Inventory is a hash per player: item ID -> unix nanos when added.

func (r *RedisStorage) AddInventoryItem(ctx context.Context, playerID, itemID int) (bool, error) {
	key := keyInventory + strconv.Itoa(playerID)
	added, err := r.client.HSetNX(ctx, key, strconv.Itoa(itemID), time.Now().UTC().UnixNano()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add inventory item: %w", err)
	}
	if added {
		if err := r.client.SAdd(ctx, keyInvPlayers, playerID).Err(); err != nil {
			return true, fmt.Errorf("failed to index inventory: %w", err)
		}
	}
	return added, nil
}

func (r *RedisStorage) RemoveInventoryItem(ctx context.Context, playerID, itemID int) (bool, error) {
	n, err := r.client.HDel(ctx, keyInventory+strconv.Itoa(playerID), strconv.Itoa(itemID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove inventory item: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStorage) HasInventoryItem(ctx context.Context, playerID, itemID int) (bool, error) {
	ok, err := r.client.HExists(ctx, keyInventory+strconv.Itoa(playerID), strconv.Itoa(itemID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check inventory: %w", err)
	}
	return ok, nil
}

func (r *RedisStorage) ListInventory(ctx context.Context, playerID int) ([]world.InventoryEntry, error) {
	raw, err := r.client.HGetAll(ctx, keyInventory+strconv.Itoa(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	fields := make([]string, 0, len(raw))
	for f := range raw {
		fields = append(fields, f)
	}
	sortMembers(fields)

	out := make([]world.InventoryEntry, 0, len(raw))
	for _, f := range fields {
		itemID, err := strconv.Atoi(f)
		if err != nil {
			r.logger.Warn("Skipping malformed inventory field", "player_id", playerID, "field", f)
			continue
		}
		nanos, _ := strconv.ParseInt(raw[f], 10, 64)
		out = append(out, world.InventoryEntry{
			PlayerID: playerID,
			ItemID:   itemID,
			AddedAt:  time.Unix(0, nanos).UTC(),
		})
	}
	return out, nil
}

func (r *RedisStorage) ListAllInventory(ctx context.Context) ([]world.InventoryEntry, error) {
	members, err := r.client.SMembers(ctx, keyInvPlayers).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory owners: %w", err)
	}
	sortMembers(members)

	var out []world.InventoryEntry
	for _, m := range members {
		playerID, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		entries, err := r.ListInventory(ctx, playerID)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

func (r *RedisStorage) ClearInventory(ctx context.Context, playerID int) (int, error) {
	key := keyInventory + strconv.Itoa(playerID)
	var n *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		n = p.HLen(ctx, key)
		p.Del(ctx, key)
		p.SRem(ctx, keyInvPlayers, playerID)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear inventory: %w", err)
	}
	return int(n.Val()), nil
}

// Interactions are a hash per player: room ID -> JSON record.

func (r *RedisStorage) GetInteraction(ctx context.Context, playerID, roomID int) (*world.Interaction, error) {
	data, err := r.client.HGet(ctx, keyInteractions+strconv.Itoa(playerID), strconv.Itoa(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load interaction: %w", err)
	}
	var in world.Interaction
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interaction: %w", err)
	}
	return &in, nil
}

func (r *RedisStorage) SaveInteraction(ctx context.Context, in *world.Interaction) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction: %w", err)
	}
	key := keyInteractions + strconv.Itoa(in.PlayerID)
	if err := r.client.HSet(ctx, key, strconv.Itoa(in.RoomID), data).Err(); err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListInteractions(ctx context.Context, playerID int) ([]*world.Interaction, error) {
	raw, err := r.client.HGetAll(ctx, keyInteractions+strconv.Itoa(playerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	rooms := make([]string, 0, len(raw))
	for k := range raw {
		rooms = append(rooms, k)
	}
	sortMembers(rooms)

	out := make([]*world.Interaction, 0, len(raw))
	for _, k := range rooms {
		var in world.Interaction
		if err := json.Unmarshal([]byte(raw[k]), &in); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interaction: %w", err)
		}
		out = append(out, &in)
	}
	return out, nil
}

func (r *RedisStorage) ClearInteractions(ctx context.Context, playerID int) error {
	if err := r.client.Del(ctx, keyInteractions+strconv.Itoa(playerID)).Err(); err != nil {
		return fmt.Errorf("failed to clear interactions: %w", err)
	}
	return nil
}

// Score ledger is an append-only list per player.

func (r *RedisStorage) AppendScore(ctx context.Context, e world.ScoreEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal score entry: %w", err)
	}
	if err := r.client.RPush(ctx, keyScores+strconv.Itoa(e.PlayerID), data).Err(); err != nil {
		return fmt.Errorf("failed to append score: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListScores(ctx context.Context, playerID int) ([]world.ScoreEntry, error) {
	raw, err := r.client.LRange(ctx, keyScores+strconv.Itoa(playerID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	out := make([]world.ScoreEntry, 0, len(raw))
	for _, s := range raw {
		var e world.ScoreEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score entry: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *RedisStorage) ClearScores(ctx context.Context, playerID int) error {
	if err := r.client.Del(ctx, keyScores+strconv.Itoa(playerID)).Err(); err != nil {
		return fmt.Errorf("failed to clear scores: %w", err)
	}
	return nil
}

// Encounters

func (r *RedisStorage) SaveEncounter(ctx context.Context, enc *combat.Encounter) error {
	return setJSON(ctx, r.client, keyEncounter+strconv.Itoa(enc.PlayerID), "", "", enc)
}

func (r *RedisStorage) GetEncounter(ctx context.Context, playerID int) (*combat.Encounter, error) {
	return getJSON[combat.Encounter](ctx, r.client, keyEncounter+strconv.Itoa(playerID))
}

func (r *RedisStorage) DeleteEncounter(ctx context.Context, playerID int) error {
	if err := r.client.Del(ctx, keyEncounter+strconv.Itoa(playerID)).Err(); err != nil {
		return fmt.Errorf("failed to delete encounter: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
)

// Player operations

func (r *RedisStorage) CreatePlayer(ctx context.Context, p *actor.PlayerSpec) (*actor.PlayerSpec, error) {
	next, err := r.client.Incr(ctx, keyPlayerSeq).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate player id: %w", err)
	}

	c := *p
	c.ID = int(next)
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	if err := r.SavePlayer(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RedisStorage) GetPlayer(ctx context.Context, id int) (*actor.PlayerSpec, error) {
	p, err := getJSON[actor.PlayerSpec](ctx, r.client, keyPlayer+strconv.Itoa(id))
	if err != nil {
		r.logger.Error("Failed to load player", "player_id", id, "error", err)
		return nil, err
	}
	return p, nil
}

func (r *RedisStorage) SavePlayer(ctx context.Context, p *actor.PlayerSpec) error {
	member := strconv.Itoa(p.ID)
	if err := setJSON(ctx, r.client, keyPlayer+member, keyPlayers, member, p); err != nil {
		r.logger.Error("Failed to save player", "player_id", p.ID, "error", err)
		return err
	}
	return nil
}

func (r *RedisStorage) DeletePlayer(ctx context.Context, id int) error {
	member := strconv.Itoa(id)
	return deleteIndexed(ctx, r.client, keyPlayer+member, keyPlayers, member)
}

func (r *RedisStorage) ListPlayers(ctx context.Context) ([]*actor.PlayerSpec, error) {
	return listIndexed[actor.PlayerSpec](ctx, r.client, keyPlayers, keyPlayer)
}

package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
)

// Character operations

func (r *RedisStorage) SaveCharacter(ctx context.Context, c *actor.Character) error {
	key := actor.CharacterKey(c.Name)
	return setJSON(ctx, r.client, keyCharacter+key, keyCharacters, key, c)
}

func (r *RedisStorage) GetCharacter(ctx context.Context, name string) (*actor.Character, error) {
	return getJSON[actor.Character](ctx, r.client, keyCharacter+actor.CharacterKey(name))
}

func (r *RedisStorage) ListCharacters(ctx context.Context) ([]*actor.Character, error) {
	return listIndexed[actor.Character](ctx, r.client, keyCharacters, keyCharacter)
}

// Item operations

func (r *RedisStorage) CreateItem(ctx context.Context, it *world.Item) (*world.Item, error) {
	c := *it
	if c.ID == 0 {
		n, err := r.nextFreeID(ctx, keyItemSeq, keyItems)
		if err != nil {
			return nil, err
		}
		c.ID = n
	}
	if err := r.SaveItem(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RedisStorage) SaveItem(ctx context.Context, it *world.Item) error {
	member := strconv.Itoa(it.ID)
	return setJSON(ctx, r.client, keyItem+member, keyItems, member, it)
}

func (r *RedisStorage) GetItem(ctx context.Context, id int) (*world.Item, error) {
	return getJSON[world.Item](ctx, r.client, keyItem+strconv.Itoa(id))
}

func (r *RedisStorage) DeleteItem(ctx context.Context, id int) error {
	member := strconv.Itoa(id)
	return deleteIndexed(ctx, r.client, keyItem+member, keyItems, member)
}

func (r *RedisStorage) ListItems(ctx context.Context) ([]*world.Item, error) {
	return listIndexed[world.Item](ctx, r.client, keyItems, keyItem)
}

// Room operations

func (r *RedisStorage) CreateRoom(ctx context.Context, room *world.Room) (*world.Room, error) {
	c := room.Clone()
	if c.ID == 0 {
		n, err := r.nextFreeID(ctx, keyRoomSeq, keyRooms)
		if err != nil {
			return nil, err
		}
		c.ID = n
	}
	if err := r.SaveRoom(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *RedisStorage) SaveRoom(ctx context.Context, room *world.Room) error {
	member := strconv.Itoa(room.ID)
	return setJSON(ctx, r.client, keyRoom+member, keyRooms, member, room)
}

func (r *RedisStorage) GetRoom(ctx context.Context, id int) (*world.Room, error) {
	return getJSON[world.Room](ctx, r.client, keyRoom+strconv.Itoa(id))
}

func (r *RedisStorage) DeleteRoom(ctx context.Context, id int) error {
	member := strconv.Itoa(id)
	return deleteIndexed(ctx, r.client, keyRoom+member, keyRooms, member)
}

func (r *RedisStorage) ListRooms(ctx context.Context) ([]*world.Room, error) {
	return listIndexed[world.Room](ctx, r.client, keyRooms, keyRoom)
}

// Enemy operations

func (r *RedisStorage) SaveEnemy(ctx context.Context, e *actor.Enemy) error {
	member := strconv.Itoa(e.ID)
	return setJSON(ctx, r.client, keyEnemy+member, keyEnemies, member, e)
}

func (r *RedisStorage) GetEnemy(ctx context.Context, id int) (*actor.Enemy, error) {
	return getJSON[actor.Enemy](ctx, r.client, keyEnemy+strconv.Itoa(id))
}

func (r *RedisStorage) ListEnemies(ctx context.Context) ([]*actor.Enemy, error) {
	return listIndexed[actor.Enemy](ctx, r.client, keyEnemies, keyEnemy)
}

// nextFreeID advances a sequence past any ID already taken by seeded
// records.
func (r *RedisStorage) nextFreeID(ctx context.Context, seq, index string) (int, error) {
	for {
		n, err := r.client.Incr(ctx, seq).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to allocate id from %s: %w", seq, err)
		}
		taken, err := r.client.SIsMember(ctx, index, strconv.FormatInt(n, 10)).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to check id %d in %s: %w", n, index, err)
		}
		if !taken {
			return int(n), nil
		}
	}
}

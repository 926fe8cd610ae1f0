package storage

import (
	"context"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/combat"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
)

// Storage defines a unified interface for all game state persistence.
// Get methods return (nil, nil) when the record does not exist.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Players. CreatePlayer allocates the ID.
	CreatePlayer(ctx context.Context, p *actor.PlayerSpec) (*actor.PlayerSpec, error)
	GetPlayer(ctx context.Context, id int) (*actor.PlayerSpec, error)
	SavePlayer(ctx context.Context, p *actor.PlayerSpec) error
	DeletePlayer(ctx context.Context, id int) error
	ListPlayers(ctx context.Context) ([]*actor.PlayerSpec, error)

	// Character templates
	SaveCharacter(ctx context.Context, c *actor.Character) error
	GetCharacter(ctx context.Context, name string) (*actor.Character, error)
	ListCharacters(ctx context.Context) ([]*actor.Character, error)

	// Items. CreateItem allocates the ID when it is zero.
	CreateItem(ctx context.Context, it *world.Item) (*world.Item, error)
	SaveItem(ctx context.Context, it *world.Item) error
	GetItem(ctx context.Context, id int) (*world.Item, error)
	DeleteItem(ctx context.Context, id int) error
	ListItems(ctx context.Context) ([]*world.Item, error)

	// Rooms. CreateRoom allocates the ID when it is zero.
	CreateRoom(ctx context.Context, r *world.Room) (*world.Room, error)
	SaveRoom(ctx context.Context, r *world.Room) error
	GetRoom(ctx context.Context, id int) (*world.Room, error)
	DeleteRoom(ctx context.Context, id int) error
	ListRooms(ctx context.Context) ([]*world.Room, error)

	// Enemies
	SaveEnemy(ctx context.Context, e *actor.Enemy) error
	GetEnemy(ctx context.Context, id int) (*actor.Enemy, error)
	ListEnemies(ctx context.Context) ([]*actor.Enemy, error)

	// Inventory. Add and Remove report whether anything changed.
	AddInventoryItem(ctx context.Context, playerID, itemID int) (bool, error)
	RemoveInventoryItem(ctx context.Context, playerID, itemID int) (bool, error)
	HasInventoryItem(ctx context.Context, playerID, itemID int) (bool, error)
	ListInventory(ctx context.Context, playerID int) ([]world.InventoryEntry, error)
	ListAllInventory(ctx context.Context) ([]world.InventoryEntry, error)
	ClearInventory(ctx context.Context, playerID int) (int, error)

	// Player-room interactions
	GetInteraction(ctx context.Context, playerID, roomID int) (*world.Interaction, error)
	SaveInteraction(ctx context.Context, in *world.Interaction) error
	ListInteractions(ctx context.Context, playerID int) ([]*world.Interaction, error)
	ClearInteractions(ctx context.Context, playerID int) error

	// Score ledger
	AppendScore(ctx context.Context, e world.ScoreEntry) error
	ListScores(ctx context.Context, playerID int) ([]world.ScoreEntry, error)
	ClearScores(ctx context.Context, playerID int) error

	// Combat encounters, one per player
	SaveEncounter(ctx context.Context, enc *combat.Encounter) error
	GetEncounter(ctx context.Context, playerID int) (*combat.Encounter, error)
	DeleteEncounter(ctx context.Context, playerID int) error

	// Per-player mutual exclusion
	AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, owner string) error
}

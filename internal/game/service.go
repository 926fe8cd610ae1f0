// Package game orchestrates the atomic stores into game actions: moving
// between rooms, picking up items, fighting, and resetting a run.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-engine/internal/observe"
	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/dice"
	"github.com/jwebster45206/dungeon-engine/pkg/queue"
	"github.com/jwebster45206/dungeon-engine/pkg/storage"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
)

const DefaultLockTTL = 30 * time.Second

// Publisher sends activity events to the activity log.
type Publisher interface {
	Publish(ctx context.Context, event *queue.ActivityEvent) error
}

type Service struct {
	store     storage.Storage
	world     *world.World
	roller    dice.Roller
	publisher Publisher
	metrics   *observe.Metrics
	log       *slog.Logger
	lockTTL   time.Duration
}

type Option func(*Service)

func WithRoller(r dice.Roller) Option {
	return func(s *Service) { s.roller = r }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func NewService(store storage.Storage, w *world.World, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		world:   w,
		roller:  dice.NewRandomRoller(),
		log:     log,
		lockTTL: DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// World returns the world definition the service restores from.
func (s *Service) World() *world.World {
	return s.world
}

// Seed writes every world record that is missing from the store. Existing
// records are left alone so a restart does not undo progress.
func (s *Service) Seed(ctx context.Context) error {
	seeded := 0
	for i := range s.world.Characters {
		c := &s.world.Characters[i]
		existing, err := s.store.GetCharacter(ctx, c.Name)
		if err != nil {
			return fmt.Errorf("failed to check character %s: %w", c.Name, err)
		}
		if existing == nil {
			if err := s.store.SaveCharacter(ctx, c); err != nil {
				return fmt.Errorf("failed to seed character %s: %w", c.Name, err)
			}
			seeded++
		}
	}
	for i := range s.world.Items {
		it := &s.world.Items[i]
		existing, err := s.store.GetItem(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("failed to check item %d: %w", it.ID, err)
		}
		if existing == nil {
			if err := s.store.SaveItem(ctx, it); err != nil {
				return fmt.Errorf("failed to seed item %d: %w", it.ID, err)
			}
			seeded++
		}
	}
	for i := range s.world.Enemies {
		e := &s.world.Enemies[i]
		existing, err := s.store.GetEnemy(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("failed to check enemy %d: %w", e.ID, err)
		}
		if existing == nil {
			if err := s.store.SaveEnemy(ctx, e); err != nil {
				return fmt.Errorf("failed to seed enemy %d: %w", e.ID, err)
			}
			seeded++
		}
	}
	for i := range s.world.Rooms {
		r := &s.world.Rooms[i]
		existing, err := s.store.GetRoom(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("failed to check room %d: %w", r.ID, err)
		}
		if existing == nil {
			if err := s.store.SaveRoom(ctx, r.Clone()); err != nil {
				return fmt.Errorf("failed to seed room %d: %w", r.ID, err)
			}
			seeded++
		}
	}
	s.log.Info("World seeded", "world", s.world.Name, "records_written", seeded)
	return nil
}

// withLock serialises mutations for one player across API instances.
func (s *Service) withLock(ctx context.Context, playerID int, fn func() error) error {
	key := "player-lock:" + strconv.Itoa(playerID)
	owner := uuid.New().String()

	ok, err := s.store.AcquireLock(ctx, key, owner, s.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire player lock: %w", err)
	}
	if !ok {
		return newError(ErrBusy, "another action for player %d is in progress", playerID)
	}
	defer func() {
		// The request context may already be done.
		if err := s.store.ReleaseLock(context.WithoutCancel(ctx), key, owner); err != nil {
			s.log.Error("Failed to release player lock", "error", err, "player_id", playerID)
		}
	}()
	return fn()
}

// publish logs player activity. Failures never fail the game action.
func (s *Service) publish(ctx context.Context, playerID int, format string, args ...any) {
	if s.publisher == nil {
		return
	}
	event := queue.NewActivityEvent(playerID, fmt.Sprintf(format, args...))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish activity event",
			"error", err,
			"player_id", playerID,
			"action", event.Action)
		s.metrics.RecordActivity(ctx, "publish_failed")
		return
	}
	s.metrics.RecordActivity(ctx, "published")
}

func (s *Service) loadPlayer(ctx context.Context, playerID int) (*actor.Player, error) {
	if playerID <= 0 {
		return nil, badRequest("player_id is required")
	}
	spec, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %d: %w", playerID, err)
	}
	if spec == nil {
		return nil, notFound("player %d not found", playerID)
	}
	p, err := actor.NewPlayerFromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build player %d: %w", playerID, err)
	}
	return p, nil
}

func (s *Service) savePlayer(ctx context.Context, p *actor.Player) error {
	if err := s.store.SavePlayer(ctx, p.Spec); err != nil {
		return fmt.Errorf("failed to save player %d: %w", p.Spec.ID, err)
	}
	return nil
}

func (s *Service) loadRoom(ctx context.Context, roomID int) (*world.Room, error) {
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	if room == nil {
		return nil, notFound("room %d not found", roomID)
	}
	return room, nil
}

func (s *Service) loadItem(ctx context.Context, itemID int) (*world.Item, error) {
	it, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d: %w", itemID, err)
	}
	if it == nil {
		return nil, notFound("item %d not found", itemID)
	}
	return it, nil
}

// roomHostile reports whether any enemy in the room is still alive.
func (s *Service) roomHostile(ctx context.Context, room *world.Room) (bool, error) {
	for _, id := range room.EnemyIDs {
		e, err := s.store.GetEnemy(ctx, id)
		if err != nil {
			return false, fmt.Errorf("failed to load enemy %d: %w", id, err)
		}
		if e != nil && !e.IsDefeated() {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) interaction(ctx context.Context, playerID, roomID int) (*world.Interaction, error) {
	in, err := s.store.GetInteraction(ctx, playerID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interaction: %w", err)
	}
	if in == nil {
		in = world.NewInteraction(playerID, roomID)
	}
	return in, nil
}

// award appends to the score ledger and keeps the player's running total.
func (s *Service) award(ctx context.Context, p *actor.Player, points int, reason world.ScoreReason) error {
	if points == 0 {
		return nil
	}
	entry := world.ScoreEntry{
		PlayerID:  p.Spec.ID,
		Points:    points,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	if err := s.store.AppendScore(ctx, entry); err != nil {
		return fmt.Errorf("failed to record score: %w", err)
	}
	p.Spec.Score += points
	return nil
}

// restoreEnemies puts every enemy back to its world definition.
func (s *Service) restoreEnemies(ctx context.Context) error {
	for _, e := range s.world.Enemies {
		fresh := e
		fresh.LootItemIDs = append([]int(nil), e.LootItemIDs...)
		fresh.Restore()
		if err := s.store.SaveEnemy(ctx, &fresh); err != nil {
			return fmt.Errorf("failed to restore enemy %d: %w", e.ID, err)
		}
	}
	return nil
}

// restoreRooms puts every room back to its world definition.
func (s *Service) restoreRooms(ctx context.Context) error {
	for i := range s.world.Rooms {
		r := &s.world.Rooms[i]
		if err := s.store.SaveRoom(ctx, r.Clone()); err != nil {
			return fmt.Errorf("failed to restore room %d: %w", r.ID, err)
		}
	}
	return nil
}

// RestoreEnemies is the enemy service reset.
func (s *Service) RestoreEnemies(ctx context.Context) error {
	return s.restoreEnemies(ctx)
}

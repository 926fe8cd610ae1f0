package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
	"golang.org/x/sync/errgroup"
)

type ItemView struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type EnemyView struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Health      int    `json:"health"`
}

// RoomView is what a player sees on entering a room.
type RoomView struct {
	Message           string      `json:"message"`
	RoomID            int         `json:"room_id"`
	RoomName          string      `json:"room_name"`
	Description       string      `json:"description"`
	PlayerCurrentRoom int         `json:"player_current_room"`
	Items             []ItemView  `json:"items"`
	Enemies           []EnemyView `json:"enemies"`
	IsFinalRoom       bool        `json:"is_final_room"`
	Unlocked          bool        `json:"unlocked,omitempty"`
}

// EffectResult describes what an item did to the player.
type EffectResult struct {
	EffectApplied     bool   `json:"effect_applied"`
	EffectDescription string `json:"effect_description,omitempty"`
	NewAttack         *int   `json:"new_attack,omitempty"`
	NewHealth         *int   `json:"new_health,omitempty"`
	NewMaxHealth      *int   `json:"new_max_health,omitempty"`
}

type PickupResult struct {
	Message       string `json:"message"`
	PlayerID      int    `json:"player_id"`
	ItemID        int    `json:"item_id"`
	RoomID        int    `json:"room_id"`
	ItemName      string `json:"item_name"`
	PointsAwarded int    `json:"points_awarded"`
	*EffectResult
}

// SelectCharacter gives a player a character's stats and takes them out of
// the dungeon.
func (s *Service) SelectCharacter(ctx context.Context, playerID int, characterName string) (*actor.Player, error) {
	characterName = strings.TrimSpace(characterName)
	if playerID <= 0 || characterName == "" {
		return nil, badRequest("player_id and character_name are required")
	}

	c, err := s.store.GetCharacter(ctx, characterName)
	if err != nil {
		return nil, fmt.Errorf("failed to load character: %w", err)
	}
	if c == nil {
		return nil, notFound("character %q not found", characterName)
	}

	var p *actor.Player
	err = s.withLock(ctx, playerID, func() error {
		p, err = s.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		if err := p.ApplyCharacter(c); err != nil {
			return fmt.Errorf("failed to apply character: %w", err)
		}
		p.Spec.RoomID = 0
		return s.savePlayer(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Character selected", "player_id", playerID, "character", c.Name)
	s.publish(ctx, playerID, "Selected character %s", c.Name)
	return p, nil
}

// unlockRoom clears the door flag on a freshly loaded copy of the room, so
// item and enemy changes made after the gate read it are kept.
func (s *Service) unlockRoom(ctx context.Context, roomID int) (*world.Room, error) {
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room.DoorLocked = false
	if err := s.store.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to unlock room: %w", err)
	}
	return room, nil
}

// EnterRoom moves a player through the room gate. Checks run in order:
// room and player exist, no fight in progress, a passage exists, the
// current room is clear, and the door is open or the player holds its key.
func (s *Service) EnterRoom(ctx context.Context, playerID, roomID int) (*RoomView, error) {
	if playerID <= 0 {
		return nil, badRequest("player_id is required")
	}
	target, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var (
		p        *actor.Player
		decision world.EntryDecision
	)
	err = s.withLock(ctx, playerID, func() error {
		p, err = s.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}

		enc, err := s.store.GetEncounter(ctx, playerID)
		if err != nil {
			return fmt.Errorf("failed to load encounter: %w", err)
		}
		if enc != nil && !enc.Over {
			return conflict("you are fighting the %s", enc.EnemyName)
		}

		req := world.EntryRequest{Target: target, StartRoomID: s.world.StartRoomID}
		if p.Spec.RoomID != 0 {
			current, err := s.store.GetRoom(ctx, p.Spec.RoomID)
			if err != nil {
				return fmt.Errorf("failed to load current room: %w", err)
			}
			req.Current = current
			if current != nil && current.ID != target.ID {
				if req.CurrentHostile, err = s.roomHostile(ctx, current); err != nil {
					return err
				}
			}
		}
		if target.DoorLocked && target.KeyItemID != 0 {
			if req.HasKey, err = s.store.HasInventoryItem(ctx, playerID, target.KeyItemID); err != nil {
				return fmt.Errorf("failed to check key: %w", err)
			}
		}

		decision, err = world.CheckEntry(req)
		switch {
		case errors.Is(err, world.ErrDoorLocked):
			return wrapKind(ErrForbidden, fmt.Errorf("the door to %s is locked", target.Name))
		case err != nil:
			return wrapKind(ErrConflict, err)
		}

		if decision.Unlock {
			if target, err = s.unlockRoom(ctx, target.ID); err != nil {
				return err
			}
		}
		if enc != nil {
			// Finished fights are cleared once the player moves on.
			if err := s.store.DeleteEncounter(ctx, playerID); err != nil {
				return fmt.Errorf("failed to clear encounter: %w", err)
			}
		}
		p.Spec.RoomID = target.ID
		return s.savePlayer(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	if decision.Unlock {
		s.log.Info("Door unlocked", "player_id", playerID, "room_id", target.ID)
		s.publish(ctx, playerID, "Unlocked %s", target.Name)
	}
	s.metrics.RecordRoomEntered(ctx, target.ID)
	s.publish(ctx, playerID, "Entered Room %d: %s", target.ID, target.Name)

	view, err := s.describeRoom(ctx, playerID, target)
	if err != nil {
		return nil, err
	}
	view.Unlocked = decision.Unlock
	switch {
	case decision.Unlock:
		view.Message = fmt.Sprintf("You unlock the door and enter %s.", target.Name)
	case decision.Reentry:
		view.Message = fmt.Sprintf("You look around %s again.", target.Name)
	default:
		view.Message = fmt.Sprintf("You enter %s.", target.Name)
	}
	return view, nil
}

// describeRoom gathers the items the player has not taken and the enemies
// still alive. Lookups run concurrently.
func (s *Service) describeRoom(ctx context.Context, playerID int, room *world.Room) (*RoomView, error) {
	var (
		in      *world.Interaction
		items   = make([]*world.Item, len(room.ItemIDs))
		enemies = make([]*actor.Enemy, len(room.EnemyIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		in, err = s.interaction(gctx, playerID, room.ID)
		return err
	})
	for i, id := range room.ItemIDs {
		g.Go(func() error {
			it, err := s.store.GetItem(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load item %d: %w", id, err)
			}
			items[i] = it
			return nil
		})
	}
	for i, id := range room.EnemyIDs {
		g.Go(func() error {
			e, err := s.store.GetEnemy(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load enemy %d: %w", id, err)
			}
			enemies[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &RoomView{
		RoomID:            room.ID,
		RoomName:          room.Name,
		Description:       room.Description,
		PlayerCurrentRoom: room.ID,
		Items:             []ItemView{},
		Enemies:           []EnemyView{},
		IsFinalRoom:       room.ID == s.world.FinalRoomID,
	}
	for _, it := range items {
		if it == nil || in.HasPicked(it.ID) {
			continue
		}
		view.Items = append(view.Items, ItemView{ID: it.ID, Name: it.Name, Description: it.Description})
	}
	for _, e := range enemies {
		if e == nil || e.IsDefeated() {
			continue
		}
		view.Enemies = append(view.Enemies, EnemyView{ID: e.ID, Name: e.Name, Description: e.Description, Health: e.Health})
	}
	return view, nil
}

// PickUpItem takes an item from the player's current room, scores it, and
// applies its effect.
func (s *Service) PickUpItem(ctx context.Context, playerID, roomID, itemID int) (*PickupResult, error) {
	if playerID <= 0 {
		return nil, badRequest("player_id is required")
	}
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var result *PickupResult
	err = s.withLock(ctx, playerID, func() error {
		p, err := s.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		in, err := s.interaction(ctx, playerID, room.ID)
		if err != nil {
			return err
		}
		hostile, err := s.roomHostile(ctx, room)
		if err != nil {
			return err
		}

		err = world.CheckPickup(world.PickupRequest{
			Room:          room,
			ItemID:        item.ID,
			PlayerRoomID:  p.Spec.RoomID,
			RoomHostile:   hostile,
			AlreadyPicked: in.HasPicked(item.ID),
		})
		switch {
		case errors.Is(err, world.ErrItemNotInRoom):
			return wrapKind(ErrNotFound, err)
		case err != nil:
			return wrapKind(ErrConflict, err)
		}

		in.RecordPickup(item.ID)
		if err := s.store.SaveInteraction(ctx, in); err != nil {
			return fmt.Errorf("failed to record pickup: %w", err)
		}
		if _, err := s.store.AddInventoryItem(ctx, playerID, item.ID); err != nil {
			return fmt.Errorf("failed to add item to inventory: %w", err)
		}
		if item.Points > 0 {
			if err := s.award(ctx, p, item.Points, world.ReasonItemCollection); err != nil {
				return err
			}
		}
		effect, err := applyEffect(p, item)
		if err != nil {
			return err
		}
		if err := s.savePlayer(ctx, p); err != nil {
			return err
		}

		result = &PickupResult{
			Message:       fmt.Sprintf("You picked up the %s.", item.Name),
			PlayerID:      playerID,
			ItemID:        item.ID,
			RoomID:        room.ID,
			ItemName:      item.Name,
			PointsAwarded: max(item.Points, 0),
			EffectResult:  effect,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordItemPicked(ctx, item.ID)
	s.publish(ctx, playerID, "Picked up %s (ID: %d) from room %d", item.Name, item.ID, room.ID)
	if result.EffectApplied {
		s.publish(ctx, playerID, "Used %s: %s", item.Name, result.EffectDescription)
	}
	return result, nil
}

// ApplyItemEffect applies an item's effect to a player directly.
func (s *Service) ApplyItemEffect(ctx context.Context, playerID, itemID int) (*EffectResult, error) {
	if playerID <= 0 || itemID <= 0 {
		return nil, badRequest("player_id and item_id are required")
	}
	item, err := s.loadItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var effect *EffectResult
	err = s.withLock(ctx, playerID, func() error {
		p, err := s.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		effect, err = applyEffect(p, item)
		if err != nil {
			return err
		}
		if !effect.EffectApplied {
			return nil
		}
		return s.savePlayer(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	if effect.EffectApplied {
		s.publish(ctx, playerID, "Used %s: %s", item.Name, effect.EffectDescription)
	}
	return effect, nil
}

func applyEffect(p *actor.Player, item *world.Item) (*EffectResult, error) {
	if !item.HasEffect() {
		return &EffectResult{EffectApplied: false}, nil
	}

	amount := item.Effect.Amount
	switch item.Effect.Kind {
	case world.EffectAttack:
		if err := p.AddDamage(amount); err != nil {
			return nil, fmt.Errorf("failed to raise attack: %w", err)
		}
		v := p.Damage()
		return &EffectResult{
			EffectApplied:     true,
			EffectDescription: fmt.Sprintf("%s increases your attack by %d", item.Name, amount),
			NewAttack:         &v,
		}, nil
	case world.EffectHeal:
		v, err := p.Heal(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to heal: %w", err)
		}
		return &EffectResult{
			EffectApplied:     true,
			EffectDescription: fmt.Sprintf("%s restores up to %d health", item.Name, amount),
			NewHealth:         &v,
		}, nil
	case world.EffectMaxHealth:
		if err := p.RaiseMaxHealth(amount); err != nil {
			return nil, fmt.Errorf("failed to raise max health: %w", err)
		}
		v := p.MaxHealth()
		h := p.Health()
		return &EffectResult{
			EffectApplied:     true,
			EffectDescription: fmt.Sprintf("%s raises your max health by %d", item.Name, amount),
			NewMaxHealth:      &v,
			NewHealth:         &h,
		}, nil
	}
	return &EffectResult{EffectApplied: false}, nil
}

package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/combat"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
)

type CombatStart struct {
	Message   string            `json:"message"`
	Enemy     *actor.Enemy      `json:"enemy"`
	Player    *actor.Player     `json:"player"`
	Combat    bool              `json:"combat"`
	Turn      combat.Turn       `json:"turn"`
	Encounter *combat.Encounter `json:"encounter"`
}

// AttackResult is one resolved round plus the encounter state after it.
type AttackResult struct {
	CombatLog    []string      `json:"combat_log"`
	PlayerHealth int           `json:"player_health"`
	EnemyHealth  int           `json:"enemy_health"`
	Turn         combat.Turn   `json:"turn"`
	IsCombatOver bool          `json:"is_combat_over"`
	Winner       combat.Winner `json:"winner,omitempty"`
	EnemyID      int           `json:"enemy_id"`
	RoomID       int           `json:"room_id"`
	Round        *combat.Round `json:"round"`
	LootDropped  []int         `json:"loot_dropped,omitempty"`
	ScoreAwarded int           `json:"score_awarded,omitempty"`
}

// StartCombat opens an encounter with an enemy in the player's room. An
// unfinished encounter with the same enemy is returned as is.
func (s *Service) StartCombat(ctx context.Context, playerID, enemyID int) (*CombatStart, error) {
	if playerID <= 0 || enemyID <= 0 {
		return nil, badRequest("player_id and enemy_id are required")
	}
	enemy, err := s.store.GetEnemy(ctx, enemyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enemy %d: %w", enemyID, err)
	}
	if enemy == nil {
		return nil, notFound("enemy %d not found", enemyID)
	}

	var (
		start   *CombatStart
		resumed bool
	)
	err = s.withLock(ctx, playerID, func() error {
		p, err := s.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}

		existing, err := s.store.GetEncounter(ctx, playerID)
		if err != nil {
			return fmt.Errorf("failed to load encounter: %w", err)
		}
		if existing != nil && !existing.Over {
			if existing.EnemyID != enemyID {
				return conflict("you are already fighting the %s", existing.EnemyName)
			}
			resumed = true
			start = &CombatStart{
				Message:   fmt.Sprintf("You are fighting the %s!", existing.EnemyName),
				Enemy:     enemy,
				Player:    p,
				Combat:    true,
				Turn:      existing.Turn,
				Encounter: existing,
			}
			return nil
		}

		room, err := s.store.GetRoom(ctx, p.Spec.RoomID)
		if err != nil {
			return fmt.Errorf("failed to load room: %w", err)
		}
		if err := world.CheckEngage(room, p.Spec.RoomID, enemyID, !enemy.IsDefeated()); err != nil {
			return wrapKind(ErrConflict, err)
		}

		var skill actor.Skill
		if p.Spec.CharacterName != "" {
			c, err := s.store.GetCharacter(ctx, p.Spec.CharacterName)
			if err != nil {
				return fmt.Errorf("failed to load character: %w", err)
			}
			if c != nil {
				skill = c.Skill
			}
		}

		enc := combat.Start(p, skill, enemy, room.ID)
		if err := s.store.SaveEncounter(ctx, enc); err != nil {
			return fmt.Errorf("failed to save encounter: %w", err)
		}
		start = &CombatStart{
			Message:   fmt.Sprintf("You encountered a %s!", enemy.Name),
			Enemy:     enemy,
			Player:    p,
			Combat:    true,
			Turn:      enc.Turn,
			Encounter: enc,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !resumed {
		s.metrics.RecordCombatStarted(ctx)
		s.publish(ctx, playerID, "Started combat with %s", enemy.Name)
	}
	return start, nil
}

// Attack resolves one round of the player's encounter and applies the
// outcome: a win clears the enemy from its room and drops its loot, a loss
// leaves the player at reduced health.
func (s *Service) Attack(ctx context.Context, playerID int, action combat.Action) (*AttackResult, error) {
	if playerID <= 0 {
		return nil, badRequest("player_id is required")
	}
	if action == "" {
		action = combat.ActionAttack
	}
	if action != combat.ActionAttack && action != combat.ActionSkill {
		return nil, badRequest("unknown action %q", action)
	}

	var (
		enc    *combat.Encounter
		result *AttackResult
	)
	err := s.withLock(ctx, playerID, func() error {
		var err error
		enc, err = s.store.GetEncounter(ctx, playerID)
		if err != nil {
			return fmt.Errorf("failed to load encounter: %w", err)
		}
		if enc == nil {
			return notFound("player %d is not in combat", playerID)
		}

		round, err := enc.Resolve(action, s.roller)
		switch {
		case errors.Is(err, combat.ErrCombatOver), errors.Is(err, combat.ErrNotPlayerTurn):
			return wrapKind(ErrConflict, err)
		case errors.Is(err, combat.ErrUnknownAction):
			return wrapKind(ErrBadRequest, err)
		case err != nil:
			return fmt.Errorf("failed to resolve round: %w", err)
		}

		p, err := s.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		if err := p.SetHealth(enc.PlayerHealth); err != nil {
			return fmt.Errorf("failed to update player health: %w", err)
		}

		result = &AttackResult{
			CombatLog:    round.Log,
			PlayerHealth: enc.PlayerHealth,
			EnemyHealth:  enc.EnemyHealth,
			Turn:         enc.Turn,
			IsCombatOver: enc.Over,
			Winner:       enc.Winner,
			EnemyID:      enc.EnemyID,
			RoomID:       enc.RoomID,
			Round:        round,
		}

		if enc.Over && enc.Winner == combat.WinnerPlayer {
			loot, err := s.claimVictory(ctx, p, enc)
			if err != nil {
				return err
			}
			result.LootDropped = loot
			result.ScoreAwarded = world.EnemyDefeatPoints
		}

		if err := s.savePlayer(ctx, p); err != nil {
			return err
		}
		if err := s.store.SaveEncounter(ctx, enc); err != nil {
			return fmt.Errorf("failed to save encounter: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCombatRound(ctx, string(action))
	if enc.Over {
		s.metrics.RecordCombatOutcome(ctx, string(enc.Winner))
		switch enc.Winner {
		case combat.WinnerPlayer:
			s.log.Info("Enemy defeated", "player_id", playerID, "enemy_id", enc.EnemyID, "rounds", enc.Round)
			s.publish(ctx, playerID, "Defeated %s (+%d score)", enc.EnemyName, world.EnemyDefeatPoints)
		case combat.WinnerEnemy:
			s.log.Info("Player defeated", "player_id", playerID, "enemy_id", enc.EnemyID, "rounds", enc.Round)
			s.publish(ctx, playerID, "Was defeated by %s", enc.EnemyName)
		}
	}
	return result, nil
}

// claimVictory persists a won fight: the enemy is dead and gone from the
// room, its loot lies on the floor, and the player is credited.
func (s *Service) claimVictory(ctx context.Context, p *actor.Player, enc *combat.Encounter) ([]int, error) {
	enemy, err := s.store.GetEnemy(ctx, enc.EnemyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load enemy %d: %w", enc.EnemyID, err)
	}
	var loot []int
	if enemy != nil {
		enemy.Health = 0
		if err := s.store.SaveEnemy(ctx, enemy); err != nil {
			return nil, fmt.Errorf("failed to save enemy %d: %w", enemy.ID, err)
		}
		loot = enemy.LootItemIDs
	}

	room, err := s.store.GetRoom(ctx, enc.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room %d: %w", enc.RoomID, err)
	}
	var dropped []int
	if room != nil {
		room.RemoveEnemy(enc.EnemyID)
		for _, id := range loot {
			if room.AddItem(id) {
				dropped = append(dropped, id)
			}
		}
		if err := s.store.SaveRoom(ctx, room); err != nil {
			return nil, fmt.Errorf("failed to save room %d: %w", room.ID, err)
		}
	}

	in, err := s.interaction(ctx, p.Spec.ID, enc.RoomID)
	if err != nil {
		return nil, err
	}
	in.RecordDefeat(enc.EnemyID)
	if err := s.store.SaveInteraction(ctx, in); err != nil {
		return nil, fmt.Errorf("failed to record defeat: %w", err)
	}

	if err := s.award(ctx, p, world.EnemyDefeatPoints, world.ReasonEnemyDefeat); err != nil {
		return nil, err
	}
	return dropped, nil
}

// GetEncounter returns the player's current or last encounter.
func (s *Service) GetEncounter(ctx context.Context, playerID int) (*combat.Encounter, error) {
	enc, err := s.store.GetEncounter(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load encounter: %w", err)
	}
	if enc == nil {
		return nil, notFound("player %d is not in combat", playerID)
	}
	return enc, nil
}

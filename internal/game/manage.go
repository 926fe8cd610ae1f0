package game

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
)

const unknownItemName = "Unknown Item"

type InventoryView struct {
	PlayerID int        `json:"player_id"`
	Items    []ItemView `json:"inventory"`
}

type ScoreView struct {
	PlayerID   int `json:"player_id"`
	FinalScore int `json:"final_score"`
}

// ResetReport records which steps of a full reset succeeded.
type ResetReport struct {
	PlayerID          int      `json:"player_id"`
	PlayerName        string   `json:"player_name"`
	PlayerReset       bool     `json:"player"`
	InventoryReset    bool     `json:"inventory"`
	InteractionsReset bool     `json:"interactions"`
	RoomReset         bool     `json:"rooms"`
	ItemsRemoved      int      `json:"items_removed"`
	Errors            []string `json:"errors"`
}

// OK is true when every step succeeded.
func (r *ResetReport) OK() bool {
	return r.PlayerReset && r.InventoryReset && r.InteractionsReset && r.RoomReset && len(r.Errors) == 0
}

type EndResult struct {
	Message      string `json:"message"`
	Description  string `json:"description"`
	EndOfGame    bool   `json:"end_of_game"`
	PlayerScore  int    `json:"player_score"`
	ScoreMessage string `json:"score_message"`
}

// OpenInventory lists the player's items. Items missing from the store are
// reported as unknown rather than dropped.
func (s *Service) OpenInventory(ctx context.Context, playerID int) (*InventoryView, error) {
	if _, err := s.loadPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListInventory(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	view := &InventoryView{PlayerID: playerID, Items: make([]ItemView, 0, len(entries))}
	for _, e := range entries {
		it, err := s.store.GetItem(ctx, e.ItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to load item %d: %w", e.ItemID, err)
		}
		if it == nil {
			view.Items = append(view.Items, ItemView{ID: e.ItemID, Name: unknownItemName})
			continue
		}
		view.Items = append(view.Items, ItemView{ID: it.ID, Name: it.Name, Description: it.Description})
	}

	s.publish(ctx, playerID, "Viewed inventory")
	return view, nil
}

// CalculateScore sums the player's score ledger.
func (s *Service) CalculateScore(ctx context.Context, playerID int) (*ScoreView, error) {
	if _, err := s.loadPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListScores(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	total := world.TotalScore(entries)
	s.publish(ctx, playerID, "Calculated score: %d", total)
	return &ScoreView{PlayerID: playerID, FinalScore: total}, nil
}

// Reset restarts a run while keeping what the player has collected: health
// is restored, the player leaves the dungeon, the score is cleared and every
// enemy is healed.
func (s *Service) Reset(ctx context.Context, playerID int) (*actor.Player, error) {
	var p *actor.Player
	err := s.withLock(ctx, playerID, func() error {
		var err error
		p, err = s.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		if err := p.SetHealth(p.MaxHealth()); err != nil {
			return fmt.Errorf("failed to restore health: %w", err)
		}
		p.Spec.RoomID = 0
		p.Spec.Score = 0
		if err := s.store.ClearScores(ctx, playerID); err != nil {
			return fmt.Errorf("failed to clear scores: %w", err)
		}
		if err := s.clearEncounter(ctx, playerID); err != nil {
			return err
		}
		if err := s.savePlayer(ctx, p); err != nil {
			return err
		}
		return s.restoreEnemies(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, playerID, "Game progress reset")
	return p, nil
}

// FullReset puts the player and the world back to a new game. Every step
// runs even when an earlier one fails; the report says which succeeded.
func (s *Service) FullReset(ctx context.Context, playerID int) (*ResetReport, error) {
	var report *ResetReport
	err := s.withLock(ctx, playerID, func() error {
		p, err := s.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		report = s.resetAll(ctx, playerID, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, playerID, "Full game reset performed for %s", report.PlayerName)
	return report, nil
}

// HardReset runs the same steps as FullReset but tolerates a missing
// player: the remaining steps still run and the report shows the player step
// failed.
func (s *Service) HardReset(ctx context.Context, playerID int) (*ResetReport, error) {
	if playerID <= 0 {
		return nil, badRequest("player_id is required")
	}
	var report *ResetReport
	err := s.withLock(ctx, playerID, func() error {
		p, err := s.loadPlayer(ctx, playerID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		report = s.resetAll(ctx, playerID, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Warn("Hard reset performed", "player_id", playerID, "ok", report.OK())
	s.publish(ctx, playerID, "Hard reset performed")
	return report, nil
}

func (s *Service) resetAll(ctx context.Context, playerID int, p *actor.Player) *ResetReport {
	report := &ResetReport{PlayerID: playerID, Errors: []string{}}
	fail := func(step string, err error) {
		s.log.Error("Reset step failed", "step", step, "player_id", playerID, "error", err)
		report.Errors = append(report.Errors, fmt.Sprintf("%s reset failed: %v", step, err))
	}

	if p == nil {
		report.PlayerName = fmt.Sprintf("Player %d", playerID)
		report.Errors = append(report.Errors, fmt.Sprintf("player %d not found", playerID))
	} else {
		report.PlayerName = p.Spec.Name
		if err := s.resetPlayer(ctx, p); err != nil {
			fail("player", err)
		} else {
			report.PlayerReset = true
		}
	}

	if n, err := s.store.ClearInventory(ctx, playerID); err != nil {
		fail("inventory", err)
	} else {
		report.InventoryReset = true
		report.ItemsRemoved = n
	}

	if err := s.store.ClearInteractions(ctx, playerID); err != nil {
		fail("interactions", err)
	} else {
		report.InteractionsReset = true
	}
	if err := s.store.ClearScores(ctx, playerID); err != nil {
		fail("score", err)
	}
	if err := s.clearEncounter(ctx, playerID); err != nil {
		fail("encounter", err)
	}

	roomErr := s.restoreRooms(ctx)
	if roomErr != nil {
		fail("room", roomErr)
	}
	if err := s.restoreEnemies(ctx); err != nil {
		fail("enemy", err)
		roomErr = err
	}
	report.RoomReset = roomErr == nil
	return report
}

// resetPlayer returns the player to their character's starting stats, or
// the defaults when no character is selected.
// clearEncounter deletes the player's encounter. A fight still in progress
// stops counting as active.
func (s *Service) clearEncounter(ctx context.Context, playerID int) error {
	enc, err := s.store.GetEncounter(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to load encounter: %w", err)
	}
	if enc == nil {
		return nil
	}
	if err := s.store.DeleteEncounter(ctx, playerID); err != nil {
		return fmt.Errorf("failed to clear encounter: %w", err)
	}
	if !enc.Over {
		s.metrics.RecordCombatAbandoned(ctx)
	}
	return nil
}

func (s *Service) resetPlayer(ctx context.Context, p *actor.Player) error {
	var c *actor.Character
	if p.Spec.CharacterName != "" {
		var err error
		if c, err = s.store.GetCharacter(ctx, p.Spec.CharacterName); err != nil {
			return fmt.Errorf("failed to load character: %w", err)
		}
	}
	if c == nil {
		c = &actor.Character{Name: p.Spec.CharacterName, HP: actor.DefaultMaxHealth}
	}
	if err := p.ApplyCharacter(c); err != nil {
		return err
	}
	p.Spec.RoomID = 0
	p.Spec.Score = 0
	return s.savePlayer(ctx, p)
}

// EndGame finishes a run in the final room and awards the completion bonus
// once.
func (s *Service) EndGame(ctx context.Context, playerID int) (*EndResult, error) {
	var total int
	err := s.withLock(ctx, playerID, func() error {
		p, err := s.loadPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		final, err := s.loadRoom(ctx, s.world.FinalRoomID)
		if err != nil {
			return err
		}
		hostile, err := s.roomHostile(ctx, final)
		if err != nil {
			return err
		}
		if err := world.CheckFinish(final.ID, p.Spec.RoomID, hostile); err != nil {
			return wrapKind(ErrConflict, err)
		}

		entries, err := s.store.ListScores(ctx, playerID)
		if err != nil {
			return fmt.Errorf("failed to list scores: %w", err)
		}
		if slices.ContainsFunc(entries, func(e world.ScoreEntry) bool { return e.Reason == world.ReasonCompletion }) {
			return conflict("the game is already complete")
		}
		if err := s.award(ctx, p, world.CompletionBonus, world.ReasonCompletion); err != nil {
			return err
		}
		if err := s.savePlayer(ctx, p); err != nil {
			return err
		}
		total = world.TotalScore(entries) + world.CompletionBonus
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordGameFinished(ctx)
	s.log.Info("Game completed", "player_id", playerID, "score", total)
	s.publish(ctx, playerID, "Completed the game! (+%d score)", world.CompletionBonus)
	return &EndResult{
		Message:      "Congratulations! You've completed the dungeon!",
		Description:  "You've reached the end of your journey and emerged victorious!",
		EndOfGame:    true,
		PlayerScore:  total,
		ScoreMessage: fmt.Sprintf("FINAL SCORE: %d (includes +%d completion bonus!)", total, world.CompletionBonus),
	}, nil
}

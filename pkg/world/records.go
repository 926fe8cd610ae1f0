package world

import (
	"slices"
	"time"
)

type InventoryEntry struct {
	PlayerID int       `json:"player_id"`
	ItemID   int       `json:"item_id"`
	AddedAt  time.Time `json:"added_at"`
}

// Interaction tracks what one player has done in one room.
type Interaction struct {
	PlayerID        int       `json:"player_id"`
	RoomID          int       `json:"room_id"`
	ItemsPicked     []int     `json:"items_picked"`
	EnemiesDefeated []int     `json:"enemies_defeated"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewInteraction(playerID, roomID int) *Interaction {
	now := time.Now().UTC()
	return &Interaction{
		PlayerID:        playerID,
		RoomID:          roomID,
		ItemsPicked:     []int{},
		EnemiesDefeated: []int{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (i *Interaction) HasPicked(itemID int) bool {
	return slices.Contains(i.ItemsPicked, itemID)
}

func (i *Interaction) HasDefeated(enemyID int) bool {
	return slices.Contains(i.EnemiesDefeated, enemyID)
}

// RecordPickup returns false when the pickup was already recorded.
func (i *Interaction) RecordPickup(itemID int) bool {
	if i.HasPicked(itemID) {
		return false
	}
	i.ItemsPicked = append(i.ItemsPicked, itemID)
	i.UpdatedAt = time.Now().UTC()
	return true
}

func (i *Interaction) RecordDefeat(enemyID int) bool {
	if i.HasDefeated(enemyID) {
		return false
	}
	i.EnemiesDefeated = append(i.EnemiesDefeated, enemyID)
	i.UpdatedAt = time.Now().UTC()
	return true
}

type ScoreReason string

const (
	ReasonEnemyDefeat    ScoreReason = "enemy_defeat"
	ReasonItemCollection ScoreReason = "item_collection"
	ReasonCompletion     ScoreReason = "game_completion"
	ReasonManual         ScoreReason = "manual"
)

// Points awarded by the game itself.
const (
	EnemyDefeatPoints = 200
	CompletionBonus   = 100
)

type ScoreEntry struct {
	PlayerID  int         `json:"player_id"`
	Points    int         `json:"points"`
	Reason    ScoreReason `json:"reason"`
	Timestamp time.Time   `json:"timestamp"`
}

// TotalScore sums a score ledger.
func TotalScore(entries []ScoreEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Points
	}
	return total
}

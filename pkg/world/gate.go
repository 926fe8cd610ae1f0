package world

import "errors"

var (
	ErrNoPath          = errors.New("no passage leads there from here")
	ErrRoomGuarded     = errors.New("an undefeated enemy blocks the way")
	ErrDoorLocked      = errors.New("the door is locked")
	ErrItemNotInRoom   = errors.New("item is not in this room")
	ErrNotInRoom       = errors.New("player is not in this room")
	ErrAlreadyPicked   = errors.New("item already picked up")
	ErrNotInFinalRoom  = errors.New("player has not reached the final room")
	ErrEnemyNotInRoom  = errors.New("enemy is not in this room")
	ErrEnemyNotHostile = errors.New("enemy is already defeated")
)

// EntryRequest describes an attempted move between rooms.
type EntryRequest struct {
	Current     *Room // nil while the player is outside the dungeon
	Target      *Room
	StartRoomID int
	// CurrentHostile is true when the current room still holds a living enemy.
	CurrentHostile bool
	HasKey         bool
}

// EntryDecision is the result of a permitted move.
type EntryDecision struct {
	Reentry bool
	Unlock  bool
}

// CheckEntry applies the room progression rules in order: path, guard,
// lock. Re-entering the current room is always allowed.
func CheckEntry(req EntryRequest) (EntryDecision, error) {
	if req.Current != nil && req.Current.ID == req.Target.ID {
		return EntryDecision{Reentry: true}, nil
	}

	if req.Current == nil {
		if req.Target.ID != req.StartRoomID {
			return EntryDecision{}, ErrNoPath
		}
	} else {
		if !req.Current.HasExit(req.Target.ID) {
			return EntryDecision{}, ErrNoPath
		}
		if req.CurrentHostile {
			return EntryDecision{}, ErrRoomGuarded
		}
	}

	if req.Target.DoorLocked {
		if !req.HasKey {
			return EntryDecision{}, ErrDoorLocked
		}
		return EntryDecision{Unlock: true}, nil
	}
	return EntryDecision{}, nil
}

// PickupRequest describes an attempt to take an item from a room.
type PickupRequest struct {
	Room          *Room
	ItemID        int
	PlayerRoomID  int
	RoomHostile   bool
	AlreadyPicked bool
}

func CheckPickup(req PickupRequest) error {
	if !req.Room.HasItem(req.ItemID) {
		return ErrItemNotInRoom
	}
	if req.PlayerRoomID != req.Room.ID {
		return ErrNotInRoom
	}
	if req.RoomHostile {
		return ErrRoomGuarded
	}
	if req.AlreadyPicked {
		return ErrAlreadyPicked
	}
	return nil
}

// CheckEngage verifies a player can start a fight with an enemy.
func CheckEngage(room *Room, playerRoomID, enemyID int, enemyAlive bool) error {
	if room == nil || room.ID != playerRoomID || !room.HasEnemy(enemyID) {
		return ErrEnemyNotInRoom
	}
	if !enemyAlive {
		return ErrEnemyNotHostile
	}
	return nil
}

// CheckFinish verifies the player may end the game.
func CheckFinish(finalRoomID, playerRoomID int, finalHostile bool) error {
	if playerRoomID != finalRoomID {
		return ErrNotInFinalRoom
	}
	if finalHostile {
		return ErrRoomGuarded
	}
	return nil
}

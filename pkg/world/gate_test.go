package world

import (
	"errors"
	"testing"
)

func TestCheckEntry(t *testing.T) {
	hall := &Room{ID: 1, Exits: []int{2}}
	armory := &Room{ID: 2, Exits: []int{1, 3}, EnemyIDs: []int{1}}
	throne := &Room{ID: 3, Exits: []int{2}, DoorLocked: true, KeyItemID: 3}

	tests := []struct {
		name       string
		req        EntryRequest
		wantErr    error
		wantUnlock bool
		wantRe     bool
	}{
		{
			name: "outside to start room",
			req:  EntryRequest{Target: hall, StartRoomID: 1},
		},
		{
			name:    "outside to other room",
			req:     EntryRequest{Target: armory, StartRoomID: 1},
			wantErr: ErrNoPath,
		},
		{
			name: "follow exit",
			req:  EntryRequest{Current: hall, Target: armory, StartRoomID: 1},
		},
		{
			name:    "no exit",
			req:     EntryRequest{Current: hall, Target: throne, StartRoomID: 1, HasKey: true},
			wantErr: ErrNoPath,
		},
		{
			name:    "guarded room cannot be left",
			req:     EntryRequest{Current: armory, Target: hall, StartRoomID: 1, CurrentHostile: true},
			wantErr: ErrRoomGuarded,
		},
		{
			name:   "guarded room can be re-entered",
			req:    EntryRequest{Current: armory, Target: armory, StartRoomID: 1, CurrentHostile: true},
			wantRe: true,
		},
		{
			name:    "locked door without key",
			req:     EntryRequest{Current: armory, Target: throne, StartRoomID: 1},
			wantErr: ErrDoorLocked,
		},
		{
			name:       "locked door with key",
			req:        EntryRequest{Current: armory, Target: throne, StartRoomID: 1, HasKey: true},
			wantUnlock: true,
		},
		{
			name:    "guard checked before lock",
			req:     EntryRequest{Current: armory, Target: throne, StartRoomID: 1, HasKey: true, CurrentHostile: true},
			wantErr: ErrRoomGuarded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := CheckEntry(tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if d.Unlock != tt.wantUnlock {
				t.Errorf("expected unlock=%v, got %v", tt.wantUnlock, d.Unlock)
			}
			if d.Reentry != tt.wantRe {
				t.Errorf("expected reentry=%v, got %v", tt.wantRe, d.Reentry)
			}
		})
	}
}

func TestCheckPickup(t *testing.T) {
	room := &Room{ID: 2, ItemIDs: []int{3, 5}}

	tests := []struct {
		name    string
		req     PickupRequest
		wantErr error
	}{
		{name: "ok", req: PickupRequest{Room: room, ItemID: 3, PlayerRoomID: 2}},
		{name: "missing item", req: PickupRequest{Room: room, ItemID: 9, PlayerRoomID: 2}, wantErr: ErrItemNotInRoom},
		{name: "elsewhere", req: PickupRequest{Room: room, ItemID: 3, PlayerRoomID: 1}, wantErr: ErrNotInRoom},
		{name: "guarded", req: PickupRequest{Room: room, ItemID: 3, PlayerRoomID: 2, RoomHostile: true}, wantErr: ErrRoomGuarded},
		{name: "already picked", req: PickupRequest{Room: room, ItemID: 5, PlayerRoomID: 2, AlreadyPicked: true}, wantErr: ErrAlreadyPicked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckPickup(tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCheckEngage(t *testing.T) {
	room := &Room{ID: 2, EnemyIDs: []int{1}}

	if err := CheckEngage(room, 2, 1, true); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := CheckEngage(room, 1, 1, true); !errors.Is(err, ErrEnemyNotInRoom) {
		t.Errorf("expected ErrEnemyNotInRoom, got %v", err)
	}
	if err := CheckEngage(room, 2, 7, true); !errors.Is(err, ErrEnemyNotInRoom) {
		t.Errorf("expected ErrEnemyNotInRoom, got %v", err)
	}
	if err := CheckEngage(room, 2, 1, false); !errors.Is(err, ErrEnemyNotHostile) {
		t.Errorf("expected ErrEnemyNotHostile, got %v", err)
	}
}

func TestCheckFinish(t *testing.T) {
	if err := CheckFinish(3, 3, false); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
	if err := CheckFinish(3, 2, false); !errors.Is(err, ErrNotInFinalRoom) {
		t.Errorf("expected ErrNotInFinalRoom, got %v", err)
	}
	if err := CheckFinish(3, 3, true); !errors.Is(err, ErrRoomGuarded) {
		t.Errorf("expected ErrRoomGuarded, got %v", err)
	}
}

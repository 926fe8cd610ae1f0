package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jwebster45206/dungeon-engine/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *testAPI) enter(t *testing.T, roomID int) *game.RoomView {
	t.Helper()
	rr := a.do(t, http.MethodPost, fmt.Sprintf("/v1/game/rooms/%d/enter", roomID), PlayerRequest{PlayerID: a.player})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	v := decode[game.RoomView](t, rr)
	return &v
}

// fight starts combat and attacks until the encounter ends.
func (a *testAPI) fight(t *testing.T, enemyID int) map[string]any {
	t.Helper()
	rr := a.do(t, http.MethodPost, "/v1/game/combat/start", StartCombatRequest{PlayerID: a.player, EnemyID: enemyID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	for range 20 {
		rr = a.do(t, http.MethodPost, "/v1/game/combat/attack", AttackRequest{PlayerID: a.player, Action: "attack"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		res := decode[map[string]any](t, rr)
		if res["is_combat_over"] == true {
			return res
		}
	}
	t.Fatal("combat did not finish")
	return nil
}

func TestGameHandler_EnterRoom(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           any
		expectedStatus int
	}{
		{"invalid JSON", "/v1/game/rooms/1/enter", "not json", http.StatusBadRequest},
		{"missing player", "/v1/game/rooms/1/enter", map[string]int{}, http.StatusBadRequest},
		{"bad room id", "/v1/game/rooms/abc/enter", PlayerRequest{PlayerID: 1}, http.StatusBadRequest},
		{"unknown room", "/v1/game/rooms/42/enter", PlayerRequest{PlayerID: 1}, http.StatusNotFound},
		{"unknown player", "/v1/game/rooms/1/enter", PlayerRequest{PlayerID: 99}, http.StatusNotFound},
		{"no path from outside", "/v1/game/rooms/2/enter", PlayerRequest{PlayerID: 1}, http.StatusConflict},
		{"start room", "/v1/game/rooms/1/enter", PlayerRequest{PlayerID: 1}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			rr := api.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if rr.Code != http.StatusOK {
				assert.NotEmpty(t, decode[ErrorResponse](t, rr).Error)
			}
		})
	}
}

func TestGameHandler_Playthrough(t *testing.T) {
	api := newTestAPI(t)

	v := api.enter(t, 1)
	assert.Equal(t, "Entrance Hall", v.RoomName)
	assert.Len(t, v.Items, 2)

	rr := api.do(t, http.MethodPost, "/v1/game/rooms/1/items/1/pickup", PlayerRequest{PlayerID: api.player})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	pickup := decode[map[string]any](t, rr)
	assert.Equal(t, "Golden Sword", pickup["item_name"])
	assert.Equal(t, true, pickup["effect_applied"])
	assert.EqualValues(t, 30, pickup["new_attack"])

	// Same item twice is a conflict; an item from another room is missing.
	rr = api.do(t, http.MethodPost, "/v1/game/rooms/1/items/1/pickup", PlayerRequest{PlayerID: api.player})
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = api.do(t, http.MethodPost, "/v1/game/rooms/1/items/4/pickup", PlayerRequest{PlayerID: api.player})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	v = api.enter(t, 2)
	require.Len(t, v.Enemies, 1)

	// The goblin guards the armory.
	rr = api.do(t, http.MethodPost, "/v1/game/rooms/2/items/3/pickup", PlayerRequest{PlayerID: api.player})
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = api.do(t, http.MethodPost, "/v1/game/rooms/1/enter", PlayerRequest{PlayerID: api.player})
	assert.Equal(t, http.StatusConflict, rr.Code)

	res := api.fight(t, 1)
	assert.Equal(t, "player", res["winner"])
	assert.EqualValues(t, 0, res["enemy_health"])

	rr = api.do(t, http.MethodGet, fmt.Sprintf("/v1/game/combat/%d", api.player), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Attacking a finished encounter is a conflict.
	rr = api.do(t, http.MethodPost, "/v1/game/combat/attack", AttackRequest{PlayerID: api.player, Action: "attack"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Throne room door is locked until the key is held.
	rr = api.do(t, http.MethodPost, "/v1/game/rooms/3/enter", PlayerRequest{PlayerID: api.player})
	assert.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())

	rr = api.do(t, http.MethodPost, "/v1/game/rooms/2/items/3/pickup", PlayerRequest{PlayerID: api.player})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	v = api.enter(t, 3)
	assert.True(t, v.Unlocked)
	assert.True(t, v.IsFinalRoom)

	rr = api.do(t, http.MethodPost, fmt.Sprintf("/v1/game/end/%d", api.player), nil)
	assert.Equal(t, http.StatusConflict, rr.Code, "troll still alive")

	res = api.fight(t, 2)
	assert.Equal(t, "player", res["winner"])

	rr = api.do(t, http.MethodPost, fmt.Sprintf("/v1/game/end/%d", api.player), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	end := decode[game.EndResult](t, rr)
	assert.True(t, end.EndOfGame)
	// sword 50 + key 10 + goblin 200 + troll 200 + completion 100
	assert.Equal(t, 560, end.PlayerScore)

	rr = api.do(t, http.MethodGet, fmt.Sprintf("/v1/game/score/%d", api.player), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 560, decode[game.ScoreView](t, rr).FinalScore)

	rr = api.do(t, http.MethodGet, fmt.Sprintf("/v1/game/inventory/%d", api.player), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[game.InventoryView](t, rr).Items, 2)
}

func TestGameHandler_StartCombatErrors(t *testing.T) {
	api := newTestAPI(t)
	api.enter(t, 1)

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"missing ids", StartCombatRequest{PlayerID: api.player}, http.StatusBadRequest},
		{"unknown enemy", StartCombatRequest{PlayerID: api.player, EnemyID: 99}, http.StatusNotFound},
		{"enemy elsewhere", StartCombatRequest{PlayerID: api.player, EnemyID: 2}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := api.do(t, http.MethodPost, "/v1/game/combat/start", tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			resp := decode[CombatErrorResponse](t, rr)
			assert.False(t, resp.Combat)
			assert.NotEmpty(t, resp.Error)
		})
	}

	rr := api.do(t, http.MethodPost, "/v1/game/combat/attack", AttackRequest{PlayerID: api.player, Action: "attack"})
	assert.Equal(t, http.StatusNotFound, rr.Code, "no encounter yet")
	rr = api.do(t, http.MethodGet, fmt.Sprintf("/v1/game/combat/%d", api.player), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGameHandler_SelectCharacter(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/v1/game/select-character", SelectCharacterRequest{PlayerID: api.player})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, http.MethodPost, "/v1/game/select-character", SelectCharacterRequest{PlayerID: api.player, CharacterName: "Bard"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, http.MethodPost, "/v1/game/select-character", SelectCharacterRequest{PlayerID: api.player, CharacterName: "rogue"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[map[string]any](t, rr)
	player := resp["player"].(map[string]any)
	assert.Equal(t, "Character selected: Rogue", resp["message"])
	assert.Equal(t, "Rogue", player["character_name"])
	assert.EqualValues(t, 75, player["current_health"])
	assert.EqualValues(t, 0, player["room_id"])
}

func TestGameHandler_Resets(t *testing.T) {
	api := newTestAPI(t)
	api.enter(t, 1)
	rr := api.do(t, http.MethodPost, "/v1/game/rooms/1/items/2/pickup", PlayerRequest{PlayerID: api.player})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = api.do(t, http.MethodPost, fmt.Sprintf("/v1/game/reset/%d", api.player), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = api.do(t, http.MethodPost, fmt.Sprintf("/v1/game/full-reset/%d", api.player), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	full := decode[FullResetResponse](t, rr)
	assert.Equal(t, api.player, full.PlayerID)
	assert.True(t, full.ResetDetails.Player)
	assert.True(t, full.ResetDetails.Inventory)
	assert.True(t, full.ResetDetails.Rooms)
	assert.Empty(t, full.ResetDetails.Errors)

	rr = api.do(t, http.MethodGet, fmt.Sprintf("/v1/inventory/%d", api.player), nil)
	assert.Empty(t, decode[InventoryResponse](t, rr).Inventory)

	rr = api.do(t, http.MethodPost, "/v1/game/full-reset/99", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, http.MethodPost, "/v1/game/hard-reset/99", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	hard := decode[HardResetResponse](t, rr)
	assert.False(t, hard.Success)
	assert.False(t, hard.Details.PlayerReset)
	assert.True(t, hard.Details.InventoryReset)
	assert.True(t, hard.Details.RoomReset)
}

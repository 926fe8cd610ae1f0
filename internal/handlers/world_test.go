package handlers

import (
	"net/http"
	"testing"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldHandler_Characters(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/v1/characters", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]actor.Character](t, rr), 4)

	rr = api.do(t, http.MethodGet, "/v1/characters/WITCH", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Witch", decode[actor.Character](t, rr).Name)

	rr = api.do(t, http.MethodGet, "/v1/characters/bard", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWorldHandler_Items(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPost, "/v1/items", map[string]any{"name": "Lantern"})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "description is required")

	rr = api.do(t, http.MethodPost, "/v1/items", map[string]any{"name": "Lantern", "description": "Brass.", "points": 15})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[world.Item](t, rr)
	assert.Greater(t, created.ID, 6)

	rr = api.do(t, http.MethodPut, "/v1/items/1", map[string]any{"points": 75})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	sword := decode[world.Item](t, rr)
	assert.Equal(t, 75, sword.Points)
	assert.Equal(t, "Golden Sword", sword.Name)

	rr = api.do(t, http.MethodDelete, "/v1/items/99", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWorldHandler_RoomContents(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"add item already present", http.MethodPost, "/v1/rooms/1/items/1", http.StatusConflict},
		{"add item", http.MethodPost, "/v1/rooms/1/items/5", http.StatusOK},
		{"remove item", http.MethodDelete, "/v1/rooms/1/items/5", http.StatusOK},
		{"remove absent item", http.MethodDelete, "/v1/rooms/1/items/5", http.StatusNotFound},
		{"add enemy", http.MethodPost, "/v1/rooms/1/enemies/1", http.StatusOK},
		{"add enemy again", http.MethodPost, "/v1/rooms/1/enemies/1", http.StatusConflict},
		{"remove enemy", http.MethodDelete, "/v1/rooms/1/enemies/1", http.StatusOK},
		{"unknown room", http.MethodPost, "/v1/rooms/9/items/1", http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := api.do(t, tt.method, tt.path, nil)
		assert.Equal(t, tt.expectedStatus, rr.Code, "%s: %s", tt.name, rr.Body.String())
	}

	rr := api.do(t, http.MethodGet, "/v1/rooms/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	room := decode[world.Room](t, rr)
	assert.Equal(t, []int{1, 2}, room.ItemIDs)
	assert.Empty(t, room.EnemyIDs)
}

func TestWorldHandler_EnemyReset(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodPut, "/v1/enemies/2", map[string]any{"health": 1})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, decode[actor.Enemy](t, rr).Health)

	rr = api.do(t, http.MethodPost, "/v1/enemies/reset", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = api.do(t, http.MethodGet, "/v1/enemies/2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 60, decode[actor.Enemy](t, rr).Health)
}

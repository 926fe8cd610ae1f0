package handlers

import (
	"net/http"
	"testing"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"valid", CreatePlayerRequest{Name: "  Grace "}, http.StatusCreated},
		{"blank name", CreatePlayerRequest{Name: "   "}, http.StatusBadRequest},
		{"invalid JSON", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			rr := api.do(t, http.MethodPost, "/v1/players", tt.body)
			require.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if rr.Code == http.StatusCreated {
				p := decode[actor.PlayerSpec](t, rr)
				assert.Equal(t, "Grace", p.Name)
				assert.Equal(t, 2, p.ID)
				assert.Equal(t, 0, p.RoomID)
				assert.Equal(t, actor.DefaultMaxHealth, p.Health)
			}
		})
	}
}

func TestPlayerHandler_ReadUpdateDelete(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(t, http.MethodGet, "/v1/players/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ada", decode[actor.PlayerSpec](t, rr).Name)

	rr = api.do(t, http.MethodGet, "/v1/players/404", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, http.MethodGet, "/v1/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]actor.PlayerSpec](t, rr), 1)

	rr = api.do(t, http.MethodPut, "/v1/players/1", map[string]any{"name": "Ada L", "current_health": 40})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	p := decode[actor.PlayerSpec](t, rr)
	assert.Equal(t, "Ada L", p.Name)
	assert.Equal(t, 40, p.Health)
	assert.Equal(t, actor.DefaultMaxHealth, p.MaxHealth, "omitted fields are unchanged")

	rr = api.do(t, http.MethodPut, "/v1/players/1", map[string]any{"current_health": 500})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "health above max")

	rr = api.do(t, http.MethodPatch, "/v1/players/1/score", ScoreDeltaRequest{Points: 25})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = api.do(t, http.MethodPatch, "/v1/players/1/score", ScoreDeltaRequest{Points: 5})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 30, decode[ScoreDeltaResponse](t, rr).NewSumScore)

	rr = api.do(t, http.MethodDelete, "/v1/players/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = api.do(t, http.MethodDelete, "/v1/players/1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlayerHandler_UpdateFieldNames(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]any
		expectedHealth int
		expectedScore  int
	}{
		{"short names", map[string]any{"health": 40, "score": 7}, 40, 7},
		{"response names", map[string]any{"current_health": 35, "sum_score": 9}, 35, 9},
		{"response names win", map[string]any{"health": 10, "current_health": 20, "score": 1, "sum_score": 2}, 20, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			rr := api.do(t, http.MethodPut, "/v1/players/1", tt.body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, tt.expectedHealth, decode[actor.PlayerSpec](t, rr).Health)

			rr = api.do(t, http.MethodGet, "/v1/players/1", nil)
			require.Equal(t, http.StatusOK, rr.Code)
			p := decode[actor.PlayerSpec](t, rr)
			assert.Equal(t, tt.expectedHealth, p.Health)
			assert.Equal(t, tt.expectedScore, p.Score)
		})
	}

	api := newTestAPI(t)
	rr := api.do(t, http.MethodPut, "/v1/players/1", map[string]any{"health": -1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

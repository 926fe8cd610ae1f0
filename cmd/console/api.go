package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jwebster45206/dungeon-engine/internal/game"
	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/combat"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// APIClient talks to the dungeon API on behalf of one player.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	return &APIClient{baseURL: baseURL, client: client}
}

// do sends body as JSON and decodes a 2xx response into out.
func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(data))}
		}
		return &APIError{Status: resp.StatusCode, Message: errorResp.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *APIClient) Health(ctx context.Context) bool {
	return c.do(ctx, http.MethodGet, "/health", nil, nil) == nil
}

func (c *APIClient) CreatePlayer(ctx context.Context, name string) (*actor.PlayerSpec, error) {
	var p actor.PlayerSpec
	err := c.do(ctx, http.MethodPost, "/v1/players", map[string]string{"name": name}, &p)
	return &p, err
}

func (c *APIClient) GetPlayer(ctx context.Context, id int) (*actor.PlayerSpec, error) {
	var p actor.PlayerSpec
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/players/%d", id), nil, &p)
	return &p, err
}

func (c *APIClient) ListCharacters(ctx context.Context) ([]actor.Character, error) {
	var chars []actor.Character
	err := c.do(ctx, http.MethodGet, "/v1/characters", nil, &chars)
	return chars, err
}

func (c *APIClient) SelectCharacter(ctx context.Context, playerID int, name string) error {
	return c.do(ctx, http.MethodPost, "/v1/game/select-character",
		map[string]any{"player_id": playerID, "character_name": name}, nil)
}

func (c *APIClient) EnterRoom(ctx context.Context, playerID, roomID int) (*game.RoomView, error) {
	var v game.RoomView
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/game/rooms/%d/enter", roomID),
		map[string]int{"player_id": playerID}, &v)
	return &v, err
}

// PickupResponse flattens the pickup and effect fields.
type PickupResponse struct {
	Message           string `json:"message"`
	ItemName          string `json:"item_name"`
	PointsAwarded     int    `json:"points_awarded"`
	EffectApplied     bool   `json:"effect_applied"`
	EffectDescription string `json:"effect_description"`
}

func (c *APIClient) PickUp(ctx context.Context, playerID, roomID, itemID int) (*PickupResponse, error) {
	var res PickupResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/game/rooms/%d/items/%d/pickup", roomID, itemID),
		map[string]int{"player_id": playerID}, &res)
	return &res, err
}

// CombatStartResponse is the part of the combat start answer the console
// shows; the player is re-read separately.
type CombatStartResponse struct {
	Message string       `json:"message"`
	Enemy   *actor.Enemy `json:"enemy"`
	Turn    combat.Turn  `json:"turn"`
}

func (c *APIClient) StartCombat(ctx context.Context, playerID, enemyID int) (*CombatStartResponse, error) {
	var res CombatStartResponse
	err := c.do(ctx, http.MethodPost, "/v1/game/combat/start",
		map[string]int{"player_id": playerID, "enemy_id": enemyID}, &res)
	return &res, err
}

func (c *APIClient) Attack(ctx context.Context, playerID int, action combat.Action) (*game.AttackResult, error) {
	var res game.AttackResult
	err := c.do(ctx, http.MethodPost, "/v1/game/combat/attack",
		map[string]any{"player_id": playerID, "action": action}, &res)
	return &res, err
}

func (c *APIClient) Inventory(ctx context.Context, playerID int) (*game.InventoryView, error) {
	var inv game.InventoryView
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/game/inventory/%d", playerID), nil, &inv)
	return &inv, err
}

func (c *APIClient) Score(ctx context.Context, playerID int) (*game.ScoreView, error) {
	var s game.ScoreView
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/game/score/%d", playerID), nil, &s)
	return &s, err
}

func (c *APIClient) FullReset(ctx context.Context, playerID int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/game/full-reset/%d", playerID), nil, nil)
}

func (c *APIClient) EndGame(ctx context.Context, playerID int) (*game.EndResult, error) {
	var res game.EndResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/game/end/%d", playerID), nil, &res)
	return &res, err
}

// Roll asks the server for dice, used by the /roll command.
func (c *APIClient) Roll(ctx context.Context, sides, count int) ([]int, error) {
	var res struct {
		Results []int `json:"results"`
	}
	q := url.Values{}
	q.Set("sides", fmt.Sprint(sides))
	q.Set("count", fmt.Sprint(count))
	err := c.do(ctx, http.MethodGet, "/v1/dice/roll?"+q.Encode(), nil, &res)
	return res.Results, err
}

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/dungeon-engine/internal/game"
	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/combat"
)

// GameHandler exposes the composite game operations under /v1/game.
type GameHandler struct {
	game   *game.Service
	logger *slog.Logger
}

func NewGameHandler(logger *slog.Logger, svc *game.Service) *GameHandler {
	return &GameHandler{game: svc, logger: logger}
}

func (h *GameHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/game/select-character", h.handleSelectCharacter)
	mux.HandleFunc("POST /v1/game/rooms/{room_id}/enter", h.handleEnterRoom)
	mux.HandleFunc("POST /v1/game/rooms/{room_id}/items/{item_id}/pickup", h.handlePickUp)
	mux.HandleFunc("POST /v1/game/items/apply-effect", h.handleApplyEffect)
	mux.HandleFunc("POST /v1/game/combat/start", h.handleStartCombat)
	mux.HandleFunc("POST /v1/game/combat/attack", h.handleAttack)
	mux.HandleFunc("GET /v1/game/combat/{player_id}", h.handleGetCombat)
	mux.HandleFunc("GET /v1/game/inventory/{player_id}", h.handleInventory)
	mux.HandleFunc("GET /v1/game/score/{player_id}", h.handleScore)
	mux.HandleFunc("POST /v1/game/reset/{player_id}", h.handleReset)
	mux.HandleFunc("POST /v1/game/full-reset/{player_id}", h.handleFullReset)
	mux.HandleFunc("POST /v1/game/hard-reset/{player_id}", h.handleHardReset)
	mux.HandleFunc("POST /v1/game/end/{player_id}", h.handleEnd)
}

type SelectCharacterRequest struct {
	PlayerID      int    `json:"player_id"`
	CharacterName string `json:"character_name"`
}

type PlayerRequest struct {
	PlayerID int `json:"player_id"`
}

type ApplyEffectRequest struct {
	PlayerID int `json:"player_id"`
	ItemID   int `json:"item_id"`
}

type StartCombatRequest struct {
	PlayerID int `json:"player_id"`
	EnemyID  int `json:"enemy_id"`
}

type AttackRequest struct {
	PlayerID int           `json:"player_id"`
	Action   combat.Action `json:"action"`
}

type PlayerResponse struct {
	Message string        `json:"message"`
	Player  *actor.Player `json:"player"`
}

type CombatErrorResponse struct {
	Error  string `json:"error"`
	Combat bool   `json:"combat"`
}

type FullResetResponse struct {
	Message      string       `json:"message"`
	PlayerID     int          `json:"player_id"`
	ResetDetails ResetDetails `json:"reset_details"`
}

type ResetDetails struct {
	Player    bool     `json:"player"`
	Inventory bool     `json:"inventory"`
	Rooms     bool     `json:"rooms"`
	Errors    []string `json:"errors"`
}

type HardResetResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Details HardResetDetails `json:"details"`
}

type HardResetDetails struct {
	PlayerReset       bool `json:"player_reset"`
	InventoryReset    bool `json:"inventory_reset"`
	InteractionsReset bool `json:"interactions_reset"`
	RoomReset         bool `json:"room_reset"`
}

// requirePlayer decodes a body carrying player_id and rejects a missing one.
func requirePlayer(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req PlayerRequest
	if !decodeJSON(w, r, &req) {
		return 0, false
	}
	if req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return 0, false
	}
	return req.PlayerID, true
}

func (h *GameHandler) handleSelectCharacter(w http.ResponseWriter, r *http.Request) {
	var req SelectCharacterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CharacterName = strings.TrimSpace(req.CharacterName)
	if req.PlayerID <= 0 || req.CharacterName == "" {
		writeError(w, http.StatusBadRequest, "player_id and character_name are required")
		return
	}
	p, err := h.game.SelectCharacter(r.Context(), req.PlayerID, req.CharacterName)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, PlayerResponse{
		Message: "Character selected: " + p.Spec.CharacterName,
		Player:  p,
	})
}

func (h *GameHandler) handleEnterRoom(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "room_id")
	if !ok {
		return
	}
	playerID, ok := requirePlayer(w, r)
	if !ok {
		return
	}
	view, err := h.game.EnterRoom(r.Context(), playerID, ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *GameHandler) handlePickUp(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "room_id", "item_id")
	if !ok {
		return
	}
	playerID, ok := requirePlayer(w, r)
	if !ok {
		return
	}
	res, err := h.game.PickUpItem(r.Context(), playerID, ids[0], ids[1])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *GameHandler) handleApplyEffect(w http.ResponseWriter, r *http.Request) {
	var req ApplyEffectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PlayerID <= 0 || req.ItemID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id and item_id are required")
		return
	}
	res, err := h.game.ApplyItemEffect(r.Context(), req.PlayerID, req.ItemID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *GameHandler) handleStartCombat(w http.ResponseWriter, r *http.Request) {
	var req StartCombatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PlayerID <= 0 || req.EnemyID <= 0 {
		writeJSON(w, http.StatusBadRequest, CombatErrorResponse{Error: "player_id and enemy_id are required"})
		return
	}
	start, err := h.game.StartCombat(r.Context(), req.PlayerID, req.EnemyID)
	if err != nil {
		// Combat failures carry combat:false so clients can branch without
		// parsing the message.
		status, msg := serviceError(r, h.logger, err)
		writeJSON(w, status, CombatErrorResponse{Error: msg, Combat: false})
		return
	}
	writeJSON(w, http.StatusOK, start)
}

func (h *GameHandler) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req AttackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PlayerID <= 0 {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	if req.Action == "" {
		req.Action = combat.ActionAttack
	}
	res, err := h.game.Attack(r.Context(), req.PlayerID, req.Action)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *GameHandler) handleGetCombat(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	enc, err := h.game.GetEncounter(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, enc)
}

func (h *GameHandler) handleInventory(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	inv, err := h.game.OpenInventory(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *GameHandler) handleScore(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	score, err := h.game.CalculateScore(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (h *GameHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	p, err := h.game.Reset(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, PlayerResponse{Message: "Game reset", Player: p})
}

func (h *GameHandler) handleFullReset(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	report, err := h.game.FullReset(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	status, msg := http.StatusOK, "Game fully reset"
	if !report.OK() {
		status, msg = http.StatusMultiStatus, "Game reset completed with errors"
	}
	writeJSON(w, status, FullResetResponse{
		Message:  msg,
		PlayerID: report.PlayerID,
		ResetDetails: ResetDetails{
			Player:    report.PlayerReset,
			Inventory: report.InventoryReset,
			Rooms:     report.RoomReset,
			Errors:    report.Errors,
		},
	})
}

func (h *GameHandler) handleHardReset(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	report, err := h.game.HardReset(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	msg := "Hard reset completed"
	if !report.OK() {
		msg = "Hard reset completed with errors: " + strings.Join(report.Errors, "; ")
	}
	writeJSON(w, http.StatusOK, HardResetResponse{
		Success: report.OK(),
		Message: msg,
		Details: HardResetDetails{
			PlayerReset:       report.PlayerReset,
			InventoryReset:    report.InventoryReset,
			InteractionsReset: report.InteractionsReset,
			RoomReset:         report.RoomReset,
		},
	})
}

func (h *GameHandler) handleEnd(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	res, err := h.game.EndGame(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

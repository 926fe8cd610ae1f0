package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/storage"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
)

// ProgressHandler serves per-player records: inventory, room interactions
// and the score ledger.
type ProgressHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewProgressHandler(logger *slog.Logger, storage storage.Storage) *ProgressHandler {
	return &ProgressHandler{storage: storage, logger: logger}
}

func (h *ProgressHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/inventory", h.handleListAllInventory)
	mux.HandleFunc("GET /v1/inventory/{player_id}", h.handleListInventory)
	mux.HandleFunc("DELETE /v1/inventory/{player_id}", h.handleClearInventory)
	mux.HandleFunc("GET /v1/inventory/{player_id}/items/{item_id}", h.handleHasItem)
	mux.HandleFunc("POST /v1/inventory/{player_id}/items/{item_id}", h.handleAddItem)
	mux.HandleFunc("DELETE /v1/inventory/{player_id}/items/{item_id}", h.handleRemoveItem)

	mux.HandleFunc("GET /v1/interactions/{player_id}", h.handleListInteractions)
	mux.HandleFunc("GET /v1/interactions/{player_id}/rooms/{room_id}", h.handleGetInteraction)
	mux.HandleFunc("POST /v1/interactions/{player_id}/rooms/{room_id}/items/{item_id}/pickup", h.handleRecordPickup)
	mux.HandleFunc("POST /v1/interactions/{player_id}/rooms/{room_id}/enemies/{enemy_id}/defeat", h.handleRecordDefeat)
	mux.HandleFunc("POST /v1/interactions/{player_id}/reset", h.handleResetInteractions)

	mux.HandleFunc("GET /v1/scores/{player_id}", h.handleGetScores)
	mux.HandleFunc("POST /v1/scores/{player_id}", h.handleAddScore)
	mux.HandleFunc("POST /v1/scores/{player_id}/reset", h.handleResetScores)
}

// Inventory

type InventoryResponse struct {
	PlayerID  int   `json:"player_id"`
	Inventory []int `json:"inventory"`
}

type AllInventoryResponse struct {
	Count   int                    `json:"count"`
	Entries []world.InventoryEntry `json:"entries"`
}

type HasItemResponse struct {
	PlayerID int  `json:"player_id"`
	ItemID   int  `json:"item_id"`
	HasItem  bool `json:"has_item"`
}

type ClearInventoryResponse struct {
	PlayerID     int `json:"player_id"`
	ItemsRemoved int `json:"items_removed"`
}

func (h *ProgressHandler) handleListAllInventory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.storage.ListAllInventory(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if entries == nil {
		entries = []world.InventoryEntry{}
	}
	writeJSON(w, http.StatusOK, AllInventoryResponse{Count: len(entries), Entries: entries})
}

func (h *ProgressHandler) handleListInventory(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	entries, err := h.storage.ListInventory(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	resp := InventoryResponse{PlayerID: ids[0], Inventory: make([]int, 0, len(entries))}
	for _, e := range entries {
		resp.Inventory = append(resp.Inventory, e.ItemID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProgressHandler) handleClearInventory(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	n, err := h.storage.ClearInventory(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ClearInventoryResponse{PlayerID: ids[0], ItemsRemoved: n})
}

func (h *ProgressHandler) handleHasItem(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id", "item_id")
	if !ok {
		return
	}
	has, err := h.storage.HasInventoryItem(r.Context(), ids[0], ids[1])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, HasItemResponse{PlayerID: ids[0], ItemID: ids[1], HasItem: has})
}

func (h *ProgressHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id", "item_id")
	if !ok {
		return
	}
	added, err := h.storage.AddInventoryItem(r.Context(), ids[0], ids[1])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if !added {
		writeError(w, http.StatusConflict, "Item already in inventory")
		return
	}
	writeJSON(w, http.StatusCreated, HasItemResponse{PlayerID: ids[0], ItemID: ids[1], HasItem: true})
}

func (h *ProgressHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id", "item_id")
	if !ok {
		return
	}
	removed, err := h.storage.RemoveInventoryItem(r.Context(), ids[0], ids[1])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Item not in inventory")
		return
	}
	writeJSON(w, http.StatusOK, HasItemResponse{PlayerID: ids[0], ItemID: ids[1], HasItem: false})
}

// Interactions

func (h *ProgressHandler) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	list, err := h.storage.ListInteractions(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []*world.Interaction{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ProgressHandler) interaction(w http.ResponseWriter, r *http.Request) (*world.Interaction, bool) {
	ids, ok := pathIDs(w, r, "player_id", "room_id")
	if !ok {
		return nil, false
	}
	in, err := h.storage.GetInteraction(r.Context(), ids[0], ids[1])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return nil, false
	}
	if in == nil {
		in = world.NewInteraction(ids[0], ids[1])
	}
	return in, true
}

func (h *ProgressHandler) handleGetInteraction(w http.ResponseWriter, r *http.Request) {
	if in, ok := h.interaction(w, r); ok {
		writeJSON(w, http.StatusOK, in)
	}
}

// record applies fn to the interaction and answers 201 for a new entry or
// 200 when it was already recorded.
func (h *ProgressHandler) record(w http.ResponseWriter, r *http.Request, param string, fn func(*world.Interaction, int) bool) {
	in, ok := h.interaction(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, param)
	if !ok {
		return
	}
	if !fn(in, ids[0]) {
		writeJSON(w, http.StatusOK, in)
		return
	}
	if err := h.storage.SaveInteraction(r.Context(), in); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (h *ProgressHandler) handleRecordPickup(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, "item_id", (*world.Interaction).RecordPickup)
}

func (h *ProgressHandler) handleRecordDefeat(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, "enemy_id", (*world.Interaction).RecordDefeat)
}

func (h *ProgressHandler) handleResetInteractions(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	if err := h.storage.ClearInteractions(r.Context(), ids[0]); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Interactions reset"})
}

// Scores

type ScoreResponse struct {
	PlayerID int                `json:"player_id"`
	Total    int                `json:"total"`
	Entries  []world.ScoreEntry `json:"entries"`
}

type AddScoreRequest struct {
	Points int               `json:"points"`
	Reason world.ScoreReason `json:"reason"`
}

func (h *ProgressHandler) scores(w http.ResponseWriter, r *http.Request, playerID int) {
	entries, err := h.storage.ListScores(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if entries == nil {
		entries = []world.ScoreEntry{}
	}
	writeJSON(w, http.StatusOK, ScoreResponse{PlayerID: playerID, Total: world.TotalScore(entries), Entries: entries})
}

func (h *ProgressHandler) handleGetScores(w http.ResponseWriter, r *http.Request) {
	if ids, ok := pathIDs(w, r, "player_id"); ok {
		h.scores(w, r, ids[0])
	}
}

func (h *ProgressHandler) handleAddScore(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	var req AddScoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Points == 0 {
		writeError(w, http.StatusBadRequest, "points must be non-zero")
		return
	}
	if req.Reason == "" {
		req.Reason = world.ReasonManual
	}
	entry := world.ScoreEntry{PlayerID: ids[0], Points: req.Points, Reason: req.Reason, Timestamp: time.Now().UTC()}
	if err := h.storage.AppendScore(r.Context(), entry); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.scores(w, r, ids[0])
}

func (h *ProgressHandler) handleResetScores(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	if err := h.storage.ClearScores(r.Context(), ids[0]); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Score reset"})
}

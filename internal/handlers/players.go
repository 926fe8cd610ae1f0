package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/storage"
)

type PlayerHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewPlayerHandler(logger *slog.Logger, storage storage.Storage) *PlayerHandler {
	return &PlayerHandler{storage: storage, logger: logger}
}

// Register adds the player routes:
// POST   /v1/players
// GET    /v1/players
// GET    /v1/players/{id}
// PUT    /v1/players/{id}
// PATCH  /v1/players/{id}/score
// DELETE /v1/players/{id}
func (h *PlayerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/players", h.handleCreate)
	mux.HandleFunc("GET /v1/players", h.handleList)
	mux.HandleFunc("GET /v1/players/{id}", h.handleRead)
	mux.HandleFunc("PUT /v1/players/{id}", h.handleUpdate)
	mux.HandleFunc("PATCH /v1/players/{id}/score", h.handleAddScore)
	mux.HandleFunc("DELETE /v1/players/{id}", h.handleDelete)
}

type CreatePlayerRequest struct {
	Name string `json:"name"`
}

// UpdatePlayerRequest is a partial update; nil fields are left unchanged.
// Health and score may be sent as health/score or under their response
// names current_health/sum_score. The response names win when both are set.
type UpdatePlayerRequest struct {
	Name          *string `json:"name,omitempty"`
	RoomID        *int    `json:"room_id,omitempty"`
	Health        *int    `json:"health,omitempty"`
	CurrentHealth *int    `json:"current_health,omitempty"`
	MaxHealth     *int    `json:"max_health,omitempty"`
	Damage        *int    `json:"damage,omitempty"`
	Score         *int    `json:"score,omitempty"`
	SumScore      *int    `json:"sum_score,omitempty"`
}

func (r *UpdatePlayerRequest) health() *int {
	if r.CurrentHealth != nil {
		return r.CurrentHealth
	}
	return r.Health
}

func (r *UpdatePlayerRequest) score() *int {
	if r.SumScore != nil {
		return r.SumScore
	}
	return r.Score
}

type ScoreDeltaRequest struct {
	Points int `json:"points"`
}

type ScoreDeltaResponse struct {
	PlayerID    int `json:"player_id"`
	NewSumScore int `json:"new_sum_score"`
}

func (h *PlayerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePlayerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p, err := h.storage.CreatePlayer(r.Context(), actor.NewPlayerSpec(req.Name))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info("Player created", "player_id", p.ID, "name", p.Name)
	writeJSON(w, http.StatusCreated, p)
}

func (h *PlayerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	players, err := h.storage.ListPlayers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *PlayerHandler) load(w http.ResponseWriter, r *http.Request) (*actor.PlayerSpec, bool) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return nil, false
	}
	p, err := h.storage.GetPlayer(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Player not found")
		return nil, false
	}
	return p, true
}

func (h *PlayerHandler) handleRead(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PlayerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	var req UpdatePlayerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.RoomID != nil {
		p.RoomID = *req.RoomID
	}
	if req.MaxHealth != nil {
		p.MaxHealth = *req.MaxHealth
	}
	if v := req.health(); v != nil {
		p.Health = *v
	}
	if req.Damage != nil {
		p.Damage = *req.Damage
	}
	if v := req.score(); v != nil {
		p.Score = *v
	}
	if p.MaxHealth <= 0 || p.Health > p.MaxHealth || p.Health < 0 || p.RoomID < 0 {
		writeError(w, http.StatusBadRequest, "health must be within 0 and max_health")
		return
	}
	p.UpdatedAt = time.Now().UTC()

	if err := h.storage.SavePlayer(r.Context(), p); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PlayerHandler) handleAddScore(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	var req ScoreDeltaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p.Score += req.Points
	p.UpdatedAt = time.Now().UTC()
	if err := h.storage.SavePlayer(r.Context(), p); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreDeltaResponse{PlayerID: p.ID, NewSumScore: p.Score})
}

func (h *PlayerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.storage.DeletePlayer(r.Context(), p.ID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info("Player deleted", "player_id", p.ID)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Player deleted"})
}

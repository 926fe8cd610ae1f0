package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/storage"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
)

// EnemyRestorer heals every enemy back to the world definition.
type EnemyRestorer interface {
	RestoreEnemies(ctx context.Context) error
}

// WorldHandler serves the static-ish world records: characters, items,
// rooms and enemies.
type WorldHandler struct {
	storage  storage.Storage
	restorer EnemyRestorer
	logger   *slog.Logger
}

func NewWorldHandler(logger *slog.Logger, storage storage.Storage, restorer EnemyRestorer) *WorldHandler {
	return &WorldHandler{storage: storage, restorer: restorer, logger: logger}
}

func (h *WorldHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/characters", h.handleListCharacters)
	mux.HandleFunc("GET /v1/characters/{name}", h.handleGetCharacter)

	mux.HandleFunc("GET /v1/items", h.handleListItems)
	mux.HandleFunc("POST /v1/items", h.handleCreateItem)
	mux.HandleFunc("GET /v1/items/{id}", h.handleGetItem)
	mux.HandleFunc("PUT /v1/items/{id}", h.handleUpdateItem)
	mux.HandleFunc("DELETE /v1/items/{id}", h.handleDeleteItem)

	mux.HandleFunc("GET /v1/rooms", h.handleListRooms)
	mux.HandleFunc("POST /v1/rooms", h.handleCreateRoom)
	mux.HandleFunc("GET /v1/rooms/{id}", h.handleGetRoom)
	mux.HandleFunc("PUT /v1/rooms/{id}", h.handleUpdateRoom)
	mux.HandleFunc("DELETE /v1/rooms/{id}", h.handleDeleteRoom)
	mux.HandleFunc("POST /v1/rooms/{id}/items/{item_id}", h.handleRoomAddItem)
	mux.HandleFunc("DELETE /v1/rooms/{id}/items/{item_id}", h.handleRoomRemoveItem)
	mux.HandleFunc("POST /v1/rooms/{id}/enemies/{enemy_id}", h.handleRoomAddEnemy)
	mux.HandleFunc("DELETE /v1/rooms/{id}/enemies/{enemy_id}", h.handleRoomRemoveEnemy)

	mux.HandleFunc("GET /v1/enemies", h.handleListEnemies)
	mux.HandleFunc("POST /v1/enemies/reset", h.handleResetEnemies)
	mux.HandleFunc("GET /v1/enemies/{id}", h.handleGetEnemy)
	mux.HandleFunc("PUT /v1/enemies/{id}", h.handleUpdateEnemy)
}

// Characters

func (h *WorldHandler) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	chars, err := h.storage.ListCharacters(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, chars)
}

func (h *WorldHandler) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := h.storage.GetCharacter(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Character not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Items

type ItemRequest struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Points      *int              `json:"points,omitempty"`
	Effect      *world.ItemEffect `json:"effect,omitempty"`
	IsKey       *bool             `json:"is_key,omitempty"`
}

func (req *ItemRequest) apply(it *world.Item) {
	if req.Name != nil {
		it.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		it.Description = strings.TrimSpace(*req.Description)
	}
	if req.Points != nil {
		it.Points = *req.Points
	}
	if req.Effect != nil {
		it.Effect = req.Effect
		if req.Effect.Amount == 0 {
			it.Effect = nil
		}
	}
	if req.IsKey != nil {
		it.IsKey = *req.IsKey
	}
}

func (h *WorldHandler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.storage.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WorldHandler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	it := &world.Item{}
	req.apply(it)
	if it.Name == "" || it.Description == "" {
		writeError(w, http.StatusBadRequest, "name and description are required")
		return
	}
	created, err := h.storage.CreateItem(r.Context(), it)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *WorldHandler) loadItem(w http.ResponseWriter, r *http.Request, name string) (*world.Item, bool) {
	ids, ok := pathIDs(w, r, name)
	if !ok {
		return nil, false
	}
	it, err := h.storage.GetItem(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return nil, false
	}
	if it == nil {
		writeError(w, http.StatusNotFound, "Item not found")
		return nil, false
	}
	return it, true
}

func (h *WorldHandler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if it, ok := h.loadItem(w, r, "id"); ok {
		writeJSON(w, http.StatusOK, it)
	}
}

func (h *WorldHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.loadItem(w, r, "id")
	if !ok {
		return
	}
	var req ItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.apply(it)
	if it.Name == "" || it.Description == "" {
		writeError(w, http.StatusBadRequest, "name and description cannot be empty")
		return
	}
	if err := h.storage.SaveItem(r.Context(), it); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *WorldHandler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.loadItem(w, r, "id")
	if !ok {
		return
	}
	if err := h.storage.DeleteItem(r.Context(), it.ID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Item deleted"})
}

// Rooms

type RoomRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ItemIDs     []int   `json:"item_ids,omitempty"`
	EnemyIDs    []int   `json:"enemy_ids,omitempty"`
	DoorLocked  *bool   `json:"door_locked,omitempty"`
	KeyItemID   *int    `json:"key_item_id,omitempty"`
	Exits       []int   `json:"exits,omitempty"`
}

func (req *RoomRequest) apply(room *world.Room) {
	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		room.Description = strings.TrimSpace(*req.Description)
	}
	if req.ItemIDs != nil {
		room.ItemIDs = req.ItemIDs
	}
	if req.EnemyIDs != nil {
		room.EnemyIDs = req.EnemyIDs
	}
	if req.DoorLocked != nil {
		room.DoorLocked = *req.DoorLocked
	}
	if req.KeyItemID != nil {
		room.KeyItemID = *req.KeyItemID
	}
	if req.Exits != nil {
		room.Exits = req.Exits
	}
}

func (h *WorldHandler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.storage.ListRooms(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *WorldHandler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req RoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	room := &world.Room{ItemIDs: []int{}, EnemyIDs: []int{}}
	req.apply(room)
	if room.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	created, err := h.storage.CreateRoom(r.Context(), room)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *WorldHandler) loadRoom(w http.ResponseWriter, r *http.Request) (*world.Room, bool) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return nil, false
	}
	room, err := h.storage.GetRoom(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return nil, false
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "Room not found")
		return nil, false
	}
	return room, true
}

func (h *WorldHandler) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	if room, ok := h.loadRoom(w, r); ok {
		writeJSON(w, http.StatusOK, room)
	}
}

func (h *WorldHandler) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	var req RoomRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.apply(room)
	if room.Description == "" {
		writeError(w, http.StatusBadRequest, "description cannot be empty")
		return
	}
	if err := h.storage.SaveRoom(r.Context(), room); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *WorldHandler) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	if err := h.storage.DeleteRoom(r.Context(), room.ID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Room deleted"})
}

// editRoom loads the room and the referenced ID, applies edit and saves the
// room when edit reports a change. conflictStatus is written otherwise.
func (h *WorldHandler) editRoom(w http.ResponseWriter, r *http.Request, param string, edit func(*world.Room, int) bool, conflictStatus int, conflictMsg string) {
	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, param)
	if !ok {
		return
	}
	if !edit(room, ids[0]) {
		writeError(w, conflictStatus, conflictMsg)
		return
	}
	if err := h.storage.SaveRoom(r.Context(), room); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *WorldHandler) handleRoomAddItem(w http.ResponseWriter, r *http.Request) {
	h.editRoom(w, r, "item_id", (*world.Room).AddItem, http.StatusConflict, "Item already in room")
}

func (h *WorldHandler) handleRoomRemoveItem(w http.ResponseWriter, r *http.Request) {
	h.editRoom(w, r, "item_id", (*world.Room).RemoveItem, http.StatusNotFound, "Item not in room")
}

func (h *WorldHandler) handleRoomAddEnemy(w http.ResponseWriter, r *http.Request) {
	h.editRoom(w, r, "enemy_id", (*world.Room).AddEnemy, http.StatusConflict, "Enemy already in room")
}

func (h *WorldHandler) handleRoomRemoveEnemy(w http.ResponseWriter, r *http.Request) {
	h.editRoom(w, r, "enemy_id", (*world.Room).RemoveEnemy, http.StatusNotFound, "Enemy not in room")
}

// Enemies

type EnemyRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Health      *int    `json:"health,omitempty"`
	MaxHealth   *int    `json:"max_health,omitempty"`
	Damage      *int    `json:"damage,omitempty"`
	Attack      *int    `json:"attack,omitempty"`
}

func (h *WorldHandler) handleListEnemies(w http.ResponseWriter, r *http.Request) {
	enemies, err := h.storage.ListEnemies(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, enemies)
}

func (h *WorldHandler) loadEnemy(w http.ResponseWriter, r *http.Request) (*actor.Enemy, bool) {
	ids, ok := pathIDs(w, r, "id")
	if !ok {
		return nil, false
	}
	e, err := h.storage.GetEnemy(r.Context(), ids[0])
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return nil, false
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "Enemy not found")
		return nil, false
	}
	return e, true
}

func (h *WorldHandler) handleGetEnemy(w http.ResponseWriter, r *http.Request) {
	if e, ok := h.loadEnemy(w, r); ok {
		writeJSON(w, http.StatusOK, e)
	}
}

func (h *WorldHandler) handleUpdateEnemy(w http.ResponseWriter, r *http.Request) {
	e, ok := h.loadEnemy(w, r)
	if !ok {
		return
	}
	var req EnemyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != nil {
		e.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.MaxHealth != nil {
		e.MaxHealth = *req.MaxHealth
	}
	if req.Health != nil {
		e.Health = *req.Health
	}
	if req.Damage != nil {
		e.Damage = *req.Damage
	}
	if req.Attack != nil {
		e.Attack = *req.Attack
	}
	if e.Name == "" || e.MaxHealth <= 0 || e.Health < 0 || e.Health > e.MaxHealth {
		writeError(w, http.StatusBadRequest, "enemy needs a name and health within 0 and max_health")
		return
	}
	if err := h.storage.SaveEnemy(r.Context(), e); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *WorldHandler) handleResetEnemies(w http.ResponseWriter, r *http.Request) {
	if err := h.restorer.RestoreEnemies(r.Context()); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info("Enemies restored")
	writeJSON(w, http.StatusOK, MessageResponse{Message: "All enemies restored"})
}

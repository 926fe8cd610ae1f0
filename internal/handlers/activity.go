package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/dungeon-engine/internal/activitylog"
)

const defaultActivityLimit = 100

// ActivityReader is the read side of the activity log store.
type ActivityReader interface {
	ListAll(ctx context.Context, limit int) ([]activitylog.Entry, error)
	ListByPlayer(ctx context.Context, playerID, limit int) ([]activitylog.Entry, error)
	Clear(ctx context.Context) (int64, error)
}

type ActivityHandler struct {
	store  ActivityReader
	logger *slog.Logger
}

func NewActivityHandler(logger *slog.Logger, store ActivityReader) *ActivityHandler {
	return &ActivityHandler{store: store, logger: logger}
}

func (h *ActivityHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/activity", h.handleList)
	mux.HandleFunc("GET /v1/activity/{player_id}", h.handleListByPlayer)
	mux.HandleFunc("DELETE /v1/activity", h.handleClear)
}

type ActivityResponse struct {
	Count int                 `json:"count"`
	Logs  []activitylog.Entry `json:"logs"`
}

type ClearActivityResponse struct {
	Deleted int64 `json:"deleted"`
}

// limit reads ?limit=n. Zero or negative returns everything.
func limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultActivityLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return 0, false
	}
	return n, true
}

func (h *ActivityHandler) respond(w http.ResponseWriter, r *http.Request, logs []activitylog.Entry, err error) {
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if logs == nil {
		logs = []activitylog.Entry{}
	}
	writeJSON(w, http.StatusOK, ActivityResponse{Count: len(logs), Logs: logs})
}

func (h *ActivityHandler) handleList(w http.ResponseWriter, r *http.Request) {
	n, ok := limit(w, r)
	if !ok {
		return
	}
	logs, err := h.store.ListAll(r.Context(), n)
	h.respond(w, r, logs, err)
}

func (h *ActivityHandler) handleListByPlayer(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathIDs(w, r, "player_id")
	if !ok {
		return
	}
	n, ok := limit(w, r)
	if !ok {
		return
	}
	logs, err := h.store.ListByPlayer(r.Context(), ids[0], n)
	h.respond(w, r, logs, err)
}

func (h *ActivityHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Clear(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info("Activity log cleared", "deleted", n)
	writeJSON(w, http.StatusOK, ClearActivityResponse{Deleted: n})
}

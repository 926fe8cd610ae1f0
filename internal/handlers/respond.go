package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/dungeon-engine/internal/game"
	"github.com/jwebster45206/dungeon-engine/internal/middleware"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError maps game error kinds to status codes. Anything
// unclassified is logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, msg := serviceError(r, log, err)
	writeError(w, status, msg)
}

func serviceError(r *http.Request, log *slog.Logger, err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, game.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, game.ErrConflict), errors.Is(err, game.ErrBusy):
		return http.StatusConflict, err.Error()
	}
	middleware.FromContext(r.Context(), log).Error("Request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path)
	return http.StatusInternalServerError, "Internal server error"
}

// pathID reads a positive integer path value.
func pathID(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// pathIDs reads several path IDs, writing a 400 for the first bad one.
func pathIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]int, bool) {
	ids := make([]int, len(names))
	for i, name := range names {
		id, err := pathID(r, name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}
	return true
}

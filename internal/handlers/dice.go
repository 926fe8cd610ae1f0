package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/dungeon-engine/pkg/dice"
)

type DiceHandler struct {
	roller dice.Roller
	logger *slog.Logger
}

func NewDiceHandler(logger *slog.Logger, roller dice.Roller) *DiceHandler {
	return &DiceHandler{roller: roller, logger: logger}
}

func (h *DiceHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/dice/roll", h.handleRoll)
}

type RollResponse struct {
	Sides   int   `json:"sides"`
	Count   int   `json:"count"`
	Results []int `json:"results"`
	Total   int   `json:"total"`
}

// handleRoll serves GET /v1/dice/roll?sides=6&count=1
func (h *DiceHandler) handleRoll(w http.ResponseWriter, r *http.Request) {
	sides, count := dice.D6, 1
	q := r.URL.Query()
	if v := q.Get("sides"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "sides must be an integer")
			return
		}
		sides = n
	}
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = n
	}

	results, err := dice.RollMany(h.roller, sides, count)
	if dice.IsInvalid(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("Failed to roll dice", "sides", sides, "count", count, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	total := 0
	for _, v := range results {
		total += v
	}
	writeJSON(w, http.StatusOK, RollResponse{Sides: sides, Count: count, Results: results, Total: total})
}

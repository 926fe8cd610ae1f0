package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

const checkTimeout = 2 * time.Second

// Checker is a named dependency probe.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components,omitempty"`
}

type HealthHandler struct {
	service  string
	checkers []Checker
	logger   *slog.Logger
}

func NewHealthHandler(service string, logger *slog.Logger, checkers ...Checker) *HealthHandler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &HealthHandler{
		service:  service,
		checkers: c,
		logger:   logger,
	}
}

// Register adds /health, the liveness probe /healthz and the readiness probe
// /readyz. /health and /readyz run every checker.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /health", h)
	mux.Handle("GET /readyz", h)
	mux.HandleFunc("GET /healthz", h.Healthz)
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.service,
	})
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	components := make(map[string]string, len(h.checkers))
	overallStatus := "healthy"

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			h.logger.Warn("Health check failed", "component", c.Name, "error", err)
			components[c.Name] = "unhealthy"
			overallStatus = "degraded"
			continue
		}
		components[c.Name] = "healthy"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    h.service,
		Components: components,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

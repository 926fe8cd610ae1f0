package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/dungeon-engine/internal/config"
)

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w: JSON in production, text otherwise.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// WithRequestID adds request ID to logger context
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With("request_id", requestID)
}

// WithPlayer scopes a logger to one player.
func WithPlayer(logger *slog.Logger, playerID int) *slog.Logger {
	return logger.With("player_id", playerID)
}

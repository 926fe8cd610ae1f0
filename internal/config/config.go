package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string     `env:"PORT" envDefault:"8080"`
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string     `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level `env:"-"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	DataDir  string `env:"DATA_DIR" envDefault:"./data"`
	// WorldFile defaults to world.yaml inside DataDir.
	WorldFile string `env:"WORLD_FILE"`

	ActivityDBPath   string `env:"ACTIVITY_DB_PATH" envDefault:"./data/activity.db"`
	ActivityConsumer bool   `env:"ACTIVITY_CONSUMER" envDefault:"true"`
	WorkerID         string `env:"WORKER_ID"`
	// WorkerPort serves health and metrics for the standalone worker.
	WorkerPort string `env:"WORKER_PORT" envDefault:"9091"`

	LockTTL time.Duration `env:"LOCK_TTL" envDefault:"30s"`

	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	if cfg.WorldFile == "" {
		cfg.WorldFile = filepath.Join(cfg.DataDir, "world.yaml")
	}
	if cfg.LockTTL <= 0 {
		return nil, fmt.Errorf("LOCK_TTL must be positive, got %s", cfg.LockTTL)
	}
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

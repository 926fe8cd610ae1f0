package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "REDIS_URL", "DATA_DIR", "WORLD_FILE", "ACTIVITY_CONSUMER", "LOCK_TTL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
	if !cfg.ActivityConsumer {
		t.Error("expected in-process activity consumer by default")
	}
	if cfg.WorldFile != filepath.Join("./data", "world.yaml") {
		t.Errorf("unexpected world file %q", cfg.WorldFile)
	}
	if cfg.LockTTL != 30*time.Second {
		t.Errorf("expected 30s lock ttl, got %s", cfg.LockTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ACTIVITY_CONSUMER", "false")
	t.Setenv("WORLD_FILE", "/tmp/other.yaml")
	t.Setenv("LOCK_TTL", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.LogLevel != slog.LevelDebug || cfg.ActivityConsumer {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.WorldFile != "/tmp/other.yaml" || cfg.LockTTL != 5*time.Second {
		t.Errorf("unexpected world file or ttl: %+v", cfg)
	}
}

func TestLoad_BadValues(t *testing.T) {
	t.Setenv("LOCK_TTL", "soon")
	if _, err := Load(); err == nil {
		t.Error("expected parse error for bad duration")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

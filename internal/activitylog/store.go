// Package activitylog persists player activity events in SQLite.
package activitylog

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/queue"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Entry is one stored activity log row.
type Entry struct {
	LogID     int64     `json:"log_id"`
	EventID   string    `json:"event_id"`
	PlayerID  int       `json:"player_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists activity logs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the SQLite activity store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// Insert stores an event. Redelivered events (same event ID) are ignored and
// reported with inserted=false.
func (s *Store) Insert(ctx context.Context, event *queue.ActivityEvent) (inserted bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := event.Validate(); err != nil {
		return false, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR IGNORE INTO activity_logs (event_id, player_id, action, timestamp) VALUES (?, ?, ?, ?)`,
		event.EventID,
		event.PlayerID,
		event.Action,
		toMillis(event.Timestamp),
	)
	if err != nil {
		return false, fmt.Errorf("insert activity log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert activity log: %w", err)
	}
	return n > 0, nil
}

// ListByPlayer returns a player's log, newest first. limit <= 0 means all.
func (s *Store) ListByPlayer(ctx context.Context, playerID, limit int) ([]Entry, error) {
	return s.list(ctx,
		`SELECT log_id, event_id, player_id, action, timestamp FROM activity_logs
		 WHERE player_id = ? ORDER BY timestamp DESC, log_id DESC LIMIT ?`,
		playerID, sqlLimit(limit))
}

// ListAll returns every log row, newest first. limit <= 0 means all.
func (s *Store) ListAll(ctx context.Context, limit int) ([]Entry, error) {
	return s.list(ctx,
		`SELECT log_id, event_id, player_id, action, timestamp FROM activity_logs
		 ORDER BY timestamp DESC, log_id DESC LIMIT ?`,
		sqlLimit(limit))
}

// Clear deletes every row and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM activity_logs`)
	if err != nil {
		return 0, fmt.Errorf("clear activity logs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity logs: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var (
			e  Entry
			ts int64
		)
		if err := rows.Scan(&e.LogID, &e.EventID, &e.PlayerID, &e.Action, &ts); err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity logs: %w", err)
	}
	return out, nil
}

// SQLite treats a negative LIMIT as unbounded.
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

const migrationTable = "schema_migrations"

// applyMigrations runs each embedded .sql file at most once, in name order.
func applyMigrations(sqlDB *sql.DB) error {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, name := range files {
		var count int
		if err := sqlDB.QueryRow(`SELECT COUNT(1) FROM `+migrationTable+` WHERE name = ?`, name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, "migrations/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		upSQL := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(string(content)), "-- +migrate Up"))

		tx, err := sqlDB.BeginTx(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(upSQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`, name, toMillis(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

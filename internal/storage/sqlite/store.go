// Package sqlite stores timer preferences and the completed-cycle history in a
// SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"pomodocko/internal/core/model"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "pomodocko.db"

// ErrClosed is returned when the store is used after Close.
var ErrClosed = errors.New("sqlite store closed")

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cycles (
		id TEXT PRIMARY KEY,
		day TEXT NOT NULL,
		focus_minutes INTEGER NOT NULL,
		completed_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cycles_day ON cycles(day)`,
}

// Store implements the preference store and cycle recorder on SQLite.
type Store struct {
	db *sql.DB
}

// Open creates the directory if needed, opens the database and applies the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for _, statement := range migrations {
		if _, err := db.Exec(statement); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// OpenInDir opens DBFileName inside dir.
func OpenInDir(dir string) (*Store, error) {
	return Open(filepath.Join(dir, DBFileName))
}

// Close releases the database handle.
func (store *Store) Close() error {
	if store == nil || store.db == nil {
		return nil
	}
	err := store.db.Close()
	store.db = nil
	return err
}

// Load reads the preferences for day. Missing rows yield defaults.
func (store *Store) Load(day string) (model.Preferences, error) {
	prefs := model.DefaultPreferences()
	if store.db == nil {
		return prefs, ErrClosed
	}

	rows, err := store.db.Query(
		`SELECT key, value FROM preferences WHERE key IN (?, ?, ?)`,
		model.KeyFocusMinutes,
		model.KeyBreakMinutes,
		model.CompletedCyclesKey(day),
	)
	if err != nil {
		return prefs, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value int
		if err := rows.Scan(&key, &value); err != nil {
			return prefs, fmt.Errorf("scan preference: %w", err)
		}
		switch key {
		case model.KeyFocusMinutes:
			prefs.FocusMinutes = model.FocusMinutes(value)
		case model.KeyBreakMinutes:
			prefs.BreakMinutes = model.BreakMinutes(value)
		default:
			prefs.CompletedCycles = value
		}
	}
	if err := rows.Err(); err != nil {
		return prefs, fmt.Errorf("iterate preferences: %w", err)
	}
	return prefs, nil
}

// Save upserts a single preference value.
func (store *Store) Save(key string, value int) error {
	if store.db == nil {
		return ErrClosed
	}
	_, err := store.db.Exec(
		`INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key,
		value,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}
	return nil
}

// RecordCycle appends a finished focus interval to the history.
func (store *Store) RecordCycle(cycle model.Cycle) error {
	if store.db == nil {
		return ErrClosed
	}
	_, err := store.db.Exec(
		`INSERT INTO cycles (id, day, focus_minutes, completed_at) VALUES (?, ?, ?, ?)`,
		cycle.ID,
		cycle.Day,
		int(cycle.FocusMinutes),
		cycle.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record cycle %s: %w", cycle.ID, err)
	}
	return nil
}

// CyclesOn returns the cycles recorded for day, oldest first.
func (store *Store) CyclesOn(day string) ([]model.Cycle, error) {
	if store.db == nil {
		return nil, ErrClosed
	}

	rows, err := store.db.Query(
		`SELECT id, day, focus_minutes, completed_at FROM cycles WHERE day = ? ORDER BY completed_at`,
		day,
	)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var cycles []model.Cycle
	for rows.Next() {
		var cycle model.Cycle
		var minutes int
		var completedAt string
		if err := rows.Scan(&cycle.ID, &cycle.Day, &minutes, &completedAt); err != nil {
			return nil, fmt.Errorf("scan cycle: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at %q: %w", completedAt, err)
		}
		cycle.FocusMinutes = model.FocusMinutes(minutes)
		cycle.CompletedAt = parsed
		cycles = append(cycles, cycle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cycles: %w", err)
	}
	return cycles, nil
}

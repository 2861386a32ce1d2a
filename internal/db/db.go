// Package db provides SQLite persistence for loreweave: the world
// object store and the event log.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/loreweave/loreweave/internal/logging"
)

// DB wraps the SQLite handle together with a component logger.
type DB struct {
	*sql.DB
	logger zerolog.Logger
}

// Open opens (creating if needed) the database at path and applies
// pragmas suited to a single-writer interactive application.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{DB: handle, logger: logging.Component("db")}
	if err := db.applyPragmas(context.Background()); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// OpenInMemory opens a private in-memory database, used by tests.
func OpenInMemory() (*DB, error) {
	handle, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// The in-memory database vanishes with its last connection.
	handle.SetMaxOpenConns(1)

	db := &DB{DB: handle, logger: logging.Component("db")}
	if err := db.applyPragmas(context.Background()); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA journal_mode = WAL`,
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}
	return nil
}

// migrations are applied in order; schema_version records the last
// applied index so re-running MigrateUp is cheap and safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS objects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		attributes_json TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS change_events (
		id TEXT PRIMARY KEY,
		timestamp REAL NOT NULL,
		object_id TEXT NOT NULL,
		attribute_id TEXT NOT NULL,
		new_value_json TEXT NOT NULL,
		old_value_json TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_change_events_object
		ON change_events(object_id, attribute_id, timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_change_events_order
		ON change_events(timestamp, id)`,
	`CREATE TABLE IF NOT EXISTS timeline_events (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		start_time REAL NOT NULL,
		end_time REAL,
		category TEXT,
		participants_json TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timeline_events_order
		ON timeline_events(start_time, id)`,
}

// MigrateUp applies pending migrations and returns how many ran.
func (db *DB) MigrateUp(ctx context.Context) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}

	var version int
	row := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	applied := 0
	for i := version; i < len(migrations); i++ {
		if _, err := db.ExecContext(ctx, migrations[i]); err != nil {
			return applied, fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			return applied, fmt.Errorf("failed to clear schema version: %w", err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return applied, fmt.Errorf("failed to record schema version: %w", err)
		}
		applied++
	}

	if applied > 0 {
		db.logger.Debug().Int("applied", applied).Msg("migrations applied")
	}
	return applied, nil
}

// Transaction runs fn inside a transaction, rolling back on error.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

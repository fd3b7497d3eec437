// Package store persists run history in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the run-history store.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,               -- 'simulate' or 'report'
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    samples INTEGER NOT NULL DEFAULT 0,
    pulses INTEGER NOT NULL DEFAULT 0,
    mean_spacing REAL NOT NULL DEFAULT 0,
    final_center_impurity REAL NOT NULL DEFAULT 0,
    results_csv TEXT,
    chart_svg TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS schema_meta (
    version INTEGER NOT NULL
);
`

// InitSchema creates the schema if needed and records the schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	var version int
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_meta LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_meta (version) VALUES (?)`, SchemaVersion); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading schema version: %w", err)
	case version > SchemaVersion:
		return fmt.Errorf("store: database schema version %d is newer than supported version %d", version, SchemaVersion)
	}
	return nil
}

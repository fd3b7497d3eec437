package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// RunRecord is one completed simulate or report run.
type RunRecord struct {
	ID                  string    `json:"id"`
	Kind                string    `json:"kind"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
	Samples             int       `json:"samples"`
	Pulses              int       `json:"pulses"`
	MeanSpacing         float64   `json:"mean_spacing"`
	FinalCenterImpurity float64   `json:"final_center_impurity"`
	ResultsCSV          string    `json:"results_csv,omitempty"`
	ChartSVG            string    `json:"chart_svg,omitempty"`
}

// RunStore records completed runs in a SQLite database.
type RunStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens (creating if needed) the run-history database under dataDir.
func Open(dataDir string) (*RunStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return &RunStore{db: db}, nil
}

// Record inserts a completed run. If rec.ID is empty, an ID is derived from
// the run's kind and start time.
func (s *RunStore) Record(ctx context.Context, rec RunRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = newRunID(rec.Kind, rec.StartedAt)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, started_at, finished_at, samples, pulses,
		                  mean_spacing, final_center_impurity, results_csv, chart_svg)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Samples, rec.Pulses, rec.MeanSpacing, rec.FinalCenterImpurity,
		rec.ResultsCSV, rec.ChartSVG)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return rec.ID, nil
}

// Recent returns up to limit runs, newest first.
func (s *RunStore) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at, samples, pulses,
		       mean_spacing, final_center_impurity, results_csv, chart_svg
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished string
		if err := rows.Scan(&rec.ID, &rec.Kind, &started, &finished,
			&rec.Samples, &rec.Pulses, &rec.MeanSpacing, &rec.FinalCenterImpurity,
			&rec.ResultsCSV, &rec.ChartSVG); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep runs, returning how many were removed.
func (s *RunStore) Prune(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// newRunID derives a short stable ID from the run's kind and start time.
func newRunID(kind string, started time.Time) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", kind, started.UnixNano())))
	return hex.EncodeToString(h[:])[:12]
}

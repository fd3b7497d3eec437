package store

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(kind string, started time.Time) RunRecord {
	return RunRecord{
		Kind:                kind,
		StartedAt:           started,
		FinishedAt:          started.Add(3 * time.Second),
		Samples:             500000,
		Pulses:              12,
		MeanSpacing:         0.83,
		FinalCenterImpurity: 7.2e17,
		ResultsCSV:          "w7x_simulation.csv",
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := s.Record(ctx, testRecord("simulate", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}

	// Newest first.
	for i := 1; i < len(runs); i++ {
		if runs[i].StartedAt.After(runs[i-1].StartedAt) {
			t.Errorf("runs not sorted newest first: %v before %v",
				runs[i-1].StartedAt, runs[i].StartedAt)
		}
	}

	got := runs[0]
	if got.Kind != "simulate" || got.Pulses != 12 || got.MeanSpacing != 0.83 {
		t.Errorf("unexpected record round-trip: %+v", got)
	}
	if got.ID == "" {
		t.Error("record has no generated ID")
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if _, err := s.Record(ctx, testRecord("report", base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	runs, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if _, err := s.Record(ctx, testRecord("simulate", base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	removed, err := s.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 3 {
		t.Errorf("removed %d runs, want 3", removed)
	}

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("%d runs remain, want 2", len(runs))
	}
	// The newest two survive.
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Error("surviving runs are not the newest")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	if _, err := s1.Record(context.Background(), testRecord("simulate", time.Now().UTC())); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer s2.Close()

	runs, err := s2.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs after reopen, want 1", len(runs))
	}
}

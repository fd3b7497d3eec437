package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"info", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerFiltersLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("info", &buf)

	log.Debug("hidden")
	log.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("info message not logged")
	}
}

func TestDecisionLoggerNilAtInfo(t *testing.T) {
	dl := NewDecisionLogger(t.TempDir(), "info")
	if dl != nil {
		t.Fatal("expected nil decision logger at info level")
	}
	// Nil receiver must be safe.
	dl.Log(map[string]any{"event": "pulse_start"})
	dl.Close()
}

func TestDecisionLoggerWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	dl := NewDecisionLogger(dir, "debug")
	if dl == nil {
		t.Fatal("expected decision logger at debug level")
	}

	dl.Log(map[string]any{"event": "pulse_start", "t": 1.25})
	dl.Log(map[string]any{"event": "pulse_end", "t": 1.45})
	dl.Close()

	f, err := os.Open(filepath.Join(dir, "decisions.jsonl"))
	if err != nil {
		t.Fatalf("opening decision log: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if _, ok := entry["time"]; !ok {
			t.Errorf("line %d missing time field", lines)
		}
		if _, ok := entry["event"]; !ok {
			t.Errorf("line %d missing event field", lines)
		}
	}
	if lines != 2 {
		t.Errorf("decision log has %d lines, want 2", lines)
	}
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	if lvl := New("", "").GetLevel(); lvl != zerolog.InfoLevel {
		t.Errorf("empty level = %v, want info", lvl)
	}
	if lvl := New("bogus", "").GetLevel(); lvl != zerolog.InfoLevel {
		t.Errorf("unknown level = %v, want info", lvl)
	}
	if lvl := New("debug", "").GetLevel(); lvl != zerolog.DebugLevel {
		t.Errorf("debug level = %v, want debug", lvl)
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "recorder.log")

	logger := New("info", path)
	logger.Info().Msg("capture engine ready")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "capture engine ready") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestNewSurvivesUnwritableFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "occupied")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	logger := New("info", filepath.Join(blocker, "recorder.log"))
	if lvl := logger.GetLevel(); lvl != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", lvl)
	}
	logger.Info().Msg("still alive")
}

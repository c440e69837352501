package log

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSetupWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "satchel.log")
	logger, err := Setup(&Config{File: path, Level: "debug"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	logger.Info("sync complete", "resource", "grades", "count", 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"resource":"grades"`) {
		t.Fatalf("log output missing structured attr: %s", data)
	}
}

func TestNullDiscards(t *testing.T) {
	// Must not panic and must accept arbitrary attrs.
	Null().Error("ignored", "key", "value")
}

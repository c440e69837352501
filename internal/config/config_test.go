package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Sync.Debounce != 2*time.Second {
		t.Fatalf("Debounce = %v, want 2s", cfg.Sync.Debounce)
	}
	if cfg.Sync.AbsencesTTL != time.Hour {
		t.Fatalf("AbsencesTTL = %v, want 1h", cfg.Sync.AbsencesTTL)
	}
	if cfg.Logging.Level != "INFO" {
		t.Fatalf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
	if cfg.Cache.Dir == "" {
		t.Fatal("Cache.Dir should default to a non-empty path")
	}
}

func TestIsConfigured(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsConfigured() {
		t.Fatal("empty server config should not be configured")
	}

	cfg.Server.URL = "https://portal.example.edu"
	if cfg.IsConfigured() {
		t.Fatal("missing token should not be configured")
	}

	cfg.Server.Token = "tok"
	if !cfg.IsConfigured() {
		t.Fatal("url+token should be configured")
	}
}

func TestTTLFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sync.AbsencesTTL = time.Hour
	cfg.Sync.GradesTTL = 2 * time.Hour
	cfg.Sync.PlanningTTL = 30 * time.Minute

	cases := []struct {
		resource string
		want     time.Duration
	}{
		{"absences", time.Hour},
		{"grades", 2 * time.Hour},
		{"planning", 30 * time.Minute},
		{"unknown", time.Hour},
	}
	for _, c := range cases {
		if got := cfg.TTLFor(c.resource); got != c.want {
			t.Fatalf("TTLFor(%q) = %v, want %v", c.resource, got, c.want)
		}
	}
}

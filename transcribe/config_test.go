package transcribe

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestHopTime(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.HopTime(); math.Abs(got-0.01) > 1e-12 {
		t.Fatalf("HopTime() = %f, want 0.01", got)
	}
}

func TestLoadConfigJSONOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"confidence_threshold": 0.7, "grid_subdivisions": 2}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigJSON(path)
	if err != nil {
		t.Fatalf("LoadConfigJSON() error: %v", err)
	}
	if cfg.ConfidenceThreshold != 0.7 {
		t.Fatalf("confidence_threshold = %g, want the override 0.7", cfg.ConfidenceThreshold)
	}
	if cfg.GridSubdivisions != 2 {
		t.Fatalf("grid_subdivisions = %d, want the override 2", cfg.GridSubdivisions)
	}
	// Untouched fields keep their defaults.
	if cfg.SampleRate != 16000 || cfg.Hop != 160 {
		t.Fatalf("defaults lost: rate %d, hop %d", cfg.SampleRate, cfg.Hop)
	}
}

func TestLoadConfigJSONRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"snap_tolerance": 0.9}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigJSON(path); err == nil {
		t.Fatal("expected validation error for snap_tolerance 0.9")
	}
}

func TestLoadConfigJSONMissingFile(t *testing.T) {
	if _, err := LoadConfigJSON(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero hop", func(c *Config) { c.Hop = 0 }},
		{"confidence above one", func(c *Config) { c.ConfidenceThreshold = 1.5 }},
		{"zero median size", func(c *Config) { c.MedianFilterSize = 0 }},
		{"zero note duration", func(c *Config) { c.MinNoteDuration = 0 }},
		{"zero subdivisions", func(c *Config) { c.GridSubdivisions = 0 }},
		{"tolerance above half", func(c *Config) { c.SnapTolerance = 0.6 }},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate() accepted an invalid config", tc.name)
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Calendar.SnapMinutes != 15 {
		t.Errorf("expected snap_minutes 15, got %d", cfg.Calendar.SnapMinutes)
	}
	if cfg.Calendar.WeekStart != "sunday" {
		t.Errorf("expected week_start sunday, got %s", cfg.Calendar.WeekStart)
	}
	if cfg.Storage.LayoutCacheSize != 16 {
		t.Errorf("expected layout_cache_size 16, got %d", cfg.Storage.LayoutCacheSize)
	}
	if cfg.UI.HourStart != 0 || cfg.UI.HourEnd != 24 {
		t.Errorf("expected full-day hour range, got %d-%d", cfg.UI.HourStart, cfg.UI.HourEnd)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return defaults
	if cfg.Calendar.SnapMinutes != 15 {
		t.Errorf("expected default snap_minutes, got %d", cfg.Calendar.SnapMinutes)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	content := `
[calendar]
snap_minutes = 30
week_start = "monday"
channel = "design"

[storage]
db_path = "/tmp/test.db"
layout_cache_size = 4

[ui]
hour_start = 8
hour_end = 18
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Calendar.SnapMinutes != 30 {
		t.Errorf("expected snap_minutes 30, got %d", cfg.Calendar.SnapMinutes)
	}
	if !cfg.WeekStartsOnMonday() {
		t.Error("expected WeekStartsOnMonday")
	}
	if cfg.Calendar.Channel != "design" {
		t.Errorf("expected channel design, got %s", cfg.Calendar.Channel)
	}
	if cfg.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("expected db_path /tmp/test.db, got %s", cfg.Storage.DBPath)
	}
	if cfg.UI.HourStart != 8 || cfg.UI.HourEnd != 18 {
		t.Errorf("expected hours 8-18, got %d-%d", cfg.UI.HourStart, cfg.UI.HourEnd)
	}
	// Defaults survive for keys the file does not set.
	if cfg.Calendar.DefaultColor != "blue" {
		t.Errorf("expected default color to survive, got %s", cfg.Calendar.DefaultColor)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	content := `
[calendar]
snap_minutes = 30
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("HUDDLE_SNAP_MINUTES", "10")
	t.Setenv("HUDDLE_DB_PATH", "/tmp/env.db")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Calendar.SnapMinutes != 10 {
		t.Errorf("expected env snap_minutes 10, got %d", cfg.Calendar.SnapMinutes)
	}
	if cfg.Storage.DBPath != "/tmp/env.db" {
		t.Errorf("expected env db_path, got %s", cfg.Storage.DBPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"snap does not divide hour", func(c *Config) { c.Calendar.SnapMinutes = 7 }, true},
		{"snap zero", func(c *Config) { c.Calendar.SnapMinutes = 0 }, true},
		{"bad week start", func(c *Config) { c.Calendar.WeekStart = "wednesday" }, true},
		{"hour range inverted", func(c *Config) { c.UI.HourStart = 18; c.UI.HourEnd = 8 }, true},
		{"hour end past midnight", func(c *Config) { c.UI.HourEnd = 25 }, true},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, true},
		{"zero cache size", func(c *Config) { c.Storage.LayoutCacheSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubdivisions(t *testing.T) {
	cfg := Default()
	if got := cfg.Subdivisions(); got != 4 {
		t.Errorf("Subdivisions() = %d, want 4", got)
	}
	cfg.Calendar.SnapMinutes = 60
	if got := cfg.Subdivisions(); got != 1 {
		t.Errorf("Subdivisions() = %d, want 1", got)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Calendar.Channel = "platform"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if got.Calendar.Channel != "platform" {
		t.Errorf("expected channel platform after round trip, got %s", got.Calendar.Channel)
	}
}

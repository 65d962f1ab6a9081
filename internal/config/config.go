// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Calendar CalendarConfig `toml:"calendar"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
}

// CalendarConfig holds scheduling and snapping settings.
type CalendarConfig struct {
	SnapMinutes  int    `toml:"snap_minutes" env:"HUDDLE_SNAP_MINUTES"`   // drag snapping step, must divide 60
	WeekStart    string `toml:"week_start" env:"HUDDLE_WEEK_START"`       // "sunday" or "monday"
	DefaultColor string `toml:"default_color" env:"HUDDLE_DEFAULT_COLOR"` // color for new events
	Channel      string `toml:"channel" env:"HUDDLE_CHANNEL"`             // default channel for new events
}

// StorageConfig holds database and cache settings.
type StorageConfig struct {
	DBPath          string `toml:"db_path" env:"HUDDLE_DB_PATH"`
	LayoutCacheSize int    `toml:"layout_cache_size" env:"HUDDLE_LAYOUT_CACHE_SIZE"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme     string `toml:"theme" env:"HUDDLE_THEME"`
	HourStart int    `toml:"hour_start" env:"HUDDLE_HOUR_START"` // first hour shown in the day grid
	HourEnd   int    `toml:"hour_end" env:"HUDDLE_HOUR_END"`     // last hour shown, exclusive
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Calendar: CalendarConfig{
			SnapMinutes:  15,
			WeekStart:    "sunday",
			DefaultColor: "blue",
			Channel:      "general",
		},
		Storage: StorageConfig{
			DBPath:          defaultDBPath(),
			LayoutCacheSize: 16,
		},
		UI: UIConfig{
			Theme:     "frappe",
			HourStart: 0,
			HourEnd:   24,
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "huddle.db"
	}
	return filepath.Join(home, ".local", "share", "huddle", "huddle.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "huddle", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	// Environment variables take precedence over file config
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("reading env overrides: %w", err)
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	snap := c.Calendar.SnapMinutes
	if snap < 1 || snap > 60 || 60%snap != 0 {
		return fmt.Errorf("snap_minutes must divide an hour evenly, got %d", snap)
	}

	switch strings.ToLower(c.Calendar.WeekStart) {
	case "sunday", "monday":
	default:
		return fmt.Errorf("week_start must be sunday or monday, got %q", c.Calendar.WeekStart)
	}

	if c.UI.HourStart < 0 || c.UI.HourEnd > 24 || c.UI.HourStart >= c.UI.HourEnd {
		return fmt.Errorf("hour range %d-%d must fall within 0-24 with start before end",
			c.UI.HourStart, c.UI.HourEnd)
	}

	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.Storage.LayoutCacheSize < 1 {
		return fmt.Errorf("layout_cache_size must be positive, got %d", c.Storage.LayoutCacheSize)
	}
	return nil
}

// Subdivisions returns the number of grid slots per hour implied by the
// snapping step.
func (c *Config) Subdivisions() int {
	return 60 / c.Calendar.SnapMinutes
}

// WeekStartsOnMonday reports whether week rows begin on Monday.
func (c *Config) WeekStartsOnMonday() bool {
	return strings.EqualFold(c.Calendar.WeekStart, "monday")
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

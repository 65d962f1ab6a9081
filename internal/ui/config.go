package ui

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huddle-app/huddle/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show configuration",
		Long: `Show the active configuration.

If no config file exists, creates one with default values so it can
be edited in place.

Example:
  huddle config`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return showConfig()
		},
	}
}

func showConfig() error {
	configPath := config.DefaultConfigPath()
	fmt.Printf("Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		fmt.Println("No config file found. Creating with default values...")
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("Created %s\n\n", configPath)
	}

	printConfig(cfg)
	return nil
}

func printConfig(cfg *config.Config) {
	fmt.Println("Current configuration:")
	fmt.Println("──────────────────────")
	fmt.Println("[calendar]")
	fmt.Printf("  snap_minutes      = %d\n", cfg.Calendar.SnapMinutes)
	fmt.Printf("  week_start        = %s\n", cfg.Calendar.WeekStart)
	fmt.Printf("  default_color     = %s\n", cfg.Calendar.DefaultColor)
	fmt.Printf("  channel           = %s\n", cfg.Calendar.Channel)
	fmt.Println("\n[storage]")
	fmt.Printf("  db_path           = %s\n", cfg.Storage.DBPath)
	fmt.Printf("  layout_cache_size = %d\n", cfg.Storage.LayoutCacheSize)
	fmt.Println("\n[ui]")
	fmt.Printf("  theme             = %s\n", cfg.UI.Theme)
	fmt.Printf("  hour_start        = %d\n", cfg.UI.HourStart)
	fmt.Printf("  hour_end          = %d\n", cfg.UI.HourEnd)
}

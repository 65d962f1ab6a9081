package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huddle-app/huddle/internal/ics"
)

func (a *App) importCmd() *cobra.Command {
	var (
		channel string
		colorN  string
	)

	cmd := &cobra.Command{
		Use:   "import [file.ics]",
		Short: "Import events from an iCalendar file",
		Long: `Import every event from an iCalendar (.ics) file.

Simple recurrence rules are kept as repeating events; rules the
calendar model cannot express are expanded into one-off events for
the next year.

Example:
  huddle import team-calendar.ics --channel=eng-core`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening calendar file: %w", err)
			}
			defer func() { _ = f.Close() }()

			if channel == "" {
				channel = a.config.Calendar.Channel
			}
			if colorN == "" {
				colorN = a.config.Calendar.DefaultColor
			}

			evs, err := ics.Import(f, ics.Options{Channel: channel, Color: colorN})
			if err != nil {
				return fmt.Errorf("importing calendar: %w", err)
			}

			if err := a.repo.CreateEvents(context.Background(), evs); err != nil {
				return fmt.Errorf("storing imported events: %w", err)
			}

			fmt.Printf("Imported %d events from %s into #%s\n", len(evs), args[0], channel)
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "Channel for imported events (default from config)")
	cmd.Flags().StringVar(&colorN, "color", "", "Color for imported events (default from config)")

	return cmd
}

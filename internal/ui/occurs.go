package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/huddle-app/huddle/internal/dateutil"
	"github.com/huddle-app/huddle/internal/event"
)

func (a *App) occursCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "occurs [event-id]",
		Short: "Check whether an event occurs on a date",
		Long: `Check whether an event, or any part of a multi-day occurrence of it,
falls on the given calendar day.

Example:
  huddle occurs 1b7ac9e2-9f2d-4c41-86b1-62d0f4a21f90 --date=2026-01-12`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			day := dateutil.TruncateToDay(time.Now())
			if date != "" {
				var err error
				if day, err = dateutil.ParseDate(date); err != nil {
					return err
				}
			}

			ev, err := a.repo.GetEvent(context.Background(), args[0])
			if err != nil {
				return err
			}

			if event.OccursOn(ev, day) {
				fmt.Printf("%q occurs on %s\n", ev.Title, day.Format("Mon Jan 2, 2006"))
			} else {
				fmt.Printf("%q does not occur on %s\n", ev.Title, day.Format("Mon Jan 2, 2006"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date to check (YYYY-MM-DD, default: today)")

	return cmd
}

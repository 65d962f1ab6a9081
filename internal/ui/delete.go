package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [event-id]",
		Short: "Delete an event",
		Long: `Delete an event and, for repeating events, all of its occurrences.

Example:
  huddle delete 1b7ac9e2-9f2d-4c41-86b1-62d0f4a21f90`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			if err := a.repo.DeleteEvent(context.Background(), args[0]); err != nil {
				return fmt.Errorf("deleting event: %w", err)
			}

			fmt.Printf("Deleted event %s\n", args[0])
			return nil
		},
	}
}

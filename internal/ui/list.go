package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huddle-app/huddle/internal/event"
)

func (a *App) listCmd() *cobra.Command {
	var (
		channel string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored events",
		Long: `List every stored event with its repeat rule.

This shows the events themselves, not their occurrences; use "huddle
agenda" for the expanded calendar view.`,
		Example: `  huddle list
  huddle list --channel=eng-core`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			evs, err := a.repo.ListEvents(context.Background())
			if err != nil {
				return fmt.Errorf("listing events: %w", err)
			}

			shown := 0
			for _, ev := range evs {
				if channel != "" && ev.ChannelID != channel {
					continue
				}
				shown++
				fmt.Printf("  %s  %s %s%s\n",
					formatMuted(ev.ID),
					formatEvent(ev.Color, ev.Title),
					formatTime(describeTimes(ev)),
					describeRule(ev.Repeat),
				)
			}

			if shown == 0 {
				fmt.Println("No events found.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "Only show events in this channel")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")

	return cmd
}

func describeRule(r *event.RepeatRule) string {
	if r == nil {
		return ""
	}

	var desc string
	if r.Interval == 1 {
		desc = fmt.Sprintf("every %s", r.Unit)
	} else {
		desc = fmt.Sprintf("every %d %ss", r.Interval, r.Unit)
	}
	if len(r.Weekdays) > 0 {
		names := make([]string, len(r.Weekdays))
		for i, d := range r.Weekdays {
			names[i] = d.String()[:3]
		}
		desc += " on "
		for i, n := range names {
			if i > 0 {
				desc += ","
			}
			desc += n
		}
	}
	if r.EndOn != nil {
		desc += " until " + r.EndOn.Format("2006-01-02")
	}
	return formatMuted(" (" + desc + ")")
}

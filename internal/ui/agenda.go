package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/huddle-app/huddle/internal/dateutil"
	"github.com/huddle-app/huddle/internal/event"
	"github.com/huddle-app/huddle/internal/layout"
)

func (a *App) agendaCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		week      bool
		channel   string
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Show the expanded calendar for a date range",
		Long: `Expand every event, repeating ones included, into the occurrences
that fall inside a date range and print them grouped by day.

With --week the range widens to whole week rows, the way the month
view lays out its grid. Overlapping occurrences show their column
position within the overlap group.`,
		Example: `  huddle agenda
  huddle agenda --start=2026-01-05 --end=2026-01-11
  huddle agenda --start=2026-01-05 --week`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			dr, err := dateutil.NewDateRange(startDate, endDate)
			if err != nil {
				return err
			}

			win := event.DayWindow(dr.Start, dr.End)
			if week {
				win = event.WeekWindow(dr.Start, dr.End)
			}

			evs, err := a.repo.ListEventsInRange(context.Background(), win.Start, win.EffectiveEnd())
			if err != nil {
				return fmt.Errorf("listing events: %w", err)
			}
			if channel != "" {
				evs = filterChannel(evs, channel)
			}

			occs, err := event.Occurrences(evs, win)
			if err != nil {
				return fmt.Errorf("expanding events: %w", err)
			}
			if len(occs) == 0 {
				fmt.Println("Nothing scheduled in the specified date range.")
				return nil
			}

			printAgenda(occs, win)
			return nil
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, defaults to start date)")
	cmd.Flags().BoolVar(&week, "week", false, "Widen the range to whole Sun-Sat week rows")
	cmd.Flags().StringVar(&channel, "channel", "", "Only show events in this channel")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")

	return cmd
}

func filterChannel(evs []*event.Event, channel string) []*event.Event {
	out := evs[:0]
	for _, ev := range evs {
		if ev.ChannelID == channel {
			out = append(out, ev)
		}
	}
	return out
}

// printAgenda prints occurrences grouped by day. Side-by-side column
// positions come from the same packing the grid views use.
func printAgenda(occs []event.Occurrence, win event.Window) {
	colByKey := packColumns(occs)
	width := termWidth()

	for day := dateutil.TruncateToDay(win.Start); !day.After(win.EffectiveEnd()); day = day.AddDate(0, 0, 1) {
		var todays []event.Occurrence
		for _, occ := range occs {
			if occ.Covers(day) {
				todays = append(todays, occ)
			}
		}
		if len(todays) == 0 {
			continue
		}

		fmt.Printf("\n%s\n", formatHeader("=== "+day.Format("Mon Jan 2")+" ==="))
		for _, occ := range todays {
			printOccurrence(occ, day, colByKey[occKey(occ)], width)
		}
	}
	fmt.Println()
}

// packColumns runs the overlap packing and maps every occurrence to a
// human readable "col/cols" marker. Occurrences alone in their group get
// an empty marker.
func packColumns(occs []event.Occurrence) map[string]string {
	out := make(map[string]string, len(occs))
	for _, slot := range layout.Pack(occs) {
		if slot.Cols > 1 {
			out[occKey(slot.Occ)] = fmt.Sprintf("%d/%d", slot.Col+1, slot.Cols)
		}
	}
	return out
}

func occKey(occ event.Occurrence) string {
	return occ.EventID + "|" + occ.Start.Format(time.RFC3339Nano)
}

func printOccurrence(occ event.Occurrence, day time.Time, col string, width int) {
	var clock string
	if occ.Event != nil && occ.Event.AllDay {
		clock = "all day    "
	} else {
		clock = occ.Start.Format("15:04") + "-" + occ.End.Format("15:04")
	}

	prefix := " "
	if occ.HasPrev && dateutil.SameDay(day, dateutil.TruncateToDay(occ.Start)) {
		prefix = "◀"
	}
	suffix := ""
	if occ.HasNext && dateutil.SameDay(day, dateutil.TruncateToDay(occ.End.Add(-time.Nanosecond))) {
		suffix = " ▶"
	}

	title := ""
	colorName := ""
	if occ.Event != nil {
		title = occ.Event.Title
		colorName = occ.Event.Color
	}
	title = truncate(title, width-24)

	line := fmt.Sprintf("  %s %s %s%s", prefix, formatTime(clock), formatEvent(colorName, title), suffix)
	if col != "" {
		line += formatMuted(" [" + col + "]")
	}
	if occ.Event != nil && occ.Event.ChannelID != "" {
		line += formatMuted(" #" + occ.Event.ChannelID)
	}
	fmt.Println(strings.TrimRight(line, " "))
}

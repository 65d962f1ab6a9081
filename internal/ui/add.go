package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/huddle-app/huddle/internal/dateutil"
	"github.com/huddle-app/huddle/internal/event"
)

func (a *App) addCmd() *cobra.Command {
	var (
		date    string
		start   string
		end     string
		endDate string
		allDay  bool
		repeat  string
		every   int
		on      string
		until   string
		channel string
		colorN  string
	)

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a new event",
		Long: `Add a one-off or repeating event to the calendar.

Examples:
  huddle add "Standup" --date=2026-01-05 --start=09:00 --end=09:30 --repeat=week --on=mon,wed,fri
  huddle add "Offsite" --date=2026-01-05 --end-date=2026-01-07 --all-day`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}

			ev, err := buildEvent(args[0], addOpts{
				date: date, start: start, end: end, endDate: endDate,
				allDay: allDay, repeat: repeat, every: every, on: on, until: until,
			})
			if err != nil {
				return err
			}

			if channel == "" {
				channel = a.config.Calendar.Channel
			}
			if colorN == "" {
				colorN = a.config.Calendar.DefaultColor
			}
			ev.ChannelID = channel
			ev.Color = colorN

			if err := a.repo.CreateEvent(context.Background(), ev); err != nil {
				return fmt.Errorf("creating event: %w", err)
			}

			fmt.Printf("Created event %s: %s %s\n", ev.ID, ev.Title, describeTimes(ev))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Start date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&start, "start", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "End time (HH:MM)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "Last day for multi-day events (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day event")
	cmd.Flags().StringVar(&repeat, "repeat", "", "Repeat unit: day, week, month or year")
	cmd.Flags().IntVar(&every, "every", 1, "Repeat interval in units")
	cmd.Flags().StringVar(&on, "on", "", "Weekdays for weekly repeats (e.g. mon,wed,fri)")
	cmd.Flags().StringVar(&until, "until", "", "Last day the repeat applies (YYYY-MM-DD)")
	cmd.Flags().StringVar(&channel, "channel", "", "Channel the event belongs to (default from config)")
	cmd.Flags().StringVar(&colorN, "color", "", "Event color (default from config)")

	return cmd
}

type addOpts struct {
	date, start, end, endDate string
	allDay                    bool
	repeat                    string
	every                     int
	on                        string
	until                     string
}

func buildEvent(title string, o addOpts) (*event.Event, error) {
	day := dateutil.TruncateToDay(time.Now())
	if o.date != "" {
		var err error
		if day, err = dateutil.ParseDate(o.date); err != nil {
			return nil, err
		}
	}

	ev := &event.Event{Title: title, AllDay: o.allDay, Start: day}

	if o.allDay {
		if o.start != "" || o.end != "" {
			return nil, fmt.Errorf("all-day events take --end-date, not clock times")
		}
		if o.endDate != "" {
			last, err := dateutil.ParseDate(o.endDate)
			if err != nil {
				return nil, err
			}
			ev.End = &last
		}
	} else {
		if o.start != "" {
			clock, err := parseClock(o.start)
			if err != nil {
				return nil, err
			}
			ev.Start = day.Add(clock)
		}
		if o.end != "" {
			clock, err := parseClock(o.end)
			if err != nil {
				return nil, err
			}
			endDay := day
			if o.endDate != "" {
				var err error
				if endDay, err = dateutil.ParseDate(o.endDate); err != nil {
					return nil, err
				}
			}
			end := endDay.Add(clock)
			ev.End = &end
		}
	}

	if o.repeat != "" {
		rule := &event.RepeatRule{Interval: o.every, Unit: event.Unit(o.repeat)}
		if o.on != "" {
			days, err := parseWeekdays(o.on)
			if err != nil {
				return nil, err
			}
			rule.Weekdays = days
		} else if rule.Unit == event.UnitWeek {
			rule.Weekdays = []time.Weekday{ev.Start.Weekday()}
		}
		if o.until != "" {
			last, err := dateutil.ParseDate(o.until)
			if err != nil {
				return nil, err
			}
			rule.EndOn = &last
		}
		ev.Repeat = rule
	}

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

// parseClock parses an HH:MM string into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("time %q must be in HH:MM format", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// parseWeekdays parses a comma separated weekday list like "mon,wed,fri".
func parseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if len(part) > 3 {
			part = part[:3]
		}
		day, ok := weekdayNames[part]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}

// describeTimes renders an event's own start/end for confirmation output.
func describeTimes(ev *event.Event) string {
	if ev.AllDay {
		if ev.MultiDay() {
			return fmt.Sprintf("%s to %s (all day)",
				ev.Start.Format("2006-01-02"), ev.EndTime().Format("2006-01-02"))
		}
		return fmt.Sprintf("%s (all day)", ev.Start.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s %s-%s",
		ev.Start.Format("2006-01-02"),
		ev.Start.Format("15:04"),
		ev.EndTime().Format("15:04"))
}

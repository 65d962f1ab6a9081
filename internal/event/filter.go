package event

import (
	"time"

	"github.com/huddle-app/huddle/internal/dateutil"
)

// OccursOn is the cheap single-day membership test: it reports whether the
// event has an occurrence covering the given calendar day. It applies the
// same modular cycle test as Expand, so for any window containing the day
// the two agree.
//
// For events spanning several calendar days the cycle test is anchored at
// every day offset within the span, so the trailing days of cross-midnight
// and multi-day occurrences are classified correctly. Override exclusion is
// checked against the anchor day that actually matched, shifted back from
// the queried day.
//
// The repeat rule, if present, must already be valid; OccursOn does not
// re-validate.
func OccursOn(ev *Event, day time.Time) bool {
	day = dateutil.TruncateToDay(day)

	if !ev.Repeats() {
		start, end := occurrenceBounds(ev, ev.Start)
		return Occurrence{Start: start, End: end}.Covers(day)
	}

	// The number of extra calendar days one occurrence can trail behind its
	// anchor day.
	refStart, refEnd := occurrenceBounds(ev, ev.Start)
	spanDays := dateutil.DaysBetween(refStart, refEnd)
	if spanDays < 0 {
		spanDays = 0
	}

	for off := 0; off <= spanDays; off++ {
		anchor := day.AddDate(0, 0, -off)
		if !cycleMatches(ev, anchor) {
			continue
		}
		if ev.Repeat.overridden(anchor) {
			continue
		}
		start, end := occurrenceBounds(ev, candidateAt(ev, anchor))
		if (Occurrence{Start: start, End: end}).Covers(day) {
			return true
		}
	}
	return false
}

// cycleMatches reports whether the repeat cycle places an occurrence start
// on the given day, honoring the event start and EndOn bounds but not
// overrides.
func cycleMatches(ev *Event, day time.Time) bool {
	r := ev.Repeat

	if dateutil.DaysBetween(ev.Start, day) < 0 {
		return false
	}
	if r.EndOn != nil && day.After(dateutil.TruncateToDay(*r.EndOn)) {
		return false
	}

	switch r.Unit {
	case UnitDay:
		return dateutil.DaysBetween(ev.Start, day)%r.Interval == 0
	case UnitWeek:
		if !r.repeatsOn(day.Weekday()) {
			return false
		}
		return dateutil.WeeksBetween(ev.Start, day)%r.Interval == 0
	case UnitMonth:
		if day.Day() != ev.Start.Day() {
			return false
		}
		return dateutil.MonthsBetween(ev.Start, day)%r.Interval == 0
	case UnitYear:
		if day.Day() != ev.Start.Day() || day.Month() != ev.Start.Month() {
			return false
		}
		return (day.Year()-ev.Start.Year())%r.Interval == 0
	default:
		return false
	}
}

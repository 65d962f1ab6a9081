package event

import (
	"errors"
	"sort"
	"time"

	"github.com/huddle-app/huddle/internal/dateutil"
)

// Expansion errors.
var (
	ErrNotRepeating  = errors.New("event has no repeat rule")
	ErrInvalidWindow = errors.New("window end must not be before window start")
)

// Granularity selects how the end of a query window is computed: a day
// window ends at the last instant of its final day, a week window at the
// last instant of the Saturday closing its final week.
type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityWeek
)

// Window is the time range a caller wants occurrences for.
type Window struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
}

// EffectiveEnd returns the true inclusive upper bound of the window,
// extended according to its granularity.
func (w Window) EffectiveEnd() time.Time {
	if w.Granularity == GranularityWeek {
		return dateutil.EndOfWeek(w.End)
	}
	return dateutil.EndOfDay(w.End)
}

// DayWindow is a convenience constructor for a day-granularity window.
func DayWindow(start, end time.Time) Window {
	return Window{Start: start, End: end, Granularity: GranularityDay}
}

// WeekWindow is a convenience constructor for a week-granularity window.
func WeekWindow(start, end time.Time) Window {
	return Window{Start: start, End: end, Granularity: GranularityWeek}
}

// Expand turns a repeating event into concrete occurrences within the
// window. Events that begin before the window but still overlap it are
// included; their occurrences carry HasPrev, and occurrences running past
// the window carry HasNext.
//
// The event's repeat rule must be valid; an invalid rule is a caller bug
// surfaced as an error here rather than a panic.
func Expand(ev *Event, w Window) ([]Occurrence, error) {
	if ev.Repeat == nil {
		return nil, ErrNotRepeating
	}
	if err := ev.Repeat.validate(ev.Start); err != nil {
		return nil, err
	}
	if w.End.Before(w.Start) {
		return nil, ErrInvalidWindow
	}

	effEnd := w.EffectiveEnd()

	// Pull the window start back by the event's whole-day duration so
	// occurrences that began earlier but still overlap the window are found.
	shifted := w.Start.AddDate(0, 0, -ev.DurationDays())

	var out []Occurrence
	emit := func(cand time.Time) {
		if occ, ok := buildOccurrence(ev, cand, w.Start, effEnd); ok {
			out = append(out, occ)
		}
	}

	r := ev.Repeat
	switch r.Unit {
	case UnitDay:
		expandDaily(ev, shifted, effEnd, emit)
	case UnitWeek:
		expandWeekly(ev, shifted, effEnd, emit)
	case UnitMonth:
		expandMonthly(ev, shifted, effEnd, emit)
	case UnitYear:
		expandYearly(ev, shifted, effEnd, emit)
	}

	return out, nil
}

// buildOccurrence applies the rejection rules of the repeat cycle to one
// candidate start and, if it survives, materializes the occurrence.
func buildOccurrence(ev *Event, cand, windowStart, effEnd time.Time) (Occurrence, bool) {
	r := ev.Repeat
	if cand.Before(ev.Start) {
		return Occurrence{}, false
	}
	if cand.After(effEnd) {
		return Occurrence{}, false
	}
	candDay := dateutil.TruncateToDay(cand)
	if r.EndOn != nil && candDay.After(dateutil.TruncateToDay(*r.EndOn)) {
		return Occurrence{}, false
	}
	if r.overridden(candDay) {
		return Occurrence{}, false
	}

	start, end := occurrenceBounds(ev, cand)
	if end.Before(windowStart) {
		// Entirely before the window; only possible for candidates produced
		// by the duration backshift.
		return Occurrence{}, false
	}

	return Occurrence{
		EventID: ev.ID,
		Event:   ev,
		Start:   start,
		End:     end,
		HasPrev: start.Before(windowStart),
		HasNext: end.After(effEnd),
	}, true
}

// occurrenceBounds computes the concrete start and end for a candidate.
// All-day and multi-day spans are anchored to day boundaries regardless of
// the original event's time-of-day; short cross-midnight events keep their
// exact times.
func occurrenceBounds(ev *Event, cand time.Time) (time.Time, time.Time) {
	if ev.AllDay {
		day := dateutil.TruncateToDay(cand)
		spanDays := dateutil.DaysBetween(ev.Start, ev.EndTime())
		if spanDays < 0 {
			spanDays = 0
		}
		return day, dateutil.EndOfDay(day.AddDate(0, 0, spanDays))
	}
	end := cand.Add(ev.Duration())
	if ev.DurationDays() > 1 {
		end = dateutil.EndOfDay(end)
	}
	return cand, end
}

// candidateAt places a candidate on the given day at the event's original
// time-of-day.
func candidateAt(ev *Event, day time.Time) time.Time {
	h, m, s := ev.Start.Clock()
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, ev.Start.Location())
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func expandDaily(ev *Event, shifted, effEnd time.Time, emit func(time.Time)) {
	interval := ev.Repeat.Interval

	// Align the first candidate to the nearest interval boundary at or
	// after the shifted window start.
	k := 0
	if diff := dateutil.DaysBetween(ev.Start, shifted); diff > 0 {
		k = ceilDiv(diff, interval) * interval
	}

	for {
		cand := ev.Start.AddDate(0, 0, k)
		if cand.After(effEnd) {
			return
		}
		emit(cand)
		k += interval
	}
}

func expandWeekly(ev *Event, shifted, effEnd time.Time, emit func(time.Time)) {
	r := ev.Repeat
	base := dateutil.StartOfWeek(ev.Start)

	// Start from the last aligned week at or before the shifted window
	// start so weekdays earlier in that week are not missed.
	wk := 0
	if diff := dateutil.WeeksBetween(ev.Start, shifted); diff > 0 {
		wk = (diff / r.Interval) * r.Interval
	}

	days := append([]time.Weekday(nil), r.Weekdays...)
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	for {
		weekStart := base.AddDate(0, 0, wk*7)
		if weekStart.After(effEnd) {
			return
		}
		for _, wd := range days {
			emit(candidateAt(ev, weekStart.AddDate(0, 0, int(wd))))
		}
		wk += r.Interval
	}
}

func expandMonthly(ev *Event, shifted, effEnd time.Time, emit func(time.Time)) {
	interval := ev.Repeat.Interval
	dom := ev.Start.Day()

	k := 0
	if diff := dateutil.MonthsBetween(ev.Start, shifted); diff > 0 {
		k = (diff / interval) * interval
	}

	for {
		first := time.Date(ev.Start.Year(), ev.Start.Month()+time.Month(k), 1, 0, 0, 0, 0, ev.Start.Location())
		if first.After(effEnd) {
			return
		}
		// Months without the event's day-of-month produce no occurrence
		// (e.g., a rule on the 31st skips February).
		day := time.Date(first.Year(), first.Month(), dom, 0, 0, 0, 0, first.Location())
		if day.Month() == first.Month() {
			emit(candidateAt(ev, day))
		}
		k += interval
	}
}

func expandYearly(ev *Event, shifted, effEnd time.Time, emit func(time.Time)) {
	interval := ev.Repeat.Interval

	k := 0
	if diff := shifted.Year() - ev.Start.Year(); diff > 0 {
		k = (diff / interval) * interval
	}

	for {
		first := time.Date(ev.Start.Year()+k, 1, 1, 0, 0, 0, 0, ev.Start.Location())
		if first.After(effEnd) {
			return
		}
		// Feb 29 rules skip non-leap years.
		day := time.Date(first.Year(), ev.Start.Month(), ev.Start.Day(), 0, 0, 0, 0, first.Location())
		if day.Month() == ev.Start.Month() {
			emit(candidateAt(ev, day))
		}
		k += interval
	}
}

// Occurrences expands a mixed set of events over the window: repeating
// events via Expand, plain events clipped to the window. The result is
// sorted by start time for stable downstream packing.
func Occurrences(events []*Event, w Window) ([]Occurrence, error) {
	if w.End.Before(w.Start) {
		return nil, ErrInvalidWindow
	}
	effEnd := w.EffectiveEnd()

	var out []Occurrence
	for _, ev := range events {
		if ev.Repeats() {
			occs, err := Expand(ev, w)
			if err != nil {
				return nil, err
			}
			out = append(out, occs...)
			continue
		}

		start, end := occurrenceBounds(ev, ev.Start)
		if end.Before(w.Start) || start.After(effEnd) {
			continue
		}
		out = append(out, Occurrence{
			EventID: ev.ID,
			Event:   ev,
			Start:   start,
			End:     end,
			HasPrev: start.Before(w.Start),
			HasNext: end.After(effEnd),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].EventID < out[j].EventID
	})
	return out, nil
}

// Package event defines the calendar domain types and the recurrence engine.
package event

import (
	"errors"
	"strings"
	"time"

	"github.com/huddle-app/huddle/internal/dateutil"
)

// Validation errors.
var (
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrInvalidInterval    = errors.New("repeat interval must be at least 1")
	ErrInvalidUnit        = errors.New("repeat unit must be day, week, month or year")
	ErrNoWeekdays         = errors.New("weekly repeat requires at least one weekday")
	ErrWeekdaysNotWeekly  = errors.New("weekdays are only valid for weekly repeats")
	ErrEndBeforeStart     = errors.New("repeat end date must be on or after the event start")
	ErrOverrideOutOfRange = errors.New("override date must fall between the event start and the repeat end")
)

// DefaultDuration is assumed for events without an explicit end.
const DefaultDuration = time.Hour

// Unit is the step size of a repeat rule.
type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
	UnitYear  Unit = "year"
)

// Valid returns true if the unit is a recognized value.
func (u Unit) Valid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	default:
		return false
	}
}

// RepeatRule describes how an event recurs.
type RepeatRule struct {
	Interval int            // every N units, N >= 1
	Unit     Unit           // day, week, month, year
	Weekdays []time.Weekday // weekly only: which days produce occurrences
	EndOn    *time.Time     // inclusive date bound, nil means unbounded
	// Overrides are calendar dates on which the rule produces no occurrence.
	Overrides []time.Time
}

// Event is a calendar event belonging to a channel. End is optional;
// a nil End means the event takes DefaultDuration.
type Event struct {
	ID        string
	Title     string
	Start     time.Time
	End       *time.Time
	AllDay    bool
	Color     string
	ChannelID string
	Repeat    *RepeatRule
	CreatedAt time.Time
}

// Validate checks the event's structural invariants. Repeat rules are
// validated here so the expander can treat an invalid rule as a caller bug.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if e.Repeat != nil {
		return e.Repeat.validate(e.Start)
	}
	return nil
}

func (r *RepeatRule) validate(eventStart time.Time) error {
	if r.Interval < 1 {
		return ErrInvalidInterval
	}
	if !r.Unit.Valid() {
		return ErrInvalidUnit
	}
	if r.Unit == UnitWeek && len(r.Weekdays) == 0 {
		return ErrNoWeekdays
	}
	if r.Unit != UnitWeek && len(r.Weekdays) > 0 {
		return ErrWeekdaysNotWeekly
	}
	if r.EndOn != nil && dateutil.TruncateToDay(*r.EndOn).Before(dateutil.TruncateToDay(eventStart)) {
		return ErrEndBeforeStart
	}
	for _, o := range r.Overrides {
		day := dateutil.TruncateToDay(o)
		if day.Before(dateutil.TruncateToDay(eventStart)) {
			return ErrOverrideOutOfRange
		}
		if r.EndOn != nil && day.After(dateutil.TruncateToDay(*r.EndOn)) {
			return ErrOverrideOutOfRange
		}
	}
	return nil
}

// EndTime returns the event's end, applying the default duration when the
// event has no explicit end.
func (e *Event) EndTime() time.Time {
	if e.End != nil {
		return *e.End
	}
	return e.Start.Add(DefaultDuration)
}

// Duration returns the event's length.
func (e *Event) Duration() time.Duration {
	return e.EndTime().Sub(e.Start)
}

// DurationDays returns the event's length in whole days, rounded up.
// Point-in-time events report zero.
func (e *Event) DurationDays() int {
	return dateutil.CeilDays(e.Duration())
}

// MultiDay reports whether the event's start and end fall on different
// calendar days.
func (e *Event) MultiDay() bool {
	return !dateutil.SameDay(e.Start, e.EndTime())
}

// Repeats reports whether the event carries a repeat rule.
func (e *Event) Repeats() bool {
	return e.Repeat != nil
}

// overridden reports whether the rule suppresses occurrences on the given
// calendar day.
func (r *RepeatRule) overridden(day time.Time) bool {
	for _, o := range r.Overrides {
		if dateutil.SameDay(o, day) {
			return true
		}
	}
	return false
}

// repeatsOn reports whether the weekly rule includes the given weekday.
func (r *RepeatRule) repeatsOn(wd time.Weekday) bool {
	for _, d := range r.Weekdays {
		if d == wd {
			return true
		}
	}
	return false
}

// Occurrence is one concrete realization of a possibly-repeating event
// within a queried window. Occurrences are derived and never persisted.
// HasPrev and HasNext mark truncation at the window boundary.
type Occurrence struct {
	EventID string
	Event   *Event
	Start   time.Time
	End     time.Time
	HasPrev bool
	HasNext bool
}

// Covers reports whether the occurrence spans any part of the given
// calendar day.
func (o Occurrence) Covers(day time.Time) bool {
	start := dateutil.TruncateToDay(day)
	end := dateutil.EndOfDay(day)
	return o.Start.Before(end) && o.End.After(start)
}

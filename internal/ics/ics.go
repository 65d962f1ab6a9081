// Package ics imports iCalendar feeds into calendar events.
//
// Simple recurrence rules (FREQ with INTERVAL, BYDAY on weekly rules,
// UNTIL, EXDATE) map onto native repeat rules so they keep expanding
// without bound. Anything the native rule model cannot express is
// expanded through the rrule library into one-off events up to a horizon.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/huddle-app/huddle/internal/dateutil"
	"github.com/huddle-app/huddle/internal/event"
)

// ErrEmptyCalendar is returned when the payload contains no events.
var ErrEmptyCalendar = errors.New("calendar contains no events")

// DefaultHorizon bounds how far complex recurrence rules are expanded.
const DefaultHorizon = 365 * 24 * time.Hour

// Options control how a feed is mapped onto events.
type Options struct {
	// Channel and Color are applied to every imported event.
	Channel string
	Color   string

	// ExpandUntil bounds expansion of rules that cannot be kept
	// rule-based. Zero means DefaultHorizon past each event's start.
	ExpandUntil time.Time
}

// Import parses an iCalendar payload into events.
func Import(r io.Reader, opts Options) ([]*event.Event, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	vevents := cal.Events()
	if len(vevents) == 0 {
		return nil, ErrEmptyCalendar
	}

	var evs []*event.Event
	for _, ve := range vevents {
		parsed, err := parseVEvent(ve)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", veUID(ve), err)
		}
		mapped, err := parsed.toEvents(opts)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", parsed.uid, err)
		}
		evs = append(evs, mapped...)
	}
	return evs, nil
}

// vevent is the normalized form of one VEVENT before mapping.
type vevent struct {
	uid      string
	summary  string
	start    time.Time
	end      time.Time
	hasEnd   bool
	allDay   bool
	rawRRule string
	exDates  []time.Time
}

func veUID(ve *ical.VEvent) string {
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		return p.Value
	}
	return "?"
}

func parseVEvent(ve *ical.VEvent) (vevent, error) {
	var out vevent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.uid = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.summary = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("reading DTSTART: %w", err)
	}
	out.start = start

	if end, err := ve.GetEndAt(); err == nil {
		out.end = end
		out.hasEnd = true
	}

	// All-day events carry VALUE=DATE or a bare date value.
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.allDay = true
		}
		if !strings.Contains(p.Value, "T") {
			out.allDay = true
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.rawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, err := parseICSTime(part, out.start.Location())
			if err != nil {
				return out, fmt.Errorf("parsing EXDATE %q: %w", part, err)
			}
			out.exDates = append(out.exDates, t)
		}
	}

	return out, nil
}

// parseICSTime parses a DATE or DATE-TIME value. Floating local times and
// bare dates are resolved in the event's own location.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}

// toEvents maps the VEVENT onto one rule-based event, or onto expanded
// one-off events when the rule does not fit the native model.
func (p vevent) toEvents(opts Options) ([]*event.Event, error) {
	base := &event.Event{
		ID:        p.uid,
		Title:     p.summary,
		Start:     p.start,
		AllDay:    p.allDay,
		Color:     opts.Color,
		ChannelID: opts.Channel,
	}
	if end, ok := p.endInstant(); ok {
		base.End = &end
	}

	if p.rawRRule == "" {
		return []*event.Event{base}, nil
	}

	if rule, ok := p.nativeRule(); ok {
		base.Repeat = rule
		return []*event.Event{base}, nil
	}
	return p.expandComplex(base, opts)
}

// endInstant converts DTEND to the stored end. iCalendar all-day ends are
// exclusive (the day after the last covered day) while stored all-day ends
// are instants inside the last covered day, so all-day ends shift back one
// day.
func (p vevent) endInstant() (time.Time, bool) {
	if !p.hasEnd || !p.end.After(p.start) {
		return time.Time{}, false
	}
	if p.allDay {
		end := p.end.AddDate(0, 0, -1)
		if end.Before(p.start) {
			return time.Time{}, false
		}
		if dateutil.SameDay(end, p.start) {
			return time.Time{}, false // single day, default end applies
		}
		return end, true
	}
	return p.end, true
}

// nativeRule tries to express the RRULE as a RepeatRule. It reports false
// for anything richer than FREQ + INTERVAL + weekly BYDAY + UNTIL.
func (p vevent) nativeRule() (*event.RepeatRule, bool) {
	opt, err := rrule.StrToROption(p.rawRRule)
	if err != nil {
		return nil, false
	}

	if opt.Count != 0 ||
		len(opt.Bysetpos) > 0 || len(opt.Bymonth) > 0 || len(opt.Bymonthday) > 0 ||
		len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 ||
		len(opt.Byhour) > 0 || len(opt.Byminute) > 0 || len(opt.Bysecond) > 0 ||
		len(opt.Byeaster) > 0 {
		return nil, false
	}

	var unit event.Unit
	switch opt.Freq {
	case rrule.DAILY:
		unit = event.UnitDay
	case rrule.WEEKLY:
		unit = event.UnitWeek
	case rrule.MONTHLY:
		unit = event.UnitMonth
	case rrule.YEARLY:
		unit = event.UnitYear
	default:
		return nil, false
	}

	if len(opt.Byweekday) > 0 && opt.Freq != rrule.WEEKLY {
		return nil, false
	}

	rule := &event.RepeatRule{
		Interval:  opt.Interval,
		Unit:      unit,
		Overrides: append([]time.Time(nil), p.exDates...),
	}
	if rule.Interval == 0 {
		rule.Interval = 1
	}

	if unit == event.UnitWeek {
		if len(opt.Byweekday) == 0 {
			rule.Weekdays = []time.Weekday{p.start.Weekday()}
		} else {
			for _, wd := range opt.Byweekday {
				if wd.N() != 0 {
					return nil, false // positional BYDAY like 2MO
				}
				// rrule counts weekdays from Monday, time from Sunday.
				rule.Weekdays = append(rule.Weekdays, time.Weekday((wd.Day()+1)%7))
			}
		}
	}

	if !opt.Until.IsZero() {
		until := opt.Until.In(p.start.Location())
		rule.EndOn = &until
	}

	return rule, true
}

// expandComplex materializes the rule into standalone events up to the
// horizon.
func (p vevent) expandComplex(base *event.Event, opts Options) ([]*event.Event, error) {
	r, err := rrule.StrToRRule(p.rawRRule)
	if err != nil {
		return nil, fmt.Errorf("parsing RRULE %q: %w", p.rawRRule, err)
	}
	r.DTStart(p.start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range p.exDates {
		set.ExDate(ex.In(p.start.Location()))
	}

	until := opts.ExpandUntil
	if until.IsZero() {
		until = p.start.Add(DefaultHorizon)
	}

	starts := set.Between(p.start, until, true)
	if len(starts) == 0 {
		return nil, nil
	}

	evs := make([]*event.Event, 0, len(starts))
	for i, start := range starts {
		ev := *base
		ev.ID = fmt.Sprintf("%s#%d", base.ID, i)
		ev.Start = start
		if base.End != nil {
			end := start.Add(base.End.Sub(base.Start))
			ev.End = &end
		}
		evs = append(evs, &ev)
	}
	return evs, nil
}

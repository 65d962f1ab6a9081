package event

import (
	"errors"
	"testing"
	"time"
)

func weekly(interval int, days ...time.Weekday) *RepeatRule {
	return &RepeatRule{Interval: interval, Unit: UnitWeek, Weekdays: days}
}

func daily(interval int) *RepeatRule {
	return &RepeatRule{Interval: interval, Unit: UnitDay}
}

func TestExpandPreconditions(t *testing.T) {
	start := at(2025, time.January, 6, 10, 0)
	w := DayWindow(date(2025, time.January, 1), date(2025, time.January, 31))

	t.Run("no repeat rule", func(t *testing.T) {
		ev := &Event{ID: "e1", Title: "x", Start: start}
		if _, err := Expand(ev, w); !errors.Is(err, ErrNotRepeating) {
			t.Errorf("Expand() error = %v, want ErrNotRepeating", err)
		}
	})

	t.Run("invalid interval", func(t *testing.T) {
		ev := &Event{ID: "e1", Title: "x", Start: start, Repeat: daily(0)}
		if _, err := Expand(ev, w); !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("Expand() error = %v, want ErrInvalidInterval", err)
		}
	})

	t.Run("inverted window", func(t *testing.T) {
		ev := &Event{ID: "e1", Title: "x", Start: start, Repeat: daily(1)}
		bad := DayWindow(date(2025, time.January, 10), date(2025, time.January, 1))
		if _, err := Expand(ev, bad); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("Expand() error = %v, want ErrInvalidWindow", err)
		}
	})
}

func TestExpandDaily(t *testing.T) {
	// Daily rule with interval 1: an N-day window yields exactly N occurrences.
	ev := &Event{ID: "e1", Title: "standup", Start: at(2025, time.January, 1, 9, 0), Repeat: daily(1)}

	w := DayWindow(date(2025, time.January, 10), date(2025, time.January, 19))
	occs, err := Expand(ev, w)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(occs) != 10 {
		t.Fatalf("expected 10 occurrences for a 10-day window, got %d", len(occs))
	}
	for i, occ := range occs {
		want := at(2025, time.January, 10+i, 9, 0)
		if !occ.Start.Equal(want) {
			t.Errorf("occurrence %d start = %v, want %v", i, occ.Start, want)
		}
		if !occ.End.Equal(want.Add(time.Hour)) {
			t.Errorf("occurrence %d end = %v, want %v", i, occ.End, want.Add(time.Hour))
		}
	}
}

func TestExpandDailyIntervalAlignment(t *testing.T) {
	// Every 3 days from Jan 1: Jan 1, 4, 7, 10, 13...
	// The first candidate inside the window must be aligned to the cycle,
	// not to the window start.
	ev := &Event{ID: "e1", Title: "gym", Start: at(2025, time.January, 1, 7, 0), Repeat: daily(3)}

	occs, err := Expand(ev, DayWindow(date(2025, time.January, 5), date(2025, time.January, 11)))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	var got []int
	for _, occ := range occs {
		got = append(got, occ.Start.Day())
	}
	want := []int{7, 10}
	if len(got) != len(want) {
		t.Fatalf("got days %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got days %v, want %v", got, want)
			break
		}
	}
}

func TestExpandWeekly(t *testing.T) {
	// Monday 10:00-11:00, repeating weekly on Monday and Wednesday.
	end := at(2025, time.January, 6, 11, 0)
	ev := &Event{
		ID:     "e1",
		Title:  "team sync",
		Start:  at(2025, time.January, 6, 10, 0),
		End:    &end,
		Repeat: weekly(1, time.Monday, time.Wednesday),
	}

	// Two-week window: Sun Jan 5 through Sat Jan 18.
	w := WeekWindow(date(2025, time.January, 5), date(2025, time.January, 18))

	occs, err := Expand(ev, w)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(occs) != 4 {
		t.Fatalf("expected 4 occurrences over 2 weeks, got %d", len(occs))
	}

	wantDays := []int{6, 8, 13, 15}
	for i, occ := range occs {
		if occ.Start.Day() != wantDays[i] {
			t.Errorf("occurrence %d on day %d, want %d", i, occ.Start.Day(), wantDays[i])
		}
		if occ.Start.Hour() != 10 || occ.End.Hour() != 11 {
			t.Errorf("occurrence %d should keep the 10:00-11:00 times, got %v-%v", i, occ.Start, occ.End)
		}
	}

	t.Run("override removes one occurrence", func(t *testing.T) {
		ev := *ev
		rule := *ev.Repeat
		rule.Overrides = []time.Time{date(2025, time.January, 13)} // second Monday
		ev.Repeat = &rule

		occs, err := Expand(&ev, w)
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		if len(occs) != 3 {
			t.Fatalf("expected 3 occurrences with one override, got %d", len(occs))
		}
		for _, occ := range occs {
			if occ.Start.Day() == 13 {
				t.Error("overridden occurrence should not be emitted")
			}
		}
	})
}

func TestExpandWeeklyInterval(t *testing.T) {
	// Every 2 weeks on Friday, starting Fri Jan 3 2025.
	ev := &Event{
		ID:     "e1",
		Title:  "retro",
		Start:  at(2025, time.January, 3, 15, 0),
		Repeat: weekly(2, time.Friday),
	}

	occs, err := Expand(ev, WeekWindow(date(2025, time.January, 5), date(2025, time.February, 8)))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	// Cycle weeks contain Jan 3, 17, 31; Feb 14 is past the window.
	wantStarts := []time.Time{
		at(2025, time.January, 17, 15, 0),
		at(2025, time.January, 31, 15, 0),
	}
	if len(occs) != len(wantStarts) {
		t.Fatalf("expected %d occurrences, got %d", len(wantStarts), len(occs))
	}
	for i, occ := range occs {
		if !occ.Start.Equal(wantStarts[i]) {
			t.Errorf("occurrence %d start = %v, want %v", i, occ.Start, wantStarts[i])
		}
	}
}

func TestExpandMonthly(t *testing.T) {
	t.Run("day of month preserved", func(t *testing.T) {
		ev := &Event{
			ID:     "e1",
			Title:  "rent",
			Start:  at(2025, time.January, 15, 12, 0),
			Repeat: &RepeatRule{Interval: 1, Unit: UnitMonth},
		}

		occs, err := Expand(ev, DayWindow(date(2025, time.January, 1), date(2025, time.April, 30)))
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}
		if len(occs) != 4 {
			t.Fatalf("expected 4 monthly occurrences, got %d", len(occs))
		}
		for i, occ := range occs {
			if occ.Start.Day() != 15 {
				t.Errorf("occurrence %d on day %d, want 15", i, occ.Start.Day())
			}
		}
	})

	t.Run("short months are skipped", func(t *testing.T) {
		ev := &Event{
			ID:     "e1",
			Title:  "month end",
			Start:  at(2025, time.January, 31, 9, 0),
			Repeat: &RepeatRule{Interval: 1, Unit: UnitMonth},
		}

		occs, err := Expand(ev, DayWindow(date(2025, time.January, 1), date(2025, time.April, 30)))
		if err != nil {
			t.Fatalf("Expand() error = %v", err)
		}

		var months []time.Month
		for _, occ := range occs {
			months = append(months, occ.Start.Month())
		}
		want := []time.Month{time.January, time.March}
		if len(months) != len(want) {
			t.Fatalf("got months %v, want %v (February has no 31st)", months, want)
		}
	})
}

func TestExpandYearly(t *testing.T) {
	ev := &Event{
		ID:     "e1",
		Title:  "leap day",
		Start:  at(2024, time.February, 29, 0, 0),
		AllDay: true,
		Repeat: &RepeatRule{Interval: 1, Unit: UnitYear},
	}

	occs, err := Expand(ev, DayWindow(date(2024, time.January, 1), date(2028, time.December, 31)))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	var years []int
	for _, occ := range occs {
		years = append(years, occ.Start.Year())
	}
	want := []int{2024, 2028}
	if len(years) != len(want) || years[0] != want[0] || years[1] != want[1] {
		t.Fatalf("got years %v, want %v (Feb 29 skips non-leap years)", years, want)
	}
}

func TestExpandEndOnInclusive(t *testing.T) {
	ev := &Event{
		ID:    "e1",
		Title: "sprint check",
		Start: at(2025, time.January, 6, 9, 0),
		Repeat: &RepeatRule{
			Interval: 1,
			Unit:     UnitDay,
			EndOn:    timePtr(date(2025, time.January, 10)),
		},
	}

	occs, err := Expand(ev, DayWindow(date(2025, time.January, 6), date(2025, time.January, 20)))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(occs) != 5 {
		t.Fatalf("expected 5 occurrences (Jan 6-10, end date inclusive), got %d", len(occs))
	}
	last := occs[len(occs)-1]
	if last.Start.Day() != 10 {
		t.Errorf("last occurrence on day %d, want 10", last.Start.Day())
	}
}

func TestExpandBeforeEventStart(t *testing.T) {
	// The window opens before the event exists; nothing before the true
	// start may be emitted.
	ev := &Event{ID: "e1", Title: "new habit", Start: at(2025, time.January, 15, 8, 0), Repeat: daily(1)}

	occs, err := Expand(ev, DayWindow(date(2025, time.January, 10), date(2025, time.January, 17)))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences (Jan 15-17), got %d", len(occs))
	}
	if occs[0].Start.Day() != 15 {
		t.Errorf("first occurrence on day %d, want 15", occs[0].Start.Day())
	}
}

func TestExpandMultiDayBackshift(t *testing.T) {
	// All-day event spanning Friday through Monday, repeating weekly on
	// Friday. Queried for the following week, the occurrence anchored on the
	// previous Friday must still be found because it overlaps the window.
	end := date(2025, time.January, 13) // Monday, inclusive span Fri 10 - Mon 13
	ev := &Event{
		ID:     "e1",
		Title:  "ski trip",
		Start:  date(2025, time.January, 10),
		End:    &end,
		AllDay: true,
		Repeat: weekly(1, time.Friday),
	}

	w := WeekWindow(date(2025, time.January, 12), date(2025, time.January, 18))
	occs, err := Expand(ev, w)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	var found bool
	for _, occ := range occs {
		if occ.Start.Equal(date(2025, time.January, 10)) {
			found = true
			if !occ.HasPrev {
				t.Error("occurrence starting before the window should have HasPrev")
			}
			if occ.HasNext {
				t.Error("occurrence ending inside the window should not have HasNext")
			}
			if occ.End.Day() != 13 {
				t.Errorf("occurrence should run through Monday the 13th, ends %v", occ.End)
			}
		}
	}
	if !found {
		t.Fatal("expected the overlapping occurrence from the previous Friday")
	}
}

func TestExpandTruncationFlags(t *testing.T) {
	// Timed multi-day event running past the window end.
	end := at(2025, time.January, 10, 9, 0)
	ev := &Event{
		ID:     "e1",
		Title:  "offsite",
		Start:  at(2025, time.January, 8, 10, 0),
		End:    &end,
		Repeat: weekly(1, time.Wednesday),
	}

	occs, err := Expand(ev, DayWindow(date(2025, time.January, 5), date(2025, time.January, 8)))
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occs))
	}
	occ := occs[0]
	if occ.HasPrev {
		t.Error("occurrence starting inside the window should not have HasPrev")
	}
	if !occ.HasNext {
		t.Error("occurrence running past the window should have HasNext")
	}
	// Multi-day timed spans are rounded to end-of-day.
	if occ.End.Day() != 10 || occ.End.Hour() != 23 {
		t.Errorf("multi-day end should be rounded to end of Jan 10, got %v", occ.End)
	}
}

func TestOccurrences(t *testing.T) {
	end := at(2025, time.January, 7, 15, 0)
	events := []*Event{
		{ID: "a", Title: "plain", Start: at(2025, time.January, 7, 14, 0), End: &end},
		{ID: "b", Title: "daily", Start: at(2025, time.January, 1, 9, 0), Repeat: daily(1)},
		{ID: "c", Title: "outside", Start: at(2025, time.March, 1, 9, 0)},
	}

	occs, err := Occurrences(events, DayWindow(date(2025, time.January, 6), date(2025, time.January, 8)))
	if err != nil {
		t.Fatalf("Occurrences() error = %v", err)
	}

	// 3 daily + 1 plain, sorted by start.
	if len(occs) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(occs))
	}
	for i := 1; i < len(occs); i++ {
		if occs[i].Start.Before(occs[i-1].Start) {
			t.Errorf("occurrences not sorted: %v before %v", occs[i].Start, occs[i-1].Start)
		}
	}
	for _, occ := range occs {
		if occ.EventID == "c" {
			t.Error("event outside the window should not appear")
		}
	}
}

package layout

import (
	"time"

	"github.com/huddle-app/huddle/internal/dateutil"
	"github.com/huddle-app/huddle/internal/event"
)

// RowSlot is the packed position of one all-day or multi-day occurrence
// within a single visible week row. StartDay and EndDay are inclusive day
// indices into the row; HasPrev/HasNext mark bars truncated at the row
// edges.
type RowSlot struct {
	Occ      event.Occurrence
	Row      int
	StartDay int
	EndDay   int
	HasPrev  bool
	HasNext  bool
}

// PackRows arranges occurrences as stacked horizontal bars across a row of
// day cells beginning at rowStart (midnight) and spanning the given number
// of days. The same greedy first-fit assignment as Pack is used, with
// columns playing the role of rows. Occurrences outside the row are
// dropped; those crossing its edges are clipped and flagged.
func PackRows(occs []event.Occurrence, rowStart time.Time, days int) []RowSlot {
	if days <= 0 {
		return nil
	}
	rowStart = dateutil.TruncateToDay(rowStart)
	rowEnd := dateutil.EndOfDay(rowStart.AddDate(0, 0, days-1))

	type bar struct {
		occ      event.Occurrence
		startDay int
		endDay   int
		hasPrev  bool
		hasNext  bool
	}

	var bars []bar
	for _, occ := range sortForPacking(occs) {
		if !occ.Start.Before(rowEnd) || !occ.End.After(rowStart) {
			continue
		}
		// The last instant actually covered; guards occurrences whose end
		// falls exactly on midnight.
		last := occ.End.Add(-time.Nanosecond)
		if last.Before(occ.Start) {
			last = occ.Start
		}

		start := dateutil.DaysBetween(rowStart, occ.Start)
		end := dateutil.DaysBetween(rowStart, last)
		b := bar{occ: occ, startDay: start, endDay: end, hasPrev: occ.HasPrev, hasNext: occ.HasNext}
		if b.startDay < 0 {
			b.startDay = 0
			b.hasPrev = true
		}
		if b.endDay > days-1 {
			b.endDay = days - 1
			b.hasNext = true
		}
		bars = append(bars, b)
	}

	// Greedy row assignment: first row whose most recent bar ends before
	// this one starts.
	var lastEnd []int
	var out []RowSlot
	for _, b := range bars {
		row := -1
		for r := range lastEnd {
			if lastEnd[r] < b.startDay {
				row = r
				break
			}
		}
		if row < 0 {
			row = len(lastEnd)
			lastEnd = append(lastEnd, b.endDay)
		} else {
			lastEnd[row] = b.endDay
		}
		out = append(out, RowSlot{
			Occ:      b.occ,
			Row:      row,
			StartDay: b.startDay,
			EndDay:   b.endDay,
			HasPrev:  b.hasPrev,
			HasNext:  b.hasNext,
		})
	}
	return out
}

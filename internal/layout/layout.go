// Package layout assigns non-overlapping visual slots to overlapping
// calendar occurrences: vertical lanes within a day track for timed events,
// stacked horizontal rows for all-day and multi-day bars.
package layout

import (
	"sort"

	"github.com/huddle-app/huddle/internal/event"
)

// Slot is the packed position of one occurrence inside a day track.
// Span and Offset are fractions of the track width, so the renderer can
// scale to any pixel or cell size.
type Slot struct {
	Occ     event.Occurrence
	Col     int
	Cols    int     // total columns in the slot's overlap group
	Span    float64 // width fraction in (0, 1]
	Offset  float64 // left offset fraction
	HasPrev bool
	HasNext bool
}

// Pack arranges occurrences into vertical lanes. Occurrences are split into
// connected overlap groups (a group closes once no interval remains open),
// each group is packed greedily into columns, and every slot may then expand
// rightward across columns that stay empty for its whole time range.
//
// Slots sharing a column never overlap in time. Identical input yields
// identical output; the column count is the plain greedy result, not a
// guaranteed minimum.
func Pack(occs []event.Occurrence) []Slot {
	if len(occs) == 0 {
		return nil
	}

	sorted := sortForPacking(occs)

	var out []Slot
	groupStart := 0
	groupMaxEnd := sorted[0].End
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Start.Before(groupMaxEnd) {
			if sorted[i].End.After(groupMaxEnd) {
				groupMaxEnd = sorted[i].End
			}
			continue
		}
		out = append(out, packGroup(sorted[groupStart:i])...)
		if i < len(sorted) {
			groupStart = i
			groupMaxEnd = sorted[i].End
		}
	}
	return out
}

// sortForPacking orders occurrences by start, then end, with longer titles
// first as a tie-break so wide labels land in the leftmost lanes.
func sortForPacking(occs []event.Occurrence) []event.Occurrence {
	sorted := append([]event.Occurrence(nil), occs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.End.Equal(b.End) {
			return a.End.Before(b.End)
		}
		return titleLen(a) > titleLen(b)
	})
	return sorted
}

func titleLen(o event.Occurrence) int {
	if o.Event == nil {
		return 0
	}
	return len(o.Event.Title)
}

func overlaps(a, b event.Occurrence) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// packGroup assigns columns within one connected overlap group.
func packGroup(group []event.Occurrence) []Slot {
	// columns[c] holds the indices of group members placed in column c,
	// in placement order; the last one is the most recent.
	var columns [][]int
	colOf := make([]int, len(group))

	for i, occ := range group {
		placed := false
		for c := range columns {
			last := group[columns[c][len(columns[c])-1]]
			if !overlaps(last, occ) {
				columns[c] = append(columns[c], i)
				colOf[i] = c
				placed = true
				break
			}
		}
		if !placed {
			columns = append(columns, []int{i})
			colOf[i] = len(columns) - 1
		}
	}

	total := len(columns)
	slots := make([]Slot, len(group))
	for i, occ := range group {
		span := expandWidth(group, columns, colOf[i], occ)
		slots[i] = Slot{
			Occ:     occ,
			Col:     colOf[i],
			Cols:    total,
			Span:    float64(span) / float64(total),
			Offset:  float64(colOf[i]) / float64(total),
			HasPrev: occ.HasPrev,
			HasNext: occ.HasNext,
		}
	}
	return slots
}

// expandWidth counts how many columns a slot can cover, starting at its own
// column and growing rightward until a column holds something it would
// collide with. Purely cosmetic; the no-overlap invariant is untouched.
func expandWidth(group []event.Occurrence, columns [][]int, col int, occ event.Occurrence) int {
	span := 1
	for c := col + 1; c < len(columns); c++ {
		for _, idx := range columns[c] {
			if overlaps(group[idx], occ) {
				return span
			}
		}
		span++
	}
	return span
}

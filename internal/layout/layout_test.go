package layout

import (
	"math"
	"testing"
	"time"

	"github.com/huddle-app/huddle/internal/event"
)

func at(d, hh, mm int) time.Time {
	return time.Date(2025, time.January, d, hh, mm, 0, 0, time.UTC)
}

func occ(id, title string, start, end time.Time) event.Occurrence {
	return event.Occurrence{
		EventID: id,
		Event:   &event.Event{ID: id, Title: title, Start: start},
		Start:   start,
		End:     end,
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// checkNoColumnOverlap asserts the packing invariant: no two slots sharing
// a column overlap in time.
func checkNoColumnOverlap(t *testing.T, slots []Slot) {
	t.Helper()
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			a, b := slots[i], slots[j]
			if a.Col != b.Col {
				continue
			}
			if a.Occ.Start.Before(b.Occ.End) && a.Occ.End.After(b.Occ.Start) {
				t.Errorf("slots %s and %s share column %d but overlap",
					a.Occ.EventID, b.Occ.EventID, a.Col)
			}
		}
	}
}

func TestPackTwoOverlapping(t *testing.T) {
	// A[10:00-11:00] and B[10:30-11:30] must land in two half-width columns.
	slots := Pack([]event.Occurrence{
		occ("a", "planning", at(7, 10, 0), at(7, 11, 0)),
		occ("b", "interview", at(7, 10, 30), at(7, 11, 30)),
	})

	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	checkNoColumnOverlap(t, slots)

	for _, s := range slots {
		if s.Cols != 2 {
			t.Errorf("slot %s: Cols = %d, want 2", s.Occ.EventID, s.Cols)
		}
		if !approx(s.Span, 0.5) {
			t.Errorf("slot %s: Span = %v, want 0.5", s.Occ.EventID, s.Span)
		}
	}
	if slots[0].Col == slots[1].Col {
		t.Error("overlapping slots must not share a column")
	}
}

func TestPackDisjointGroups(t *testing.T) {
	// Morning and afternoon never overlap: two independent groups, each
	// packed at full width.
	slots := Pack([]event.Occurrence{
		occ("a", "morning", at(7, 9, 0), at(7, 10, 0)),
		occ("b", "afternoon", at(7, 14, 0), at(7, 15, 0)),
	})

	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	for _, s := range slots {
		if s.Col != 0 || s.Cols != 1 || !approx(s.Span, 1) || !approx(s.Offset, 0) {
			t.Errorf("slot %s should occupy its whole track, got col=%d cols=%d span=%v offset=%v",
				s.Occ.EventID, s.Col, s.Cols, s.Span, s.Offset)
		}
	}
}

func TestPackColumnReuse(t *testing.T) {
	// B starts exactly when A ends, so it reuses A's column even though C
	// keeps the group open.
	slots := Pack([]event.Occurrence{
		occ("a", "first", at(7, 9, 0), at(7, 10, 0)),
		occ("c", "tall", at(7, 9, 0), at(7, 11, 0)),
		occ("b", "second", at(7, 10, 0), at(7, 11, 0)),
	})

	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	checkNoColumnOverlap(t, slots)

	byID := make(map[string]Slot)
	for _, s := range slots {
		byID[s.Occ.EventID] = s
	}
	if byID["a"].Col != byID["b"].Col {
		t.Errorf("b should reuse a's column: a=%d b=%d", byID["a"].Col, byID["b"].Col)
	}
	if byID["c"].Col == byID["a"].Col {
		t.Error("c overlaps a and must not share its column")
	}
}

func TestPackWidthExpansion(t *testing.T) {
	// Three columns open at 09:00; F starts later when only the third is
	// still busy, so its bar may widen across the first two.
	slots := Pack([]event.Occurrence{
		occ("e2", "short", at(7, 9, 0), at(7, 9, 30)),
		occ("e3", "shortish", at(7, 9, 0), at(7, 9, 45)),
		occ("e1", "all morning block", at(7, 9, 0), at(7, 12, 0)),
		occ("f", "late", at(7, 10, 0), at(7, 11, 0)),
	})

	checkNoColumnOverlap(t, slots)

	byID := make(map[string]Slot)
	for _, s := range slots {
		byID[s.Occ.EventID] = s
	}

	f := byID["f"]
	if f.Col != 0 {
		t.Fatalf("f should reuse the first column, got %d", f.Col)
	}
	if f.Cols != 3 {
		t.Fatalf("group should have 3 columns, got %d", f.Cols)
	}
	if !approx(f.Span, 2.0/3.0) {
		t.Errorf("f should expand over two of three columns, Span = %v", f.Span)
	}
	// Expansion never widens into an occupied column.
	e2 := byID["e2"]
	if !approx(e2.Span, 1.0/3.0) {
		t.Errorf("e2 is blocked by its right neighbor, Span = %v", e2.Span)
	}
}

func TestPackTitleTieBreak(t *testing.T) {
	// Identical times: the longer title sorts first and takes the leftmost
	// column.
	slots := Pack([]event.Occurrence{
		occ("short", "a", at(7, 9, 0), at(7, 10, 0)),
		occ("long", "quarterly planning review", at(7, 9, 0), at(7, 10, 0)),
	})

	byID := make(map[string]Slot)
	for _, s := range slots {
		byID[s.Occ.EventID] = s
	}
	if byID["long"].Col != 0 {
		t.Errorf("longest title should take column 0, got %d", byID["long"].Col)
	}
	if byID["short"].Col != 1 {
		t.Errorf("short title should take column 1, got %d", byID["short"].Col)
	}
}

func TestPackDeterministic(t *testing.T) {
	input := []event.Occurrence{
		occ("a", "aaa", at(7, 9, 0), at(7, 10, 30)),
		occ("b", "bb", at(7, 9, 0), at(7, 10, 0)),
		occ("c", "cccc", at(7, 10, 0), at(7, 11, 0)),
		occ("d", "d", at(7, 10, 15), at(7, 12, 0)),
	}

	first := Pack(input)
	for run := 0; run < 5; run++ {
		again := Pack(input)
		if len(again) != len(first) {
			t.Fatalf("run %d: slot count changed", run)
		}
		for i := range first {
			if first[i].Col != again[i].Col || first[i].Span != again[i].Span || first[i].Offset != again[i].Offset {
				t.Fatalf("run %d: slot %d differs between runs", run, i)
			}
		}
	}
}

func TestPackEmpty(t *testing.T) {
	if slots := Pack(nil); slots != nil {
		t.Errorf("packing nothing should yield nothing, got %d slots", len(slots))
	}
}

func TestPackCarriesTruncationFlags(t *testing.T) {
	o := occ("a", "clipped", at(7, 9, 0), at(7, 10, 0))
	o.HasPrev = true
	o.HasNext = true

	slots := Pack([]event.Occurrence{o})
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].HasPrev || !slots[0].HasNext {
		t.Error("truncation flags must be carried through packing")
	}
}

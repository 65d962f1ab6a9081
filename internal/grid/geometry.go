// Package grid maps continuous pointer coordinates onto discrete calendar
// cells and runs the drag sessions behind move, resize and create gestures.
// It is view-agnostic: day, week and month layouts configure one Geometry
// instead of carrying their own interaction state machines.
package grid

import "time"

// Axis selects how the grid's rows are interpreted.
type Axis int

const (
	// AxisTime: rows are intra-day time slots and columns are days
	// (day and week views).
	AxisTime Axis = iota
	// AxisDay: every cell is one day and rows are weeks (month view).
	AxisDay
)

// DefaultSubdivisions is the number of time slots per hour when a caller
// does not configure one (4 means 15-minute snapping).
const DefaultSubdivisions = 4

// Point is a pointer position in container pixels.
type Point struct {
	X float64
	Y float64
}

// Cell is a discrete grid position.
type Cell struct {
	Row int
	Col int
}

// Rect is a pixel rectangle inside the container.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Geometry describes the interactive surface: its discrete dimensions, the
// pixel size reported by the rendering layer, and the date anchoring cell
// (0,0). Cells are ordered chronologically: on AxisTime successive rows in
// a column are consecutive time slots and the next column continues on the
// next day; on AxisDay cells advance left to right, top to bottom.
type Geometry struct {
	Axis         Axis
	Rows         int
	Cols         int
	Subdivisions int
	Width        float64
	Height       float64
	FirstDay     time.Time
}

// NewTimeGrid builds the geometry for a day or week view: one column per
// day, rows covering the full 24 hours at the given subdivision.
func NewTimeGrid(firstDay time.Time, days, subdivisions int, width, height float64) Geometry {
	if subdivisions <= 0 {
		subdivisions = DefaultSubdivisions
	}
	return Geometry{
		Axis:         AxisTime,
		Rows:         24 * subdivisions,
		Cols:         days,
		Subdivisions: subdivisions,
		Width:        width,
		Height:       height,
		FirstDay:     firstDay,
	}
}

// NewMonthGrid builds the geometry for a month view: 7 day columns and one
// row per visible week.
func NewMonthGrid(firstDay time.Time, weeks int, width, height float64) Geometry {
	return Geometry{
		Axis:     AxisDay,
		Rows:     weeks,
		Cols:     7,
		Width:    width,
		Height:   height,
		FirstDay: firstDay,
	}
}

// CellWidth returns the pixel width of one column.
func (g Geometry) CellWidth() float64 {
	if g.Cols == 0 {
		return 0
	}
	return g.Width / float64(g.Cols)
}

// CellHeight returns the pixel height of one row.
func (g Geometry) CellHeight() float64 {
	if g.Rows == 0 {
		return 0
	}
	return g.Height / float64(g.Rows)
}

// CellDuration returns the time covered by one grid unit.
func (g Geometry) CellDuration() time.Duration {
	if g.Axis == AxisDay {
		return 24 * time.Hour
	}
	subs := g.Subdivisions
	if subs <= 0 {
		subs = DefaultSubdivisions
	}
	return time.Hour / time.Duration(subs)
}

// Total returns the number of cells in the grid.
func (g Geometry) Total() int {
	return g.Rows * g.Cols
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CellAt snaps a pointer position to a grid cell. Out-of-bounds positions
// are clamped to the nearest edge cell, never rejected.
func (g Geometry) CellAt(p Point) Cell {
	col := 0
	if cw := g.CellWidth(); cw > 0 {
		col = int(p.X / cw)
	}
	row := 0
	if ch := g.CellHeight(); ch > 0 {
		row = int(p.Y / ch)
	}
	return Cell{
		Row: clampInt(row, 0, g.Rows-1),
		Col: clampInt(col, 0, g.Cols-1),
	}
}

// Index returns the chronological ordinal of a cell.
func (g Geometry) Index(c Cell) int {
	if g.Axis == AxisDay {
		return c.Row*g.Cols + c.Col
	}
	return c.Col*g.Rows + c.Row
}

// CellOf returns the cell at the given chronological ordinal.
func (g Geometry) CellOf(idx int) Cell {
	idx = clampInt(idx, 0, g.Total()-1)
	if g.Axis == AxisDay {
		return Cell{Row: idx / g.Cols, Col: idx % g.Cols}
	}
	return Cell{Row: idx % g.Rows, Col: idx / g.Rows}
}

// TimeAt returns the instant at which the cell with the given chronological
// ordinal begins.
func (g Geometry) TimeAt(idx int) time.Time {
	idx = clampInt(idx, 0, g.Total()-1)
	if g.Axis == AxisDay {
		return g.FirstDay.AddDate(0, 0, idx)
	}
	day := idx / g.Rows
	slot := idx % g.Rows
	return g.FirstDay.AddDate(0, 0, day).Add(time.Duration(slot) * g.CellDuration())
}

// IndexOf returns the chronological ordinal of the cell containing the
// given instant, clamped to the grid.
func (g Geometry) IndexOf(t time.Time) int {
	days := daysFromFirst(g.FirstDay, t)
	if g.Axis == AxisDay {
		return clampInt(days, 0, g.Total()-1)
	}
	dayStart := g.FirstDay.AddDate(0, 0, days)
	slot := int(t.Sub(dayStart) / g.CellDuration())
	slot = clampInt(slot, 0, g.Rows-1)
	return clampInt(days*g.Rows+slot, 0, g.Total()-1)
}

func daysFromFirst(first, t time.Time) int {
	firstDay := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	d := int(day.Sub(firstDay).Hours()) / 24
	return d
}

// RectOf returns the pixel rectangle of a run of cells starting at the
// given cell and extending the given number of rows (AxisTime) or columns
// (AxisDay) without crossing its track.
func (g Geometry) RectOf(c Cell, span int) Rect {
	if span < 1 {
		span = 1
	}
	cw, ch := g.CellWidth(), g.CellHeight()
	if g.Axis == AxisDay {
		span = clampInt(span, 1, g.Cols-c.Col)
		return Rect{
			X: float64(c.Col) * cw,
			Y: float64(c.Row) * ch,
			W: float64(span) * cw,
			H: ch,
		}
	}
	span = clampInt(span, 1, g.Rows-c.Row)
	return Rect{
		X: float64(c.Col) * cw,
		Y: float64(c.Row) * ch,
		W: cw,
		H: float64(span) * ch,
	}
}

// SegmentsOf splits the chronological cell range [startIdx, endIdx]
// (inclusive) into per-track pixel rectangles: one per day column on
// AxisTime, one per week row on AxisDay. This is how a span wider than one
// track wraps into the next.
func (g Geometry) SegmentsOf(startIdx, endIdx int) []Rect {
	startIdx = clampInt(startIdx, 0, g.Total()-1)
	endIdx = clampInt(endIdx, 0, g.Total()-1)
	if endIdx < startIdx {
		startIdx, endIdx = endIdx, startIdx
	}

	track := g.Rows // cells per track on AxisTime
	if g.Axis == AxisDay {
		track = g.Cols
	}

	var out []Rect
	for idx := startIdx; idx <= endIdx; {
		trackEnd := (idx/track+1)*track - 1
		if trackEnd > endIdx {
			trackEnd = endIdx
		}
		out = append(out, g.RectOf(g.CellOf(idx), trackEnd-idx+1))
		idx = trackEnd + 1
	}
	return out
}

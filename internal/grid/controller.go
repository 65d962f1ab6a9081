package grid

import (
	"errors"
	"time"

	"github.com/huddle-app/huddle/internal/event"
)

// Controller errors.
var (
	ErrDragActive = errors.New("a drag session is already active")
	ErrNoDrag     = errors.New("no drag session is active")
)

// Mode identifies the gesture a drag session performs.
type Mode int

const (
	ModeMove Mode = iota
	ModeResize
	ModeCreate
)

// Edge identifies which edge a resize drag moves.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

// TimeRange is a draft start/end pair produced by a gesture.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Patch carries the new times for an edited occurrence.
type Patch struct {
	Start time.Time
	End   time.Time
}

// Callbacks are the host-supplied handlers the controller invokes on drop.
// The host owns the struct and may replace the functions at any time, even
// mid-drag; the controller reads them only when the drop happens, so a
// reconfigured host never leaves a stale handler wired to a live session.
type Callbacks struct {
	OnNewEvent    func(TimeRange)
	OnEditEvent   func(Patch, event.Occurrence)
	OnDeleteEvent func(*event.Event)
}

// Snapshot is the state reported after every pointer move: the snapped
// cell, the dragged range, its pixel segments (one per crossed track), and
// truncation flags for spans running past the visible grid.
type Snapshot struct {
	Cell     Cell
	Rect     Rect
	Segments []Rect
	Range    TimeRange
	HasPrev  bool
	HasNext  bool
}

// Result is what a completed drag session reports.
type Result struct {
	Mode    Mode
	Range   TimeRange
	HasPrev bool
	HasNext bool
}

// session is the transient state of one pointer-down-to-pointer-up gesture.
type session struct {
	mode Mode

	// move
	occ       event.Occurrence
	offset    int // pointer-to-event-corner offset in grid units
	spanUnits int // dragged range length in grid units

	// resize
	anchorIdx int // the fixed edge's cell ordinal

	// create
	startIdx int

	last Snapshot
}

// Controller converts pointer events into snapped draft time ranges. It is
// single-threaded and holds at most one session at a time; all computation
// happens synchronously inside the pointer handler that triggered it.
type Controller struct {
	geom Geometry
	cbs  *Callbacks
	sess *session
}

// NewController creates a controller over the given geometry. cbs is the
// host's current-callback reference; it may be nil for a callback-less
// host that only consumes returned Results.
func NewController(geom Geometry, cbs *Callbacks) *Controller {
	return &Controller{geom: geom, cbs: cbs}
}

// Dragging reports whether a session is active.
func (c *Controller) Dragging() bool {
	return c.sess != nil
}

// Geometry returns the current grid geometry.
func (c *Controller) Geometry() Geometry {
	return c.geom
}

// SetGeometry swaps the grid geometry, e.g. after a container resize. A
// live session keeps running; the next pointer move snaps against the new
// geometry.
func (c *Controller) SetGeometry(geom Geometry) {
	c.geom = geom
}

// StartDragMove begins moving an existing occurrence. The offset between
// the pointer and the occurrence's start cell is captured so the dragged
// range does not jump under the cursor.
func (c *Controller) StartDragMove(occ event.Occurrence, pointer Point) error {
	if c.sess != nil {
		return ErrDragActive
	}

	startIdx := c.geom.IndexOf(occ.Start)
	ptrIdx := c.geom.Index(c.geom.CellAt(pointer))

	span := c.spanOf(occ)
	c.sess = &session{
		mode:      ModeMove,
		occ:       occ,
		offset:    ptrIdx - startIdx,
		spanUnits: span,
	}
	c.Move(pointer)
	return nil
}

// StartDragResize begins resizing an existing occurrence by the given
// edge. The opposite edge stays anchored.
func (c *Controller) StartDragResize(occ event.Occurrence, edge Edge, pointer Point) error {
	if c.sess != nil {
		return ErrDragActive
	}

	startIdx := c.geom.IndexOf(occ.Start)
	endIdx := startIdx + c.spanOf(occ) - 1

	anchor := startIdx
	if edge == EdgeStart {
		anchor = endIdx
	}
	c.sess = &session{
		mode:      ModeResize,
		occ:       occ,
		anchorIdx: anchor,
	}
	c.Move(pointer)
	return nil
}

// StartDragCreate begins drafting a new range from the pressed cell.
func (c *Controller) StartDragCreate(pointer Point) error {
	if c.sess != nil {
		return ErrDragActive
	}

	c.sess = &session{
		mode:     ModeCreate,
		startIdx: c.geom.Index(c.geom.CellAt(pointer)),
	}
	c.Move(pointer)
	return nil
}

// Move feeds a pointer position into the active session and returns the
// snapped state. Out-of-bounds positions are clamped. With no active
// session Move reports the hovered cell only.
func (c *Controller) Move(pointer Point) Snapshot {
	cell := c.geom.CellAt(pointer)
	if c.sess == nil {
		return Snapshot{Cell: cell, Rect: c.geom.RectOf(cell, 1)}
	}

	var lo, hi int
	switch c.sess.mode {
	case ModeMove:
		lo, hi = c.moveRange(cell)
	case ModeResize:
		lo, hi = c.resizeRange(cell)
	case ModeCreate:
		lo, hi = c.createRange(cell)
	}

	snap := c.snapshot(cell, lo, hi)
	c.sess.last = snap
	return snap
}

// moveRange keeps the captured pointer offset and the occurrence's span,
// clamping so the span stays inside the grid. Day offsets fall out of the
// chronological ordinal: crossing a column on a time grid (or wrapping a
// week row on a month grid) shifts the range by whole days.
func (c *Controller) moveRange(cell Cell) (int, int) {
	s := c.sess
	lo := c.geom.Index(cell) - s.offset
	lo = clampInt(lo, 0, c.geom.Total()-1)
	return lo, lo + s.spanUnits - 1
}

// resizeRange free-floats the dragged edge; if it crosses the anchor the
// bounds swap so start never exceeds end.
func (c *Controller) resizeRange(cell Cell) (int, int) {
	s := c.sess
	dragged := c.geom.Index(cell)
	if dragged < s.anchorIdx {
		return dragged, s.anchorIdx
	}
	return s.anchorIdx, dragged
}

// createRange spans from the pressed cell to the hovered cell, inclusive.
func (c *Controller) createRange(cell Cell) (int, int) {
	s := c.sess
	cur := c.geom.Index(cell)
	if cur < s.startIdx {
		return cur, s.startIdx
	}
	return s.startIdx, cur
}

func (c *Controller) snapshot(cell Cell, lo, hi int) Snapshot {
	total := c.geom.Total()
	hasPrev := lo < 0
	hasNext := hi > total-1
	lo = clampInt(lo, 0, total-1)
	hi = clampInt(hi, lo, total-1)

	segs := c.geom.SegmentsOf(lo, hi)
	return Snapshot{
		Cell:     cell,
		Rect:     segs[0],
		Segments: segs,
		Range: TimeRange{
			Start: c.geom.TimeAt(lo),
			End:   c.geom.TimeAt(hi).Add(c.geom.CellDuration()),
		},
		HasPrev: hasPrev,
		HasNext: hasNext,
	}
}

// Release completes the active session with the last clamped position and
// invokes the matching host callback. Every pointer-up commits: there is no
// cancel gesture, and a session that has started always has a valid last
// position.
func (c *Controller) Release() (Result, error) {
	if c.sess == nil {
		return Result{}, ErrNoDrag
	}

	s := c.sess
	c.sess = nil

	res := Result{
		Mode:    s.mode,
		Range:   s.last.Range,
		HasPrev: s.last.HasPrev,
		HasNext: s.last.HasNext,
	}

	if c.cbs != nil {
		switch s.mode {
		case ModeCreate:
			if c.cbs.OnNewEvent != nil {
				c.cbs.OnNewEvent(res.Range)
			}
		case ModeMove, ModeResize:
			if c.cbs.OnEditEvent != nil {
				c.cbs.OnEditEvent(Patch{Start: res.Range.Start, End: res.Range.End}, s.occ)
			}
		}
	}
	return res, nil
}

// spanOf returns the occurrence's length in grid units, at least one.
func (c *Controller) spanOf(occ event.Occurrence) int {
	d := occ.End.Sub(occ.Start)
	unit := c.geom.CellDuration()
	span := int((d + unit - 1) / unit)
	if span < 1 {
		span = 1
	}
	return span
}

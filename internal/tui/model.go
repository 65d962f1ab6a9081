package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/huddle-app/huddle/internal/config"
	"github.com/huddle-app/huddle/internal/dateutil"
	"github.com/huddle-app/huddle/internal/event"
	"github.com/huddle-app/huddle/internal/grid"
	"github.com/huddle-app/huddle/internal/layout"
)

type viewMode int

const (
	viewWeek viewMode = iota
	viewMonth
)

const gutterWidth = 6

// dropAction collects what the grid controller asked for on release. The
// update loop inspects it after Release and turns it into commands.
type dropAction struct {
	create *grid.TimeRange
	edit   *editDrop
}

type editDrop struct {
	patch grid.Patch
	occ   event.Occurrence
}

// Model is the bubbletea model for the calendar screen.
type Model struct {
	repo   event.Repository
	config *config.Config
	styles Styles
	debug  *DebugLogger

	view   viewMode
	anchor time.Time

	width  int
	height int
	scroll int

	geom grid.Geometry
	ctrl *grid.Controller
	drop *dropAction

	window  event.Window
	occs    []event.Occurrence
	version uint64

	slots      []layout.Slot    // timed occurrences, week view
	alldayBars []layout.RowSlot // all-day strip, week view
	monthBars  [][]layout.RowSlot
	monthWeeks int
	cache      *layout.Cache

	dragging bool
	dragMode grid.Mode
	snap     grid.Snapshot

	creating   bool
	draft      grid.TimeRange
	titleInput textinput.Model

	loading   bool
	status    string
	statusErr bool
}

// ModelOption configures a Model at construction time.
type ModelOption func(*Model)

// WithDebug attaches a debug logger. A nil logger disables logging.
func WithDebug(logger *DebugLogger) ModelOption {
	return func(m *Model) {
		m.debug = logger
	}
}

// New creates the calendar model anchored on today.
func New(repo event.Repository, cfg *config.Config, opts ...ModelOption) Model {
	ti := textinput.New()
	ti.Placeholder = "event title"
	ti.CharLimit = 120

	drop := &dropAction{}
	cbs := &grid.Callbacks{
		OnNewEvent: func(r grid.TimeRange) {
			drop.create = &r
		},
		OnEditEvent: func(p grid.Patch, occ event.Occurrence) {
			drop.edit = &editDrop{patch: p, occ: occ}
		},
	}

	m := Model{
		repo:       repo,
		config:     cfg,
		styles:     NewStyles(cfg.UI.Theme),
		view:       viewWeek,
		anchor:     dateutil.TruncateToDay(time.Now()),
		drop:       drop,
		ctrl:       grid.NewController(grid.NewTimeGrid(time.Now(), 7, cfg.Subdivisions(), 1, 1), cbs),
		cache:      layout.NewCache(cfg.Storage.LayoutCacheSize),
		titleInput: ti,
		loading:    true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.window = m.visibleWindow()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(loadEvents(m.repo, m.window), textinput.Blink)
}

// weekStartFor returns the first visible day of the week containing day.
func weekStartFor(day time.Time, mondayFirst bool) time.Time {
	start := dateutil.StartOfWeek(day)
	if mondayFirst {
		if day.Weekday() == time.Sunday {
			start = start.AddDate(0, 0, -6)
		} else {
			start = start.AddDate(0, 0, 1)
		}
	}
	return start
}

// visibleWindow computes the day range the current view shows.
func (m *Model) visibleWindow() event.Window {
	monday := m.config.WeekStartsOnMonday()
	switch m.view {
	case viewMonth:
		first := time.Date(m.anchor.Year(), m.anchor.Month(), 1, 0, 0, 0, 0, m.anchor.Location())
		last := first.AddDate(0, 1, -1)
		start := weekStartFor(first, monday)
		weeks := dateutil.DaysBetween(start, weekStartFor(last, monday))/7 + 1
		m.monthWeeks = weeks
		return event.DayWindow(start, start.AddDate(0, 0, weeks*7-1))
	default:
		start := weekStartFor(m.anchor, monday)
		return event.DayWindow(start, start.AddDate(0, 0, 6))
	}
}

// gridLines reports how many terminal rows the grid body may use.
func (m *Model) gridLines() int {
	reserved := 4 // title, day header, all-day strip, footer
	if m.view == viewMonth {
		reserved = 3
	}
	lines := m.height - reserved
	if lines < 1 {
		lines = 1
	}
	return lines
}

func (m *Model) colWidth() int {
	w := (m.width - gutterWidth) / 7
	if w < 3 {
		w = 3
	}
	return w
}

// layoutGrid rebuilds the geometry for the current size, view and window.
func (m *Model) layoutGrid() {
	if m.width == 0 || m.height == 0 {
		return
	}
	cw := m.colWidth()
	lines := m.gridLines()

	switch m.view {
	case viewMonth:
		cellLines := lines / m.monthWeeks
		if cellLines < 2 {
			cellLines = 2
		}
		m.geom = grid.Geometry{
			Axis:         grid.AxisDay,
			Rows:         m.monthWeeks,
			Cols:         7,
			Subdivisions: 1,
			Width:        float64(cw * 7),
			Height:       float64(cellLines * m.monthWeeks),
			FirstDay:     m.window.Start,
		}
	default:
		hours := m.config.UI.HourEnd - m.config.UI.HourStart
		lph := lines / hours
		if lph < 1 {
			lph = 1
		}
		if max := m.config.Subdivisions(); lph > max {
			lph = max
		}
		first := m.window.Start.Add(time.Duration(m.config.UI.HourStart) * time.Hour)
		m.geom = grid.Geometry{
			Axis:         grid.AxisTime,
			Rows:         hours * lph,
			Cols:         7,
			Subdivisions: lph,
			Width:        float64(cw * 7),
			Height:       float64(hours * lph),
			FirstDay:     first,
		}
	}
	m.ctrl.SetGeometry(m.geom)
	m.clampScroll()
}

func (m *Model) clampScroll() {
	max := m.geom.Rows - m.gridLines()
	if m.view == viewMonth {
		max = 0
	}
	if max < 0 {
		max = 0
	}
	if m.scroll > max {
		m.scroll = max
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// packOccurrences rebuilds the layout slots for the loaded occurrences.
func (m *Model) packOccurrences() {
	switch m.view {
	case viewMonth:
		m.monthBars = make([][]layout.RowSlot, m.monthWeeks)
		for w := 0; w < m.monthWeeks; w++ {
			weekStart := m.window.Start.AddDate(0, 0, w*7)
			m.monthBars[w] = layout.PackRows(m.occs, weekStart, 7)
		}
		m.slots = nil
		m.alldayBars = nil
	default:
		var timed, allday []event.Occurrence
		for _, occ := range m.occs {
			if occ.Event.AllDay || occ.Event.MultiDay() {
				allday = append(allday, occ)
			} else {
				timed = append(timed, occ)
			}
		}
		if cached, ok := m.cache.Get(m.window, m.version); ok {
			m.slots = cached
		} else {
			m.slots = layout.Pack(timed)
			m.cache.Put(m.window, m.version, m.slots)
		}
		m.alldayBars = layout.PackRows(allday, m.window.Start, 7)
		m.monthBars = nil
	}
}

// navigate moves the anchor by steps of the current view's unit.
func (m *Model) navigate(step int) {
	if m.view == viewMonth {
		m.anchor = m.anchor.AddDate(0, step, 0)
	} else {
		m.anchor = m.anchor.AddDate(0, 0, step*7)
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m Model) title() string {
	switch m.view {
	case viewMonth:
		return m.anchor.Format("January 2006")
	default:
		return fmt.Sprintf("%s  ·  week of %s", m.anchor.Format("January 2006"), m.window.Start.Format("Jan 2"))
	}
}

// Run starts the TUI and blocks until it exits. The repository stays owned
// by the caller.
func Run(repo event.Repository, cfg *config.Config, debug bool) error {
	var logger *DebugLogger
	if debug {
		var err error
		logger, err = NewDebugLogger()
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer logger.Close()
	}

	m := New(repo, cfg, WithDebug(logger))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running calendar: %w", err)
	}
	return nil
}

package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/huddle-app/huddle/internal/dateutil"
	"github.com/huddle-app/huddle/internal/event"
	"github.com/huddle-app/huddle/internal/grid"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layoutGrid()
		return m, nil

	case tea.KeyMsg:
		m.debug.LogKeyPress(msg)
		if m.creating {
			return m.updateCreate(msg)
		}
		return m.updateKeys(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case eventsLoadedMsg:
		m.debug.LogLoad(msg)
		m.window = msg.window
		m.occs = msg.occs
		m.version = msg.version
		m.loading = false
		m.layoutGrid()
		m.packOccurrences()
		return m, nil

	case savedMsg:
		m.setStatus(msg.info, false)
		m.loading = true
		return m, tea.Batch(loadEvents(m.repo, m.window), clearStatusAfter(statusTimeout))

	case errMsg:
		m.debug.LogError("command", msg.err)
		m.setStatus(msg.err.Error(), true)
		return m, clearStatusAfter(statusTimeout)

	case clearStatusMsg:
		m.setStatus("", false)
		return m, nil
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "v":
		if m.view == viewWeek {
			m.view = viewMonth
		} else {
			m.view = viewWeek
		}
		return m.reload()
	case "left", "h":
		m.navigate(-1)
		return m.reload()
	case "right", "l":
		m.navigate(1)
		return m.reload()
	case "t":
		m.anchor = dateutil.TruncateToDay(time.Now())
		return m.reload()
	case "up", "k":
		m.scroll--
		m.clampScroll()
		return m, nil
	case "down", "j":
		m.scroll++
		m.clampScroll()
		return m, nil
	case "r":
		return m.reload()
	}
	return m, nil
}

// reload recomputes the window for the current view and fetches it.
func (m Model) reload() (tea.Model, tea.Cmd) {
	m.window = m.visibleWindow()
	m.loading = true
	m.layoutGrid()
	return m, loadEvents(m.repo, m.window)
}

func (m Model) updateCreate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		title := strings.TrimSpace(m.titleInput.Value())
		m.creating = false
		m.titleInput.Blur()
		m.titleInput.SetValue("")
		if title == "" {
			return m, nil
		}
		return m, createEvent(m.repo, m.draftEvent(title))
	case tea.KeyEsc:
		m.creating = false
		m.titleInput.Blur()
		m.titleInput.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

// draftEvent turns the dropped draft range into a new event. Week drags
// make timed events; month drags make all-day ones spanning whole days.
func (m *Model) draftEvent(title string) *event.Event {
	ev := &event.Event{
		Title:     title,
		Color:     m.config.Calendar.DefaultColor,
		ChannelID: m.config.Calendar.Channel,
	}
	if m.view == viewMonth {
		ev.AllDay = true
		start := dateutil.TruncateToDay(m.draft.Start)
		last := dateutil.TruncateToDay(m.draft.End.Add(-time.Nanosecond))
		ev.Start = start
		if last.After(start) {
			end := last
			ev.End = &end
		}
	} else {
		ev.Start = m.draft.Start
		end := m.draft.End
		ev.End = &end
	}
	return ev
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	pt, inGrid := m.gridPoint(msg.X, msg.Y)
	m.debug.LogMouse(msg, inGrid)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			if !inGrid || m.ctrl.Dragging() {
				return m, nil
			}
			if occ, mode, ok := m.hitTest(msg.X, msg.Y, pt); ok {
				var err error
				if mode == grid.ModeResize {
					err = m.ctrl.StartDragResize(occ, grid.EdgeEnd, pt)
				} else {
					err = m.ctrl.StartDragMove(occ, pt)
				}
				if err != nil {
					return m, nil
				}
				m.dragMode = mode
			} else {
				if err := m.ctrl.StartDragCreate(pt); err != nil {
					return m, nil
				}
				m.dragMode = grid.ModeCreate
			}
			m.dragging = true
			m.snap = m.ctrl.Move(pt)
			m.debug.LogDrag("start", m.snap)
			return m, nil

		case tea.MouseButtonRight:
			if occ, _, ok := m.hitTest(msg.X, msg.Y, pt); ok && !m.ctrl.Dragging() {
				return m, deleteEvent(m.repo, occ.Event)
			}
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.dragging {
			m.snap = m.ctrl.Move(pt)
		}
		return m, nil

	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		m.dragging = false
		if _, err := m.ctrl.Release(); err != nil {
			m.debug.LogError("release", err)
			return m, nil
		}
		m.debug.LogDrag("release", m.snap)
		return m, m.consumeDrop()
	}
	return m, nil
}

// consumeDrop turns whatever the drop callbacks recorded into commands.
func (m *Model) consumeDrop() tea.Cmd {
	var cmds []tea.Cmd
	if r := m.drop.create; r != nil {
		m.drop.create = nil
		m.draft = *r
		m.creating = true
		m.titleInput.Focus()
		cmds = append(cmds, textinput.Blink)
	}
	if ed := m.drop.edit; ed != nil {
		m.drop.edit = nil
		start, end := editedTimes(ed.patch, ed.occ, m.view == viewMonth)
		cmds = append(cmds, updateEventTimes(m.repo, ed.occ.EventID, start, end))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// editedTimes maps a dropped draft range onto the stored event's times.
// Repeating events shift the whole series by the occurrence's displacement,
// so dragging any cycle moves the series. Day-granular drags (month view)
// work in whole days, which keeps a timed event's clock times intact.
func editedTimes(p grid.Patch, occ event.Occurrence, dayGranular bool) (time.Time, *time.Time) {
	ev := occ.Event

	if dayGranular {
		startDay := dateutil.TruncateToDay(p.Start)
		delta := dateutil.DaysBetween(dateutil.TruncateToDay(occ.Start), startDay)
		newStart := ev.Start.AddDate(0, 0, delta)
		if ev.AllDay {
			spanDays := dateutil.DaysBetween(startDay, dateutil.TruncateToDay(p.End.Add(-time.Nanosecond)))
			if spanDays <= 0 {
				return newStart, nil
			}
			end := dateutil.TruncateToDay(newStart).AddDate(0, 0, spanDays)
			return newStart, &end
		}
		var end *time.Time
		if ev.End != nil {
			e := ev.End.AddDate(0, 0, delta)
			end = &e
		}
		return newStart, end
	}

	if ev.Repeats() {
		delta := p.Start.Sub(occ.Start)
		newStart := ev.Start.Add(delta)
		end := newStart.Add(p.End.Sub(p.Start))
		return newStart, &end
	}

	end := p.End
	return p.Start, &end
}

func (m *Model) gridTop() int {
	if m.view == viewMonth {
		return 2
	}
	return 3
}

// visibleRows reports how many grid lines are actually on screen.
func (m *Model) visibleRows() int {
	rows := int(m.geom.Height + 0.5)
	if m.view != viewMonth {
		rows = m.geom.Rows - m.scroll
	}
	if max := m.gridLines(); rows > max {
		rows = max
	}
	if rows < 0 {
		rows = 0
	}
	return rows
}

func (m *Model) cellLines() int {
	if m.geom.Rows == 0 {
		return 1
	}
	return int(m.geom.Height+0.5) / m.geom.Rows
}

// gridPoint maps terminal coordinates to grid pixel space. One terminal
// cell is one pixel; +0.5 aims at the cell's center.
func (m *Model) gridPoint(x, y int) (grid.Point, bool) {
	top := m.gridTop()
	scroll := 0
	if m.view != viewMonth {
		scroll = m.scroll
	}
	px := float64(x-gutterWidth) + 0.5
	py := float64(y-top+scroll) + 0.5
	in := x >= gutterWidth && x < gutterWidth+m.colWidth()*7 &&
		y >= top && y < top+m.visibleRows()
	return grid.Point{X: px, Y: py}, in
}

// hitTest finds the occurrence under the pointer, if any, and whether the
// pointer sits on its resize handle (the last line of a timed slot).
func (m *Model) hitTest(x, y int, pt grid.Point) (event.Occurrence, grid.Mode, bool) {
	cell := m.geom.CellAt(pt)

	if m.view == viewMonth {
		line := (y - m.gridTop()) % m.cellLines()
		if line == 0 || cell.Row >= len(m.monthBars) {
			return event.Occurrence{}, grid.ModeMove, false
		}
		row := line - 1
		for _, bar := range m.monthBars[cell.Row] {
			if bar.Row == row && bar.StartDay <= cell.Col && cell.Col <= bar.EndDay {
				return bar.Occ, grid.ModeMove, true
			}
		}
		return event.Occurrence{}, grid.ModeMove, false
	}

	idx := m.geom.Index(cell)
	t := m.geom.TimeAt(idx)
	cw := m.geom.CellWidth()
	fx := (pt.X - float64(cell.Col)*cw) / cw
	for _, sl := range m.slots {
		if t.Before(sl.Occ.Start) || !t.Before(sl.Occ.End) {
			continue
		}
		if fx < sl.Offset || fx >= sl.Offset+sl.Span {
			continue
		}
		if idx == m.geom.IndexOf(sl.Occ.End.Add(-time.Nanosecond)) {
			return sl.Occ, grid.ModeResize, true
		}
		return sl.Occ, grid.ModeMove, true
	}
	return event.Occurrence{}, grid.ModeMove, false
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/huddle-app/huddle/internal/dateutil"
	"github.com/huddle-app/huddle/internal/layout"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title()))
	b.WriteByte('\n')
	if m.view == viewMonth {
		b.WriteString(m.renderMonthHeader())
		b.WriteByte('\n')
		b.WriteString(m.renderMonthBody())
	} else {
		b.WriteString(m.renderWeekHeader())
		b.WriteByte('\n')
		b.WriteString(m.renderAllDayStrip())
		b.WriteByte('\n')
		b.WriteString(m.renderWeekBody())
	}
	b.WriteByte('\n')
	b.WriteString(m.renderFooter())
	return b.String()
}

// canvas is a fixed-size rune buffer with one style per cell. Rendering
// groups runs of equal style so lipgloss sequences stay compact.
type canvas struct {
	w, h   int
	runes  [][]rune
	styles [][]*lipgloss.Style
}

func newCanvas(w, h int) *canvas {
	c := &canvas{
		w:      w,
		h:      h,
		runes:  make([][]rune, h),
		styles: make([][]*lipgloss.Style, h),
	}
	for y := range c.runes {
		row := make([]rune, w)
		for x := range row {
			row[x] = ' '
		}
		c.runes[y] = row
		c.styles[y] = make([]*lipgloss.Style, w)
	}
	return c
}

func (c *canvas) write(x, y int, s string, st *lipgloss.Style) {
	if y < 0 || y >= c.h {
		return
	}
	for _, r := range s {
		if x >= c.w {
			break
		}
		if x >= 0 {
			c.runes[y][x] = r
			c.styles[y][x] = st
		}
		x++
	}
}

func (c *canvas) fill(x, y, w int, r rune, st *lipgloss.Style) {
	if y < 0 || y >= c.h {
		return
	}
	for i := 0; i < w; i++ {
		px := x + i
		if px < 0 || px >= c.w {
			continue
		}
		c.runes[y][px] = r
		c.styles[y][px] = st
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		x := 0
		for x < c.w {
			st := c.styles[y][x]
			run := x
			for run < c.w && c.styles[y][run] == st {
				run++
			}
			seg := string(c.runes[y][x:run])
			if st != nil {
				b.WriteString(st.Render(seg))
			} else {
				b.WriteString(seg)
			}
			x = run
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderWeekHeader() string {
	cw := m.colWidth()
	now := time.Now()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutterWidth))
	for d := 0; d < 7; d++ {
		day := m.window.Start.AddDate(0, 0, d)
		st := m.styles.DayHeader
		if dateutil.SameDay(day, now) {
			st = m.styles.Today
		}
		b.WriteString(st.Render(centerPad(day.Format("Mon 2"), cw)))
	}
	return b.String()
}

// renderAllDayStrip draws the first row of all-day and multi-day bars
// above the timed grid.
func (m Model) renderAllDayStrip() string {
	cw := m.colWidth()
	c := newCanvas(cw*7, 1)
	for _, bar := range m.alldayBars {
		if bar.Row != 0 {
			continue
		}
		x := bar.StartDay * cw
		w := (bar.EndDay-bar.StartDay+1)*cw - 1
		st := m.styles.Event(bar.Occ.Event.Color)
		c.fill(x, 0, w, ' ', &st)
		c.write(x, 0, barLabel(bar, w), &st)
	}
	return m.styles.Gutter.Render(padRight(" all", gutterWidth)) + c.String()
}

func (m Model) renderWeekBody() string {
	cw := m.colWidth()
	vis := m.visibleRows()
	c := newCanvas(cw*7, vis)

	for _, sl := range m.slots {
		day := dateutil.DaysBetween(m.window.Start, dateutil.TruncateToDay(sl.Occ.Start))
		if day < 0 || day > 6 {
			continue
		}
		startRow := m.geom.CellOf(m.geom.IndexOf(sl.Occ.Start)).Row
		endRow := m.geom.CellOf(m.geom.IndexOf(sl.Occ.End.Add(-time.Nanosecond))).Row
		x := day*cw + int(sl.Offset*float64(cw)+0.5)
		w := int(sl.Span*float64(cw) + 0.5)
		if w < 1 {
			w = 1
		}
		st := m.styles.Event(sl.Occ.Event.Color)
		for row := startRow; row <= endRow; row++ {
			y := row - m.scroll
			if y < 0 || y >= vis {
				continue
			}
			c.fill(x, y, w, ' ', &st)
			if row == startRow {
				c.write(x, y, clip(" "+sl.Occ.Event.Title, w), &st)
			}
		}
	}

	if m.dragging {
		m.overlayDrag(c, m.scroll, "15:04")
	}

	lph := m.geom.Subdivisions
	lines := strings.Split(c.String(), "\n")
	var b strings.Builder
	for i, line := range lines {
		row := i + m.scroll
		label := strings.Repeat(" ", gutterWidth)
		if lph > 0 && row%lph == 0 {
			label = padRight(fmt.Sprintf("%2d:00", m.config.UI.HourStart+row/lph), gutterWidth)
		}
		b.WriteString(m.styles.Gutter.Render(label))
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderMonthHeader() string {
	cw := m.colWidth()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutterWidth))
	for d := 0; d < 7; d++ {
		day := m.window.Start.AddDate(0, 0, d)
		b.WriteString(m.styles.DayHeader.Render(centerPad(day.Format("Mon"), cw)))
	}
	return b.String()
}

func (m Model) renderMonthBody() string {
	cw := m.colWidth()
	cl := m.cellLines()
	c := newCanvas(cw*7, cl*m.monthWeeks)
	now := time.Now()

	for w := 0; w < m.monthWeeks; w++ {
		for d := 0; d < 7; d++ {
			day := m.window.Start.AddDate(0, 0, w*7+d)
			st := &m.styles.DayHeader
			if day.Month() != m.anchor.Month() {
				st = &m.styles.Muted
			}
			if dateutil.SameDay(day, now) {
				st = &m.styles.Today
			}
			c.write(d*cw, w*cl, fmt.Sprintf("%2d", day.Day()), st)
		}
		if w >= len(m.monthBars) {
			continue
		}
		for _, bar := range m.monthBars[w] {
			y := w*cl + 1 + bar.Row
			if y >= (w+1)*cl { // more bars than lines in the cell
				continue
			}
			x := bar.StartDay * cw
			width := (bar.EndDay-bar.StartDay+1)*cw - 1
			st := m.styles.Event(bar.Occ.Event.Color)
			c.fill(x, y, width, ' ', &st)
			c.write(x, y, barLabel(bar, width), &st)
		}
	}

	if m.dragging {
		m.overlayDrag(c, 0, "Jan 2")
	}

	lines := strings.Split(c.String(), "\n")
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(strings.Repeat(" ", gutterWidth))
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// overlayDrag paints the live drag range over the canvas, one shaded
// rectangle per crossed track, with the snapped range on the first line.
func (m Model) overlayDrag(c *canvas, scroll int, timeFormat string) {
	for _, seg := range m.snap.Segments {
		x := int(seg.X + 0.5)
		w := int(seg.W + 0.5)
		y0 := int(seg.Y+0.5) - scroll
		h := int(seg.H + 0.5)
		for y := y0; y < y0+h; y++ {
			c.fill(x, y, w, '░', &m.styles.Drag)
		}
	}
	if len(m.snap.Segments) == 0 {
		return
	}
	first := m.snap.Segments[0]
	end := m.snap.Range.End
	if m.view == viewMonth {
		end = end.Add(-time.Nanosecond)
	}
	label := fmt.Sprintf(" %s–%s", m.snap.Range.Start.Format(timeFormat), end.Format(timeFormat))
	if m.snap.HasPrev {
		label = "◀" + label
	}
	if m.snap.HasNext {
		label += "▶"
	}
	c.write(int(first.X+0.5), int(first.Y+0.5)-scroll, clip(label, int(first.W+0.5)), &m.styles.Drag)
}

func (m Model) renderFooter() string {
	if m.creating {
		var rng string
		if m.view == viewMonth {
			last := m.draft.End.Add(-time.Nanosecond)
			rng = fmt.Sprintf("%s – %s", m.draft.Start.Format("Jan 2"), last.Format("Jan 2"))
		} else {
			rng = fmt.Sprintf("%s %s–%s",
				m.draft.Start.Format("Mon Jan 2"),
				m.draft.Start.Format("15:04"),
				m.draft.End.Format("15:04"))
		}
		return m.styles.Prompt.Render("new event "+rng+" ") + m.titleInput.View()
	}

	line := m.styles.Footer.Render("←/→ move  tab view  t today  drag create/move/resize  right-click delete  q quit")
	if m.loading {
		line += m.styles.Muted.Render("  loading...")
	}
	if m.status != "" {
		st := m.styles.Status
		if m.statusErr {
			st = m.styles.StatusErr
		}
		line += "  " + st.Render(m.status)
	}
	return line
}

// barLabel renders a bar title clipped to width, with truncation arrows.
func barLabel(bar layout.RowSlot, width int) string {
	label := " " + bar.Occ.Event.Title
	if bar.HasPrev {
		label = "◀" + label
	}
	label = clip(label, width)
	if bar.HasNext && width > 1 {
		r := []rune(padRight(label, width))
		r[len(r)-1] = '▶'
		return string(r)
	}
	return label
}

func clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return string(r[:1])
	}
	return string(r[:max-1]) + "…"
}

func padRight(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return clip(s, width)
	}
	return s + strings.Repeat(" ", width-len(r))
}

func centerPad(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return clip(s, width)
	}
	left := (width - len(r)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(r)-left)
}

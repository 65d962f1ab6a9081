package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for one theme.
type Styles struct {
	Title     lipgloss.Style
	DayHeader lipgloss.Style
	Today     lipgloss.Style
	Gutter    lipgloss.Style
	Muted     lipgloss.Style
	Footer    lipgloss.Style
	Status    lipgloss.Style
	StatusErr lipgloss.Style
	Drag      lipgloss.Style
	Prompt    lipgloss.Style

	events       map[string]lipgloss.Style
	defaultEvent lipgloss.Style
}

// NewStyles builds the style set for the named theme. Unknown names fall
// back to the dark theme.
func NewStyles(theme string) Styles {
	type palette struct {
		fg, accent, muted, today, drag, errFg string
	}

	p := palette{ // dark (frappe)
		fg:     "#c6d0f5",
		accent: "#8caaee",
		muted:  "#737994",
		today:  "#e5c890",
		drag:   "#414559",
		errFg:  "#e78284",
	}
	if theme == "latte" {
		p = palette{
			fg:     "#4c4f69",
			accent: "#1e66f5",
			muted:  "#9ca0b0",
			today:  "#df8e1d",
			drag:   "#ccd0da",
			errFg:  "#d20f39",
		}
	}

	// Event bars keep the eight ANSI-safe names the CLI accepts.
	events := map[string]lipgloss.Style{}
	for name, bg := range map[string]string{
		"red":     "1",
		"green":   "2",
		"yellow":  "3",
		"blue":    "4",
		"magenta": "5",
		"cyan":    "6",
		"white":   "7",
	} {
		events[name] = lipgloss.NewStyle().
			Background(lipgloss.Color(bg)).
			Foreground(lipgloss.Color("0"))
	}

	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),
		DayHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.fg)),
		Today:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.today)),
		Gutter:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.accent)),
		StatusErr: lipgloss.NewStyle().Foreground(lipgloss.Color(p.errFg)),
		Drag: lipgloss.NewStyle().
			Background(lipgloss.Color(p.drag)).
			Foreground(lipgloss.Color(p.fg)).
			Bold(true),
		Prompt: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),

		events:       events,
		defaultEvent: events["blue"],
	}
}

// Event returns the bar style for an event color name.
func (s Styles) Event(name string) lipgloss.Style {
	if st, ok := s.events[name]; ok {
		return st
	}
	return s.defaultEvent
}

package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color definitions for consistent styling across the UI.
var (
	colorHeader = color.New(color.Bold)
	colorTime   = color.New(color.FgCyan)
	colorMuted  = color.New(color.FgWhite, color.Faint)

	// Event colors selectable per event.
	eventColors = map[string]*color.Color{
		"red":     color.New(color.FgRed),
		"green":   color.New(color.FgGreen),
		"yellow":  color.New(color.FgYellow),
		"blue":    color.New(color.FgBlue),
		"magenta": color.New(color.FgMagenta),
		"cyan":    color.New(color.FgCyan),
		"white":   color.New(color.FgWhite),
	}
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatTime formats a time range column.
func formatTime(s string) string {
	return colorTime.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// formatEvent colors a title with the event's configured color.
func formatEvent(colorName, s string) string {
	if c, ok := eventColors[colorName]; ok {
		return c.Sprint(s)
	}
	return s
}

// truncate shortens s to at most width runes, ellipsized.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/huddle-app/huddle/internal/grid"
)

// DebugLogPath is the fixed path for debug logs
const DebugLogPath = "huddle-debug.log"

// DebugLogger logs TUI state, pointer gestures, and errors to a file as
// JSON lines. A nil logger is safe to call.
type DebugLogger struct {
	mu   sync.Mutex
	file *os.File
	seq  int
}

// NewDebugLogger creates the log file in the current directory with a
// fixed name (easy to find).
func NewDebugLogger() (*DebugLogger, error) {
	f, err := os.Create(DebugLogPath)
	if err != nil {
		return nil, fmt.Errorf("creating debug log: %w", err)
	}

	d := &DebugLogger{file: f}
	d.log("DEBUG_START", map[string]any{
		"log_file": DebugLogPath,
		"time":     time.Now().Format(time.RFC3339),
	})
	return d, nil
}

// Close writes the closing entry and closes the log file.
func (d *DebugLogger) Close() {
	if d == nil || d.file == nil {
		return
	}
	d.log("DEBUG_END", map[string]any{
		"time": time.Now().Format(time.RFC3339),
	})
	_ = d.file.Close()
}

// log writes a structured log entry.
func (d *DebugLogger) log(event string, data map[string]any) {
	if d == nil || d.file == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	entry := map[string]any{
		"seq":   d.seq,
		"ts":    time.Now().Format("15:04:05.000"),
		"event": event,
	}
	for k, v := range data {
		entry[k] = v
	}

	b, _ := json.Marshal(entry)
	_, _ = fmt.Fprintf(d.file, "%s\n", b)
}

// LogKeyPress logs a key press event.
func (d *DebugLogger) LogKeyPress(msg tea.KeyMsg) {
	if d == nil {
		return
	}
	d.log("KEY_PRESS", map[string]any{
		"key": msg.String(),
	})
}

// LogMouse logs a pointer event and the cell it resolved to.
func (d *DebugLogger) LogMouse(msg tea.MouseMsg, inGrid bool) {
	if d == nil {
		return
	}
	d.log("MOUSE", map[string]any{
		"x":       msg.X,
		"y":       msg.Y,
		"action":  fmt.Sprintf("%d", msg.Action),
		"button":  fmt.Sprintf("%d", msg.Button),
		"in_grid": inGrid,
	})
}

// LogDrag logs a drag session transition.
func (d *DebugLogger) LogDrag(action string, snap grid.Snapshot) {
	if d == nil {
		return
	}
	d.log("DRAG", map[string]any{
		"action":   action,
		"day":      snap.Cell.Col,
		"slot":     snap.Cell.Row,
		"start":    snap.Range.Start.Format(time.RFC3339),
		"end":      snap.Range.End.Format(time.RFC3339),
		"has_prev": snap.HasPrev,
		"has_next": snap.HasNext,
	})
}

// LogLoad logs a window load result.
func (d *DebugLogger) LogLoad(msg eventsLoadedMsg) {
	if d == nil {
		return
	}
	d.log("LOAD", map[string]any{
		"start":       msg.window.Start.Format(time.RFC3339),
		"end":         msg.window.End.Format(time.RFC3339),
		"occurrences": len(msg.occs),
		"version":     msg.version,
	})
}

// LogError logs an error.
func (d *DebugLogger) LogError(context string, err error) {
	if d == nil {
		return
	}
	d.log("ERROR", map[string]any{
		"context": context,
		"error":   err.Error(),
	})
}

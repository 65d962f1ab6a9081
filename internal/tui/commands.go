package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/huddle-app/huddle/internal/event"
)

// eventsLoadedMsg is sent when the visible window's occurrences are loaded.
type eventsLoadedMsg struct {
	window  event.Window
	occs    []event.Occurrence
	version uint64
}

// savedMsg is sent after a successful mutation.
type savedMsg struct {
	info string
}

// errMsg is sent when a command fails.
type errMsg struct {
	err error
}

// clearStatusMsg clears the transient status line.
type clearStatusMsg struct{}

const statusTimeout = 4 * time.Second

// loadEvents fetches and expands everything visible in the window.
func loadEvents(repo event.Repository, win event.Window) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		evs, err := repo.ListEventsInRange(ctx, win.Start, win.EffectiveEnd())
		if err != nil {
			return errMsg{err: err}
		}

		occs, err := event.Occurrences(evs, win)
		if err != nil {
			return errMsg{err: err}
		}

		return eventsLoadedMsg{window: win, occs: occs, version: repo.Version()}
	}
}

func createEvent(repo event.Repository, ev *event.Event) tea.Cmd {
	return func() tea.Msg {
		if err := repo.CreateEvent(context.Background(), ev); err != nil {
			return errMsg{err: fmt.Errorf("creating event: %w", err)}
		}
		return savedMsg{info: fmt.Sprintf("created %q", ev.Title)}
	}
}

func updateEventTimes(repo event.Repository, id string, start time.Time, end *time.Time) tea.Cmd {
	return func() tea.Msg {
		if err := repo.UpdateEventTimes(context.Background(), id, start, end); err != nil {
			return errMsg{err: fmt.Errorf("moving event: %w", err)}
		}
		return savedMsg{info: "event updated"}
	}
}

func deleteEvent(repo event.Repository, ev *event.Event) tea.Cmd {
	return func() tea.Msg {
		if err := repo.DeleteEvent(context.Background(), ev.ID); err != nil {
			return errMsg{err: fmt.Errorf("deleting event: %w", err)}
		}
		return savedMsg{info: fmt.Sprintf("deleted %q", ev.Title)}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

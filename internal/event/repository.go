package event

import (
	"context"
	"errors"
	"time"
)

// ErrEventNotFound is returned when no event exists with the given ID.
var ErrEventNotFound = errors.New("event not found")

// Repository defines the storage interface for events.
type Repository interface {
	// CreateEvent adds a new event. A missing ID is assigned on insert.
	CreateEvent(ctx context.Context, ev *Event) error

	// CreateEvents adds multiple events in a batch.
	CreateEvents(ctx context.Context, evs []*Event) error

	// GetEvent retrieves an event by ID.
	// Returns ErrEventNotFound if it does not exist.
	GetEvent(ctx context.Context, id string) (*Event, error)

	// ListEvents returns all events ordered by start time.
	ListEvents(ctx context.Context) ([]*Event, error)

	// ListEventsInRange returns the events that can produce occurrences
	// inside [start, end): plain events overlapping the range plus every
	// repeating event whose rule is still live by the range start.
	ListEventsInRange(ctx context.Context, start, end time.Time) ([]*Event, error)

	// UpdateEventTimes rewrites an event's start and end in place.
	// Returns ErrEventNotFound if it does not exist.
	UpdateEventTimes(ctx context.Context, id string, start time.Time, end *time.Time) error

	// DeleteEvent removes an event.
	// Returns ErrEventNotFound if it does not exist.
	DeleteEvent(ctx context.Context, id string) error

	// Version returns a counter that increases on every successful write.
	// Callers use it to key derived caches off the stored event set.
	Version() uint64

	// Close releases any resources held by the repository.
	Close() error
}

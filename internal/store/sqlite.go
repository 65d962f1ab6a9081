// Package store provides SQLite storage implementation.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/huddle-app/huddle/internal/event"
)

// SQLite implements event.Repository using SQLite.
type SQLite struct {
	db      *sql.DB
	version atomic.Uint64
}

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.version.Store(1)
	return s, nil
}

const eventColumns = `id, title, start_at, end_at, all_day, color, channel_id,
	       repeat_interval, repeat_unit, repeat_weekdays, repeat_end_on, repeat_overrides,
	       created_at`

// CreateEvent adds a new event. A missing ID is assigned on insert.
func (s *SQLite) CreateEvent(ctx context.Context, ev *event.Event) error {
	if err := prepareForInsert(ev); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, insertQuery, insertArgs(ev)...); err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	s.version.Add(1)
	return nil
}

// CreateEvents adds multiple events in a batch using a transaction.
func (s *SQLite) CreateEvents(ctx context.Context, evs []*event.Event) error {
	if len(evs) == 0 {
		return nil
	}

	for _, ev := range evs {
		if err := prepareForInsert(ev); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, ev := range evs {
		if _, err := stmt.ExecContext(ctx, insertArgs(ev)...); err != nil {
			return fmt.Errorf("inserting event %q: %w", ev.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.version.Add(1)
	return nil
}

// GetEvent retrieves an event by ID.
func (s *SQLite) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`

	ev, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event %s: %w", id, event.ErrEventNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}
	return ev, nil
}

// ListEvents returns all events ordered by start time.
func (s *SQLite) ListEvents(ctx context.Context) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY start_at, id`
	return s.list(ctx, query)
}

// ListEventsInRange returns plain events overlapping [start, end) plus
// every repeating event whose rule has not ended before the range start.
// Repeating rules run forward without bound, so the range can only prune
// them by their start and end-on dates; expansion does the exact filtering.
func (s *SQLite) ListEventsInRange(ctx context.Context, start, end time.Time) ([]*event.Event, error) {
	// Events without an explicit end still cover up to a day (all-day
	// events, the default slot), so the null branch keeps anything whose
	// start day touches the range. This prunes coarsely; expansion does
	// the exact overlap check.
	//
	// Timestamps are compared through julianday, never as raw strings:
	// RFC3339Nano drops trailing fractional zeros, so lexicographic order
	// breaks around the seconds boundary.
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE (repeat_interval IS NULL AND julianday(start_at) < julianday(?)
		       AND (julianday(end_at) >= julianday(?)
		            OR (end_at IS NULL AND julianday(start_at) + 1 > julianday(?))))
		   OR (repeat_interval IS NOT NULL AND julianday(start_at) < julianday(?)
		       AND (repeat_end_on IS NULL
		            OR julianday(repeat_end_on)
		               + julianday(COALESCE(end_at, start_at)) - julianday(start_at)
		               + 1 >= julianday(?)))
		ORDER BY start_at, id
	`
	endArg := end.Format(time.RFC3339Nano)
	startArg := start.Format(time.RFC3339Nano)
	return s.list(ctx, query, endArg, startArg, startArg, endArg, startArg)
}

func (s *SQLite) list(ctx context.Context, query string, args ...any) ([]*event.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var evs []*event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		evs = append(evs, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return evs, nil
}

// UpdateEventTimes rewrites an event's start and end in place.
func (s *SQLite) UpdateEventTimes(ctx context.Context, id string, start time.Time, end *time.Time) error {
	query := `UPDATE events SET start_at = ?, end_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		start.Format(time.RFC3339Nano),
		nullableTime(end),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating event times: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("event %s: %w", id, event.ErrEventNotFound)
	}

	s.version.Add(1)
	return nil
}

// DeleteEvent removes an event.
func (s *SQLite) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("event %s: %w", id, event.ErrEventNotFound)
	}

	s.version.Add(1)
	return nil
}

// Version returns a counter that increases on every successful write.
func (s *SQLite) Version() uint64 {
	return s.version.Load()
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

const insertQuery = `
	INSERT INTO events (
		id, title, start_at, end_at, all_day, color, channel_id,
		repeat_interval, repeat_unit, repeat_weekdays, repeat_end_on, repeat_overrides,
		created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// prepareForInsert validates the event and fills in generated fields.
func prepareForInsert(ev *event.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	return nil
}

func insertArgs(ev *event.Event) []any {
	var (
		interval sql.NullInt64
		unit     sql.NullString
		weekdays sql.NullString
		endOn    any
		override sql.NullString
	)
	if r := ev.Repeat; r != nil {
		interval = sql.NullInt64{Int64: int64(r.Interval), Valid: true}
		unit = sql.NullString{String: string(r.Unit), Valid: true}
		if len(r.Weekdays) > 0 {
			weekdays = sql.NullString{String: encodeWeekdays(r.Weekdays), Valid: true}
		}
		endOn = nullableTime(r.EndOn)
		if len(r.Overrides) > 0 {
			override = sql.NullString{String: encodeTimes(r.Overrides), Valid: true}
		}
	}

	return []any{
		ev.ID,
		ev.Title,
		ev.Start.Format(time.RFC3339Nano),
		nullableTime(ev.End),
		ev.AllDay,
		ev.Color,
		ev.ChannelID,
		interval,
		unit,
		weekdays,
		endOn,
		override,
		ev.CreatedAt.Format(time.RFC3339Nano),
	}
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*event.Event, error) {
	var (
		ev        event.Event
		startAt   string
		endAt     sql.NullString
		createdAt string
		interval  sql.NullInt64
		unit      sql.NullString
		weekdays  sql.NullString
		endOn     sql.NullString
		overrides sql.NullString
	)

	err := row.Scan(
		&ev.ID,
		&ev.Title,
		&startAt,
		&endAt,
		&ev.AllDay,
		&ev.Color,
		&ev.ChannelID,
		&interval,
		&unit,
		&weekdays,
		&endOn,
		&overrides,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if ev.Start, err = time.Parse(time.RFC3339Nano, startAt); err != nil {
		return nil, fmt.Errorf("parsing start: %w", err)
	}
	if ev.End, err = parseNullableTime(endAt); err != nil {
		return nil, fmt.Errorf("parsing end: %w", err)
	}
	if ev.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	if interval.Valid {
		rule := &event.RepeatRule{
			Interval: int(interval.Int64),
			Unit:     event.Unit(unit.String),
		}
		if weekdays.Valid {
			if rule.Weekdays, err = parseWeekdays(weekdays.String); err != nil {
				return nil, fmt.Errorf("parsing weekdays: %w", err)
			}
		}
		if rule.EndOn, err = parseNullableTime(endOn); err != nil {
			return nil, fmt.Errorf("parsing end on: %w", err)
		}
		if overrides.Valid {
			if rule.Overrides, err = parseTimes(overrides.String); err != nil {
				return nil, fmt.Errorf("parsing overrides: %w", err)
			}
		}
		ev.Repeat = rule
	}

	return &ev, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeWeekdays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	parts := strings.Split(s, ",")
	days := make([]time.Weekday, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		days[i] = time.Weekday(n)
	}
	return days, nil
}

func encodeTimes(ts []time.Time) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.Format(time.RFC3339Nano)
	}
	return strings.Join(parts, ",")
}

func parseTimes(s string) ([]time.Time, error) {
	parts := strings.Split(s, ",")
	ts := make([]time.Time, len(parts))
	for i, p := range parts {
		t, err := time.Parse(time.RFC3339Nano, p)
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return ts, nil
}

package store

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS events (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			start_at         DATETIME NOT NULL,
			end_at           DATETIME,
			all_day          INTEGER NOT NULL DEFAULT 0,
			color            TEXT NOT NULL DEFAULT '',
			channel_id       TEXT NOT NULL DEFAULT '',
			repeat_interval  INTEGER,
			repeat_unit      TEXT CHECK(repeat_unit IN ('day', 'week', 'month', 'year')),
			repeat_weekdays  TEXT,
			repeat_end_on    DATETIME,
			repeat_overrides TEXT,
			created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at);
		CREATE INDEX IF NOT EXISTS idx_events_channel ON events(channel_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	return nil
}

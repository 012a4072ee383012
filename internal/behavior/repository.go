package behavior

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxEvents caps the retained log length. Appends beyond the cap drop the
// oldest rows until the log is back at the cap.
const MaxEvents = 1000

// Schema is the DDL for the behavior database, applied at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id    TEXT    NOT NULL,
	type        TEXT    NOT NULL,
	timestamp   INTEGER NOT NULL,
	path        TEXT    NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	scroll_pct  INTEGER NOT NULL DEFAULT 0,
	target_id   TEXT    NOT NULL DEFAULT '',
	action      TEXT    NOT NULL DEFAULT '',
	term        TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
`

// Repository is the ordered, append-only event log backed by SQLite.
// Read order is insertion order, not timestamp order.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new event log repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Append stores an event at the tail of the log and enforces the retention
// cap by dropping the oldest rows. A zero timestamp is filled with the
// current wall clock so a sloppy client cannot poison derivation windows.
func (r *Repository) Append(e Event) error {
	if !e.KnownType() {
		return fmt.Errorf("unknown event type: %q", e.Type)
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (event_id, type, timestamp, path, duration_ms, scroll_pct, target_id, action, term)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), string(e.Type), e.Timestamp, e.Path, e.DurationMS, e.ScrollPct, e.TargetID, string(e.Action), e.Term,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return r.enforceCap()
}

// enforceCap drops the oldest rows once the log exceeds MaxEvents.
func (r *Repository) enforceCap() error {
	_, err := r.db.Exec(
		`DELETE FROM events WHERE seq <= (
			SELECT seq FROM events ORDER BY seq DESC LIMIT 1 OFFSET ?
		)`,
		MaxEvents,
	)
	if err != nil {
		return fmt.Errorf("failed to enforce event cap: %w", err)
	}
	return nil
}

// ReadAll returns the full log in insertion order. An empty log yields an
// empty slice, never nil.
func (r *Repository) ReadAll() ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT type, timestamp, path, duration_ms, scroll_pct, target_id, action, term
		 FROM events ORDER BY seq ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var e Event
		var typ, action string
		if err := rows.Scan(&typ, &e.Timestamp, &e.Path, &e.DurationMS, &e.ScrollPct, &e.TargetID, &action, &e.Term); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.Type = EventType(typ)
		e.Action = ActionID(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}

	return events, nil
}

// Count returns the number of retained events.
func (r *Repository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}

// Clear removes the entire log.
func (r *Repository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM events`); err != nil {
		return fmt.Errorf("failed to clear events: %w", err)
	}
	return nil
}

// DeleteOlderThan removes events with a timestamp before cutoff (epoch
// milliseconds) and returns the number of rows deleted. Every derivation
// rule windows at 30 days or less, so older rows are unreachable.
func (r *Repository) DeleteOlderThan(cutoff int64) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old events: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

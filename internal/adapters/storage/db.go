package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS series (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		completed INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL,
		managers TEXT NOT NULL DEFAULT '[]',
		rewards TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS session (
		id TEXT PRIMARY KEY,
		series_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		checkin_open_at TEXT,
		checkin_close_at TEXT,
		token TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (series_id) REFERENCES series(id)
	);
	CREATE INDEX IF NOT EXISTS idx_session_series ON session(series_id);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		series_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		participant_id TEXT NOT NULL,
		checked_in_at TEXT NOT NULL,
		FOREIGN KEY (series_id) REFERENCES series(id),
		FOREIGN KEY (session_id) REFERENCES session(id)
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_series ON attendance(series_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_session ON attendance(session_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_session_participant
		ON attendance(session_id, participant_id);

	CREATE TABLE IF NOT EXISTS participant (
		id TEXT PRIMARY KEY,
		nickname TEXT NOT NULL DEFAULT '',
		experience INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT,
		error_message TEXT
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

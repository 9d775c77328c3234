package storage

import (
	"database/sql"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expectedTables is the sorted list of tables after InitDB.
var expectedTables = []string{
	"account",
	"attendance",
	"outbox",
	"participant",
	"series",
	"session",
}

// TestInitDB_Fresh verifies the schema applies cleanly to an empty database.
func TestInitDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed on fresh db: %v", err)
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Errorf("got %d tables, want %d\ngot:  %v\nwant: %v", len(tables), len(expectedTables), tables, expectedTables)
	}
	for i, want := range expectedTables {
		if i >= len(tables) {
			t.Errorf("missing table: %s", want)
			continue
		}
		if tables[i] != want {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], want)
		}
	}
}

// TestInitDB_Idempotent verifies that running InitDB twice produces no errors
// and existing data survives.
func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("first InitDB failed: %v", err)
	}

	_, err := db.Exec(`INSERT INTO series (id, name, start_date, created_by, created_at) VALUES ('s1', 'Morning Circle', '2026-01-05', 'owner@test.com', '2026-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert test series: %v", err)
	}
	_, err = db.Exec(`INSERT INTO attendance (id, series_id, session_id, participant_id, checked_in_at) VALUES ('a1', 's1', 'sess1', 'p1', '2026-01-05T10:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert test attendance: %v", err)
	}

	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM series WHERE id = 's1'").Scan(&name); err != nil {
		t.Fatalf("series data lost after re-init: %v", err)
	}
	if name != "Morning Circle" {
		t.Errorf("series name = %q, want %q", name, "Morning Circle")
	}

	var checkedIn string
	if err := db.QueryRow("SELECT checked_in_at FROM attendance WHERE id = 'a1'").Scan(&checkedIn); err != nil {
		t.Fatalf("attendance data lost after re-init: %v", err)
	}
	if checkedIn != "2026-01-05T10:00:00Z" {
		t.Errorf("attendance checked_in_at = %q, want %q", checkedIn, "2026-01-05T10:00:00Z")
	}
}

// TestInitDB_DuplicateCheckinRejected verifies the unique index on
// (session_id, participant_id) blocks a second row for the same pair.
func TestInitDB_DuplicateCheckinRejected(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	_, err := db.Exec(`INSERT INTO attendance (id, series_id, session_id, participant_id, checked_in_at) VALUES ('a1', 's1', 'sess1', 'p1', '2026-01-05T10:00:00Z')`)
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err = db.Exec(`INSERT INTO attendance (id, series_id, session_id, participant_id, checked_in_at) VALUES ('a2', 's1', 'sess1', 'p1', '2026-01-05T10:05:00Z')`)
	if err == nil {
		t.Error("duplicate (session, participant) insert should fail")
	}
}

package projections

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
)

func exportDeps(f *fixture) ExportAttendanceDeps {
	return ExportAttendanceDeps{
		SeriesStore:      f.series,
		SessionStore:     f.sessions,
		AttendanceStore:  f.attendance,
		ParticipantStore: f.participants,
		Gate:             f.gate,
	}
}

// TestQueryExportAttendance_FullLog verifies one CSV row per check-in,
// ordered by session start then check-in time.
func TestQueryExportAttendance_FullLog(t *testing.T) {
	f := newFixture()
	query := ExportAttendanceQuery{SeriesID: "s1", Email: "owner@x.com"}

	data, err := QueryExportAttendance(context.Background(), query, exportDeps(f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("expected header plus 6 rows, got %d", len(rows))
	}
	wantHeader := []string{"series_name", "session_id", "session_start", "checkin_open", "checkin_close", "participant_id", "display_name", "checked_in_at"}
	for i, want := range wantHeader {
		if rows[0][i] != want {
			t.Errorf("header column %d: expected %q, got %q", i, want, rows[0][i])
		}
	}

	wantParticipants := []string{"p1", "p2", "p3", "p1", "p2", "p1"}
	for i, want := range wantParticipants {
		row := rows[i+1]
		if row[0] != "Te Reo Club" {
			t.Errorf("row %d: unexpected series name %q", i, row[0])
		}
		if row[5] != want {
			t.Errorf("row %d: expected participant %s, got %s", i, want, row[5])
		}
	}
	if rows[1][1] != "se-1" || rows[6][1] != "se-3" {
		t.Errorf("rows out of session order: first=%v last=%v", rows[1], rows[6])
	}
	if rows[1][3] != "2026-03-02T15:45:00Z" || rows[1][4] != "2026-03-02T16:15:00Z" {
		t.Errorf("unexpected check-in window: open=%q close=%q", rows[1][3], rows[1][4])
	}
	if rows[1][7] != "2026-03-02T15:50:00Z" {
		t.Errorf("unexpected timestamp format: %q", rows[1][7])
	}
}

// TestQueryExportAttendance_EscapesDisplayNames verifies names containing
// commas survive the round trip.
func TestQueryExportAttendance_EscapesDisplayNames(t *testing.T) {
	f := newFixture()
	p := f.participants.participants["p1"]
	p.Nickname = `Kiri, "Te Rangi"`
	f.participants.participants["p1"] = p
	query := ExportAttendanceQuery{SeriesID: "s1", Email: "owner@x.com"}

	data, err := QueryExportAttendance(context.Background(), query, exportDeps(f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if rows[1][6] != `Kiri, "Te Rangi" (p1)` {
		t.Errorf("display name mangled: %q", rows[1][6])
	}
}

// TestQueryExportAttendance_StrangerForbidden verifies the export is
// manager-only.
func TestQueryExportAttendance_StrangerForbidden(t *testing.T) {
	f := newFixture()
	query := ExportAttendanceQuery{SeriesID: "s1", Email: "stranger@x.com"}
	_, err := QueryExportAttendance(context.Background(), query, exportDeps(f))
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

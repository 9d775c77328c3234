package projections

import (
	"context"
	"testing"
	"time"

	domainAttendance "passport/internal/domain/attendance"
)

func passportDeps(f *fixture) GetParticipantPassportDeps {
	return GetParticipantPassportDeps{
		ParticipantStore: f.participants,
		AttendanceStore:  f.attendance,
		SeriesStore:      f.series,
	}
}

// TestQueryGetParticipantPassport_LevelAndHistory verifies level details
// come from global experience and history is newest first.
func TestQueryGetParticipantPassport_LevelAndHistory(t *testing.T) {
	f := newFixture()
	query := GetParticipantPassportQuery{ParticipantID: "p1"}

	result, err := QueryGetParticipantPassport(context.Background(), query, passportDeps(f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Nickname != "Kiri" || result.DisplayName != "Kiri (p1)" {
		t.Errorf("unexpected names: %+v", result)
	}
	if result.Experience != 9 || result.Level != 6 {
		t.Errorf("expected level 6 at 9 xp, got level %d at %d", result.Level, result.Experience)
	}
	if result.CurrentLevelAt != 9 || result.NextLevelAt != 12 {
		t.Errorf("unexpected curve bounds: %+v", result)
	}
	if result.Progress != 0 {
		t.Errorf("expected zero progress at level floor, got %f", result.Progress)
	}

	if len(result.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(result.History))
	}
	wantOrder := []string{"se-3", "se-2", "se-1"}
	for i, want := range wantOrder {
		if result.History[i].SessionID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, result.History[i].SessionID)
		}
		if result.History[i].SeriesName != "Te Reo Club" {
			t.Errorf("position %d: unexpected series name %q", i, result.History[i].SeriesName)
		}
	}
}

// TestQueryGetParticipantPassport_DeletedSeriesFallsBackToID verifies
// history survives a deleted series by showing the raw series id.
func TestQueryGetParticipantPassport_DeletedSeriesFallsBackToID(t *testing.T) {
	f := newFixture()
	f.attendance.records = append(f.attendance.records, domainAttendance.Record{
		ID: "a-gone", SeriesID: "s-gone", SessionID: "se-gone",
		ParticipantID: "p2", Timestamp: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	})

	result, err := QueryGetParticipantPassport(context.Background(), GetParticipantPassportQuery{ParticipantID: "p2"}, passportDeps(f))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.History) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(result.History))
	}
	last := result.History[len(result.History)-1]
	if last.SeriesID != "s-gone" || last.SeriesName != "s-gone" {
		t.Errorf("expected series id fallback, got %+v", last)
	}
}

// TestQueryGetParticipantPassport_UnknownParticipant verifies the lookup
// error propagates.
func TestQueryGetParticipantPassport_UnknownParticipant(t *testing.T) {
	f := newFixture()
	if _, err := QueryGetParticipantPassport(context.Background(), GetParticipantPassportQuery{ParticipantID: "nope"}, passportDeps(f)); err == nil {
		t.Fatal("expected error for unknown participant")
	}
}

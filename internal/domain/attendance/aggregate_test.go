package attendance_test

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"passport/internal/domain/attendance"
)

var base = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func record(id, sessionID, participantID string, offset time.Duration) attendance.Record {
	return attendance.Record{
		ID:            id,
		SeriesID:      "series-1",
		SessionID:     sessionID,
		ParticipantID: participantID,
		Timestamp:     base.Add(offset),
	}
}

func sampleRecords() []attendance.Record {
	return []attendance.Record{
		record("r1", "sess-1", "kid-a", 0),
		record("r2", "sess-1", "kid-b", time.Minute),
		record("r3", "sess-2", "kid-a", 24*time.Hour),
		record("r4", "sess-2", "kid-c", 25*time.Hour),
		record("r5", "sess-3", "kid-a", 48*time.Hour),
	}
}

// TestCountBySession tests per-session group counts.
func TestCountBySession(t *testing.T) {
	counts := attendance.CountBySession(sampleRecords())
	want := map[string]int{"sess-1": 2, "sess-2": 2, "sess-3": 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("CountBySession() = %v, want %v", counts, want)
	}
}

// TestCountByParticipant tests per-participant group counts.
func TestCountByParticipant(t *testing.T) {
	counts := attendance.CountByParticipant(sampleRecords())
	want := map[string]int{"kid-a": 3, "kid-b": 1, "kid-c": 1}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("CountByParticipant() = %v, want %v", counts, want)
	}
}

// TestRank tests leaderboard ordering with the earliest-check-in tie-break.
func TestRank(t *testing.T) {
	ranked := attendance.Rank(sampleRecords())
	if len(ranked) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranked))
	}
	if ranked[0].ParticipantID != "kid-a" || ranked[0].Count != 3 {
		t.Errorf("top entry = %+v, want kid-a with 3", ranked[0])
	}
	// kid-b and kid-c tie on count; kid-b checked in first.
	if ranked[1].ParticipantID != "kid-b" || ranked[2].ParticipantID != "kid-c" {
		t.Errorf("tie-break wrong: got %s then %s, want kid-b then kid-c",
			ranked[1].ParticipantID, ranked[2].ParticipantID)
	}
}

// TestRank_PermutationInvariant tests that aggregation is a pure fold: any
// permutation of the input yields identical output.
func TestRank_PermutationInvariant(t *testing.T) {
	records := sampleRecords()
	want := attendance.Rank(records)
	wantSessions := attendance.CountBySession(records)
	wantParticipants := attendance.CountByParticipant(records)
	wantPerfect := attendance.PerfectAttendance(records, 3)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := append([]attendance.Record(nil), records...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		if got := attendance.Rank(shuffled); !reflect.DeepEqual(got, want) {
			t.Fatalf("trial %d: Rank() differs under permutation:\n got %v\nwant %v", trial, got, want)
		}
		if got := attendance.CountBySession(shuffled); !reflect.DeepEqual(got, wantSessions) {
			t.Fatalf("trial %d: CountBySession differs under permutation", trial)
		}
		if got := attendance.CountByParticipant(shuffled); !reflect.DeepEqual(got, wantParticipants) {
			t.Fatalf("trial %d: CountByParticipant differs under permutation", trial)
		}
		if got := attendance.PerfectAttendance(shuffled, 3); !reflect.DeepEqual(got, wantPerfect) {
			t.Fatalf("trial %d: PerfectAttendance differs under permutation", trial)
		}
	}
}

// TestTop tests the summary-view truncation.
func TestTop(t *testing.T) {
	var records []attendance.Record
	for i := 0; i < 15; i++ {
		id := string(rune('a' + i))
		records = append(records, record("r-"+id, "sess-1", "kid-"+id, time.Duration(i)*time.Minute))
	}

	top := attendance.Top(records, attendance.TopN)
	if len(top) != attendance.TopN {
		t.Errorf("Top() returned %d entries, want %d", len(top), attendance.TopN)
	}

	all := attendance.Top(records, 100)
	if len(all) != 15 {
		t.Errorf("Top(100) returned %d entries, want 15", len(all))
	}
}

// TestPerfectAttendance tests the perfect set across session totals.
func TestPerfectAttendance(t *testing.T) {
	records := []attendance.Record{
		record("r1", "sess-1", "kid-a", 0),
		record("r2", "sess-2", "kid-a", time.Hour),
		record("r3", "sess-3", "kid-a", 2*time.Hour),
		record("r4", "sess-1", "kid-b", time.Minute),
		record("r5", "sess-2", "kid-b", time.Hour),
	}

	perfect := attendance.PerfectAttendance(records, 3)
	if want := []string{"kid-a"}; !reflect.DeepEqual(perfect, want) {
		t.Errorf("PerfectAttendance(3) = %v, want %v", perfect, want)
	}

	// Zero sessions: empty set regardless of counts, never "everyone".
	if got := attendance.PerfectAttendance(records, 0); len(got) != 0 {
		t.Errorf("PerfectAttendance(0) = %v, want empty", got)
	}
}

// TestRecord_Validate tests record validation.
func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		r       attendance.Record
		wantErr bool
	}{
		{"valid", record("r1", "sess-1", "kid-a", 0), false},
		{"missing series", attendance.Record{SessionID: "s", ParticipantID: "p", Timestamp: base}, true},
		{"missing session", attendance.Record{SeriesID: "s", ParticipantID: "p", Timestamp: base}, true},
		{"missing participant", attendance.Record{SeriesID: "s", SessionID: "s", Timestamp: base}, true},
		{"missing timestamp", attendance.Record{SeriesID: "s", SessionID: "s", ParticipantID: "p"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

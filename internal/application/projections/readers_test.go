package projections

import (
	"context"
	"database/sql"
	"time"

	domainAttendance "passport/internal/domain/attendance"
	"passport/internal/domain/authz"
	domainParticipant "passport/internal/domain/participant"
	domainSeries "passport/internal/domain/series"
	domainSession "passport/internal/domain/session"
)

// Shared in-memory readers for the projection tests. Every projection in
// this package reads through the same four interfaces, so one seeded
// fixture serves them all.

type mockSeriesReader struct {
	series []domainSeries.Series
}

func (m *mockSeriesReader) GetByID(_ context.Context, id string) (domainSeries.Series, error) {
	for _, s := range m.series {
		if s.ID == id {
			return s, nil
		}
	}
	return domainSeries.Series{}, sql.ErrNoRows
}

func (m *mockSeriesReader) ListAll(_ context.Context) ([]domainSeries.Series, error) {
	return append([]domainSeries.Series{}, m.series...), nil
}

type mockSessionReader struct {
	sessions []domainSession.Session
}

func (m *mockSessionReader) GetByID(_ context.Context, id string) (domainSession.Session, error) {
	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return domainSession.Session{}, sql.ErrNoRows
}

func (m *mockSessionReader) ListBySeriesID(_ context.Context, seriesID string) ([]domainSession.Session, error) {
	var out []domainSession.Session
	for _, s := range m.sessions {
		if s.SeriesID == seriesID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockSessionReader) ListRecent(_ context.Context, limit int) ([]domainSession.Session, error) {
	out := append([]domainSession.Session{}, m.sessions...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockSessionReader) CountBySeriesID(_ context.Context, seriesID string) (int, error) {
	count := 0
	for _, s := range m.sessions {
		if s.SeriesID == seriesID {
			count++
		}
	}
	return count, nil
}

type mockAttendanceReader struct {
	records []domainAttendance.Record
}

func (m *mockAttendanceReader) ListBySeriesID(_ context.Context, seriesID string) ([]domainAttendance.Record, error) {
	var out []domainAttendance.Record
	for _, r := range m.records {
		if r.SeriesID == seriesID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAttendanceReader) ListBySessionID(_ context.Context, sessionID string) ([]domainAttendance.Record, error) {
	var out []domainAttendance.Record
	for _, r := range m.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockAttendanceReader) ListByParticipantID(_ context.Context, participantID string) ([]domainAttendance.Record, error) {
	var out []domainAttendance.Record
	for _, r := range m.records {
		if r.ParticipantID == participantID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockParticipantReader struct {
	participants map[string]domainParticipant.Participant
}

func (m *mockParticipantReader) GetByID(_ context.Context, id string) (domainParticipant.Participant, error) {
	if p, ok := m.participants[id]; ok {
		return p, nil
	}
	return domainParticipant.Participant{}, sql.ErrNoRows
}

func (m *mockParticipantReader) GetByIDs(_ context.Context, ids []string) (map[string]domainParticipant.Participant, error) {
	out := make(map[string]domainParticipant.Participant, len(ids))
	for _, id := range ids {
		if p, ok := m.participants[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// fixture holds a seeded reader set: one three-session series with three
// participants. p1 attended every session, p2 two, p3 one.
type fixture struct {
	series       *mockSeriesReader
	sessions     *mockSessionReader
	attendance   *mockAttendanceReader
	participants *mockParticipantReader
	gate         *authz.Gate
	now          time.Time
}

func newFixture() *fixture {
	// The viewer clock sits inside session se-1's check-in window.
	now := time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)

	s1 := domainSeries.Series{
		ID:        "s1",
		Name:      "Te Reo Club",
		StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
		CreatedBy: "owner@x.com",
		Managers:  []string{"manager@x.com"},
		Rewards:   []int{3, 5},
		CreatedAt: now.Add(-30 * 24 * time.Hour),
	}

	mkSession := func(id string, day int) domainSession.Session {
		start := time.Date(2026, 3, day, 16, 0, 0, 0, time.UTC)
		return domainSession.Session{
			ID:             id,
			SeriesID:       "s1",
			StartAt:        start,
			CheckinOpenAt:  start.Add(-15 * time.Minute),
			CheckinCloseAt: start.Add(15 * time.Minute),
			Token:          "tok-" + id,
			CreatedBy:      "owner@x.com",
		}
	}

	checkin := func(id, sessionID, participantID string, at time.Time) domainAttendance.Record {
		return domainAttendance.Record{
			ID: id, SeriesID: "s1", SessionID: sessionID,
			ParticipantID: participantID, Timestamp: at,
		}
	}
	se1 := time.Date(2026, 3, 2, 15, 50, 0, 0, time.UTC)
	se2 := time.Date(2026, 3, 9, 15, 50, 0, 0, time.UTC)
	se3 := time.Date(2026, 3, 16, 15, 50, 0, 0, time.UTC)

	return &fixture{
		series: &mockSeriesReader{series: []domainSeries.Series{s1}},
		sessions: &mockSessionReader{sessions: []domainSession.Session{
			mkSession("se-1", 2), mkSession("se-2", 9), mkSession("se-3", 16),
		}},
		attendance: &mockAttendanceReader{records: []domainAttendance.Record{
			checkin("a1", "se-1", "p1", se1),
			checkin("a2", "se-1", "p2", se1.Add(2*time.Minute)),
			checkin("a3", "se-1", "p3", se1.Add(5*time.Minute)),
			checkin("a4", "se-2", "p1", se2),
			checkin("a5", "se-2", "p2", se2.Add(time.Minute)),
			checkin("a6", "se-3", "p1", se3),
		}},
		participants: &mockParticipantReader{participants: map[string]domainParticipant.Participant{
			"p1": {ID: "p1", Nickname: "Kiri", Experience: 9},
			"p2": {ID: "p2", Experience: 2},
			"p3": {ID: "p3", Experience: 1},
		}},
		gate: authz.NewGate([]string{"admin@x.com"}),
		now:  now,
	}
}

func (f *fixture) clock() func() time.Time {
	return func() time.Time { return f.now }
}

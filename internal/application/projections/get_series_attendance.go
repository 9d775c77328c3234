package projections

import (
	"context"
	"time"

	domainAttendance "passport/internal/domain/attendance"
	"passport/internal/domain/authz"
)

// GetSeriesAttendanceQuery carries query parameters.
type GetSeriesAttendanceQuery struct {
	SeriesID string
	Email    string
}

// SessionAttendanceRow is the check-in count for one session.
type SessionAttendanceRow struct {
	SessionID string
	StartAt   time.Time
	Count     int
}

// AttendeeRef names a participant on a summary view.
type AttendeeRef struct {
	ParticipantID string
	DisplayName   string
	Checkins      int
}

// GetSeriesAttendanceResult carries the query result.
type GetSeriesAttendanceResult struct {
	SeriesID           string
	SeriesName         string
	SessionCount       int
	TotalCheckins      int
	UniqueParticipants int
	Sessions           []SessionAttendanceRow
	Top                []AttendeeRef // most check-ins first, at most attendance.TopN
	Perfect            []AttendeeRef // attended every session, sorted by id
}

// GetSeriesAttendanceDeps holds dependencies for GetSeriesAttendance.
type GetSeriesAttendanceDeps struct {
	SeriesStore      SeriesReader
	SessionStore     SessionReader
	AttendanceStore  AttendanceReader
	ParticipantStore ParticipantReader
	Gate             *authz.Gate
}

// QueryGetSeriesAttendance builds the manager's attendance summary for a
// series: per-session counts, the top attendees, and the perfect-attendance
// set. Perfect
// attendance means a check-in for every session that exists right now; it
// can be lost when a new session is added.
// PRE: deps.Gate is non-nil
// POST: returns ErrNotAuthorized unless the viewer can manage the series
func QueryGetSeriesAttendance(ctx context.Context, query GetSeriesAttendanceQuery, deps GetSeriesAttendanceDeps) (GetSeriesAttendanceResult, error) {
	s, err := deps.SeriesStore.GetByID(ctx, query.SeriesID)
	if err != nil {
		return GetSeriesAttendanceResult{}, err
	}
	if !deps.Gate.CanManage(query.Email, &s) {
		return GetSeriesAttendanceResult{}, ErrNotAuthorized
	}

	sessions, err := deps.SessionStore.ListBySeriesID(ctx, query.SeriesID)
	if err != nil {
		return GetSeriesAttendanceResult{}, err
	}
	records, err := deps.AttendanceStore.ListBySeriesID(ctx, query.SeriesID)
	if err != nil {
		return GetSeriesAttendanceResult{}, err
	}

	counts := domainAttendance.CountBySession(records)
	rows := make([]SessionAttendanceRow, 0, len(sessions))
	for i := range sessions {
		rows = append(rows, SessionAttendanceRow{
			SessionID: sessions[i].ID,
			StartAt:   sessions[i].StartAt,
			Count:     counts[sessions[i].ID],
		})
	}

	perParticipant := domainAttendance.CountByParticipant(records)
	ranked := domainAttendance.Top(records, domainAttendance.TopN)
	perfectIDs := domainAttendance.PerfectAttendance(records, len(sessions))

	ids := make([]string, 0, len(ranked)+len(perfectIDs))
	for _, e := range ranked {
		ids = append(ids, e.ParticipantID)
	}
	ids = append(ids, perfectIDs...)
	participants, err := deps.ParticipantStore.GetByIDs(ctx, ids)
	if err != nil {
		return GetSeriesAttendanceResult{}, err
	}

	top := make([]AttendeeRef, 0, len(ranked))
	for _, e := range ranked {
		top = append(top, AttendeeRef{
			ParticipantID: e.ParticipantID,
			DisplayName:   displayNameFor(participants, e.ParticipantID),
			Checkins:      e.Count,
		})
	}
	perfect := make([]AttendeeRef, 0, len(perfectIDs))
	for _, id := range perfectIDs {
		perfect = append(perfect, AttendeeRef{
			ParticipantID: id,
			DisplayName:   displayNameFor(participants, id),
			Checkins:      perParticipant[id],
		})
	}

	return GetSeriesAttendanceResult{
		SeriesID:           s.ID,
		SeriesName:         s.Name,
		SessionCount:       len(sessions),
		TotalCheckins:      len(records),
		UniqueParticipants: len(perParticipant),
		Sessions:           rows,
		Top:                top,
		Perfect:            perfect,
	}, nil
}

package projections

import (
	"bytes"
	"context"
	"encoding/csv"
	"sort"
	"time"

	"passport/internal/domain/authz"
	domainSession "passport/internal/domain/session"
)

// ExportAttendanceQuery carries query parameters.
type ExportAttendanceQuery struct {
	SeriesID string
	Email    string
}

// ExportAttendanceDeps holds dependencies for ExportAttendance.
type ExportAttendanceDeps struct {
	SeriesStore      SeriesReader
	SessionStore     SessionReader
	AttendanceStore  AttendanceReader
	ParticipantStore ParticipantReader
	Gate             *authz.Gate
}

// QueryExportAttendance renders a series' full attendance log as CSV, one
// row per check-in, ordered by session start then check-in time.
// PRE: deps.Gate is non-nil
// POST: returns ErrNotAuthorized unless the viewer can manage the series
func QueryExportAttendance(ctx context.Context, query ExportAttendanceQuery, deps ExportAttendanceDeps) ([]byte, error) {
	s, err := deps.SeriesStore.GetByID(ctx, query.SeriesID)
	if err != nil {
		return nil, err
	}
	if !deps.Gate.CanManage(query.Email, &s) {
		return nil, ErrNotAuthorized
	}

	sessions, err := deps.SessionStore.ListBySeriesID(ctx, query.SeriesID)
	if err != nil {
		return nil, err
	}
	sessionByID := make(map[string]domainSession.Session, len(sessions))
	for i := range sessions {
		sessionByID[sessions[i].ID] = sessions[i]
	}

	records, err := deps.AttendanceStore.ListBySeriesID(ctx, query.SeriesID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ParticipantID)
	}
	participants, err := deps.ParticipantStore.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		si, sj := sessionByID[records[i].SessionID].StartAt, sessionByID[records[j].SessionID].StartAt
		if !si.Equal(sj) {
			return si.Before(sj)
		}
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.Before(records[j].Timestamp)
		}
		return records[i].ParticipantID < records[j].ParticipantID
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"series_name", "session_id", "session_start", "checkin_open", "checkin_close", "participant_id", "display_name", "checked_in_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range records {
		sess := sessionByID[r.SessionID]
		row := []string{
			s.Name,
			r.SessionID,
			sess.StartAt.UTC().Format(time.RFC3339),
			sess.CheckinOpenAt.UTC().Format(time.RFC3339),
			sess.CheckinCloseAt.UTC().Format(time.RFC3339),
			r.ParticipantID,
			displayNameFor(participants, r.ParticipantID),
			r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package projections

import (
	"context"
	"sort"
	"time"

	"passport/internal/domain/authz"
)

// GetSessionAttendeesQuery carries query parameters.
type GetSessionAttendeesQuery struct {
	SessionID string
	Email     string
}

// SessionAttendeeRow is one check-in on the session roster.
type SessionAttendeeRow struct {
	ParticipantID string
	DisplayName   string
	CheckedInAt   time.Time
}

// GetSessionAttendeesResult carries the query result.
type GetSessionAttendeesResult struct {
	SessionID string
	SeriesID  string
	Attendees []SessionAttendeeRow
}

// GetSessionAttendeesDeps holds dependencies for GetSessionAttendees.
type GetSessionAttendeesDeps struct {
	SessionStore     SessionReader
	SeriesStore      SeriesReader
	AttendanceStore  AttendanceReader
	ParticipantStore ParticipantReader
	Gate             *authz.Gate
}

// QueryGetSessionAttendees lists who checked in to a session, earliest
// first.
// PRE: deps.Gate is non-nil
// POST: returns ErrNotAuthorized unless the viewer can manage the owning series
func QueryGetSessionAttendees(ctx context.Context, query GetSessionAttendeesQuery, deps GetSessionAttendeesDeps) (GetSessionAttendeesResult, error) {
	sess, err := deps.SessionStore.GetByID(ctx, query.SessionID)
	if err != nil {
		return GetSessionAttendeesResult{}, err
	}
	s, err := deps.SeriesStore.GetByID(ctx, sess.SeriesID)
	if err != nil {
		return GetSessionAttendeesResult{}, err
	}
	if !deps.Gate.CanManage(query.Email, &s) {
		return GetSessionAttendeesResult{}, ErrNotAuthorized
	}

	records, err := deps.AttendanceStore.ListBySessionID(ctx, query.SessionID)
	if err != nil {
		return GetSessionAttendeesResult{}, err
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ParticipantID)
	}
	participants, err := deps.ParticipantStore.GetByIDs(ctx, ids)
	if err != nil {
		return GetSessionAttendeesResult{}, err
	}

	attendees := make([]SessionAttendeeRow, 0, len(records))
	for _, r := range records {
		attendees = append(attendees, SessionAttendeeRow{
			ParticipantID: r.ParticipantID,
			DisplayName:   displayNameFor(participants, r.ParticipantID),
			CheckedInAt:   r.Timestamp,
		})
	}
	sort.Slice(attendees, func(i, j int) bool {
		if !attendees[i].CheckedInAt.Equal(attendees[j].CheckedInAt) {
			return attendees[i].CheckedInAt.Before(attendees[j].CheckedInAt)
		}
		return attendees[i].ParticipantID < attendees[j].ParticipantID
	})

	return GetSessionAttendeesResult{
		SessionID: sess.ID,
		SeriesID:  sess.SeriesID,
		Attendees: attendees,
	}, nil
}

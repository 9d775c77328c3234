package projections

import (
	"context"
	"sort"
	"time"

	"passport/internal/domain/level"
)

// GetParticipantPassportQuery carries query parameters.
type GetParticipantPassportQuery struct {
	ParticipantID string
}

// PassportCheckin is one entry in a participant's check-in history.
type PassportCheckin struct {
	SeriesID    string
	SeriesName  string
	SessionID   string
	CheckedInAt time.Time
}

// GetParticipantPassportResult carries the query result: the participant's
// level standing plus their full check-in history, newest first.
type GetParticipantPassportResult struct {
	ParticipantID  string
	Nickname       string
	DisplayName    string
	Experience     int
	Level          int
	CurrentLevelAt int
	NextLevelAt    int
	Progress       float64
	History        []PassportCheckin
}

// GetParticipantPassportDeps holds dependencies for GetParticipantPassport.
type GetParticipantPassportDeps struct {
	ParticipantStore ParticipantReader
	AttendanceStore  AttendanceReader
	SeriesStore      SeriesReader
}

// QueryGetParticipantPassport retrieves a participant's passport page: level
// details computed from global experience and the check-in history behind it.
// PRE: query.ParticipantID resolves to a stored participant
// POST: History is ordered newest first
func QueryGetParticipantPassport(ctx context.Context, query GetParticipantPassportQuery, deps GetParticipantPassportDeps) (GetParticipantPassportResult, error) {
	p, err := deps.ParticipantStore.GetByID(ctx, query.ParticipantID)
	if err != nil {
		return GetParticipantPassportResult{}, err
	}
	records, err := deps.AttendanceStore.ListByParticipantID(ctx, query.ParticipantID)
	if err != nil {
		return GetParticipantPassportResult{}, err
	}

	names := make(map[string]string)
	history := make([]PassportCheckin, 0, len(records))
	for _, r := range records {
		name, ok := names[r.SeriesID]
		if !ok {
			// A deleted series leaves history rows behind; show the id.
			name = r.SeriesID
			if s, err := deps.SeriesStore.GetByID(ctx, r.SeriesID); err == nil {
				name = s.Name
			}
			names[r.SeriesID] = name
		}
		history = append(history, PassportCheckin{
			SeriesID:    r.SeriesID,
			SeriesName:  name,
			SessionID:   r.SessionID,
			CheckedInAt: r.Timestamp,
		})
	}
	sort.Slice(history, func(i, j int) bool {
		if !history[i].CheckedInAt.Equal(history[j].CheckedInAt) {
			return history[i].CheckedInAt.After(history[j].CheckedInAt)
		}
		return history[i].SessionID < history[j].SessionID
	})

	details := level.FromExperience(p.Experience)
	return GetParticipantPassportResult{
		ParticipantID:  p.ID,
		Nickname:       p.Nickname,
		DisplayName:    p.DisplayName(),
		Experience:     details.Total,
		Level:          details.Level,
		CurrentLevelAt: details.CurrentLevelAt,
		NextLevelAt:    details.NextLevelAt,
		Progress:       details.Progress(),
		History:        history,
	}, nil
}

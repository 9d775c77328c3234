package projections

import (
	"context"

	domainAttendance "passport/internal/domain/attendance"
	"passport/internal/domain/level"
	domainParticipant "passport/internal/domain/participant"
)

// GetLeaderboardQuery carries query parameters.
type GetLeaderboardQuery struct {
	SeriesID string
}

// LeaderboardRow is one leaderboard entry. Checkins is series-scoped;
// Experience, Level, and the level bounds are the participant's global totals.
type LeaderboardRow struct {
	Rank           int
	ParticipantID  string
	DisplayName    string
	Checkins       int
	Experience     int
	Level          int
	CurrentLevelAt int // total experience where the current level began
	NextLevelAt    int // total experience needed for the next level
	RewardsEarned  int // reward thresholds this participant has crossed
}

// GetLeaderboardResult carries the query result.
type GetLeaderboardResult struct {
	SeriesID          string
	SeriesName        string
	Rows              []LeaderboardRow
	TotalParticipants int
	TotalCheckins     int
}

// GetLeaderboardDeps holds dependencies for GetLeaderboard.
type GetLeaderboardDeps struct {
	SeriesStore      SeriesReader
	AttendanceStore  AttendanceReader
	ParticipantStore ParticipantReader
}

func displayNameFor(participants map[string]domainParticipant.Participant, id string) string {
	if p, ok := participants[id]; ok {
		return p.DisplayName()
	}
	return id
}

// QueryGetLeaderboard builds the live leaderboard for a series: top ten by
// series-scoped check-in count, ties broken by earliest check-in then id.
// The board is public; it exposes display names and counts, never tokens.
// PRE: query.SeriesID resolves to a stored series
// POST: Rows is ranked and at most ten long; Rank starts at 1
func QueryGetLeaderboard(ctx context.Context, query GetLeaderboardQuery, deps GetLeaderboardDeps) (GetLeaderboardResult, error) {
	s, err := deps.SeriesStore.GetByID(ctx, query.SeriesID)
	if err != nil {
		return GetLeaderboardResult{}, err
	}
	records, err := deps.AttendanceStore.ListBySeriesID(ctx, query.SeriesID)
	if err != nil {
		return GetLeaderboardResult{}, err
	}

	ranked := domainAttendance.Rank(records)
	top := ranked
	if len(top) > domainAttendance.TopN {
		top = top[:domainAttendance.TopN]
	}

	ids := make([]string, 0, len(top))
	for _, entry := range top {
		ids = append(ids, entry.ParticipantID)
	}
	participants, err := deps.ParticipantStore.GetByIDs(ctx, ids)
	if err != nil {
		return GetLeaderboardResult{}, err
	}

	rows := make([]LeaderboardRow, 0, len(top))
	for i, entry := range top {
		var experience int
		if p, ok := participants[entry.ParticipantID]; ok {
			experience = p.Experience
		}
		earned := 0
		for _, threshold := range s.Rewards {
			if entry.Count >= threshold {
				earned++
			}
		}
		details := level.FromExperience(experience)
		rows = append(rows, LeaderboardRow{
			Rank:           i + 1,
			ParticipantID:  entry.ParticipantID,
			DisplayName:    displayNameFor(participants, entry.ParticipantID),
			Checkins:       entry.Count,
			Experience:     experience,
			Level:          details.Level,
			CurrentLevelAt: details.CurrentLevelAt,
			NextLevelAt:    details.NextLevelAt,
			RewardsEarned:  earned,
		})
	}

	return GetLeaderboardResult{
		SeriesID:          s.ID,
		SeriesName:        s.Name,
		Rows:              rows,
		TotalParticipants: len(ranked),
		TotalCheckins:     len(records),
	}, nil
}

package attendance

import (
	"sort"
	"time"
)

// TopN is the leaderboard size exposed on summary views.
const TopN = 10

// RankEntry is one leaderboard row: a participant's check-in count within a
// single series. The count is series-scoped, not the participant's global
// experience.
type RankEntry struct {
	ParticipantID string
	Count         int
	FirstCheckin  time.Time
}

// CountBySession folds records into per-session check-in counts.
// PRE: records all belong to one series
// POST: result is identical for any permutation of records
func CountBySession(records []Record) map[string]int {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.SessionID]++
	}
	return counts
}

// CountByParticipant folds records into per-participant check-in counts
// scoped to the series the records came from.
// PRE: records all belong to one series
// POST: result is identical for any permutation of records
func CountByParticipant(records []Record) map[string]int {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.ParticipantID]++
	}
	return counts
}

// Rank builds the full leaderboard: count descending, ties broken by the
// participant's earliest check-in timestamp, then by id. The explicit
// tie-break makes the ranking a pure function of the record set rather than
// of storage ordering.
// PRE: records all belong to one series
// POST: result is identical for any permutation of records
func Rank(records []Record) []RankEntry {
	byParticipant := make(map[string]*RankEntry, len(records))
	for _, r := range records {
		entry, ok := byParticipant[r.ParticipantID]
		if !ok {
			entry = &RankEntry{ParticipantID: r.ParticipantID, FirstCheckin: r.Timestamp}
			byParticipant[r.ParticipantID] = entry
		}
		entry.Count++
		if !r.Timestamp.IsZero() && (entry.FirstCheckin.IsZero() || r.Timestamp.Before(entry.FirstCheckin)) {
			entry.FirstCheckin = r.Timestamp
		}
	}

	ranked := make([]RankEntry, 0, len(byParticipant))
	for _, entry := range byParticipant {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if !ranked[i].FirstCheckin.Equal(ranked[j].FirstCheckin) {
			return ranked[i].FirstCheckin.Before(ranked[j].FirstCheckin)
		}
		return ranked[i].ParticipantID < ranked[j].ParticipantID
	})
	return ranked
}

// Top returns the first n leaderboard entries.
func Top(records []Record, n int) []RankEntry {
	ranked := Rank(records)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// PerfectAttendance returns the ids of participants whose series-scoped count
// equals the total number of sessions. A series with zero sessions yields an
// empty set, never "everyone".
// PRE: totalSessions is the session count for the records' series
// POST: result is identical for any permutation of records; sorted by id
func PerfectAttendance(records []Record, totalSessions int) []string {
	if totalSessions <= 0 {
		return nil
	}
	var perfect []string
	for participantID, count := range CountByParticipant(records) {
		if count == totalSessions {
			perfect = append(perfect, participantID)
		}
	}
	sort.Strings(perfect)
	return perfect
}

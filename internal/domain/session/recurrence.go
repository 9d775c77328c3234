package session

import (
	"fmt"
	"time"
)

// Recurrence bounds.
const (
	MinIntervalDays = 1
	MaxRepeatCount  = 52
)

// Recurrence describes a batch of evenly spaced sessions: a first calendar
// date, a daily check-in window as wall-clock times, and a repeat rule.
// TZOffsetMinutes follows the Date.getTimezoneOffset convention: the number
// of minutes to ADD to local time to reach UTC (positive west of UTC).
type Recurrence struct {
	FirstDate       string // "2006-01-02"
	OpenTime        string // "15:04", wall clock
	CloseTime       string // "15:04", wall clock
	IntervalDays    int
	RepeatCount     int
	TZOffsetMinutes int
	Removed         map[int]bool // occurrence indices excluded before submission
}

// Occurrence is one concrete expanded session window in absolute time.
// StartAt equals OpenAt for recurring batches; no separate start time is
// collected for them.
type Occurrence struct {
	Index   int
	StartAt time.Time
	OpenAt  time.Time
	CloseAt time.Time
}

// Validate checks the recurrence rule bounds.
// PRE: Recurrence struct is populated
// POST: Returns nil if the rule itself is well-formed
func (r *Recurrence) Validate() error {
	if _, err := time.Parse("2006-01-02", r.FirstDate); err != nil {
		return fmt.Errorf("invalid first date %q: %w", r.FirstDate, err)
	}
	if r.IntervalDays < MinIntervalDays {
		return fmt.Errorf("interval must be at least %d day", MinIntervalDays)
	}
	if r.RepeatCount < 1 || r.RepeatCount > MaxRepeatCount {
		return fmt.Errorf("repeat count must be between 1 and %d", MaxRepeatCount)
	}
	return nil
}

// Expand computes the surviving occurrences. Dates are derived from the
// original occurrence index with pure calendar arithmetic (no time-of-day
// component), so the expansion is insensitive to daylight-saving shifts and
// removing an occurrence never shifts the dates of later ones. Occurrences
// whose combined timestamps do not parse are skipped individually. A batch
// with every occurrence removed expands to an empty list, which is not an
// error.
// PRE: Validate() returned nil
// POST: Returned occurrences are in index order with OpenAt <= CloseAt windows
func (r *Recurrence) Expand() []Occurrence {
	first, err := time.Parse("2006-01-02", r.FirstDate)
	if err != nil {
		return nil
	}

	occurrences := make([]Occurrence, 0, r.RepeatCount)
	for i := 0; i < r.RepeatCount; i++ {
		if r.Removed[i] {
			continue
		}
		date := first.AddDate(0, 0, i*r.IntervalDays)

		openAt, err := combineLocal(date, r.OpenTime, r.TZOffsetMinutes)
		if err != nil {
			continue
		}
		closeAt, err := combineLocal(date, r.CloseTime, r.TZOffsetMinutes)
		if err != nil {
			continue
		}

		occurrences = append(occurrences, Occurrence{
			Index:   i,
			StartAt: openAt,
			OpenAt:  openAt,
			CloseAt: closeAt,
		})
	}
	return occurrences
}

// combineLocal joins a calendar date with a wall-clock time and converts the
// resulting local naive timestamp to an absolute instant: local + offset = UTC.
func combineLocal(date time.Time, clock string, tzOffsetMinutes int) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", clock, err)
	}
	local := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return local.Add(time.Duration(tzOffsetMinutes) * time.Minute), nil
}

// Package level maps a participant's check-in experience onto the passport
// level curve: a tight early curve (levels 1-5), then a flat increment.
package level

// Curve constants. Levels 2-5 each cost 2 XP starting from 1; from the level
// 5 ceiling onwards every level costs a flat 3 XP.
const (
	earlyStart = 1 // XP where level 2 begins
	earlyStep  = 2 // XP per level through level 5
	earlyCap   = 5 // last level on the early curve
	lateStep   = 3 // XP per level from level 6 on
	lateStart  = 9 // XP where level 6 begins (level 5 ceiling)
)

// Details describes where an experience total sits on the curve.
type Details struct {
	Level          int
	CurrentLevelAt int // XP at which the current level begins
	NextLevelAt    int // XP at which the next level begins
	Total          int // clamped experience total
}

// FromExperience computes level details for an experience count. Negative
// input is treated as zero.
// PRE: none
// POST: CurrentLevelAt <= Total < NextLevelAt
func FromExperience(experience int) Details {
	total := experience
	if total < 0 {
		total = 0
	}

	if total <= 0 {
		return Details{Level: 1, CurrentLevelAt: 0, NextLevelAt: earlyStart, Total: total}
	}

	lvl := 2 + (total-earlyStart)/earlyStep
	if lvl > earlyCap {
		lvl = earlyCap
	}
	currentAt := earlyStart + (lvl-2)*earlyStep
	nextAt := currentAt + earlyStep

	if lvl == earlyCap && total >= lateStart {
		extra := (total-lateStart)/lateStep + 1
		lvl = earlyCap + extra
		currentAt = lateStart + (extra-1)*lateStep
		nextAt = currentAt + lateStep
	}

	return Details{Level: lvl, CurrentLevelAt: currentAt, NextLevelAt: nextAt, Total: total}
}

// Progress returns the fraction of the current level completed, clamped to
// [0,1]. A non-positive level span counts as complete.
// PRE: Details produced by FromExperience
// POST: 0 <= fraction <= 1
func (d Details) Progress() float64 {
	span := d.NextLevelAt - d.CurrentLevelAt
	if span <= 0 {
		return 1
	}
	fraction := float64(d.Total-d.CurrentLevelAt) / float64(span)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

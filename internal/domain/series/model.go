package series

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 120
)

// Domain errors
var (
	ErrEmptyName    = errors.New("series name cannot be empty")
	ErrEmptyOwner   = errors.New("series must have an owner")
	ErrNoStartDate  = errors.New("series start date must be set")
	ErrNotEditable  = errors.New("series details can only be edited while active")
	ErrNotCreatable = errors.New("sessions can only be created for an active, uncompleted series")
)

// Series represents one recurring program: a named run of sessions with its
// own managers, reward thresholds, and lifecycle flags.
type Series struct {
	ID          string
	Name        string
	Description string // optional markdown shown on the series page
	StartDate   time.Time
	IsActive    bool
	Completed   bool
	CreatedBy   string   // owner email, stored as entered
	Managers    []string // lower-cased, never contains the owner
	Rewards     []int    // ascending deduplicated check-in thresholds
	CreatedAt   time.Time
}

// Validate checks if the Series has valid data.
// PRE: Series struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: Completed implies !IsActive (enforced by NormalizeStatus)
func (s *Series) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return errors.New("series name cannot exceed 120 characters")
	}
	if strings.TrimSpace(s.CreatedBy) == "" {
		return ErrEmptyOwner
	}
	if s.StartDate.IsZero() {
		return ErrNoStartDate
	}
	return nil
}

// NormalizeStatus applies the lifecycle invariant: a completed series is
// never active, whatever combination of flags the caller sent.
// PRE: flags are set to the caller-requested values
// POST: Completed implies IsActive == false
func (s *Series) NormalizeStatus() {
	if s.Completed {
		s.IsActive = false
	}
}

// CanCreateSessions reports whether new sessions may be attached.
// PRE: Series is initialized
// POST: Returns true only for an active, uncompleted series
func (s *Series) CanCreateSessions() bool {
	return s.IsActive && !s.Completed
}

// CanEditDetails reports whether name and start date may change.
// Status flags stay mutable at any time; details only while active.
func (s *Series) CanEditDetails() bool {
	return s.IsActive
}

// Owner returns the owner email lower-cased for comparisons.
func (s *Series) Owner() string {
	return strings.ToLower(strings.TrimSpace(s.CreatedBy))
}

// HasManager reports whether the given email is on the manager roster.
// PRE: email may be any case
// POST: comparison is case-insensitive
func (s *Series) HasManager(email string) bool {
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, m := range s.Managers {
		if m == needle {
			return true
		}
	}
	return false
}

// AddManager adds an email to the roster, lower-cased and deduplicated.
// Adding the owner is a silent no-op.
// PRE: email is non-empty
// POST: roster is sorted, unique, and never contains the owner
func (s *Series) AddManager(email string) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || normalized == s.Owner() {
		return
	}
	if s.HasManager(normalized) {
		return
	}
	s.Managers = append(s.Managers, normalized)
	sort.Strings(s.Managers)
}

// RemoveManager removes an email from the roster. Unknown emails are a no-op.
func (s *Series) RemoveManager(email string) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	kept := s.Managers[:0]
	for _, m := range s.Managers {
		if m != normalized {
			kept = append(kept, m)
		}
	}
	s.Managers = kept
}

// SetRewards replaces the reward thresholds with a cleaned copy: positive
// integers only, deduplicated, ascending. Everything else is dropped.
// PRE: thresholds may contain duplicates, zeros, and negatives
// POST: Rewards is ascending and strictly positive
func (s *Series) SetRewards(thresholds []int) {
	seen := make(map[int]bool, len(thresholds))
	cleaned := make([]int, 0, len(thresholds))
	for _, t := range thresholds {
		if t <= 0 || seen[t] {
			continue
		}
		seen[t] = true
		cleaned = append(cleaned, t)
	}
	sort.Ints(cleaned)
	s.Rewards = cleaned
}

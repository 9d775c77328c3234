package participant

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNicknameLength = 40
)

// Domain errors
var (
	ErrEmptyID       = errors.New("participant id cannot be empty")
	ErrEmptyNickname = errors.New("nickname cannot be empty")
	ErrNicknameLong  = errors.New("nickname cannot exceed 40 characters")
)

// Participant is a scanner of QR codes: a kid with a passport. Participants
// are shared across series; Experience is their global check-in count and
// only ever grows.
type Participant struct {
	ID         string
	Nickname   string // optional display label
	Experience int    // non-negative, monotonically non-decreasing
}

// Validate checks if the Participant has valid data.
// PRE: Participant struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Participant) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if p.Experience < 0 {
		return errors.New("experience cannot be negative")
	}
	return nil
}

// SetNickname trims and applies a new nickname. Empty nicknames are rejected
// so a stray blank submit never clears a label.
// PRE: nickname is caller input
// POST: Nickname is the trimmed value
func (p *Participant) SetNickname(nickname string) error {
	trimmed := strings.TrimSpace(nickname)
	if trimmed == "" {
		return ErrEmptyNickname
	}
	if len(trimmed) > MaxNicknameLength {
		return ErrNicknameLong
	}
	p.Nickname = trimmed
	return nil
}

// RecordCheckIn bumps the global experience count.
// PRE: Participant is initialized
// POST: Experience increases by exactly one
func (p *Participant) RecordCheckIn() {
	p.Experience++
}

// DisplayName returns the nickname with a short id suffix, or the raw id
// when no nickname is set. Matches the label used in exports and rosters.
func (p *Participant) DisplayName() string {
	nickname := strings.TrimSpace(p.Nickname)
	if nickname == "" {
		return p.ID
	}
	suffix := p.ID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return nickname + " (" + suffix + ")"
}

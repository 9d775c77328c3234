// Package authz decides who may operate on a series. The platform admin set
// is injected at construction from configuration; nothing here reads ambient
// process state.
package authz

import (
	"strings"

	"passport/internal/domain/series"
)

// Gate answers authorization questions for series management. Roles, most to
// least privileged: platform admin > owner > manager > everyone else.
type Gate struct {
	admins map[string]bool
}

// NewGate builds a Gate from the configured admin identities. Entries are
// trimmed and lower-cased; blanks are dropped.
// PRE: adminEmails comes from configuration
// POST: Gate is ready for concurrent use (read-only after construction)
func NewGate(adminEmails []string) *Gate {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		normalized := strings.ToLower(strings.TrimSpace(email))
		if normalized != "" {
			admins[normalized] = true
		}
	}
	return &Gate{admins: admins}
}

// IsAdmin reports whether the identity is a platform admin. An empty
// identity is never an admin, and an empty allow-set admits nobody.
func (g *Gate) IsAdmin(email string) bool {
	if email == "" {
		return false
	}
	return g.admins[strings.ToLower(strings.TrimSpace(email))]
}

// CanManage reports whether the identity may manage the series: platform
// admin, owner, or roster manager. Comparisons are case-insensitive.
// PRE: s is the resolved target series
// POST: no side effects
func (g *Gate) CanManage(email string, s *series.Series) bool {
	if email == "" || s == nil {
		return false
	}
	if g.IsAdmin(email) {
		return true
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == s.Owner() {
		return true
	}
	return s.HasManager(normalized)
}

// CanEditRoster reports whether the identity may change the manager roster.
// Only the owner or a platform admin may grant or revoke access; an ordinary
// manager cannot.
func (g *Gate) CanEditRoster(email string, s *series.Series) bool {
	if email == "" || s == nil {
		return false
	}
	if g.IsAdmin(email) {
		return true
	}
	return strings.ToLower(strings.TrimSpace(email)) == s.Owner()
}

// CanView reports whether the identity may see the series at all: admins see
// everything, everyone else only what they own or manage.
func (g *Gate) CanView(email string, s *series.Series) bool {
	return g.CanManage(email, s)
}

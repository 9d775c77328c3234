// Package dashboard drives the live session dashboard: two bounded refresh
// streams (session window state and leaderboard) feeding one mutex-guarded
// view, modeled as an explicit Idle -> Polling -> Paused state machine.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"passport/internal/application/projections"
)

// Poller states.
const (
	StateIdle    = "IDLE"
	StatePolling = "POLLING"
	StatePaused  = "PAUSED"
)

// Defaults applied by New when the config leaves a field zero.
const (
	DefaultSessionInterval     = 15 * time.Second
	DefaultLeaderboardInterval = 60 * time.Second
	DefaultBudget              = 16
)

// Config bounds the two refresh streams. A poll budget counts ticks, not
// failures: a failed refresh is skipped silently and still spends one.
type Config struct {
	SessionInterval     time.Duration
	LeaderboardInterval time.Duration
	SessionBudget       int
	LeaderboardBudget   int
}

// Deps holds the two fetchers behind the streams. Each is called at most
// once at a time per stream.
type Deps struct {
	FetchSession     func(ctx context.Context) (projections.GetSessionDetailResult, error)
	FetchLeaderboard func(ctx context.Context) (projections.GetLeaderboardResult, error)
}

// Snapshot is a copy of the poller's view state at one instant.
type Snapshot struct {
	State             string
	SessionBudget     int
	LeaderboardBudget int
	Session           projections.GetSessionDetailResult
	Leaderboard       projections.GetLeaderboardResult
	SessionFresh      bool // at least one session refresh has landed
	LeaderboardFresh  bool
}

// Poller refreshes the dashboard view until its budgets run out, then sits
// Paused until Resume. The two streams never block each other; each
// overwrites only its own slice of the view.
type Poller struct {
	cfg  Config
	deps Deps

	mu                sync.Mutex
	state             string
	sessionBudget     int
	leaderboardBudget int
	session           projections.GetSessionDetailResult
	leaderboard       projections.GetLeaderboardResult
	sessionFresh      bool
	leaderboardFresh  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds an Idle poller. Zero config fields take the defaults.
func New(cfg Config, deps Deps) *Poller {
	if cfg.SessionInterval <= 0 {
		cfg.SessionInterval = DefaultSessionInterval
	}
	if cfg.LeaderboardInterval <= 0 {
		cfg.LeaderboardInterval = DefaultLeaderboardInterval
	}
	if cfg.SessionBudget <= 0 {
		cfg.SessionBudget = DefaultBudget
	}
	if cfg.LeaderboardBudget <= 0 {
		cfg.LeaderboardBudget = DefaultBudget
	}
	return &Poller{
		cfg:               cfg,
		deps:              deps,
		state:             StateIdle,
		sessionBudget:     cfg.SessionBudget,
		leaderboardBudget: cfg.LeaderboardBudget,
	}
}

// Start moves the poller to Polling and launches both timer loops. Idempotent
// while running. Each loop fires an immediate first tick so the view is
// populated without waiting a full interval.
// PRE: deps fetchers are non-nil
// POST: state is POLLING; loops run until Stop or budget exhaustion
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.state = StatePolling
	p.mu.Unlock()

	p.wg.Add(2)
	go p.loop(ctx, p.cfg.SessionInterval, p.TickSession)
	go p.loop(ctx, p.cfg.LeaderboardInterval, p.TickLeaderboard)
}

// Stop cancels both loops and returns the poller to Idle. Safe to call more
// than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.state = StateIdle
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// Resume resets both budgets and re-enters Polling. Paused is only left by
// this explicit user action; an Idle poller stays Idle.
// POST: unless Idle, budgets equal their configured values and state is POLLING
func (p *Poller) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateIdle {
		return
	}
	p.sessionBudget = p.cfg.SessionBudget
	p.leaderboardBudget = p.cfg.LeaderboardBudget
	p.state = StatePolling
}

// Snapshot returns a copy of the current view state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		State:             p.state,
		SessionBudget:     p.sessionBudget,
		LeaderboardBudget: p.leaderboardBudget,
		Session:           p.session,
		Leaderboard:       p.leaderboard,
		SessionFresh:      p.sessionFresh,
		LeaderboardFresh:  p.leaderboardFresh,
	}
}

func (p *Poller) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer p.wg.Done()
	tick(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The fetch inside tick completed before this tick fires, so
			// there is never more than one outstanding request per stream.
			tick(ctx)
		}
	}
}

// TickSession runs one session refresh: spend one poll, fetch, overwrite the
// session slice of the view. Exported so a caller-driven loop (or test) can
// step the machine without timers.
// POST: session budget decreases by one when the tick was spent
func (p *Poller) TickSession(ctx context.Context) {
	if !p.spend(&p.sessionBudget) {
		return
	}
	result, err := p.deps.FetchSession(ctx)
	if err != nil {
		// Skipped, not retried: the spent poll is gone either way.
		slog.Debug("dashboard_poll_failed", "stream", "session", "error", err)
		return
	}
	p.mu.Lock()
	p.session = result
	p.sessionFresh = true
	p.mu.Unlock()
}

// TickLeaderboard runs one leaderboard refresh against its own budget.
func (p *Poller) TickLeaderboard(ctx context.Context) {
	if !p.spend(&p.leaderboardBudget) {
		return
	}
	result, err := p.deps.FetchLeaderboard(ctx)
	if err != nil {
		slog.Debug("dashboard_poll_failed", "stream", "leaderboard", "error", err)
		return
	}
	p.mu.Lock()
	p.leaderboard = result
	p.leaderboardFresh = true
	p.mu.Unlock()
}

// spend consumes one poll from the given budget. It refuses outside Polling
// and flips the machine to Paused once both budgets hit zero.
func (p *Poller) spend(budget *int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePolling || *budget <= 0 {
		return false
	}
	*budget--
	if p.sessionBudget <= 0 && p.leaderboardBudget <= 0 {
		p.state = StatePaused
	}
	return true
}

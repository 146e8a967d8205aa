// Package phaseclock tracks, per active session, the current phase and its
// absolute deadline derived from the session's configured durations. It does
// pure bookkeeping; resolving anything on expiry is the orchestrator's job.
package phaseclock

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/LaurentStar/hourly-coup/go/internal/game"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// Entry is one session's phase/deadline record.
type Entry struct {
	Phase    models.GamePhase
	Deadline time.Time
}

// Clock tracks phase deadlines for many sessions. Safe for concurrent use.
type Clock struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
}

// New returns a Clock driven by clk. Pass clockwork.NewRealClock() in
// production and a fake clock in tests.
func New(clk clockwork.Clock) *Clock {
	return &Clock{
		clock:   clk,
		entries: make(map[uuid.UUID]Entry),
	}
}

// StartPhase records phase for the session and computes its deadline from
// the session's configured duration. A non-positive duration is an
// ErrInvalidConfiguration.
func (c *Clock) StartPhase(session *models.Session, phase models.GamePhase) (time.Time, error) {
	d := session.Durations.For(phase)
	if d <= 0 {
		return time.Time{}, fmt.Errorf("%w: phase %s has duration %s", game.ErrInvalidConfiguration, phase, d)
	}
	deadline := c.clock.Now().Add(d)
	c.mu.Lock()
	c.entries[session.ID] = Entry{Phase: phase, Deadline: deadline}
	c.mu.Unlock()
	return deadline, nil
}

// TimeRemaining returns the remaining duration of the session's current
// phase. Expired is expressed as zero, never as a negative duration or an
// error. An untracked session also reports zero.
func (c *Clock) TimeRemaining(sessionID uuid.UUID) time.Duration {
	c.mu.RLock()
	e, ok := c.entries[sessionID]
	c.mu.RUnlock()
	if !ok {
		return 0
	}
	remaining := e.Deadline.Sub(c.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Current returns the tracked phase entry for a session, if any.
func (c *Clock) Current(sessionID uuid.UUID) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[sessionID]
	return e, ok
}

// Forget drops a session's entry. Called when a session ends.
func (c *Clock) Forget(sessionID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, sessionID)
	c.mu.Unlock()
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus defines the lifecycle status of a game session.
type SessionStatus string

const (
	SessionStatusWaiting SessionStatus = "WAITING"
	SessionStatusActive  SessionStatus = "ACTIVE"
	SessionStatusPaused  SessionStatus = "PAUSED"
	SessionStatusEnded   SessionStatus = "ENDED"
)

// GamePhase defines the phases within one hourly turn.
//
// Ending is terminal per game: it is entered when the game-end condition
// holds and is not part of the regular turn cycle.
type GamePhase string

const (
	PhaseAction          GamePhase = "ACTION"
	PhaseLockoutAction   GamePhase = "LOCKOUT_ACTION"
	PhaseReaction        GamePhase = "REACTION"
	PhaseLockoutReaction GamePhase = "LOCKOUT_REACTION"
	PhaseBroadcast       GamePhase = "BROADCAST"
	PhaseEnding          GamePhase = "ENDING"
)

// PhaseOrder is the repeating turn cycle. Ending is deliberately absent.
var PhaseOrder = []GamePhase{
	PhaseAction,
	PhaseLockoutAction,
	PhaseReaction,
	PhaseLockoutReaction,
	PhaseBroadcast,
}

// NextPhase returns the phase following p in the turn cycle and whether the
// step wraps back to the action phase (i.e. begins a new turn).
func NextPhase(p GamePhase) (next GamePhase, wrapped bool) {
	for i, phase := range PhaseOrder {
		if phase == p {
			ni := (i + 1) % len(PhaseOrder)
			return PhaseOrder[ni], ni == 0
		}
	}
	return PhaseAction, false
}

// PhaseDurations holds the six per-phase durations, in minutes.
type PhaseDurations struct {
	Action          int `json:"action" yaml:"action"`
	LockoutAction   int `json:"lockout_action" yaml:"lockout_action"`
	Reaction        int `json:"reaction" yaml:"reaction"`
	LockoutReaction int `json:"lockout_reaction" yaml:"lockout_reaction"`
	Broadcast       int `json:"broadcast" yaml:"broadcast"`
	Ending          int `json:"ending" yaml:"ending"`
}

// DefaultPhaseDurations returns the documented defaults: 50/10/20/10/1/5.
func DefaultPhaseDurations() PhaseDurations {
	return PhaseDurations{
		Action:          50,
		LockoutAction:   10,
		Reaction:        20,
		LockoutReaction: 10,
		Broadcast:       1,
		Ending:          5,
	}
}

// For returns the configured duration for a phase.
func (d PhaseDurations) For(p GamePhase) time.Duration {
	minutes := map[GamePhase]int{
		PhaseAction:          d.Action,
		PhaseLockoutAction:   d.LockoutAction,
		PhaseReaction:        d.Reaction,
		PhaseLockoutReaction: d.LockoutReaction,
		PhaseBroadcast:       d.Broadcast,
		PhaseEnding:          d.Ending,
	}[p]
	return time.Duration(minutes) * time.Minute
}

// Validate checks that every phase duration is positive.
func (d PhaseDurations) Validate() bool {
	return d.Action > 0 && d.LockoutAction > 0 && d.Reaction > 0 &&
		d.LockoutReaction > 0 && d.Broadcast > 0 && d.Ending > 0
}

// MaxRematches is how many times a roster may rematch before the session is
// forced to complete.
const MaxRematches = 3

// Session represents one game session and its phase/timer lifecycle.
type Session struct {
	ID              uuid.UUID      `json:"id"`
	Name            string         `json:"name"`
	Status          SessionStatus  `json:"status"`
	CurrentPhase    GamePhase      `json:"current_phase"`
	PhaseEndTime    *time.Time     `json:"phase_end_time,omitempty"`
	TurnNumber      int            `json:"turn_number"`
	TurnLimit       int            `json:"turn_limit"` // 0 = unlimited
	MaxPlayers      int            `json:"max_players"`
	Durations       PhaseDurations `json:"durations"`
	UpgradesEnabled bool           `json:"upgrades_enabled"`
	RematchCount    int            `json:"rematch_count"`
	Winners         []string       `json:"winners"`
	DeckState       []CardType     `json:"deck_state,omitempty"`
	RevealedCards   []CardType     `json:"revealed_cards"`
	CreatedAt       time.Time      `json:"created_at"`
}

// IsActive reports whether the session is currently being driven by the
// phase scheduler.
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// HasReachedTurnLimit reports whether the configured turn limit is exhausted.
func (s *Session) HasReachedTurnLimit() bool {
	if s.TurnLimit == 0 {
		return false
	}
	return s.TurnNumber > s.TurnLimit
}

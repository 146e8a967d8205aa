// Package events holds the payload types shared between the game services,
// the outbox worker and the gateway.
package events

import (
	"time"

	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// Event type names carried on the outbox and the broadcast subjects.
const (
	TypeSessionCreated = "SessionCreated"
	TypePlayerJoined   = "PlayerJoined"
	TypeGameStarted    = "GameStarted"
	TypePhaseChanged   = "PhaseChanged"
	TypeTurnResolved   = "TurnResolved"
	TypeGameEnded      = "GameEnded"
	TypeSessionPaused  = "SessionPaused"
	TypeSessionResumed = "SessionResumed"
	TypeRematchStarted = "RematchStarted"
)

// SessionCreatedPayload is the payload for a SessionCreated event
type SessionCreatedPayload struct {
	SessionID  string    `json:"session_id"`
	Name       string    `json:"name"`
	MaxPlayers int       `json:"max_players"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlayerJoinedPayload is the payload for a PlayerJoined event
type PlayerJoinedPayload struct {
	SessionID   string    `json:"session_id"`
	PlayerName  string    `json:"player_name"`
	JoinSeq     int       `json:"join_seq"`
	PlayerCount int       `json:"player_count"`
	JoinedAt    time.Time `json:"joined_at"`
}

// GameStartedPayload is the payload for a GameStarted event
type GameStartedPayload struct {
	SessionID    string    `json:"session_id"`
	Players      []string  `json:"players"`
	TurnNumber   int       `json:"turn_number"`
	PhaseEndTime time.Time `json:"phase_end_time"`
	StartedAt    time.Time `json:"started_at"`
}

// PhaseChangedPayload is the payload for a PhaseChanged event
type PhaseChangedPayload struct {
	SessionID    string           `json:"session_id"`
	Phase        models.GamePhase `json:"phase"`
	TurnNumber   int              `json:"turn_number"`
	PhaseEndTime time.Time        `json:"phase_end_time"`
	ChangedAt    time.Time        `json:"changed_at"`
}

// TurnResolvedPayload is the payload for a TurnResolved event. It carries
// only public information: resolved outcomes and revealed cards.
type TurnResolvedPayload struct {
	SessionID     string                `json:"session_id"`
	TurnNumber    int                   `json:"turn_number"`
	ActionResults []models.ActionResult `json:"action_results"`
	Eliminated    []string              `json:"eliminated"`
	Summary       string                `json:"summary"`
	ResolvedAt    time.Time             `json:"resolved_at"`
}

// GameEndedPayload is the payload for a GameEnded event
type GameEndedPayload struct {
	SessionID  string    `json:"session_id"`
	Winners    []string  `json:"winners"`
	TurnNumber int       `json:"turn_number"`
	EndedAt    time.Time `json:"ended_at"`
}

// SessionPausedPayload is the payload for a SessionPaused event
type SessionPausedPayload struct {
	SessionID string    `json:"session_id"`
	PausedAt  time.Time `json:"paused_at"`
	Reason    string    `json:"reason"`
}

// SessionResumedPayload is the payload for a SessionResumed event
type SessionResumedPayload struct {
	SessionID    string    `json:"session_id"`
	PhaseEndTime time.Time `json:"phase_end_time"`
	ResumedAt    time.Time `json:"resumed_at"`
}

// RematchStartedPayload is the payload for a RematchStarted event
type RematchStartedPayload struct {
	SessionID         string    `json:"session_id"`
	PreviousSessionID string    `json:"previous_session_id"`
	RematchCount      int       `json:"rematch_count"`
	Players           []string  `json:"players"`
	StartedAt         time.Time `json:"started_at"`
}

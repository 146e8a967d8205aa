package models

import (
	"time"

	"github.com/google/uuid"
)

// ResolutionOutcome classifies how a single action resolved.
type ResolutionOutcome string

const (
	OutcomeSuccess        ResolutionOutcome = "SUCCESS"
	OutcomeBlocked        ResolutionOutcome = "BLOCKED"
	OutcomeChallengedWon  ResolutionOutcome = "CHALLENGED_WON"
	OutcomeChallengedLost ResolutionOutcome = "CHALLENGED_LOST"
	OutcomeFailed         ResolutionOutcome = "FAILED"
)

// ActionResult is the structured effect summary for one resolved action.
type ActionResult struct {
	Actor            string            `json:"actor"`
	Action           ActionType        `json:"action"`
	Target           string            `json:"target,omitempty"`
	Outcome          ResolutionOutcome `json:"outcome"`
	CardsRevealed    []CardType        `json:"cards_revealed,omitempty"`
	CoinsTransferred int               `json:"coins_transferred"`
	Description      string            `json:"description"`
}

// TurnResult records the outcome of one resolved turn. Immutable once
// created; exactly one exists per (session, turn).
type TurnResult struct {
	SessionID     uuid.UUID      `json:"session_id"`
	TurnNumber    int            `json:"turn_number"`
	ActionResults []ActionResult `json:"action_results"`
	Eliminated    []string       `json:"eliminated"`
	Summary       string         `json:"summary"`
	CreatedAt     time.Time      `json:"created_at"`
}

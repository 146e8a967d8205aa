package models

import (
	"time"

	"github.com/google/uuid"
)

// ReactionType classifies a player's reaction to a pending action.
type ReactionType string

const (
	ReactionChallenge ReactionType = "CHALLENGE"
	ReactionBlock     ReactionType = "BLOCK"
	ReactionPass      ReactionType = "PASS"
)

// Reaction is a declared-but-unresolved challenge/block/pass against a
// pending action. A challenge of a block is an ordinary Reaction whose
// Actor field names the blocker rather than the original actor.
type Reaction struct {
	ID         uuid.UUID    `json:"id"`
	SessionID  uuid.UUID    `json:"session_id"`
	TurnNumber int          `json:"turn_number"`
	Reactor    string       `json:"reactor"`
	// Actor is the player whose claim is being reacted to.
	Actor        string       `json:"actor"`
	TargetAction ActionType   `json:"target_action"`
	Type         ReactionType `json:"type"`
	BlockRole    CardType     `json:"block_role,omitempty"`
	IsLocked     bool         `json:"is_locked"`
	IsResolved   bool         `json:"is_resolved"`
	CreatedAt    time.Time    `json:"created_at"`
}

// IsChallenge reports whether the reaction is a challenge.
func (r *Reaction) IsChallenge() bool { return r.Type == ReactionChallenge }

// IsBlock reports whether the reaction is a block.
func (r *Reaction) IsBlock() bool { return r.Type == ReactionBlock }

// ReactionTemplate is a conditional reaction such as "challenge any Duke
// claim". Templates are expanded into concrete Reaction rows against all
// matching visible pending actions when the reaction phase begins.
type ReactionTemplate struct {
	ID        uuid.UUID    `json:"id"`
	SessionID uuid.UUID    `json:"session_id"`
	Reactor   string       `json:"reactor"`
	Type      ReactionType `json:"type"`
	// MatchRole matches actions whose claimed role equals this card.
	// Empty means match on MatchAction instead.
	MatchRole CardType `json:"match_role,omitempty"`
	// MatchAction matches actions of this exact type.
	MatchAction ActionType `json:"match_action,omitempty"`
	// BlockRole is the claim used when Type is BLOCK.
	BlockRole CardType  `json:"block_role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Matches reports whether the template applies to the pending action.
func (t *ReactionTemplate) Matches(pa *PendingAction) bool {
	if t.MatchRole != "" {
		return ActionRoles[pa.Type] == t.MatchRole
	}
	if t.MatchAction != "" {
		return pa.Type == t.MatchAction
	}
	return false
}

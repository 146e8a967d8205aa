package intake

import (
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// DeclareActionRequest is a player's (re)declaration of their move for the
// current turn.
type DeclareActionRequest struct {
	PlayerName  string                `json:"player_name"`
	Action      models.ActionType     `json:"action"`
	Target      string                `json:"target,omitempty"`
	ClaimedRole models.CardType       `json:"claimed_role,omitempty"`
	Upgraded    bool                  `json:"upgraded"`
	Upgrade     *models.UpgradeDetail `json:"upgrade,omitempty"`
}

// DeclareReactionRequest is a player's challenge, block or pass against a
// specific actor's visible pending action.
type DeclareReactionRequest struct {
	PlayerName string              `json:"player_name"`
	Actor      string              `json:"actor"`
	Type       models.ReactionType `json:"type"`
	BlockRole  models.CardType     `json:"block_role,omitempty"`
}

// SetLossPriorityRequest records which roles the player prefers to reveal
// first when forced to lose influence.
type SetLossPriorityRequest struct {
	PlayerName string            `json:"player_name"`
	Priority   []models.CardType `json:"priority"`
}

// DeclareTemplateRequest registers a conditional reaction ahead of time, to
// be expanded into concrete reactions when the reaction window opens.
type DeclareTemplateRequest struct {
	PlayerName  string              `json:"player_name"`
	Type        models.ReactionType `json:"type"`
	MatchRole   models.CardType     `json:"match_role,omitempty"`
	MatchAction models.ActionType   `json:"match_action,omitempty"`
	BlockRole   models.CardType     `json:"block_role,omitempty"`
}

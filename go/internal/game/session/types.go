package session

import (
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// Session size bounds. The 15-card deck deals two cards per seat.
const (
	MinPlayers = 2
	MaxPlayers = 6
)

// CreateSessionRequest configures a new session.
type CreateSessionRequest struct {
	Name            string                 `json:"name"`
	MaxPlayers      int                    `json:"max_players"`
	TurnLimit       int                    `json:"turn_limit"`
	UpgradesEnabled bool                   `json:"upgrades_enabled"`
	Durations       *models.PhaseDurations `json:"durations,omitempty"`
}

// JoinSessionRequest adds a player to a waiting session.
type JoinSessionRequest struct {
	PlayerName string `json:"player_name"`
}

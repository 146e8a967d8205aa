package resolve

import (
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// TurnSnapshot is the frozen input to a resolution pass: the session, every
// player's state, and the locked reaction set for the turn. The resolver
// never reads anything outside the snapshot, which is what makes retries
// after partial failure safe.
type TurnSnapshot struct {
	Session   models.Session
	Players   []models.PlayerGameState
	Reactions []models.Reaction
}

// Resolution is the complete output of resolving one turn. Either all of it
// is persisted or none of it is.
type Resolution struct {
	Result models.TurnResult
	// Players carries the post-resolution state of every player, in the
	// snapshot's join order, with pending actions cleared.
	Players []models.PlayerGameState
	// Deck and RevealedCards are the session's post-resolution card state.
	Deck          []models.CardType
	RevealedCards []models.CardType
	// GameOver is set when at most one player remains alive.
	GameOver bool
	Winners  []string
}

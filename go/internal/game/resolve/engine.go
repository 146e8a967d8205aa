package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LaurentStar/hourly-coup/go/internal/game"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// Repository persists turn results and the post-resolution state. GetTurnResult
// reports game.ErrResolutionFailure-free lookups; a missing result returns
// (nil, nil).
type Repository interface {
	GetTurnResult(ctx context.Context, sessionID uuid.UUID, turnNumber int) (*models.TurnResult, error)
	// SaveResolution writes the turn result and updated player/session state
	// in one transaction. It must return game.ErrPersistenceConflict when a
	// result for the same (session, turn) was written concurrently.
	SaveResolution(ctx context.Context, res *Resolution) error
}

// Engine resolves turns against persistent state.
type Engine struct {
	repo Repository
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// ResolveTurn resolves the snapshot's turn and persists the outcome. Calling
// it again for a turn that already has a persisted result returns that result
// unchanged, so retries and duplicate timer fires are safe.
func (e *Engine) ResolveTurn(ctx context.Context, snap TurnSnapshot) (*Resolution, error) {
	existing, err := e.repo.GetTurnResult(ctx, snap.Session.ID, snap.Session.TurnNumber)
	if err != nil {
		return nil, fmt.Errorf("check existing turn result: %w", err)
	}
	if existing != nil {
		log.Debug().
			Str("session_id", snap.Session.ID.String()).
			Int("turn", snap.Session.TurnNumber).
			Msg("turn already resolved, returning stored result")
		return &Resolution{Result: *existing, Players: snap.Players}, nil
	}

	res, err := Resolve(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrResolutionFailure, err)
	}

	if err := e.repo.SaveResolution(ctx, res); err != nil {
		if errors.Is(err, game.ErrPersistenceConflict) {
			// Another writer won the race. Their result is identical
			// given the same snapshot, so hand it back.
			stored, lookupErr := e.repo.GetTurnResult(ctx, snap.Session.ID, snap.Session.TurnNumber)
			if lookupErr == nil && stored != nil {
				return &Resolution{Result: *stored, Players: snap.Players}, nil
			}
		}
		return nil, fmt.Errorf("save resolution: %w", err)
	}

	log.Info().
		Str("session_id", snap.Session.ID.String()).
		Int("turn", snap.Session.TurnNumber).
		Int("actions", len(res.Result.ActionResults)).
		Strs("eliminated", res.Result.Eliminated).
		Bool("game_over", res.GameOver).
		Msg("turn resolved")
	return res, nil
}

// Winners ranks players for an ending that was not decided by elimination:
// most cards, then most coins, with every tied leader named a winner.
func Winners(players []models.PlayerGameState) []string {
	var alive []models.PlayerGameState
	for _, p := range players {
		if p.IsAlive() {
			alive = append(alive, p)
		}
	}
	if len(alive) == 0 {
		return nil
	}
	if len(alive) == 1 {
		return []string{alive[0].PlayerName}
	}
	sort.SliceStable(alive, func(i, j int) bool {
		if alive[i].CardCount() != alive[j].CardCount() {
			return alive[i].CardCount() > alive[j].CardCount()
		}
		return alive[i].Coins > alive[j].Coins
	})
	best := alive[0]
	var winners []string
	for _, p := range alive {
		if p.CardCount() == best.CardCount() && p.Coins == best.Coins {
			winners = append(winners, p.PlayerName)
		}
	}
	return winners
}

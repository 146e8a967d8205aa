// Package agents drives automated players. The scheduler calls the runner
// whenever a declaration window opens; the runner looks up each bound
// player's personality and submits its decision through the normal intake
// path, so agent moves obey exactly the rules human moves do.
package agents

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LaurentStar/hourly-coup/go/internal/agents/base"
	"github.com/LaurentStar/hourly-coup/go/internal/game/intake"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

const defaultDecisionTimeout = 10 * time.Second

// Config binds player names to personality keys. Loaded from YAML alongside
// the rest of the server configuration.
type Config struct {
	// Timeout bounds a single personality decision. Zero means the default.
	Timeout time.Duration `yaml:"timeout"`
	// Players maps a seated player name to a registered personality key.
	Players map[string]string `yaml:"players"`
}

// SessionReader is the read-only slice of the session layer the runner needs.
type SessionReader interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListPlayers(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerGameState, error)
}

// Declarer is the intake surface the runner submits through.
type Declarer interface {
	DeclareAction(ctx context.Context, sessionID uuid.UUID, req intake.DeclareActionRequest) (*models.PlayerGameState, error)
	DeclareReaction(ctx context.Context, sessionID uuid.UUID, req intake.DeclareReactionRequest) (*models.Reaction, error)
}

type Runner struct {
	sessions SessionReader
	declarer Declarer
	bindings map[string]string
	timeout  time.Duration
}

// NewRunner creates a runner over the given bindings. Personality keys are
// resolved lazily so registration order between packages does not matter.
func NewRunner(sessions SessionReader, declarer Declarer, cfg Config) *Runner {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDecisionTimeout
	}
	return &Runner{
		sessions: sessions,
		declarer: declarer,
		bindings: cfg.Players,
		timeout:  timeout,
	}
}

// RunSession submits decisions for every bound, living player in the
// session's current window. Failures are logged and swallowed: an agent
// that cannot decide simply lets the lockout defaults take over, the same
// as a player who slept through the hour.
func (r *Runner) RunSession(ctx context.Context, sessionID uuid.UUID) {
	if len(r.bindings) == 0 {
		return
	}

	session, err := r.sessions.GetSession(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("agents: failed to load session")
		return
	}
	if !session.IsActive() {
		return
	}
	if session.CurrentPhase != models.PhaseAction && session.CurrentPhase != models.PhaseReaction {
		return
	}

	players, err := r.sessions.ListPlayers(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("agents: failed to list players")
		return
	}
	sort.Slice(players, func(i, j int) bool { return players[i].JoinSeq < players[j].JoinSeq })

	for i := range players {
		p := players[i]
		key, bound := r.bindings[p.PlayerName]
		if !bound || !p.IsAlive() {
			continue
		}
		decider, err := base.GetPersonality(key)
		if err != nil {
			log.Error().Err(err).Str("player", p.PlayerName).Msg("agents: unknown personality")
			continue
		}

		view := buildView(*session, p, players)

		switch session.CurrentPhase {
		case models.PhaseAction:
			r.runAction(ctx, sessionID, p.PlayerName, decider, view)
		case models.PhaseReaction:
			r.runReaction(ctx, sessionID, p.PlayerName, decider, view)
		}
	}
}

func (r *Runner) runAction(ctx context.Context, sessionID uuid.UUID, player string, decider base.Decider, view base.View) {
	dctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	decision, err := decider.DecideAction(dctx, view)
	if err != nil || decision == nil {
		log.Warn().Err(err).Str("player", player).Str("session_id", sessionID.String()).Msg("agents: no action decision")
		return
	}

	if _, err := r.declarer.DeclareAction(ctx, sessionID, intake.DeclareActionRequest{
		PlayerName:  player,
		Action:      decision.Action,
		Target:      decision.Target,
		ClaimedRole: decision.ClaimedRole,
	}); err != nil {
		log.Warn().
			Err(err).
			Str("player", player).
			Str("action", string(decision.Action)).
			Str("session_id", sessionID.String()).
			Msg("agents: action declaration rejected")
		return
	}

	if line := decider.GenerateChat(view); line != "" {
		log.Info().Str("player", player).Str("session_id", sessionID.String()).Str("chat", line).Msg("agents: table talk")
	}
}

func (r *Runner) runReaction(ctx context.Context, sessionID uuid.UUID, player string, decider base.Decider, view base.View) {
	dctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	decision, err := decider.DecideReaction(dctx, view)
	if err != nil {
		log.Warn().Err(err).Str("player", player).Str("session_id", sessionID.String()).Msg("agents: no reaction decision")
		return
	}
	if decision == nil {
		return
	}

	if _, err := r.declarer.DeclareReaction(ctx, sessionID, intake.DeclareReactionRequest{
		PlayerName: player,
		Actor:      decision.Actor,
		Type:       decision.Type,
		BlockRole:  decision.BlockRole,
	}); err != nil {
		log.Warn().
			Err(err).
			Str("player", player).
			Str("actor", decision.Actor).
			Str("type", string(decision.Type)).
			Str("session_id", sessionID.String()).
			Msg("agents: reaction declaration rejected")
	}
}

// buildView assembles the persona's view: its own full state, everyone
// else's public state, and the visible declarations other players await
// reactions on.
func buildView(session models.Session, self models.PlayerGameState, players []models.PlayerGameState) base.View {
	view := base.View{Session: session, Self: self}
	for i := range players {
		p := players[i]
		if p.PlayerName == self.PlayerName {
			continue
		}
		view.Opponents = append(view.Opponents, base.Opponent{
			Name:      p.PlayerName,
			Coins:     p.Coins,
			CardCount: p.CardCount(),
			Alive:     p.IsAlive(),
		})
		if p.Pending != nil && p.Pending.AwaitingReaction {
			view.Declared = append(view.Declared, p.Pending.Visible())
		}
	}
	return view
}

// Package intake accepts and validates action and reaction declarations
// during their open phases. Declarations are overwrite-in-place: only the
// latest per player per window survives to resolution.
package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/LaurentStar/hourly-coup/go/internal/game"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// Repository defines what the intake app layer needs from persistence.
// Transact runs fn against a transaction-scoped view of the same repository;
// LockSession takes the session's row lock for the rest of that transaction,
// serializing declarations against each other and against phase transitions.
type Repository interface {
	Transact(ctx context.Context, fn func(Repository) error) error
	LockSession(ctx context.Context, id uuid.UUID) error

	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetPlayerState(ctx context.Context, sessionID uuid.UUID, playerName string) (*models.PlayerGameState, error)
	ListPlayerStates(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerGameState, error)
	UpdatePlayerState(ctx context.Context, player *models.PlayerGameState) error

	GetReaction(ctx context.Context, sessionID uuid.UUID, turn int, reactor, actor string) (*models.Reaction, error)
	UpsertReaction(ctx context.Context, reaction *models.Reaction) error
	ListReactions(ctx context.Context, sessionID uuid.UUID, turn int) ([]models.Reaction, error)
	LockReactions(ctx context.Context, sessionID uuid.UUID, turn int) error

	CreateReactionTemplate(ctx context.Context, tmpl *models.ReactionTemplate) error
	ListReactionTemplates(ctx context.Context, sessionID uuid.UUID) ([]models.ReactionTemplate, error)
	DeleteReactionTemplates(ctx context.Context, sessionID uuid.UUID) error
}

// App handles action and reaction intake business logic.
type App struct {
	repo  Repository
	clock clockwork.Clock
}

// NewApp creates a new intake App.
func NewApp(repo Repository, clock clockwork.Clock) *App {
	return &App{repo: repo, clock: clock}
}

// DeclareAction records or replaces the player's move for the current turn.
// Up-front costs are deducted immediately; replacing a costed declaration
// refunds the old cost before charging the new one. The whole declaration
// runs under the session row lock so a concurrent phase transition or a
// second declaration cannot interleave with the read-check-charge sequence.
func (a *App) DeclareAction(ctx context.Context, sessionID uuid.UUID, req DeclareActionRequest) (*models.PlayerGameState, error) {
	var player *models.PlayerGameState
	err := a.repo.Transact(ctx, func(repo Repository) error {
		var err error
		player, err = a.declareAction(ctx, repo, sessionID, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("player", req.PlayerName).
		Str("action", string(req.Action)).
		Str("target", req.Target).
		Bool("upgraded", req.Upgraded).
		Msg("action declared")
	return player, nil
}

func (a *App) declareAction(ctx context.Context, repo Repository, sessionID uuid.UUID, req DeclareActionRequest) (*models.PlayerGameState, error) {
	if err := repo.LockSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	session, err := repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !session.IsActive() || session.CurrentPhase != models.PhaseAction {
		return nil, fmt.Errorf("%w: actions may only be declared during the action phase (session is %s/%s)",
			game.ErrInvalidPhase, session.Status, session.CurrentPhase)
	}

	player, err := repo.GetPlayerState(ctx, sessionID, req.PlayerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get player state: %w", err)
	}
	if !player.IsAlive() {
		return nil, fmt.Errorf("%w: %s is out of the game", game.ErrNotEligible, req.PlayerName)
	}

	if err := a.validateAction(session, player, req); err != nil {
		return nil, err
	}
	if req.Target != "" {
		target, err := repo.GetPlayerState(ctx, sessionID, req.Target)
		if err != nil {
			if errors.Is(err, game.ErrPlayerNotFound) {
				return nil, fmt.Errorf("%w: no player named %s in this session", game.ErrInvalidTarget, req.Target)
			}
			return nil, fmt.Errorf("failed to get target state: %w", err)
		}
		if !target.IsAlive() {
			return nil, fmt.Errorf("%w: %s is already out of the game", game.ErrInvalidTarget, req.Target)
		}
	}

	// Effective coins: a previous costed declaration is refunded before the
	// new cost is checked and charged.
	coins := player.Coins + declaredCost(player.Pending)
	cost := models.ActionCosts[req.Action]
	if coins < cost {
		return nil, fmt.Errorf("%w: %s costs %d coins, %s has %d",
			game.ErrInsufficientCoins, req.Action, cost, req.PlayerName, coins)
	}
	if coins >= models.ForcedCoupThreshold && req.Action != models.ActionCoup {
		return nil, fmt.Errorf("%w: %s holds %d coins and must coup",
			game.ErrForcedCoupRequired, req.PlayerName, coins)
	}

	claim := req.ClaimedRole
	if claim == "" {
		claim = models.ActionRoles[req.Action]
	}
	player.Coins = coins - cost
	player.Pending = &models.PendingAction{
		Actor:       req.PlayerName,
		Type:        req.Action,
		Target:      req.Target,
		ClaimedRole: claim,
		Upgraded:    req.Upgraded,
		Upgrade:     req.Upgrade,
	}
	if err := repo.UpdatePlayerState(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to save declared action: %w", err)
	}
	return player, nil
}

// DeclareReaction records or replaces the player's reaction against one
// actor's visible pending action (or against a declared block). Runs under
// the session row lock so the phase cannot flip to lockout mid-declaration.
func (a *App) DeclareReaction(ctx context.Context, sessionID uuid.UUID, req DeclareReactionRequest) (*models.Reaction, error) {
	var reaction *models.Reaction
	err := a.repo.Transact(ctx, func(repo Repository) error {
		var err error
		reaction, err = a.declareReaction(ctx, repo, sessionID, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("reactor", req.PlayerName).
		Str("actor", req.Actor).
		Str("type", string(req.Type)).
		Msg("reaction declared")
	return reaction, nil
}

func (a *App) declareReaction(ctx context.Context, repo Repository, sessionID uuid.UUID, req DeclareReactionRequest) (*models.Reaction, error) {
	if err := repo.LockSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	session, err := repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !session.IsActive() || session.CurrentPhase != models.PhaseReaction {
		return nil, fmt.Errorf("%w: reactions may only be declared during the reaction phase (session is %s/%s)",
			game.ErrInvalidPhase, session.Status, session.CurrentPhase)
	}

	reactor, err := repo.GetPlayerState(ctx, sessionID, req.PlayerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get reactor state: %w", err)
	}
	if !reactor.IsAlive() {
		return nil, fmt.Errorf("%w: %s is out of the game", game.ErrNotEligible, req.PlayerName)
	}
	if req.PlayerName == req.Actor {
		return nil, fmt.Errorf("%w: cannot react to your own claim", game.ErrNotEligible)
	}

	targetAction, err := a.validateReaction(ctx, repo, sessionID, session.TurnNumber, req)
	if err != nil {
		return nil, err
	}

	existing, err := repo.GetReaction(ctx, sessionID, session.TurnNumber, req.PlayerName, req.Actor)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing reaction: %w", err)
	}
	reaction := &models.Reaction{
		ID:           uuid.New(),
		SessionID:    sessionID,
		TurnNumber:   session.TurnNumber,
		Reactor:      req.PlayerName,
		Actor:        req.Actor,
		TargetAction: targetAction,
		Type:         req.Type,
		BlockRole:    req.BlockRole,
		CreatedAt:    a.clock.Now(),
	}
	if existing != nil {
		if existing.IsLocked {
			return nil, fmt.Errorf("%w: reaction against %s is locked for this turn",
				game.ErrActionAlreadyLocked, req.Actor)
		}
		// Overwrite keeps the original slot's identity and timestamp so
		// resolution ordering is stable under re-declaration.
		reaction.ID = existing.ID
		reaction.CreatedAt = existing.CreatedAt
	}
	if err := repo.UpsertReaction(ctx, reaction); err != nil {
		return nil, fmt.Errorf("failed to save reaction: %w", err)
	}
	return reaction, nil
}

// DeclareTemplate registers a conditional reaction. Templates are expanded
// into concrete reactions when the reaction window opens, so they may be
// filed at any point before then.
func (a *App) DeclareTemplate(ctx context.Context, sessionID uuid.UUID, req DeclareTemplateRequest) (*models.ReactionTemplate, error) {
	var tmpl *models.ReactionTemplate
	err := a.repo.Transact(ctx, func(repo Repository) error {
		var err error
		tmpl, err = a.declareTemplate(ctx, repo, sessionID, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (a *App) declareTemplate(ctx context.Context, repo Repository, sessionID uuid.UUID, req DeclareTemplateRequest) (*models.ReactionTemplate, error) {
	if err := repo.LockSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	session, err := repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !session.IsActive() {
		return nil, fmt.Errorf("%w: session is %s", game.ErrInvalidPhase, session.Status)
	}
	switch session.CurrentPhase {
	case models.PhaseAction, models.PhaseLockoutAction:
	default:
		return nil, fmt.Errorf("%w: templates must be filed before the reaction window opens (session is in %s)",
			game.ErrInvalidPhase, session.CurrentPhase)
	}

	reactor, err := repo.GetPlayerState(ctx, sessionID, req.PlayerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get reactor state: %w", err)
	}
	if !reactor.IsAlive() {
		return nil, fmt.Errorf("%w: %s is out of the game", game.ErrNotEligible, req.PlayerName)
	}
	if req.Type == models.ReactionPass {
		return nil, fmt.Errorf("%w: passing is the default, no template needed", game.ErrInvalidAction)
	}
	if (req.MatchRole == "") == (req.MatchAction == "") {
		return nil, fmt.Errorf("%w: template needs exactly one of match_role or match_action", game.ErrInvalidAction)
	}
	if req.Type == models.ReactionBlock && req.BlockRole == "" {
		return nil, fmt.Errorf("%w: a block template needs a blocking role", game.ErrInvalidAction)
	}

	tmpl := &models.ReactionTemplate{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Reactor:     req.PlayerName,
		Type:        req.Type,
		MatchRole:   req.MatchRole,
		MatchAction: req.MatchAction,
		BlockRole:   req.BlockRole,
		CreatedAt:   a.clock.Now(),
	}
	if err := repo.CreateReactionTemplate(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("failed to save reaction template: %w", err)
	}
	return tmpl, nil
}

// SetLossPriority records the order in which the player prefers to reveal
// influence when a coup, assassination or failed challenge forces a loss.
// The preference persists across turns and may be changed at any point while
// the player is alive.
func (a *App) SetLossPriority(ctx context.Context, sessionID uuid.UUID, req SetLossPriorityRequest) (*models.PlayerGameState, error) {
	seen := make(map[models.CardType]bool, len(req.Priority))
	for _, c := range req.Priority {
		switch c {
		case models.CardDuke, models.CardAssassin, models.CardCaptain, models.CardAmbassador, models.CardContessa:
		default:
			return nil, fmt.Errorf("%w: unknown role %q in loss priority", game.ErrInvalidAction, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: role %s listed twice in loss priority", game.ErrInvalidAction, c)
		}
		seen[c] = true
	}

	var player *models.PlayerGameState
	err := a.repo.Transact(ctx, func(repo Repository) error {
		if err := repo.LockSession(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}
		session, err := repo.GetSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		if !session.IsActive() {
			return fmt.Errorf("%w: session is %s", game.ErrInvalidPhase, session.Status)
		}
		player, err = repo.GetPlayerState(ctx, sessionID, req.PlayerName)
		if err != nil {
			return fmt.Errorf("failed to get player state: %w", err)
		}
		if !player.IsAlive() {
			return fmt.Errorf("%w: %s is out of the game", game.ErrNotEligible, req.PlayerName)
		}
		player.LossPriority = req.Priority
		if err := repo.UpdatePlayerState(ctx, player); err != nil {
			return fmt.Errorf("failed to save loss priority: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// ApplyDefaultActions assigns income to every living player who declared
// nothing before the action window closed. Called once per turn at action
// lockout.
func (a *App) ApplyDefaultActions(ctx context.Context, sessionID uuid.UUID) (int, error) {
	defaulted := 0
	err := a.repo.Transact(ctx, func(repo Repository) error {
		if err := repo.LockSession(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}
		players, err := repo.ListPlayerStates(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to list player states: %w", err)
		}
		for i := range players {
			p := &players[i]
			if !p.IsAlive() || p.Pending != nil {
				continue
			}
			p.Pending = &models.PendingAction{Actor: p.PlayerName, Type: models.ActionIncome}
			if err := repo.UpdatePlayerState(ctx, p); err != nil {
				return fmt.Errorf("failed to default action for %s: %w", p.PlayerName, err)
			}
			defaulted++
		}
		return nil
	})
	if err != nil {
		return defaulted, err
	}
	if defaulted > 0 {
		log.Info().
			Str("session_id", sessionID.String()).
			Int("players", defaulted).
			Msg("defaulted undeclared players to income")
	}
	return defaulted, nil
}

// ComputeEligibility marks every pending action as awaiting reaction and
// records who may react to it: all other living players for challenges, with
// block legality enforced at reaction time. Called once per turn at action
// lockout, after defaults are applied.
func (a *App) ComputeEligibility(ctx context.Context, sessionID uuid.UUID) error {
	return a.repo.Transact(ctx, func(repo Repository) error {
		if err := repo.LockSession(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}
		players, err := repo.ListPlayerStates(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to list player states: %w", err)
		}
		var alive []string
		for i := range players {
			if players[i].IsAlive() {
				alive = append(alive, players[i].PlayerName)
			}
		}
		for i := range players {
			p := &players[i]
			if !p.IsAlive() || p.Pending == nil {
				continue
			}
			reactors := make([]string, 0, len(alive)-1)
			for _, name := range alive {
				if name != p.PlayerName {
					reactors = append(reactors, name)
				}
			}
			p.Pending.AwaitingReaction = p.Pending.Type.IsChallengeable() || p.Pending.Type.IsBlockable()
			p.Pending.EligibleReactors = reactors
			if err := repo.UpdatePlayerState(ctx, p); err != nil {
				return fmt.Errorf("failed to save eligibility for %s: %w", p.PlayerName, err)
			}
		}
		return nil
	})
}

// ExpandTemplates converts filed templates into concrete reactions against
// every matching visible pending action. A template never overrides a
// reaction the player declared directly. Called once when the reaction
// window opens; templates are consumed.
func (a *App) ExpandTemplates(ctx context.Context, sessionID uuid.UUID) (int, error) {
	expanded := 0
	var templateCount int
	err := a.repo.Transact(ctx, func(repo Repository) error {
		if err := repo.LockSession(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}
		session, err := repo.GetSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		templates, err := repo.ListReactionTemplates(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to list reaction templates: %w", err)
		}
		templateCount = len(templates)
		if templateCount == 0 {
			return nil
		}
		players, err := repo.ListPlayerStates(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to list player states: %w", err)
		}

		for _, tmpl := range templates {
			for i := range players {
				actor := &players[i]
				if actor.Pending == nil || !actor.IsAlive() || actor.PlayerName == tmpl.Reactor {
					continue
				}
				pa := actor.Pending
				if !tmpl.Matches(pa) || !pa.EligibleFor(tmpl.Reactor) {
					continue
				}
				switch tmpl.Type {
				case models.ReactionChallenge:
					if !pa.Type.IsChallengeable() {
						continue
					}
				case models.ReactionBlock:
					if !pa.Type.CanBlockWith(tmpl.BlockRole) || !blockAllowed(pa, tmpl.Reactor) {
						continue
					}
				}
				existing, err := repo.GetReaction(ctx, sessionID, session.TurnNumber, tmpl.Reactor, actor.PlayerName)
				if err != nil {
					return fmt.Errorf("failed to check existing reaction: %w", err)
				}
				if existing != nil {
					continue
				}
				reaction := &models.Reaction{
					ID:           uuid.New(),
					SessionID:    sessionID,
					TurnNumber:   session.TurnNumber,
					Reactor:      tmpl.Reactor,
					Actor:        actor.PlayerName,
					TargetAction: pa.Type,
					Type:         tmpl.Type,
					BlockRole:    tmpl.BlockRole,
					CreatedAt:    a.clock.Now(),
				}
				if err := repo.UpsertReaction(ctx, reaction); err != nil {
					return fmt.Errorf("failed to save expanded reaction: %w", err)
				}
				expanded++
			}
		}
		return repo.DeleteReactionTemplates(ctx, sessionID)
	})
	if err != nil {
		return expanded, err
	}
	if templateCount == 0 {
		return 0, nil
	}
	log.Info().
		Str("session_id", sessionID.String()).
		Int("templates", templateCount).
		Int("reactions", expanded).
		Msg("expanded reaction templates")
	return expanded, nil
}

// LockReactions freezes all reactions for the turn. Called at reaction
// lockout; later declarations fail with ErrActionAlreadyLocked. The session
// lock makes the freeze atomic with respect to in-flight declarations.
func (a *App) LockReactions(ctx context.Context, sessionID uuid.UUID, turn int) error {
	return a.repo.Transact(ctx, func(repo Repository) error {
		if err := repo.LockSession(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to lock session: %w", err)
		}
		if err := repo.LockReactions(ctx, sessionID, turn); err != nil {
			return fmt.Errorf("failed to lock reactions: %w", err)
		}
		return nil
	})
}

// ListReactions returns all reactions filed for the turn.
func (a *App) ListReactions(ctx context.Context, sessionID uuid.UUID, turn int) ([]models.Reaction, error) {
	reactions, err := a.repo.ListReactions(ctx, sessionID, turn)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	return reactions, nil
}

func (a *App) validateAction(session *models.Session, player *models.PlayerGameState, req DeclareActionRequest) error {
	switch req.Action {
	case models.ActionIncome, models.ActionForeignAid, models.ActionCoup,
		models.ActionTax, models.ActionAssassinate, models.ActionSteal, models.ActionExchange:
	default:
		return fmt.Errorf("%w: unknown action %q", game.ErrInvalidAction, req.Action)
	}

	if req.Action.RequiresTarget() {
		if req.Target == "" {
			return fmt.Errorf("%w: %s requires a target", game.ErrInvalidTarget, req.Action)
		}
		if req.Target == req.PlayerName {
			return fmt.Errorf("%w: cannot target yourself", game.ErrInvalidTarget)
		}
	} else if req.Target != "" {
		// Exchange takes a target only via the identity crisis upgrade.
		crisis := req.Action == models.ActionExchange && req.Upgraded &&
			req.Upgrade != nil && req.Upgrade.IdentityCrisis
		if !crisis {
			return fmt.Errorf("%w: %s does not take a target", game.ErrInvalidTarget, req.Action)
		}
		if req.Target == req.PlayerName {
			return fmt.Errorf("%w: cannot target yourself", game.ErrInvalidTarget)
		}
	}

	if req.Upgraded {
		if !session.UpgradesEnabled {
			return fmt.Errorf("%w: upgrades are disabled for this session", game.ErrInvalidAction)
		}
		if _, ok := models.UpgradeCosts[req.Action]; !ok {
			return fmt.Errorf("%w: %s has no upgrade", game.ErrInvalidAction, req.Action)
		}
		if req.Upgrade == nil {
			return fmt.Errorf("%w: upgraded action needs upgrade details", game.ErrInvalidAction)
		}
	}

	if req.ClaimedRole != "" && models.ActionRoles[req.Action] != req.ClaimedRole {
		return fmt.Errorf("%w: %s is claimed with %s, not %s",
			game.ErrInvalidAction, req.Action, models.ActionRoles[req.Action], req.ClaimedRole)
	}
	return nil
}

// validateReaction checks the reaction's target claim and returns the action
// type the reaction is filed against.
func (a *App) validateReaction(ctx context.Context, repo Repository, sessionID uuid.UUID, turn int, req DeclareReactionRequest) (models.ActionType, error) {
	actor, err := repo.GetPlayerState(ctx, sessionID, req.Actor)
	if err != nil {
		return "", fmt.Errorf("failed to get actor state: %w", err)
	}

	if actor.Pending != nil && actor.Pending.AwaitingReaction {
		pa := actor.Pending
		if !pa.EligibleFor(req.PlayerName) {
			return "", fmt.Errorf("%w: %s may not react to %s's action",
				game.ErrNotEligible, req.PlayerName, req.Actor)
		}
		switch req.Type {
		case models.ReactionPass:
			return pa.Type, nil
		case models.ReactionChallenge:
			if !pa.Type.IsChallengeable() {
				return "", fmt.Errorf("%w: %s carries no role claim to challenge", game.ErrInvalidAction, pa.Type)
			}
			return pa.Type, nil
		case models.ReactionBlock:
			if !pa.Type.IsBlockable() {
				return "", fmt.Errorf("%w: %s cannot be blocked", game.ErrInvalidAction, pa.Type)
			}
			if !pa.Type.CanBlockWith(req.BlockRole) {
				return "", fmt.Errorf("%w: %s does not block %s", game.ErrInvalidAction, req.BlockRole, pa.Type)
			}
			if !blockAllowed(pa, req.PlayerName) {
				return "", fmt.Errorf("%w: only the target may block %s", game.ErrNotEligible, pa.Type)
			}
			return pa.Type, nil
		default:
			return "", fmt.Errorf("%w: unknown reaction type %q", game.ErrInvalidAction, req.Type)
		}
	}

	// No pending action on the actor: the only remaining legal move is
	// challenging a block the actor declared this turn.
	if req.Type != models.ReactionChallenge {
		return "", fmt.Errorf("%w: %s has no pending action to react to", game.ErrInvalidAction, req.Actor)
	}
	reactions, err := repo.ListReactions(ctx, sessionID, turn)
	if err != nil {
		return "", fmt.Errorf("failed to list reactions: %w", err)
	}
	for _, re := range reactions {
		if re.Type == models.ReactionBlock && re.Reactor == req.Actor {
			return re.TargetAction, nil
		}
	}
	return "", fmt.Errorf("%w: %s has neither a pending action nor a block to challenge",
		game.ErrInvalidAction, req.Actor)
}

// blockAllowed enforces who may block: targeted actions only by their target,
// untargeted blockable actions (foreign aid) by anyone eligible.
func blockAllowed(pa *models.PendingAction, reactor string) bool {
	if pa.Type.RequiresTarget() {
		return pa.Target == reactor
	}
	return true
}

func declaredCost(pa *models.PendingAction) int {
	if pa == nil {
		return 0
	}
	return models.ActionCosts[pa.Type]
}

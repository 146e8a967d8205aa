// Package session owns the session lifecycle: creation, joining, start,
// pause/resume, phase transitions, rematches and completion.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/LaurentStar/hourly-coup/go/internal/game"
	"github.com/LaurentStar/hourly-coup/go/internal/game/deck"
	"github.com/LaurentStar/hourly-coup/go/internal/game/phaseclock"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// SessionRepository defines what the app layer needs from the repository.
type SessionRepository interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	UpdateSession(ctx context.Context, s *models.Session) error
	ListSessions(ctx context.Context, statuses []models.SessionStatus) ([]models.Session, error)
	FetchNextDeadline(ctx context.Context) (*time.Time, error)
	FetchSessionsDue(ctx context.Context, limit int32) ([]uuid.UUID, error)

	CreatePlayerState(ctx context.Context, p *models.PlayerGameState) error
	GetPlayerState(ctx context.Context, sessionID uuid.UUID, playerName string) (*models.PlayerGameState, error)
	ListPlayerStates(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerGameState, error)
	UpdatePlayerState(ctx context.Context, p *models.PlayerGameState) error
	CountPlayers(ctx context.Context, sessionID uuid.UUID) (int, error)

	ListTurnResults(ctx context.Context, sessionID uuid.UUID, limit int32) ([]models.TurnResult, error)
}

// App handles session lifecycle business logic.
type App struct {
	repo   SessionRepository
	clock  clockwork.Clock
	phases *phaseclock.Clock
}

// NewApp creates a new session App.
func NewApp(repo SessionRepository, clock clockwork.Clock) *App {
	return &App{repo: repo, clock: clock, phases: phaseclock.New(clock)}
}

// TimeRemaining reports how long the session's current phase has left.
// Untracked or expired sessions report zero.
func (a *App) TimeRemaining(sessionID uuid.UUID) time.Duration {
	return a.phases.TimeRemaining(sessionID)
}

// CreateSession creates a session in the waiting state.
func (a *App) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: session name is required", game.ErrInvalidConfiguration)
	}
	maxPlayers := req.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = MaxPlayers
	}
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return nil, fmt.Errorf("%w: max_players must be between %d and %d",
			game.ErrInvalidConfiguration, MinPlayers, MaxPlayers)
	}
	if req.TurnLimit < 0 {
		return nil, fmt.Errorf("%w: turn_limit cannot be negative", game.ErrInvalidConfiguration)
	}
	durations := models.DefaultPhaseDurations()
	if req.Durations != nil {
		durations = *req.Durations
	}
	if !durations.Validate() {
		return nil, fmt.Errorf("%w: every phase duration must be positive", game.ErrInvalidConfiguration)
	}

	s := &models.Session{
		ID:              uuid.New(),
		Name:            req.Name,
		Status:          models.SessionStatusWaiting,
		CurrentPhase:    models.PhaseAction,
		TurnNumber:      0,
		TurnLimit:       req.TurnLimit,
		MaxPlayers:      maxPlayers,
		Durations:       durations,
		UpgradesEnabled: req.UpgradesEnabled,
		CreatedAt:       a.clock.Now(),
	}
	if err := a.repo.CreateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("session_id", s.ID.String()).
		Str("name", s.Name).
		Int("max_players", s.MaxPlayers).
		Msg("session created")
	return s, nil
}

// GetSession retrieves a session by ID.
func (a *App) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// ListSessions returns sessions in the given statuses.
func (a *App) ListSessions(ctx context.Context, statuses []models.SessionStatus) ([]models.Session, error) {
	sessions, err := a.repo.ListSessions(ctx, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// ListPlayers returns all player states for a session, in join order.
func (a *App) ListPlayers(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerGameState, error) {
	players, err := a.repo.ListPlayerStates(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// ListTurnResults returns the most recent resolved turns for a session.
func (a *App) ListTurnResults(ctx context.Context, sessionID uuid.UUID, limit int32) ([]models.TurnResult, error) {
	results, err := a.repo.ListTurnResults(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list turn results: %w", err)
	}
	return results, nil
}

// JoinSession seats a player in a waiting session.
func (a *App) JoinSession(ctx context.Context, sessionID uuid.UUID, playerName string) (*models.PlayerGameState, error) {
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is required", game.ErrInvalidConfiguration)
	}
	s, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if s.Status != models.SessionStatusWaiting {
		return nil, fmt.Errorf("%w: session %s is %s, joining is only possible before start",
			game.ErrInvalidPhase, sessionID, s.Status)
	}
	count, err := a.repo.CountPlayers(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count players: %w", err)
	}
	if count >= s.MaxPlayers {
		return nil, fmt.Errorf("%w: session %s is full (%d players)", game.ErrNotEligible, sessionID, count)
	}

	p := &models.PlayerGameState{
		PlayerName: playerName,
		SessionID:  sessionID,
		Coins:      models.StartingCoins,
		Statuses:   []models.PlayerStatus{models.StatusWaiting},
		JoinSeq:    count,
		JoinedAt:   a.clock.Now(),
	}
	if err := a.repo.CreatePlayerState(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("player", playerName).
		Int("join_seq", p.JoinSeq).
		Msg("player joined session")
	return p, nil
}

// StartSession deals the deck and activates the phase cycle.
func (a *App) StartSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	s, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if s.Status != models.SessionStatusWaiting {
		return nil, fmt.Errorf("%w: session %s already started", game.ErrInvalidPhase, sessionID)
	}
	players, err := a.repo.ListPlayerStates(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if len(players) < MinPlayers {
		return nil, fmt.Errorf("%w: need at least %d players to start, have %d",
			game.ErrInvalidConfiguration, MinPlayers, len(players))
	}

	if err := a.dealAndActivate(ctx, s, players); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Int("players", len(players)).
		Int("turn", s.TurnNumber).
		Time("phase_end", *s.PhaseEndTime).
		Msg("session started")
	return s, nil
}

// PauseSession suspends the phase timer. The in-flight phase restarts in
// full on resume.
func (a *App) PauseSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	s, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if s.Status != models.SessionStatusActive {
		return nil, fmt.Errorf("%w: session %s is %s, only active sessions pause",
			game.ErrInvalidPhase, sessionID, s.Status)
	}
	s.Status = models.SessionStatusPaused
	s.PhaseEndTime = nil
	a.phases.Forget(s.ID)
	if err := a.repo.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to pause session: %w", err)
	}
	log.Info().Str("session_id", sessionID.String()).Msg("session paused")
	return s, nil
}

// ResumeSession reactivates a paused session and rearms the phase timer.
func (a *App) ResumeSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	s, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if s.Status != models.SessionStatusPaused {
		return nil, fmt.Errorf("%w: session %s is %s, only paused sessions resume",
			game.ErrInvalidPhase, sessionID, s.Status)
	}
	s.Status = models.SessionStatusActive
	deadline, err := a.phases.StartPhase(s, s.CurrentPhase)
	if err != nil {
		return nil, err
	}
	s.PhaseEndTime = &deadline
	if err := a.repo.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}
	log.Info().
		Str("session_id", sessionID.String()).
		Time("phase_end", deadline).
		Msg("session resumed")
	return s, nil
}

// TransitionPhase moves an active session into the given phase and arms its
// deadline. Only the next phase in the cycle is accepted, with one branch:
// the broadcast phase may end the game instead of opening the next turn.
// Entering the action phase begins a new turn.
func (a *App) TransitionPhase(ctx context.Context, sessionID uuid.UUID, to models.GamePhase) (*models.Session, error) {
	s, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !s.IsActive() {
		return nil, fmt.Errorf("%w: session %s is %s", game.ErrInvalidPhase, sessionID, s.Status)
	}
	next, _ := models.NextPhase(s.CurrentPhase)
	ending := s.CurrentPhase == models.PhaseBroadcast && to == models.PhaseEnding
	if to != next && !ending {
		return nil, fmt.Errorf("%w: %s does not follow %s", game.ErrInvalidPhase, to, s.CurrentPhase)
	}

	if to == models.PhaseAction {
		s.TurnNumber++
	}
	s.CurrentPhase = to
	deadline, err := a.phases.StartPhase(s, to)
	if err != nil {
		return nil, err
	}
	s.PhaseEndTime = &deadline
	if err := a.repo.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to transition phase: %w", err)
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("phase", string(to)).
		Int("turn", s.TurnNumber).
		Time("phase_end", deadline).
		Msg("phase transition")
	return s, nil
}

// CompleteSession records the winners and ends the session.
func (a *App) CompleteSession(ctx context.Context, sessionID uuid.UUID, winners []string) (*models.Session, error) {
	s, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if s.Status == models.SessionStatusEnded {
		return s, nil
	}
	s.Status = models.SessionStatusEnded
	s.Winners = winners
	s.PhaseEndTime = nil
	a.phases.Forget(s.ID)
	if err := a.repo.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	log.Info().
		Str("session_id", sessionID.String()).
		Strs("winners", winners).
		Msg("session completed")
	return s, nil
}

// Rematch starts a fresh session for the same roster: a new session row with
// its own turn history, a fresh deck and fresh coins. The ended session keeps
// its results untouched; both rows count the rematch against the shared cap.
func (a *App) Rematch(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	prev, err := a.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if prev.Status != models.SessionStatusEnded {
		return nil, fmt.Errorf("%w: session %s is %s, only ended sessions rematch",
			game.ErrInvalidPhase, sessionID, prev.Status)
	}
	if prev.RematchCount >= models.MaxRematches {
		return nil, fmt.Errorf("%w: rematch limit of %d reached",
			game.ErrInvalidConfiguration, models.MaxRematches)
	}
	roster, err := a.repo.ListPlayerStates(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	next := &models.Session{
		ID:              uuid.New(),
		Name:            prev.Name,
		Status:          models.SessionStatusWaiting,
		CurrentPhase:    models.PhaseAction,
		TurnLimit:       prev.TurnLimit,
		MaxPlayers:      prev.MaxPlayers,
		Durations:       prev.Durations,
		UpgradesEnabled: prev.UpgradesEnabled,
		RematchCount:    prev.RematchCount + 1,
		CreatedAt:       a.clock.Now(),
	}
	if err := a.repo.CreateSession(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to create rematch session: %w", err)
	}

	seats := make([]models.PlayerGameState, len(roster))
	for i := range roster {
		seats[i] = models.PlayerGameState{
			PlayerName: roster[i].PlayerName,
			SessionID:  next.ID,
			Coins:      models.StartingCoins,
			Statuses:   []models.PlayerStatus{models.StatusWaiting},
			JoinSeq:    roster[i].JoinSeq,
			JoinedAt:   a.clock.Now(),
		}
		if err := a.repo.CreatePlayerState(ctx, &seats[i]); err != nil {
			return nil, fmt.Errorf("failed to seat %s for rematch: %w", seats[i].PlayerName, err)
		}
	}

	prev.RematchCount++
	if err := a.repo.UpdateSession(ctx, prev); err != nil {
		return nil, fmt.Errorf("failed to record rematch on ended session: %w", err)
	}

	if err := a.dealAndActivate(ctx, next, seats); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", next.ID.String()).
		Str("previous_session_id", sessionID.String()).
		Int("rematch", next.RematchCount).
		Msg("rematch started")
	return next, nil
}

// FetchNextDeadline exposes the earliest armed phase deadline for the
// scheduler.
func (a *App) FetchNextDeadline(ctx context.Context) (*time.Time, error) {
	return a.repo.FetchNextDeadline(ctx)
}

// FetchSessionsDue exposes due sessions for the scheduler.
func (a *App) FetchSessionsDue(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	return a.repo.FetchSessionsDue(ctx, limit)
}

// dealAndActivate shuffles a fresh deck, deals every seat two cards and puts
// the session into turn one of the action phase.
func (a *App) dealAndActivate(ctx context.Context, s *models.Session, players []models.PlayerGameState) error {
	d := deck.Shuffle(deck.New(), a.clock.Now().UnixNano())
	hands, remaining, err := deck.Deal(d, len(players))
	if err != nil {
		return fmt.Errorf("%w: %v", game.ErrInvalidConfiguration, err)
	}

	for i := range players {
		p := &players[i]
		p.Coins = models.StartingCoins
		p.Debt = 0
		p.Cards = hands[i]
		p.Statuses = []models.PlayerStatus{models.StatusAlive}
		p.Pending = nil
		if err := a.repo.UpdatePlayerState(ctx, p); err != nil {
			return fmt.Errorf("failed to deal to %s: %w", p.PlayerName, err)
		}
	}

	s.Status = models.SessionStatusActive
	s.CurrentPhase = models.PhaseAction
	s.TurnNumber = 1
	s.DeckState = remaining
	s.RevealedCards = nil
	deadline, err := a.phases.StartPhase(s, models.PhaseAction)
	if err != nil {
		return err
	}
	s.PhaseEndTime = &deadline
	if err := a.repo.UpdateSession(ctx, s); err != nil {
		return fmt.Errorf("failed to activate session: %w", err)
	}
	return nil
}

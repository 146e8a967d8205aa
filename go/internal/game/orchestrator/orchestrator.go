// Package orchestrator drives the hourly phase cycle. A single scheduler
// loop sleeps until the earliest persisted phase deadline, then hands due
// sessions to a worker pool. All deadlines live in the database, so a
// restarted scheduler picks up exactly where the previous one stopped.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/LaurentStar/hourly-coup/go/internal/game/events"
	"github.com/LaurentStar/hourly-coup/go/internal/game/resolve"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// SessionService defines what the orchestrator needs from the session layer.
type SessionService interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListPlayers(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerGameState, error)
	TransitionPhase(ctx context.Context, sessionID uuid.UUID, to models.GamePhase) (*models.Session, error)
	CompleteSession(ctx context.Context, sessionID uuid.UUID, winners []string) (*models.Session, error)
	FetchNextDeadline(ctx context.Context) (*time.Time, error)
	FetchSessionsDue(ctx context.Context, limit int32) ([]uuid.UUID, error)
}

// IntakeApp defines the lockout work the orchestrator runs between windows.
type IntakeApp interface {
	ApplyDefaultActions(ctx context.Context, sessionID uuid.UUID) (int, error)
	ComputeEligibility(ctx context.Context, sessionID uuid.UUID) error
	ExpandTemplates(ctx context.Context, sessionID uuid.UUID) (int, error)
	LockReactions(ctx context.Context, sessionID uuid.UUID, turn int) error
	ListReactions(ctx context.Context, sessionID uuid.UUID, turn int) ([]models.Reaction, error)
}

// ResolveEngine resolves a locked turn.
type ResolveEngine interface {
	ResolveTurn(ctx context.Context, snap resolve.TurnSnapshot) (*resolve.Resolution, error)
}

// AgentRunner lets automated players take their turn when an action window
// opens. A nil runner disables agents.
type AgentRunner interface {
	RunSession(ctx context.Context, sessionID uuid.UUID)
}

// OutboxApp defines what the orchestrator needs from the outbox app.
type OutboxApp interface {
	InsertTurnResolved(ctx context.Context, sessionID uuid.UUID, payload []byte) error
}

type Orchestrator struct {
	sessions  SessionService
	intake    IntakeApp
	engine    ResolveEngine
	agents    AgentRunner
	outboxApp OutboxApp
	batchSize int32 // how many due sessions to claim at once
	clock     Clock
	wakeCh    chan struct{}
	instanceID string // unique ID for this scheduler instance

	// Worker pool configuration
	numWorkers int
	workCh     chan uuid.UUID

	// Track in-flight work to prevent duplicate processing
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

// NewOrchestrator creates a new phase orchestrator with worker pool.
func NewOrchestrator(sessions SessionService, intake IntakeApp, engine ResolveEngine, agents AgentRunner, outboxApp OutboxApp, batchSize int32) *Orchestrator {
	numWorkers := 10
	return &Orchestrator{
		sessions:   sessions,
		intake:     intake,
		engine:     engine,
		agents:     agents,
		outboxApp:  outboxApp,
		batchSize:  batchSize,
		clock:      clockwork.NewRealClock(),
		wakeCh:     make(chan struct{}, 1),
		instanceID: uuid.New().String()[:8], // short ID for logging

		numWorkers: numWorkers,
		workCh:     make(chan uuid.UUID, numWorkers*2), // Buffer to prevent blocking
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// WithClock swaps the time source. Meant for tests.
func (o *Orchestrator) WithClock(c Clock) *Orchestrator {
	o.clock = c
	return o
}

// Wake nudges the scheduler to re-read the next deadline, e.g. after a
// session starts or resumes and a sooner deadline may exist.
func (o *Orchestrator) Wake() {
	select {
	case o.wakeCh <- struct{}{}:
	default:
	}
}

// HandleDomainEvent routes incoming broadcast events back into the
// scheduler. The services emit these through the outbox; the orchestrator
// subscribes so that gateway-initiated lifecycle changes re-arm its timer.
func (o *Orchestrator) HandleDomainEvent(ctx context.Context, eventType string, sessionID uuid.UUID, payload []byte) error {
	log.Info().
		Str("event_type", eventType).
		Str("session_id", sessionID.String()).
		Msg("handling domain event")

	switch eventType {
	case events.TypeGameStarted, events.TypeRematchStarted:
		o.runAgents(ctx, sessionID)
		o.Wake()
		return nil

	case events.TypeSessionResumed, events.TypePhaseChanged:
		o.Wake()
		return nil

	case events.TypeSessionPaused:
		// The session service already cleared the deadline; waking makes
		// the scheduler land on the next soonest session.
		o.Wake()
		return nil

	case events.TypeTurnResolved, events.TypeGameEnded, events.TypeSessionCreated, events.TypePlayerJoined:
		return nil

	default:
		log.Warn().
			Str("event_type", eventType).
			Str("session_id", sessionID.String()).
			Msg("unknown event type - ignoring")
		return nil
	}
}

// RunScheduler loops forever, sleeping until the next deadline and firing
// phase transitions.
func (o *Orchestrator) RunScheduler(ctx context.Context) error {
	log.Info().Str("instance", o.instanceID).Int("workers", o.numWorkers).Msg("scheduler started")

	// Start worker pool
	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	for i := 0; i < o.numWorkers; i++ {
		wg.Add(1)
		go o.worker(workerCtx, &wg, i)
	}

	defer func() {
		log.Info().Str("instance", o.instanceID).Msg("shutting down workers")
		cancelWorkers()
		close(o.workCh)
		wg.Wait()
		log.Info().Str("instance", o.instanceID).Msg("all workers shut down")
	}()

	timer := o.clock.NewTimer(0)
	defer timer.Stop()

	const idlePollDuration = 5 * time.Second
	retryCount := 0
	const maxRetries = 3

	for {
		select {
		case <-o.wakeCh:
			log.Debug().Str("instance", o.instanceID).Msg("drained wake channel")
		default:
		}

		deadline, err := o.sessions.FetchNextDeadline(ctx)
		if err != nil {
			retryCount++
			if retryCount <= maxRetries {
				log.Error().
					Err(err).
					Int("retry", retryCount).
					Str("instance", o.instanceID).
					Msg("error fetching next deadline, retrying")
				timer.Reset(time.Second * time.Duration(retryCount))
				select {
				case <-timer.Chan():
					continue
				case <-ctx.Done():
					return nil
				}
			}
			log.Error().Err(err).Str("instance", o.instanceID).Msg("error fetching next deadline after retries")
			return err
		}
		retryCount = 0

		if deadline == nil {
			// No armed timer anywhere - idle with timer reuse
			log.Info().Str("instance", o.instanceID).Msg("no active sessions; polling again in 5s")
			timer.Reset(idlePollDuration)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				log.Info().Str("instance", o.instanceID).Msg("shutdown during idle")
				return nil
			case <-o.wakeCh:
				log.Debug().Str("instance", o.instanceID).Msg("woken up from idle")
				continue
			}
		}

		wait := deadline.Sub(o.clock.Now())
		if wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.Chan():
				log.Info().Str("instance", o.instanceID).Msg("timer fired — fetching due sessions")
			case <-ctx.Done():
				log.Info().Str("instance", o.instanceID).Msg("shutdown during wait")
				return nil
			case <-o.wakeCh:
				log.Debug().Str("instance", o.instanceID).Msg("woken up early — new sooner deadline")
				continue
			}
		}

		due, err := o.sessions.FetchSessionsDue(ctx, o.batchSize)
		if err != nil {
			log.Error().Err(err).Str("instance", o.instanceID).Msg("error fetching due sessions")
			// Don't exit on error - retry next iteration
			timer.Reset(time.Second)
			select {
			case <-timer.Chan():
				continue
			case <-ctx.Done():
				return nil
			}
		}

		if len(due) > 0 {
			log.Info().
				Int("count_due", len(due)).
				Int32("batch_size", o.batchSize).
				Str("instance", o.instanceID).
				Msg("processing due sessions")

			for _, sessionID := range due {
				o.inFlightMu.Lock()
				if o.inFlight[sessionID] {
					log.Debug().Str("session_id", sessionID.String()).Str("instance", o.instanceID).Msg("skipping session already in flight")
					o.inFlightMu.Unlock()
					continue
				}
				o.inFlight[sessionID] = true
				o.inFlightMu.Unlock()

				select {
				case <-ctx.Done():
					o.inFlightMu.Lock()
					delete(o.inFlight, sessionID)
					o.inFlightMu.Unlock()
					log.Info().Str("instance", o.instanceID).Msg("shutdown while queueing transitions")
					return nil
				case o.workCh <- sessionID:
					log.Debug().Str("session_id", sessionID.String()).Str("instance", o.instanceID).Msg("queued transition for worker")
				}
			}
		}
	}
}

// handleDeadline advances one session whose phase deadline has passed. The
// per-session in-flight map guarantees one writer per session per instance;
// the idempotent resolution engine guards against concurrent instances.
func (o *Orchestrator) handleDeadline(ctx context.Context, sessionID uuid.UUID) error {
	s, err := o.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load due session: %w", err)
	}
	if !s.IsActive() {
		log.Debug().
			Str("session_id", sessionID.String()).
			Str("status", string(s.Status)).
			Msg("session no longer active; skipping deadline")
		return nil
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("phase", string(s.CurrentPhase)).
		Int("turn", s.TurnNumber).
		Msg("phase deadline firing")

	switch s.CurrentPhase {
	case models.PhaseAction:
		if _, err := o.sessions.TransitionPhase(ctx, sessionID, models.PhaseLockoutAction); err != nil {
			return err
		}
		return o.closeActionWindow(ctx, sessionID)

	case models.PhaseLockoutAction:
		// Only reachable after a crash mid-sequence; finish the lockout.
		return o.closeActionWindow(ctx, sessionID)

	case models.PhaseReaction:
		if _, err := o.sessions.TransitionPhase(ctx, sessionID, models.PhaseLockoutReaction); err != nil {
			return err
		}
		return o.closeReactionWindow(ctx, s)

	case models.PhaseLockoutReaction:
		return o.closeReactionWindow(ctx, s)

	case models.PhaseBroadcast:
		return o.finishTurn(ctx, s)

	case models.PhaseEnding:
		return o.finishGame(ctx, s)

	default:
		return fmt.Errorf("session %s is in unknown phase %q", sessionID, s.CurrentPhase)
	}
}

// closeActionWindow runs the action-lockout sequence: default undeclared
// players to income, compute who may react, open the reaction window and
// expand any standing-order templates into it. The lockout phase itself is
// transitional: its work completes in one pass and the reaction timer arms
// immediately.
func (o *Orchestrator) closeActionWindow(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := o.intake.ApplyDefaultActions(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to apply default actions: %w", err)
	}
	if err := o.intake.ComputeEligibility(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to compute eligibility: %w", err)
	}
	if _, err := o.sessions.TransitionPhase(ctx, sessionID, models.PhaseReaction); err != nil {
		return err
	}
	if _, err := o.intake.ExpandTemplates(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to expand templates: %w", err)
	}
	// Agents react in the window just opened, same as they act when an
	// action window opens.
	o.runAgents(ctx, sessionID)
	return nil
}

// closeReactionWindow locks all reactions, resolves the turn and opens the
// broadcast window with the results already in the outbox.
func (o *Orchestrator) closeReactionWindow(ctx context.Context, s *models.Session) error {
	if err := o.intake.LockReactions(ctx, s.ID, s.TurnNumber); err != nil {
		return err
	}

	players, err := o.sessions.ListPlayers(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("failed to list players for resolution: %w", err)
	}
	reactions, err := o.intake.ListReactions(ctx, s.ID, s.TurnNumber)
	if err != nil {
		return err
	}

	res, err := o.engine.ResolveTurn(ctx, resolve.TurnSnapshot{
		Session:   *s,
		Players:   players,
		Reactions: reactions,
	})
	if err != nil {
		return fmt.Errorf("failed to resolve turn %d: %w", s.TurnNumber, err)
	}

	if err := o.emitTurnResolved(ctx, s.ID, res); err != nil {
		log.Error().Err(err).Str("session_id", s.ID.String()).Msg("failed to emit TurnResolved event")
		// Don't fail the transition; the result is durably persisted.
	}

	_, err = o.sessions.TransitionPhase(ctx, s.ID, models.PhaseBroadcast)
	return err
}

// finishTurn runs at the broadcast deadline: either the game is over (one
// player left, or the turn limit is spent) and the ending phase begins, or
// the next turn's action window opens.
func (o *Orchestrator) finishTurn(ctx context.Context, s *models.Session) error {
	players, err := o.sessions.ListPlayers(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	alive := 0
	for i := range players {
		if players[i].IsAlive() {
			alive++
		}
	}
	limitSpent := s.TurnLimit > 0 && s.TurnNumber >= s.TurnLimit

	if alive <= 1 || limitSpent {
		log.Info().
			Str("session_id", s.ID.String()).
			Int("alive", alive).
			Bool("turn_limit_spent", limitSpent).
			Msg("game over condition met; entering ending phase")
		_, err := o.sessions.TransitionPhase(ctx, s.ID, models.PhaseEnding)
		return err
	}

	if _, err := o.sessions.TransitionPhase(ctx, s.ID, models.PhaseAction); err != nil {
		return err
	}
	o.runAgents(ctx, s.ID)
	return nil
}

// finishGame runs at the ending deadline: rank the survivors and close the
// session. Rematches reactivate it through the session service.
func (o *Orchestrator) finishGame(ctx context.Context, s *models.Session) error {
	players, err := o.sessions.ListPlayers(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("failed to list players: %w", err)
	}
	winners := resolve.Winners(players)
	_, err = o.sessions.CompleteSession(ctx, s.ID, winners)
	return err
}

func (o *Orchestrator) emitTurnResolved(ctx context.Context, sessionID uuid.UUID, res *resolve.Resolution) error {
	payload := events.TurnResolvedPayload{
		SessionID:     sessionID.String(),
		TurnNumber:    res.Result.TurnNumber,
		ActionResults: res.Result.ActionResults,
		Eliminated:    res.Result.Eliminated,
		Summary:       res.Result.Summary,
		ResolvedAt:    o.clock.Now(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal TurnResolved payload: %w", err)
	}
	return o.outboxApp.InsertTurnResolved(ctx, sessionID, data)
}

func (o *Orchestrator) runAgents(ctx context.Context, sessionID uuid.UUID) {
	if o.agents == nil {
		return
	}
	o.agents.RunSession(ctx, sessionID)
}

// worker processes session deadlines from the work channel.
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	log.Info().
		Str("instance", o.instanceID).
		Int("worker_id", workerID).
		Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().
				Str("instance", o.instanceID).
				Int("worker_id", workerID).
				Msg("worker shutting down")
			return
		case sessionID, ok := <-o.workCh:
			if !ok {
				log.Info().
					Str("instance", o.instanceID).
					Int("worker_id", workerID).
					Msg("work channel closed, worker shutting down")
				return
			}

			log.Info().
				Str("session_id", sessionID.String()).
				Str("instance", o.instanceID).
				Int("worker_id", workerID).
				Msg("worker handling deadline")

			if err := o.handleDeadline(ctx, sessionID); err != nil {
				log.Error().
					Err(err).
					Str("session_id", sessionID.String()).
					Str("instance", o.instanceID).
					Int("worker_id", workerID).
					Msg("worker deadline handling failed")
			}

			o.inFlightMu.Lock()
			delete(o.inFlight, sessionID)
			o.inFlightMu.Unlock()

			// The transition armed a new deadline; re-read it.
			o.Wake()
		}
	}
}

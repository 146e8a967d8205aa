package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/LaurentStar/hourly-coup/go/internal/game/events"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// OutboxApp defines what the service layer needs from the outbox.
type OutboxApp interface {
	InsertSessionCreated(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertPlayerJoined(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertGameStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertPhaseChanged(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertGameEnded(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertSessionPaused(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertSessionResumed(ctx context.Context, sessionID uuid.UUID, payload []byte) error
	InsertRematchStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error
}

// Service layers event emission over the session app. Every lifecycle change
// lands in the outbox in the same logical step as the state change.
type Service struct {
	app    *App
	outbox OutboxApp
	clock  clockwork.Clock
}

// NewService creates a new session Service.
func NewService(app *App, outbox OutboxApp, clock clockwork.Clock) *Service {
	return &Service{app: app, outbox: outbox, clock: clock}
}

// App exposes the underlying app for callers that only read.
func (s *Service) App() *App {
	return s.app
}

// Read delegates, shared by the gateway and the scheduler.

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return s.app.GetSession(ctx, id)
}

func (s *Service) ListPlayers(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerGameState, error) {
	return s.app.ListPlayers(ctx, sessionID)
}

func (s *Service) ListSessions(ctx context.Context, statuses []models.SessionStatus) ([]models.Session, error) {
	return s.app.ListSessions(ctx, statuses)
}

func (s *Service) ListTurnResults(ctx context.Context, sessionID uuid.UUID, limit int32) ([]models.TurnResult, error) {
	return s.app.ListTurnResults(ctx, sessionID, limit)
}

func (s *Service) FetchNextDeadline(ctx context.Context) (*time.Time, error) {
	return s.app.FetchNextDeadline(ctx)
}

func (s *Service) FetchSessionsDue(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	return s.app.FetchSessionsDue(ctx, limit)
}

func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	sess, err := s.app.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, sess.ID, events.TypeSessionCreated, events.SessionCreatedPayload{
		SessionID:  sess.ID.String(),
		Name:       sess.Name,
		MaxPlayers: sess.MaxPlayers,
		CreatedAt:  sess.CreatedAt,
	})
	return sess, nil
}

func (s *Service) JoinSession(ctx context.Context, sessionID uuid.UUID, req JoinSessionRequest) (*models.PlayerGameState, error) {
	p, err := s.app.JoinSession(ctx, sessionID, req.PlayerName)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, sessionID, events.TypePlayerJoined, events.PlayerJoinedPayload{
		SessionID:   sessionID.String(),
		PlayerName:  p.PlayerName,
		JoinSeq:     p.JoinSeq,
		PlayerCount: p.JoinSeq + 1,
		JoinedAt:    p.JoinedAt,
	})
	return p, nil
}

func (s *Service) StartSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	sess, err := s.app.StartSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	players, err := s.app.ListPlayers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, sessionID, events.TypeGameStarted, events.GameStartedPayload{
		SessionID:    sessionID.String(),
		Players:      playerNames(players),
		TurnNumber:   sess.TurnNumber,
		PhaseEndTime: deref(sess.PhaseEndTime),
		StartedAt:    s.clock.Now(),
	})
	return sess, nil
}

func (s *Service) PauseSession(ctx context.Context, sessionID uuid.UUID, reason string) (*models.Session, error) {
	sess, err := s.app.PauseSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, sessionID, events.TypeSessionPaused, events.SessionPausedPayload{
		SessionID: sessionID.String(),
		PausedAt:  s.clock.Now(),
		Reason:    reason,
	})
	return sess, nil
}

func (s *Service) ResumeSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	sess, err := s.app.ResumeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, sessionID, events.TypeSessionResumed, events.SessionResumedPayload{
		SessionID:    sessionID.String(),
		PhaseEndTime: deref(sess.PhaseEndTime),
		ResumedAt:    s.clock.Now(),
	})
	return sess, nil
}

func (s *Service) TransitionPhase(ctx context.Context, sessionID uuid.UUID, to models.GamePhase) (*models.Session, error) {
	sess, err := s.app.TransitionPhase(ctx, sessionID, to)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, sessionID, events.TypePhaseChanged, events.PhaseChangedPayload{
		SessionID:    sessionID.String(),
		Phase:        sess.CurrentPhase,
		TurnNumber:   sess.TurnNumber,
		PhaseEndTime: deref(sess.PhaseEndTime),
		ChangedAt:    s.clock.Now(),
	})
	return sess, nil
}

func (s *Service) CompleteSession(ctx context.Context, sessionID uuid.UUID, winners []string) (*models.Session, error) {
	sess, err := s.app.CompleteSession(ctx, sessionID, winners)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, sessionID, events.TypeGameEnded, events.GameEndedPayload{
		SessionID:  sessionID.String(),
		Winners:    winners,
		TurnNumber: sess.TurnNumber,
		EndedAt:    s.clock.Now(),
	})
	return sess, nil
}

func (s *Service) Rematch(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	sess, err := s.app.Rematch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// The rematch lives in a new session; the event carries the new ID so
	// subscribers (the scheduler included) track the right row.
	players, err := s.app.ListPlayers(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, sess.ID, events.TypeRematchStarted, events.RematchStartedPayload{
		SessionID:         sess.ID.String(),
		PreviousSessionID: sessionID.String(),
		RematchCount:      sess.RematchCount,
		Players:           playerNames(players),
		StartedAt:         s.clock.Now(),
	})
	return sess, nil
}

// emit serializes and inserts an outbox event. Emission failures are logged
// but never fail the underlying operation: the state change already
// happened and the next poll of session state repairs observers.
func (s *Service) emit(ctx context.Context, sessionID uuid.UUID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		return
	}
	var insertErr error
	switch eventType {
	case events.TypeSessionCreated:
		insertErr = s.outbox.InsertSessionCreated(ctx, sessionID, data)
	case events.TypePlayerJoined:
		insertErr = s.outbox.InsertPlayerJoined(ctx, sessionID, data)
	case events.TypeGameStarted:
		insertErr = s.outbox.InsertGameStarted(ctx, sessionID, data)
	case events.TypePhaseChanged:
		insertErr = s.outbox.InsertPhaseChanged(ctx, sessionID, data)
	case events.TypeGameEnded:
		insertErr = s.outbox.InsertGameEnded(ctx, sessionID, data)
	case events.TypeSessionPaused:
		insertErr = s.outbox.InsertSessionPaused(ctx, sessionID, data)
	case events.TypeSessionResumed:
		insertErr = s.outbox.InsertSessionResumed(ctx, sessionID, data)
	case events.TypeRematchStarted:
		insertErr = s.outbox.InsertRematchStarted(ctx, sessionID, data)
	default:
		insertErr = fmt.Errorf("unknown event type %q", eventType)
	}
	if insertErr != nil {
		log.Error().Err(insertErr).Str("event_type", eventType).Msg("failed to insert outbox event")
	}
}

func playerNames(players []models.PlayerGameState) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.PlayerName
	}
	return names
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

package outbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LaurentStar/hourly-coup/go/internal/game/events"
)

// OutboxRepository defines what the app layer needs from the repository.
type OutboxRepository interface {
	InsertOutboxEvent(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error
}

// App handles outbox business logic.
type App struct {
	repo OutboxRepository
}

// NewApp creates a new outbox App.
func NewApp(repo OutboxRepository) *App {
	return &App{repo: repo}
}

// InsertEvent inserts an event of the given type into the outbox.
func (a *App) InsertEvent(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("invalid %s payload: event payload cannot be empty", eventType)
	}
	if err := a.repo.InsertOutboxEvent(ctx, sessionID, eventType, payload); err != nil {
		return fmt.Errorf("failed to insert %s event: %w", eventType, err)
	}
	log.Info().
		Str("session_id", sessionID.String()).
		Str("event_type", eventType).
		Msg("outbox event inserted")
	return nil
}

// Typed helpers used by the session service and the orchestrator.

func (a *App) InsertSessionCreated(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return a.InsertEvent(ctx, sessionID, events.TypeSessionCreated, payload)
}

func (a *App) InsertPlayerJoined(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return a.InsertEvent(ctx, sessionID, events.TypePlayerJoined, payload)
}

func (a *App) InsertGameStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return a.InsertEvent(ctx, sessionID, events.TypeGameStarted, payload)
}

func (a *App) InsertPhaseChanged(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return a.InsertEvent(ctx, sessionID, events.TypePhaseChanged, payload)
}

func (a *App) InsertTurnResolved(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return a.InsertEvent(ctx, sessionID, events.TypeTurnResolved, payload)
}

func (a *App) InsertGameEnded(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return a.InsertEvent(ctx, sessionID, events.TypeGameEnded, payload)
}

func (a *App) InsertSessionPaused(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return a.InsertEvent(ctx, sessionID, events.TypeSessionPaused, payload)
}

func (a *App) InsertSessionResumed(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return a.InsertEvent(ctx, sessionID, events.TypeSessionResumed, payload)
}

func (a *App) InsertRematchStarted(ctx context.Context, sessionID uuid.UUID, payload []byte) error {
	return a.InsertEvent(ctx, sessionID, events.TypeRematchStarted, payload)
}

package outbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LaurentStar/hourly-coup/go/internal/game/outbox/worker"
)

// Repository persists outbox rows. Events are inserted by the game services
// and drained by the worker.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) InsertOutboxEvent(ctx context.Context, sessionID uuid.UUID, eventType string, payload []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO outbox (id, session_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4::jsonb, now())`,
		uuid.New(), sessionID, eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// FetchUnsentOutboxTx fetches unpublished events inside tx with row locks so
// concurrent workers skip each other's batches.
func (r *Repository) FetchUnsentOutboxTx(ctx context.Context, tx pgx.Tx, limit int32) ([]worker.OutboxEvent, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, session_id, event_type, payload, created_at, published_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []worker.OutboxEvent
	for rows.Next() {
		var ev worker.OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.SessionID, &ev.EventType, &ev.Payload, &ev.CreatedAt, &ev.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MarkOutboxSentTx marks events published inside the worker's transaction.
func (r *Repository) MarkOutboxSentTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`UPDATE outbox SET published_at = now() WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to mark outbox events sent: %w", err)
	}
	return nil
}

func (r *Repository) FetchOutboxByID(ctx context.Context, id uuid.UUID) (*worker.OutboxEvent, error) {
	var ev worker.OutboxEvent
	err := r.pool.QueryRow(ctx, `
		SELECT id, session_id, event_type, payload, created_at, published_at
		FROM outbox WHERE id = $1`, id).
		Scan(&ev.ID, &ev.SessionID, &ev.EventType, &ev.Payload, &ev.CreatedAt, &ev.PublishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	return &ev, nil
}

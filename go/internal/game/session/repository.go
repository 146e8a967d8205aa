package session

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/LaurentStar/hourly-coup/go/internal/game"
	"github.com/LaurentStar/hourly-coup/go/internal/game/intake"
	"github.com/LaurentStar/hourly-coup/go/internal/game/resolve"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
	"github.com/LaurentStar/hourly-coup/go/internal/sqlutil"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is the querying surface shared by a pgx pool and a transaction, so
// the same repository methods run standalone or transaction-scoped.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists sessions, player states, reactions and turn results.
// It backs the session app, the intake app and the resolution engine.
type Repository struct {
	pool *pgxpool.Pool
	db   DBTX
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, db: pool}
}

// Migrate applies the embedded schema. Safe to run on every startup.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Transact runs fn against a transaction-scoped view of the repository, so a
// whole read-check-write sequence commits or rolls back as one.
func (r *Repository) Transact(ctx context.Context, fn func(intake.Repository) error) error {
	return sqlutil.Run(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&Repository{pool: r.pool, db: tx})
	})
}

// LockSession takes the session's row lock until the surrounding transaction
// ends, serializing declarations against each other and against phase
// transitions. Only meaningful inside Transact.
func (r *Repository) LockSession(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM game_sessions WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", game.ErrSessionNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to lock session: %w", err)
	}
	return nil
}

const sessionColumns = `id, name, status, current_phase, phase_end_time, turn_number, turn_limit,
	max_players, durations, upgrades_enabled, rematch_count, winners, deck_state, revealed_cards, created_at`

func (r *Repository) CreateSession(ctx context.Context, s *models.Session) error {
	durations, winners, deck, revealed, err := marshalSessionJSON(s)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO game_sessions
			(id, name, status, current_phase, phase_end_time, turn_number, turn_limit,
			 max_players, durations, upgrades_enabled, rematch_count, winners, deck_state, revealed_cards, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12::jsonb, $13::jsonb, $14::jsonb, $15)`,
		s.ID, s.Name, s.Status, s.CurrentPhase, s.PhaseEndTime, s.TurnNumber, s.TurnLimit,
		s.MaxPlayers, durations, s.UpgradesEnabled, s.RematchCount, winners, deck, revealed, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", game.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

func (r *Repository) UpdateSession(ctx context.Context, s *models.Session) error {
	durations, winners, deck, revealed, err := marshalSessionJSON(s)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE game_sessions SET
			name = $2, status = $3, current_phase = $4, phase_end_time = $5,
			turn_number = $6, turn_limit = $7, max_players = $8, durations = $9::jsonb,
			upgrades_enabled = $10, rematch_count = $11, winners = $12::jsonb,
			deck_state = $13::jsonb, revealed_cards = $14::jsonb, updated_at = now()
		WHERE id = $1`,
		s.ID, s.Name, s.Status, s.CurrentPhase, s.PhaseEndTime,
		s.TurnNumber, s.TurnLimit, s.MaxPlayers, durations,
		s.UpgradesEnabled, s.RematchCount, winners, deck, revealed)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", game.ErrSessionNotFound, s.ID)
	}
	return nil
}

func (r *Repository) ListSessions(ctx context.Context, statuses []models.SessionStatus) ([]models.Session, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE status = ANY($1) ORDER BY created_at`,
		statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()
	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// FetchNextDeadline returns the earliest pending phase deadline across all
// active sessions, or nil when no timer is armed.
func (r *Repository) FetchNextDeadline(ctx context.Context) (*time.Time, error) {
	var deadline *time.Time
	err := r.db.QueryRow(ctx, `
		SELECT phase_end_time FROM game_sessions
		WHERE status = 'ACTIVE' AND phase_end_time IS NOT NULL
		ORDER BY phase_end_time ASC LIMIT 1`).Scan(&deadline)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch next deadline: %w", err)
	}
	return deadline, nil
}

// FetchSessionsDue returns active sessions whose phase deadline has passed.
func (r *Repository) FetchSessionsDue(ctx context.Context, limit int32) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM game_sessions
		WHERE status = 'ACTIVE' AND phase_end_time IS NOT NULL AND phase_end_time <= now()
		ORDER BY phase_end_time ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions due: %w", err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) CreatePlayerState(ctx context.Context, p *models.PlayerGameState) error {
	cards, statuses, pending, lossPriority, err := marshalPlayerJSON(p)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO player_game_states
			(session_id, player_name, coins, debt, cards, statuses, pending_action, loss_priority, join_seq, joined_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7::jsonb, $8::jsonb, $9, $10)`,
		p.SessionID, p.PlayerName, p.Coins, p.Debt, cards, statuses, pending, lossPriority, p.JoinSeq, p.JoinedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s already joined", game.ErrPersistenceConflict, p.PlayerName)
	}
	if err != nil {
		return fmt.Errorf("failed to create player state: %w", err)
	}
	return nil
}

func (r *Repository) GetPlayerState(ctx context.Context, sessionID uuid.UUID, playerName string) (*models.PlayerGameState, error) {
	row := r.db.QueryRow(ctx, `
		SELECT session_id, player_name, coins, debt, cards, statuses, pending_action, loss_priority, join_seq, joined_at
		FROM player_game_states WHERE session_id = $1 AND player_name = $2`, sessionID, playerName)
	p, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s in session %s", game.ErrPlayerNotFound, playerName, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player state: %w", err)
	}
	return p, nil
}

func (r *Repository) ListPlayerStates(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerGameState, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, player_name, coins, debt, cards, statuses, pending_action, loss_priority, join_seq, joined_at
		FROM player_game_states WHERE session_id = $1 ORDER BY join_seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player states: %w", err)
	}
	defer rows.Close()
	var out []models.PlayerGameState
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player state: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repository) UpdatePlayerState(ctx context.Context, p *models.PlayerGameState) error {
	cards, statuses, pending, lossPriority, err := marshalPlayerJSON(p)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE player_game_states SET
			coins = $3, debt = $4, cards = $5::jsonb, statuses = $6::jsonb, pending_action = $7::jsonb, loss_priority = $8::jsonb
		WHERE session_id = $1 AND player_name = $2`,
		p.SessionID, p.PlayerName, p.Coins, p.Debt, cards, statuses, pending, lossPriority)
	if err != nil {
		return fmt.Errorf("failed to update player state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s in session %s", game.ErrPlayerNotFound, p.PlayerName, p.SessionID)
	}
	return nil
}

func (r *Repository) CountPlayers(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM player_game_states WHERE session_id = $1`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return n, nil
}

func (r *Repository) GetReaction(ctx context.Context, sessionID uuid.UUID, turn int, reactor, actor string) (*models.Reaction, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, session_id, turn_number, reactor, actor, target_action, type, block_role, is_locked, is_resolved, created_at
		FROM reactions WHERE session_id = $1 AND turn_number = $2 AND reactor = $3 AND actor = $4`,
		sessionID, turn, reactor, actor)
	re, err := scanReaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return re, nil
}

func (r *Repository) UpsertReaction(ctx context.Context, re *models.Reaction) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reactions
			(id, session_id, turn_number, reactor, actor, target_action, type, block_role, is_locked, is_resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, turn_number, reactor, actor) DO UPDATE SET
			target_action = EXCLUDED.target_action,
			type = EXCLUDED.type,
			block_role = EXCLUDED.block_role
		WHERE reactions.is_locked = FALSE`,
		re.ID, re.SessionID, re.TurnNumber, re.Reactor, re.Actor,
		re.TargetAction, re.Type, re.BlockRole, re.IsLocked, re.IsResolved, re.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert reaction: %w", err)
	}
	return nil
}

func (r *Repository) ListReactions(ctx context.Context, sessionID uuid.UUID, turn int) ([]models.Reaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, turn_number, reactor, actor, target_action, type, block_role, is_locked, is_resolved, created_at
		FROM reactions WHERE session_id = $1 AND turn_number = $2 ORDER BY created_at, id`,
		sessionID, turn)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()
	var out []models.Reaction
	for rows.Next() {
		re, err := scanReaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		out = append(out, *re)
	}
	return out, rows.Err()
}

func (r *Repository) LockReactions(ctx context.Context, sessionID uuid.UUID, turn int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE reactions SET is_locked = TRUE WHERE session_id = $1 AND turn_number = $2`,
		sessionID, turn)
	if err != nil {
		return fmt.Errorf("failed to lock reactions: %w", err)
	}
	return nil
}

func (r *Repository) CreateReactionTemplate(ctx context.Context, t *models.ReactionTemplate) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reaction_templates (id, session_id, reactor, type, match_role, match_action, block_role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.SessionID, t.Reactor, t.Type, t.MatchRole, t.MatchAction, t.BlockRole, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reaction template: %w", err)
	}
	return nil
}

func (r *Repository) ListReactionTemplates(ctx context.Context, sessionID uuid.UUID) ([]models.ReactionTemplate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, reactor, type, match_role, match_action, block_role, created_at
		FROM reaction_templates WHERE session_id = $1 ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reaction templates: %w", err)
	}
	defer rows.Close()
	var out []models.ReactionTemplate
	for rows.Next() {
		var t models.ReactionTemplate
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Reactor, &t.Type, &t.MatchRole, &t.MatchAction, &t.BlockRole, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reaction template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteReactionTemplates(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reaction_templates WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete reaction templates: %w", err)
	}
	return nil
}

func (r *Repository) GetTurnResult(ctx context.Context, sessionID uuid.UUID, turn int) (*models.TurnResult, error) {
	var (
		tr         models.TurnResult
		results    []byte
		eliminated []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT session_id, turn_number, action_results, eliminated, summary, created_at
		FROM turn_results WHERE session_id = $1 AND turn_number = $2`,
		sessionID, turn).Scan(&tr.SessionID, &tr.TurnNumber, &results, &eliminated, &tr.Summary, &tr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get turn result: %w", err)
	}
	if err := json.Unmarshal(results, &tr.ActionResults); err != nil {
		return nil, fmt.Errorf("failed to decode action results: %w", err)
	}
	if err := json.Unmarshal(eliminated, &tr.Eliminated); err != nil {
		return nil, fmt.Errorf("failed to decode eliminated list: %w", err)
	}
	return &tr, nil
}

func (r *Repository) ListTurnResults(ctx context.Context, sessionID uuid.UUID, limit int32) ([]models.TurnResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT session_id, turn_number, action_results, eliminated, summary, created_at
		FROM turn_results WHERE session_id = $1 ORDER BY turn_number DESC LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list turn results: %w", err)
	}
	defer rows.Close()
	var out []models.TurnResult
	for rows.Next() {
		var (
			tr         models.TurnResult
			results    []byte
			eliminated []byte
		)
		if err := rows.Scan(&tr.SessionID, &tr.TurnNumber, &results, &eliminated, &tr.Summary, &tr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn result: %w", err)
		}
		if err := json.Unmarshal(results, &tr.ActionResults); err != nil {
			return nil, fmt.Errorf("failed to decode action results: %w", err)
		}
		if err := json.Unmarshal(eliminated, &tr.Eliminated); err != nil {
			return nil, fmt.Errorf("failed to decode eliminated list: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// SaveResolution writes the turn result, updated player states and the
// session's deck in one transaction. A concurrent result for the same turn
// surfaces as ErrPersistenceConflict.
func (r *Repository) SaveResolution(ctx context.Context, res *resolve.Resolution) error {
	results, err := json.Marshal(res.Result.ActionResults)
	if err != nil {
		return fmt.Errorf("failed to encode action results: %w", err)
	}
	eliminated, err := json.Marshal(emptyIfNil(res.Result.Eliminated))
	if err != nil {
		return fmt.Errorf("failed to encode eliminated list: %w", err)
	}
	deck, err := json.Marshal(emptyIfNilCards(res.Deck))
	if err != nil {
		return fmt.Errorf("failed to encode deck: %w", err)
	}
	revealed, err := json.Marshal(emptyIfNilCards(res.RevealedCards))
	if err != nil {
		return fmt.Errorf("failed to encode revealed cards: %w", err)
	}

	err = sqlutil.Run(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO turn_results (session_id, turn_number, action_results, eliminated, summary, created_at)
			VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, now())`,
			res.Result.SessionID, res.Result.TurnNumber, results, eliminated, res.Result.Summary); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: turn %d already resolved", game.ErrPersistenceConflict, res.Result.TurnNumber)
			}
			return fmt.Errorf("failed to insert turn result: %w", err)
		}
		for i := range res.Players {
			p := &res.Players[i]
			cards, statuses, pending, lossPriority, err := marshalPlayerJSON(p)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				UPDATE player_game_states SET
					coins = $3, debt = $4, cards = $5::jsonb, statuses = $6::jsonb, pending_action = $7::jsonb, loss_priority = $8::jsonb
				WHERE session_id = $1 AND player_name = $2`,
				res.Result.SessionID, p.PlayerName, p.Coins, p.Debt, cards, statuses, pending, lossPriority); err != nil {
				return fmt.Errorf("failed to update player %s: %w", p.PlayerName, err)
			}
		}
		if _, err := tx.Exec(ctx, `
			UPDATE game_sessions SET deck_state = $2::jsonb, revealed_cards = $3::jsonb, updated_at = now()
			WHERE id = $1`,
			res.Result.SessionID, deck, revealed); err != nil {
			return fmt.Errorf("failed to update session deck: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE reactions SET is_resolved = TRUE
			WHERE session_id = $1 AND turn_number = $2`,
			res.Result.SessionID, res.Result.TurnNumber); err != nil {
			return fmt.Errorf("failed to mark reactions resolved: %w", err)
		}
		return nil
	})
	return err
}

func marshalSessionJSON(s *models.Session) (durations, winners, deck, revealed []byte, err error) {
	if durations, err = json.Marshal(s.Durations); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode durations: %w", err)
	}
	if winners, err = json.Marshal(emptyIfNil(s.Winners)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode winners: %w", err)
	}
	if deck, err = json.Marshal(emptyIfNilCards(s.DeckState)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode deck: %w", err)
	}
	if revealed, err = json.Marshal(emptyIfNilCards(s.RevealedCards)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode revealed cards: %w", err)
	}
	return durations, winners, deck, revealed, nil
}

func marshalPlayerJSON(p *models.PlayerGameState) (cards, statuses, pending, lossPriority []byte, err error) {
	if cards, err = json.Marshal(emptyIfNilCards(p.Cards)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode cards: %w", err)
	}
	if statuses, err = json.Marshal(p.Statuses); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode statuses: %w", err)
	}
	if p.Pending != nil {
		if pending, err = json.Marshal(p.Pending); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode pending action: %w", err)
		}
	}
	if lossPriority, err = json.Marshal(emptyIfNilCards(p.LossPriority)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode loss priority: %w", err)
	}
	return cards, statuses, pending, lossPriority, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var (
		s         models.Session
		durations []byte
		winners   []byte
		deck      []byte
		revealed  []byte
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Status, &s.CurrentPhase, &s.PhaseEndTime,
		&s.TurnNumber, &s.TurnLimit, &s.MaxPlayers, &durations, &s.UpgradesEnabled,
		&s.RematchCount, &winners, &deck, &revealed, &s.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(durations, &s.Durations); err != nil {
		return nil, fmt.Errorf("failed to decode durations: %w", err)
	}
	if err := json.Unmarshal(winners, &s.Winners); err != nil {
		return nil, fmt.Errorf("failed to decode winners: %w", err)
	}
	if err := json.Unmarshal(deck, &s.DeckState); err != nil {
		return nil, fmt.Errorf("failed to decode deck: %w", err)
	}
	if err := json.Unmarshal(revealed, &s.RevealedCards); err != nil {
		return nil, fmt.Errorf("failed to decode revealed cards: %w", err)
	}
	return &s, nil
}

func scanPlayer(row rowScanner) (*models.PlayerGameState, error) {
	var (
		p            models.PlayerGameState
		cards        []byte
		statuses     []byte
		pending      []byte
		lossPriority []byte
	)
	if err := row.Scan(&p.SessionID, &p.PlayerName, &p.Coins, &p.Debt,
		&cards, &statuses, &pending, &lossPriority, &p.JoinSeq, &p.JoinedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cards, &p.Cards); err != nil {
		return nil, fmt.Errorf("failed to decode cards: %w", err)
	}
	if err := json.Unmarshal(statuses, &p.Statuses); err != nil {
		return nil, fmt.Errorf("failed to decode statuses: %w", err)
	}
	if err := json.Unmarshal(lossPriority, &p.LossPriority); err != nil {
		return nil, fmt.Errorf("failed to decode loss priority: %w", err)
	}
	if len(p.LossPriority) == 0 {
		p.LossPriority = nil
	}
	if len(pending) > 0 {
		p.Pending = &models.PendingAction{}
		if err := json.Unmarshal(pending, p.Pending); err != nil {
			return nil, fmt.Errorf("failed to decode pending action: %w", err)
		}
	}
	return &p, nil
}

func scanReaction(row rowScanner) (*models.Reaction, error) {
	var re models.Reaction
	if err := row.Scan(&re.ID, &re.SessionID, &re.TurnNumber, &re.Reactor, &re.Actor,
		&re.TargetAction, &re.Type, &re.BlockRole, &re.IsLocked, &re.IsResolved, &re.CreatedAt); err != nil {
		return nil, err
	}
	return &re, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func statusStrings(statuses []models.SessionStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyIfNilCards(c []models.CardType) []models.CardType {
	if c == nil {
		return []models.CardType{}
	}
	return c
}

// Package gateway exposes the HTTP+JSON intake API and the WebSocket
// broadcast fan-out. Declarations come in over HTTP; everything going the
// other way rides the event stream.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/LaurentStar/hourly-coup/go/internal/game"
	"github.com/LaurentStar/hourly-coup/go/internal/game/intake"
	"github.com/LaurentStar/hourly-coup/go/internal/game/session"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// SessionAPI is the slice of the session service the gateway exposes.
type SessionAPI interface {
	CreateSession(ctx context.Context, req session.CreateSessionRequest) (*models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListSessions(ctx context.Context, statuses []models.SessionStatus) ([]models.Session, error)
	ListPlayers(ctx context.Context, sessionID uuid.UUID) ([]models.PlayerGameState, error)
	ListTurnResults(ctx context.Context, sessionID uuid.UUID, limit int32) ([]models.TurnResult, error)
	JoinSession(ctx context.Context, sessionID uuid.UUID, req session.JoinSessionRequest) (*models.PlayerGameState, error)
	StartSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	PauseSession(ctx context.Context, sessionID uuid.UUID, reason string) (*models.Session, error)
	ResumeSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
	Rematch(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)
}

// IntakeAPI is the slice of the intake app the gateway exposes.
type IntakeAPI interface {
	DeclareAction(ctx context.Context, sessionID uuid.UUID, req intake.DeclareActionRequest) (*models.PlayerGameState, error)
	DeclareReaction(ctx context.Context, sessionID uuid.UUID, req intake.DeclareReactionRequest) (*models.Reaction, error)
	DeclareTemplate(ctx context.Context, sessionID uuid.UUID, req intake.DeclareTemplateRequest) (*models.ReactionTemplate, error)
	SetLossPriority(ctx context.Context, sessionID uuid.UUID, req intake.SetLossPriorityRequest) (*models.PlayerGameState, error)
}

// Handler serves the game HTTP API.
type Handler struct {
	sessions SessionAPI
	intake   IntakeAPI
}

// NewHandler creates a new API handler.
func NewHandler(sessions SessionAPI, intake IntakeAPI) *Handler {
	return &Handler{sessions: sessions, intake: intake}
}

// RegisterRoutes registers the API routes with an HTTP mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", h.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.handleGetState)
	mux.HandleFunc("GET /api/sessions/{id}/results", h.handleListResults)
	mux.HandleFunc("POST /api/sessions/{id}/join", h.handleJoin)
	mux.HandleFunc("POST /api/sessions/{id}/start", h.handleStart)
	mux.HandleFunc("POST /api/sessions/{id}/pause", h.handlePause)
	mux.HandleFunc("POST /api/sessions/{id}/resume", h.handleResume)
	mux.HandleFunc("POST /api/sessions/{id}/rematch", h.handleRematch)
	mux.HandleFunc("POST /api/sessions/{id}/action", h.handleDeclareAction)
	mux.HandleFunc("POST /api/sessions/{id}/reaction", h.handleDeclareReaction)
	mux.HandleFunc("POST /api/sessions/{id}/template", h.handleDeclareTemplate)
	mux.HandleFunc("PUT /api/sessions/{id}/loss-priority", h.handleSetLossPriority)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := h.sessions.CreateSession(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	var statuses []models.SessionStatus
	if s := r.URL.Query().Get("status"); s != "" {
		statuses = append(statuses, models.SessionStatus(s))
	}
	sessions, err := h.sessions.ListSessions(r.Context(), statuses)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	players, err := h.sessions.ListPlayers(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	viewer := r.URL.Query().Get("player")
	writeJSON(w, http.StatusOK, buildSessionView(sess, players, viewer))
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	results, err := h.sessions.ListTurnResults(r.Context(), id, 50)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req session.JoinSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	player, err := h.sessions.JoinSession(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.sessions.StartSession)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}
	sess, err := h.sessions.PauseSession(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.sessions.ResumeSession)
}

func (h *Handler) handleRematch(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.sessions.Rematch)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (*models.Session, error)) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := op(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleDeclareAction(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req intake.DeclareActionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	player, err := h.intake.DeclareAction(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (h *Handler) handleDeclareReaction(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req intake.DeclareReactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reaction, err := h.intake.DeclareReaction(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reaction)
}

func (h *Handler) handleDeclareTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req intake.DeclareTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tmpl, err := h.intake.DeclareTemplate(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *Handler) handleSetLossPriority(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req intake.SetLossPriorityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	player, err := h.intake.SetLossPriority(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid session id"))
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrSessionNotFound), errors.Is(err, game.ErrPlayerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrInvalidAction),
		errors.Is(err, game.ErrInvalidTarget),
		errors.Is(err, game.ErrInvalidConfiguration):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidPhase),
		errors.Is(err, game.ErrActionAlreadyLocked),
		errors.Is(err, game.ErrPersistenceConflict):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInsufficientCoins),
		errors.Is(err, game.ErrForcedCoupRequired),
		errors.Is(err, game.ErrNotEligible):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, status, errorBody("internal error"))
		return
	}
	writeJSON(w, status, errorBody(err.Error()))
}

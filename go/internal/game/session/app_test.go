package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/LaurentStar/hourly-coup/go/internal/game"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

type fakeRepo struct {
	sessions map[uuid.UUID]*models.Session
	players  map[uuid.UUID]map[string]*models.PlayerGameState
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions: make(map[uuid.UUID]*models.Session),
		players:  make(map[uuid.UUID]map[string]*models.PlayerGameState),
	}
}

func (f *fakeRepo) CreateSession(_ context.Context, s *models.Session) error {
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeRepo) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, game.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) UpdateSession(_ context.Context, s *models.Session) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return game.ErrSessionNotFound
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeRepo) ListSessions(_ context.Context, statuses []models.SessionStatus) ([]models.Session, error) {
	var out []models.Session
	for _, s := range f.sessions {
		for _, st := range statuses {
			if s.Status == st {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) FetchNextDeadline(_ context.Context) (*time.Time, error) {
	var next *time.Time
	for _, s := range f.sessions {
		if s.Status == models.SessionStatusActive && s.PhaseEndTime != nil {
			if next == nil || s.PhaseEndTime.Before(*next) {
				t := *s.PhaseEndTime
				next = &t
			}
		}
	}
	return next, nil
}

func (f *fakeRepo) FetchSessionsDue(_ context.Context, _ int32) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeRepo) CreatePlayerState(_ context.Context, p *models.PlayerGameState) error {
	byName, ok := f.players[p.SessionID]
	if !ok {
		byName = make(map[string]*models.PlayerGameState)
		f.players[p.SessionID] = byName
	}
	if _, exists := byName[p.PlayerName]; exists {
		return game.ErrPersistenceConflict
	}
	cp := *p
	byName[p.PlayerName] = &cp
	return nil
}

func (f *fakeRepo) GetPlayerState(_ context.Context, sessionID uuid.UUID, name string) (*models.PlayerGameState, error) {
	p, ok := f.players[sessionID][name]
	if !ok {
		return nil, game.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) ListPlayerStates(_ context.Context, sessionID uuid.UUID) ([]models.PlayerGameState, error) {
	var out []models.PlayerGameState
	for _, p := range f.players[sessionID] {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRepo) UpdatePlayerState(_ context.Context, p *models.PlayerGameState) error {
	if _, ok := f.players[p.SessionID][p.PlayerName]; !ok {
		return game.ErrPlayerNotFound
	}
	cp := *p
	f.players[p.SessionID][p.PlayerName] = &cp
	return nil
}

func (f *fakeRepo) CountPlayers(_ context.Context, sessionID uuid.UUID) (int, error) {
	return len(f.players[sessionID]), nil
}

func (f *fakeRepo) ListTurnResults(_ context.Context, sessionID uuid.UUID, limit int32) ([]models.TurnResult, error) {
	return nil, nil
}

func newTestApp() (*App, *fakeRepo, *clockwork.FakeClock) {
	repo := newFakeRepo()
	clock := clockwork.NewFakeClock()
	return NewApp(repo, clock), repo, clock
}

func mustCreate(t *testing.T, app *App, req CreateSessionRequest) *models.Session {
	t.Helper()
	s, err := app.CreateSession(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return s
}

func mustJoin(t *testing.T, app *App, sessionID uuid.UUID, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := app.JoinSession(context.Background(), sessionID, name); err != nil {
			t.Fatalf("JoinSession(%s) error = %v", name, err)
		}
	}
}

func TestCreateSessionValidation(t *testing.T) {
	app, _, _ := newTestApp()
	tests := []struct {
		name string
		req  CreateSessionRequest
	}{
		{"missing name", CreateSessionRequest{}},
		{"too many players", CreateSessionRequest{Name: "x", MaxPlayers: 9}},
		{"one player", CreateSessionRequest{Name: "x", MaxPlayers: 1}},
		{"negative turn limit", CreateSessionRequest{Name: "x", TurnLimit: -1}},
		{"zero phase duration", CreateSessionRequest{Name: "x", Durations: &models.PhaseDurations{Action: 50}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := app.CreateSession(context.Background(), tt.req); !errors.Is(err, game.ErrInvalidConfiguration) {
				t.Errorf("CreateSession() error = %v, want %v", err, game.ErrInvalidConfiguration)
			}
		})
	}
}

func TestJoinSessionAssignsSeats(t *testing.T) {
	app, repo, _ := newTestApp()
	s := mustCreate(t, app, CreateSessionRequest{Name: "lobby", MaxPlayers: 2})

	mustJoin(t, app, s.ID, "alice", "bob")

	if repo.players[s.ID]["alice"].JoinSeq == repo.players[s.ID]["bob"].JoinSeq {
		t.Errorf("players share a join seq")
	}
	if repo.players[s.ID]["alice"].Coins != models.StartingCoins {
		t.Errorf("alice coins = %d, want %d", repo.players[s.ID]["alice"].Coins, models.StartingCoins)
	}

	// Third seat in a two-seat session.
	if _, err := app.JoinSession(context.Background(), s.ID, "carol"); !errors.Is(err, game.ErrNotEligible) {
		t.Errorf("join full session error = %v, want %v", err, game.ErrNotEligible)
	}
}

func TestStartSessionDealsAndArmsTimer(t *testing.T) {
	app, repo, clock := newTestApp()
	s := mustCreate(t, app, CreateSessionRequest{Name: "game"})
	mustJoin(t, app, s.ID, "alice", "bob", "carol")

	started, err := app.StartSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if started.Status != models.SessionStatusActive || started.CurrentPhase != models.PhaseAction {
		t.Errorf("started session = %s/%s, want ACTIVE/ACTION", started.Status, started.CurrentPhase)
	}
	if started.TurnNumber != 1 {
		t.Errorf("turn = %d, want 1", started.TurnNumber)
	}
	wantDeadline := clock.Now().Add(50 * time.Minute)
	if started.PhaseEndTime == nil || !started.PhaseEndTime.Equal(wantDeadline) {
		t.Errorf("phase end = %v, want %v", started.PhaseEndTime, wantDeadline)
	}
	// 15-card deck, 3 players x 2 cards dealt.
	if len(started.DeckState) != 9 {
		t.Errorf("deck size = %d, want 9", len(started.DeckState))
	}
	for _, name := range []string{"alice", "bob", "carol"} {
		p := repo.players[s.ID][name]
		if len(p.Cards) != 2 {
			t.Errorf("%s cards = %d, want 2", name, len(p.Cards))
		}
		if !p.IsAlive() {
			t.Errorf("%s not alive after start", name)
		}
	}

	// Double start.
	if _, err := app.StartSession(context.Background(), s.ID); !errors.Is(err, game.ErrInvalidPhase) {
		t.Errorf("second StartSession() error = %v, want %v", err, game.ErrInvalidPhase)
	}
}

func TestStartSessionNeedsTwoPlayers(t *testing.T) {
	app, _, _ := newTestApp()
	s := mustCreate(t, app, CreateSessionRequest{Name: "solo"})
	mustJoin(t, app, s.ID, "alice")

	if _, err := app.StartSession(context.Background(), s.ID); !errors.Is(err, game.ErrInvalidConfiguration) {
		t.Errorf("StartSession() error = %v, want %v", err, game.ErrInvalidConfiguration)
	}
}

func TestPauseResumeRearmsDeadline(t *testing.T) {
	app, _, clock := newTestApp()
	s := mustCreate(t, app, CreateSessionRequest{Name: "game"})
	mustJoin(t, app, s.ID, "alice", "bob")
	if _, err := app.StartSession(context.Background(), s.ID); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	paused, err := app.PauseSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("PauseSession() error = %v", err)
	}
	if paused.PhaseEndTime != nil {
		t.Errorf("paused session still has an armed deadline")
	}

	clock.Advance(3 * time.Hour)
	resumed, err := app.ResumeSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("ResumeSession() error = %v", err)
	}
	want := clock.Now().Add(50 * time.Minute)
	if resumed.PhaseEndTime == nil || !resumed.PhaseEndTime.Equal(want) {
		t.Errorf("resumed deadline = %v, want %v", resumed.PhaseEndTime, want)
	}
}

func TestTransitionPhaseWrapsTurn(t *testing.T) {
	app, _, clock := newTestApp()
	s := mustCreate(t, app, CreateSessionRequest{Name: "game"})
	mustJoin(t, app, s.ID, "alice", "bob")
	if _, err := app.StartSession(context.Background(), s.ID); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	order := []struct {
		phase    models.GamePhase
		wantTurn int
		wantDur  time.Duration
	}{
		{models.PhaseLockoutAction, 1, 10 * time.Minute},
		{models.PhaseReaction, 1, 20 * time.Minute},
		{models.PhaseLockoutReaction, 1, 10 * time.Minute},
		{models.PhaseBroadcast, 1, 1 * time.Minute},
		{models.PhaseAction, 2, 50 * time.Minute},
	}
	for _, step := range order {
		got, err := app.TransitionPhase(context.Background(), s.ID, step.phase)
		if err != nil {
			t.Fatalf("TransitionPhase(%s) error = %v", step.phase, err)
		}
		if got.TurnNumber != step.wantTurn {
			t.Errorf("turn after %s = %d, want %d", step.phase, got.TurnNumber, step.wantTurn)
		}
		want := clock.Now().Add(step.wantDur)
		if got.PhaseEndTime == nil || !got.PhaseEndTime.Equal(want) {
			t.Errorf("deadline after %s = %v, want %v", step.phase, got.PhaseEndTime, want)
		}
	}
}

func TestTransitionPhaseRejectsSkippedPhase(t *testing.T) {
	app, _, _ := newTestApp()
	s := mustCreate(t, app, CreateSessionRequest{Name: "game"})
	mustJoin(t, app, s.ID, "alice", "bob")
	if _, err := app.StartSession(context.Background(), s.ID); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	// Straight from the action window to the reaction window skips the
	// lockout where defaults and eligibility are computed.
	if _, err := app.TransitionPhase(context.Background(), s.ID, models.PhaseReaction); !errors.Is(err, game.ErrInvalidPhase) {
		t.Errorf("TransitionPhase(ACTION->REACTION) error = %v, want %v", err, game.ErrInvalidPhase)
	}
	if _, err := app.TransitionPhase(context.Background(), s.ID, models.PhaseEnding); !errors.Is(err, game.ErrInvalidPhase) {
		t.Errorf("TransitionPhase(ACTION->ENDING) error = %v, want %v", err, game.ErrInvalidPhase)
	}
}

func TestTransitionPhaseBroadcastMayEndGame(t *testing.T) {
	app, _, _ := newTestApp()
	s := mustCreate(t, app, CreateSessionRequest{Name: "game"})
	mustJoin(t, app, s.ID, "alice", "bob")
	if _, err := app.StartSession(context.Background(), s.ID); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	for _, phase := range []models.GamePhase{
		models.PhaseLockoutAction, models.PhaseReaction,
		models.PhaseLockoutReaction, models.PhaseBroadcast,
	} {
		if _, err := app.TransitionPhase(context.Background(), s.ID, phase); err != nil {
			t.Fatalf("TransitionPhase(%s) error = %v", phase, err)
		}
	}

	got, err := app.TransitionPhase(context.Background(), s.ID, models.PhaseEnding)
	if err != nil {
		t.Fatalf("TransitionPhase(BROADCAST->ENDING) error = %v", err)
	}
	if got.CurrentPhase != models.PhaseEnding {
		t.Errorf("phase = %s, want %s", got.CurrentPhase, models.PhaseEnding)
	}
}

func TestRematchStartsFreshSession(t *testing.T) {
	app, repo, _ := newTestApp()
	s := mustCreate(t, app, CreateSessionRequest{Name: "game"})
	mustJoin(t, app, s.ID, "alice", "bob")
	if _, err := app.StartSession(context.Background(), s.ID); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	// Rematch requires an ended session.
	if _, err := app.Rematch(context.Background(), s.ID); !errors.Is(err, game.ErrInvalidPhase) {
		t.Errorf("Rematch() on active session error = %v, want %v", err, game.ErrInvalidPhase)
	}

	if _, err := app.CompleteSession(context.Background(), s.ID, []string{"alice"}); err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	got, err := app.Rematch(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("Rematch() error = %v", err)
	}

	// The rematch is its own session row: turn history of the ended game
	// stays put, and turn one of the new game resolves on its own key.
	if got.ID == s.ID {
		t.Fatal("rematch reused the ended session's id")
	}
	if got.TurnNumber != 1 || got.Status != models.SessionStatusActive {
		t.Errorf("rematch session = turn %d status %s, want 1/ACTIVE", got.TurnNumber, got.Status)
	}
	if got.RematchCount != 1 {
		t.Errorf("rematch count = %d, want 1", got.RematchCount)
	}
	if len(got.Winners) != 0 {
		t.Errorf("rematch kept winners %v", got.Winners)
	}

	prev := repo.sessions[s.ID]
	if prev.Status != models.SessionStatusEnded {
		t.Errorf("ended session status = %s, want ENDED", prev.Status)
	}
	if len(prev.Winners) != 1 || prev.Winners[0] != "alice" {
		t.Errorf("ended session winners = %v, want [alice]", prev.Winners)
	}
	if prev.RematchCount != 1 {
		t.Errorf("ended session rematch count = %d, want 1", prev.RematchCount)
	}

	for _, name := range []string{"alice", "bob"} {
		p := repo.players[got.ID][name]
		if p == nil {
			t.Fatalf("%s not seated in rematch session", name)
		}
		if p.Coins != models.StartingCoins || len(p.Cards) != 2 || !p.IsAlive() {
			t.Errorf("%s rematch seat = %d coins %d cards, want fresh deal", name, p.Coins, len(p.Cards))
		}
	}
}

func TestRematchLimits(t *testing.T) {
	app, repo, _ := newTestApp()
	s := mustCreate(t, app, CreateSessionRequest{Name: "game"})
	mustJoin(t, app, s.ID, "alice", "bob")
	if _, err := app.StartSession(context.Background(), s.ID); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	// Each rematch chains a new session; the count carries through.
	cur := s.ID
	for i := 0; i < models.MaxRematches; i++ {
		if _, err := app.CompleteSession(context.Background(), cur, []string{"alice"}); err != nil {
			t.Fatalf("CompleteSession() error = %v", err)
		}
		got, err := app.Rematch(context.Background(), cur)
		if err != nil {
			t.Fatalf("Rematch(%d) error = %v", i+1, err)
		}
		if got.RematchCount != i+1 {
			t.Errorf("rematch %d count = %d, want %d", i+1, got.RematchCount, i+1)
		}
		cur = got.ID
	}

	if _, err := app.CompleteSession(context.Background(), cur, []string{"bob"}); err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if _, err := app.Rematch(context.Background(), cur); !errors.Is(err, game.ErrInvalidConfiguration) {
		t.Errorf("Rematch() past limit error = %v, want %v", err, game.ErrInvalidConfiguration)
	}
	if repo.sessions[cur].RematchCount != models.MaxRematches {
		t.Errorf("rematch count = %d, want %d", repo.sessions[cur].RematchCount, models.MaxRematches)
	}
}

package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/LaurentStar/hourly-coup/go/internal/game"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

type fakeRepo struct {
	session   *models.Session
	players   map[string]*models.PlayerGameState
	reactions map[string]*models.Reaction // key: reactor/actor
	templates []models.ReactionTemplate

	lockCalls int
}

func newFakeRepo(session *models.Session, players ...*models.PlayerGameState) *fakeRepo {
	f := &fakeRepo{
		session:   session,
		players:   make(map[string]*models.PlayerGameState),
		reactions: make(map[string]*models.Reaction),
	}
	for _, p := range players {
		p.SessionID = session.ID
		f.players[p.PlayerName] = p
	}
	return f
}

func (f *fakeRepo) Transact(_ context.Context, fn func(Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) LockSession(_ context.Context, id uuid.UUID) error {
	if f.session == nil || f.session.ID != id {
		return game.ErrSessionNotFound
	}
	f.lockCalls++
	return nil
}

func (f *fakeRepo) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	if f.session == nil || f.session.ID != id {
		return nil, game.ErrSessionNotFound
	}
	s := *f.session
	return &s, nil
}

func (f *fakeRepo) GetPlayerState(_ context.Context, _ uuid.UUID, name string) (*models.PlayerGameState, error) {
	p, ok := f.players[name]
	if !ok {
		return nil, game.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) ListPlayerStates(_ context.Context, _ uuid.UUID) ([]models.PlayerGameState, error) {
	var out []models.PlayerGameState
	for _, p := range f.players {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRepo) UpdatePlayerState(_ context.Context, p *models.PlayerGameState) error {
	cp := *p
	f.players[p.PlayerName] = &cp
	return nil
}

func (f *fakeRepo) GetReaction(_ context.Context, _ uuid.UUID, _ int, reactor, actor string) (*models.Reaction, error) {
	re, ok := f.reactions[reactor+"/"+actor]
	if !ok {
		return nil, nil
	}
	cp := *re
	return &cp, nil
}

func (f *fakeRepo) UpsertReaction(_ context.Context, re *models.Reaction) error {
	cp := *re
	f.reactions[re.Reactor+"/"+re.Actor] = &cp
	return nil
}

func (f *fakeRepo) ListReactions(_ context.Context, _ uuid.UUID, _ int) ([]models.Reaction, error) {
	var out []models.Reaction
	for _, re := range f.reactions {
		out = append(out, *re)
	}
	return out, nil
}

func (f *fakeRepo) LockReactions(_ context.Context, _ uuid.UUID, _ int) error {
	for _, re := range f.reactions {
		re.IsLocked = true
	}
	return nil
}

func (f *fakeRepo) CreateReactionTemplate(_ context.Context, t *models.ReactionTemplate) error {
	f.templates = append(f.templates, *t)
	return nil
}

func (f *fakeRepo) ListReactionTemplates(_ context.Context, _ uuid.UUID) ([]models.ReactionTemplate, error) {
	return append([]models.ReactionTemplate(nil), f.templates...), nil
}

func (f *fakeRepo) DeleteReactionTemplates(_ context.Context, _ uuid.UUID) error {
	f.templates = nil
	return nil
}

func activeSession(phase models.GamePhase) *models.Session {
	return &models.Session{
		ID:              uuid.New(),
		Name:            "test",
		Status:          models.SessionStatusActive,
		CurrentPhase:    phase,
		TurnNumber:      1,
		UpgradesEnabled: true,
		Durations:       models.DefaultPhaseDurations(),
	}
}

func alivePlayer(name string, seq, coins int, cards ...models.CardType) *models.PlayerGameState {
	return &models.PlayerGameState{
		PlayerName: name,
		Coins:      coins,
		Cards:      cards,
		Statuses:   []models.PlayerStatus{models.StatusAlive},
		JoinSeq:    seq,
	}
}

func newTestApp(repo *fakeRepo) *App {
	return NewApp(repo, clockwork.NewFakeClock())
}

func TestDeclareActionValidation(t *testing.T) {
	tests := []struct {
		name    string
		phase   models.GamePhase
		player  *models.PlayerGameState
		req     DeclareActionRequest
		wantErr error
	}{
		{
			name:    "wrong phase",
			phase:   models.PhaseReaction,
			player:  alivePlayer("alice", 0, 2, models.CardDuke),
			req:     DeclareActionRequest{PlayerName: "alice", Action: models.ActionIncome},
			wantErr: game.ErrInvalidPhase,
		},
		{
			name:    "unknown action",
			phase:   models.PhaseAction,
			player:  alivePlayer("alice", 0, 2, models.CardDuke),
			req:     DeclareActionRequest{PlayerName: "alice", Action: "REVOLT"},
			wantErr: game.ErrInvalidAction,
		},
		{
			name:    "coup without coins",
			phase:   models.PhaseAction,
			player:  alivePlayer("alice", 0, 5, models.CardDuke),
			req:     DeclareActionRequest{PlayerName: "alice", Action: models.ActionCoup, Target: "bob"},
			wantErr: game.ErrInsufficientCoins,
		},
		{
			name:    "targeted action without target",
			phase:   models.PhaseAction,
			player:  alivePlayer("alice", 0, 8, models.CardDuke),
			req:     DeclareActionRequest{PlayerName: "alice", Action: models.ActionCoup},
			wantErr: game.ErrInvalidTarget,
		},
		{
			name:    "self target",
			phase:   models.PhaseAction,
			player:  alivePlayer("alice", 0, 8, models.CardDuke),
			req:     DeclareActionRequest{PlayerName: "alice", Action: models.ActionSteal, Target: "alice"},
			wantErr: game.ErrInvalidTarget,
		},
		{
			name:    "ten coins forces coup",
			phase:   models.PhaseAction,
			player:  alivePlayer("alice", 0, 10, models.CardDuke),
			req:     DeclareActionRequest{PlayerName: "alice", Action: models.ActionTax},
			wantErr: game.ErrForcedCoupRequired,
		},
		{
			name:   "dead player",
			phase:  models.PhaseAction,
			player: &models.PlayerGameState{PlayerName: "alice", Statuses: []models.PlayerStatus{models.PlayerStatus("DEAD")}},
			req:    DeclareActionRequest{PlayerName: "alice", Action: models.ActionIncome},
			wantErr: game.ErrNotEligible,
		},
		{
			name:    "wrong role claim",
			phase:   models.PhaseAction,
			player:  alivePlayer("alice", 0, 2, models.CardDuke),
			req:     DeclareActionRequest{PlayerName: "alice", Action: models.ActionTax, ClaimedRole: models.CardCaptain},
			wantErr: game.ErrInvalidAction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(activeSession(tt.phase), tt.player, alivePlayer("bob", 1, 2, models.CardContessa))
			app := newTestApp(repo)
			_, err := app.DeclareAction(context.Background(), repo.session.ID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DeclareAction() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeclareActionChargesUpFront(t *testing.T) {
	repo := newFakeRepo(activeSession(models.PhaseAction),
		alivePlayer("alice", 0, 8, models.CardAssassin),
		alivePlayer("bob", 1, 2, models.CardContessa))
	app := newTestApp(repo)

	got, err := app.DeclareAction(context.Background(), repo.session.ID, DeclareActionRequest{
		PlayerName: "alice", Action: models.ActionCoup, Target: "bob",
	})
	if err != nil {
		t.Fatalf("DeclareAction() error = %v", err)
	}
	if got.Coins != 1 {
		t.Errorf("coins after coup declaration = %d, want 1", got.Coins)
	}
	if got.Pending == nil || got.Pending.Type != models.ActionCoup {
		t.Fatalf("pending = %+v, want coup", got.Pending)
	}
}

func TestDeclareActionTargetMustBeInPlay(t *testing.T) {
	dead := &models.PlayerGameState{PlayerName: "dave", Statuses: []models.PlayerStatus{models.PlayerStatus("DEAD")}}
	repo := newFakeRepo(activeSession(models.PhaseAction),
		alivePlayer("alice", 0, 8, models.CardAssassin), dead)
	app := newTestApp(repo)
	ctx := context.Background()

	for _, target := range []string{"mallory", "dave"} {
		_, err := app.DeclareAction(ctx, repo.session.ID, DeclareActionRequest{
			PlayerName: "alice", Action: models.ActionCoup, Target: target,
		})
		if !errors.Is(err, game.ErrInvalidTarget) {
			t.Errorf("DeclareAction(target=%s) error = %v, want %v", target, err, game.ErrInvalidTarget)
		}
	}
	// The refused declarations must not have charged the coup cost.
	if got := repo.players["alice"].Coins; got != 8 {
		t.Errorf("coins after refused coups = %d, want 8", got)
	}
}

func TestDeclareActionRunsUnderSessionLock(t *testing.T) {
	repo := newFakeRepo(activeSession(models.PhaseAction),
		alivePlayer("alice", 0, 2, models.CardDuke),
		alivePlayer("bob", 1, 2, models.CardContessa))
	app := newTestApp(repo)

	if _, err := app.DeclareAction(context.Background(), repo.session.ID, DeclareActionRequest{
		PlayerName: "alice", Action: models.ActionTax,
	}); err != nil {
		t.Fatalf("DeclareAction() error = %v", err)
	}
	if repo.lockCalls != 1 {
		t.Errorf("session lock acquired %d times, want 1", repo.lockCalls)
	}
}

func TestSetLossPriority(t *testing.T) {
	repo := newFakeRepo(activeSession(models.PhaseAction),
		alivePlayer("alice", 0, 2, models.CardDuke, models.CardContessa),
		alivePlayer("bob", 1, 2, models.CardCaptain))
	app := newTestApp(repo)
	ctx := context.Background()

	got, err := app.SetLossPriority(ctx, repo.session.ID, SetLossPriorityRequest{
		PlayerName: "alice",
		Priority:   []models.CardType{models.CardContessa, models.CardDuke},
	})
	if err != nil {
		t.Fatalf("SetLossPriority() error = %v", err)
	}
	if len(got.LossPriority) != 2 || got.LossPriority[0] != models.CardContessa {
		t.Errorf("loss priority = %v, want contessa first", got.LossPriority)
	}
	if saved := repo.players["alice"].LossPriority; len(saved) != 2 {
		t.Errorf("saved loss priority = %v, want persisted", saved)
	}

	_, err = app.SetLossPriority(ctx, repo.session.ID, SetLossPriorityRequest{
		PlayerName: "alice", Priority: []models.CardType{models.CardType("JOKER")},
	})
	if !errors.Is(err, game.ErrInvalidAction) {
		t.Errorf("unknown role error = %v, want %v", err, game.ErrInvalidAction)
	}

	_, err = app.SetLossPriority(ctx, repo.session.ID, SetLossPriorityRequest{
		PlayerName: "alice",
		Priority:   []models.CardType{models.CardDuke, models.CardDuke},
	})
	if !errors.Is(err, game.ErrInvalidAction) {
		t.Errorf("duplicate role error = %v, want %v", err, game.ErrInvalidAction)
	}
}

func TestDeclareActionOverwriteRefundsOldCost(t *testing.T) {
	repo := newFakeRepo(activeSession(models.PhaseAction),
		alivePlayer("alice", 0, 8, models.CardAssassin),
		alivePlayer("bob", 1, 2, models.CardContessa))
	app := newTestApp(repo)
	ctx := context.Background()

	if _, err := app.DeclareAction(ctx, repo.session.ID, DeclareActionRequest{
		PlayerName: "alice", Action: models.ActionCoup, Target: "bob",
	}); err != nil {
		t.Fatalf("first DeclareAction() error = %v", err)
	}
	got, err := app.DeclareAction(ctx, repo.session.ID, DeclareActionRequest{
		PlayerName: "alice", Action: models.ActionAssassinate, Target: "bob",
	})
	if err != nil {
		t.Fatalf("second DeclareAction() error = %v", err)
	}
	// 8 - 7 (coup) + 7 (refund) - 3 (assassinate) = 5.
	if got.Coins != 5 {
		t.Errorf("coins after overwrite = %d, want 5", got.Coins)
	}
	if got.Pending.Type != models.ActionAssassinate {
		t.Errorf("pending type = %s, want %s", got.Pending.Type, models.ActionAssassinate)
	}
}

func TestDeclareActionForcedCoupUsesEffectiveCoins(t *testing.T) {
	// Alice declared a coup which dropped her to 4 coins; the refund puts
	// her back at 11, so switching to tax must still be refused.
	repo := newFakeRepo(activeSession(models.PhaseAction),
		alivePlayer("alice", 0, 11, models.CardDuke),
		alivePlayer("bob", 1, 2, models.CardContessa))
	app := newTestApp(repo)
	ctx := context.Background()

	if _, err := app.DeclareAction(ctx, repo.session.ID, DeclareActionRequest{
		PlayerName: "alice", Action: models.ActionCoup, Target: "bob",
	}); err != nil {
		t.Fatalf("DeclareAction(coup) error = %v", err)
	}
	_, err := app.DeclareAction(ctx, repo.session.ID, DeclareActionRequest{
		PlayerName: "alice", Action: models.ActionTax,
	})
	if !errors.Is(err, game.ErrForcedCoupRequired) {
		t.Errorf("DeclareAction(tax) error = %v, want %v", err, game.ErrForcedCoupRequired)
	}
}

func TestDeclareActionUpgradeRules(t *testing.T) {
	session := activeSession(models.PhaseAction)
	session.UpgradesEnabled = false
	repo := newFakeRepo(session,
		alivePlayer("alice", 0, 8, models.CardCaptain),
		alivePlayer("bob", 1, 2, models.CardContessa))
	app := newTestApp(repo)

	_, err := app.DeclareAction(context.Background(), repo.session.ID, DeclareActionRequest{
		PlayerName: "alice", Action: models.ActionSteal, Target: "bob",
		Upgraded: true, Upgrade: &models.UpgradeDetail{KleptomaniaSteal: true},
	})
	if !errors.Is(err, game.ErrInvalidAction) {
		t.Errorf("DeclareAction() with upgrades disabled error = %v, want %v", err, game.ErrInvalidAction)
	}
}

func TestDeclareReactionFlow(t *testing.T) {
	session := activeSession(models.PhaseReaction)
	actor := alivePlayer("alice", 0, 2, models.CardDuke)
	actor.Pending = &models.PendingAction{
		Actor: "alice", Type: models.ActionTax,
		AwaitingReaction: true, EligibleReactors: []string{"bob", "carol"},
	}
	repo := newFakeRepo(session, actor,
		alivePlayer("bob", 1, 2, models.CardCaptain),
		alivePlayer("carol", 2, 2, models.CardContessa))
	app := newTestApp(repo)
	ctx := context.Background()

	re, err := app.DeclareReaction(ctx, session.ID, DeclareReactionRequest{
		PlayerName: "bob", Actor: "alice", Type: models.ReactionChallenge,
	})
	if err != nil {
		t.Fatalf("DeclareReaction() error = %v", err)
	}
	if re.TargetAction != models.ActionTax {
		t.Errorf("target action = %s, want %s", re.TargetAction, models.ActionTax)
	}

	// Overwrite keeps the slot.
	re2, err := app.DeclareReaction(ctx, session.ID, DeclareReactionRequest{
		PlayerName: "bob", Actor: "alice", Type: models.ReactionPass,
	})
	if err != nil {
		t.Fatalf("overwrite DeclareReaction() error = %v", err)
	}
	if re2.ID != re.ID {
		t.Errorf("overwrite created a new reaction, want the original slot reused")
	}

	// After lockout the slot refuses changes.
	if err := app.LockReactions(ctx, session.ID, session.TurnNumber); err != nil {
		t.Fatalf("LockReactions() error = %v", err)
	}
	_, err = app.DeclareReaction(ctx, session.ID, DeclareReactionRequest{
		PlayerName: "bob", Actor: "alice", Type: models.ReactionChallenge,
	})
	if !errors.Is(err, game.ErrActionAlreadyLocked) {
		t.Errorf("post-lock DeclareReaction() error = %v, want %v", err, game.ErrActionAlreadyLocked)
	}
}

func TestDeclareReactionValidation(t *testing.T) {
	session := activeSession(models.PhaseReaction)
	actor := alivePlayer("alice", 0, 2, models.CardAssassin)
	actor.Pending = &models.PendingAction{
		Actor: "alice", Type: models.ActionAssassinate, Target: "carol",
		AwaitingReaction: true, EligibleReactors: []string{"bob", "carol"},
	}
	repo := newFakeRepo(session, actor,
		alivePlayer("bob", 1, 2, models.CardCaptain),
		alivePlayer("carol", 2, 2, models.CardContessa))
	app := newTestApp(repo)
	ctx := context.Background()

	// Only the target may block a targeted action.
	_, err := app.DeclareReaction(ctx, session.ID, DeclareReactionRequest{
		PlayerName: "bob", Actor: "alice", Type: models.ReactionBlock, BlockRole: models.CardContessa,
	})
	if !errors.Is(err, game.ErrNotEligible) {
		t.Errorf("non-target block error = %v, want %v", err, game.ErrNotEligible)
	}

	// Wrong blocking role.
	_, err = app.DeclareReaction(ctx, session.ID, DeclareReactionRequest{
		PlayerName: "carol", Actor: "alice", Type: models.ReactionBlock, BlockRole: models.CardDuke,
	})
	if !errors.Is(err, game.ErrInvalidAction) {
		t.Errorf("wrong role block error = %v, want %v", err, game.ErrInvalidAction)
	}

	// Self reaction.
	_, err = app.DeclareReaction(ctx, session.ID, DeclareReactionRequest{
		PlayerName: "alice", Actor: "alice", Type: models.ReactionChallenge,
	})
	if !errors.Is(err, game.ErrNotEligible) {
		t.Errorf("self reaction error = %v, want %v", err, game.ErrNotEligible)
	}
}

func TestDeclareReactionChallengeOfBlock(t *testing.T) {
	session := activeSession(models.PhaseReaction)
	actor := alivePlayer("alice", 0, 2, models.CardAssassin)
	actor.Pending = &models.PendingAction{
		Actor: "alice", Type: models.ActionAssassinate, Target: "carol",
		AwaitingReaction: true, EligibleReactors: []string{"bob", "carol"},
	}
	repo := newFakeRepo(session, actor,
		alivePlayer("bob", 1, 2, models.CardCaptain),
		alivePlayer("carol", 2, 2, models.CardContessa))
	app := newTestApp(repo)
	ctx := context.Background()

	if _, err := app.DeclareReaction(ctx, session.ID, DeclareReactionRequest{
		PlayerName: "carol", Actor: "alice", Type: models.ReactionBlock, BlockRole: models.CardContessa,
	}); err != nil {
		t.Fatalf("block error = %v", err)
	}

	// Bob challenges carol's block: the reaction is filed against carol.
	re, err := app.DeclareReaction(ctx, session.ID, DeclareReactionRequest{
		PlayerName: "bob", Actor: "carol", Type: models.ReactionChallenge,
	})
	if err != nil {
		t.Fatalf("challenge-of-block error = %v", err)
	}
	if re.Actor != "carol" || re.TargetAction != models.ActionAssassinate {
		t.Errorf("challenge-of-block = actor %s action %s, want carol/%s", re.Actor, re.TargetAction, models.ActionAssassinate)
	}
}

func TestApplyDefaultActions(t *testing.T) {
	session := activeSession(models.PhaseLockoutAction)
	declared := alivePlayer("alice", 0, 2, models.CardDuke)
	declared.Pending = &models.PendingAction{Actor: "alice", Type: models.ActionTax}
	dead := &models.PlayerGameState{PlayerName: "dave", Statuses: []models.PlayerStatus{models.PlayerStatus("DEAD")}}
	repo := newFakeRepo(session, declared, alivePlayer("bob", 1, 2, models.CardCaptain), dead)
	app := newTestApp(repo)

	n, err := app.ApplyDefaultActions(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("ApplyDefaultActions() error = %v", err)
	}
	if n != 1 {
		t.Errorf("defaulted = %d, want 1", n)
	}
	if got := repo.players["bob"].Pending; got == nil || got.Type != models.ActionIncome {
		t.Errorf("bob pending = %+v, want income", got)
	}
	if got := repo.players["alice"].Pending.Type; got != models.ActionTax {
		t.Errorf("alice pending = %s, want declared tax untouched", got)
	}
	if repo.players["dave"].Pending != nil {
		t.Errorf("dead player received a default action")
	}
}

func TestComputeEligibility(t *testing.T) {
	session := activeSession(models.PhaseLockoutAction)
	alice := alivePlayer("alice", 0, 2, models.CardDuke)
	alice.Pending = &models.PendingAction{Actor: "alice", Type: models.ActionTax}
	bob := alivePlayer("bob", 1, 2, models.CardCaptain)
	bob.Pending = &models.PendingAction{Actor: "bob", Type: models.ActionIncome}
	repo := newFakeRepo(session, alice, bob, alivePlayer("carol", 2, 2, models.CardContessa))
	app := newTestApp(repo)

	if err := app.ComputeEligibility(context.Background(), session.ID); err != nil {
		t.Fatalf("ComputeEligibility() error = %v", err)
	}
	gotAlice := repo.players["alice"].Pending
	if !gotAlice.AwaitingReaction {
		t.Errorf("tax not awaiting reaction")
	}
	if !gotAlice.EligibleFor("bob") || !gotAlice.EligibleFor("carol") || gotAlice.EligibleFor("alice") {
		t.Errorf("eligible reactors = %v, want bob and carol only", gotAlice.EligibleReactors)
	}
	if repo.players["bob"].Pending.AwaitingReaction {
		t.Errorf("income marked awaiting reaction, want unreactable")
	}
}

func TestExpandTemplates(t *testing.T) {
	session := activeSession(models.PhaseLockoutAction)
	alice := alivePlayer("alice", 0, 2, models.CardDuke)
	alice.Pending = &models.PendingAction{
		Actor: "alice", Type: models.ActionTax,
		AwaitingReaction: true, EligibleReactors: []string{"bob", "carol"},
	}
	bob := alivePlayer("bob", 1, 2, models.CardCaptain)
	bob.Pending = &models.PendingAction{
		Actor: "bob", Type: models.ActionForeignAid,
		AwaitingReaction: true, EligibleReactors: []string{"alice", "carol"},
	}
	repo := newFakeRepo(session, alice, bob, alivePlayer("carol", 2, 2, models.CardContessa))
	app := newTestApp(repo)
	ctx := context.Background()

	// Carol standing-orders a challenge on any Duke claim and a Duke block
	// on foreign aid.
	if _, err := app.DeclareTemplate(ctx, session.ID, DeclareTemplateRequest{
		PlayerName: "carol", Type: models.ReactionChallenge, MatchRole: models.CardDuke,
	}); err != nil {
		t.Fatalf("DeclareTemplate(challenge) error = %v", err)
	}
	if _, err := app.DeclareTemplate(ctx, session.ID, DeclareTemplateRequest{
		PlayerName: "carol", Type: models.ReactionBlock,
		MatchAction: models.ActionForeignAid, BlockRole: models.CardDuke,
	}); err != nil {
		t.Fatalf("DeclareTemplate(block) error = %v", err)
	}

	n, err := app.ExpandTemplates(ctx, session.ID)
	if err != nil {
		t.Fatalf("ExpandTemplates() error = %v", err)
	}
	if n != 2 {
		t.Errorf("expanded = %d, want 2", n)
	}
	if re := repo.reactions["carol/alice"]; re == nil || re.Type != models.ReactionChallenge {
		t.Errorf("carol/alice = %+v, want challenge against the tax claim", re)
	}
	if re := repo.reactions["carol/bob"]; re == nil || re.Type != models.ReactionBlock || re.BlockRole != models.CardDuke {
		t.Errorf("carol/bob = %+v, want duke block against foreign aid", re)
	}
	if len(repo.templates) != 0 {
		t.Errorf("templates not consumed after expansion")
	}
}

func TestExpandTemplatesKeepsDirectReactions(t *testing.T) {
	session := activeSession(models.PhaseLockoutAction)
	alice := alivePlayer("alice", 0, 2, models.CardDuke)
	alice.Pending = &models.PendingAction{
		Actor: "alice", Type: models.ActionTax,
		AwaitingReaction: true, EligibleReactors: []string{"bob"},
	}
	bob := alivePlayer("bob", 1, 2, models.CardCaptain)
	repo := newFakeRepo(session, alice, bob)
	app := newTestApp(repo)
	ctx := context.Background()

	// Bob already passed directly; his template must not override it.
	repo.reactions["bob/alice"] = &models.Reaction{
		ID: uuid.New(), SessionID: session.ID, TurnNumber: session.TurnNumber,
		Reactor: "bob", Actor: "alice", TargetAction: models.ActionTax,
		Type: models.ReactionPass, CreatedAt: clockwork.NewFakeClock().Now(),
	}
	if _, err := app.DeclareTemplate(ctx, session.ID, DeclareTemplateRequest{
		PlayerName: "bob", Type: models.ReactionChallenge, MatchRole: models.CardDuke,
	}); err != nil {
		t.Fatalf("DeclareTemplate() error = %v", err)
	}

	n, err := app.ExpandTemplates(ctx, session.ID)
	if err != nil {
		t.Fatalf("ExpandTemplates() error = %v", err)
	}
	if n != 0 {
		t.Errorf("expanded = %d, want 0 (direct reaction wins)", n)
	}
	if repo.reactions["bob/alice"].Type != models.ReactionPass {
		t.Errorf("direct pass was overridden by template")
	}
}

package bold

import (
	"context"
	"testing"

	"github.com/LaurentStar/hourly-coup/go/internal/agents/base"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

func view(coins int, cards []models.CardType, opps ...base.Opponent) base.View {
	return base.View{
		Self: models.PlayerGameState{
			PlayerName: "bold-bot",
			Coins:      coins,
			Cards:      cards,
			Statuses:   []models.PlayerStatus{models.StatusAlive},
		},
		Opponents: opps,
	}
}

func TestDecideAction(t *testing.T) {
	rich := base.Opponent{Name: "rich", Coins: 8, CardCount: 2, Alive: true}
	poor := base.Opponent{Name: "poor", Coins: 1, CardCount: 1, Alive: true}

	tests := []struct {
		name       string
		view       base.View
		wantAction models.ActionType
		wantTarget string
	}{
		{
			name:       "coup once affordable",
			view:       view(7, []models.CardType{models.CardContessa}, rich, poor),
			wantAction: models.ActionCoup,
			wantTarget: "rich",
		},
		{
			name:       "assassinate the weakest with assassin in hand",
			view:       view(3, []models.CardType{models.CardAssassin}, rich, poor),
			wantAction: models.ActionAssassinate,
			wantTarget: "poor",
		},
		{
			name:       "steal from the richest with captain in hand",
			view:       view(2, []models.CardType{models.CardCaptain}, rich, poor),
			wantAction: models.ActionSteal,
			wantTarget: "rich",
		},
		{
			name:       "bluff tax with no useful role",
			view:       view(2, []models.CardType{models.CardContessa}, rich, poor),
			wantAction: models.ActionTax,
		},
	}

	d := &BoldDecider{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.DecideAction(context.Background(), tt.view)
			if err != nil {
				t.Fatalf("DecideAction: %v", err)
			}
			if got.Action != tt.wantAction {
				t.Fatalf("action = %s, want %s", got.Action, tt.wantAction)
			}
			if got.Target != tt.wantTarget {
				t.Fatalf("target = %q, want %q", got.Target, tt.wantTarget)
			}
		})
	}
}

func TestDecideReactionBlocksBeforeChallenging(t *testing.T) {
	d := &BoldDecider{}
	v := view(2, []models.CardType{models.CardContessa})
	v.Declared = []models.PendingAction{{
		Actor:  "henry",
		Type:   models.ActionAssassinate,
		Target: "bold-bot",
	}}

	got, err := d.DecideReaction(context.Background(), v)
	if err != nil {
		t.Fatalf("DecideReaction: %v", err)
	}
	if got == nil || got.Type != models.ReactionBlock || got.BlockRole != models.CardContessa {
		t.Fatalf("reaction = %+v, want contessa block", got)
	}
}

func TestDecideReactionChallengesUnblockableThreat(t *testing.T) {
	d := &BoldDecider{}
	v := view(2, []models.CardType{models.CardDuke})
	v.Declared = []models.PendingAction{{
		Actor:  "henry",
		Type:   models.ActionAssassinate,
		Target: "bold-bot",
	}}

	got, err := d.DecideReaction(context.Background(), v)
	if err != nil {
		t.Fatalf("DecideReaction: %v", err)
	}
	if got == nil || got.Type != models.ReactionChallenge || got.Actor != "henry" {
		t.Fatalf("reaction = %+v, want challenge against henry", got)
	}
}

func TestDecideReactionIgnoresOtherTargets(t *testing.T) {
	d := &BoldDecider{}
	v := view(2, []models.CardType{models.CardDuke})
	v.Declared = []models.PendingAction{{
		Actor:  "henry",
		Type:   models.ActionSteal,
		Target: "someone-else",
	}}

	got, err := d.DecideReaction(context.Background(), v)
	if err != nil {
		t.Fatalf("DecideReaction: %v", err)
	}
	if got != nil {
		t.Fatalf("reaction = %+v, want none", got)
	}
}

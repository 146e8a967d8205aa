// Package bold implements an aggressive table personality: it chases coins
// hard, coups early and challenges anything that threatens it.
package bold

import (
	"context"
	"fmt"

	"github.com/LaurentStar/hourly-coup/go/internal/agents/base"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// BoldDecider implements the Decider interface with an aggressive style.
type BoldDecider struct{}

// init registers the bold personality with the base registry.
func init() {
	if err := base.RegisterPersonality("bold", &BoldDecider{}); err != nil {
		panic(fmt.Sprintf("Failed to register bold personality: %v", err))
	}
}

func (d *BoldDecider) Init() error { return nil }

// DecideAction picks the highest-pressure legal move: coup when affordable,
// steal or tax to build toward the next coup, assassinate the weakest
// opponent when the coins are there.
func (d *BoldDecider) DecideAction(ctx context.Context, view base.View) (*base.ActionDecision, error) {
	richest, weakest := rankOpponents(view.Opponents)

	if view.Self.Coins >= models.CoupCost && richest != "" {
		return &base.ActionDecision{Action: models.ActionCoup, Target: richest}, nil
	}
	if view.Self.HoldsCard(models.CardAssassin) && view.Self.Coins >= models.AssassinateCost && weakest != "" {
		return &base.ActionDecision{
			Action:      models.ActionAssassinate,
			Target:      weakest,
			ClaimedRole: models.CardAssassin,
		}, nil
	}
	if view.Self.HoldsCard(models.CardCaptain) && richest != "" {
		return &base.ActionDecision{
			Action:      models.ActionSteal,
			Target:      richest,
			ClaimedRole: models.CardCaptain,
		}, nil
	}
	// No useful role in hand: bluff the tax anyway.
	return &base.ActionDecision{Action: models.ActionTax, ClaimedRole: models.CardDuke}, nil
}

// DecideReaction blocks with a genuinely held role when targeted, and
// otherwise challenges the first claim aimed at it. Untargeted claims are
// left alone; bold players save their influence for fights that matter.
func (d *BoldDecider) DecideReaction(ctx context.Context, view base.View) (*base.ReactionDecision, error) {
	for _, pa := range view.Declared {
		if pa.Actor == view.Self.PlayerName || pa.Target != view.Self.PlayerName {
			continue
		}
		for _, role := range models.BlockRoles[pa.Type] {
			if view.Self.HoldsCard(role) {
				return &base.ReactionDecision{
					Actor:     pa.Actor,
					Type:      models.ReactionBlock,
					BlockRole: role,
				}, nil
			}
		}
		if pa.Type.IsChallengeable() {
			return &base.ReactionDecision{Actor: pa.Actor, Type: models.ReactionChallenge}, nil
		}
	}
	return nil, nil
}

func (d *BoldDecider) GenerateChat(view base.View) string {
	if view.Self.Coins >= models.CoupCost {
		return "Seven coins. Somebody's losing a card this hour."
	}
	return "Keep stacking. I'll wait."
}

// rankOpponents returns the names of the richest and the weakest (fewest
// cards, coins as tiebreak) living opponents.
func rankOpponents(opps []base.Opponent) (richest, weakest string) {
	var topCoins = -1
	var lowCards, lowCoins = int(^uint(0) >> 1), int(^uint(0) >> 1)
	for _, o := range opps {
		if !o.Alive {
			continue
		}
		if o.Coins > topCoins {
			topCoins = o.Coins
			richest = o.Name
		}
		if o.CardCount < lowCards || (o.CardCount == lowCards && o.Coins < lowCoins) {
			lowCards = o.CardCount
			lowCoins = o.Coins
			weakest = o.Name
		}
	}
	return richest, weakest
}

// Package timid implements a conservative table personality: steady income,
// honest claims only, blocks with held roles and never challenges.
package timid

import (
	"context"
	"fmt"

	"github.com/LaurentStar/hourly-coup/go/internal/agents/base"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// TimidDecider implements the Decider interface with a defensive style.
type TimidDecider struct{}

// init registers the timid personality with the base registry.
func init() {
	if err := base.RegisterPersonality("timid", &TimidDecider{}); err != nil {
		panic(fmt.Sprintf("Failed to register timid personality: %v", err))
	}
}

func (d *TimidDecider) Init() error { return nil }

// DecideAction takes tax only when the Duke is genuinely in hand, otherwise
// plain income. Once coins force the issue the weakest opponent is couped.
func (d *TimidDecider) DecideAction(ctx context.Context, view base.View) (*base.ActionDecision, error) {
	if view.Self.Coins >= models.ForcedCoupThreshold {
		if target := weakestOpponent(view.Opponents); target != "" {
			return &base.ActionDecision{Action: models.ActionCoup, Target: target}, nil
		}
	}
	if view.Self.HoldsCard(models.CardDuke) {
		return &base.ActionDecision{Action: models.ActionTax, ClaimedRole: models.CardDuke}, nil
	}
	return &base.ActionDecision{Action: models.ActionIncome}, nil
}

// DecideReaction blocks when targeted and holding a legal blocking role.
// Never bluffs a block and never challenges.
func (d *TimidDecider) DecideReaction(ctx context.Context, view base.View) (*base.ReactionDecision, error) {
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
	}
	return nil, nil
}

func (d *TimidDecider) GenerateChat(view base.View) string {
	return "Just taking my coin, don't mind me."
}

func weakestOpponent(opps []base.Opponent) string {
	var name string
	lowCards, lowCoins := int(^uint(0)>>1), int(^uint(0)>>1)
	for _, o := range opps {
		if !o.Alive {
			continue
		}
		if o.CardCount < lowCards || (o.CardCount == lowCards && o.Coins < lowCoins) {
			lowCards = o.CardCount
			lowCoins = o.Coins
			name = o.Name
		}
	}
	return name
}

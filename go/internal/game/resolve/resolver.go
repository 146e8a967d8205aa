// Package resolve implements the turn resolution engine. Resolve is a pure
// function over a frozen TurnSnapshot: given the same snapshot it produces an
// identical Resolution every time, so a failed persistence attempt can be
// retried from the same input without double-applying effects.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LaurentStar/hourly-coup/go/internal/game"
	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// resolver carries the working state of one resolution pass.
type resolver struct {
	players  []models.PlayerGameState
	byName   map[string]*models.PlayerGameState
	deck     []models.CardType
	revealed []models.CardType
}

// Resolve deterministically resolves all pending actions and locked
// reactions in the snapshot. Actors are processed in ascending join order;
// competing reactions to the same action are ordered by creation time.
func Resolve(snap TurnSnapshot) (*Resolution, error) {
	r := &resolver{
		players:  make([]models.PlayerGameState, len(snap.Players)),
		byName:   make(map[string]*models.PlayerGameState, len(snap.Players)),
		deck:     append([]models.CardType(nil), snap.Session.DeckState...),
		revealed: append([]models.CardType(nil), snap.Session.RevealedCards...),
	}
	copy(r.players, snap.Players)
	sort.SliceStable(r.players, func(i, j int) bool {
		return r.players[i].JoinSeq < r.players[j].JoinSeq
	})
	for i := range r.players {
		p := &r.players[i]
		p.Cards = append([]models.CardType(nil), p.Cards...)
		p.Statuses = append([]models.PlayerStatus(nil), p.Statuses...)
		if _, dup := r.byName[p.PlayerName]; dup {
			return nil, fmt.Errorf("%w: duplicate player %q in snapshot", game.ErrResolutionFailure, p.PlayerName)
		}
		r.byName[p.PlayerName] = p
	}

	reactions := append([]models.Reaction(nil), snap.Reactions...)
	sort.SliceStable(reactions, func(i, j int) bool {
		if !reactions[i].CreatedAt.Equal(reactions[j].CreatedAt) {
			return reactions[i].CreatedAt.Before(reactions[j].CreatedAt)
		}
		return reactions[i].ID.String() < reactions[j].ID.String()
	})
	reactionsByActor := make(map[string][]*models.Reaction)
	for i := range reactions {
		reactionsByActor[reactions[i].Actor] = append(reactionsByActor[reactions[i].Actor], &reactions[i])
	}

	var results []models.ActionResult
	for i := range r.players {
		actor := &r.players[i]
		if !actor.IsAlive() || actor.Pending == nil {
			continue
		}
		res := r.resolveAction(actor, actor.Pending, reactionsByActor)
		results = append(results, res)
	}

	// Eliminations happen exactly once: a player whose hand emptied this
	// turn flips from alive to dead here and nowhere else.
	var eliminated []string
	for i := range r.players {
		p := &r.players[i]
		if p.CardCount() == 0 && p.IsAlive() {
			p.Statuses = []models.PlayerStatus{models.StatusDead}
			eliminated = append(eliminated, p.PlayerName)
		}
		p.Pending = nil
	}

	var alive []string
	for i := range r.players {
		if r.players[i].IsAlive() {
			alive = append(alive, r.players[i].PlayerName)
		}
	}

	out := &Resolution{
		Result: models.TurnResult{
			SessionID:     snap.Session.ID,
			TurnNumber:    snap.Session.TurnNumber,
			ActionResults: results,
			Eliminated:    eliminated,
			Summary:       buildSummary(results, eliminated),
		},
		Players:       r.players,
		Deck:          r.deck,
		RevealedCards: r.revealed,
	}
	if len(alive) <= 1 {
		out.GameOver = true
		out.Winners = alive
	}
	return out, nil
}

// resolveAction resolves one pending action: challenge first, then block
// (itself challengeable), then effects. Each reaction is consumed at most
// once, and only against the action it was declared for.
func (r *resolver) resolveAction(actor *models.PlayerGameState, pa *models.PendingAction, reactionsByActor map[string][]*models.Reaction) models.ActionResult {
	var notes []string

	// Step 1: challenges against the actor's role claim.
	if pa.Type.IsChallengeable() {
		if ch, ok := takeReaction(reactionsByActor[actor.PlayerName], models.ReactionChallenge, pa.Type); ok {
			required := models.ActionRoles[pa.Type]
			challenger := r.byName[ch.Reactor]
			if challenger != nil && challenger.IsAlive() {
				if actor.HoldsCard(required) {
					// Claim proven: challenger pays, actor swaps the
					// revealed card for a fresh one.
					revealed := r.loseInfluence(challenger, "")
					r.swapProvenCard(actor, required)
					notes = append(notes, fmt.Sprintf("%s challenged and lost (revealed %s)", challenger.PlayerName, joinCards(revealed)))
				} else {
					revealed := r.loseInfluence(actor, "")
					return models.ActionResult{
						Actor:         actor.PlayerName,
						Action:        pa.Type,
						Target:        pa.Target,
						Outcome:       models.OutcomeChallengedLost,
						CardsRevealed: revealed,
						Description: fmt.Sprintf("%s's %s was challenged by %s: bluff caught (revealed %s)",
							actor.PlayerName, actionWord(pa.Type), challenger.PlayerName, joinCards(revealed)),
					}
				}
			}
		}
	}

	// Step 2: blocks. A block is challengeable only via reactions captured
	// in the same window, recorded against the blocker with the blocked
	// action as the target.
	if pa.Type.IsBlockable() {
		if bl, ok := takeReaction(reactionsByActor[actor.PlayerName], models.ReactionBlock, pa.Type); ok {
			blocker := r.byName[bl.Reactor]
			if blocker != nil && blocker.IsAlive() {
				if bch, ok := takeReaction(reactionsByActor[blocker.PlayerName], models.ReactionChallenge, pa.Type); ok {
					challenger := r.byName[bch.Reactor]
					if challenger != nil && challenger.IsAlive() {
						if blocker.HoldsCard(bl.BlockRole) {
							revealed := r.loseInfluence(challenger, "")
							r.swapProvenCard(blocker, bl.BlockRole)
							return models.ActionResult{
								Actor:         actor.PlayerName,
								Action:        pa.Type,
								Target:        pa.Target,
								Outcome:       models.OutcomeBlocked,
								CardsRevealed: revealed,
								Description: fmt.Sprintf("%s's %s was blocked by %s, who proved %s against %s's challenge",
									actor.PlayerName, actionWord(pa.Type), blocker.PlayerName, cardWord(bl.BlockRole), challenger.PlayerName),
							}
						}
						// Bluffed block: blocker pays and the action
						// falls through to its effects.
						revealed := r.loseInfluence(blocker, "")
						notes = append(notes, fmt.Sprintf("%s's block was challenged and failed (revealed %s)", blocker.PlayerName, joinCards(revealed)))
					} else {
						return r.blockStands(actor, pa, blocker, bl)
					}
				} else {
					// An unchallenged block succeeds regardless of
					// whether the claim was a bluff.
					return r.blockStands(actor, pa, blocker, bl)
				}
			}
		}
	}

	res := r.applyEffects(actor, pa)
	if len(notes) > 0 {
		res.Description = strings.Join(append(notes, res.Description), "; ")
	}
	return res
}

func (r *resolver) blockStands(actor *models.PlayerGameState, pa *models.PendingAction, blocker *models.PlayerGameState, bl models.Reaction) models.ActionResult {
	return models.ActionResult{
		Actor:   actor.PlayerName,
		Action:  pa.Type,
		Target:  pa.Target,
		Outcome: models.OutcomeBlocked,
		Description: fmt.Sprintf("%s's %s was blocked by %s (claimed %s)",
			actor.PlayerName, actionWord(pa.Type), blocker.PlayerName, cardWord(bl.BlockRole)),
	}
}

// applyEffects applies the effect of an action that survived challenge and
// block. Up-front coin costs were already paid at declaration; only upgrade
// surcharges settle here, with shortfalls recorded as debt.
func (r *resolver) applyEffects(actor *models.PlayerGameState, pa *models.PendingAction) models.ActionResult {
	res := models.ActionResult{
		Actor:   actor.PlayerName,
		Action:  pa.Type,
		Target:  pa.Target,
		Outcome: models.OutcomeSuccess,
	}
	target := r.byName[pa.Target]

	switch pa.Type {
	case models.ActionIncome:
		actor.GainCoins(1)
		res.Description = fmt.Sprintf("%s took income (+1 coin)", actor.PlayerName)

	case models.ActionForeignAid:
		actor.GainCoins(2)
		res.Description = fmt.Sprintf("%s took foreign aid (+2 coins)", actor.PlayerName)

	case models.ActionTax:
		actor.GainCoins(3)
		res.Description = fmt.Sprintf("%s collected tax (+3 coins)", actor.PlayerName)

	case models.ActionSteal:
		if target == nil || !target.IsAlive() {
			res.Outcome = models.OutcomeFailed
			res.Description = fmt.Sprintf("%s's steal failed (no living target)", actor.PlayerName)
			return res
		}
		amount := 2
		if pa.Upgraded && pa.Upgrade != nil && pa.Upgrade.KleptomaniaSteal {
			amount++
			r.settleUpgrade(actor, pa.Type)
		}
		amount = min(amount, target.Coins)
		target.Coins -= amount
		actor.GainCoins(amount)
		res.CoinsTransferred = amount
		res.Description = fmt.Sprintf("%s stole %d coins from %s", actor.PlayerName, amount, target.PlayerName)

	case models.ActionAssassinate:
		if target == nil || !target.IsAlive() {
			res.Outcome = models.OutcomeFailed
			res.Description = fmt.Sprintf("%s's assassination failed (no living target)", actor.PlayerName)
			return res
		}
		priority := models.CardType("")
		if pa.Upgraded && pa.Upgrade != nil && pa.Upgrade.AssassinationPriority != "" {
			priority = pa.Upgrade.AssassinationPriority
			r.settleUpgrade(actor, pa.Type)
		}
		revealed := r.loseInfluence(target, priority)
		res.CardsRevealed = revealed
		res.Description = fmt.Sprintf("%s assassinated %s (revealed %s)", actor.PlayerName, target.PlayerName, joinCards(revealed))

	case models.ActionCoup:
		if target == nil || !target.IsAlive() {
			res.Outcome = models.OutcomeFailed
			res.Description = fmt.Sprintf("%s's coup failed (no living target)", actor.PlayerName)
			return res
		}
		revealed := r.loseInfluence(target, "")
		res.CardsRevealed = revealed
		res.Description = fmt.Sprintf("%s launched a coup against %s (revealed %s)", actor.PlayerName, target.PlayerName, joinCards(revealed))

	case models.ActionExchange:
		r.exchange(actor)
		res.Description = fmt.Sprintf("%s exchanged influence with the court deck", actor.PlayerName)
		if pa.Upgraded && pa.Upgrade != nil && pa.Upgrade.IdentityCrisis && target != nil && target.IsAlive() {
			r.settleUpgrade(actor, pa.Type)
			r.exchange(target)
			res.Description += fmt.Sprintf(" and forced %s to redraw", target.PlayerName)
		}

	default:
		res.Outcome = models.OutcomeFailed
		res.Description = fmt.Sprintf("%s declared an unknown action", actor.PlayerName)
	}
	return res
}

// loseInfluence removes one card from the player and adds it to the revealed
// pile. An attacker-forced card is removed when held; otherwise the player's
// own loss priority decides, falling back to the first card.
func (r *resolver) loseInfluence(p *models.PlayerGameState, forced models.CardType) []models.CardType {
	if len(p.Cards) == 0 {
		return nil
	}
	idx := cardIndex(p.Cards, forced)
	if idx < 0 {
		for _, c := range p.LossPriority {
			if idx = cardIndex(p.Cards, c); idx >= 0 {
				break
			}
		}
	}
	if idx < 0 {
		idx = 0
	}
	lost := p.Cards[idx]
	p.Cards = append(append([]models.CardType(nil), p.Cards[:idx]...), p.Cards[idx+1:]...)
	r.revealed = append(r.revealed, lost)
	return []models.CardType{lost}
}

func cardIndex(cards []models.CardType, c models.CardType) int {
	if c == "" {
		return -1
	}
	for i, held := range cards {
		if held == c {
			return i
		}
	}
	return -1
}

// swapProvenCard returns a card proven during a challenge to the deck and
// draws a replacement.
func (r *resolver) swapProvenCard(p *models.PlayerGameState, proven models.CardType) {
	for i, c := range p.Cards {
		if c == proven {
			p.Cards = append(append([]models.CardType(nil), p.Cards[:i]...), p.Cards[i+1:]...)
			break
		}
	}
	r.deck = append(r.deck, proven)
	if len(r.deck) > 0 {
		p.Cards = append(p.Cards, r.deck[0])
		r.deck = r.deck[1:]
	}
}

// exchange draws two cards and returns the player to their prior hand size,
// preferring to keep the newly drawn cards.
func (r *resolver) exchange(p *models.PlayerGameState) {
	keep := len(p.Cards)
	n := min(2, len(r.deck))
	p.Cards = append(p.Cards, r.deck[:n]...)
	r.deck = r.deck[n:]
	for len(p.Cards) > keep {
		r.deck = append(r.deck, p.Cards[0])
		p.Cards = append([]models.CardType(nil), p.Cards[1:]...)
	}
}

// settleUpgrade charges the upgrade surcharge, recording any shortfall as
// debt to be paid from future coin gains.
func (r *resolver) settleUpgrade(p *models.PlayerGameState, action models.ActionType) {
	cost := models.UpgradeCosts[action]
	paid := min(cost, p.Coins)
	p.Coins -= paid
	p.Debt += cost - paid
}

// takeReaction consumes the earliest unresolved reaction of the given type
// that was declared against the given action. Marking it resolved here keeps
// a single reaction from settling two different claims in one pass.
func takeReaction(reactions []*models.Reaction, t models.ReactionType, target models.ActionType) (models.Reaction, bool) {
	for _, re := range reactions {
		if re.Type == t && re.TargetAction == target && !re.IsResolved {
			re.IsResolved = true
			return *re, true
		}
	}
	return models.Reaction{}, false
}

func buildSummary(results []models.ActionResult, eliminated []string) string {
	parts := make([]string, 0, len(results)+1)
	for _, r := range results {
		parts = append(parts, r.Description)
	}
	if len(eliminated) > 0 {
		parts = append(parts, "Eliminated: "+strings.Join(eliminated, ", "))
	}
	if len(parts) == 0 {
		return "No actions this turn."
	}
	return strings.Join(parts, "; ")
}

func joinCards(cards []models.CardType) string {
	if len(cards) == 0 {
		return "nothing"
	}
	words := make([]string, len(cards))
	for i, c := range cards {
		words[i] = cardWord(c)
	}
	return strings.Join(words, ", ")
}

func cardWord(c models.CardType) string {
	return strings.ToLower(string(c))
}

func actionWord(a models.ActionType) string {
	return strings.ToLower(strings.ReplaceAll(string(a), "_", " "))
}

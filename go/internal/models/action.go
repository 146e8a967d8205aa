package models

// ActionType is a declared move for the current turn.
type ActionType string

const (
	ActionIncome      ActionType = "INCOME"
	ActionForeignAid  ActionType = "FOREIGN_AID"
	ActionCoup        ActionType = "COUP"
	ActionTax         ActionType = "TAX"
	ActionAssassinate ActionType = "ASSASSINATE"
	ActionSteal       ActionType = "STEAL"
	ActionExchange    ActionType = "EXCHANGE"
)

// Coin thresholds for action legality.
const (
	CoupCost        = 7
	AssassinateCost = 3
	// ForcedCoupThreshold: a player holding this many coins may only Coup.
	ForcedCoupThreshold = 10
)

// ActionCosts maps actions to the up-front coin cost paid at declaration.
var ActionCosts = map[ActionType]int{
	ActionCoup:        CoupCost,
	ActionAssassinate: AssassinateCost,
}

// UpgradeCosts maps actions to the surcharge for their hidden upgrade.
// Surcharges are settled at resolution; any shortfall becomes debt.
var UpgradeCosts = map[ActionType]int{
	ActionAssassinate: 2,
	ActionSteal:       1,
	ActionExchange:    4,
}

// ActionRoles maps challengeable actions to the role their actor claims.
// Actions absent from this map cannot be challenged.
var ActionRoles = map[ActionType]CardType{
	ActionTax:         CardDuke,
	ActionAssassinate: CardAssassin,
	ActionSteal:       CardCaptain,
	ActionExchange:    CardAmbassador,
}

// BlockRoles maps blockable actions to the roles that may block them.
// Actions absent from this map cannot be blocked.
var BlockRoles = map[ActionType][]CardType{
	ActionForeignAid:  {CardDuke},
	ActionAssassinate: {CardContessa},
	ActionSteal:       {CardAmbassador, CardCaptain},
}

// TargetedActions lists actions that require a target.
var TargetedActions = map[ActionType]bool{
	ActionCoup:        true,
	ActionAssassinate: true,
	ActionSteal:       true,
}

// IsChallengeable reports whether the action carries a role claim.
func (a ActionType) IsChallengeable() bool {
	_, ok := ActionRoles[a]
	return ok
}

// IsBlockable reports whether any role may block the action.
func (a ActionType) IsBlockable() bool {
	_, ok := BlockRoles[a]
	return ok
}

// RequiresTarget reports whether the action needs a living target.
func (a ActionType) RequiresTarget() bool {
	return TargetedActions[a]
}

// CanBlockWith reports whether role is a legal blocking claim for a.
func (a ActionType) CanBlockWith(role CardType) bool {
	for _, r := range BlockRoles[a] {
		if r == role {
			return true
		}
	}
	return false
}

// UpgradeDetail is the hidden sub-choice attached to an upgraded action.
// Other players only ever see the Upgraded flag on the PendingAction.
type UpgradeDetail struct {
	// AssassinationPriority names the card the assassin wants revealed
	// first, if the target holds it.
	AssassinationPriority CardType `json:"assassination_priority,omitempty"`
	// KleptomaniaSteal raises the steal amount by one.
	KleptomaniaSteal bool `json:"kleptomania_steal,omitempty"`
	// IdentityCrisis forces the exchange target to redraw as well.
	IdentityCrisis bool `json:"identity_crisis,omitempty"`
}

// PendingAction is a player's declared-but-unresolved move. Only the latest
// declaration per actor per turn exists; intake overwrites in place.
type PendingAction struct {
	Actor  string     `json:"actor"`
	Type   ActionType `json:"type"`
	Target string     `json:"target,omitempty"`
	// ClaimedRole is the role the actor asserts for a challengeable
	// action. Bluffing is legal: the claim is not checked at intake.
	ClaimedRole CardType       `json:"claimed_role,omitempty"`
	Upgraded    bool           `json:"upgraded"`
	Upgrade     *UpgradeDetail `json:"upgrade,omitempty"`
	// AwaitingReaction and EligibleReactors are computed once, when the
	// action lockout begins, and are read-only afterwards.
	AwaitingReaction bool     `json:"awaiting_reaction"`
	EligibleReactors []string `json:"eligible_reactors,omitempty"`
}

// Visible returns the redacted form other players may see: type, target and
// the upgraded flag only.
func (pa *PendingAction) Visible() PendingAction {
	return PendingAction{
		Actor:    pa.Actor,
		Type:     pa.Type,
		Target:   pa.Target,
		Upgraded: pa.Upgraded,
	}
}

// EligibleFor reports whether player may react to this action.
func (pa *PendingAction) EligibleFor(player string) bool {
	for _, name := range pa.EligibleReactors {
		if name == player {
			return true
		}
	}
	return false
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// CardType is an influence card role.
type CardType string

const (
	CardDuke       CardType = "DUKE"
	CardAssassin   CardType = "ASSASSIN"
	CardCaptain    CardType = "CAPTAIN"
	CardAmbassador CardType = "AMBASSADOR"
	CardContessa   CardType = "CONTESSA"
)

// AllCards lists every role once, in deck order.
var AllCards = []CardType{CardDuke, CardAssassin, CardCaptain, CardAmbassador, CardContessa}

// PlayerStatus is a status flag on a player's in-session state.
type PlayerStatus string

const (
	StatusAlive   PlayerStatus = "ALIVE"
	StatusDead    PlayerStatus = "DEAD"
	StatusWaiting PlayerStatus = "WAITING"
)

// StartingCoins is the coin count a player holds when a game begins.
const StartingCoins = 2

// PlayerGameState is a player's transient per-session state. One record
// exists per (player, session); it is created on join and reset on rematch.
type PlayerGameState struct {
	PlayerName string         `json:"player_name"`
	SessionID  uuid.UUID      `json:"session_id"`
	Coins      int            `json:"coins"`
	Debt       int            `json:"debt"`
	Cards      []CardType     `json:"cards,omitempty"`
	Statuses   []PlayerStatus `json:"statuses"`
	Pending    *PendingAction `json:"pending_action,omitempty"`
	// LossPriority orders the roles the player prefers to reveal when
	// forced to lose influence. Resolution picks the first held entry.
	LossPriority []CardType `json:"loss_priority,omitempty"`
	// JoinSeq is the player's join order within the session. Resolution
	// processes actors in ascending JoinSeq so ties are reproducible.
	JoinSeq  int       `json:"join_seq"`
	JoinedAt time.Time `json:"joined_at"`
}

// IsAlive reports whether the player still holds influence.
func (p PlayerGameState) IsAlive() bool {
	for _, s := range p.Statuses {
		if s == StatusAlive {
			return true
		}
	}
	return false
}

// CardCount returns the number of influence cards the player holds.
func (p PlayerGameState) CardCount() int {
	return len(p.Cards)
}

// HoldsCard reports whether the player holds the given role.
func (p PlayerGameState) HoldsCard(c CardType) bool {
	for _, held := range p.Cards {
		if held == c {
			return true
		}
	}
	return false
}

// GainCoins credits coins, paying down outstanding debt first.
func (p *PlayerGameState) GainCoins(n int) {
	if p.Debt > 0 {
		paid := min(p.Debt, n)
		p.Debt -= paid
		n -= paid
	}
	p.Coins += n
}

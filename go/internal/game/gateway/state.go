package gateway

import (
	"time"

	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// SessionView is the state snapshot returned by the state endpoint. Hidden
// information (cards in hand, claimed roles, upgrade details) appears only
// in the viewer's own entry.
type SessionView struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Status        string             `json:"status"`
	CurrentPhase  string             `json:"current_phase"`
	PhaseEndTime  *time.Time         `json:"phase_end_time,omitempty"`
	TurnNumber    int                `json:"turn_number"`
	TurnLimit     int                `json:"turn_limit"`
	MaxPlayers    int                `json:"max_players"`
	RematchCount  int                `json:"rematch_count"`
	Winners       []string           `json:"winners,omitempty"`
	RevealedCards []models.CardType  `json:"revealed_cards"`
	Players       []PlayerView       `json:"players"`
	You           *SelfView          `json:"you,omitempty"`
}

// PlayerView is the public slice of a player: what anyone at the table sees.
type PlayerView struct {
	Name      string                `json:"name"`
	Coins     int                   `json:"coins"`
	Debt      int                   `json:"debt"`
	CardCount int                   `json:"card_count"`
	Alive     bool                  `json:"alive"`
	JoinSeq   int                   `json:"join_seq"`
	Declared  *models.PendingAction `json:"declared,omitempty"`
}

// SelfView is the requesting player's private slice.
type SelfView struct {
	Name         string                `json:"name"`
	Coins        int                   `json:"coins"`
	Debt         int                   `json:"debt"`
	Cards        []models.CardType     `json:"cards"`
	Alive        bool                  `json:"alive"`
	LossPriority []models.CardType     `json:"loss_priority,omitempty"`
	Pending      *models.PendingAction `json:"pending,omitempty"`
}

// buildSessionView redacts session state for the given viewer. An empty
// viewer name yields a spectator view with no private section.
func buildSessionView(s *models.Session, players []models.PlayerGameState, viewer string) SessionView {
	view := SessionView{
		ID:            s.ID.String(),
		Name:          s.Name,
		Status:        string(s.Status),
		CurrentPhase:  string(s.CurrentPhase),
		PhaseEndTime:  s.PhaseEndTime,
		TurnNumber:    s.TurnNumber,
		TurnLimit:     s.TurnLimit,
		MaxPlayers:    s.MaxPlayers,
		RematchCount:  s.RematchCount,
		Winners:       s.Winners,
		RevealedCards: s.RevealedCards,
	}

	for i := range players {
		p := players[i]
		pv := PlayerView{
			Name:      p.PlayerName,
			Coins:     p.Coins,
			Debt:      p.Debt,
			CardCount: p.CardCount(),
			Alive:     p.IsAlive(),
			JoinSeq:   p.JoinSeq,
		}
		// Declarations are public only once the reaction window is open.
		if p.Pending != nil && p.Pending.AwaitingReaction {
			visible := p.Pending.Visible()
			pv.Declared = &visible
		}
		view.Players = append(view.Players, pv)

		if viewer != "" && p.PlayerName == viewer {
			view.You = &SelfView{
				Name:         p.PlayerName,
				Coins:        p.Coins,
				Debt:         p.Debt,
				Cards:        p.Cards,
				Alive:        p.IsAlive(),
				LossPriority: p.LossPriority,
				Pending:      p.Pending,
			}
		}
	}

	return view
}

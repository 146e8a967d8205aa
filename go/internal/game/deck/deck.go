// Package deck manages the influence card deck for a session: shuffling,
// dealing, draws and returns. All operations are pure slice transforms so
// the resolver can stay deterministic; persistence of the resulting deck
// state belongs to the caller.
package deck

import (
	"fmt"
	"math/rand"

	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// CopiesPerRole is how many of each role the deck holds.
const CopiesPerRole = 3

// CardsPerPlayer is the starting hand size.
const CardsPerPlayer = 2

// New returns a full unshuffled deck: three copies of each of the five roles.
func New() []models.CardType {
	d := make([]models.CardType, 0, CopiesPerRole*len(models.AllCards))
	for _, c := range models.AllCards {
		for i := 0; i < CopiesPerRole; i++ {
			d = append(d, c)
		}
	}
	return d
}

// Shuffle returns a shuffled copy of d using the given seed. Seeded so a
// session's initial deal can be reproduced from its persisted seed.
func Shuffle(d []models.CardType, seed int64) []models.CardType {
	out := make([]models.CardType, len(d))
	copy(out, d)
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Deal removes two cards per player from the deck and returns the hands in
// player order plus the remaining deck.
func Deal(d []models.CardType, players int) (hands [][]models.CardType, rest []models.CardType, err error) {
	need := players * CardsPerPlayer
	if len(d) < need {
		return nil, nil, fmt.Errorf("deck has %d cards, need %d for %d players", len(d), need, players)
	}
	rest = make([]models.CardType, len(d))
	copy(rest, d)
	hands = make([][]models.CardType, players)
	for i := range hands {
		hands[i] = []models.CardType{rest[0], rest[1]}
		rest = rest[2:]
	}
	return hands, rest, nil
}

// Draw removes n cards from the top of the deck.
func Draw(d []models.CardType, n int) (drawn, rest []models.CardType, err error) {
	if len(d) < n {
		return nil, nil, fmt.Errorf("deck has %d cards, need %d", len(d), n)
	}
	drawn = make([]models.CardType, n)
	copy(drawn, d[:n])
	rest = make([]models.CardType, len(d)-n)
	copy(rest, d[n:])
	return drawn, rest, nil
}

// Return places a card at the bottom of the deck.
func Return(d []models.CardType, c models.CardType) []models.CardType {
	out := make([]models.CardType, len(d), len(d)+1)
	copy(out, d)
	return append(out, c)
}

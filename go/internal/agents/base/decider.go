// Package base defines the decision-provider interface automated players
// implement, plus the registry personalities register themselves into.
package base

import (
	"context"
	"fmt"
	"sync"

	"github.com/LaurentStar/hourly-coup/go/internal/models"
)

// Opponent is the public view of another player at the table: everything a
// human at the table could see, nothing they could not.
type Opponent struct {
	Name      string
	Coins     int
	CardCount int
	Alive     bool
}

// View is the information handed to a decider. Declared is only populated
// during reaction windows and carries each visible pending declaration.
type View struct {
	Session   models.Session
	Self      models.PlayerGameState
	Opponents []Opponent
	Declared  []models.PendingAction
}

// ActionDecision is a persona's choice for the current action window.
type ActionDecision struct {
	Action      models.ActionType
	Target      string
	ClaimedRole models.CardType
}

// ReactionDecision is a persona's choice for the current reaction window.
// A nil decision means the persona sits the window out.
type ReactionDecision struct {
	Actor     string
	Type      models.ReactionType
	BlockRole models.CardType
}

// Decider defines the interface each personality must implement.
type Decider interface {
	Init() error
	DecideAction(ctx context.Context, view View) (*ActionDecision, error)
	DecideReaction(ctx context.Context, view View) (*ReactionDecision, error)
	GenerateChat(view View) string
}

var (
	registry   = make(map[string]Decider)
	registryMu sync.RWMutex
)

// RegisterPersonality adds a decider implementation under a key.
// It should be called in each personality package's init() function.
// The decider will be initialized later when retrieved.
func RegisterPersonality(key string, decider Decider) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if key == "" {
		return fmt.Errorf("personality key cannot be empty")
	}
	if _, exists := registry[key]; exists {
		return fmt.Errorf("personality already registered for key %q", key)
	}
	registry[key] = decider
	return nil
}

// GetPersonality retrieves a decider by key or returns an error if not found.
func GetPersonality(key string) (Decider, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	decider, exists := registry[key]
	if !exists {
		return nil, fmt.Errorf("no personality registered for key %q", key)
	}
	return decider, nil
}

// InitializePersonality initializes a specific decider.
func InitializePersonality(key string) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	decider, exists := registry[key]
	if !exists {
		return fmt.Errorf("no personality registered for key %q", key)
	}
	if err := decider.Init(); err != nil {
		return fmt.Errorf("failed to init personality %q: %w", key, err)
	}
	return nil
}

// Package game holds the error taxonomy shared by the intake, session and
// resolution layers. Player-facing validation failures are sentinels so
// callers can map them to responses with errors.Is.
package game

import "errors"

var (
	// ErrInvalidPhase is returned when an operation is attempted outside
	// its allowed phase.
	ErrInvalidPhase = errors.New("operation not allowed in current phase")

	// ErrInvalidAction is returned for an unknown or malformed action.
	ErrInvalidAction = errors.New("invalid action")

	// ErrInvalidTarget is returned when a targeted action names a missing,
	// dead, or self target.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrInsufficientCoins is returned when the actor cannot pay an
	// action's up-front cost.
	ErrInsufficientCoins = errors.New("insufficient coins")

	// ErrForcedCoupRequired is returned when a player holding ten or more
	// coins declares anything other than a coup.
	ErrForcedCoupRequired = errors.New("must coup with 10 or more coins")

	// ErrNotEligible is returned when the reactor is outside the action's
	// eligible-reactor set.
	ErrNotEligible = errors.New("not eligible to react to this action")

	// ErrActionAlreadyLocked is returned when a reaction arrives after the
	// reaction window closed.
	ErrActionAlreadyLocked = errors.New("action already locked")

	// ErrInvalidConfiguration is returned for a non-positive phase
	// duration or out-of-range player limit at session creation.
	ErrInvalidConfiguration = errors.New("invalid session configuration")

	// ErrPersistenceConflict is returned when a concurrent write is
	// detected; intake retries transparently with re-read state.
	ErrPersistenceConflict = errors.New("persistence conflict")

	// ErrResolutionFailure wraps unexpected mid-resolution errors. No
	// partial effects are applied when it is returned.
	ErrResolutionFailure = errors.New("resolution failure")

	// ErrSessionNotFound is returned when a session id resolves to nothing.
	ErrSessionNotFound = errors.New("session not found")

	// ErrPlayerNotFound is returned when a player has no state in the
	// session.
	ErrPlayerNotFound = errors.New("player not in session")
)

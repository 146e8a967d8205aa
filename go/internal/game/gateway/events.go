package gateway

import (
	"encoding/json"
	"time"

	"github.com/LaurentStar/hourly-coup/go/internal/game/events"
)

// GameEvent is the envelope pushed to WebSocket clients.
type GameEvent struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// knownEventTypes are the broadcast event types the gateway forwards.
// Anything else on the stream is dropped rather than pushed to clients.
var knownEventTypes = map[string]bool{
	events.TypeSessionCreated: true,
	events.TypePlayerJoined:   true,
	events.TypeGameStarted:    true,
	events.TypePhaseChanged:   true,
	events.TypeTurnResolved:   true,
	events.TypeGameEnded:      true,
	events.TypeSessionPaused:  true,
	events.TypeSessionResumed: true,
	events.TypeRematchStarted: true,
}

// ParseEventPayload parses event data into the appropriate payload struct.
func ParseEventPayload(event *GameEvent) (interface{}, error) {
	switch event.Type {
	case events.TypeSessionCreated:
		var payload events.SessionCreatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypePlayerJoined:
		var payload events.PlayerJoinedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeGameStarted:
		var payload events.GameStartedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypePhaseChanged:
		var payload events.PhaseChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeTurnResolved:
		var payload events.TurnResolvedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeGameEnded:
		var payload events.GameEndedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeSessionPaused:
		var payload events.SessionPausedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeSessionResumed:
		var payload events.SessionResumedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case events.TypeRematchStarted:
		var payload events.RematchStartedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}

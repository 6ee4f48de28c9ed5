package gateway

import (
	"encoding/json"
	"time"

	"github.com/mcdev12/groupcast/go/internal/session"
)

// SessionEvent is the wire envelope for all session messages, on the
// WebSocket edge and on the JetStream bridge between gateway instances
type SessionEvent struct {
	ID        string          `json:"id"`         // Event UUID
	SessionID string          `json:"session_id"` // Session UUID
	Type      EventType       `json:"type"`       // Event type
	Timestamp time.Time       `json:"timestamp"`  // Event creation time
	Data      json.RawMessage `json:"data"`       // Event-specific payload
}

// EventType represents the type of session event
type EventType string

const (
	EventTypePositionReport   EventType = "PositionReport"
	EventTypeTransportCommand EventType = "TransportCommand"
	EventTypeTrackChanged     EventType = "TrackChanged"
)

// TrackChangedPayload announces that the session switched tracks. Position
// ledgers reset and rebuild against the new track.
type TrackChangedPayload struct {
	TrackID   string                `json:"track_id"`
	Issuer    session.ParticipantID `json:"issuer"`
	ChangedAt time.Time             `json:"changed_at"`
}

// ParseEventPayload parses event data into the appropriate payload struct
func ParseEventPayload(event *SessionEvent) (interface{}, error) {
	switch event.Type {
	case EventTypePositionReport:
		var payload session.PositionReport
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTransportCommand:
		var payload session.TransportCommand
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTrackChanged:
		var payload TrackChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil // Unknown event type
	}
}

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/groupcast/go/internal/session"
	"github.com/rs/zerolog/log"
)

// TrackCatalog supplies track metadata for the sessions this gateway hosts
type TrackCatalog interface {
	TrackDuration(ctx context.Context, trackID string) (float64, error)
}

// Room bundles the synchronization state of one group session: the
// authoritative transport command and the position ledger fed by every
// participant's reports
type Room struct {
	SessionID uuid.UUID
	Transport *session.Transport
	Ledger    *session.Ledger

	mu       sync.Mutex
	trackID  string
	duration *float64
}

// TrackID returns the session's current track, empty if none selected yet
func (r *Room) TrackID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trackID
}

// TrackDuration returns the catalog duration of the current track, nil if unknown
func (r *Room) TrackDuration() *float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

func (r *Room) setTrack(trackID string, duration *float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackID = trackID
	r.duration = duration
}

// SessionManager manages the synchronization state of active sessions in
// memory and routes incoming events into it
type SessionManager struct {
	mu             sync.RWMutex
	rooms          map[uuid.UUID]*Room
	updateInterval time.Duration
	clock          clockwork.Clock
	catalog        TrackCatalog
	instanceID     string
}

// NewSessionManager creates a new session manager. The catalog may be nil;
// track durations are then left to what participants report themselves.
func NewSessionManager(updateInterval time.Duration, catalog TrackCatalog, clock clockwork.Clock) *SessionManager {
	return &SessionManager{
		rooms:          make(map[uuid.UUID]*Room),
		updateInterval: updateInterval,
		clock:          clock,
		catalog:        catalog,
		instanceID:     uuid.New().String()[:8], // short ID for logging and the gateway's own participant identity
	}
}

// Room returns the room for a session, creating it on first sight
func (sm *SessionManager) Room(sessionID uuid.UUID) *Room {
	sm.mu.RLock()
	room, ok := sm.rooms[sessionID]
	sm.mu.RUnlock()
	if ok {
		return room
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if room, ok := sm.rooms[sessionID]; ok {
		return room
	}

	transport := session.NewTransport()
	self := session.ParticipantID("gateway-" + sm.instanceID)
	room = &Room{
		SessionID: sessionID,
		Transport: transport,
		Ledger:    session.NewLedger(self, transport, sm.updateInterval, sm.clock),
	}
	sm.rooms[sessionID] = room

	log.Info().
		Str("session_id", sessionID.String()).
		Str("instance", sm.instanceID).
		Msg("session room created")
	return room
}

// Lookup returns the room for a session without creating it
func (sm *SessionManager) Lookup(sessionID uuid.UUID) (*Room, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	room, ok := sm.rooms[sessionID]
	return room, ok
}

// RemoveRoom drops a session's state (e.g. when the session ends)
func (sm *SessionManager) RemoveRoom(sessionID uuid.UUID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.rooms, sessionID)
}

// ProcessEvent routes an incoming event into the session's room. The
// returned bool says whether the event advanced state; a stale or
// reordered message is dropped without error and must not be rebroadcast.
func (sm *SessionManager) ProcessEvent(ctx context.Context, event *SessionEvent) (bool, error) {
	sessionID, err := uuid.Parse(event.SessionID)
	if err != nil {
		return false, fmt.Errorf("parse session ID: %w", err)
	}
	room := sm.Room(sessionID)

	switch event.Type {
	case EventTypePositionReport:
		var report session.PositionReport
		if err := json.Unmarshal(event.Data, &report); err != nil {
			return false, fmt.Errorf("unmarshal position report: %w", err)
		}
		if report.Reporter == "" {
			return false, fmt.Errorf("position report missing reporter")
		}
		return room.Ledger.UpdatePosition(report), nil

	case EventTypeTransportCommand:
		var cmd session.TransportCommand
		if err := json.Unmarshal(event.Data, &cmd); err != nil {
			return false, fmt.Errorf("unmarshal transport command: %w", err)
		}
		return room.Transport.Update(cmd), nil

	case EventTypeTrackChanged:
		var payload TrackChangedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return false, fmt.Errorf("unmarshal track change: %w", err)
		}
		return sm.applyTrackChange(ctx, room, payload), nil

	default:
		log.Warn().
			Str("event_type", string(event.Type)).
			Str("session_id", event.SessionID).
			Msg("unknown event type - ignoring")
		return false, nil
	}
}

// applyTrackChange resets the session for a new track. The transport slot
// arbitrates ordering: a track change that loses the latest-wins race
// against a newer command leaves the room untouched.
func (sm *SessionManager) applyTrackChange(ctx context.Context, room *Room, payload TrackChangedPayload) bool {
	cmd := session.TransportCommand{
		State:    session.StateSuspended,
		Position: 0,
		IssuedAt: payload.ChangedAt,
		Issuer:   payload.Issuer,
	}
	if !room.Transport.Update(cmd) {
		return false
	}

	room.Ledger.Reset()

	var duration *float64
	if sm.catalog != nil && payload.TrackID != "" {
		d, err := sm.catalog.TrackDuration(ctx, payload.TrackID)
		if err != nil {
			log.Warn().
				Err(err).
				Str("track_id", payload.TrackID).
				Str("session_id", room.SessionID.String()).
				Msg("track duration lookup failed")
		} else {
			duration = &d
		}
	}
	room.setTrack(payload.TrackID, duration)

	log.Info().
		Str("session_id", room.SessionID.String()).
		Str("track_id", payload.TrackID).
		Msg("session track changed")
	return true
}

// SyncState is the catch-up snapshot a reconnecting client needs to decide
// whether and where to seek
type SyncState struct {
	SessionID      string            `json:"session_id"`
	TrackID        string            `json:"track_id,omitempty"`
	TrackDuration  *float64          `json:"track_duration,omitempty"`
	TotalClients   int               `json:"total_clients"`
	MaxPosition    float64           `json:"max_position"`
	TargetPosition float64           `json:"target_position"`
	ClientsWaiting int               `json:"clients_waiting"`
	Participants   []ParticipantSync `json:"participants"`
}

// ParticipantSync is one live participant's projected position
type ParticipantSync struct {
	ParticipantID string    `json:"participant_id"`
	State         string    `json:"state"`
	Position      float64   `json:"position"`
	ReportedAt    time.Time `json:"reported_at"`
}

// SyncState builds a snapshot for a session, nil if the session is unknown
func (sm *SessionManager) SyncState(sessionID uuid.UUID) *SyncState {
	room, ok := sm.Lookup(sessionID)
	if !ok {
		return nil
	}

	state := &SyncState{
		SessionID:      sessionID.String(),
		TrackID:        room.TrackID(),
		TrackDuration:  room.TrackDuration(),
		TotalClients:   room.Ledger.TotalClients(),
		MaxPosition:    room.Ledger.MaxPosition(),
		TargetPosition: room.Ledger.TargetPosition(),
		ClientsWaiting: room.Ledger.ClientsWaiting(),
		Participants:   []ParticipantSync{},
	}
	room.Ledger.ForEach(func(report session.PositionReport, projected float64) {
		state.Participants = append(state.Participants, ParticipantSync{
			ParticipantID: string(report.Reporter),
			State:         string(report.State),
			Position:      projected,
			ReportedAt:    report.ReportedAt,
		})
	})
	return state
}

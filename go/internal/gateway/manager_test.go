package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/groupcast/go/internal/session"
)

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const testInterval = 5 * time.Second

type fakeCatalog struct {
	durations map[string]float64
}

func (f *fakeCatalog) TrackDuration(ctx context.Context, trackID string) (float64, error) {
	d, ok := f.durations[trackID]
	if !ok {
		return 0, fmt.Errorf("track %q not found", trackID)
	}
	return d, nil
}

func newTestManager(t *testing.T) (*SessionManager, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(testEpoch)
	catalog := &fakeCatalog{durations: map[string]float64{"track-1": 240}}
	return NewSessionManager(testInterval, catalog, clock), clock
}

func newEvent(t *testing.T, sessionID uuid.UUID, eventType EventType, payload interface{}) *SessionEvent {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &SessionEvent{
		ID:        uuid.New().String(),
		SessionID: sessionID.String(),
		Type:      eventType,
		Timestamp: testEpoch,
		Data:      data,
	}
}

func TestProcessPositionReport(t *testing.T) {
	sm, clock := newTestManager(t)
	sessionID := uuid.New()

	report := session.PositionReport{
		State:      session.StatePlaying,
		Position:   12,
		ReportedAt: clock.Now(),
		Reporter:   "alice",
	}

	accepted, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypePositionReport, report))
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if !accepted {
		t.Fatalf("first report not accepted")
	}

	room, ok := sm.Lookup(sessionID)
	if !ok {
		t.Fatalf("room not created for session")
	}
	if got := room.Ledger.TotalClients(); got != 1 {
		t.Fatalf("TotalClients: got %d want 1", got)
	}

	// Redelivery of the same report is dropped without error.
	accepted, err = sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypePositionReport, report))
	if err != nil {
		t.Fatalf("ProcessEvent redelivery: %v", err)
	}
	if accepted {
		t.Fatalf("duplicate report accepted")
	}
}

func TestProcessPositionReportMissingReporter(t *testing.T) {
	sm, clock := newTestManager(t)

	report := session.PositionReport{State: session.StatePlaying, ReportedAt: clock.Now()}
	if _, err := sm.ProcessEvent(context.Background(), newEvent(t, uuid.New(), EventTypePositionReport, report)); err == nil {
		t.Fatalf("report without reporter accepted")
	}
}

func TestProcessTransportCommand(t *testing.T) {
	sm, clock := newTestManager(t)
	sessionID := uuid.New()

	newer := session.TransportCommand{State: session.StatePlaying, Position: 30, IssuedAt: clock.Now(), Issuer: "alice"}
	accepted, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypeTransportCommand, newer))
	if err != nil || !accepted {
		t.Fatalf("command not accepted: accepted=%v err=%v", accepted, err)
	}

	room, _ := sm.Lookup(sessionID)
	if got := room.Transport.Command(); got.Position != 30 {
		t.Fatalf("stored command: %+v", got)
	}

	// An out-of-order older command must not roll the session back.
	older := session.TransportCommand{State: session.StateSuspended, Position: 5, IssuedAt: clock.Now().Add(-time.Second), Issuer: "bob"}
	accepted, err = sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypeTransportCommand, older))
	if err != nil {
		t.Fatalf("ProcessEvent older command: %v", err)
	}
	if accepted {
		t.Fatalf("stale command accepted")
	}
	if got := room.Transport.Command(); got.Position != 30 {
		t.Fatalf("command after stale delivery: %+v", got)
	}
}

func TestProcessTrackChanged(t *testing.T) {
	sm, clock := newTestManager(t)
	sessionID := uuid.New()

	report := session.PositionReport{State: session.StatePlaying, Position: 100, ReportedAt: clock.Now(), Reporter: "alice"}
	if _, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypePositionReport, report)); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	change := TrackChangedPayload{TrackID: "track-1", Issuer: "alice", ChangedAt: clock.Now().Add(time.Second)}
	accepted, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypeTrackChanged, change))
	if err != nil || !accepted {
		t.Fatalf("track change not accepted: accepted=%v err=%v", accepted, err)
	}

	room, _ := sm.Lookup(sessionID)
	if got := room.Ledger.TotalClients(); got != 0 {
		t.Fatalf("ledger not reset on track change: %d participants", got)
	}
	if got := room.TrackID(); got != "track-1" {
		t.Fatalf("TrackID: got %q want %q", got, "track-1")
	}
	if d := room.TrackDuration(); d == nil || *d != 240 {
		t.Fatalf("TrackDuration: got %v want 240", d)
	}
	if got := room.Transport.Command(); got.State != session.StateSuspended || got.Position != 0 {
		t.Fatalf("transport after track change: %+v", got)
	}
}

func TestProcessTrackChangedUnknownTrack(t *testing.T) {
	sm, clock := newTestManager(t)
	sessionID := uuid.New()

	change := TrackChangedPayload{TrackID: "missing", Issuer: "alice", ChangedAt: clock.Now()}
	accepted, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypeTrackChanged, change))
	if err != nil || !accepted {
		t.Fatalf("track change not accepted: accepted=%v err=%v", accepted, err)
	}

	// Lookup failure degrades to participant-reported durations only.
	room, _ := sm.Lookup(sessionID)
	if room.TrackDuration() != nil {
		t.Fatalf("duration set for unknown track")
	}
	if got := room.TrackID(); got != "missing" {
		t.Fatalf("TrackID: got %q", got)
	}
}

func TestProcessStaleTrackChanged(t *testing.T) {
	sm, clock := newTestManager(t)
	sessionID := uuid.New()

	cmd := session.TransportCommand{State: session.StatePlaying, Position: 0, IssuedAt: clock.Now(), Issuer: "alice"}
	if _, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypeTransportCommand, cmd)); err != nil {
		t.Fatalf("seed command: %v", err)
	}
	report := session.PositionReport{State: session.StatePlaying, Position: 1, ReportedAt: clock.Now(), Reporter: "alice"}
	if _, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypePositionReport, report)); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	// A track change issued before the current command lost the race; it
	// must not wipe the ledger.
	change := TrackChangedPayload{TrackID: "track-1", Issuer: "bob", ChangedAt: clock.Now().Add(-time.Second)}
	accepted, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypeTrackChanged, change))
	if err != nil {
		t.Fatalf("ProcessEvent stale track change: %v", err)
	}
	if accepted {
		t.Fatalf("stale track change accepted")
	}
	room, _ := sm.Lookup(sessionID)
	if got := room.Ledger.TotalClients(); got != 1 {
		t.Fatalf("ledger wiped by stale track change")
	}
}

func TestProcessEventBadSessionID(t *testing.T) {
	sm, _ := newTestManager(t)

	event := &SessionEvent{ID: uuid.New().String(), SessionID: "not-a-uuid", Type: EventTypePositionReport}
	if _, err := sm.ProcessEvent(context.Background(), event); err == nil {
		t.Fatalf("event with bad session ID accepted")
	}
}

func TestProcessUnknownEventType(t *testing.T) {
	sm, _ := newTestManager(t)

	event := newEvent(t, uuid.New(), EventType("Bogus"), struct{}{})
	accepted, err := sm.ProcessEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("unknown event type errored: %v", err)
	}
	if accepted {
		t.Fatalf("unknown event type accepted")
	}
}

func TestSyncState(t *testing.T) {
	sm, clock := newTestManager(t)
	sessionID := uuid.New()

	if state := sm.SyncState(sessionID); state != nil {
		t.Fatalf("sync state for unknown session: %+v", state)
	}

	cmd := session.TransportCommand{State: session.StatePlaying, Position: 0, IssuedAt: clock.Now(), Issuer: "alice"}
	if _, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypeTransportCommand, cmd)); err != nil {
		t.Fatalf("seed command: %v", err)
	}

	clock.Advance(2 * time.Second)
	report := session.PositionReport{State: session.StateSuspended, Position: 1.5, ReportedAt: clock.Now(), Reporter: "bob"}
	if _, err := sm.ProcessEvent(context.Background(), newEvent(t, sessionID, EventTypePositionReport, report)); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	state := sm.SyncState(sessionID)
	if state == nil {
		t.Fatalf("sync state missing")
	}
	if state.TotalClients != 1 {
		t.Fatalf("TotalClients: got %d want 1", state.TotalClients)
	}
	if state.MaxPosition < 2 {
		t.Fatalf("MaxPosition: got %v want >= 2", state.MaxPosition)
	}
	if state.TargetPosition != 1.5 {
		t.Fatalf("TargetPosition: got %v want 1.5", state.TargetPosition)
	}
	if state.ClientsWaiting != 0 {
		t.Fatalf("ClientsWaiting: got %d want 0", state.ClientsWaiting)
	}
	if len(state.Participants) != 1 || state.Participants[0].ParticipantID != "bob" {
		t.Fatalf("Participants: %+v", state.Participants)
	}
}

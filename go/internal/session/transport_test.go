package session

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestTransportInitialState(t *testing.T) {
	transport := NewTransport()

	if got := transport.Command().State; got != StateNone {
		t.Fatalf("initial state: got %q want %q", got, StateNone)
	}
	if got := transport.PositionAt(testEpoch); got != 0 {
		t.Fatalf("initial projection: got %v want 0", got)
	}
}

func TestTransportLatestWins(t *testing.T) {
	transport := NewTransport()

	first := TransportCommand{State: StatePlaying, Position: 10, IssuedAt: testEpoch, Issuer: "a"}
	if !transport.Update(first) {
		t.Fatalf("first command rejected")
	}

	newer := TransportCommand{State: StateSuspended, Position: 20, IssuedAt: testEpoch.Add(time.Second), Issuer: "b"}
	if !transport.Update(newer) {
		t.Fatalf("newer command rejected")
	}
	if got := transport.Command(); got != newer {
		t.Fatalf("command after newer update: got %+v want %+v", got, newer)
	}

	// A reordered delivery of the older command must be a silent no-op.
	if transport.Update(first) {
		t.Fatalf("stale command accepted")
	}
	if got := transport.Command(); got != newer {
		t.Fatalf("command after stale update: got %+v want %+v", got, newer)
	}

	// Same timestamp counts as stale too.
	dup := TransportCommand{State: StatePlaying, Position: 99, IssuedAt: newer.IssuedAt, Issuer: "c"}
	if transport.Update(dup) {
		t.Fatalf("duplicate-timestamp command accepted")
	}
}

func TestTransportProjection(t *testing.T) {
	transport := NewTransport()
	transport.Update(TransportCommand{State: StatePlaying, Position: 5, IssuedAt: testEpoch, Issuer: "a"})

	if got := transport.PositionAt(testEpoch.Add(3 * time.Second)); got != 8 {
		t.Fatalf("playing projection: got %v want 8", got)
	}

	transport.Update(TransportCommand{State: StateSuspended, Position: 7, IssuedAt: testEpoch.Add(4 * time.Second), Issuer: "a"})
	if got := transport.PositionAt(testEpoch.Add(time.Hour)); got != 7 {
		t.Fatalf("suspended projection: got %v want 7", got)
	}
}

func TestTransportProjectionNeverNegative(t *testing.T) {
	transport := NewTransport()
	transport.Update(TransportCommand{State: StatePlaying, Position: 0, IssuedAt: testEpoch, Issuer: "a"})

	// A skewed clock can put now before IssuedAt; the projection floors at 0.
	if got := transport.PositionAt(testEpoch.Add(-5 * time.Second)); got != 0 {
		t.Fatalf("projection before issue time: got %v want 0", got)
	}
}

package session

import (
	"sync"
	"time"
)

// Transport holds the single authoritative transport command for a group
// session and projects it forward in time. Safe for concurrent use.
type Transport struct {
	mu  sync.Mutex
	cmd TransportCommand
}

// NewTransport creates a transport tracker with no command received yet:
// state none, position 0.
func NewTransport() *Transport {
	return &Transport{
		cmd: TransportCommand{State: StateNone},
	}
}

// Update applies latest-wins replacement of the current command. A command
// whose IssuedAt is not strictly newer than the stored one is discarded
// without error; late duplicates and reordered deliveries are routine in a
// broadcast transport. Returns whether the command was accepted.
func (t *Transport) Update(cmd TransportCommand) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.cmd.IssuedAt.IsZero() && !cmd.IssuedAt.After(t.cmd.IssuedAt) {
		return false
	}
	t.cmd = cmd
	return true
}

// Command returns the current authoritative command
func (t *Transport) Command() TransportCommand {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cmd
}

// PositionAt returns where the commanded position would be at now: the
// command's start position plus elapsed time while playing, the start
// position unchanged otherwise. Never negative.
func (t *Transport) PositionAt(now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cmd.positionAt(now)
}

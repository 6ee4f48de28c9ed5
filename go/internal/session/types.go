package session

import "time"

// ParticipantID identifies one player instance taking part in a group
// session. It is opaque to this package and stable for the participant's
// lifetime; clients mint their own.
type ParticipantID string

// PlaybackState represents what a participant's player is doing
type PlaybackState string

const (
	StateNone      PlaybackState = "none"
	StatePlaying   PlaybackState = "playing"
	StateSuspended PlaybackState = "suspended"
	StateWaiting   PlaybackState = "waiting"
)

// WaitPoint marks a position at which the group pauses collective
// progress until every participant confirms arrival
type WaitPoint struct {
	Position float64 `json:"position"`
}

// TransportCommand is the authoritative play/pause/seek instruction last
// broadcast by whichever participant changed playback for the group
type TransportCommand struct {
	State    PlaybackState `json:"state"`
	Position float64       `json:"position"` // seconds
	IssuedAt time.Time     `json:"issued_at"`
	Issuer   ParticipantID `json:"issuer"`
}

// positionAt projects the commanded position forward to now. Only a
// playing command advances with elapsed time.
func (c TransportCommand) positionAt(now time.Time) float64 {
	pos := c.Position
	if c.State == StatePlaying {
		pos += now.Sub(c.IssuedAt).Seconds()
	}
	if pos < 0 {
		return 0
	}
	return pos
}

// PositionReport is a participant's self-observed player status,
// periodically rebroadcast to the group
type PositionReport struct {
	State      PlaybackState `json:"state"`
	Position   float64       `json:"position"`           // seconds
	Duration   *float64      `json:"duration,omitempty"` // seconds, if the reporter knows the track length
	WaitPoint  *WaitPoint    `json:"wait_point,omitempty"`
	ReportedAt time.Time     `json:"reported_at"`
	Reporter   ParticipantID `json:"reporter"`
}

// positionAt projects the reported position forward to now. Suspended and
// waiting players do not advance; a playing projection is clamped to
// [0, duration] when the report carries a duration.
func (r PositionReport) positionAt(now time.Time) float64 {
	if r.State != StatePlaying {
		return r.Position
	}
	pos := r.Position + now.Sub(r.ReportedAt).Seconds()
	if pos < 0 {
		pos = 0
	}
	if r.Duration != nil && pos > *r.Duration {
		pos = *r.Duration
	}
	return pos
}

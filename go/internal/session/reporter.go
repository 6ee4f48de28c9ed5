package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// PlayerStatus is one sample of the local player, pulled from the hosting
// environment when a report is due
type PlayerStatus struct {
	State     PlaybackState
	Position  float64
	Duration  *float64
	WaitPoint *WaitPoint
}

// StatusProvider supplies the local player's current status and the
// locally-known track duration on demand
type StatusProvider interface {
	Status(ctx context.Context) (PlayerStatus, error)
}

// PublishFunc hands an accepted locally-originated report to the broadcast
// layer for delivery to the rest of the group
type PublishFunc func(report PositionReport)

// Reporter periodically samples the local player and folds the sample into
// the ledger under the local participant's ID, then rebroadcasts it. Every
// participant runs one reporter; the resulting report stream is what keeps
// the other ledgers in the group fresh.
type Reporter struct {
	ledger   *Ledger
	provider StatusProvider
	publish  PublishFunc
	interval time.Duration
	clock    clockwork.Clock
}

// NewReporter creates a reporter ticking at the ledger's update interval
func NewReporter(ledger *Ledger, provider StatusProvider, publish PublishFunc, interval time.Duration, clock clockwork.Clock) *Reporter {
	return &Reporter{
		ledger:   ledger,
		provider: provider,
		publish:  publish,
		interval: interval,
		clock:    clock,
	}
}

// Run loops until the context is cancelled, reporting once per interval
func (r *Reporter) Run(ctx context.Context) error {
	log.Info().
		Str("participant_id", string(r.ledger.Participant())).
		Dur("interval", r.interval).
		Msg("reporter started")

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().
				Str("participant_id", string(r.ledger.Participant())).
				Msg("reporter shutting down")
			return nil
		case <-ticker.Chan():
			r.ReportOnce(ctx)
		}
	}
}

// ReportOnce samples the player and submits a single report. Exposed so
// callers can force an immediate report after a seek or state change
// instead of waiting out the interval.
func (r *Reporter) ReportOnce(ctx context.Context) {
	status, err := r.provider.Status(ctx)
	if err != nil {
		log.Warn().
			Err(err).
			Str("participant_id", string(r.ledger.Participant())).
			Msg("player status unavailable, skipping report")
		return
	}

	report := PositionReport{
		State:      status.State,
		Position:   status.Position,
		Duration:   status.Duration,
		WaitPoint:  status.WaitPoint,
		ReportedAt: r.clock.Now(),
		Reporter:   r.ledger.Participant(),
	}

	if r.ledger.UpdatePosition(report) && r.publish != nil {
		r.publish(report)
	}
}

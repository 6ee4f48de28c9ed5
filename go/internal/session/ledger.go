package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// staleMultiplier scales the expected update interval into the age past
// which a report no longer anchors synchronization decisions.
const staleMultiplier = 2

// Ledger aggregates the latest self-reported position from every known
// participant in one group session and derives the quantities a local
// client needs to stay in sync: the position the authoritative transport
// implies, the catch-up target, and the barrier-readiness count.
//
// One ledger instance is owned by one participant; synchronization across
// participants happens purely through report exchange and independent
// local recomputation. A single mutex guards the report map because the
// gateway delivers inbound messages from multiple goroutines.
type Ledger struct {
	mu         sync.Mutex
	self       ParticipantID
	transport  *Transport
	clock      clockwork.Clock
	staleAfter time.Duration
	reports    map[ParticipantID]PositionReport
}

// NewLedger creates a ledger for the given local participant.
// updateInterval is how often participants are expected to rebroadcast;
// reports older than staleMultiplier times that interval are treated as
// stale. The clock is injected so tests control elapsed time.
func NewLedger(self ParticipantID, transport *Transport, updateInterval time.Duration, clock clockwork.Clock) *Ledger {
	return &Ledger{
		self:       self,
		transport:  transport,
		clock:      clock,
		staleAfter: staleMultiplier * updateInterval,
		reports:    make(map[ParticipantID]PositionReport),
	}
}

// Participant returns the local participant's ID
func (l *Ledger) Participant() ParticipantID {
	return l.self
}

// Transport returns the transport tracker this ledger projects against
func (l *Ledger) Transport() *Transport {
	return l.transport
}

// UpdatePosition applies latest-wins replacement keyed by the report's
// Reporter. A report whose ReportedAt is not newer than the one on file is
// silently discarded. Returns whether the report was accepted.
func (l *Ledger) UpdatePosition(report PositionReport) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.reports[report.Reporter]; ok && !report.ReportedAt.After(prev.ReportedAt) {
		return false
	}
	l.reports[report.Reporter] = report
	return true
}

// TotalClients counts every distinct participant that has ever reported.
// Staleness never decrements it; only Reset clears it.
func (l *Ledger) TotalClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.reports)
}

// LocalReport returns the report on file for the ledger's own participant,
// ok=false if it has not reported yet
func (l *Ledger) LocalReport() (PositionReport, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	report, ok := l.reports[l.self]
	return report, ok
}

// Reset discards all reports. Called when the session's track changes;
// the next reports rebuild the ledger from scratch.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports = make(map[ParticipantID]PositionReport)
}

// live reports whether a report is fresh enough to anchor synchronization
// decisions. Stale reports stay stored but are excluded from every
// aggregate until superseded.
func (l *Ledger) live(report PositionReport, now time.Time) bool {
	return now.Sub(report.ReportedAt) <= l.staleAfter
}

// liveSnapshot collects the live reports under the lock so callbacks and
// aggregate math run without holding it
func (l *Ledger) liveSnapshot() ([]PositionReport, time.Time) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	reports := make([]PositionReport, 0, len(l.reports))
	for _, report := range l.reports {
		if l.live(report, now) {
			reports = append(reports, report)
		}
	}
	return reports, now
}

// ForEach visits every live report exactly once, in no particular order,
// with that report's position projected to now
func (l *Ledger) ForEach(fn func(report PositionReport, projected float64)) {
	reports, now := l.liveSnapshot()
	for _, report := range reports {
		fn(report, report.positionAt(now))
	}
}

// minDuration returns the smallest duration among the given reports,
// ok=false if none of them carries one
func minDuration(reports []PositionReport) (float64, bool) {
	var min float64
	found := false
	for _, report := range reports {
		if report.Duration == nil {
			continue
		}
		if !found || *report.Duration < min {
			min = *report.Duration
			found = true
		}
	}
	return min, found
}

// MaxPosition is how far the authoritative transport command implies the
// group should be by now, bounded by the shortest track length any live
// participant has reported
func (l *Ledger) MaxPosition() float64 {
	reports, now := l.liveSnapshot()
	return l.maxPosition(reports, now)
}

func (l *Ledger) maxPosition(reports []PositionReport, now time.Time) float64 {
	max := l.transport.PositionAt(now)
	if d, ok := minDuration(reports); ok && max > d {
		max = d
	}
	return max
}

// TargetPosition is where a lagging local client should seek to rejoin the
// group: the most advanced live participant's projected position, capped
// so it never races ahead of what the transport command allows nor past
// the track length. With no live reports it falls back to MaxPosition.
func (l *Ledger) TargetPosition() float64 {
	reports, now := l.liveSnapshot()

	max := l.maxPosition(reports, now)
	if len(reports) == 0 {
		return max
	}

	target := reports[0].positionAt(now)
	for _, report := range reports[1:] {
		if p := report.positionAt(now); p > target {
			target = p
		}
	}
	if target > max {
		target = max
	}
	return target
}

// ClientsWaiting supports synchronized-pause semantics. It returns 0 while
// no live report carries a wait point. Once one does, it counts the live
// participants that have not yet confirmed arrival by transitioning to the
// waiting state; the barrier is satisfied when the count reaches 0. A
// merely suspended participant still counts as pending.
func (l *Ledger) ClientsWaiting() int {
	reports, _ := l.liveSnapshot()

	barrier := false
	pending := 0
	for _, report := range reports {
		if report.WaitPoint != nil {
			barrier = true
		}
		if report.State != StateWaiting {
			pending++
		}
	}
	if !barrier {
		return 0
	}
	return pending
}

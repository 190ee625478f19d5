// Package dedup implements the redundant-transport deduplicator of spec section 4.9: given N
// parallel transports carrying the same traffic, it picks one "active" transport and passes
// through frames only from that one, failing over to another transport once the active one has
// gone quiet for longer than a timeout.
//
// Grounded on samsamfire/gocanopen's pkg/nmt.NMT: a single mutex-guarded struct holding an
// explicit state field (there, the NMT state; here, the active transport index) mutated by pure
// transition logic in response to external events, with no background goroutine of its own —
// the caller drives it by calling in on every arriving frame.
package dedup

import (
	"sync"

	"github.com/samsamfire/gocyphal/clock"
)

// Stats is a point-in-time snapshot of the deduplicator's bookkeeping, for diagnostics/metrics.
type Stats struct {
	Active      int
	Accepted    []uint64
	Rejected    []uint64
	Switchovers uint64
}

// Deduplicator selects one of N parallel transports as authoritative, per spec section 4.9.
// With N = 1 it is a pass-through (every frame on transport 0 is accepted).
type Deduplicator struct {
	mu      sync.Mutex
	timeout clock.Duration

	active      int
	lastArrival []clock.Instant
	hasArrival  []bool

	accepted    []uint64
	rejected    []uint64
	switchovers uint64
}

// New returns a Deduplicator over n parallel transports (indices 0..n-1), failing over to
// another transport once the active one has been silent for longer than timeout.
func New(n int, timeout clock.Duration) *Deduplicator {
	if n < 1 {
		n = 1
	}
	return &Deduplicator{
		timeout:     timeout,
		lastArrival: make([]clock.Instant, n),
		hasArrival:  make([]bool, n),
		accepted:    make([]uint64, n),
		rejected:    make([]uint64, n),
	}
}

// In records a frame's arrival on transport i at time now and reports whether it should be
// passed through to the receiver, per spec section 4.9's exact accept rule: a frame is accepted
// iff i is the active index; if the active transport's last-arrival time is older than
// now-timeout, a frame on any other transport first promotes that transport to active.
func (d *Deduplicator) In(i int, now clock.Instant) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i < 0 || i >= len(d.lastArrival) {
		return false
	}
	d.lastArrival[i] = now
	d.hasArrival[i] = true

	if i != d.active {
		activeStale := !d.hasArrival[d.active] || now.Since(d.lastArrival[d.active]) > d.timeout
		if activeStale {
			d.active = i
			d.switchovers++
		}
	}

	accept := i == d.active
	if accept {
		d.accepted[i]++
	} else {
		d.rejected[i]++
	}
	return accept
}

// Active returns the currently active transport index.
func (d *Deduplicator) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Stats returns a snapshot of the deduplicator's counters, a supplemental diagnostic surface
// beyond the distilled accept/reject rule (see DESIGN.md).
func (d *Deduplicator) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		Active:      d.active,
		Accepted:    append([]uint64(nil), d.accepted...),
		Rejected:    append([]uint64(nil), d.rejected...),
		Switchovers: d.switchovers,
	}
}

package transport

import (
	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
)

// Session is the per-(subscription, source) reassembly state described in spec section 3/4.3.
// A Session only exists while a multi-frame transfer is in progress; single-frame transfers
// bypass session allocation entirely (the single-frame fast path in each transport's
// receiver). Callers hold the owning Subscription's lock while mutating a Session.
type Session struct {
	ExpectedID     cyphal.TransferID
	FirstFrameTime clock.Instant
	Payload        []byte
	NextFrameIndex uint32 // UDP frame-index sequencing
	Toggle         bool   // CAN toggle-bit sequencing (next expected value)
	Priority       cyphal.Priority
}

// NewSession starts a fresh reassembly at the given start time/id, with a payload buffer
// pre-sized to the subscription's bound (spec section 9: "inline array sized to payload_max"
// on constrained targets, a growable buffer on hosted ones — Go always has an allocator, so a
// single append-friendly slice serves both, pre-allocated to avoid reallocation mid-transfer).
func NewSession(id cyphal.TransferID, priority cyphal.Priority, now clock.Instant, payloadMax int) *Session {
	return &Session{
		ExpectedID:     id,
		FirstFrameTime: now,
		Payload:        make([]byte, 0, payloadMax),
		Priority:       priority,
	}
}

// SessionTable maps a transport's source-node representation (widened to uint16, which fits
// every transport's node-id range: CAN 7 bits, serial/UDP 16 bits) to a Session. Two shapes
// are provided per spec section 9: ArraySessionTable (O(1), fixed space, mandatory on targets
// without dynamic allocation) and MapSessionTable (space proportional to active sources). The
// caller picks one at Subscription construction time.
type SessionTable interface {
	// Get returns the session for source, or nil if there is none.
	Get(source uint16) *Session
	// Set installs (or replaces) the session for source.
	Set(source uint16, s *Session)
	// Delete removes the session for source, if any.
	Delete(source uint16)
	// Range calls f for every (source, session) pair; f returning false stops iteration.
	// Used by the receive-side housekeeping sweep (spec section 4.5) to evict sessions whose
	// first-frame time has aged past the subscription timeout.
	Range(f func(source uint16, s *Session) bool)
}

// ArraySessionTable is a fixed-size, slice-indexed SessionTable, sized to the transport's node
// id space (e.g. 128 for CAN). O(1) lookup, O(maxNodeID) space.
type ArraySessionTable struct {
	sessions []*Session
}

// NewArraySessionTable returns an ArraySessionTable sized for node ids in [0, size).
func NewArraySessionTable(size int) *ArraySessionTable {
	return &ArraySessionTable{sessions: make([]*Session, size)}
}

func (t *ArraySessionTable) Get(source uint16) *Session {
	if int(source) >= len(t.sessions) {
		return nil
	}
	return t.sessions[source]
}

func (t *ArraySessionTable) Set(source uint16, s *Session) {
	if int(source) >= len(t.sessions) {
		return
	}
	t.sessions[source] = s
}

func (t *ArraySessionTable) Delete(source uint16) {
	if int(source) >= len(t.sessions) {
		return
	}
	t.sessions[source] = nil
}

func (t *ArraySessionTable) Range(f func(source uint16, s *Session) bool) {
	for i, s := range t.sessions {
		if s == nil {
			continue
		}
		if !f(uint16(i), s) {
			return
		}
	}
}

// MapSessionTable is a dynamic-map-backed SessionTable: O(log n) lookup (Go maps are
// amortized O(1), but the spec frames the tradeoff against the array shape this way), space
// proportional to the number of currently-active sources. Preferable where a subscription's
// node-id space is large but only a handful of sources are ever active.
type MapSessionTable struct {
	sessions map[uint16]*Session
}

// NewMapSessionTable returns an empty MapSessionTable.
func NewMapSessionTable() *MapSessionTable {
	return &MapSessionTable{sessions: make(map[uint16]*Session)}
}

func (t *MapSessionTable) Get(source uint16) *Session { return t.sessions[source] }

func (t *MapSessionTable) Set(source uint16, s *Session) { t.sessions[source] = s }

func (t *MapSessionTable) Delete(source uint16) { delete(t.sessions, source) }

func (t *MapSessionTable) Range(f func(source uint16, s *Session) bool) {
	for source, s := range t.sessions {
		if !f(source, s) {
			return
		}
	}
}

// EvictExpired drops sessions whose first-frame time is older than now-timeout, per the
// receive-side housekeeping hook in spec section 4.5. It returns the number of sessions
// evicted, for statistics.
func EvictExpired(table SessionTable, now clock.Instant, timeout clock.Duration) int {
	var stale []uint16
	table.Range(func(source uint16, s *Session) bool {
		if now.Since(s.FirstFrameTime) > timeout {
			stale = append(stale, source)
		}
		return true
	})
	for _, source := range stale {
		table.Delete(source)
	}
	return len(stale)
}

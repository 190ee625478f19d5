package transport

import (
	"sync"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
)

// Subscription holds the admission parameters and per-source session state for one
// (kind, port id), per spec section 3/4.2.
type Subscription struct {
	mu         sync.Mutex
	Kind       cyphal.Kind
	Port       cyphal.PortID
	PayloadMax int
	Timeout    clock.Duration
	Sessions   SessionTable
}

// NewSubscription builds a Subscription with the given session storage shape (array or map,
// per spec section 9 — the caller picks the shape at construction).
func NewSubscription(kind cyphal.Kind, port cyphal.PortID, payloadMax int, timeout clock.Duration, sessions SessionTable) *Subscription {
	return &Subscription{Kind: kind, Port: port, PayloadMax: payloadMax, Timeout: timeout, Sessions: sessions}
}

// Lock/Unlock expose the subscription's mutex so a transport's receive pipeline can hold it
// across a lookup-then-mutate session transition without a second map access.
func (s *Subscription) Lock()   { s.mu.Lock() }
func (s *Subscription) Unlock() { s.mu.Unlock() }

// Registry is the sole authority deciding whether an arriving frame belongs to an accepted
// transfer (spec section 4.2): a mapping from port id to Subscription, kept separately for
// each of the three transfer kinds.
//
// Grounded on samsamfire/gocanopen's pkg/can.BusManager.listeners, which keys a slice of
// subscriber callbacks by CAN id and returns a cancel closure from Subscribe; here the key is
// (kind, port id) instead of a raw CAN id, and the registry returns a *Subscription instead of
// invoking a callback directly, because the caller (the receiver) needs to drive the session
// state machine itself.
type Registry struct {
	mu            sync.RWMutex
	byKind        [3]map[cyphal.PortID]*Subscription
	localNodeSet  bool
	maxPerKind    int // 0 = unbounded; mirrors a constrained target's fixed subscription table
}

// NewRegistry returns an empty Registry. maxPerKind bounds the number of subscriptions held
// per kind (0 means unbounded); exceeding it returns ErrOutOfMemory from Subscribe, matching
// a constrained target's fixed-capacity subscription table.
func NewRegistry(maxPerKind int) *Registry {
	r := &Registry{maxPerKind: maxPerKind}
	for k := range r.byKind {
		r.byKind[k] = make(map[cyphal.PortID]*Subscription)
	}
	return r
}

// SetLocalNodeAnonymous records whether the local node currently has no id; Subscribe refuses
// service subscriptions for an anonymous node (spec section 4.2).
func (r *Registry) SetLocalNodeAnonymous(anonymous bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.localNodeSet = !anonymous
}

// Subscribe creates or idempotently replaces the subscription for (kind, port).
func (r *Registry) Subscribe(kind cyphal.Kind, port cyphal.PortID, payloadMax int, timeout clock.Duration, sessions SessionTable) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if (kind == cyphal.KindRequest || kind == cyphal.KindResponse) && !r.localNodeSet {
		return nil, cyphal.ErrAnonymous
	}

	m := r.byKind[kind]
	if _, exists := m[port]; !exists && r.maxPerKind > 0 && len(m) >= r.maxPerKind {
		return nil, cyphal.ErrOutOfMemory
	}

	sub := NewSubscription(kind, port, payloadMax, timeout, sessions)
	m[port] = sub
	return sub, nil
}

// Unsubscribe removes the subscription for (kind, port); absent is not an error.
func (r *Registry) Unsubscribe(kind cyphal.Kind, port cyphal.PortID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byKind[kind], port)
}

// Lookup returns the subscription for (kind, port), or nil if there is none.
func (r *Registry) Lookup(kind cyphal.Kind, port cyphal.PortID) *Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKind[kind][port]
}

// Len reports the number of active subscriptions for kind, mostly for tests/diagnostics.
func (r *Registry) Len(kind cyphal.Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKind[kind])
}

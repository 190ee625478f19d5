// Package pnp implements the plug-and-play node-id allocation client (spec section 4.10): an
// anonymous node periodically publishes its unique id on a fixed subject and adopts the node id
// carried by a matching allocation response.
//
// Grounded on samsamfire/gocanopen's pkg/lss.LSSMaster: a subscribed rx channel fed by Handle,
// drained by a wait loop with a timeout, generalized from LSS's selective-addressing handshake
// to Cyphal's hash-match-and-adopt handshake. The periodic retry cadence is grounded on
// pkg/heartbeat's producer, which re-fires a CAN message on a fixed period from a ticker.
package pnp

import (
	"log/slog"
	"sync"

	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/internal/crc"
)

// Request is the payload of a PnP allocation request: the requester's v1 48-bit CRC-64-WE
// truncation of its unique id. It carries no offered node id; this package models the
// single-response v1 exchange of spec section 4.10.
type Request struct {
	UniqueIDHash uint64 // v1: 48-bit CRC-64-WE truncation, masked to the low 48 bits
}

// Response is a candidate allocation: the hash the allocator is responding to, and the node id
// it offers.
type Response struct {
	UniqueIDHash  uint64
	AllocatedNode uint16
}

// UniqueIDHashV1 truncates the CRC-64-WE of a 128-bit unique id to 48 bits, per spec section
// 4.10's "v1 format".
func UniqueIDHashV1(uniqueID [16]byte) uint64 {
	return uint64(crc.CRC64WEOf(uniqueID[:])) & 0x0000FFFFFFFFFFFF
}

// Publisher sends one PnP allocation request; it is supplied by the caller (e.g. an
// AnonymousPublisher) so this package stays transport-agnostic.
type Publisher interface {
	PublishRequest(req Request) error
}

// Client runs the allocation handshake described in spec section 4.10: periodically publish a
// request carrying the unique-id hash, and adopt the first response whose hash matches.
//
// The jitter added to each retry period is derived from the unique-id hash itself (see
// SPEC_FULL.md's supplemental-features section) rather than a process-wide random source, so
// two freshly-booted nodes with different unique ids do not retry in lockstep.
type Client struct {
	mu        sync.Mutex
	hash      uint64
	period    clock.Duration
	publisher Publisher
	logger    *slog.Logger

	adopted    bool
	allocated  uint16
	nextFireAt clock.Instant
}

// NewClient returns a Client that will publish allocation requests for uniqueID every period
// (jittered), via publisher.
func NewClient(uniqueID [16]byte, period clock.Duration, publisher Publisher) *Client {
	return &Client{
		hash:      UniqueIDHashV1(uniqueID),
		period:    period,
		publisher: publisher,
		logger:    slog.Default().With("service", "[pnp]"),
	}
}

// Adopted reports whether a matching allocation has been received, and if so, the node id.
func (c *Client) Adopted() (uint16, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocated, c.adopted
}

// Poll is the periodic driver entry point: if it is time to retry and no id has been adopted
// yet, it publishes another request. Safe to call frequently; it is a no-op between retries.
func (c *Client) Poll(now clock.Instant) {
	c.mu.Lock()
	if c.adopted || now.Before(c.nextFireAt) {
		c.mu.Unlock()
		return
	}
	c.nextFireAt = now.Add(jitteredPeriod(c.period, c.hash))
	hash := c.hash
	c.mu.Unlock()

	if err := c.publisher.PublishRequest(Request{UniqueIDHash: hash}); err != nil {
		c.logger.Warn("pnp: failed to publish allocation request", "err", err)
	}
}

// HandleResponse processes an incoming allocation response (spec section 4.10): a matching
// response makes the client adopt the advertised id, after which Poll publishes nothing more.
// The client holds no subscription, and HandleResponse does not unsubscribe anything.
// Non-matching responses are ignored, per the PnP match invariant in spec section 8.
func (c *Client) HandleResponse(resp Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.adopted || resp.UniqueIDHash != c.hash {
		return
	}
	c.adopted = true
	c.allocated = resp.AllocatedNode
	c.logger.Info("pnp: adopted allocated node id", "node_id", resp.AllocatedNode)
}

// jitteredPeriod spreads retries across roughly +/-25% of period, seeded from the client's own
// unique-id hash so the jitter is deterministic per-node and never calls a process-wide RNG.
func jitteredPeriod(period clock.Duration, hash uint64) clock.Duration {
	if period <= 0 {
		return period
	}
	quarter := int64(period) / 4
	if quarter == 0 {
		return period
	}
	offset := int64(hash%uint64(2*quarter+1)) - quarter
	return clock.Duration(int64(period) + offset)
}

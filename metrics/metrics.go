// Package metrics defines the prometheus counters exported by a running gocyphal node.
//
// Grounded on m-lab-tcp-info's metrics package: package-level vars built with
// promauto.NewCounterVec/NewCounter so registration with the default registry happens at
// package init, no explicit Register call required at the call site.
//
// The counters below describe what each one measures. No package in this module increments
// them: the receivers, the deduplicator and the PnP client do not report to this package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesDropped counts frames discarded by a receiver before reassembly, labeled by
	// transport ("can", "serial", "udp") and reason (spec section 4.13's failure list: "crc",
	// "bad_header", "bad_tail", "length", "timeout", "deadline").
	FramesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocyphal_frames_dropped_total",
			Help: "frames dropped before or during reassembly",
		},
		[]string{"transport", "reason"})

	// ReassemblyFailures counts sessions discarded mid-transfer (CRC mismatch, toggle/index
	// mismatch, timeout), labeled by transport.
	ReassemblyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocyphal_reassembly_failures_total",
			Help: "multi-frame transfers abandoned before completion",
		},
		[]string{"transport"})

	// TransfersDelivered counts transfers successfully handed to the application, labeled by
	// transport and transfer kind ("message", "request", "response").
	TransfersDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gocyphal_transfers_delivered_total",
			Help: "transfers successfully reassembled and delivered",
		},
		[]string{"transport", "kind"})

	// DedupSwitchovers counts active-transport changes in the redundant deduplicator
	// (spec section 4.9).
	DedupSwitchovers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gocyphal_dedup_switchovers_total",
			Help: "redundant transport deduplicator active-index changes",
		})

	// PnPAllocationsAdopted counts successful plug-and-play node-id adoptions
	// (spec section 4.10).
	PnPAllocationsAdopted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gocyphal_pnp_allocations_adopted_total",
			Help: "plug-and-play node id allocations adopted by this process",
		})
)

// Package transport holds the transport-agnostic halves of the Cyphal engine: the
// subscription registry, the per-source session table, and the driver/handler contracts that
// every concrete transport (transport/can, transport/serial, transport/udp) is built against.
//
// Grounded on samsamfire/gocanopen's pkg/can.BusManager (subscriber registry keyed by id, with
// cancel closures from Subscribe) and pkg/sdo's per-client segmented-transfer state machine,
// generalized from CANopen's object-dictionary access pattern to Cyphal's
// subject/service+source session model (spec sections 4.2–4.5).
package transport

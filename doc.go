// Package cyphal implements the transport-agnostic core of a Cyphal/UAVCAN v1 protocol
// stack: transfer fragmentation and reassembly, subscription and session bookkeeping, and
// the shared value types (node id, port id, priority, transfer id) used by every transport
// backend in the sibling transport/* packages.
package cyphal

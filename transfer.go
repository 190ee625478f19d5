package cyphal

import "github.com/samsamfire/gocyphal/clock"

// Transfer is one application-level message, request, or response, possibly fragmented across
// several frames on the wire (spec section 3). It is transport-agnostic: the three transport
// backends fragment/reassemble it differently, but present this same shape to the
// application.
type Transfer struct {
	Kind Kind

	// Timestamp is the receive time (inbound, set to the first frame's arrival time) or the
	// send deadline (outbound, set to send-time + transmitter timeout).
	Timestamp clock.Instant

	Priority Priority
	Port     PortID

	// Source is the sending node id, or NoNode for an anonymous message (CAN only).
	Source uint16
	// Destination is the addressed node id; required for requests/responses, NoNode for
	// messages.
	Destination uint16

	ID TransferID

	// Loopback is set on an outgoing transfer to additionally deliver a copy on the local
	// receive path without it leaving the driver (spec section 4.4).
	Loopback bool

	// Payload is the transfer's serialized application payload, exclusive of any framing or
	// trailing CRC — those are transport framing details, stripped (on receive) or not yet
	// appended (on transmit) at this level.
	Payload []byte
}

// HasSource reports whether the transfer carries a known source node id.
func (t *Transfer) HasSource() bool { return t.Source != NoNode }

// HasDestination reports whether the transfer carries a destination node id.
func (t *Transfer) HasDestination() bool { return t.Destination != NoNode }

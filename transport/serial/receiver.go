package serial

import (
	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/transport"
)

// Receiver turns COBS-decoded serial packet bodies into transfers. Because the serial
// transport never fragments a transfer across packets (spec section 4.7), there is no session
// reassembly state machine here, unlike transport/can and transport/udp.
type Receiver struct {
	Local    uint16
	Registry *transport.Registry
}

func NewReceiver(local uint16, registry *transport.Registry) *Receiver {
	return &Receiver{Local: local, Registry: registry}
}

// Accept parses one delimited packet body (COBS-encoded bytes between the 0x00 delimiters) and
// returns the transfer it carries, or nil if the packet is malformed, addressed elsewhere, or
// not subscribed to.
func (r *Receiver) Accept(body []byte, now clock.Instant) (*transport.Delivered, error) {
	h, payload, ok := parsePacket(body)
	if !ok {
		return nil, nil
	}
	if !h.isSingleFrame() {
		return nil, nil
	}
	priority := cyphal.Priority(h.priority)
	if !priority.Valid() {
		return nil, nil
	}

	var kind cyphal.Kind
	switch {
	case !h.isService():
		kind = cyphal.KindMessage
	case h.isResponse():
		kind = cyphal.KindResponse
	default:
		kind = cyphal.KindRequest
	}
	if h.isService() && h.destinationNode != r.Local {
		return nil, nil
	}

	sub := r.Registry.Lookup(kind, h.portID())
	if sub == nil {
		return nil, nil
	}
	if len(payload) > sub.PayloadMax {
		return nil, cyphal.ErrLength
	}

	source := h.sourceNode
	hasSource := source != anonymousSource
	xfer := &transport.Delivered{
		Kind:      kind,
		Timestamp: now,
		Priority:  priority,
		Port:      h.portID(),
		ID:        cyphal.TransferID(h.transferID),
		Payload:   append([]byte(nil), payload...),
	}
	if hasSource {
		xfer.Source = source
	} else {
		xfer.Source = cyphal.NoNode
	}
	if h.isService() {
		xfer.Destination = h.destinationNode
	} else {
		xfer.Destination = cyphal.NoNode
	}
	return xfer, nil
}

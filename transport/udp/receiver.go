package udp

import (
	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/internal/crc"
	"github.com/samsamfire/gocyphal/transport"
)

// Receiver reassembles UDP datagrams into transfers, driving the same session state machine
// shape as transport/can.Receiver (frame index takes the place of the CAN toggle bit).
type Receiver struct {
	Local    uint16
	Registry *transport.Registry
}

func NewReceiver(local uint16, registry *transport.Registry) *Receiver {
	return &Receiver{Local: local, Registry: registry}
}

// Accept parses one incoming UDP datagram and returns the transfer it completes, if any.
func (r *Receiver) Accept(data []byte, now clock.Instant) (*transport.Delivered, error) {
	if len(data) < headerSize {
		return nil, nil
	}
	h, ok := parseHeader(data[:headerSize])
	if !ok {
		return nil, nil
	}
	priority := cyphal.Priority(h.priority)
	if !priority.Valid() {
		return nil, nil
	}
	payload := data[headerSize:]

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

	source := h.sourceNode
	id := cyphal.TransferID(h.transferID)

	sub.Lock()
	defer sub.Unlock()

	if h.frameIndex() == 0 && h.isLastFrame() {
		// Single-frame transfer: no trailing CRC (DESIGN.md Open Question (b)).
		if len(payload) > sub.PayloadMax {
			return nil, cyphal.ErrLength
		}
		return r.deliver(h, kind, priority, source, id, payload, now), nil
	}

	session := sub.Sessions.Get(source)
	switch {
	case h.frameIndex() == 0:
		session = transport.NewSession(id, priority, now, sub.PayloadMax)
		sub.Sessions.Set(source, session)
	case session == nil:
		return nil, nil
	case session.ExpectedID != id:
		return nil, nil
	case h.frameIndex() != session.NextFrameIndex:
		sub.Sessions.Delete(source)
		return nil, nil
	}

	if now.Since(session.FirstFrameTime) > sub.Timeout {
		sub.Sessions.Delete(source)
		return nil, nil
	}
	if len(session.Payload)+len(payload) > sub.PayloadMax+4 {
		sub.Sessions.Delete(source)
		return nil, cyphal.ErrLength
	}
	session.Payload = append(session.Payload, payload...)
	session.NextFrameIndex++

	if !h.isLastFrame() {
		return nil, nil
	}
	sub.Sessions.Delete(source)

	full := session.Payload
	if len(full) < 4 {
		return nil, nil
	}
	body, trailer := full[:len(full)-4], full[len(full)-4:]
	c := crc.New32C()
	c.Block(body)
	if c.Bytes() != [4]byte(trailer) {
		return nil, nil
	}
	return r.deliver(h, kind, priority, source, id, body, session.FirstFrameTime), nil
}

func (r *Receiver) deliver(h header, kind cyphal.Kind, priority cyphal.Priority, source uint16, id cyphal.TransferID, payload []byte, now clock.Instant) *transport.Delivered {
	xfer := &transport.Delivered{
		Kind:      kind,
		Timestamp: now,
		Priority:  priority,
		Port:      h.portID(),
		ID:        id,
		Payload:   append([]byte(nil), payload...),
	}
	if source == anonymousSource {
		xfer.Source = cyphal.NoNode
	} else {
		xfer.Source = source
	}
	if h.isService() {
		xfer.Destination = h.destinationNode
	} else {
		xfer.Destination = cyphal.NoNode
	}
	return xfer
}

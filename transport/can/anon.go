package can

import (
	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
)

// PseudoID derives the non-reserved 7-bit pseudo source id an anonymous CAN node uses to
// publish a single-frame message, per spec sections 4.11 and 9: XOR-fold the payload bytes
// against the starting constant 37, then step down over the two reserved ids (126, 127) on
// collision. The space of 7-bit values minus the two reserved ones is connected under
// wrap-around decrement, so this always terminates.
func PseudoID(payload []byte) NodeID {
	id := NodeID(37)
	for _, b := range payload {
		id ^= NodeID(b)
		id &= 0x7F
	}
	for id == ReservedNodeA || id == ReservedNodeB {
		if id == 0 {
			id = 0x7F
		} else {
			id--
		}
	}
	return id
}

// AnonymousPublisher sends single-frame, no-source-state messages, used for the plug-and-play
// allocation request and diagnostic broadcasts (spec section 4.11).
type AnonymousPublisher struct {
	queue *Queue
}

// NewAnonymousPublisher returns an AnonymousPublisher feeding the shared transmit queue.
func NewAnonymousPublisher(queue *Queue) *AnonymousPublisher {
	return &AnonymousPublisher{queue: queue}
}

// Publish sends one anonymous single-frame message on subject, at priority, with a pseudo
// source id derived from the payload. It fails with cyphal.ErrLength if payload does not fit
// in a single frame of mtu bytes (spec section 4.11).
func (a *AnonymousPublisher) Publish(priority cyphal.Priority, subject cyphal.PortID, payload []byte, mtu int, timeout clock.Duration, now clock.Instant) error {
	if len(payload) > mtu-1 {
		return cyphal.ErrLength
	}
	source := PseudoID(payload)
	ident := EncodeMessage(priority, true, subject, source)
	data := make([]byte, 0, mtu)
	data = append(data, payload...)
	if mtu > ClassicMTU {
		data = append(data, make([]byte, RoundUpFD(len(data)+1)-1-len(data))...)
	}
	data = append(data, TailByte(true, true, true, 0))
	a.queue.Push(Frame{ID: ident, Data: data, FD: mtu > ClassicMTU}, now.Add(timeout))
	return nil
}

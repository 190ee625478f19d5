package serial

import (
	"github.com/samsamfire/gocyphal"
)

// Publisher serializes outgoing messages as single-packet serial transfers (spec section 4.7:
// "the serial transport sends each transfer as one packet, no multi-packet fragmentation").
type Publisher struct {
	Priority cyphal.Priority
	Source   uint16
	nextID   cyphal.TransferID
}

// Push builds the wire packet for one message transfer and returns it along with the transfer
// id used, incrementing the publisher's counter.
func (p *Publisher) Push(subject cyphal.PortID, payload []byte) ([]byte, cyphal.TransferID) {
	id := p.nextID
	p.nextID++
	h := headerForMessage(p.Priority, p.Source, subject, id, singleFrameEOT)
	return buildPacket(h, payload), id
}

// Requester serializes outgoing service requests, tracking one transfer id counter per
// destination node (mirroring transport/can.Requester).
type Requester struct {
	Priority cyphal.Priority
	Source   uint16
	nextID   map[uint16]cyphal.TransferID
}

func NewRequester(priority cyphal.Priority, source uint16) *Requester {
	return &Requester{Priority: priority, Source: source, nextID: make(map[uint16]cyphal.TransferID)}
}

func (r *Requester) Push(service cyphal.PortID, destination uint16, payload []byte) ([]byte, cyphal.TransferID) {
	id := r.nextID[destination]
	r.nextID[destination] = id + 1
	h := headerForService(r.Priority, r.Source, destination, service, false, id, singleFrameEOT)
	return buildPacket(h, payload), id
}

// Responder serializes service responses; stateless, since a response always echoes the
// request's transfer id (spec section 4.4).
type Responder struct {
	Priority cyphal.Priority
	Source   uint16
}

func (r *Responder) Respond(service cyphal.PortID, destination uint16, id cyphal.TransferID, payload []byte) []byte {
	h := headerForService(r.Priority, r.Source, destination, service, true, id, singleFrameEOT)
	return buildPacket(h, payload)
}

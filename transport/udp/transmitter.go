package udp

import (
	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/internal/crc"
)

// Datagram is one outgoing UDP packet: a destination and the bytes to send.
type Datagram struct {
	DestAddr string // host:port, resolved by the caller's net.UDPAddr
	Port     uint16
	Data     []byte
}

// Publisher fragments outgoing messages into one or more UDP datagrams (spec section 4.4/4.8).
// A single-frame transfer omits the trailing CRC-32C per DESIGN.md Open Question (b); a
// multi-frame transfer appends it before splitting into MTU-sized chunks.
type Publisher struct {
	Priority cyphal.Priority
	Source   uint16
	Subnet   uint8
	MTU      int
	nextID   cyphal.TransferID
}

// Push serializes one message transfer, returning the ordered datagrams to send to the
// subject's multicast group.
func (p *Publisher) Push(subject cyphal.PortID, payload []byte) ([][]byte, cyphal.TransferID) {
	id := p.nextID
	p.nextID++
	frames := fragment(payload, p.MTU)
	out := make([][]byte, len(frames))
	for i, chunk := range frames {
		h := headerForMessage(p.Priority, p.Source, subject, id, uint32(i), i == len(frames)-1)
		buf := h.marshal()
		packet := make([]byte, 0, headerSize+len(chunk))
		packet = append(packet, buf[:]...)
		packet = append(packet, chunk...)
		out[i] = packet
	}
	return out, id
}

// Requester fragments outgoing service requests, tracking one transfer id counter per
// destination node.
type Requester struct {
	Priority cyphal.Priority
	Source   uint16
	MTU      int
	nextID   map[uint16]cyphal.TransferID
}

func NewRequester(priority cyphal.Priority, source uint16, mtu int) *Requester {
	return &Requester{Priority: priority, Source: source, MTU: mtu, nextID: make(map[uint16]cyphal.TransferID)}
}

func (r *Requester) Push(service cyphal.PortID, destination uint16, payload []byte) ([][]byte, cyphal.TransferID) {
	id := r.nextID[destination]
	r.nextID[destination] = id + 1
	frames := fragment(payload, r.MTU)
	out := make([][]byte, len(frames))
	for i, chunk := range frames {
		h := headerForService(r.Priority, r.Source, destination, service, false, id, uint32(i), i == len(frames)-1)
		buf := h.marshal()
		packet := make([]byte, 0, headerSize+len(chunk))
		packet = append(packet, buf[:]...)
		packet = append(packet, chunk...)
		out[i] = packet
	}
	return out, id
}

// Responder serializes service responses, echoing the request's transfer id.
type Responder struct {
	Priority cyphal.Priority
	Source   uint16
	MTU      int
}

func (r *Responder) Respond(service cyphal.PortID, destination uint16, id cyphal.TransferID, payload []byte) [][]byte {
	frames := fragment(payload, r.MTU)
	out := make([][]byte, len(frames))
	for i, chunk := range frames {
		h := headerForService(r.Priority, r.Source, destination, service, true, id, uint32(i), i == len(frames)-1)
		buf := h.marshal()
		packet := make([]byte, 0, headerSize+len(chunk))
		packet = append(packet, buf[:]...)
		packet = append(packet, chunk...)
		out[i] = packet
	}
	return out
}

// fragment splits payload into MTU-sized chunks after headerSize, appending a CRC-32C trailer
// only when more than one datagram results (spec section 4.4 and DESIGN.md Open Question (b)).
func fragment(payload []byte, mtu int) [][]byte {
	chunkSize := mtu - headerSize
	if len(payload) <= chunkSize {
		return [][]byte{payload}
	}
	c := crc.New32C()
	c.Block(payload)
	trailer := c.Bytes()
	withCRC := make([]byte, 0, len(payload)+4)
	withCRC = append(withCRC, payload...)
	withCRC = append(withCRC, trailer[:]...)

	var chunks [][]byte
	for len(withCRC) > 0 {
		n := chunkSize
		if n > len(withCRC) {
			n = len(withCRC)
		}
		chunks = append(chunks, withCRC[:n])
		withCRC = withCRC[n:]
	}
	return chunks
}

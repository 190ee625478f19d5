package can

import (
	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/internal/crc"
)

// Publisher sends messages on one subject, under one priority, from one source node.
// Requester sends requests to arbitrary destinations on one service, tracking a per-destination
// next-transfer-id counter. Responder holds no state: it echoes the request's transfer id,
// matching spec section 4.4 ("Responder holds no state").
//
// Grounded on samsamfire/gocanopen's per-client SDO transmit state (pkg/sdo/client.go) for the
// fragmentation/CRC/tail-byte sequencing, generalized to Cyphal's priority-queue dispatch.
type Publisher struct {
	Priority cyphal.Priority
	Timeout  clock.Duration
	Source   NodeID
	nextID   cyphal.TransferID
	queue    *Queue
	mtu      int // ClassicMTU (8) or FDMTU (64)
}

// NewPublisher returns a Publisher that fragments into mtu-byte frames (8 or 64).
func NewPublisher(priority cyphal.Priority, timeout clock.Duration, source NodeID, mtu int, queue *Queue) *Publisher {
	return &Publisher{Priority: priority, Timeout: timeout, Source: source, mtu: mtu, queue: queue}
}

// Push serializes and fragments one outgoing message transfer, enqueuing its frames in
// priority order (spec section 4.4).
func (p *Publisher) Push(subject cyphal.PortID, payload []byte, now clock.Instant) (cyphal.TransferID, error) {
	id := p.nextID
	frames, err := fragmentMessage(p.Priority, false, subject, p.Source, id, payload, p.mtu)
	if err != nil {
		return 0, err
	}
	deadline := now.Add(p.Timeout)
	for _, f := range frames {
		p.queue.Push(f, deadline)
	}
	p.nextID++
	return id, nil
}

// Requester sends requests to one service, tracking next-transfer-id per destination (spec
// section 3/4.4: "per-destination next transfer id array").
type Requester struct {
	Priority cyphal.Priority
	Timeout  clock.Duration
	Source   NodeID
	nextID   map[NodeID]cyphal.TransferID
	queue    *Queue
	mtu      int
}

func NewRequester(priority cyphal.Priority, timeout clock.Duration, source NodeID, mtu int, queue *Queue) *Requester {
	return &Requester{Priority: priority, Timeout: timeout, Source: source, mtu: mtu, queue: queue, nextID: make(map[NodeID]cyphal.TransferID)}
}

// Push sends a request to destination on service, returning the assigned transfer id (the
// caller needs it to match the eventual response).
func (r *Requester) Push(service cyphal.PortID, destination NodeID, payload []byte, now clock.Instant) (cyphal.TransferID, error) {
	id := r.nextID[destination]
	frames, err := fragmentService(r.Priority, false, service, destination, r.Source, id, payload, r.mtu)
	if err != nil {
		return 0, err
	}
	deadline := now.Add(r.Timeout)
	for _, f := range frames {
		r.queue.Push(f, deadline)
	}
	r.nextID[destination] = id + 1
	return id, nil
}

// Responder sends responses, echoing the caller-supplied transfer id from the request it
// answers (spec section 4.4).
type Responder struct {
	Priority cyphal.Priority
	Timeout  clock.Duration
	Source   NodeID
	queue    *Queue
	mtu      int
}

func NewResponder(priority cyphal.Priority, timeout clock.Duration, source NodeID, mtu int, queue *Queue) *Responder {
	return &Responder{Priority: priority, Timeout: timeout, Source: source, mtu: mtu, queue: queue}
}

// Respond sends a response to destination on service, with the given (echoed) transfer id.
func (r *Responder) Respond(service cyphal.PortID, destination NodeID, id cyphal.TransferID, payload []byte, now clock.Instant) error {
	frames, err := fragmentService(r.Priority, true, service, destination, r.Source, id, payload, r.mtu)
	if err != nil {
		return err
	}
	deadline := now.Add(r.Timeout)
	for _, f := range frames {
		r.queue.Push(f, deadline)
	}
	return nil
}

// fragmentMessage splits a message payload into CAN frames (spec section 4.4/4.6).
func fragmentMessage(priority cyphal.Priority, anonymous bool, subject cyphal.PortID, source NodeID, id cyphal.TransferID, payload []byte, mtu int) ([]Frame, error) {
	ident := EncodeMessage(priority, anonymous, subject, source)
	return fragment(ident, id, payload, mtu)
}

// fragmentService splits a request/response payload into CAN frames.
func fragmentService(priority cyphal.Priority, isResponse bool, service cyphal.PortID, destination, source NodeID, id cyphal.TransferID, payload []byte, mtu int) ([]Frame, error) {
	ident := EncodeService(priority, isResponse, service, destination, source)
	return fragment(ident, id, payload, mtu)
}

// fragment implements the shared CAN fragmentation algorithm: payload into (mtu-1)-byte
// chunks (FD: rounded up to a valid DLC), a trailing CRC-16 appended when multi-frame, and a
// tail byte per frame carrying SoT/EoT/toggle/transfer-id (spec section 4.4, worked examples
// in spec section 8 scenarios 1 and 2).
func fragment(ident uint32, id cyphal.TransferID, payload []byte, mtu int) ([]Frame, error) {
	isFD := mtu > ClassicMTU
	chunkSize := mtu - 1

	// Single-frame fast path: no CRC suffix.
	if len(payload) <= chunkSize {
		data := make([]byte, 0, mtu)
		data = append(data, payload...)
		if isFD {
			padded := make([]byte, RoundUpFD(len(data)+1)-1)
			copy(padded, data)
			data = padded
		}
		data = append(data, TailByte(true, true, true, id))
		return []Frame{{ID: ident, Data: data, FD: isFD}}, nil
	}

	// Multi-frame: append the CRC-16 before splitting. On CAN FD the last frame is zero-padded
	// to a valid length; the padding precedes the CRC and is covered by it.
	full := make([]byte, 0, len(payload)+2)
	full = append(full, payload...)
	if isFD {
		last := (len(payload)+2-1)%chunkSize + 1
		full = append(full, make([]byte, RoundUpFD(last+1)-1-last)...)
	}
	sum := crc.CRC16Of(full)
	sumBytes := sum.Bytes()
	full = append(full, sumBytes[0], sumBytes[1])

	// Toggle starts at false on the start-of-transfer frame and flips on every subsequent
	// frame (spec GLOSSARY: "alternating per frame ... starting at 1 for the second frame").
	var frames []Frame
	toggle := false
	for offset := 0; offset < len(full); offset += chunkSize {
		end := offset + chunkSize
		start := offset == 0
		if end >= len(full) {
			end = len(full)
		}
		chunk := full[offset:end]
		isLast := end == len(full)

		data := make([]byte, 0, mtu)
		data = append(data, chunk...)
		data = append(data, TailByte(start, isLast, toggle, id))
		frames = append(frames, Frame{ID: ident, Data: data, FD: isFD})
		toggle = !toggle
	}
	return frames, nil
}

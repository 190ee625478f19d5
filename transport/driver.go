package transport

import "errors"

// ErrDriverWouldBlock is the error for a driver that cannot make progress immediately (spec
// section 5). None of the drivers in this module return it.
var ErrDriverWouldBlock = errors.New("transport: driver would block")

// TxOutcome is the result of handing one frame to a transmit driver (spec section 6).
type TxOutcome uint8

const (
	// TxOutcomeSent means the driver accepted the frame (queued it or sent it immediately).
	TxOutcomeSent TxOutcome = iota
	// TxOutcomeWouldBlock means the driver could not accept the frame right now; the caller
	// should stop flushing and retry later. The frame is preserved by the caller, not lost.
	TxOutcomeWouldBlock
)

// Handler is the application-supplied set of transfer callbacks (spec section 6). Each
// returns whether it consumed the transfer, so a chain of handlers (e.g. an application
// handler followed by a diagnostic logger) can cooperate.
type Handler interface {
	HandleMessage(t *Delivered) bool
	HandleRequest(t *Delivered, respond ResponseToken) bool
	HandleResponse(t *Delivered) bool
}

// LoopbackHandler is an optional extension a Handler may also implement to observe its own
// outgoing transfers looped back, per spec section 4.4.
type LoopbackHandler interface {
	HandleLoopback(t *Delivered) bool
}

// ResponseToken lets a request handler send a response carrying the same transfer id as the
// request it answers, without the responder needing to hold per-client state (spec section
// 4.4: "Responder holds no state; it echoes the request's transfer id").
type ResponseToken interface {
	// Respond sends payload as the response to the token's request.
	Respond(payload []byte) error
}

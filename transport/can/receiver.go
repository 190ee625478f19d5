package can

import (
	"log/slog"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/internal/crc"
	"github.com/samsamfire/gocyphal/transport"
)

// Receiver implements the CAN receive pipeline of spec section 4.5: frame validation,
// subscription lookup, single-frame fast path, and multi-frame session reassembly with
// toggle/CRC checks.
//
// Grounded on samsamfire/gocanopen's pkg/sdo server-side segmented-download state machine
// (accumulate chunks, verify toggle, verify CRC on completion) generalized from one
// OD-addressed transfer to per-(subscription,source) sessions.
type Receiver struct {
	Local    NodeID
	Registry *transport.Registry
	logger   *slog.Logger
}

// NewReceiver returns a Receiver for the given local node id and subscription registry.
func NewReceiver(local NodeID, registry *transport.Registry, logger *slog.Logger) *Receiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Receiver{Local: local, Registry: registry, logger: logger.With("service", "[can-rx]")}
}

// Accept processes one received frame, returning a completed transfer if the frame finished
// one (spec section 4.5). A nil, nil result means the frame was consumed (dropped, or
// advanced a session) without completing a transfer.
func (r *Receiver) Accept(frame Frame, now clock.Instant) (*transport.Delivered, error) {
	if len(frame.Data) == 0 {
		return nil, nil
	}
	tailIdx := len(frame.Data) - 1
	start, end, toggle, idLow := ParseTail(frame.Data[tailIdx])
	payload := frame.Data[:tailIdx]

	ident := Decode(frame.ID)

	if ident.IsService {
		return r.acceptService(ident, payload, start, end, toggle, idLow, now)
	}
	return r.acceptMessage(ident, payload, start, end, toggle, idLow, now)
}

func (r *Receiver) acceptMessage(ident Identifier, payload []byte, start, end, toggle bool, idLow byte, now clock.Instant) (*transport.Delivered, error) {
	sub := r.Registry.Lookup(cyphal.KindMessage, ident.Subject)
	if sub == nil {
		return nil, nil
	}

	var source uint16 = cyphal.NoNode
	if !ident.Anonymous {
		source = uint16(ident.Source)
	}

	// Single-frame fast path, including anonymous messages (always single-frame, spec 4.3).
	if start && end {
		return &transport.Delivered{
			Kind:      cyphal.KindMessage,
			Timestamp: now,
			Priority:  ident.Priority,
			Port:      ident.Subject,
			Source:    source,
			Destination: cyphal.NoNode,
			ID:        cyphal.TransferID(idLow),
			Payload:   append([]byte(nil), payload...),
		}, nil
	}

	if ident.Anonymous {
		// Anonymous nodes may only send single-frame messages (spec section 4.3).
		return nil, nil
	}

	return r.reassemble(sub, source, ident.Priority, ident.Subject, cyphal.NoNode, cyphal.KindMessage, start, end, toggle, idLow, payload, now)
}

func (r *Receiver) acceptService(ident Identifier, payload []byte, start, end, toggle bool, idLow byte, now clock.Instant) (*transport.Delivered, error) {
	if ident.Destination != r.Local {
		return nil, nil
	}
	kind := cyphal.KindRequest
	if ident.IsResponse {
		kind = cyphal.KindResponse
	}
	sub := r.Registry.Lookup(kind, ident.Service)
	if sub == nil {
		return nil, nil
	}

	if start && end {
		return &transport.Delivered{
			Kind:        kind,
			Timestamp:   now,
			Priority:    ident.Priority,
			Port:        ident.Service,
			Source:      uint16(ident.Source),
			Destination: uint16(ident.Destination),
			ID:          cyphal.TransferID(idLow),
			Payload:     append([]byte(nil), payload...),
		}, nil
	}

	return r.reassemble(sub, uint16(ident.Source), ident.Priority, ident.Service, uint16(ident.Destination), kind, start, end, toggle, idLow, payload, now)
}

// reassemble drives the session transition rules of spec section 4.3 for one non-single-frame
// CAN frame.
func (r *Receiver) reassemble(sub *transport.Subscription, source uint16, priority cyphal.Priority, port cyphal.PortID, destination uint16, kind cyphal.Kind, start, end, toggle bool, idLow byte, payload []byte, now clock.Instant) (*transport.Delivered, error) {
	sub.Lock()
	defer sub.Unlock()

	id := cyphal.TransferID(idLow)
	session := sub.Sessions.Get(source)

	switch {
	case start:
		// New start-of-transfer, or a duplicated/mismatched one: either way, (re)start the
		// session fresh (spec section 9, Open Question (a): restart rather than coalesce).
		session = transport.NewSession(id, priority, now, sub.PayloadMax)
		sub.Sessions.Set(source, session)

	case session == nil:
		return nil, nil // no partial start, drop

	case session.ExpectedID != id:
		return nil, nil // not our transfer, drop frame, keep session

	case toggle != session.Toggle:
		sub.Sessions.Delete(source)
		return nil, nil
	}

	if now.Since(session.FirstFrameTime) > sub.Timeout {
		sub.Sessions.Delete(source)
		return nil, nil
	}

	if len(session.Payload)+len(payload) > sub.PayloadMax+2 { // +2 for the trailing CRC-16
		sub.Sessions.Delete(source)
		return nil, cyphal.ErrLength
	}

	session.Payload = append(session.Payload, payload...)
	session.Toggle = !session.Toggle

	if !end {
		return nil, nil
	}

	sub.Sessions.Delete(source)

	if len(session.Payload) < 2 {
		return nil, nil
	}
	body := session.Payload[:len(session.Payload)-2]
	wantSum := crc.CRC16Of(body)
	wantBytes := wantSum.Bytes()
	gotBytes := [2]byte{session.Payload[len(session.Payload)-2], session.Payload[len(session.Payload)-1]}
	if wantBytes != gotBytes {
		return nil, nil // CRC mismatch: drop, no transfer, stats only (spec section 7)
	}

	return &transport.Delivered{
		Kind:        kind,
		Timestamp:   session.FirstFrameTime,
		Priority:    priority,
		Port:        port,
		Source:      source,
		Destination: destination,
		ID:          session.ExpectedID,
		Payload:     body,
	}, nil
}

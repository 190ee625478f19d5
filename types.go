package cyphal

import "fmt"

// Priority ranks a transfer from Exceptional (highest) to Optional (lowest). The numeric
// value is the wire encoding: lower values win arbitration on every transport.
type Priority uint8

const (
	Exceptional Priority = iota
	Immediate
	Fast
	High
	Nominal
	Low
	Slow
	Optional
)

func (p Priority) String() string {
	names := [...]string{"Exceptional", "Immediate", "Fast", "High", "Nominal", "Low", "Slow", "Optional"}
	if int(p) >= len(names) {
		return fmt.Sprintf("Priority(%d)", uint8(p))
	}
	return names[p]
}

// Valid reports whether p is one of the eight defined priority levels.
func (p Priority) Valid() bool {
	return p <= Optional
}

// Kind distinguishes the three transfer categories carried by every transport.
type Kind uint8

const (
	KindMessage Kind = iota
	KindRequest
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	default:
		return "kind(?)"
	}
}

const (
	// SubjectIDMax is the highest valid subject (message) port id.
	SubjectIDMax = 8191
	// ServiceIDMax is the highest valid service (request/response) port id.
	ServiceIDMax = 511
)

// PortID is a subject id (for KindMessage) or a service id (for KindRequest/KindResponse).
// The two id spaces overlap numerically; callers must track the Kind alongside the PortID,
// exactly as the subscription registry does.
type PortID uint16

// ValidSubject reports whether p is a legal subject id.
func (p PortID) ValidSubject() bool { return p <= SubjectIDMax }

// ValidService reports whether p is a legal service id.
func (p PortID) ValidService() bool { return p <= ServiceIDMax }

// TransferID is a monotonically incrementing per-(destination,port,kind) counter. Each
// transport truncates it to its own modulus when encoding a frame: 32 on CAN (5 tail bits),
// 2^64 (i.e. no truncation) on serial and UDP.
type TransferID uint64

// NoNode is the sentinel for "no source" (anonymous message) or "not a service" (no
// destination) in a Transfer. Transports reject it as an explicit node id.
const NoNode = ^uint16(0)

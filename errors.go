package cyphal

import "errors"

// Error kinds surfaced to callers, per spec section 7. Reassembly failures (Crc, UnionTag,
// ArrayLength, NotStart, Timeout) are internal: a session that hits one of these is dropped
// and the failure is folded into statistics rather than returned from Accept.
var (
	ErrOutOfMemory    = errors.New("cyphal: out of memory")
	ErrLength         = errors.New("cyphal: payload length invalid for this operation")
	ErrInvalidValue   = errors.New("cyphal: value out of range")
	ErrAnonymous      = errors.New("cyphal: node has no id")
	ErrDuplicate      = errors.New("cyphal: duplicate publisher or subscriber on this port")
	ErrWouldBlock     = errors.New("cyphal: driver would block")
	ErrCRC            = errors.New("cyphal: crc mismatch")
	ErrUnionTag       = errors.New("cyphal: invalid union tag")
	ErrArrayLength    = errors.New("cyphal: invalid array length")
	ErrNotStart       = errors.New("cyphal: frame does not start a transfer")
	ErrReassemblyTime = errors.New("cyphal: reassembly timed out")
)

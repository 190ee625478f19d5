package transport

import "github.com/samsamfire/gocyphal"

// Delivered is a fully reassembled, CRC-verified transfer handed to the application. It is
// exactly a cyphal.Transfer; the alias exists so transport-layer code reads as operating on
// "delivered" transfers rather than the bare value type shared with the transmit side.
type Delivered = cyphal.Transfer

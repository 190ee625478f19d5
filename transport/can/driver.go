package can

import (
	"errors"
	"fmt"
)

// ErrFrameTooLong is returned by a Classic-CAN driver given a frame with more than 8 data
// bytes (i.e. an FD frame handed to a Classic-only adapter).
var ErrFrameTooLong = errors.New("can: frame data exceeds driver's medium")

// FrameListener receives CAN frames from a Bus. Handle must not block (spec section 6).
type FrameListener interface {
	Handle(frame Frame)
}

// Bus is the driver contract for a CAN/CAN-FD medium, adapted from
// samsamfire/gocanopen pkg/can.Bus: Connect/Disconnect manage the underlying link, Send
// transmits one frame, Subscribe registers the single callback that receives every frame
// read from the bus (frame routing to subscriptions happens above the driver, in
// transport/can.Receiver).
type Bus interface {
	Connect(...any) error
	Disconnect() error
	Send(frame Frame) error
	Subscribe(callback FrameListener) error
}

// NewInterfaceFunc constructs a Bus for a named channel (e.g. "can0").
type NewInterfaceFunc func(channel string) (Bus, error)

var interfaceRegistry = make(map[string]NewInterfaceFunc)

// RegisterInterface registers a new Bus implementation under interfaceType. Drivers call this
// from an init() function, the way transport/can/socketcan and transport/can/virtual do.
func RegisterInterface(interfaceType string, newInterface NewInterfaceFunc) {
	interfaceRegistry[interfaceType] = newInterface
}

// NewBus constructs a Bus for a previously-registered interface type.
func NewBus(interfaceType, channel string) (Bus, error) {
	ctor, ok := interfaceRegistry[interfaceType]
	if !ok {
		return nil, fmt.Errorf("can: unsupported interface %q", interfaceType)
	}
	return ctor(channel)
}

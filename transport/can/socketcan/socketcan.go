// Package socketcan is a thin Classic-CAN driver wrapping github.com/brutella/can, adapted
// from samsamfire/gocanopen's pkg/can/socketcan.
package socketcan

import (
	sockcan "github.com/brutella/can"

	"github.com/samsamfire/gocyphal/transport/can"
)

func init() {
	can.RegisterInterface("socketcan", NewBus)
}

// Bus is a Classic-CAN (8-byte) SocketCAN adapter. CAN FD requires the raw-socket driver
// instead (see transport/can/socketcan/fd.go), since brutella/can does not support it.
type Bus struct {
	bus        *sockcan.Bus
	rxCallback can.FrameListener
}

func NewBus(channel string) (can.Bus, error) {
	bus, err := sockcan.NewBusForInterfaceWithName(channel)
	if err != nil {
		return nil, err
	}
	return &Bus{bus: bus}, nil
}

func (b *Bus) Connect(...any) error {
	go b.bus.ConnectAndPublish()
	return nil
}

func (b *Bus) Disconnect() error {
	return b.bus.Disconnect()
}

func (b *Bus) Send(frame can.Frame) error {
	if len(frame.Data) > 8 {
		return can.ErrFrameTooLong
	}
	var data [8]byte
	copy(data[:], frame.Data)
	return b.bus.Publish(sockcan.Frame{
		ID:     frame.ID | canEFFFlag,
		Length: uint8(len(frame.Data)),
		Data:   data,
	})
}

func (b *Bus) Subscribe(rxCallback can.FrameListener) error {
	b.rxCallback = rxCallback
	b.bus.Subscribe(b)
	return nil
}

// Handle implements brutella/can's frame-handler interface.
func (b *Bus) Handle(frame sockcan.Frame) {
	b.rxCallback.Handle(can.Frame{
		ID:   frame.ID &^ canEFFFlag,
		Data: append([]byte(nil), frame.Data[:frame.Length]...),
	})
}

// canEFFFlag marks an identifier as 29-bit extended, matching the SocketCAN CAN_EFF_FLAG bit
// (samsamfire/gocanopen's driver.go: CAN_EFF_FLAG uint32 = 0x80000000). Every Cyphal CAN
// identifier is extended, so this is set unconditionally on transmit and stripped on receive.
const canEFFFlag uint32 = 0x80000000

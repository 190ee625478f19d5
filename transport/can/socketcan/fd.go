package socketcan

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/samsamfire/gocyphal/transport/can"
)

// FDBus is a raw AF_CAN/CAN_RAW socket driver supporting CAN FD frames (up to 64 data
// bytes), since github.com/brutella/can only speaks Classic CAN. Grounded directly on
// samsamfire/gocanopen's pkg/can/socketcanv3.Bus: same unix.Socket/unix.SockaddrCAN setup,
// the same unsafe struct-to-byte-slice write, extended here to the CANFD_MTU (72-byte) frame
// layout and CAN_RAW_FD_FRAMES socket option.
func init() {
	can.RegisterInterface("socketcan-fd", NewFDBus)
}

const (
	canfdMTU      = 72 // CANFD_MTU: 4 (id) + 1 (len) + 3 (reserved/flags) + 64 (data)
	canRawFDFrame = 5  // CAN_RAW_FD_FRAMES socket option, per linux/can/raw.h
)

// fdFrame mirrors struct canfd_frame from linux/can.h.
type fdFrame struct {
	id    uint32
	len   uint8
	flags uint8
	res0  uint8
	res1  uint8
	data  [64]byte
}

type FDBus struct {
	fd         int
	rxCallback can.FrameListener
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewFDBus opens a raw CAN_RAW socket on channel (e.g. "vcan0") with CAN FD frames enabled.
func NewFDBus(channel string) (can.Bus, error) {
	iface, err := net.InterfaceByName(channel)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("socketcan-fd: open socket: %w", err)
	}
	one := 1
	if err := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, canRawFDFrame, one); err != nil {
		return nil, fmt.Errorf("socketcan-fd: enable FD frames: %w", err)
	}
	addr := &unix.SockaddrCAN{Ifindex: iface.Index}
	if err := unix.Bind(fd, addr); err != nil {
		return nil, fmt.Errorf("socketcan-fd: bind: %w", err)
	}
	return &FDBus{fd: fd, logger: slog.Default()}, nil
}

func (b *FDBus) Connect(...any) error {
	var ctx context.Context
	ctx, b.cancel = context.WithCancel(context.Background())
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.readLoop(ctx)
	}()
	return nil
}

func (b *FDBus) Disconnect() error {
	if b.cancel != nil {
		b.cancel()
		b.wg.Wait()
	}
	return unix.Close(b.fd)
}

func (b *FDBus) Send(frame can.Frame) error {
	var raw fdFrame
	raw.id = frame.ID | 0x80000000 // CAN_EFF_FLAG: every Cyphal id is extended
	raw.len = uint8(len(frame.Data))
	copy(raw.data[:], frame.Data)
	bytes := (*(*[canfdMTU]byte)(unsafe.Pointer(&raw)))[:]
	n, err := unix.Write(b.fd, bytes)
	if err != nil {
		return err
	}
	if n != canfdMTU {
		return fmt.Errorf("socketcan-fd: short write (%d/%d)", n, canfdMTU)
	}
	return nil
}

func (b *FDBus) Subscribe(rxCallback can.FrameListener) error {
	b.rxCallback = rxCallback
	return nil
}

func (b *FDBus) readLoop(ctx context.Context) {
	buf := make([]byte, canfdMTU)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := unix.Read(b.fd, buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("socketcan-fd: read error", "err", err)
			continue
		}
		if n < canfdMTU {
			continue
		}
		raw := (*fdFrame)(unsafe.Pointer(&buf[0]))
		if b.rxCallback != nil {
			b.rxCallback.Handle(can.Frame{
				ID:   raw.id &^ 0x80000000,
				Data: append([]byte(nil), raw.data[:raw.len]...),
				FD:   true,
			})
		}
	}
}

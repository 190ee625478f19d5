// Package virtual is a TCP-backed virtual CAN bus used for tests and local development,
// adapted from samsamfire/gocanopen's pkg/can/virtual. It speaks to a simple length-prefixed
// framing broker (see the windelbouwman/virtualcan-style protocol the teacher targets); any
// peer that understands [4-byte length][id:4][fd:1][len:1][data...] in big-endian will do.
package virtual

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/samsamfire/gocyphal/transport/can"
)

func init() {
	can.RegisterInterface("virtual", NewBus)
	can.RegisterInterface("virtualcan", NewBus)
}

type Bus struct {
	logger     *slog.Logger
	mu         sync.Mutex
	channel    string
	conn       net.Conn
	receiveOwn bool
	handler    can.FrameListener
	stopChan   chan struct{}
	wg         sync.WaitGroup
	running    bool
}

func NewBus(channel string) (can.Bus, error) {
	return &Bus{channel: channel, stopChan: make(chan struct{}), logger: slog.Default()}, nil
}

func serializeFrame(frame can.Frame) []byte {
	out := make([]byte, 4+4+1+1+len(frame.Data))
	binary.BigEndian.PutUint32(out[4:8], frame.ID)
	if frame.FD {
		out[8] = 1
	}
	out[9] = uint8(len(frame.Data))
	copy(out[10:], frame.Data)
	binary.BigEndian.PutUint32(out[0:4], uint32(len(out)-4))
	return out
}

func deserializeFrame(b []byte) (can.Frame, error) {
	if len(b) < 6 {
		return can.Frame{}, errors.New("virtual: short frame")
	}
	id := binary.BigEndian.Uint32(b[0:4])
	fd := b[4] != 0
	n := int(b[5])
	if len(b) < 6+n {
		return can.Frame{}, errors.New("virtual: truncated frame")
	}
	return can.Frame{ID: id, FD: fd, Data: append([]byte(nil), b[6:6+n]...)}, nil
}

func (b *Bus) Connect(...any) error {
	conn, err := net.Dial("tcp", b.channel)
	if err != nil {
		return err
	}
	b.conn = conn
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	return nil
}

func (b *Bus) Disconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		close(b.stopChan)
		b.wg.Wait()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

func (b *Bus) Send(frame can.Frame) error {
	if b.receiveOwn && b.handler != nil {
		b.handler.Handle(frame)
	}
	if b.conn == nil {
		return errors.New("virtual: no active connection")
	}
	_ = b.conn.SetWriteDeadline(time.Now().Add(10 * time.Millisecond))
	_, err := b.conn.Write(serializeFrame(frame))
	return err
}

func (b *Bus) Subscribe(handler can.FrameListener) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
	if b.running {
		return nil
	}
	b.running = true
	b.stopChan = make(chan struct{})
	b.wg.Add(1)
	go b.readLoop()
	return nil
}

func (b *Bus) readLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stopChan:
			return
		default:
		}
		frame, err := b.recv()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			b.logger.Warn("virtual: receive error", "err", err)
			continue
		}
		b.handler.Handle(frame)
	}
}

func (b *Bus) recv() (can.Frame, error) {
	if b.conn == nil {
		return can.Frame{}, fmt.Errorf("virtual: no active connection")
	}
	_ = b.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	header := make([]byte, 4)
	if _, err := b.conn.Read(header); err != nil {
		return can.Frame{}, err
	}
	length := binary.BigEndian.Uint32(header)
	body := make([]byte, length)
	_ = b.conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, err := b.conn.Read(body); err != nil {
		return can.Frame{}, err
	}
	return deserializeFrame(body)
}

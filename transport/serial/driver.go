// Package serial implements the Cyphal serial transport (spec sections 4.7 and 6): one packet
// per transfer, COBS-escaped and delimited by 0x00 bytes, carried over an OS serial port.
package serial

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.bug.st/serial"
)

// ErrClosed is returned by Send after Disconnect.
var ErrClosed = errors.New("serial: port closed")

// PacketListener receives packet bodies read from the port (delimiter-stripped, still
// COBS-encoded).
type PacketListener interface {
	HandlePacket(body []byte)
}

// Port is a byte-stream serial link, grounded on samsamfire/gocanopen's CAN Bus driver shape
// (Connect/Disconnect/Send/Subscribe) but framing a byte stream instead of discrete frames,
// since a UART has no native message boundaries.
type Port struct {
	portName string
	baud     int
	port     serial.Port
	mu       sync.Mutex
	closed   bool
	listener PacketListener
	logger   *slog.Logger
}

// NewPort opens portName at baud (e.g. "/dev/ttyACM0", 115200).
func NewPort(portName string, baud int) (*Port, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}
	_ = p.SetReadTimeout(100 * time.Millisecond)
	return &Port{portName: portName, baud: baud, port: p, logger: slog.Default()}, nil
}

// Disconnect closes the underlying port and stops the read loop.
func (p *Port) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.port.Close()
}

// Send writes one already-delimited packet (as returned by buildPacket) to the wire.
func (p *Port) Send(packet []byte) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}
	_, err := p.port.Write(packet)
	return err
}

// Subscribe registers the packet listener and starts the background read loop. Packet bodies
// handed to listener have delimiters stripped but are still COBS-encoded; call parsePacket (via
// Receiver.Accept) to decode.
func (p *Port) Subscribe(listener PacketListener) {
	p.listener = listener
	go p.readLoop()
}

// readLoop accumulates bytes between 0x00 delimiters and dispatches each complete packet body.
// Grounded on the framing loop shape in the pack's goserial-based examples, adapted to a
// zero-delimited COBS stream instead of a fixed-terminator ASCII protocol.
func (p *Port) readLoop() {
	buf := make([]byte, 256)
	var pending []byte
	for {
		p.mu.Lock()
		closed := p.closed
		p.mu.Unlock()
		if closed {
			return
		}
		n, err := p.port.Read(buf)
		if err != nil {
			p.logger.Warn("serial: read error", "port", p.portName, "err", err)
			return
		}
		if n == 0 {
			continue
		}
		pending = append(pending, buf[:n]...)
		for {
			idx := bytes.IndexByte(pending, 0x00)
			if idx < 0 {
				break
			}
			body := pending[:idx]
			pending = pending[idx+1:]
			if len(body) == 0 {
				continue
			}
			if p.listener != nil {
				p.listener.HandlePacket(append([]byte(nil), body...))
			}
		}
	}
}

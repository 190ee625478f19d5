package udp

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// ErrClosed is returned by SendUnicast after Disconnect.
var ErrClosed = errors.New("udp: connection closed")

// DatagramListener receives raw UDP payloads read from a Link.
type DatagramListener interface {
	HandleDatagram(data []byte, from *net.UDPAddr)
}

// Link is a UDP socket pair: one connection for unicast service traffic, one per joined
// multicast group for subscribed subjects. Grounded on transport/can's driver shape
// (Connect/Disconnect/Send/Subscribe), adapted from a single link to per-destination sockets
// since net.UDPConn cannot both unicast-send and multicast-receive on the same handle.
type Link struct {
	localAddr *net.UDPAddr
	unicast   *net.UDPConn
	iface     *net.Interface

	mu       sync.Mutex
	closed   bool
	groups   map[string]*net.UDPConn
	listener DatagramListener
	logger   *slog.Logger
}

// NewLink opens the unicast receive/send socket bound to localAddr (host:port).
func NewLink(localAddr string, iface *net.Interface) (*Link, error) {
	addr, err := net.ResolveUDPAddr("udp4", localAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, err
	}
	return &Link{
		localAddr: addr,
		unicast:   conn,
		iface:     iface,
		groups:    make(map[string]*net.UDPConn),
		logger:    slog.Default(),
	}, nil
}

// Disconnect closes the unicast socket and every joined multicast group.
func (l *Link) Disconnect() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	for _, g := range l.groups {
		_ = g.Close()
	}
	return l.unicast.Close()
}

// SendUnicast writes data to the destination node's unicast address and service port.
func (l *Link) SendUnicast(ip net.IP, port uint16, data []byte) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return ErrClosed
	}
	_, err := l.unicast.WriteToUDP(data, &net.UDPAddr{IP: ip, Port: int(port)})
	return err
}

// JoinGroup subscribes to a subject's multicast group, starting a read loop for it.
func (l *Link) JoinGroup(group net.IP, port uint16, listener DatagramListener) error {
	addr := &net.UDPAddr{IP: group, Port: int(port)}
	conn, err := net.ListenMulticastUDP("udp4", l.iface, addr)
	if err != nil {
		return fmt.Errorf("udp: join group %s: %w", group, err)
	}
	l.mu.Lock()
	l.groups[group.String()] = conn
	l.listener = listener
	l.mu.Unlock()
	go l.readLoop(conn)
	return nil
}

// Subscribe starts the unicast read loop for service traffic addressed to this node.
func (l *Link) Subscribe(listener DatagramListener) {
	l.listener = listener
	go l.readLoop(l.unicast)
}

func (l *Link) readLoop(conn *net.UDPConn) {
	buf := make([]byte, 65535)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			l.mu.Lock()
			closed := l.closed
			l.mu.Unlock()
			if closed {
				return
			}
			l.logger.Warn("udp: read error", "err", err)
			continue
		}
		if l.listener != nil {
			l.listener.HandleDatagram(append([]byte(nil), buf[:n]...), from)
		}
	}
}

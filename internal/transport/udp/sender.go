// Package udp publishes blend-strength packets to a fixed-rate consumer,
// typically a lighting rig or external visualizer that prefers datagrams
// over a persistent connection.
package udp

import (
	"fmt"
	"net"
	"sync"

	applog "nitemix/internal/log"
)

// Sender handles sending data packets over UDP.
type Sender struct {
	conn   *net.UDPConn
	mu     sync.Mutex
	closed bool
}

// NewSender creates a sender targeting "host:port".
func NewSender(targetAddress string) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("udp: resolving target %q: %w", targetAddress, err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("udp: dialing %q: %w", targetAddress, err)
	}

	applog.Infof("UDP sender: connection established to %s", conn.RemoteAddr())
	return &Sender{conn: conn}, nil
}

// Send transmits one datagram. Safe for concurrent use.
func (s *Sender) Send(data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("udp: sender is closed")
	}
	_, err := s.conn.Write(data)
	s.mu.Unlock()

	if err != nil {
		applog.Errorf("UDP sender: error sending packet: %v", err)
		return fmt.Errorf("udp: sending packet: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn != nil {
		applog.Infof("UDP sender: closing connection to %s", s.conn.RemoteAddr())
		err := s.conn.Close()
		s.conn = nil
		if err != nil {
			return fmt.Errorf("udp: closing connection: %w", err)
		}
	}
	return nil
}

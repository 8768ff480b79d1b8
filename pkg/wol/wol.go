package wol

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// DefaultBroadcastAddr is the limited broadcast address used when none is configured.
	DefaultBroadcastAddr = "255.255.255.255"
	// DefaultPort is the conventional Wake-on-LAN discard port.
	DefaultPort = 9

	macLength     = 6
	macRepeats    = 16
	syncStreamLen = 6
	// PacketSize is the length of a magic packet: sync stream plus 16 copies of the MAC.
	PacketSize = syncStreamLen + macLength*macRepeats

	dialTimeout = 2 * time.Second
)

var (
	// ErrInvalidAddress is returned when the hardware address is not exactly 6 octets.
	ErrInvalidAddress = errors.New("invalid hardware address")
	// ErrNetwork is returned when the datagram could not be emitted.
	ErrNetwork = errors.New("network error")
)

// Dialer opens the UDP socket the packet is written to.
type Dialer func(network, address string) (net.Conn, error)

// Sender broadcasts magic packets. The protocol has no acknowledgment, so a
// nil error only means the datagram left this host.
type Sender struct {
	broadcastAddr string
	port          int
	dial          Dialer
}

// NewSender creates a Sender targeting broadcastAddr:port. Empty or zero
// values fall back to the defaults.
func NewSender(broadcastAddr string, port int) *Sender {
	if broadcastAddr == "" {
		broadcastAddr = DefaultBroadcastAddr
	}
	if port == 0 {
		port = DefaultPort
	}
	return &Sender{
		broadcastAddr: broadcastAddr,
		port:          port,
		dial: func(network, address string) (net.Conn, error) {
			return net.DialTimeout(network, address, dialTimeout)
		},
	}
}

// WithDialer replaces the socket dialer. Used by tests to observe sends.
func (s *Sender) WithDialer(d Dialer) *Sender {
	s.dial = d
	return s
}

// Addr returns the destination the packets are sent to.
func (s *Sender) Addr() string {
	return net.JoinHostPort(s.broadcastAddr, strconv.Itoa(s.port))
}

// Wake validates mac and emits a single magic packet for it.
func (s *Sender) Wake(mac net.HardwareAddr) error {
	packet, err := NewMagicPacket(mac)
	if err != nil {
		return err
	}

	conn, err := s.dial("udp4", s.Addr())
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrNetwork, s.Addr(), err)
	}
	defer conn.Close()

	n, err := conn.Write(packet)
	if err != nil {
		return fmt.Errorf("%w: write to %s: %v", ErrNetwork, s.Addr(), err)
	}
	if n != len(packet) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrNetwork, n, len(packet))
	}
	return nil
}

// NewMagicPacket builds the 102-byte frame for mac.
func NewMagicPacket(mac net.HardwareAddr) ([]byte, error) {
	if len(mac) != macLength {
		return nil, fmt.Errorf("%w: expected %d octets, got %d", ErrInvalidAddress, macLength, len(mac))
	}

	var buf bytes.Buffer
	buf.Grow(PacketSize)
	buf.Write(bytes.Repeat([]byte{0xFF}, syncStreamLen))
	for i := 0; i < macRepeats; i++ {
		buf.Write(mac)
	}
	return buf.Bytes(), nil
}

// ParseMAC parses a textual 48-bit hardware address.
func ParseMAC(s string) (net.HardwareAddr, error) {
	mac, err := net.ParseMAC(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(mac) != macLength {
		return nil, fmt.Errorf("%w: %q is not a 48-bit address", ErrInvalidAddress, s)
	}
	return mac, nil
}

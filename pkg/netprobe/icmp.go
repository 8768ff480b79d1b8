package netprobe

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const protocolICMP = 1

// ListenFunc opens an ICMP packet connection.
type ListenFunc func(network, address string) (*icmp.PacketConn, error)

// ICMPProber sends one echo request and waits for the matching reply. It
// prefers an unprivileged datagram socket and falls back to a raw socket.
type ICMPProber struct {
	timeout time.Duration
	listen  ListenFunc
	id      int
	seq     atomic.Uint32
}

// NewICMPProber creates an ICMPProber with the given per-probe timeout.
func NewICMPProber(timeout time.Duration) *ICMPProber {
	return &ICMPProber{
		timeout: timeout,
		listen:  icmp.ListenPacket,
		id:      os.Getpid() & 0xffff,
	}
}

// WithListener replaces the socket opener.
func (p *ICMPProber) WithListener(listen ListenFunc) *ICMPProber {
	p.listen = listen
	return p
}

func (p *ICMPProber) Probe(ctx context.Context, host string) error {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	ip, err := resolveIPv4(ctx, host)
	if err != nil {
		return err
	}

	conn, datagram, err := p.open()
	if err != nil {
		return err
	}
	defer conn.Close()

	seq := int(p.seq.Add(1) & 0xffff)
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: p.id, Seq: seq, Data: []byte("pcremote")},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("marshal echo request: %w", err)
	}

	var dst net.Addr = &net.IPAddr{IP: ip}
	if datagram {
		dst = &net.UDPAddr{IP: ip}
	}
	if _, err := conn.WriteTo(wire, dst); err != nil {
		return fmt.Errorf("send echo request to %s: %w", ip, err)
	}

	deadline, _ := ctx.Deadline()
	if err := conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("set read deadline: %w", err)
	}

	// Unblock the read early if the caller goes away before the deadline.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			return fmt.Errorf("%w from %s: %v", ErrNoReply, ip, err)
		}
		if !samePeer(peer, ip) {
			continue
		}

		reply, err := icmp.ParseMessage(protocolICMP, buf[:n])
		if err != nil || reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := reply.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue
		}
		// The kernel rewrites the identifier on datagram sockets.
		if !datagram && echo.ID != p.id {
			continue
		}
		return nil
	}
}

func (p *ICMPProber) open() (*icmp.PacketConn, bool, error) {
	conn, err := p.listen("udp4", "0.0.0.0")
	if err == nil {
		return conn, true, nil
	}

	raw, rawErr := p.listen("ip4:icmp", "0.0.0.0")
	if rawErr != nil {
		return nil, false, fmt.Errorf("open icmp socket: %v; raw fallback: %w", err, rawErr)
	}
	return raw, false, nil
}

func samePeer(peer net.Addr, ip net.IP) bool {
	switch addr := peer.(type) {
	case *net.UDPAddr:
		return addr.IP.Equal(ip)
	case *net.IPAddr:
		return addr.IP.Equal(ip)
	default:
		return false
	}
}

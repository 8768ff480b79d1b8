// Package netprobe answers "is this host on the network at all" with a
// single short echo probe.
package netprobe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	MethodICMP    = "icmp"
	MethodCommand = "command"

	DefaultTimeout = time.Second
)

var (
	// ErrNoReply means the probe was sent but nothing answered in time.
	ErrNoReply = errors.New("no echo reply")
	// ErrResolve means the host name could not be turned into an IPv4 address.
	ErrResolve = errors.New("cannot resolve host")
)

// Prober checks host reachability. A nil error means the host answered.
type Prober interface {
	Probe(ctx context.Context, host string) error
}

// Runner executes an external command and returns its output.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New returns the prober for the configured method.
func New(method string, timeout time.Duration, runner Runner) (Prober, error) {
	switch method {
	case MethodICMP, "":
		return NewICMPProber(timeout), nil
	case MethodCommand:
		if runner == nil {
			return nil, errors.New("command prober requires a runner")
		}
		return NewCommandProber(timeout, runner), nil
	default:
		return nil, fmt.Errorf("unknown probe method %q", method)
	}
}

func resolveIPv4(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, fmt.Errorf("%w: %s is not IPv4", ErrResolve, host)
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrResolve, host, err)
	}
	for _, addr := range addrs {
		if v4 := addr.IP.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no IPv4 address", ErrResolve, host)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

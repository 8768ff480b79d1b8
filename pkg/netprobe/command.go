package netprobe

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"time"
)

// CommandProber shells out to the platform ping utility. It works where the
// process may not open ICMP sockets at all.
type CommandProber struct {
	timeout time.Duration
	runner  Runner
	goos    string
}

// NewCommandProber creates a CommandProber for the running platform.
func NewCommandProber(timeout time.Duration, runner Runner) *CommandProber {
	return NewCommandProberFor(runtime.GOOS, timeout, runner)
}

// NewCommandProberFor creates a CommandProber that builds arguments for goos.
func NewCommandProberFor(goos string, timeout time.Duration, runner Runner) *CommandProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CommandProber{timeout: timeout, runner: runner, goos: goos}
}

func (p *CommandProber) Probe(ctx context.Context, host string) error {
	// Leave the utility room to report its own timeout before ours fires.
	ctx, cancel := withTimeout(ctx, p.timeout+time.Second)
	defer cancel()

	if _, err := p.runner.Output(ctx, "ping", p.Args(host)...); err != nil {
		return fmt.Errorf("%w from %s: %v", ErrNoReply, host, err)
	}
	return nil
}

// Args returns the ping arguments for a single echo with the prober's timeout.
func (p *CommandProber) Args(host string) []string {
	switch p.goos {
	case "windows":
		return []string{"-n", "1", "-w", strconv.FormatInt(p.timeout.Milliseconds(), 10), host}
	case "darwin", "freebsd":
		// -t is the overall timeout in whole seconds here.
		return []string{"-c", "1", "-t", wholeSeconds(p.timeout), host}
	default:
		return []string{"-c", "1", "-W", wholeSeconds(p.timeout), host}
	}
}

func wholeSeconds(d time.Duration) string {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(s)
}

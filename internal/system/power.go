package system

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// PowerController issues OS power-state changes. Both calls return once the
// instruction has been handed to the OS; they do not confirm the effect.
type PowerController interface {
	Shutdown(delay time.Duration) error
	Sleep() error
}

// AfterFunc runs f once d has elapsed. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) *time.Timer

// PowerManager maps power actions to the host's shutdown/suspend commands.
type PowerManager struct {
	runner    CommandRunner
	goos      string
	afterFunc AfterFunc
	logger    zerolog.Logger
}

// NewPowerManager creates a PowerManager for the running OS.
func NewPowerManager(runner CommandRunner, logger zerolog.Logger) *PowerManager {
	return NewPowerManagerFor(runtime.GOOS, runner, logger)
}

// NewPowerManagerFor creates a PowerManager issuing commands for goos.
func NewPowerManagerFor(goos string, runner CommandRunner, logger zerolog.Logger) *PowerManager {
	return &PowerManager{runner: runner, goos: goos, afterFunc: time.AfterFunc, logger: logger}
}

// WithAfterFunc replaces the timer used to defer shutdowns.
func (p *PowerManager) WithAfterFunc(f AfterFunc) *PowerManager {
	p.afterFunc = f
	return p
}

// Shutdown schedules a power-off after delay. Windows applies the delay
// itself; elsewhere shutdown(8) only counts in minutes, so the agent waits out
// the delay and then issues an immediate shutdown.
func (p *PowerManager) Shutdown(delay time.Duration) error {
	name, args, deferred, err := p.shutdownCommand(delay)
	if err != nil {
		return err
	}
	p.logger.Warn().Dur("delay", delay).Msg("Scheduling system shutdown")

	if !deferred {
		if err := p.runner.Dispatch(name, args...); err != nil {
			return fmt.Errorf("shutdown dispatch failed: %w", err)
		}
		return nil
	}

	p.afterFunc(delay, func() {
		if err := p.runner.Dispatch(name, args...); err != nil {
			p.logger.Error().Err(err).Msg("Deferred shutdown dispatch failed")
		}
	})
	return nil
}

// Sleep asks the OS to suspend.
func (p *PowerManager) Sleep() error {
	name, args, err := p.sleepCommand()
	if err != nil {
		return err
	}
	p.logger.Warn().Msg("Requesting system suspend")
	if err := p.runner.Dispatch(name, args...); err != nil {
		return fmt.Errorf("sleep dispatch failed: %w", err)
	}
	return nil
}

func (p *PowerManager) shutdownCommand(delay time.Duration) (string, []string, bool, error) {
	switch p.goos {
	case "windows":
		secs := int(math.Ceil(delay.Seconds()))
		return "shutdown", []string{"/s", "/t", strconv.Itoa(secs)}, false, nil
	case "linux", "darwin", "freebsd":
		return "shutdown", []string{"-h", "now"}, delay > 0, nil
	default:
		return "", nil, false, fmt.Errorf("shutdown on %s: %w", p.goos, ErrUnsupportedPlatform)
	}
}

func (p *PowerManager) sleepCommand() (string, []string, error) {
	switch p.goos {
	case "windows":
		return "rundll32.exe", []string{"powrprof.dll,SetSuspendState", "0,1,0"}, nil
	case "linux":
		return "systemctl", []string{"suspend"}, nil
	case "darwin":
		return "pmset", []string{"sleepnow"}, nil
	default:
		return "", nil, fmt.Errorf("sleep on %s: %w", p.goos, ErrUnsupportedPlatform)
	}
}

package system

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// VolumeState is the mixer's master output state. Level is in [0,1].
type VolumeState struct {
	Level float64
	Muted bool
}

// Percent returns the level as an integer percentage.
func (v VolumeState) Percent() int {
	return int(math.Round(v.Level * 100))
}

// Mixer reads and changes the OS master volume. Every call goes to the OS;
// nothing is cached.
type Mixer interface {
	Volume(ctx context.Context) (VolumeState, error)
	SetVolume(ctx context.Context, level float64) (VolumeState, error)
	ToggleMute(ctx context.Context) (VolumeState, error)
}

// ClampLevel forces level into [0,1].
func ClampLevel(level float64) float64 {
	return math.Max(0, math.Min(1, level))
}

const defaultSink = "@DEFAULT_SINK@"

var percentPattern = regexp.MustCompile(`(\d+)%`)

// CommandMixer drives the mixer through pactl (Linux) or osascript (macOS).
type CommandMixer struct {
	runner CommandRunner
	goos   string
}

// NewCommandMixer creates a CommandMixer for the running OS.
func NewCommandMixer(runner CommandRunner) *CommandMixer {
	return NewCommandMixerFor(runtime.GOOS, runner)
}

// NewCommandMixerFor creates a CommandMixer issuing commands for goos.
func NewCommandMixerFor(goos string, runner CommandRunner) *CommandMixer {
	return &CommandMixer{runner: runner, goos: goos}
}

// Volume returns the current level and mute flag.
func (m *CommandMixer) Volume(ctx context.Context) (VolumeState, error) {
	switch m.goos {
	case "linux":
		return m.pactlState(ctx)
	case "darwin":
		return m.osascriptState(ctx)
	default:
		return VolumeState{}, fmt.Errorf("volume on %s: %w", m.goos, ErrUnsupportedPlatform)
	}
}

// SetVolume clamps level into [0,1], applies it and returns the new state.
func (m *CommandMixer) SetVolume(ctx context.Context, level float64) (VolumeState, error) {
	percent := strconv.Itoa(int(math.Round(ClampLevel(level) * 100)))

	var err error
	switch m.goos {
	case "linux":
		_, err = m.runner.Output(ctx, "pactl", "set-sink-volume", defaultSink, percent+"%")
	case "darwin":
		_, err = m.runner.Output(ctx, "osascript", "-e", "set volume output volume "+percent)
	default:
		return VolumeState{}, fmt.Errorf("volume on %s: %w", m.goos, ErrUnsupportedPlatform)
	}
	if err != nil {
		return VolumeState{}, fmt.Errorf("set volume: %w", err)
	}
	return m.Volume(ctx)
}

// ToggleMute flips the mute flag and returns the new state.
func (m *CommandMixer) ToggleMute(ctx context.Context) (VolumeState, error) {
	switch m.goos {
	case "linux":
		if _, err := m.runner.Output(ctx, "pactl", "set-sink-mute", defaultSink, "toggle"); err != nil {
			return VolumeState{}, fmt.Errorf("toggle mute: %w", err)
		}
	case "darwin":
		current, err := m.osascriptState(ctx)
		if err != nil {
			return VolumeState{}, err
		}
		script := "set volume output muted " + strconv.FormatBool(!current.Muted)
		if _, err := m.runner.Output(ctx, "osascript", "-e", script); err != nil {
			return VolumeState{}, fmt.Errorf("toggle mute: %w", err)
		}
	default:
		return VolumeState{}, fmt.Errorf("volume on %s: %w", m.goos, ErrUnsupportedPlatform)
	}
	return m.Volume(ctx)
}

func (m *CommandMixer) pactlState(ctx context.Context) (VolumeState, error) {
	out, err := m.runner.Output(ctx, "pactl", "get-sink-volume", defaultSink)
	if err != nil {
		return VolumeState{}, fmt.Errorf("query volume: %w", err)
	}
	match := percentPattern.FindStringSubmatch(string(out))
	if match == nil {
		return VolumeState{}, fmt.Errorf("unexpected pactl volume output %q", strings.TrimSpace(string(out)))
	}
	percent, _ := strconv.Atoi(match[1])

	out, err = m.runner.Output(ctx, "pactl", "get-sink-mute", defaultSink)
	if err != nil {
		return VolumeState{}, fmt.Errorf("query mute: %w", err)
	}
	muted := strings.Contains(strings.ToLower(string(out)), "yes")

	return VolumeState{Level: ClampLevel(float64(percent) / 100), Muted: muted}, nil
}

func (m *CommandMixer) osascriptState(ctx context.Context) (VolumeState, error) {
	out, err := m.runner.Output(ctx, "osascript", "-e", "output volume of (get volume settings)")
	if err != nil {
		return VolumeState{}, fmt.Errorf("query volume: %w", err)
	}
	percent, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return VolumeState{}, fmt.Errorf("unexpected osascript volume output %q", strings.TrimSpace(string(out)))
	}

	out, err = m.runner.Output(ctx, "osascript", "-e", "output muted of (get volume settings)")
	if err != nil {
		return VolumeState{}, fmt.Errorf("query mute: %w", err)
	}
	muted := strings.TrimSpace(string(out)) == "true"

	return VolumeState{Level: ClampLevel(float64(percent) / 100), Muted: muted}, nil
}

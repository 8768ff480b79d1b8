package relay

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/benmeehan/pcremote/internal/models"
)

// VolumeStep is the relative change applied by "volume +" and "volume -".
const VolumeStep = 0.1

// Reply is what the relay sends back to the user.
type Reply struct {
	Text      string
	Image     []byte
	ImageType string
}

type handlerFunc func(ctx context.Context, args []string) (Reply, error)

func (r *Relay) buildRoutes() map[Intent]handlerFunc {
	return map[Intent]handlerFunc{
		IntentWake:       r.handleWake,
		IntentShutdown:   r.handleShutdown,
		IntentSleep:      r.handleSleep,
		IntentStatus:     r.handleStatus,
		IntentPing:       r.handlePing,
		IntentClipboard:  r.handleClipboard,
		IntentScreenshot: r.handleScreenshot,
		IntentStats:      r.handleStats,
		IntentVolume:     r.handleVolume,
		IntentUnknown:    r.handleUnknown,
	}
}

func (r *Relay) handleWake(ctx context.Context, args []string) (Reply, error) {
	if err := r.waker.Wake(r.target.MAC); err != nil {
		return Reply{}, err
	}
	return Reply{Text: "🟢 Magic packet sent. The PC should start shortly (instruction issued, not confirmed)."}, nil
}

func (r *Relay) handleShutdown(ctx context.Context, args []string) (Reply, error) {
	resp, err := r.agent.Shutdown(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf("🔌 Shutdown scheduled in %ds (instruction issued).", resp.DelaySeconds)}, nil
}

func (r *Relay) handleSleep(ctx context.Context, args []string) (Reply, error) {
	if _, err := r.agent.Sleep(ctx); err != nil {
		return Reply{}, err
	}
	return Reply{Text: "😴 Sleep requested (instruction issued)."}, nil
}

func (r *Relay) handleStatus(ctx context.Context, args []string) (Reply, error) {
	reach := r.prober.Check(ctx)
	r.logger.Info().Str("state", reach.State.String()).Msg("Reachability checked")
	return Reply{Text: renderReachability(reach)}, nil
}

func (r *Relay) handlePing(ctx context.Context, args []string) (Reply, error) {
	resp, err := r.agent.Ping(ctx)
	if err != nil {
		return Reply{}, err
	}
	text := "🤖 Agent online"
	if desc := describeAgent(resp); desc != "" {
		text += " (" + desc + ")"
	}
	return Reply{Text: text}, nil
}

func (r *Relay) handleClipboard(ctx context.Context, args []string) (Reply, error) {
	history, err := r.agent.Clipboard(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: renderClipboard(history)}, nil
}

func (r *Relay) handleScreenshot(ctx context.Context, args []string) (Reply, error) {
	image, err := r.agent.Screenshot(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: "🖥 Screenshot", Image: image, ImageType: "image/jpeg"}, nil
}

func (r *Relay) handleStats(ctx context.Context, args []string) (Reply, error) {
	stats, err := r.agent.Stats(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: renderStats(stats)}, nil
}

func (r *Relay) handleUnknown(ctx context.Context, args []string) (Reply, error) {
	return Reply{Text: MsgUnrecognized}, nil
}

func (r *Relay) handleVolume(ctx context.Context, args []string) (Reply, error) {
	arg := ""
	if len(args) > 0 {
		arg = strings.ToLower(strings.TrimSpace(strings.Join(args, "")))
	}

	var (
		resp *models.VolumeResponse
		err  error
	)
	switch arg {
	case "", "get":
		resp, err = r.agent.Volume(ctx)
	case "+", "up":
		resp, err = r.adjustVolume(ctx, VolumeStep)
	case "-", "down":
		resp, err = r.adjustVolume(ctx, -VolumeStep)
	case "mute":
		resp, err = r.agent.ToggleMute(ctx)
	case "unmute":
		resp, err = r.unmute(ctx)
	default:
		level, perr := parsePercent(arg)
		if perr != nil {
			return Reply{}, perr
		}
		resp, err = r.agent.SetVolume(ctx, level)
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: renderVolume(resp)}, nil
}

// unmute only toggles when the output is currently muted.
func (r *Relay) unmute(ctx context.Context) (*models.VolumeResponse, error) {
	current, err := r.agent.Volume(ctx)
	if err != nil || !current.Muted {
		return current, err
	}
	return r.agent.ToggleMute(ctx)
}

// adjustVolume reads the current level, steps it and writes it back. The two
// calls are not atomic; a failed set leaves whatever the agent has.
func (r *Relay) adjustVolume(ctx context.Context, delta float64) (*models.VolumeResponse, error) {
	current, err := r.agent.Volume(ctx)
	if err != nil {
		return nil, err
	}
	next := NextVolumeLevel(current.Level, delta)
	r.logger.Debug().Int("from", current.Level).Float64("to", next).Msg("Adjusting volume")
	return r.agent.SetVolume(ctx, next)
}

// NextVolumeLevel converts a 0-100 reading into the stepped [0,1] level.
func NextVolumeLevel(currentPercent int, delta float64) float64 {
	level := float64(currentPercent)/100 + delta
	level = math.Max(0, math.Min(1, level))
	return math.Round(level*100) / 100
}

func parsePercent(arg string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: volume takes +, -, mute or a number from 0 to 100, got %q", ErrInvalidInput, arg)
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("%w: volume %v is outside 0-100", ErrInvalidInput, n)
	}
	return math.Round(n) / 100, nil
}

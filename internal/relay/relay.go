// Package relay turns chat messages from allow-listed users into calls
// against the control agent.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/benmeehan/pcremote/internal/classifier"
	"github.com/benmeehan/pcremote/internal/models"
	"github.com/benmeehan/pcremote/pkg/agentclient"
	"github.com/benmeehan/pcremote/pkg/target"
	"github.com/benmeehan/pcremote/pkg/wol"
	"github.com/rs/zerolog"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrTargetOffline    = errors.New("target offline")
	ErrInvalidInput     = errors.New("invalid input")
)

// AgentAPI is the control agent as seen by the relay.
type AgentAPI interface {
	AgentPinger
	Shutdown(ctx context.Context) (*models.StatusResponse, error)
	Sleep(ctx context.Context) (*models.StatusResponse, error)
	Clipboard(ctx context.Context) ([]string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Stats(ctx context.Context) (*models.StatsResponse, error)
	Volume(ctx context.Context) (*models.VolumeResponse, error)
	SetVolume(ctx context.Context, level float64) (*models.VolumeResponse, error)
	ToggleMute(ctx context.Context) (*models.VolumeResponse, error)
}

// Waker emits Wake-on-LAN packets.
type Waker interface {
	Wake(mac net.HardwareAddr) error
}

type Options struct {
	Agent        AgentAPI
	Network      NetworkProbe
	Waker        Waker
	Classifier   classifier.Classifier
	Transcriber  classifier.Transcriber
	AllowList    AllowList
	Target       target.TargetDevice
	AgentVersion string // Optional semver constraint on the agent's reported version
	Logger       zerolog.Logger
}

type Relay struct {
	agent       AgentAPI
	waker       Waker
	classifier  classifier.Classifier
	transcriber classifier.Transcriber
	allow       AllowList
	target      target.TargetDevice
	prober      *Prober
	routes      map[Intent]handlerFunc
	logger      zerolog.Logger
}

func New(opts Options) (*Relay, error) {
	if opts.Agent == nil || opts.Network == nil || opts.Waker == nil {
		return nil, errors.New("relay requires an agent client, a network probe and a waker")
	}
	if opts.Classifier == nil {
		opts.Classifier = classifier.Disabled{}
	}
	if opts.Transcriber == nil {
		opts.Transcriber = classifier.Disabled{}
	}

	prober, err := NewProber(opts.Network, opts.Agent, opts.Target.Host, opts.AgentVersion, opts.Logger)
	if err != nil {
		return nil, err
	}

	r := &Relay{
		agent:       opts.Agent,
		waker:       opts.Waker,
		classifier:  opts.Classifier,
		transcriber: opts.Transcriber,
		allow:       opts.AllowList,
		target:      opts.Target,
		prober:      prober,
		logger:      opts.Logger,
	}
	r.routes = r.buildRoutes()
	return r, nil
}

// Handle processes one inbound message and always produces a reply. The
// allow-list is checked before anything else happens.
func (r *Relay) Handle(ctx context.Context, msg models.InboundMessage) Reply {
	logger := r.logger.With().Str("request_id", msg.ID).Str("user_id", msg.UserID).Logger()

	if !r.allow.Allowed(msg.UserID) {
		logger.Warn().Msg("Rejected message from user outside the allow-list")
		return Reply{Text: MsgAccessDenied}
	}

	intent, args, help := r.resolve(ctx, msg, logger)
	if help {
		return Reply{Text: helpText}
	}

	logger = logger.With().Str("intent", intent.String()).Logger()
	handler, ok := r.routes[intent]
	if !ok {
		handler = r.handleUnknown
	}

	start := time.Now()
	reply, err := handler(ctx, args)
	if err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Command failed")
		return Reply{Text: r.renderError(ctx, intent, err)}
	}

	logger.Info().Dur("elapsed", time.Since(start)).Msg("Command completed")
	return reply
}

// resolve picks the intent: explicit command, then voice, then text. Text
// that is exactly an intent name (or "volume <arg>") is used directly;
// anything else goes through the classifier, whose answer is re-validated.
func (r *Relay) resolve(ctx context.Context, msg models.InboundMessage, logger zerolog.Logger) (Intent, []string, bool) {
	if msg.Command != "" {
		if isHelpCommand(msg.Command) {
			return IntentUnknown, nil, true
		}
		return ParseIntent(msg.Command), msg.Args, false
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" && len(msg.Voice) > 0 {
		transcript, err := r.transcriber.Transcribe(ctx, msg.Voice)
		if err != nil {
			logger.Warn().Err(err).Msg("Voice transcription failed")
			return IntentUnknown, nil, false
		}
		logger.Debug().Str("transcript", transcript).Msg("Voice note transcribed")
		text = transcript
	}
	if text == "" {
		return IntentUnknown, nil, false
	}

	fields := strings.Fields(text)
	if len(fields) == 1 && isHelpCommand(fields[0]) {
		return IntentUnknown, nil, true
	}
	if intent, args, ok := directIntent(fields); ok {
		return intent, args, false
	}

	result, err := r.classifier.Classify(ctx, text)
	if err != nil {
		logger.Warn().Err(err).Msg("Classification failed")
		return IntentUnknown, nil, false
	}
	intent := ParseIntent(result.Action)
	if intent == IntentUnknown && !strings.EqualFold(strings.TrimSpace(result.Action), string(IntentUnknown)) {
		logger.Info().Str("action", result.Action).Msg("Classifier returned an unrecognized action")
	}

	var args []string
	if result.Argument != "" {
		args = []string{result.Argument}
	}
	return intent, args, false
}

// directIntent matches a bare intent word, or volume with a single argument.
// Longer sentences are left to the classifier even when they start with an
// intent name.
func directIntent(fields []string) (Intent, []string, bool) {
	intent := ParseIntent(fields[0])
	switch {
	case intent == IntentUnknown:
		return IntentUnknown, nil, false
	case len(fields) == 1:
		return intent, nil, true
	case len(fields) == 2 && intent == IntentVolume:
		return intent, fields[1:], true
	default:
		return IntentUnknown, nil, false
	}
}

func (r *Relay) renderError(ctx context.Context, intent Intent, err error) string {
	var agentErr *agentclient.AgentError
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return MsgAccessDenied
	case errors.Is(err, ErrTargetOffline):
		return MsgTargetOffline
	case errors.Is(err, ErrInvalidInput):
		return "✋ " + strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
	case errors.As(err, &agentErr):
		return fmt.Sprintf("⚠️ The control agent reported an error (%d): %s", agentErr.StatusCode, agentErr.Message)
	case errors.Is(err, agentclient.ErrAgentUnreachable):
		return r.explainUnreachable(ctx, intent)
	case errors.Is(err, wol.ErrInvalidAddress):
		return "⚠️ The configured MAC address is invalid; no packet was sent."
	case errors.Is(err, wol.ErrNetwork):
		return "⚠️ Could not send the magic packet: " + err.Error()
	default:
		return "⚠️ Something went wrong: " + err.Error()
	}
}

// explainUnreachable runs the network stage once so the user can tell a PC
// that is off from an agent that is down. The agent call is not retried.
func (r *Relay) explainUnreachable(ctx context.Context, intent Intent) string {
	if intent == IntentStatus {
		return MsgAgentDownMaybe
	}
	if err := r.prober.HostUp(context.WithoutCancel(ctx)); err != nil {
		return MsgTargetOffline
	}
	return MsgAgentDown
}

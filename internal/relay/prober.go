package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/benmeehan/pcremote/internal/models"
	"github.com/benmeehan/pcremote/pkg/agentclient"
	"github.com/rs/zerolog"
)

// NetworkProbe checks whether a host answers at the network layer.
type NetworkProbe interface {
	Probe(ctx context.Context, host string) error
}

// AgentPinger is the part of the agent API the prober needs.
type AgentPinger interface {
	Ping(ctx context.Context) (*models.PingResponse, error)
}

// State is the outcome of a reachability check.
type State int

const (
	StateOffline State = iota
	StateAgentUnreachable
	StateAgentError
	StateAgentConnected
)

func (s State) String() string {
	switch s {
	case StateOffline:
		return "offline"
	case StateAgentUnreachable:
		return "online_agent_unreachable"
	case StateAgentError:
		return "online_agent_error"
	case StateAgentConnected:
		return "online_agent_connected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Reachability is computed fresh for every request and never cached.
type Reachability struct {
	State       State
	StatusCode  int                  // Set for StateAgentError
	Message     string               // Agent error message or probe failure
	Agent       *models.PingResponse // Set for StateAgentConnected
	VersionNote string               // Non-empty when the agent version is outside the configured range
}

// Online reports whether the host answered the network probe.
func (r Reachability) Online() bool {
	return r.State != StateOffline
}

// Prober runs the two-stage reachability check: network probe first, agent
// ping only if the host answered.
type Prober struct {
	network    NetworkProbe
	agent      AgentPinger
	host       string
	constraint *semver.Constraints
	logger     zerolog.Logger
}

// NewProber creates a Prober. versionConstraint is optional, e.g. ">= 1.2, < 2".
func NewProber(network NetworkProbe, agent AgentPinger, host, versionConstraint string, logger zerolog.Logger) (*Prober, error) {
	p := &Prober{
		network: network,
		agent:   agent,
		host:    host,
		logger:  logger,
	}
	if versionConstraint != "" {
		c, err := semver.NewConstraint(versionConstraint)
		if err != nil {
			return nil, fmt.Errorf("agent version constraint %q: %w", versionConstraint, err)
		}
		p.constraint = c
	}
	return p, nil
}

// HostUp runs only the network stage.
func (p *Prober) HostUp(ctx context.Context) error {
	return p.network.Probe(ctx, p.host)
}

func (p *Prober) Check(ctx context.Context) Reachability {
	if err := p.HostUp(ctx); err != nil {
		p.logger.Debug().Err(err).Str("host", p.host).Msg("Network probe failed")
		return Reachability{State: StateOffline, Message: err.Error()}
	}

	ping, err := p.agent.Ping(ctx)
	if err != nil {
		var agentErr *agentclient.AgentError
		switch {
		case errors.As(err, &agentErr):
			return Reachability{State: StateAgentError, StatusCode: agentErr.StatusCode, Message: agentErr.Message}
		case errors.Is(err, agentclient.ErrAgentUnreachable):
			p.logger.Debug().Err(err).Msg("Agent ping failed")
			return Reachability{State: StateAgentUnreachable, Message: err.Error()}
		default:
			// A 2xx answer with an unreadable body still proves the agent is up.
			p.logger.Warn().Err(err).Msg("Agent answered ping with an unreadable body")
			return Reachability{State: StateAgentConnected, Message: err.Error(), VersionNote: p.versionNote("")}
		}
	}

	return Reachability{
		State:       StateAgentConnected,
		Agent:       ping,
		VersionNote: p.versionNote(ping.Version),
	}
}

func (p *Prober) versionNote(reported string) string {
	if p.constraint == nil {
		return ""
	}
	if reported == "" {
		return "agent did not report a version"
	}
	v, err := semver.NewVersion(reported)
	if err != nil {
		return fmt.Sprintf("agent version %q is not a valid semantic version", reported)
	}
	if !p.constraint.Check(v) {
		return fmt.Sprintf("agent version %s does not satisfy %s", v, p.constraint)
	}
	return ""
}

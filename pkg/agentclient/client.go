// Package agentclient is the relay's typed HTTP client for the control agent.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benmeehan/pcremote/internal/models"
	httputils "github.com/benmeehan/pcremote/pkg/httpUtils"
	"github.com/rs/zerolog"
)

// maxResponseBytes bounds any agent response body, screenshots included.
const maxResponseBytes = 32 << 20

// ErrAgentUnreachable means the host may be up but nothing answered on the
// agent port in time.
var ErrAgentUnreachable = errors.New("agent unreachable")

// AgentError is a non-2xx reply from the agent.
type AgentError struct {
	StatusCode int
	Message    string
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent returned %d: %s", e.StatusCode, e.Message)
}

// Timeouts bounds each agent operation independently.
type Timeouts struct {
	Ping       time.Duration
	Power      time.Duration
	Clipboard  time.Duration
	Screenshot time.Duration
	Stats      time.Duration
	Volume     time.Duration
}

// DefaultTimeouts returns the per-operation timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Ping:       2 * time.Second,
		Power:      5 * time.Second,
		Clipboard:  5 * time.Second,
		Screenshot: 15 * time.Second,
		Stats:      10 * time.Second,
		Volume:     5 * time.Second,
	}
}

type Client struct {
	baseURL    string
	timeouts   Timeouts
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a Client for the agent at baseURL, e.g. "http://desk.lan:8765".
func New(baseURL string, timeouts Timeouts, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeouts:   timeouts,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) Ping(ctx context.Context) (*models.PingResponse, error) {
	var out models.PingResponse
	if err := c.doJSON(ctx, c.timeouts.Ping, http.MethodGet, "/ping", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Shutdown(ctx context.Context) (*models.StatusResponse, error) {
	var out models.StatusResponse
	if err := c.doJSON(ctx, c.timeouts.Power, http.MethodPost, "/shutdown", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Sleep(ctx context.Context) (*models.StatusResponse, error) {
	var out models.StatusResponse
	if err := c.doJSON(ctx, c.timeouts.Power, http.MethodPost, "/sleep", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Clipboard returns the agent's clipboard history, newest first.
func (c *Client) Clipboard(ctx context.Context) ([]string, error) {
	var out models.ClipboardResponse
	if err := c.doJSON(ctx, c.timeouts.Clipboard, http.MethodGet, "/clipboard", nil, &out); err != nil {
		return nil, err
	}
	if out.History == nil {
		return []string{}, nil
	}
	return out.History, nil
}

// Screenshot returns the captured screen as JPEG bytes.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	return c.doRaw(ctx, c.timeouts.Screenshot, http.MethodGet, "/screenshot", nil)
}

func (c *Client) Stats(ctx context.Context) (*models.StatsResponse, error) {
	var out models.StatsResponse
	if err := c.doJSON(ctx, c.timeouts.Stats, http.MethodGet, "/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Volume(ctx context.Context) (*models.VolumeResponse, error) {
	return c.volume(ctx, models.VolumeRequest{Action: models.VolumeActionGet})
}

// SetVolume sets the master level; level is in [0,1] and the agent clamps it.
func (c *Client) SetVolume(ctx context.Context, level float64) (*models.VolumeResponse, error) {
	return c.volume(ctx, models.VolumeRequest{Action: models.VolumeActionSet, Level: &level})
}

func (c *Client) ToggleMute(ctx context.Context) (*models.VolumeResponse, error) {
	return c.volume(ctx, models.VolumeRequest{Action: models.VolumeActionMute})
}

func (c *Client) volume(ctx context.Context, req models.VolumeRequest) (*models.VolumeResponse, error) {
	var out models.VolumeResponse
	if err := c.doJSON(ctx, c.timeouts.Volume, http.MethodPost, "/volume", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, timeout time.Duration, method, path string, in, out any) error {
	body, err := c.doRaw(ctx, timeout, method, path, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

// doRaw performs one request. The call is detached from the caller's
// cancellation and bounded only by its own timeout; it is never retried.
func (c *Client) doRaw(ctx context.Context, timeout time.Duration, method, path string, in any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("path", path).Dur("elapsed", time.Since(start)).Msg("Agent request failed")
		return nil, fmt.Errorf("%w: %s %s: %v", ErrAgentUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		agentErr := &AgentError{StatusCode: resp.StatusCode, Message: httputils.ErrorMessage(resp)}
		c.logger.Debug().Int("status", resp.StatusCode).Str("path", path).Str("message", agentErr.Message).Msg("Agent returned an error")
		return nil, agentErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrAgentUnreachable, path, err)
	}

	c.logger.Debug().Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("Agent request completed")
	return body, nil
}

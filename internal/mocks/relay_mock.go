package mocks

import (
	"context"
	"net"

	"github.com/benmeehan/pcremote/internal/classifier"
	"github.com/benmeehan/pcremote/internal/models"
	"github.com/stretchr/testify/mock"
)

// AgentAPI is a mock implementation of relay.AgentAPI
type AgentAPI struct {
	mock.Mock
}

func (m *AgentAPI) Ping(ctx context.Context) (*models.PingResponse, error) {
	args := m.Called(ctx)
	var out *models.PingResponse
	if v := args.Get(0); v != nil {
		out = v.(*models.PingResponse)
	}
	return out, args.Error(1)
}

func (m *AgentAPI) Shutdown(ctx context.Context) (*models.StatusResponse, error) {
	return m.status(m.Called(ctx))
}

func (m *AgentAPI) Sleep(ctx context.Context) (*models.StatusResponse, error) {
	return m.status(m.Called(ctx))
}

func (m *AgentAPI) Clipboard(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	var out []string
	if v := args.Get(0); v != nil {
		out = v.([]string)
	}
	return out, args.Error(1)
}

func (m *AgentAPI) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	var out []byte
	if v := args.Get(0); v != nil {
		out = v.([]byte)
	}
	return out, args.Error(1)
}

func (m *AgentAPI) Stats(ctx context.Context) (*models.StatsResponse, error) {
	args := m.Called(ctx)
	var out *models.StatsResponse
	if v := args.Get(0); v != nil {
		out = v.(*models.StatsResponse)
	}
	return out, args.Error(1)
}

func (m *AgentAPI) Volume(ctx context.Context) (*models.VolumeResponse, error) {
	return m.volume(m.Called(ctx))
}

func (m *AgentAPI) SetVolume(ctx context.Context, level float64) (*models.VolumeResponse, error) {
	return m.volume(m.Called(ctx, level))
}

func (m *AgentAPI) ToggleMute(ctx context.Context) (*models.VolumeResponse, error) {
	return m.volume(m.Called(ctx))
}

func (m *AgentAPI) status(args mock.Arguments) (*models.StatusResponse, error) {
	var out *models.StatusResponse
	if v := args.Get(0); v != nil {
		out = v.(*models.StatusResponse)
	}
	return out, args.Error(1)
}

func (m *AgentAPI) volume(args mock.Arguments) (*models.VolumeResponse, error) {
	var out *models.VolumeResponse
	if v := args.Get(0); v != nil {
		out = v.(*models.VolumeResponse)
	}
	return out, args.Error(1)
}

// NetworkProbe is a mock implementation of relay.NetworkProbe
type NetworkProbe struct {
	mock.Mock
}

func (m *NetworkProbe) Probe(ctx context.Context, host string) error {
	args := m.Called(ctx, host)
	return args.Error(0)
}

// Waker is a mock implementation of relay.Waker
type Waker struct {
	mock.Mock
}

func (m *Waker) Wake(mac net.HardwareAddr) error {
	args := m.Called(mac)
	return args.Error(0)
}

// Classifier is a mock implementation of classifier.Classifier
type Classifier struct {
	mock.Mock
}

func (m *Classifier) Classify(ctx context.Context, text string) (classifier.Result, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(classifier.Result), args.Error(1)
}

// Transcriber is a mock implementation of classifier.Transcriber
type Transcriber struct {
	mock.Mock
}

func (m *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	args := m.Called(ctx, audio)
	return args.String(0), args.Error(1)
}

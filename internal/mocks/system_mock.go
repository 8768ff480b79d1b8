package mocks

import (
	"context"
	"time"

	"github.com/benmeehan/pcremote/internal/models"
	"github.com/benmeehan/pcremote/internal/system"
	"github.com/stretchr/testify/mock"
)

// CommandRunner is a mock implementation of system.CommandRunner
type CommandRunner struct {
	mock.Mock
}

func (m *CommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	ret := m.Called(ctx, name, args)
	var out []byte
	if v := ret.Get(0); v != nil {
		out = v.([]byte)
	}
	return out, ret.Error(1)
}

func (m *CommandRunner) Dispatch(name string, args ...string) error {
	ret := m.Called(name, args)
	return ret.Error(0)
}

// ClipboardReader is a mock implementation of system.ClipboardReader
type ClipboardReader struct {
	mock.Mock
}

func (m *ClipboardReader) ReadAll() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// PowerController is a mock implementation of system.PowerController
type PowerController struct {
	mock.Mock
}

func (m *PowerController) Shutdown(delay time.Duration) error {
	args := m.Called(delay)
	return args.Error(0)
}

func (m *PowerController) Sleep() error {
	args := m.Called()
	return args.Error(0)
}

// Mixer is a mock implementation of system.Mixer
type Mixer struct {
	mock.Mock
}

func (m *Mixer) Volume(ctx context.Context) (system.VolumeState, error) {
	args := m.Called(ctx)
	return args.Get(0).(system.VolumeState), args.Error(1)
}

func (m *Mixer) SetVolume(ctx context.Context, level float64) (system.VolumeState, error) {
	args := m.Called(ctx, level)
	return args.Get(0).(system.VolumeState), args.Error(1)
}

func (m *Mixer) ToggleMute(ctx context.Context) (system.VolumeState, error) {
	args := m.Called(ctx)
	return args.Get(0).(system.VolumeState), args.Error(1)
}

// ScreenCapturer is a mock implementation of system.ScreenCapturer
type ScreenCapturer struct {
	mock.Mock
}

func (m *ScreenCapturer) Capture(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	var out []byte
	if v := args.Get(0); v != nil {
		out = v.([]byte)
	}
	return out, args.Error(1)
}

// StatsProvider is a mock implementation of agent.StatsProvider
type StatsProvider struct {
	mock.Mock
}

func (m *StatsProvider) Stats(ctx context.Context) (*models.StatsResponse, error) {
	args := m.Called(ctx)
	var out *models.StatsResponse
	if v := args.Get(0); v != nil {
		out = v.(*models.StatsResponse)
	}
	return out, args.Error(1)
}

package service_registry

import (
	"errors"
	"testing"

	"github.com/benmeehan/pcremote/internal/registry"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	name     string
	log      *[]string
	startErr error
	stopErr  error
}

func (s *recordingService) Start() error {
	*s.log = append(*s.log, "start "+s.name)
	return s.startErr
}

func (s *recordingService) Stop() error {
	*s.log = append(*s.log, "stop "+s.name)
	return s.stopErr
}

func define(name string, enabled bool, svc registry.Service) Definition {
	return Definition{Name: name, Enabled: enabled, Constructor: func() (registry.Service, error) { return svc, nil }}
}

func TestStartStop_Order(t *testing.T) {
	var log []string
	sr := NewServiceRegistry(zerolog.Nop())
	require.NoError(t, sr.RegisterServices([]Definition{
		define("http", true, &recordingService{name: "http", log: &log}),
		define("disabled", false, &recordingService{name: "disabled", log: &log}),
		define("clipboard", true, &recordingService{name: "clipboard", log: &log}),
	}))

	require.NoError(t, sr.StartServices())
	require.NoError(t, sr.StopServices())

	assert.Equal(t, []string{"start http", "start clipboard", "stop clipboard", "stop http"}, log)
}

func TestStartServices_RollsBackOnFailure(t *testing.T) {
	var log []string
	sr := NewServiceRegistry(zerolog.Nop())
	require.NoError(t, sr.RegisterService("a", &recordingService{name: "a", log: &log}))
	require.NoError(t, sr.RegisterService("b", &recordingService{name: "b", log: &log}))
	require.NoError(t, sr.RegisterService("c", &recordingService{name: "c", log: &log, startErr: errors.New("bind: address in use")}))

	err := sr.StartServices()

	assert.ErrorContains(t, err, "failed to start c")
	assert.Equal(t, []string{"start a", "start b", "start c", "stop b", "stop a"}, log)
	assert.NoError(t, sr.StopServices())
}

func TestStopServices_JoinsErrors(t *testing.T) {
	var log []string
	sr := NewServiceRegistry(zerolog.Nop())
	require.NoError(t, sr.RegisterService("a", &recordingService{name: "a", log: &log, stopErr: errors.New("a stuck")}))
	require.NoError(t, sr.RegisterService("b", &recordingService{name: "b", log: &log, stopErr: errors.New("b stuck")}))
	require.NoError(t, sr.StartServices())

	err := sr.StopServices()

	assert.ErrorContains(t, err, "a stuck")
	assert.ErrorContains(t, err, "b stuck")
}

func TestRegister_DuplicateAndConstructorError(t *testing.T) {
	sr := NewServiceRegistry(zerolog.Nop())
	var log []string
	require.NoError(t, sr.RegisterService("a", &recordingService{name: "a", log: &log}))
	assert.Error(t, sr.RegisterService("a", &recordingService{name: "a", log: &log}))

	err := sr.RegisterServices([]Definition{{
		Name:        "relay",
		Enabled:     true,
		Constructor: func() (registry.Service, error) { return nil, errors.New("bad constraint") },
	}})
	assert.ErrorContains(t, err, "failed to create relay service")
}

package agentclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benmeehan/pcremote/internal/models"
	"github.com/benmeehan/pcremote/pkg/agentclient"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, handler http.HandlerFunc) *agentclient.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return agentclient.New(server.URL+"/", agentclient.DefaultTimeouts(), zerolog.Nop())
}

func TestPing_Success(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/ping", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":"online","platform":"linux","version":"1.2.0"}`)
	})

	resp, err := client.Ping(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "online", resp.Status)
	assert.Equal(t, "1.2.0", resp.Version)
}

func TestPing_NonSuccessIsAgentError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"warming up"}`)
	})

	_, err := client.Ping(context.Background())

	var agentErr *agentclient.AgentError
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, http.StatusServiceUnavailable, agentErr.StatusCode)
	assert.Equal(t, "warming up", agentErr.Message)
	assert.False(t, errors.Is(err, agentclient.ErrAgentUnreachable))
}

func TestPing_TimeoutIsUnreachable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	timeouts := agentclient.DefaultTimeouts()
	timeouts.Ping = 50 * time.Millisecond
	client := agentclient.New(server.URL, timeouts, zerolog.Nop())

	start := time.Now()
	_, err := client.Ping(context.Background())

	assert.ErrorIs(t, err, agentclient.ErrAgentUnreachable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestConnectionRefusedIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := agentclient.New(url, agentclient.DefaultTimeouts(), zerolog.Nop())

	_, err := client.Stats(context.Background())

	assert.ErrorIs(t, err, agentclient.ErrAgentUnreachable)
}

func TestCallerCancellationDoesNotAbortCall(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = io.WriteString(w, `{"status":"sleep_requested"}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := client.Sleep(ctx)

	require.NoError(t, err)
	assert.Equal(t, "sleep_requested", resp.Status)
}

func TestVolumeRequests(t *testing.T) {
	var got []models.VolumeRequest
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volume", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var req models.VolumeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		got = append(got, req)
		_, _ = io.WriteString(w, `{"level":50,"muted":false}`)
	})

	_, err := client.Volume(context.Background())
	require.NoError(t, err)
	resp, err := client.SetVolume(context.Background(), 0.5)
	require.NoError(t, err)
	_, err = client.ToggleMute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50, resp.Level)
	require.Len(t, got, 3)
	assert.Equal(t, models.VolumeActionGet, got[0].Action)
	assert.Nil(t, got[0].Level)
	assert.Equal(t, models.VolumeActionSet, got[1].Action)
	require.NotNil(t, got[1].Level)
	assert.Equal(t, 0.5, *got[1].Level)
	assert.Equal(t, models.VolumeActionMute, got[2].Action)
}

func TestScreenshot_ReturnsBytes(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
	})

	image, err := client.Screenshot(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xE0}, image)
}

func TestClipboard_NullHistoryIsEmpty(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"history":null}`)
	})

	history, err := client.Clipboard(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestMalformedBodyIsNotUnreachable(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	_, err := client.Stats(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, agentclient.ErrAgentUnreachable))
	var agentErr *agentclient.AgentError
	assert.False(t, errors.As(err, &agentErr))
}

package services_test

import (
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/benmeehan/pcremote/internal/services"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAgentHTTPService_ServesUntilStopped binds an ephemeral port and drains on Stop.
func TestAgentHTTPService_ServesUntilStopped(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	svc := services.NewAgentHTTPService("127.0.0.1:0", handler, time.Second, time.Second, time.Second, zerolog.Nop())

	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start())

	resp, err := http.Get("http://" + svc.Addr() + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	addr := svc.Addr()
	require.NoError(t, svc.Stop())
	assert.Error(t, svc.Stop())

	client := http.Client{Timeout: 200 * time.Millisecond}
	_, err = client.Get("http://" + addr + "/ping")
	assert.Error(t, err)
}

// TestAgentHTTPService_BindFailure reports the listen error from Start.
func TestAgentHTTPService_BindFailure(t *testing.T) {
	first := services.NewAgentHTTPService("127.0.0.1:0", http.NotFoundHandler(), time.Second, time.Second, time.Second, zerolog.Nop())
	require.NoError(t, first.Start())
	defer first.Stop()

	second := services.NewAgentHTTPService(first.Addr(), http.NotFoundHandler(), time.Second, time.Second, time.Second, zerolog.Nop())
	err := second.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}

package classifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		assert.Equal(t, DefaultModel, req.Model)

		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, content)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	cases := []struct {
		content string
		want    Result
	}{
		{`{"action":"wake"}`, Result{Action: "wake"}},
		{"```json\n{\"action\":\"Shutdown\"}\n```", Result{Action: "shutdown"}},
		{`{"action":"volume","argument":"up"}`, Result{Action: "volume", Argument: "up"}},
		{`{"action":"volume","argument":30}`, Result{Action: "volume", Argument: "30"}},
		{`{"action":"reboot"}`, Result{Action: "reboot"}},
	}

	for _, tc := range cases {
		server := chatServer(t, http.StatusOK, tc.content)
		c := NewOpenAIClassifier(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL + "/"}, zerolog.Nop())

		got, err := c.Classify(context.Background(), "whatever")

		require.NoError(t, err, tc.content)
		assert.Equal(t, tc.want, got, tc.content)
	}
}

func TestOpenAIClassifier_Failures(t *testing.T) {
	server := chatServer(t, http.StatusTooManyRequests, `{"error":"rate limited"}`)
	c := NewOpenAIClassifier(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL}, zerolog.Nop())

	_, err := c.Classify(context.Background(), "turn it on")
	assert.ErrorIs(t, err, ErrClassifierFailure)
	assert.Contains(t, err.Error(), "429")

	server = chatServer(t, http.StatusOK, `I think you want to wake it`)
	c = NewOpenAIClassifier(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL}, zerolog.Nop())

	_, err = c.Classify(context.Background(), "turn it on")
	assert.ErrorIs(t, err, ErrClassifierFailure)
}

func TestOpenAIClassifier_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := NewOpenAIClassifier(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())

	_, err := c.Classify(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrClassifierFailure)
}

func TestWhisperTranscriber_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, DefaultTranscriptionModel, r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))

		file, _, err := r.FormFile("file")
		if assert.NoError(t, err) {
			data, _ := io.ReadAll(file)
			assert.Equal(t, []byte("OggS"), data)
		}
		_, _ = io.WriteString(w, `{"text":"  turn on my computer \n"}`)
	}))
	defer server.Close()

	tr := NewWhisperTranscriber(WhisperConfig{APIKey: "sk-test", BaseURL: server.URL, Language: "en"}, zerolog.Nop())

	text, err := tr.Transcribe(context.Background(), []byte("OggS"))

	require.NoError(t, err)
	assert.Equal(t, "turn on my computer", text)
}

func TestWhisperTranscriber_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unsupported format"}`)
	}))
	defer server.Close()

	tr := NewWhisperTranscriber(WhisperConfig{APIKey: "sk-test", BaseURL: server.URL}, zerolog.Nop())

	_, err := tr.Transcribe(context.Background(), []byte("data"))
	assert.ErrorIs(t, err, ErrClassifierFailure)

	_, err = tr.Transcribe(context.Background(), nil)
	assert.ErrorIs(t, err, ErrClassifierFailure)
}

func TestDisabled(t *testing.T) {
	var d Disabled

	res, err := d.Classify(context.Background(), "turn on")
	require.NoError(t, err)
	assert.Equal(t, "unknown", res.Action)

	_, err = d.Transcribe(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrClassifierFailure)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1} `))
}

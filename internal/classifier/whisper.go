package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const DefaultTranscriptionModel = "whisper-1"

// WhisperConfig configures an OpenAI-compatible transcription endpoint.
type WhisperConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string // Optional ISO-639-1 hint
	Timeout  time.Duration
}

// WhisperTranscriber uploads a voice note to /audio/transcriptions.
type WhisperTranscriber struct {
	cfg        WhisperConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewWhisperTranscriber(cfg WhisperConfig, logger zerolog.Logger) *WhisperTranscriber {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultTranscriptionModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &WhisperTranscriber{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio", ErrClassifierFailure)
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "voice.ogg")
	if err != nil {
		return "", fmt.Errorf("%w: creating form file: %v", ErrClassifierFailure, err)
	}
	if _, err = part.Write(audio); err != nil {
		return "", fmt.Errorf("%w: writing audio: %v", ErrClassifierFailure, err)
	}
	if err = writer.WriteField("model", w.cfg.Model); err != nil {
		return "", fmt.Errorf("%w: writing model field: %v", ErrClassifierFailure, err)
	}
	if w.cfg.Language != "" {
		if err = writer.WriteField("language", w.cfg.Language); err != nil {
			return "", fmt.Errorf("%w: writing language field: %v", ErrClassifierFailure, err)
		}
	}
	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("%w: closing writer: %v", ErrClassifierFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.BaseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrClassifierFailure, err)
	}
	req.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", ErrClassifierFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorPreview))
		return "", fmt.Errorf("%w: transcription API error %d: %s", ErrClassifierFailure, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result transcriptionResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrClassifierFailure, err)
	}

	text := strings.TrimSpace(result.Text)
	w.logger.Debug().Int("audio_bytes", len(audio)).Int("text_len", len(text)).Msg("Voice note transcribed")
	return text, nil
}

package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultModel    = "gpt-4o-mini"
	DefaultTimeout  = 30 * time.Second
	maxErrorPreview = 512
)

const systemPrompt = `You are a command parser for a PC control system.

You MUST return ONLY valid JSON of the form {"action": "...", "argument": "..."}.
You MUST choose one of the allowed actions.

Allowed actions:
- wake: turn the computer on
- shutdown: turn the computer off
- sleep: suspend the computer
- status: is the computer on
- ping: is the control agent alive
- clipboard: recent clipboard contents
- screenshot: capture the screen
- stats: cpu, memory and disk usage
- volume: audio volume; argument is "up", "down", "mute", "get" or a number 0-100
- unknown: anything else

Examples:
User: "turn on my computer"
Response: {"action":"wake"}

User: "shut it down"
Response: {"action":"shutdown"}

User: "are you alive?"
Response: {"action":"ping"}

User: "make it louder"
Response: {"action":"volume","argument":"up"}`

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func (c *OpenAIConfig) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
}

// OpenAIClassifier classifies text with a chat completion in JSON mode.
// Calls are not retried.
type OpenAIClassifier struct {
	cfg        OpenAIConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewOpenAIClassifier(cfg OpenAIConfig, logger zerolog.Logger) *OpenAIClassifier {
	cfg.setDefaults()
	return &OpenAIClassifier{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type parsedAction struct {
	Action   string `json:"action"`
	Argument any    `json:"argument"`
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature:    0,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("%w: marshaling request: %v", ErrClassifierFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: creating request: %v", ErrClassifierFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: sending request: %v", ErrClassifierFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorPreview))
		return Result{}, fmt.Errorf("%w: chat API error %d: %s", ErrClassifierFailure, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("%w: decoding response: %v", ErrClassifierFailure, err)
	}
	if len(result.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: empty response", ErrClassifierFailure)
	}

	content := stripCodeFence(result.Choices[0].Message.Content)
	var parsed parsedAction
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: parsing action JSON (%s): %v", ErrClassifierFailure, content, err)
	}

	out := Result{
		Action:   strings.ToLower(strings.TrimSpace(parsed.Action)),
		Argument: argumentString(parsed.Argument),
	}
	c.logger.Debug().
		Str("action", out.Action).
		Str("argument", out.Argument).
		Dur("elapsed", time.Since(start)).
		Msg("Text classified")
	return out, nil
}

func argumentString(v any) string {
	switch arg := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(arg)
	case float64:
		return strconv.FormatFloat(arg, 'f', -1, 64)
	default:
		return fmt.Sprint(arg)
	}
}

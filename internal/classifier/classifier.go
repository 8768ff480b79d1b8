// Package classifier turns free-form user text and voice notes into an
// action name. The result is untrusted; callers must validate it.
package classifier

import (
	"context"
	"errors"
	"strings"
)

// ErrClassifierFailure covers every failure of the text or speech service.
var ErrClassifierFailure = errors.New("classifier failure")

// Result is the classifier's raw answer.
type Result struct {
	Action   string // Free-form; may name an action that does not exist
	Argument string // Optional, e.g. "up" or "30" for volume
}

// Classifier maps text to a Result.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// Transcriber maps recorded audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Disabled is used when no language service is configured. Every text
// classifies as "unknown" and voice notes are rejected.
type Disabled struct{}

func (Disabled) Classify(ctx context.Context, text string) (Result, error) {
	return Result{Action: "unknown"}, nil
}

func (Disabled) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return "", errors.Join(ErrClassifierFailure, errors.New("speech recognition is not configured"))
}

// stripCodeFence removes a markdown code fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

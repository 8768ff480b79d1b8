package system

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnsupportedPlatform is returned when an operation has no implementation for the host OS.
var ErrUnsupportedPlatform = errors.New("operation not supported on this platform")

// CommandRunner executes OS commands.
type CommandRunner interface {
	// Output runs the command to completion and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Dispatch starts the command without waiting for it to exit.
	Dispatch(name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	logger zerolog.Logger
}

// NewExecRunner creates an ExecRunner.
func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Output runs name with args and returns stdout. On failure stderr is folded into the error.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.logger.Debug().Str("command", name).Strs("args", args).Msg("Executing command")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s timed out: %w", name, ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// Dispatch starts name with args and reaps it in the background, logging its exit status.
func (r *ExecRunner) Dispatch(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	r.logger.Info().Str("command", name).Strs("args", args).Int("pid", cmd.Process.Pid).Msg("Command dispatched")
	go func() {
		if err := cmd.Wait(); err != nil {
			r.logger.Error().Err(err).Str("command", name).Msg("Dispatched command exited with error")
			return
		}
		r.logger.Debug().Str("command", name).Msg("Dispatched command finished")
	}()
	return nil
}

package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/pcremote/internal/clipboard"
	"github.com/benmeehan/pcremote/internal/system"
	"github.com/rs/zerolog"
)

// ClipboardService samples the OS clipboard on a fixed interval and records
// changes into the shared history. It is the history's only writer.
type ClipboardService struct {
	Interval time.Duration
	Reader   system.ClipboardReader
	History  *clipboard.History
	Logger   zerolog.Logger

	lastObserved string
	lastErr      string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClipboardService initializes a new ClipboardService.
func NewClipboardService(interval time.Duration, reader system.ClipboardReader, history *clipboard.History, logger zerolog.Logger) *ClipboardService {
	return &ClipboardService{
		Interval: interval,
		Reader:   reader,
		History:  history,
		Logger:   logger,
	}
}

// Start launches the sampling loop in a separate goroutine.
func (c *ClipboardService) Start() error {
	if c.ctx != nil {
		c.Logger.Warn().Msg("ClipboardService is already running")
		return errors.New("clipboard service is already running")
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runSamplingLoop()
	}()

	c.Logger.Info().Dur("interval", c.Interval).Msg("ClipboardService started successfully")
	return nil
}

// Stop ends the sampling loop and waits for it to exit.
func (c *ClipboardService) Stop() error {
	if c.ctx == nil {
		c.Logger.Warn().Msg("ClipboardService is not running")
		return errors.New("clipboard service is not running")
	}

	c.cancel()
	c.wg.Wait()

	c.ctx = nil
	c.cancel = nil

	c.Logger.Info().Msg("ClipboardService stopped successfully")
	return nil
}

func (c *ClipboardService) runSamplingLoop() {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sample()
		case <-c.ctx.Done():
			c.Logger.Info().Msg("ClipboardService stopping gracefully")
			return
		}
	}
}

// Sample performs a single clipboard read. Read failures are logged and
// swallowed; the same failure is only logged at error level once in a row.
func (c *ClipboardService) Sample() {
	current, err := c.Reader.ReadAll()
	if err != nil {
		if msg := err.Error(); msg != c.lastErr {
			c.lastErr = msg
			c.Logger.Error().Err(err).Msg("Clipboard read failed")
		} else {
			c.Logger.Debug().Err(err).Msg("Clipboard read failed")
		}
		return
	}
	c.lastErr = ""

	if current == "" || current == c.lastObserved {
		return
	}
	c.lastObserved = current

	if c.History.Push(current) {
		c.Logger.Info().Str("preview", preview(current, 20)).Msg("New clipboard item detected")
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

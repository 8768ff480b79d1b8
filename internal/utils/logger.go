package utils

import (
	"io"
	"time"

	"github.com/benmeehan/pcremote/internal/constants"
	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. An empty level means info.
func NewLogger(cfg LogConfig, out io.Writer, component string) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), err
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Format == constants.LogFormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger(), nil
}

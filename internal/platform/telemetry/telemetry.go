// Package telemetry builds the structured logger shared by the command
// line tool and the worker pool.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// LoggerOptions tunes the run logger.
type LoggerOptions struct {
	Level   string // trace, debug, info, warn, error; empty means info
	Console bool   // force human-readable output
	Out     io.Writer
}

// NewLogger builds a zerolog logger. Output is JSON lines unless the
// destination is a terminal or Console is set.
func NewLogger(opts LoggerOptions) (zerolog.Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	console := opts.Console
	if f, ok := out.(*os.File); ok && !console {
		console = isatty.IsTerminal(f.Fd())
	}
	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

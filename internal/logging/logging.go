// Package logging builds the zerolog logger used across the viewer. Output
// is a human console format on a TTY and JSON otherwise, so piping the
// server's output stays machine-readable.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Init creates the process logger and installs it as the zerolog global so
// package-level log calls share the same configuration.
func Init(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(selectOutput()).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// NewWithWriter builds a logger against a custom writer, for tests.
func NewWithWriter(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return os.Stderr
}

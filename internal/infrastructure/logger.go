package infrastructure

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/rs/zerolog"
)

type (
	// Logger wraps zerolog to keep the rest of the codebase decoupled from
	// the concrete logging library.
	Logger struct {
		*zerolog.Logger
	}
)

// New creates a service logger from the logging configuration.
func New(cfg config.LoggingConfig) Logger {
	var out io.Writer = os.Stdout

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()

	return Logger{Logger: &logger}
}

// NewTestLogger returns a logger that discards all output.
func NewTestLogger() Logger {
	nop := zerolog.Nop()

	return Logger{Logger: &nop}
}

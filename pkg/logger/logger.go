// Package logger builds the service-wide zerolog logger. Components derive
// their own sub-loggers from it via With().Str("component", ...).
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error; anything else falls back to info
	Pretty bool   // human-readable console output for dev mode
}

// New creates the root structured logger.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Str("service", "genui").
		Logger()
}

// SetGlobalLogger replaces the zerolog package-level logger so code without
// an injected logger still emits through the same sink.
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}

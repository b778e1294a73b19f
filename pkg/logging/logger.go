package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Format names accepted by the process configuration.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// Config defines logging configuration
type Config struct {
	// Level is the logging level (debug, info, warn, error)
	Level string
	// Pretty renders human-readable console output instead of JSON
	Pretty bool
	// Output is where logs are written (defaults to os.Stdout)
	Output io.Writer
}

// Setup configures the global logger and returns it. An unknown level falls
// back to info; a bad log level should not keep the process from starting.
func Setup(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	zerolog.SetGlobalLevel(level)

	return logger
}

// FromContext returns the logger attached to the context by zerolog's
// WithContext, falling back to the global logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return *logger
	}
	return log.Logger
}

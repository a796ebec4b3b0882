// Package logging builds the zerolog logger shared by the CLI, the HTTP
// server and the storage layer.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/balkashynov/tick/internal/config"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
}

// New returns a logger writing to w. JSON is used everywhere except the
// local env, which gets the human-readable console writer.
func New(w io.Writer, env, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch env {
	case config.EnvDev, config.EnvProd:
	case config.EnvLocal:
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		w = consoleWriter
	default:
		return zerolog.Nop(), fmt.Errorf("unknown env: %s", env)
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger(), nil
}

// FromConfig builds the application logger on stderr.
func FromConfig(cfg *config.Config) (zerolog.Logger, error) {
	return New(os.Stderr, cfg.Env, cfg.LogLevel)
}

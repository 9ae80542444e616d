// Package logging builds the process logger. The terminal belongs to the
// UI, so logs go to a file unless stderr is asked for explicitly.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mousephone/client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "MOUSEPHONE_LOG_LEVEL"

// Stderr is the log.file value that selects standard error.
const Stderr = "-"

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// New returns a logger tagged with app, plus the closer for its output.
func New(app string, cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	levelName := cfg.Level
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		levelName = env
	}
	level, err := ParseLevel(levelName)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	var out io.WriteCloser
	switch cfg.File {
	case "", Stderr:
		out = nopCloser{os.Stderr}
	default:
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    cfg.File != "" && cfg.File != Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger, out, nil
}

// ParseLevel accepts zerolog level names; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

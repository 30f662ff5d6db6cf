// Package logging configures zerolog output for the process. All
// diagnostics go to stderr; stdout is reserved for predictions.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // console or json
}

// New returns a logger writing to stderr. Unknown levels fall back to
// info.
func New(cfg Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

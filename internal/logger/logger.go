package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger settings
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console or json
}

// New creates a zerolog logger writing to out
func New(cfg Config, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}

	switch cfg.Format {
	case "json":
	case "console", "":
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.TimeOnly,
			NoColor:    true,
		}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

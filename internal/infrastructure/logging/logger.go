package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a logger
type Options struct {
	Level  string
	Format string
}

// New builds a logger writing to w, which must not be the protocol stream.
// Format is "json" (default) or "console".
func New(opts Options, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	switch strings.ToLower(opts.Format) {
	case "", "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", opts.Format)
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("component", "sandtimer-mcp").
		Logger(), nil
}

// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at stderr. Format "auto" writes console
// output on a terminal and JSON otherwise.
func Setup(level, format string) error {
	return setup(os.Stderr, level, format)
}

func setup(out *os.File, level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := false
	switch format {
	case "console":
		console = true
	case "json":
	case "", "auto":
		console = isTerminal(out)
	default:
		return fmt.Errorf("invalid log format %q", format)
	}

	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(writer(out, console)).With().Timestamp().Logger()
	return nil
}

func writer(out io.Writer, console bool) io.Writer {
	if !console {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

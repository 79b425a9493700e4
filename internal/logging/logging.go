// Package logging configures the process-wide zerolog logger. The TUI
// owns stdout, so logs go to a file (LOG_FILE) or are discarded.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init installs the global logger. Level comes from LOG_LEVEL, output
// from LOG_FILE (capped at maxMB megabytes). With no file configured
// everything is discarded.
func Init(file string, maxMB int) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var output io.Writer = io.Discard
	if file != "" {
		if w, err := newSizeLimitedWriter(file, maxMB); err == nil {
			output = w
		}
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// Package cli implements the chaoscrypt command-line interface.
//
// Commands load an image, split it into color channels, scramble or restore
// every channel concurrently through the pipeline package, and write the
// merged result. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - encrypt, decrypt: apply the Arnold cat map or the Baker map to an image
//   - key: print the Baker secret key generated for a width
//   - params: print the pseudorandom parameters derived from a seed
//   - cache: manage the secret key cache
//   - config: inspect the configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Without it,
// the level comes from the config file (info by default).
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Encrypted 512x512 image (41ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

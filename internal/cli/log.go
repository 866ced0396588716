// Package cli implements the ductwork command-line interface.
//
// The commands follow the life of a drawing file: create it, place the
// inlet and outlets, build and size the network, adjust runs by hand, and
// render the result. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - size, supply: one-off duct sizing and room airflow calculations
//   - new, show, terminal: create and edit drawing files
//   - build, move, edit: route, size and adjust the duct network
//   - render: write SVG, PNG, PDF, Graphviz or JSON output
//   - store, cache, config, serve: library, cache and server management
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// shows cache hits and pipeline timings.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at debug level along with the elapsed time since progress
// was created, rounded to the millisecond.
// Example output: "Rendered 3 files (12ms)"
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// Package cli implements the shadergraph command-line interface.
//
// The commands load graph files (.json or .hcl) against a node type registry,
// generate shader source, render node-link diagrams and serve the HTTP API.
// The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - build: Generate shader source for one or more graphs
//   - check: Validate a graph and report unresolved generic types
//   - sort: Print the execution order of a graph
//   - render: Export DOT, SVG or PNG diagrams
//   - types: List, show or interactively browse node types
//   - decl: Parse or canonically format declaration files
//   - serve: Run the HTTP API
//   - cache: Manage the build cache
//
// # Configuration
//
// Settings are read from $XDG_CONFIG_HOME/shadergraph/config.toml (or
// --config). Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// also attached to the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w with centisecond timestamps
// ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a batch took, e.g. "Built 3 graphs (1.234s)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the command logger, or log.Default when the
// context carries none (completion functions run before PersistentPreRunE).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// Package cli implements the morphology-mcp command-line interface.
//
// The root command runs the MCP server over stdio; subcommands manage the
// YAML configuration file. The CLI is built using cobra and logs through
// charmbracelet/log to stderr, since stdout carries the protocol.
//
// # Commands
//
//   - serve: Run the MCP server (also the default action)
//   - config init: Write a default configuration file
//   - config show: Print the effective configuration
//
// # Logging
//
// The level is chosen from, in order: --verbose (-v), the
// MORPH_MCP_LOG_LEVEL environment variable, and logging.level in the
// configuration file. Loggers are passed through context.Context so the
// morphology engine logs with the same settings.
package cli

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/morphology-mcp/internal/config"
)

// logLevelEnv overrides the configured log level when set.
const logLevelEnv = "MORPH_MCP_LOG_LEVEL"

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "morphology-mcp",
	})
}

// resolveLevel picks the log level: verbose wins, then the environment,
// then the configuration file.
func resolveLevel(verbose bool, cfg *config.Config) (log.Level, error) {
	if verbose {
		return log.DebugLevel, nil
	}
	if env := os.Getenv(logLevelEnv); env != "" {
		return config.Logging{Level: env}.ParseLevel()
	}
	return cfg.Logging.ParseLevel()
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "server stopped (1m2.345s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

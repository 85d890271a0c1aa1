// Package logging builds the diagnostic logger shared by all commands.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

const prefix = "includefix"

// New returns a logger writing to w at info level, or debug level when verbose is set.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportTimestamp: false,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

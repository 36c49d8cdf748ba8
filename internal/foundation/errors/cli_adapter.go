package errors

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// CLIErrorAdapter renders errors for the command line.
type CLIErrorAdapter struct {
	verbose bool
}

// NewCLIErrorAdapter creates a CLI error adapter.
func NewCLIErrorAdapter(verbose bool) *CLIErrorAdapter {
	return &CLIErrorAdapter{verbose: verbose}
}

// ExitCodeFor returns 0 for nil and 1 for every failure.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// FormatError renders "Error: <message>".
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose && classified.Cause() != nil {
		return fmt.Sprintf("Error: %s: %v", classified.Message(), classified.Cause())
	}
	return "Error: " + classified.Message()
}

// Report writes the formatted error to w and returns the exit code.
func (a *CLIErrorAdapter) Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if a.verbose {
		event := log.Debug().Err(err)
		if classified, ok := AsClassified(err); ok {
			event = event.Str("category", string(classified.Category())).Str("severity", string(classified.Severity()))
		}
		event.Msg("Command failed")
	}
	_, _ = fmt.Fprintln(w, a.FormatError(err))
	return a.ExitCodeFor(err)
}

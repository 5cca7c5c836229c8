// Package report prints user facing messages for the CLI
package report

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"

	"github.com/kotleni/cats/internal/apperr"
)

// Info prints an informational line.
func Info(format string, args ...any) {
	pterm.Info.Println(fmt.Sprintf(format, args...))
}

// Success prints a confirmation line.
func Success(format string, args ...any) {
	pterm.Success.Println(fmt.Sprintf(format, args...))
}

// Error prints err with a hint that depends on its kind.
func Error(err error) {
	pterm.Error.Println(err)

	if hint := Hint(err); hint != "" {
		pterm.Info.Println(hint)
	}
}

// Hint returns a short suggestion for resolving err, if one applies.
func Hint(err error) string {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return ""
	}

	switch appErr.Kind {
	case apperr.InvalidTransition:
		return "run 'cats status' to see the current session"
	case apperr.NotFound:
		return "run 'cats list' to see the saved timers"
	case apperr.Persistence:
		return "the store is unavailable, check the log file for details"
	default:
		return ""
	}
}

// Fatal prints err and quits the running bubbletea program.
func Fatal(err error) tea.Cmd {
	pterm.Error.Println(err)
	return tea.Quit
}

// Quit prints err and exits with status 1.
func Quit(err error) {
	Error(err)
	os.Exit(1)
}

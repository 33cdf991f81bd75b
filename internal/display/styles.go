package display

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for the capture trace.
var (
	TimeColor    = lipgloss.Color("11") // yellow - wall clock column
	TimingColor  = lipgloss.Color("10") // green - relative time and delta
	CommandColor = lipgloss.Color("15") // white - decoded command text
	ErrorColor   = lipgloss.Color("9")  // red - bus errors
)

var (
	timeStyle    = lipgloss.NewStyle().Foreground(TimeColor)
	timingStyle  = lipgloss.NewStyle().Foreground(TimingColor)
	commandStyle = lipgloss.NewStyle().Foreground(CommandColor)
	errorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
)

// stdoutIsTerminal reports whether stdout is attached to a terminal.
// Piped output gets plain text so the trace stays grep-able.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

package logging

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/gbsl/edsync/internal/application/ports"
	coreports "github.com/gbsl/edsync/internal/core/ports"
)

var (
	infoLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	warningLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB454"))

	errorLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87"))
)

// ConsoleNotifier prints user-visible notifications and mirrors them into the log
type ConsoleNotifier struct {
	mu     sync.Mutex
	out    io.Writer
	sink   func(message string, severity coreports.Severity)
	logger ports.LoggingGateway
}

// NewConsoleNotifier creates a notifier writing to out. logger may be nil.
func NewConsoleNotifier(out io.Writer, logger ports.LoggingGateway) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, logger: logger}
}

// Report implements ports.Notifier
func (n *ConsoleNotifier) Report(message string, severity coreports.Severity) {
	n.mu.Lock()
	if n.sink != nil {
		n.sink(message, severity)
	} else {
		fmt.Fprintf(n.out, "%s %s\n", label(severity), message)
	}
	n.mu.Unlock()

	if n.logger == nil {
		return
	}
	fields := map[string]interface{}{"notification": true}
	switch severity {
	case coreports.SeverityError:
		n.logger.Log(ports.LogLevelError, message, fields)
	case coreports.SeverityWarning:
		n.logger.Log(ports.LogLevelWarn, message, fields)
	default:
		n.logger.Log(ports.LogLevelInfo, message, fields)
	}
}

// Capture hands notices to sink instead of the console until restore is
// called. Notices are still mirrored into the log.
func (n *ConsoleNotifier) Capture(sink func(message string, severity coreports.Severity)) (restore func()) {
	n.mu.Lock()
	previous := n.sink
	n.sink = sink
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		n.sink = previous
		n.mu.Unlock()
	}
}

func label(severity coreports.Severity) string {
	switch severity {
	case coreports.SeverityError:
		return errorLabel.Render("error")
	case coreports.SeverityWarning:
		return warningLabel.Render("warning")
	default:
		return infoLabel.Render("info")
	}
}

var _ coreports.Notifier = (*ConsoleNotifier)(nil)

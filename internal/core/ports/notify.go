package ports

// Severity of a user-visible notification
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notifier delivers user-visible messages
type Notifier interface {
	Report(message string, severity Severity)
}

// EventLogger is the structured log sink used by core components
type EventLogger interface {
	LogDebug(message string, fields map[string]interface{})
	LogError(err error, message string, fields map[string]interface{})
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) LogDebug(string, map[string]interface{})        {}
func (NopLogger) LogError(error, string, map[string]interface{}) {}

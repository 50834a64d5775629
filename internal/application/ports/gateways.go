package ports

// LoggingGateway defines the interface for logging operations
type LoggingGateway interface {
	// Log logs a message with the specified level
	Log(level LogLevel, message string, fields map[string]interface{})

	// LogError logs an error
	LogError(err error, message string, fields map[string]interface{})

	// LogInfo logs an informational message
	LogInfo(message string, fields map[string]interface{})

	// LogDebug logs a debug message
	LogDebug(message string, fields map[string]interface{})

	// LogWarning logs a warning
	LogWarning(message string, fields map[string]interface{})

	// SetLogLevel sets the logging level
	SetLogLevel(level LogLevel)

	// GetLogLevel returns the current logging level
	GetLogLevel() LogLevel
}

// LogLevel defines the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ParseLogLevel converts a level name, defaulting to info
func ParseLogLevel(name string) LogLevel {
	switch LogLevel(name) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return LogLevel(name)
	case "warning":
		return LogLevelWarn
	default:
		return LogLevelInfo
	}
}

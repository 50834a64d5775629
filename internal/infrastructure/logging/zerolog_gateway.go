package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gbsl/edsync/internal/application/ports"
)

// ZerologGateway implements ports.LoggingGateway on zerolog
type ZerologGateway struct {
	mu    sync.RWMutex
	base  zerolog.Logger
	zlog  zerolog.Logger
	level ports.LogLevel
}

// NewZerologGateway creates a gateway writing to out. format is "console" or "json".
func NewZerologGateway(out io.Writer, format string, level ports.LogLevel) *ZerologGateway {
	if out == nil {
		out = os.Stderr
	}
	if format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    !isTerminal(out),
		}
	}

	g := &ZerologGateway{
		base: zerolog.New(out).With().Timestamp().Str("app", "edsync").Logger(),
	}
	g.SetLogLevel(level)
	return g
}

// Log logs a message with the specified level
func (g *ZerologGateway) Log(level ports.LogLevel, message string, fields map[string]interface{}) {
	logger := g.logger()
	var event *zerolog.Event
	switch level {
	case ports.LogLevelDebug:
		event = logger.Debug()
	case ports.LogLevelWarn:
		event = logger.Warn()
	case ports.LogLevelError:
		event = logger.Error()
	default:
		event = logger.Info()
	}
	event.Fields(fields).Msg(message)
}

// LogError logs an error
func (g *ZerologGateway) LogError(err error, message string, fields map[string]interface{}) {
	logger := g.logger()
	logger.Error().Err(err).Fields(fields).Msg(message)
}

// LogInfo logs an informational message
func (g *ZerologGateway) LogInfo(message string, fields map[string]interface{}) {
	g.Log(ports.LogLevelInfo, message, fields)
}

// LogDebug logs a debug message
func (g *ZerologGateway) LogDebug(message string, fields map[string]interface{}) {
	g.Log(ports.LogLevelDebug, message, fields)
}

// LogWarning logs a warning
func (g *ZerologGateway) LogWarning(message string, fields map[string]interface{}) {
	g.Log(ports.LogLevelWarn, message, fields)
}

// SetLogLevel sets the logging level
func (g *ZerologGateway) SetLogLevel(level ports.LogLevel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.level = level
	g.zlog = g.base.Level(toZerolog(level))
}

// GetLogLevel returns the current logging level
func (g *ZerologGateway) GetLogLevel() ports.LogLevel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.level
}

func (g *ZerologGateway) logger() zerolog.Logger {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.zlog
}

func toZerolog(level ports.LogLevel) zerolog.Level {
	switch level {
	case ports.LogLevelDebug:
		return zerolog.DebugLevel
	case ports.LogLevelWarn:
		return zerolog.WarnLevel
	case ports.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

var _ ports.LoggingGateway = (*ZerologGateway)(nil)

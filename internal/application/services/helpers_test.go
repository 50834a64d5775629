package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/core/packages"
)

// MockPackageBus is a testify mock of ports.PackageBus
type MockPackageBus struct {
	mock.Mock
}

func (m *MockPackageBus) IsInterpreterInstalled(ctx context.Context) (packages.InterpreterStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(packages.InterpreterStatus), args.Error(1)
}

func (m *MockPackageBus) ListInstalledPackages(ctx context.Context) (packages.List, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(packages.List), args.Error(1)
}

func (m *MockPackageBus) InstallOrUninstall(ctx context.Context, argString string) error {
	args := m.Called(ctx, argString)
	return args.Error(0)
}

type logEntry struct {
	Level   ports.LogLevel
	Message string
	Err     error
}

// recordingLogger captures log calls for assertions
type recordingLogger struct {
	mu      sync.Mutex
	level   ports.LogLevel
	entries []logEntry
}

func (l *recordingLogger) Log(level ports.LogLevel, message string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{Level: level, Message: message})
}

func (l *recordingLogger) LogError(err error, message string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{Level: ports.LogLevelError, Message: message, Err: err})
}

func (l *recordingLogger) LogInfo(message string, fields map[string]interface{}) {
	l.Log(ports.LogLevelInfo, message, fields)
}

func (l *recordingLogger) LogDebug(message string, fields map[string]interface{}) {
	l.Log(ports.LogLevelDebug, message, fields)
}

func (l *recordingLogger) LogWarning(message string, fields map[string]interface{}) {
	l.Log(ports.LogLevelWarn, message, fields)
}

func (l *recordingLogger) SetLogLevel(level ports.LogLevel) { l.level = level }

func (l *recordingLogger) GetLogLevel() ports.LogLevel { return l.level }

func (l *recordingLogger) count(level ports.LogLevel) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

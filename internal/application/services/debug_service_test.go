package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDebugService_Launch(t *testing.T) {
	service := NewDebugService()

	tests := []struct {
		name        string
		stopOnEntry bool
		expectName  string
	}{
		{name: "CurrentFile", stopOnEntry: false, expectName: LaunchCurrentFile},
		{name: "StopAtEntry", stopOnEntry: true, expectName: LaunchStopAtEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := service.Launch("/work/main.py", tt.stopOnEntry)

			assert.Equal(t, "python", cfg.Type)
			assert.Equal(t, "launch", cfg.Request)
			assert.Equal(t, tt.expectName, cfg.Name)
			assert.Equal(t, "/work/main.py", cfg.Program)
			assert.Equal(t, "integratedTerminal", cfg.Console)
			assert.Equal(t, tt.stopOnEntry, cfg.StopOnEntry)
		})
	}
}

func TestDebugService_WriteLaunch_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vscode", "launch.json")
	service := NewDebugService()

	require.NoError(t, service.WriteLaunch(path, service.Launch("a.py", false)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0.2.0", gjson.GetBytes(data, "version").String())
	assert.Equal(t, int64(1), gjson.GetBytes(data, "configurations.#").Int())
	assert.Equal(t, "a.py", gjson.GetBytes(data, "configurations.0.program").String())
}

func TestDebugService_WriteLaunch_ReplacesByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.json")
	existing := `{
  "version": "0.2.0",
  "configurations": [
    {"name": "Attach", "type": "python", "request": "attach"},
    {"name": "Python: Current File", "type": "python", "request": "launch", "program": "old.py"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))
	service := NewDebugService()

	require.NoError(t, service.WriteLaunch(path, service.Launch("new.py", false)))
	require.NoError(t, service.WriteLaunch(path, service.Launch("new.py", true)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), gjson.GetBytes(data, "configurations.#").Int())
	assert.Equal(t, "Attach", gjson.GetBytes(data, "configurations.0.name").String())
	assert.Equal(t, "new.py", gjson.GetBytes(data, "configurations.1.program").String())
	assert.True(t, gjson.GetBytes(data, "configurations.2.stopOnEntry").Bool())
}

func TestDebugService_WriteLaunch_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"configurations": {}}`), 0o644))

	err := NewDebugService().WriteLaunch(path, NewDebugService().Launch("a.py", false))
	assert.Error(t, err)
}

func TestDebugService_WriteLaunch_AcceptsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launch.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
    // Use IntelliSense to learn about possible attributes.
    "version": "0.2.0",
    "configurations": [
        {"name": "Attach", "type": "python", "request": "attach",},
    ],
}`), 0o644))
	service := NewDebugService()

	require.NoError(t, service.WriteLaunch(path, service.Launch("b.py", false)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data))
	assert.Equal(t, int64(2), gjson.GetBytes(data, "configurations.#").Int())
	assert.Equal(t, "Attach", gjson.GetBytes(data, "configurations.0.name").String())
	assert.Equal(t, "b.py", gjson.GetBytes(data, "configurations.1.program").String())
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/application/services"
	"github.com/gbsl/edsync/internal/core/packages"
	"github.com/gbsl/edsync/internal/core/reconcile"
	"github.com/gbsl/edsync/internal/core/settings"
	"github.com/gbsl/edsync/internal/core/testfixtures"
	"github.com/gbsl/edsync/internal/core/version"
	"github.com/gbsl/edsync/internal/infrastructure/config"
	httpinfra "github.com/gbsl/edsync/internal/infrastructure/http"
	"github.com/gbsl/edsync/internal/infrastructure/logging"
	"github.com/gbsl/edsync/internal/infrastructure/metrics"
	"github.com/gbsl/edsync/internal/infrastructure/settingsfile"
	"github.com/gbsl/edsync/internal/infrastructure/state"
)

var testKeys = ports.KeysConfig{
	RemoteLocation:       "edsync.remoteConfigurationUrl",
	IgnoreConfiguration:  "edsync.ignoreConfiguration",
	IgnorePackageInstall: "edsync.ignorePackageInstallation",
}

type fakePackageBus struct {
	mu        sync.Mutex
	installed packages.List
	calls     []string
}

func (b *fakePackageBus) IsInterpreterInstalled(ctx context.Context) (packages.InterpreterStatus, error) {
	return packages.InterpreterStatus{Installed: true, Version: "3.12.1"}, nil
}

func (b *fakePackageBus) ListInstalledPackages(ctx context.Context) (packages.List, error) {
	return b.installed, nil
}

func (b *fakePackageBus) InstallOrUninstall(ctx context.Context, args string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, args)
	return nil
}

type testEnv struct {
	dir       string
	settings  string
	container *CLIContainer
	store     *settingsfile.Store
	bus       *fakePackageBus
	notices   *bytes.Buffer
}

// newTestEnv writes a local settings file pointing at a remote document on disk
func newTestEnv(t *testing.T, local, remote string) *testEnv {
	t.Helper()
	dir := t.TempDir()

	remotePath := filepath.Join(dir, "remote.json")
	require.NoError(t, os.WriteFile(remotePath, []byte(remote), 0644))

	settingsPath := filepath.Join(dir, "settings.json")
	localDoc := fmt.Sprintf(`{%s, %q: %q}`, local, testKeys.RemoteLocation, remotePath)
	require.NoError(t, os.WriteFile(settingsPath, []byte(localDoc), 0644))

	logger := logging.NewZerologGateway(io.Discard, "json", ports.LogLevelError)
	notices := &bytes.Buffer{}
	notifier := logging.NewConsoleNotifier(notices, logger)
	store := settingsfile.NewStore(settingsPath, "")
	recorder := metrics.NewRecorder()

	source := reconcile.NewSource(httpinfra.FileFetcher{}, notifier, logger, recorder)
	engine := reconcile.NewEngine(reconcile.WithLogger(logger), reconcile.WithRecorder(recorder))
	gate := version.NewGate(testfixtures.NewMemoryStateStore(nil), state.StaticVersion("1.3.0"), "")

	bus := &fakePackageBus{installed: packages.List{{Package: "numpy", Version: "1.26.0"}}}
	configure := services.NewConfigureService(store, source, engine, gate, notifier, logger, testKeys, nil)
	packageService := services.NewPackageService(bus, store, logger, testKeys.IgnorePackageInstall, []string{"pylint"}, nil)

	repo := config.NewViperConfigRepository(filepath.Join(dir, "config.yaml"))
	cfg := repo.LoadDefault()
	cfg.Settings.UserPath = settingsPath

	return &testEnv{
		dir:      dir,
		settings: settingsPath,
		store:    store,
		bus:      bus,
		notices:  notices,
		container: &CLIContainer{
			Config:     cfg,
			ConfigRepo: repo,
			Logger:     logger,
			Configure:  configure,
			Packages:   packageService,
			Debug:      services.NewDebugService(),
			Activation: services.NewActivationService(packageService, configure),
			Settings:   store,
			Metrics:    recorder,
			Notices:    notifier,
		},
	}
}

func (e *testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(e.container)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const (
	localTabSize = `"editor.tabSize": 2`
	remoteDoc    = `{"editor.tabSize": 4, "editor.formatOnSave": true}`
)

func TestConfigureRun_AppliesRemoteSettings(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	out, err := env.execute(t, "configure", "run")
	require.NoError(t, err)

	assert.Contains(t, out, "editor.tabSize = 4")
	assert.Contains(t, out, "editor.formatOnSave = true")
	assert.Contains(t, out, reloadHint)
	assert.Contains(t, env.notices.String(), "Configuration finished: 2 setting(s) updated")

	v, ok := env.store.Get("editor.tabSize")
	require.True(t, ok)
	assert.True(t, settings.Equal(4, v))
}

func TestConfigureRun_JSONOutput(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	out, err := env.execute(t, "configure", "run", "-o", "json")
	require.NoError(t, err)

	var report services.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, reconcile.TriggerCommand, report.Trigger)
	assert.True(t, report.ReloadRecommended)
	assert.Equal(t, []string{"editor.tabSize", "editor.formatOnSave"}, report.Outcomes.Names())
}

func TestConfigureDiff(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	out, err := env.execute(t, "configure", "diff", "--output", "json")
	require.NoError(t, err)

	var changes []reconcile.Change
	require.NoError(t, json.Unmarshal([]byte(out), &changes))
	require.Len(t, changes, 2)
	assert.Equal(t, "editor.tabSize", changes[0].Key)
	assert.True(t, changes[0].Present)
	assert.Equal(t, "editor.formatOnSave", changes[1].Key)
	assert.False(t, changes[1].Present)

	// diff never writes
	v, _ := env.store.Get("editor.tabSize")
	assert.True(t, settings.Equal(2, v))

	out, err = env.execute(t, "configure", "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "~ editor.tabSize: 2 -> 4")
	assert.Contains(t, out, "+ editor.formatOnSave: true")
}

func TestConfigureStatus_YAML(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	out, err := env.execute(t, "configure", "status", "-o", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "current: 1.3.0")
	assert.Contains(t, out, "due: true")
	assert.Contains(t, out, "ordering: absent")
	assert.Contains(t, out, "state: not_configured")
}

func TestActivate_RunsOncePerVersion(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	out, err := env.execute(t, "activate")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed: pylint")
	assert.Contains(t, out, "editor.tabSize = 4")
	assert.Equal(t, []string{packages.InstallArgs([]string{"pylint"})}, env.bus.calls)

	out, err = env.execute(t, "activate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration skipped (up_to_date)")
}

func TestSync_IsIdempotent(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	_, err := env.execute(t, "sync")
	require.NoError(t, err)

	out, err := env.execute(t, "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "Settings already up to date")
	assert.NotContains(t, out, reloadHint)
}

func TestInvalidOutputFormat(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	for _, args := range [][]string{
		{"configure", "diff", "-o", "xml"},
		{"configure", "status", "-o", "toml"},
		{"sync", "-o", "csv"},
	} {
		_, err := env.execute(t, args...)
		assert.Error(t, err, "args %v", args)
	}
}

func TestPackagesCommands(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	t.Run("list reports missing required packages", func(t *testing.T) {
		out, err := env.execute(t, "packages", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "numpy")
		assert.Contains(t, out, "Missing required: pylint")
	})

	t.Run("install requires arguments", func(t *testing.T) {
		_, err := env.execute(t, "packages", "install")
		assert.Error(t, err)
	})

	t.Run("uninstall forwards to the bus", func(t *testing.T) {
		out, err := env.execute(t, "packages", "uninstall", "pep8")
		require.NoError(t, err)
		assert.Contains(t, out, "Uninstalled: pep8")
		assert.Contains(t, env.bus.calls, packages.UninstallArgs([]string{"pep8"}))
	})
}

func TestDebugCommands(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	out, err := env.execute(t, "debug", "current-file", "main.py")
	require.NoError(t, err)

	var cfg services.LaunchConfiguration
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, services.LaunchCurrentFile, cfg.Name)
	assert.Equal(t, "main.py", cfg.Program)
	assert.False(t, cfg.StopOnEntry)

	launch := filepath.Join(env.dir, ".vscode", "launch.json")
	out, err = env.execute(t, "debug", "stop-at-entry", "main.py", "--write", launch)
	require.NoError(t, err)
	assert.Contains(t, out, services.LaunchStopAtEntry)

	data, err := os.ReadFile(launch)
	require.NoError(t, err)
	assert.Contains(t, string(data), services.LaunchStopAtEntry)
	assert.Contains(t, string(data), `"stopOnEntry": true`)
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t, localTabSize, remoteDoc)

	out, err := env.execute(t, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(env.dir, "config.yaml"))

	out, err = env.execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, env.settings)

	out, err = env.execute(t, "config", "show", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "user_path: "+env.settings)
}

func TestOutcomeModel(t *testing.T) {
	report := services.Report{
		Trigger: reconcile.TriggerCommand,
		Outcomes: settings.Outcomes{
			{Name: "editor.tabSize", Value: 4, Updated: true},
			{Name: "files.eol", Value: "\n", Updated: false},
		},
		ReloadRecommended: true,
	}
	model := newOutcomeModel(func() reportMsg {
		return reportMsg{report: report, notices: []notice{{message: "Configuration finished: 1 setting(s) updated"}}}
	})

	assert.Contains(t, model.View(), "Applying remote configuration")

	msg := model.Init()()
	updated, _ := model.Update(msg)
	m := updated.(outcomeModel)
	require.NotNil(t, m.report)

	view := m.View()
	assert.Contains(t, view, "Updated 1 of 2 setting(s)")
	assert.Contains(t, view, "editor.tabSize = 4")
	assert.Contains(t, view, reloadHint)
	assert.Contains(t, view, "Configuration finished: 1 setting(s) updated")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, updated.(outcomeModel).selected)
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, updated.(outcomeModel).selected)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

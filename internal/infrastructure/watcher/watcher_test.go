package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/infrastructure/logging"
	"github.com/gbsl/edsync/internal/infrastructure/settingsfile"
)

func TestChangedKeys(t *testing.T) {
	tests := []struct {
		name     string
		before   map[string]interface{}
		after    map[string]interface{}
		expected []string
	}{
		{
			name:     "NoChange_ShouldBeEmpty",
			before:   map[string]interface{}{"a": 1, "b": map[string]interface{}{"x": 1, "y": 2}},
			after:    map[string]interface{}{"a": float64(1), "b": map[string]interface{}{"y": 2, "x": 1}},
			expected: nil,
		},
		{
			name:     "AddedRemovedModified_ShouldBeSorted",
			before:   map[string]interface{}{"keep": true, "gone": 1, "edit": "old"},
			after:    map[string]interface{}{"keep": true, "edit": "new", "added": 2},
			expected: []string{"added", "edit", "gone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ChangedKeys(tt.before, tt.after))
		})
	}
}

func TestSettingsWatcher_DebouncesFileEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"editor.tabSize": 2}`), 0o644))

	store := settingsfile.NewStore(path, "")
	logger := logging.NewZerologGateway(os.Stderr, "json", ports.LogLevelError)
	w, err := New(store, store.Paths(), 50*time.Millisecond, logger)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan []string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(ctx context.Context, keys []string) { changes <- keys })
	}()

	// Give the loop a moment to start before writing.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"editor.tabSize": 2, "edsync.remoteConfigurationUrl": "x"}`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`{"editor.tabSize": 4, "edsync.remoteConfigurationUrl": "x"}`), 0o644))

	seen := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for len(seen) < 2 {
		select {
		case keys := <-changes:
			for _, k := range keys {
				seen[k] = true
			}
		case <-deadline:
			t.Fatalf("change events incomplete: %v", seen)
		}
	}
	assert.Equal(t, map[string]bool{"edsync.remoteConfigurationUrl": true, "editor.tabSize": true}, seen)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestSettingsWatcher_RunAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := settingsfile.NewStore(path, "")
	logger := logging.NewZerologGateway(os.Stderr, "json", ports.LogLevelError)

	w, err := New(store, store.Paths(), time.Millisecond, logger)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.Run(context.Background(), func(context.Context, []string) {}), ErrWatcherClosed)
}

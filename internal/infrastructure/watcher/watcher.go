package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// ErrWatcherClosed is returned when Run is called on a closed watcher
var ErrWatcherClosed = errors.New("watcher is closed")

// Snapshotter provides the current effective settings
type Snapshotter interface {
	Snapshot() map[string]interface{}
}

// ChangeFunc receives the keys whose effective value changed
type ChangeFunc func(ctx context.Context, keys []string)

// SettingsWatcher turns settings file edits into debounced key-change events
type SettingsWatcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	files    map[string]bool
	source   Snapshotter
	debounce time.Duration
	logger   ports.LoggingGateway

	last   map[string]interface{}
	closed bool
}

// New watches files for changes. Parent directories are watched so that
// editors replacing the file by rename are still seen; missing directories
// are skipped.
func New(source Snapshotter, files []string, debounce time.Duration, logger ports.LoggingGateway) (*SettingsWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &SettingsWatcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		source:   source,
		debounce: debounce,
		logger:   logger,
		last:     source.Snapshot(),
	}

	dirs := map[string]bool{}
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			logger.LogWarning("settings directory not watched", map[string]interface{}{"dir": dir, "error": err.Error()})
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	return w, nil
}

// Run delivers change events until ctx is done. onChange is never called
// concurrently with itself.
func (w *SettingsWatcher) Run(ctx context.Context, onChange ChangeFunc) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.mu.Unlock()

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.LogError(err, "settings watcher error", nil)

		case <-fire:
			if keys := w.diff(); len(keys) > 0 {
				w.logger.LogDebug("settings changed", map[string]interface{}{"keys": keys})
				onChange(ctx, keys)
			}
		}
	}
}

// Close stops watching
func (w *SettingsWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

func (w *SettingsWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func (w *SettingsWatcher) diff() []string {
	current := w.source.Snapshot()
	w.mu.Lock()
	defer w.mu.Unlock()
	keys := ChangedKeys(w.last, current)
	w.last = current
	return keys
}

// ChangedKeys returns, sorted, every key added, removed or modified between
// before and after.
func ChangedKeys(before, after map[string]interface{}) []string {
	var keys []string
	for k, v := range after {
		old, ok := before[k]
		if !ok || !settings.Equal(old, v) {
			keys = append(keys, k)
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// Change is a key whose remote value is not reflected locally
type Change struct {
	Key     string      `json:"key" yaml:"key"`
	Remote  interface{} `json:"remote" yaml:"remote"`
	Local   interface{} `json:"local,omitempty" yaml:"local,omitempty"`
	Present bool        `json:"present" yaml:"present"`
}

// Engine diffs a settings document against a store and applies the difference
type Engine struct {
	scope    settings.Scope
	logger   ports.EventLogger
	recorder ports.PassRecorder
	now      func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithScope sets the scope writes are issued against (default global)
func WithScope(scope settings.Scope) Option {
	return func(e *Engine) { e.scope = scope }
}

// WithLogger sets the log sink for swallowed write errors
func WithLogger(logger ports.EventLogger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(recorder ports.PassRecorder) Option {
	return func(e *Engine) {
		if recorder != nil {
			e.recorder = recorder
		}
	}
}

// NewEngine creates a reconciliation engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scope:    settings.ScopeGlobal,
		logger:   ports.NopLogger{},
		recorder: ports.NopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Plan returns, in document order, every key that is absent from the store
// or whose normalized local value differs from the remote one. Keys only
// present locally are never considered. Stores implementing
// ports.ScopedSettingsStore are compared in the engine's write scope.
func (e *Engine) Plan(doc *settings.Document, store ports.SettingsStore) []Change {
	var changes []Change
	doc.Each(func(key string, remote interface{}) bool {
		local, ok := e.local(store, key)
		if !ok {
			changes = append(changes, Change{Key: key, Remote: remote})
			return true
		}
		if !settings.Equal(local, remote) {
			changes = append(changes, Change{Key: key, Remote: remote, Local: local, Present: true})
		}
		return true
	})
	return changes
}

func (e *Engine) local(store ports.SettingsStore, key string) (interface{}, bool) {
	if scoped, ok := store.(ports.ScopedSettingsStore); ok {
		return scoped.GetIn(key, e.scope)
	}
	if !store.Has(key) {
		return nil, false
	}
	return store.Get(key)
}

// Apply writes every change concurrently and waits for all of them. One
// outcome is produced per change, in the order of changes, whatever the
// completion order. A failed write never affects its siblings.
func (e *Engine) Apply(ctx context.Context, changes []Change, store ports.SettingsStore) settings.Outcomes {
	outcomes := make(settings.Outcomes, len(changes))
	passID := PassID(ctx)

	var g errgroup.Group
	for i, change := range changes {
		g.Go(func() error {
			err := e.set(ctx, store, change)
			outcomes[i] = settings.Outcome{Name: change.Key, Value: change.Remote, Updated: err == nil}
			if err != nil {
				e.logWriteFailure(passID, change.Key, err)
			}
			// failures are carried by the outcome
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (e *Engine) set(ctx context.Context, store ports.SettingsStore, change Change) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = settings.NewError(settings.KindStoreWrite, "set", fmt.Errorf("panic: %v", r))
		}
	}()
	return store.Set(ctx, change.Key, change.Remote, e.scope)
}

func (e *Engine) logWriteFailure(passID, key string, err error) {
	fields := map[string]interface{}{"pass_id": passID, "key": key}
	switch settings.KindOf(err) {
	case settings.KindStoreWrite:
		e.logger.LogDebug("setting write rejected", fields)
	default:
		e.logger.LogError(err, "unexpected setting write failure", fields)
	}
}

// Reconcile runs one pass: plan, then apply. Keys that already match are
// absent from the result; an empty document yields no outcomes and no store calls.
func (e *Engine) Reconcile(ctx context.Context, doc *settings.Document, store ports.SettingsStore) settings.Outcomes {
	if PassID(ctx) == "" {
		ctx = WithPassID(ctx, uuid.NewString())
	}
	start := e.now()

	var outcomes settings.Outcomes
	if !doc.IsEmpty() {
		outcomes = e.Apply(ctx, e.Plan(doc, store), store)
	}
	if outcomes == nil {
		outcomes = settings.Outcomes{}
	}

	e.recorder.ObservePass(Trigger(ctx), outcomes, e.now().Sub(start))
	e.logger.LogDebug("reconciliation pass finished", map[string]interface{}{
		"pass_id":    PassID(ctx),
		"trigger":    Trigger(ctx),
		"considered": doc.Len(),
		"attempted":  len(outcomes),
		"updated":    outcomes.UpdatedCount(),
	})
	return outcomes
}

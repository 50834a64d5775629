package ports

import (
	"context"

	"github.com/gbsl/edsync/internal/core/settings"
)

// SettingsStore is the local key/value settings view the engine reconciles against
type SettingsStore interface {
	// Has reports whether key is set in any scope
	Has(key string) bool

	// Get returns the effective value of key
	Get(key string) (interface{}, bool)

	// Set writes value to key in the given scope. Failures are KindStoreWrite errors
	// and affect only that key.
	Set(ctx context.Context, key string, value interface{}, scope settings.Scope) error
}

// ScopedSettingsStore is a SettingsStore that can also read one scope in
// isolation. The engine plans against the scope it writes to when the store
// supports it, so an override in another scope never makes a key look stale.
type ScopedSettingsStore interface {
	SettingsStore

	// GetIn returns the value of key as stored in scope alone
	GetIn(key string, scope settings.Scope) (interface{}, bool)
}

// DocumentFetcher retrieves a remote settings document. Errors carry a
// settings.Kind so callers can decide what to report.
type DocumentFetcher interface {
	Fetch(ctx context.Context, location string) (*settings.Document, error)
}

// StateStore is installation-wide durable key/value state
type StateStore interface {
	// Get returns the stored value and whether it exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error
}

// VersionSource reports the version of the running tool
type VersionSource interface {
	CurrentVersion(ctx context.Context) (string, error)
}

package testfixtures

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// DocumentBuilder provides a builder pattern for creating test documents
type DocumentBuilder struct {
	doc *settings.Document
}

// NewDocumentBuilder creates an empty DocumentBuilder
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{doc: settings.NewDocument()}
}

// With adds a setting
func (b *DocumentBuilder) With(key string, value interface{}) *DocumentBuilder {
	b.doc.Set(key, value)
	return b
}

// WithJSON adds every entry of a JSON object literal, in order
func (b *DocumentBuilder) WithJSON(object string) *DocumentBuilder {
	parsed, err := settings.ParseDocument([]byte(object))
	if err != nil {
		panic(fmt.Sprintf("testfixtures: invalid document literal: %v", err))
	}
	parsed.Each(func(key string, value interface{}) bool {
		b.doc.Set(key, value)
		return true
	})
	return b
}

// Build returns the document
func (b *DocumentBuilder) Build() *settings.Document {
	return b.doc
}

// ErrRejected is returned by FakeSettingsStore for keys configured to fail
var ErrRejected = errors.New("setting rejected")

// SetCall records one write issued against FakeSettingsStore
type SetCall struct {
	Key   string
	Value interface{}
	Scope settings.Scope
}

// FakeSettingsStore is an in-memory ports.SettingsStore with failure injection
type FakeSettingsStore struct {
	mu       sync.Mutex
	values   map[string]interface{}
	failKeys map[string]bool
	calls    []SetCall
	reads    int
}

// NewFakeSettingsStore creates a store holding initial
func NewFakeSettingsStore(initial map[string]interface{}) *FakeSettingsStore {
	values := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &FakeSettingsStore{values: values, failKeys: make(map[string]bool)}
}

// FailOn makes every write to key fail with a KindStoreWrite error
func (s *FakeSettingsStore) FailOn(keys ...string) *FakeSettingsStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.failKeys[key] = true
	}
	return s
}

// Has implements ports.SettingsStore
func (s *FakeSettingsStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	_, ok := s.values[key]
	return ok
}

// Get implements ports.SettingsStore
func (s *FakeSettingsStore) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	v, ok := s.values[key]
	return v, ok
}

// Set implements ports.SettingsStore
func (s *FakeSettingsStore) Set(ctx context.Context, key string, value interface{}, scope settings.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, SetCall{Key: key, Value: value, Scope: scope})
	if s.failKeys[key] {
		return &settings.Error{Kind: settings.KindStoreWrite, Op: "set", Key: key, Err: ErrRejected}
	}
	s.values[key] = value
	return nil
}

// Calls returns the writes issued so far
func (s *FakeSettingsStore) Calls() []SetCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SetCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Reads returns how many Has/Get calls were made
func (s *FakeSettingsStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Snapshot returns a copy of the stored values
func (s *FakeSettingsStore) Snapshot() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Notification is one message captured by RecordingNotifier
type Notification struct {
	Message  string
	Severity ports.Severity
}

// RecordingNotifier captures notifications
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []Notification
}

// Report implements ports.Notifier
func (n *RecordingNotifier) Report(message string, severity ports.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, Notification{Message: message, Severity: severity})
}

// Messages returns everything reported so far
func (n *RecordingNotifier) Messages() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.messages))
	copy(out, n.messages)
	return out
}

// MemoryStateStore is an in-memory ports.StateStore
type MemoryStateStore struct {
	mu      sync.Mutex
	values  map[string]string
	ReadErr error
}

// NewMemoryStateStore creates a state store holding initial
func NewMemoryStateStore(initial map[string]string) *MemoryStateStore {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryStateStore{values: values}
}

// Get implements ports.StateStore
func (s *MemoryStateStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return "", false, s.ReadErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements ports.StateStore
func (s *MemoryStateStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// StaticFetcher returns a fixed document or error and counts calls
type StaticFetcher struct {
	mu        sync.Mutex
	Doc       *settings.Document
	Err       error
	locations []string
}

// Fetch implements ports.DocumentFetcher
func (f *StaticFetcher) Fetch(ctx context.Context, location string) (*settings.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = append(f.locations, location)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Doc, nil
}

// Locations returns the locations fetched so far
func (f *StaticFetcher) Locations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.locations))
	copy(out, f.locations)
	return out
}

// StaticVersion is a ports.VersionSource returning a fixed version or error
type StaticVersion struct {
	Version string
	Err     error
}

// CurrentVersion implements ports.VersionSource
func (v StaticVersion) CurrentVersion(ctx context.Context) (string, error) {
	return v.Version, v.Err
}

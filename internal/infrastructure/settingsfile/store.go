package settingsfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

var prettyOptions = &pretty.Options{Width: 80, Indent: "    "}

// Store is a ports.SettingsStore over editor settings.json files. Reads see
// the workspace file layered over the global one.
type Store struct {
	mu        sync.Mutex
	global    string
	workspace string
}

// NewStore creates a store. workspace may be empty.
func NewStore(global, workspace string) *Store {
	return &Store{global: global, workspace: workspace}
}

// Path returns the file backing scope, or "" when none is configured
func (s *Store) Path(scope settings.Scope) string {
	if scope == settings.ScopeWorkspace {
		return s.workspace
	}
	return s.global
}

// Paths returns the configured files, global first
func (s *Store) Paths() []string {
	paths := []string{s.global}
	if s.workspace != "" {
		paths = append(paths, s.workspace)
	}
	return paths
}

// Has implements ports.SettingsStore
func (s *Store) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Get implements ports.SettingsStore
func (s *Store) Get(key string) (interface{}, bool) {
	r, ok := s.lookup(key)
	if !ok {
		return nil, false
	}
	return r.Value(), true
}

// GetIn implements ports.ScopedSettingsStore
func (s *Store) GetIn(key string, scope settings.Scope) (interface{}, bool) {
	r, ok := s.lookup(key, s.Path(scope))
	if !ok {
		return nil, false
	}
	return r.Value(), true
}

func (s *Store) lookup(key string, files ...string) (gjson.Result, bool) {
	if key == "" {
		return gjson.Result{}, false
	}
	if len(files) == 0 {
		files = []string{s.workspace, s.global}
	}
	path := EscapeKey(key)
	for _, file := range files {
		if file == "" {
			continue
		}
		data, err := s.read(file)
		if err != nil {
			continue
		}
		if r := gjson.GetBytes(data, path); r.Exists() {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// Set implements ports.SettingsStore. Writes are serialized and atomic.
func (s *Store) Set(ctx context.Context, key string, value interface{}, scope settings.Scope) error {
	fail := func(err error) error {
		return &settings.Error{Kind: settings.KindStoreWrite, Op: "set", Key: key, Err: err}
	}
	if key == "" {
		return fail(errors.New("empty setting key"))
	}
	file := s.Path(scope)
	if file == "" {
		return fail(fmt.Errorf("no settings file configured for %s scope", scope))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read(file)
	if err != nil {
		return fail(err)
	}
	updated, err := sjson.SetBytes(data, EscapeKey(key), value)
	if err != nil {
		return fail(err)
	}
	if err := writeAtomic(file, pretty.PrettyOptions(updated, prettyOptions)); err != nil {
		return fail(err)
	}
	return nil
}

// Snapshot returns the effective settings
func (s *Store) Snapshot() map[string]interface{} {
	out := map[string]interface{}{}
	for _, file := range []string{s.global, s.workspace} {
		if file == "" {
			continue
		}
		data, err := s.read(file)
		if err != nil {
			continue
		}
		gjson.ParseBytes(data).ForEach(func(k, v gjson.Result) bool {
			out[k.String()] = v.Value()
			return true
		})
	}
	return out
}

// read returns the file as plain JSON. Missing or blank files read as an
// empty object; comments and trailing commas are blanked out.
func (s *Store) read(file string) ([]byte, error) {
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte("{}"), nil
	}
	if err != nil {
		return nil, err
	}
	data = jsonc.ToJSON(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%s is not a JSON object", file)
	}
	return data, nil
}

func writeAtomic(file string, data []byte) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(file)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), file)
}

const pathSpecial = `\.*?|#@!=<>%:[]{}(),"`

// EscapeKey turns a flat setting name such as "editor.tabSize" into a
// gjson/sjson path addressing that literal top-level key.
func EscapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(pathSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ ports.ScopedSettingsStore = (*Store)(nil)

package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbsl/edsync/internal/core/settings"
	"github.com/gbsl/edsync/internal/core/version"
)

func TestSQLiteStore_GetSet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "globalStorage", "state.vscdb")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, version.DefaultMarkerKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, version.DefaultMarkerKey, "1.2.0"))
	require.NoError(t, store.Set(ctx, version.DefaultMarkerKey, "1.3.0"))
	require.NoError(t, store.Set(ctx, "other", "x"))

	v, ok, err := store.Get(ctx, version.DefaultMarkerKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.3.0", v)

	v, ok, err = store.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err = reopened.Get(ctx, version.DefaultMarkerKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.3.0", v, "marker must survive restarts")
}

func TestSQLiteStore_WorksWithGate(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	gate := version.NewGate(store, StaticVersion("2.0.0"), "")
	assert.True(t, gate.Check(ctx).Due)

	require.NoError(t, gate.Commit(ctx, "2.0.0"))
	assert.False(t, gate.Check(ctx).Due)
}

func TestManifestVersion(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	tests := []struct {
		name     string
		path     string
		expected string
		wantErr  bool
	}{
		{name: "ValidManifest_ShouldReturnVersion", path: write("ok.json", `{"name": "edsync", "version": " 1.3.0 "}`), expected: "1.3.0"},
		{name: "MissingVersion_ShouldFail", path: write("noversion.json", `{"name": "edsync"}`), wantErr: true},
		{name: "NumericVersion_ShouldFail", path: write("numeric.json", `{"version": 1}`), wantErr: true},
		{name: "InvalidJSON_ShouldFail", path: write("bad.json", `{"version":`), wantErr: true},
		{name: "MissingFile_ShouldFail", path: filepath.Join(dir, "absent.json"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewManifestVersion(tt.path).CurrentVersion(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, settings.KindVersionRead, settings.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestStaticVersion(t *testing.T) {
	v, err := StaticVersion("1.0.0").CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)

	_, err = StaticVersion("").CurrentVersion(context.Background())
	assert.True(t, settings.IsKind(err, settings.KindVersionRead))
}

package version

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbsl/edsync/internal/core/testfixtures"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		marker    string
		hasMarker bool
		current   string
		due       bool
		ordering  string
	}{
		{name: "NoMarker_ShouldBeDue", current: "1.3.0", due: true, ordering: "absent"},
		{name: "EmptyMarker_ShouldBeDue", marker: "", hasMarker: true, current: "1.3.0", due: true, ordering: "absent"},
		{name: "OlderMarker_ShouldBeDue", marker: "1.2.0", hasMarker: true, current: "1.3.0", due: true, ordering: "older"},
		{name: "SameMarker_ShouldNotBeDue", marker: "1.3.0", hasMarker: true, current: "1.3.0", due: false, ordering: "current"},
		{name: "NewerMarker_ShouldBeDue", marker: "2.0.0", hasMarker: true, current: "1.3.0", due: true, ordering: "newer"},
		{name: "LexicographicOrdering", marker: "1.10.0", hasMarker: true, current: "1.9.0", due: true, ordering: "older"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.marker, tt.hasMarker, tt.current)
			assert.Equal(t, tt.due, d.Due)
			assert.Equal(t, tt.ordering, d.Ordering())
		})
	}
}

func TestGate_Check_FallsBackToSentinel(t *testing.T) {
	state := testfixtures.NewMemoryStateStore(map[string]string{DefaultMarkerKey: "1.2.0"})
	gate := NewGate(state, testfixtures.StaticVersion{Err: errors.New("manifest missing")}, "")

	d := gate.Check(context.Background())

	assert.Equal(t, Sentinel, d.Current)
	assert.Error(t, d.VersionErr)
	assert.True(t, d.Due)
}

func TestGate_Check_MarkerReadErrorMeansAbsent(t *testing.T) {
	state := testfixtures.NewMemoryStateStore(nil)
	state.ReadErr = errors.New("database is locked")
	gate := NewGate(state, testfixtures.StaticVersion{Version: "1.3.0"}, "")

	d := gate.Check(context.Background())

	assert.False(t, d.HasMarker)
	assert.True(t, d.Due)
	assert.Error(t, d.MarkerErr)
}

func TestGate_CommitThenCheck(t *testing.T) {
	state := testfixtures.NewMemoryStateStore(nil)
	gate := NewGate(state, testfixtures.StaticVersion{Version: " 1.3.0\n"}, "custom.marker")
	ctx := context.Background()

	first := gate.Check(ctx)
	require.True(t, first.Due)
	require.NoError(t, gate.Commit(ctx, first.Current))

	second := gate.Check(ctx)
	assert.False(t, second.Due)
	assert.Equal(t, "1.3.0", second.Marker)

	stored, ok, err := state.Get(ctx, "custom.marker")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.3.0", stored)
}

func TestCompare_IsPlainStringOrdering(t *testing.T) {
	assert.Equal(t, -1, Compare("1.10.0", "1.9.0"))
	assert.Equal(t, 0, Compare("1.3.0", "1.3.0"))
	assert.Equal(t, 1, Compare("2", "10"))
}

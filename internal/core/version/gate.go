package version

import (
	"context"
	"strings"

	"github.com/gbsl/edsync/internal/core/ports"
)

// Sentinel is used when the current version cannot be read. It is low
// enough that configuration always proceeds.
const Sentinel = "0.0.1"

// DefaultMarkerKey is the state key holding the last configured version
const DefaultMarkerKey = "edsync.lastConfiguredVersion"

// Compare orders versions as plain strings, so "1.10.0" sorts before
// "1.9.0". It is only used for reporting; the gate itself tests inequality.
func Compare(a, b string) int {
	return strings.Compare(a, b)
}

// Decision is the outcome of checking the marker against the running version
type Decision struct {
	Marker    string `json:"marker" yaml:"marker"`
	HasMarker bool   `json:"has_marker" yaml:"has_marker"`
	Current   string `json:"current" yaml:"current"`
	Due       bool   `json:"due" yaml:"due"`

	// VersionErr and MarkerErr record read failures that were recovered from.
	VersionErr error `json:"-" yaml:"-"`
	MarkerErr  error `json:"-" yaml:"-"`
}

// Ordering describes the marker relative to the current version
func (d Decision) Ordering() string {
	if !d.HasMarker {
		return "absent"
	}
	switch Compare(d.Marker, d.Current) {
	case -1:
		return "older"
	case 1:
		return "newer"
	default:
		return "current"
	}
}

// Decide reports whether a configure pass is due: the marker is absent or
// differs from current.
func Decide(marker string, hasMarker bool, current string) Decision {
	hasMarker = hasMarker && marker != ""
	return Decision{
		Marker:    marker,
		HasMarker: hasMarker,
		Current:   current,
		Due:       !hasMarker || marker != current,
	}
}

// Gate reads and commits the version marker
type Gate struct {
	state    ports.StateStore
	versions ports.VersionSource
	key      string
}

// NewGate creates a gate storing its marker under key
func NewGate(state ports.StateStore, versions ports.VersionSource, key string) *Gate {
	if key == "" {
		key = DefaultMarkerKey
	}
	return &Gate{state: state, versions: versions, key: key}
}

// Key returns the state key of the marker
func (g *Gate) Key() string {
	return g.key
}

// Check never fails: a version read error falls back to Sentinel and a
// marker read error is treated as an absent marker.
func (g *Gate) Check(ctx context.Context) Decision {
	current, versionErr := g.Current(ctx)

	marker, ok, markerErr := g.state.Get(ctx, g.key)
	if markerErr != nil {
		marker, ok = "", false
	}

	d := Decide(marker, ok, current)
	d.VersionErr = versionErr
	d.MarkerErr = markerErr
	return d
}

// Current returns the running version, or Sentinel with the read error
func (g *Gate) Current(ctx context.Context) (string, error) {
	if g.versions == nil {
		return Sentinel, nil
	}
	current, err := g.versions.CurrentVersion(ctx)
	if err != nil {
		return Sentinel, err
	}
	current = strings.TrimSpace(current)
	if current == "" {
		return Sentinel, nil
	}
	return current, nil
}

// Commit stores version as the last configured version
func (g *Gate) Commit(ctx context.Context, version string) error {
	return g.state.Set(ctx, g.key, version)
}

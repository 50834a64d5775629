package state

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// ManifestVersion reads the tool version from a JSON manifest's "version" field
type ManifestVersion struct {
	path string
}

// NewManifestVersion creates a version source for the manifest at path
func NewManifestVersion(path string) *ManifestVersion {
	return &ManifestVersion{path: path}
}

// CurrentVersion implements ports.VersionSource
func (m *ManifestVersion) CurrentVersion(ctx context.Context) (string, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return "", settings.NewError(settings.KindVersionRead, "read manifest", err)
	}
	if !gjson.ValidBytes(data) {
		return "", settings.NewError(settings.KindVersionRead, "read manifest", fmt.Errorf("%s is not valid JSON", m.path))
	}
	v := gjson.GetBytes(data, "version")
	if v.Type != gjson.String || strings.TrimSpace(v.String()) == "" {
		return "", settings.NewError(settings.KindVersionRead, "read manifest", fmt.Errorf("%s has no version", m.path))
	}
	return strings.TrimSpace(v.String()), nil
}

// StaticVersion is the version compiled into the binary
type StaticVersion string

// CurrentVersion implements ports.VersionSource
func (v StaticVersion) CurrentVersion(ctx context.Context) (string, error) {
	if strings.TrimSpace(string(v)) == "" {
		return "", settings.NewError(settings.KindVersionRead, "build version", fmt.Errorf("version not set"))
	}
	return string(v), nil
}

var (
	_ ports.VersionSource = (*ManifestVersion)(nil)
	_ ports.VersionSource = StaticVersion("")
)

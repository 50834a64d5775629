package config

import (
	"fmt"
	"os"

	"github.com/gbsl/edsync/internal/application/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// DefaultBaseline returns the settings every configured editor starts from
func DefaultBaseline() *settings.Document {
	doc := settings.NewDocument()
	doc.Set("python.languageServer", "Microsoft")
	doc.Set("editor.mouseWheelZoom", true)
	doc.Set("python.linting.pylintEnabled", true)
	doc.Set("python.linting.enabled", true)
	return doc
}

// LoadBaseline resolves the baseline document. A disabled baseline is nil.
func LoadBaseline(cfg ports.BaselineConfig) (*settings.Document, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.File == "" {
		return DefaultBaseline(), nil
	}

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline %s: %w", cfg.File, err)
	}
	doc, err := settings.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("invalid baseline %s: %w", cfg.File, err)
	}
	return doc, nil
}

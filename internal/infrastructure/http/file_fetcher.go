package httpinfra

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// FileFetcher reads settings documents from the local filesystem
type FileFetcher struct{}

// Fetch implements ports.DocumentFetcher for file:// URLs and plain paths
func (FileFetcher) Fetch(ctx context.Context, location string) (*settings.Document, error) {
	path := strings.TrimSpace(location)
	if strings.HasPrefix(path, "file://") {
		u, err := url.Parse(path)
		if err != nil {
			return nil, settings.NewError(settings.KindTransport, "read", err)
		}
		path = u.Path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, settings.NewError(settings.KindTransport, "read", err)
	}
	return settings.ParseDocument(data)
}

// Router dispatches locations to a fetcher by scheme
type Router struct {
	remote ports.DocumentFetcher
	local  ports.DocumentFetcher
}

// NewRouter creates a fetcher serving http(s) with remote and everything else with local
func NewRouter(remote, local ports.DocumentFetcher) *Router {
	return &Router{remote: remote, local: local}
}

// Fetch implements ports.DocumentFetcher
func (r *Router) Fetch(ctx context.Context, location string) (*settings.Document, error) {
	lower := strings.ToLower(strings.TrimSpace(location))
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return r.remote.Fetch(ctx, location)
	}
	return r.local.Fetch(ctx, location)
}

var (
	_ ports.DocumentFetcher = FileFetcher{}
	_ ports.DocumentFetcher = (*Router)(nil)
)

package httpinfra

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

const gistHost = "gist.github.com"

// Fetcher downloads remote settings documents over HTTP(S)
type Fetcher struct {
	requester *StdHttpRequester
	headers   map[string]string
}

// NewFetcher creates an HTTP document fetcher. extra headers override the defaults.
func NewFetcher(requester *StdHttpRequester, userAgent string, extra map[string]string) *Fetcher {
	return &Fetcher{requester: requester, headers: MergeHeaders(DefaultHeaders(userAgent), extra)}
}

// Fetch implements ports.DocumentFetcher
func (f *Fetcher) Fetch(ctx context.Context, location string) (*settings.Document, error) {
	target, err := ShapeURL(location)
	if err != nil {
		return nil, settings.NewError(settings.KindTransport, "fetch", err)
	}

	status, body, err := f.requester.Get(ctx, target, f.headers)
	if err != nil {
		if isHostNotFound(err) {
			return nil, settings.NewError(settings.KindHostNotFound, "fetch", err)
		}
		return nil, settings.NewError(settings.KindTransport, "fetch", err)
	}
	if status < 200 || status > 299 {
		return nil, settings.NewError(settings.KindTransport, "fetch",
			fmt.Errorf("unexpected status %d %s", status, http.StatusText(status)))
	}

	return settings.ParseDocument(body)
}

// ShapeURL returns the URL actually requested for location. Gist page URLs
// are pointed at their raw content; everything else is used as is.
func ShapeURL(location string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return "", fmt.Errorf("invalid location %q: %w", location, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("location %q has no host", location)
	}

	if strings.EqualFold(u.Hostname(), gistHost) {
		p := strings.TrimSuffix(u.Path, "/")
		if !strings.HasSuffix(p, "/raw") && !strings.Contains(p, "/raw/") {
			u.Path = p + "/raw"
			u.RawPath = ""
		}
	}
	return u.String(), nil
}

var _ ports.DocumentFetcher = (*Fetcher)(nil)

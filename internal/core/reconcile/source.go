package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// Source turns fetch results into a document the engine can always use.
// Every failure resolves to an empty document; unreachable hosts are
// silent, everything else produces one error notification.
type Source struct {
	fetcher  ports.DocumentFetcher
	notifier ports.Notifier
	logger   ports.EventLogger
	recorder ports.PassRecorder
}

// NewSource creates a Source. logger and recorder may be nil.
func NewSource(fetcher ports.DocumentFetcher, notifier ports.Notifier, logger ports.EventLogger, recorder ports.PassRecorder) *Source {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	if recorder == nil {
		recorder = ports.NopRecorder{}
	}
	return &Source{fetcher: fetcher, notifier: notifier, logger: logger, recorder: recorder}
}

// Load fetches the document at location. An empty location disables the
// feature and returns an empty document without any fetch.
func (s *Source) Load(ctx context.Context, location string) *settings.Document {
	location = strings.TrimSpace(location)
	if location == "" {
		return settings.NewDocument()
	}

	doc, err := s.fetcher.Fetch(ctx, location)
	if err == nil {
		if doc == nil {
			return settings.NewDocument()
		}
		return doc
	}

	kind := settings.KindOf(err)
	s.recorder.ObserveFetchFailure(kind)

	switch kind {
	case settings.KindHostNotFound:
		s.logger.LogDebug("remote configuration host not found", map[string]interface{}{
			"location": location,
		})
	default:
		s.logger.LogError(err, "remote configuration fetch failed", map[string]interface{}{
			"location": location,
			"kind":     kind.String(),
		})
		if s.notifier != nil {
			s.notifier.Report(fmt.Sprintf("Remote configuration could not be downloaded from %s: %v", location, err), ports.SeverityError)
		}
	}
	return settings.NewDocument()
}

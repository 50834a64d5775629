package ports

import (
	"time"

	"github.com/gbsl/edsync/internal/core/settings"
)

// PassRecorder observes reconciliation activity
type PassRecorder interface {
	ObservePass(trigger string, outcomes settings.Outcomes, duration time.Duration)
	ObserveFetchFailure(kind settings.Kind)
}

// NopRecorder records nothing
type NopRecorder struct{}

func (NopRecorder) ObservePass(string, settings.Outcomes, time.Duration) {}
func (NopRecorder) ObserveFetchFailure(settings.Kind)                    {}

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gbsl/edsync/internal/core/ports"
	"github.com/gbsl/edsync/internal/core/settings"
)

// Recorder implements ports.PassRecorder with Prometheus collectors
type Recorder struct {
	registry *prometheus.Registry

	Passes        *prometheus.CounterVec
	Applies       *prometheus.CounterVec
	PassDuration  *prometheus.HistogramVec
	FetchFailures *prometheus.CounterVec
	LastPass      prometheus.Gauge
}

// NewRecorder registers the collectors on a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Passes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edsync_passes_total",
				Help: "Total number of reconciliation passes",
			},
			[]string{"trigger"},
		),
		Applies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edsync_setting_applies_total",
				Help: "Total number of attempted setting writes",
			},
			[]string{"trigger", "result"},
		),
		PassDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "edsync_pass_duration_seconds",
				Help:    "Reconciliation pass duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"trigger"},
		),
		FetchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "edsync_fetch_failures_total",
				Help: "Total number of failed remote document fetches",
			},
			[]string{"kind"},
		),
		LastPass: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "edsync_last_pass_timestamp_seconds",
				Help: "Unix time of the last finished reconciliation pass",
			},
		),
	}
}

// ObservePass implements ports.PassRecorder
func (r *Recorder) ObservePass(trigger string, outcomes settings.Outcomes, duration time.Duration) {
	r.Passes.WithLabelValues(trigger).Inc()
	updated := outcomes.UpdatedCount()
	r.Applies.WithLabelValues(trigger, "updated").Add(float64(updated))
	r.Applies.WithLabelValues(trigger, "failed").Add(float64(len(outcomes) - updated))
	r.PassDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	r.LastPass.SetToCurrentTime()
}

// ObserveFetchFailure implements ports.PassRecorder
func (r *Recorder) ObserveFetchFailure(kind settings.Kind) {
	r.FetchFailures.WithLabelValues(kind.String()).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

var _ ports.PassRecorder = (*Recorder)(nil)

// Package metrics exposes scheduler activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

const namespace = "fanslysync"

var states = []domain.SyncState{
	domain.StateIdle,
	domain.StateFetching,
	domain.StateDiffing,
	domain.StateMerging,
	domain.StateErrored,
}

// Ensure Provider implements the interface.
var _ driven.SyncMetrics = (*Provider)(nil)

// Provider records sync metrics into its own registry.
type Provider struct {
	registry *prometheus.Registry

	cyclesStarted  *prometheus.CounterVec
	cyclesFinished *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	coalesced      *prometheus.CounterVec
	state          *prometheus.GaugeVec
	backoffDelay   prometheus.Gauge
	lastSuccess    prometheus.Gauge
	snapshotSize   *prometheus.GaugeVec
	deltaEntries   *prometheus.CounterVec
	reauthRequired prometheus.Gauge
}

// NewProvider creates a Provider with a fresh registry that also carries
// the Go runtime and process collectors.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Provider{
		registry: reg,

		cyclesStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_started_total",
			Help:      "Total number of sync cycles started",
		}, []string{"trigger"}),

		cyclesFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_finished_total",
			Help:      "Total number of sync cycles finished, by outcome",
		}, []string{"trigger", "outcome"}),

		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Sync cycle duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),

		coalesced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triggers_coalesced_total",
			Help:      "Triggers dropped because a cycle was in flight",
		}, []string{"trigger"}),

		state: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Current scheduler state (1 for the active state)",
		}, []string{"state"}),

		backoffDelay: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backoff_seconds",
			Help:      "Delay of the most recently scheduled retry",
		}),

		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle",
		}),

		snapshotSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_entries",
			Help:      "Entries in the committed snapshot",
		}, []string{"kind"}),

		deltaEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delta_entries_total",
			Help:      "Entries merged by successful cycles",
		}, []string{"change"}),

		reauthRequired: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reauth_required",
			Help:      "1 while automatic cycles wait for a new credential",
		}),
	}
}

// Registry returns the registry the metrics are recorded in.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// CycleStarted implements driven.SyncMetrics.
func (p *Provider) CycleStarted(trigger domain.Trigger) {
	p.cyclesStarted.WithLabelValues(string(trigger)).Inc()
}

// CycleFinished implements driven.SyncMetrics.
func (p *Provider) CycleFinished(result *domain.CycleResult) {
	if result == nil {
		return
	}

	p.cyclesFinished.WithLabelValues(string(result.Trigger), outcome(result)).Inc()
	if !result.StartedAt.IsZero() && !result.EndedAt.IsZero() {
		p.cycleDuration.Observe(result.Duration().Seconds())
	}

	if result.ReauthRequired {
		p.reauthRequired.Set(1)
	}
	if !result.Success() {
		return
	}

	p.reauthRequired.Set(0)
	p.backoffDelay.Set(0)
	p.lastSuccess.Set(float64(result.EndedAt.Unix()))
	p.snapshotSize.WithLabelValues("followers").Set(float64(result.Followers))
	p.snapshotSize.WithLabelValues("subscribers").Set(float64(result.Subscribers))

	d := result.Delta
	p.deltaEntries.WithLabelValues("followers_added").Add(float64(len(d.AddedFollowers)))
	p.deltaEntries.WithLabelValues("followers_removed").Add(float64(len(d.RemovedFollowers)))
	p.deltaEntries.WithLabelValues("subscribers_added").Add(float64(len(d.AddedSubscribers)))
	p.deltaEntries.WithLabelValues("subscribers_removed").Add(float64(len(d.RemovedSubscribers)))
	p.deltaEntries.WithLabelValues("subscribers_changed").Add(float64(len(d.ChangedSubscribers)))
}

// TriggerCoalesced implements driven.SyncMetrics.
func (p *Provider) TriggerCoalesced(trigger domain.Trigger) {
	p.coalesced.WithLabelValues(string(trigger)).Inc()
}

// StateChanged implements driven.SyncMetrics.
func (p *Provider) StateChanged(state domain.SyncState) {
	for _, s := range states {
		v := 0.0
		if s == state {
			v = 1
		}
		p.state.WithLabelValues(string(s)).Set(v)
	}
}

// BackoffScheduled implements driven.SyncMetrics.
func (p *Provider) BackoffScheduled(delay time.Duration) {
	p.backoffDelay.Set(delay.Seconds())
}

func outcome(result *domain.CycleResult) string {
	switch {
	case result.Success():
		return "success"
	case domain.IsAuth(result.Err):
		return "auth"
	case domain.IsTransport(result.Err):
		return "transport"
	case domain.IsShape(result.Err):
		return "shape"
	case domain.IsMergeConflict(result.Err):
		return "conflict"
	case domain.IsUnsupportedSchema(result.Err):
		return "schema"
	default:
		return "error"
	}
}

// Serve exposes handler on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Serving metrics on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

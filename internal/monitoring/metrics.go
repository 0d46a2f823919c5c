package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Registry *prometheus.Registry

	PagesFetched      *prometheus.CounterVec
	FailuresTotal     *prometheus.CounterVec
	SailingsCollected prometheus.Counter
	RunDuration       prometheus.Gauge
	LastRunTimestamp  prometheus.Gauge
}

// NewMetrics registers the metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		PagesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cruisewatch_pages_fetched_total",
			Help: "The total number of itinerary pages requested",
		}, []string{"result"}), // "ok", "error", "blocked"
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cruisewatch_failures_total",
			Help: "Per-itinerary and per-sailing failures by kind",
		}, []string{"kind"}),
		SailingsCollected: factory.NewCounter(prometheus.CounterOpts{
			Name: "cruisewatch_sailings_collected_total",
			Help: "The total number of normalized sailings produced",
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cruisewatch_last_run_duration_seconds",
			Help: "Duration of the last aggregation run",
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cruisewatch_last_run_timestamp_seconds",
			Help: "Unix time the last aggregation run finished",
		}),
	}
}

// The helpers below are nil-safe so callers can run without metrics.

func (m *Metrics) IncPagesFetched(result string) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(result).Inc()
}

func (m *Metrics) IncFailures(kind string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) AddSailings(n int) {
	if m == nil {
		return
	}
	m.SailingsCollected.Add(float64(n))
}

func (m *Metrics) ObserveRun(started, finished time.Time) {
	if m == nil {
		return
	}
	m.RunDuration.Set(finished.Sub(started).Seconds())
	m.LastRunTimestamp.Set(float64(finished.Unix()))
}

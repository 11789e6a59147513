package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks compliance publisher health. Persist failures are the one to
// alert on: each one failed a business operation.
type Metrics struct {
	eventsEmitted   prometheus.Counter
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram
}

// NewMetrics creates and registers compliance publisher metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		eventsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_audit_events_emitted_total",
			Help: "Total audit events durably enqueued",
		}),
		persistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_audit_persist_failures_total",
			Help: "Total audit enqueue failures (each fails its enclosing operation)",
		}),
		persistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "meridian_audit_persist_duration_seconds",
			Help:    "Duration of synchronous audit outbox writes",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncEventsEmitted()                  { m.eventsEmitted.Inc() }
func (m *Metrics) IncPersistFailures()                { m.persistFailures.Inc() }
func (m *Metrics) ObservePersistDuration(sec float64) { m.persistDuration.Observe(sec) }

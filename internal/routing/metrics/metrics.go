package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the routing module.
type Metrics struct {
	Decisions       *prometheus.CounterVec
	ResolveDuration prometheus.Histogram
}

// New creates and registers all routing module metrics.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_routing_decisions_total",
			Help: "Routing decisions by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "meridian_routing_resolve_duration_seconds",
			Help:    "Duration of routing resolutions (decision critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncDecision records one routing decision.
func (m *Metrics) IncDecision(strategy, outcome string) {
	m.Decisions.WithLabelValues(strategy, outcome).Inc()
}

// ObserveResolve records the duration of a resolution.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveResolve(start time.Time) {
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}

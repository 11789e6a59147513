package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the residency module.
type Metrics struct {
	Decisions        *prometheus.CounterVec
	RulesCreated     prometheus.Counter
	EvaluateDuration prometheus.Histogram
}

// New creates and registers all residency module metrics.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_residency_decisions_total",
			Help: "Residency decisions by enforcement action",
		}, []string{"action"}),
		RulesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_residency_rules_created_total",
			Help: "Total residency rules created",
		}),
		EvaluateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "meridian_residency_evaluate_duration_seconds",
			Help:    "Duration of residency evaluations (decision critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncDecision records one decision outcome.
func (m *Metrics) IncDecision(action string) {
	m.Decisions.WithLabelValues(action).Inc()
}

// IncRuleCreated records a successful rule creation.
func (m *Metrics) IncRuleCreated() {
	m.RulesCreated.Inc()
}

// ObserveEvaluate records the duration of an evaluation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveEvaluate(start time.Time) {
	m.EvaluateDuration.Observe(time.Since(start).Seconds())
}

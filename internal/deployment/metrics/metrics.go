package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the deployment module.
type Metrics struct {
	Initiated   prometheus.Counter
	Transitions *prometheus.CounterVec
}

// New creates and registers all deployment module metrics.
func New() *Metrics {
	return &Metrics{
		Initiated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_deployments_initiated_total",
			Help: "Total regional deployments initiated",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "meridian_deployment_transitions_total",
			Help: "Deployment lifecycle transitions by target status",
		}, []string{"status"}),
	}
}

// IncInitiated records a new deployment entering Provisioning.
func (m *Metrics) IncInitiated() {
	m.Initiated.Inc()
}

// IncTransition records a lifecycle transition to the given status.
func (m *Metrics) IncTransition(status string) {
	m.Transitions.WithLabelValues(status).Inc()
}

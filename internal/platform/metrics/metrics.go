package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process-wide HTTP metrics. Domain modules register their own
// metrics packages; this only covers the shared transport layer.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers the shared HTTP metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meridian_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "path"}),
	}
}

// ObserveRequestDuration records one request's latency.
func (m *Metrics) ObserveRequestDuration(method, path string, d time.Duration) {
	m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance module.
type Metrics struct {
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	Mappings    prometheus.Counter
}

// New creates and registers all compliance module metrics.
func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_compliance_cache_hits_total",
			Help: "Compliance map lookups served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_compliance_cache_misses_total",
			Help: "Compliance map lookups that fell through to the store",
		}),
		Mappings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_compliance_mappings_created_total",
			Help: "Total compliance maps created",
		}),
	}
}

// IncCacheHit records a lookup served from cache.
func (m *Metrics) IncCacheHit() {
	m.CacheHits.Inc()
}

// IncCacheMiss records a lookup that read through to the store.
func (m *Metrics) IncCacheMiss() {
	m.CacheMisses.Inc()
}

// IncMappingCreated records a successful map creation.
func (m *Metrics) IncMappingCreated() {
	m.Mappings.Inc()
}

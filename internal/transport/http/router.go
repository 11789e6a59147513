// Package httptransport assembles the HTTP surface: middleware chain, domain
// handler mounts, health, and metrics. Handlers live with their domains; this
// package only wires them together.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	compliancehandler "meridian/internal/compliance/handler"
	deploymenthandler "meridian/internal/deployment/handler"
	"meridian/internal/platform/metrics"
	"meridian/internal/platform/middleware"
	registryhandler "meridian/internal/registry/handler"
	residencyhandler "meridian/internal/residency/handler"
	routinghandler "meridian/internal/routing/handler"
)

// Handlers collects the domain handlers mounted on the router.
type Handlers struct {
	Residency  *residencyhandler.Handler
	Routing    *routinghandler.Handler
	Registry   *registryhandler.Handler
	Deployment *deploymenthandler.Handler
	Compliance *compliancehandler.Handler
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker func() error

// NewRouter wires middleware and all endpoints. Every data-plane route is
// tenant-scoped behind JWT auth; health and metrics stay open for probes and
// scrapers.
func NewRouter(h Handlers, logger *slog.Logger, httpMetrics *metrics.Metrics,
	jwtSigningKey string, health HealthChecker) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	if httpMetrics != nil {
		r.Use(middleware.LatencyMiddleware(httpMetrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireTenant(jwtSigningKey, logger))

		h.Residency.Register(r)
		h.Routing.Register(r)
		h.Registry.Register(r)
		h.Deployment.Register(r)
		h.Compliance.Register(r)
	})

	return r
}

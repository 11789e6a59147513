package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"meridian/internal/platform/middleware"
	"meridian/internal/routing"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/httputil"
	"meridian/pkg/requestcontext"
)

// Service defines the interface for routing operations.
type Service interface {
	Route(ctx context.Context, req routing.RouteRequest) (routing.RoutingDecision, error)
	CreatePolicy(ctx context.Context, tenantID id.TenantID, params routing.CreatePolicyParams) (*routing.RoutingPolicy, error)
	ListPolicies(ctx context.Context, tenantID id.TenantID) ([]*routing.RoutingPolicy, error)
}

// Handler wires routing endpoints to the routing service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a routing handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts routing endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/routing/route", h.HandleRoute)
	r.Post("/routing/policies", h.HandleCreatePolicy)
	r.Get("/routing/policies", h.HandleListPolicies)
}

// HandleRoute handles POST /routing/route requests.
func (h *Handler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	tenantID := middleware.GetTenantID(r)

	req, ok := httputil.DecodeAndPrepare[RouteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decision, err := h.service.Route(ctx, routing.RouteRequest{
		TenantID:     tenantID,
		Jurisdiction: req.ParsedJurisdiction(),
		ModelRef:     req.ParsedModelRef(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "routing failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"jurisdiction", req.Jurisdiction,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "routing decided",
		"request_id", requestID,
		"tenant_id", tenantID,
		"jurisdiction", req.Jurisdiction,
		"reason", decision.Reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}

// HandleCreatePolicy handles POST /routing/policies requests.
func (h *Handler) HandleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID := middleware.GetTenantID(r)

	req, ok := httputil.DecodeAndPrepare[CreatePolicyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	policy, err := h.service.CreatePolicy(ctx, tenantID, routing.CreatePolicyParams{
		Jurisdiction:          req.ParsedJurisdiction(),
		Strategy:              req.ParsedStrategy(),
		PrimaryDeploymentID:   req.ParsedPrimary(),
		FallbackDeploymentIDs: req.ParsedFallbacks(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "policy creation failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromPolicy(policy))
}

// HandleListPolicies handles GET /routing/policies requests.
func (h *Handler) HandleListPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(r)

	policies, err := h.service.ListPolicies(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromPolicies(policies))
}

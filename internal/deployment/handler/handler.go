package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"meridian/internal/deployment"
	"meridian/internal/platform/middleware"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/httputil"
	"meridian/pkg/requestcontext"
)

// Service defines the interface for deployment operations.
type Service interface {
	Deploy(ctx context.Context, tenantID id.TenantID, params deployment.DeployParams) (*deployment.RegionalDeployment, error)
	Transition(ctx context.Context, tenantID id.TenantID, depID id.DeploymentID, to deployment.DeploymentStatus) (*deployment.RegionalDeployment, error)
	Get(ctx context.Context, tenantID id.TenantID, depID id.DeploymentID) (*deployment.RegionalDeployment, error)
	List(ctx context.Context, tenantID id.TenantID) ([]*deployment.RegionalDeployment, error)
}

// Handler wires deployment endpoints to the deployment service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a deployment handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts deployment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/deployments", h.HandleDeploy)
	r.Post("/deployments/{deploymentID}/transition", h.HandleTransition)
	r.Get("/deployments/{deploymentID}", h.HandleGet)
	r.Get("/deployments", h.HandleList)
}

// HandleDeploy handles POST /deployments requests.
func (h *Handler) HandleDeploy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID := middleware.GetTenantID(r)

	req, ok := httputil.DecodeAndPrepare[DeployRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	dep, err := h.service.Deploy(ctx, tenantID, deployment.DeployParams{
		Jurisdiction: req.ParsedJurisdiction(),
		Region:       req.Region,
		Namespace:    req.Namespace,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "deployment creation failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"jurisdiction", req.Jurisdiction,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromDeployment(dep))
}

// HandleTransition handles POST /deployments/{deploymentID}/transition requests.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID := middleware.GetTenantID(r)

	depID, err := id.ParseDeploymentID(chi.URLParam(r, "deploymentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "deployment ID must be a UUID"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	dep, err := h.service.Transition(ctx, tenantID, depID, req.ParsedStatus())
	if err != nil {
		h.logger.ErrorContext(ctx, "deployment transition failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"deployment_id", depID,
			"status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDeployment(dep))
}

// HandleGet handles GET /deployments/{deploymentID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(r)

	depID, err := id.ParseDeploymentID(chi.URLParam(r, "deploymentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "deployment ID must be a UUID"))
		return
	}

	dep, err := h.service.Get(ctx, tenantID, depID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDeployment(dep))
}

// HandleList handles GET /deployments requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(r)

	deps, err := h.service.List(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDeployments(deps))
}

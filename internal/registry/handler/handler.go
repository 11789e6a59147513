package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"meridian/internal/platform/middleware"
	"meridian/internal/registry"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/httputil"
	"meridian/pkg/requestcontext"
)

// Service defines the interface for registry operations.
type Service interface {
	Register(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction) (*registry.SovereignModel, error)
	Transition(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction, to registry.ApprovalStatus) (*registry.SovereignModel, error)
	ListByJurisdiction(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*registry.SovereignModel, error)
}

// Handler wires registry endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/models", h.HandleRegister)
	r.Post("/models/transition", h.HandleTransition)
	r.Get("/models", h.HandleList)
}

// HandleRegister handles POST /models requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID := middleware.GetTenantID(r)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	model, err := h.service.Register(ctx, tenantID, req.ParsedModelRef(), req.ParsedJurisdiction())
	if err != nil {
		h.logger.ErrorContext(ctx, "model registration failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"model_ref", req.ModelRef,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromModel(model))
}

// HandleTransition handles POST /models/transition requests.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID := middleware.GetTenantID(r)

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	model, err := h.service.Transition(ctx, tenantID, req.ParsedModelRef(), req.ParsedJurisdiction(), req.ParsedStatus())
	if err != nil {
		h.logger.ErrorContext(ctx, "model transition failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"model_ref", req.ModelRef,
			"status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromModel(model))
}

// HandleList handles GET /models?jurisdiction= requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(r)

	jurisdiction, err := id.ParseJurisdiction(r.URL.Query().Get("jurisdiction"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "jurisdiction query parameter is required"))
		return
	}

	models, err := h.service.ListByJurisdiction(ctx, tenantID, jurisdiction)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromModels(models))
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"meridian/internal/platform/middleware"
	"meridian/internal/residency"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/httputil"
	"meridian/pkg/requestcontext"
)

// Service defines the interface for residency operations.
type Service interface {
	Evaluate(ctx context.Context, req residency.AccessRequest) (residency.Decision, error)
	CreateRule(ctx context.Context, tenantID id.TenantID, params residency.CreateRuleParams) (*residency.Rule, error)
	DeactivateRule(ctx context.Context, tenantID id.TenantID, ruleID id.RuleID) (*residency.Rule, error)
	ListRules(ctx context.Context, tenantID id.TenantID) ([]*residency.Rule, error)
}

// Handler wires residency endpoints to the residency service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a residency handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts residency endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/residency/evaluate", h.HandleEvaluate)
	r.Post("/residency/rules", h.HandleCreateRule)
	r.Get("/residency/rules", h.HandleListRules)
	r.Delete("/residency/rules/{ruleID}", h.HandleDeactivateRule)
}

// HandleEvaluate handles POST /residency/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	tenantID := middleware.GetTenantID(r)

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decision, err := h.service.Evaluate(ctx, residency.AccessRequest{
		TenantID:       tenantID,
		Jurisdiction:   req.ParsedJurisdiction(),
		Classification: req.ParsedClassification(),
		PayloadRef:     req.PayloadRef,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "residency evaluation failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"jurisdiction", req.Jurisdiction,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "residency evaluated",
		"request_id", requestID,
		"tenant_id", tenantID,
		"jurisdiction", req.Jurisdiction,
		"action", decision.Action,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}

// HandleCreateRule handles POST /residency/rules requests.
func (h *Handler) HandleCreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID := middleware.GetTenantID(r)

	req, ok := httputil.DecodeAndPrepare[CreateRuleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rule, err := h.service.CreateRule(ctx, tenantID, residency.CreateRuleParams{
		Jurisdiction:   req.ParsedJurisdiction(),
		Classification: req.ParsedClassification(),
		Action:         req.ParsedAction(),
		RedirectTarget: req.ParsedRedirectTarget(),
		Priority:       req.Priority,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "rule creation failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromRule(rule))
}

// HandleListRules handles GET /residency/rules requests.
func (h *Handler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(r)

	rules, err := h.service.ListRules(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRules(rules))
}

// HandleDeactivateRule handles DELETE /residency/rules/{ruleID} requests.
func (h *Handler) HandleDeactivateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID := middleware.GetTenantID(r)

	ruleID, err := id.ParseRuleID(chi.URLParam(r, "ruleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "rule ID must be a UUID"))
		return
	}

	rule, err := h.service.DeactivateRule(ctx, tenantID, ruleID)
	if err != nil {
		h.logger.ErrorContext(ctx, "rule deactivation failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"rule_id", ruleID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRule(rule))
}

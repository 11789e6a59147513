package routing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	routingmetrics "meridian/internal/routing/metrics"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
	"meridian/pkg/requestcontext"
)

// Auditor records routing outcomes before they are returned to the caller.
// Implemented by internal/audit; failures are fatal to the enclosing
// operation (fail-closed).
type Auditor interface {
	RecordRouting(ctx context.Context, req RouteRequest, decision RoutingDecision) error
}

// Service orchestrates routing: policy load, snapshot of deployment health
// and model approval, pure resolution, and the audit enqueue that must
// precede returning a decision.
type Service struct {
	policies  PolicyStore
	health    DeploymentHealthView
	approvals ApprovalChecker
	resolver  *Resolver
	auditor   Auditor
	logger    *slog.Logger
	metrics   *routingmetrics.Metrics
	tracer    trace.Tracer
	tx        txcontext.Runner
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *routingmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTx sets the transaction runner; defaults to a no-op runner suitable for
// the in-memory store.
func WithTx(runner txcontext.Runner) Option {
	return func(s *Service) { s.tx = runner }
}

func NewService(policies PolicyStore, health DeploymentHealthView, approvals ApprovalChecker,
	auditor Auditor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		policies:  policies,
		health:    health,
		approvals: approvals,
		resolver:  NewResolver(),
		auditor:   auditor,
		logger:    logger,
		tracer:    otel.Tracer("meridian/routing"),
		tx:        txcontext.NewNoopRunner(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Route decides where the jurisdiction's traffic for a model should go. The
// decision is durably audited before it is returned; if the audit enqueue
// fails, the routing call fails.
//
// A decision with no selected deployment is a valid outcome, not an error:
// the caller sees reason "no_compliant_deployment" and must not fall back on
// its own. Dependency failures surface as CodeUnavailable and never degrade
// into a selection.
func (s *Service) Route(ctx context.Context, req RouteRequest) (RoutingDecision, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "routing.route",
		trace.WithAttributes(
			attribute.String("jurisdiction", req.Jurisdiction.String()),
			attribute.String("model_ref", req.ModelRef.String()),
		))
	defer span.End()

	if err := validateRouteRequest(req); err != nil {
		return RoutingDecision{}, err
	}

	policy, err := s.policies.GetByJurisdiction(ctx, req.TenantID, req.Jurisdiction)
	if errors.Is(err, sentinel.ErrNotFound) {
		return RoutingDecision{}, dErrors.New(dErrors.CodeNotFound, "no routing policy for jurisdiction")
	}
	if err != nil {
		return RoutingDecision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "routing policy unavailable")
	}

	candidates, err := s.health.ListCandidates(ctx, req.TenantID, req.Jurisdiction)
	if err != nil {
		s.logger.ErrorContext(ctx, "deployment snapshot fetch failed",
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", req.TenantID,
			"error", err,
		)
		return RoutingDecision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "deployment health view unavailable")
	}

	usable, err := s.approvals.IsUsable(ctx, req.TenantID, req.ModelRef, req.Jurisdiction)
	if err != nil {
		return RoutingDecision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "approval registry unavailable")
	}

	decision := s.resolver.Resolve(policy, candidates, usable, requestcontext.Now(ctx))

	if err := s.auditor.RecordRouting(ctx, req, decision); err != nil {
		return RoutingDecision{}, err
	}

	if !decision.Selected() {
		s.logger.InfoContext(ctx, "no compliant deployment",
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", req.TenantID,
			"jurisdiction", req.Jurisdiction,
			"strategy", decision.StrategyUsed,
		)
	}
	if s.metrics != nil {
		s.metrics.IncDecision(string(decision.StrategyUsed), outcome(decision))
		s.metrics.ObserveResolve(start)
	}
	return decision, nil
}

// CreatePolicyParams carries validated handler input for policy creation.
type CreatePolicyParams struct {
	Jurisdiction          id.Jurisdiction
	Strategy              Strategy
	PrimaryDeploymentID   id.DeploymentID
	FallbackDeploymentIDs []id.DeploymentID
}

// CreatePolicy persists the jurisdiction's routing policy. One policy per
// (tenant, jurisdiction); a second create conflicts.
func (s *Service) CreatePolicy(ctx context.Context, tenantID id.TenantID, params CreatePolicyParams) (*RoutingPolicy, error) {
	var policy *RoutingPolicy
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := NewRoutingPolicy(id.PolicyID(uuid.New()), tenantID,
			params.Jurisdiction, params.Strategy,
			params.PrimaryDeploymentID, params.FallbackDeploymentIDs,
			requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.policies.Create(txCtx, p); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "routing policy already exists for jurisdiction")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create routing policy")
		}
		policy = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return policy, nil
}

// ListPolicies returns all of the tenant's routing policies.
func (s *Service) ListPolicies(ctx context.Context, tenantID id.TenantID) ([]*RoutingPolicy, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}
	policies, err := s.policies.List(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "routing policies unavailable")
	}
	return policies, nil
}

func validateRouteRequest(req RouteRequest) error {
	if req.TenantID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}
	if req.Jurisdiction == "" {
		return dErrors.New(dErrors.CodeValidation, "jurisdiction is required")
	}
	if req.ModelRef == "" {
		return dErrors.New(dErrors.CodeValidation, "model ref is required")
	}
	return nil
}

func outcome(d RoutingDecision) string {
	if d.Selected() {
		return "selected"
	}
	return "none"
}

package residency

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	residencymetrics "meridian/internal/residency/metrics"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
	"meridian/pkg/requestcontext"
)

// Auditor records residency outcomes before they are returned to the caller.
// Implemented by internal/audit; failures are fatal to the enclosing
// operation (fail-closed).
type Auditor interface {
	RecordResidency(ctx context.Context, req AccessRequest, decision Decision) error
	RecordRuleCreated(ctx context.Context, rule *Rule) error
}

// Service orchestrates residency enforcement: snapshot fetch, pure engine
// evaluation, and the audit enqueue that must precede returning a decision.
type Service struct {
	rules   RuleStore
	engine  *Engine
	auditor Auditor
	logger  *slog.Logger
	metrics *residencymetrics.Metrics
	tracer  trace.Tracer
	tx      txcontext.Runner
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *residencymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTx sets the transaction runner; defaults to a no-op runner suitable for
// the in-memory store.
func WithTx(runner txcontext.Runner) Option {
	return func(s *Service) { s.tx = runner }
}

func NewService(rules RuleStore, auditor Auditor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		rules:   rules,
		engine:  NewEngine(),
		auditor: auditor,
		logger:  logger,
		tracer:  otel.Tracer("meridian/residency"),
		tx:      txcontext.NewNoopRunner(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate decides whether the described data access may proceed and with
// which enforcement action. The decision is durably audited before it is
// returned; if the audit enqueue fails, the evaluation fails.
//
// The service never converts a store failure into an allow: residency
// enforcement fails closed.
func (s *Service) Evaluate(ctx context.Context, req AccessRequest) (Decision, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "residency.evaluate",
		trace.WithAttributes(
			attribute.String("jurisdiction", req.Jurisdiction.String()),
			attribute.String("classification", req.Classification.String()),
		))
	defer span.End()

	if err := validateRequest(req); err != nil {
		return Decision{}, err
	}

	rules, err := s.rules.ListActive(ctx, req.TenantID, req.Jurisdiction)
	if err != nil {
		s.logger.ErrorContext(ctx, "rule snapshot fetch failed",
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", req.TenantID,
			"error", err,
		)
		return Decision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "residency rules unavailable")
	}

	decision, err := s.engine.Evaluate(rules, req, requestcontext.Now(ctx))
	if err != nil {
		return Decision{}, err
	}

	if err := s.auditor.RecordResidency(ctx, req, decision); err != nil {
		return Decision{}, err
	}

	if !decision.Allowed() {
		s.logger.InfoContext(ctx, "residency enforcement",
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", req.TenantID,
			"jurisdiction", req.Jurisdiction,
			"action", decision.Action,
		)
	}
	if s.metrics != nil {
		s.metrics.IncDecision(string(decision.Action))
		s.metrics.ObserveEvaluate(start)
	}
	return decision, nil
}

// CreateRuleParams carries validated handler input for rule creation.
type CreateRuleParams struct {
	Jurisdiction   id.Jurisdiction
	Classification id.DataClassification
	Action         RuleAction
	RedirectTarget id.Jurisdiction
	Priority       int
}

// CreateRule persists a new active rule and its audit event atomically.
// The per-tenant ceiling is enforced by the store at creation time.
func (s *Service) CreateRule(ctx context.Context, tenantID id.TenantID, params CreateRuleParams) (*Rule, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}

	var rule *Rule
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := NewRule(
			id.RuleID(uuid.New()), tenantID,
			params.Jurisdiction, params.Classification,
			params.Action, params.RedirectTarget, params.Priority,
			requestcontext.Now(txCtx),
		)
		if err != nil {
			return err
		}

		if err := s.rules.Create(txCtx, r); err != nil {
			if errors.Is(err, sentinel.ErrLimitExceeded) {
				return dErrors.New(dErrors.CodeLimitExceeded, "tenant residency rule limit reached")
			}
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "concurrent rule mutation, re-read and retry")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create residency rule")
		}

		if err := s.auditor.RecordRuleCreated(txCtx, r); err != nil {
			return err
		}
		rule = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncRuleCreated()
	}
	return rule, nil
}

// DeactivateRule soft-deactivates a rule. Rules are immutable apart from this
// toggle; editing a rule means creating a replacement and deactivating the
// original so the audit history stays intact.
func (s *Service) DeactivateRule(ctx context.Context, tenantID id.TenantID, ruleID id.RuleID) (*Rule, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}

	now := requestcontext.Now(ctx)
	rule, err := s.rules.Execute(ctx, tenantID, ruleID,
		func(r *Rule) error {
			return r.CanDeactivate()
		},
		func(r *Rule) {
			r.ApplyDeactivation(now)
		},
	)
	if err != nil {
		return nil, wrapRuleErr(err)
	}
	return rule, nil
}

// ListRules returns all of the tenant's rules, active and inactive.
func (s *Service) ListRules(ctx context.Context, tenantID id.TenantID) ([]*Rule, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}
	rules, err := s.rules.List(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "residency rules unavailable")
	}
	return rules, nil
}

func validateRequest(req AccessRequest) error {
	if req.TenantID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}
	if req.Jurisdiction == "" {
		return dErrors.New(dErrors.CodeValidation, "jurisdiction is required")
	}
	if req.Classification == "" || req.Classification == id.ClassificationAll {
		return dErrors.New(dErrors.CodeValidation, "requests must carry a concrete data classification")
	}
	return nil
}

func wrapRuleErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "residency rule not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "concurrent rule mutation, re-read and retry")
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "residency rule store unavailable")
	}
}

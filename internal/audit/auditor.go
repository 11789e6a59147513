// Package audit turns domain decisions into immutable audit events.
//
// DecisionAuditor satisfies the auditor ports declared by the residency,
// routing, registry, deployment, and compliance services. Every record call
// is synchronous and fail-closed: the event is durably enqueued (outbox)
// before the decision is returned, and an enqueue failure fails the decision.
package audit

import (
	"context"

	"meridian/internal/compliance"
	"meridian/internal/deployment"
	"meridian/internal/registry"
	"meridian/internal/residency"
	"meridian/internal/routing"
	platformaudit "meridian/pkg/platform/audit"
	"meridian/pkg/requestcontext"
)

// Emitter is the fail-closed publisher the auditor hands events to.
type Emitter interface {
	Emit(ctx context.Context, event platformaudit.Event) error
}

// DecisionAuditor records sovereignty decisions and policy lifecycle events.
type DecisionAuditor struct {
	publisher Emitter
}

func NewDecisionAuditor(publisher Emitter) *DecisionAuditor {
	return &DecisionAuditor{publisher: publisher}
}

// RecordResidency records a residency evaluation outcome. Enforcement
// outcomes emit residency.violation; allows emit residency.decision so the
// trail covers permitted access too.
func (a *DecisionAuditor) RecordResidency(ctx context.Context, req residency.AccessRequest, decision residency.Decision) error {
	action := platformaudit.EventResidencyViolation
	if decision.Allowed() {
		action = platformaudit.EventResidencyDecision
	}

	subject := ""
	if decision.RuleID != nil {
		subject = decision.RuleID.String()
	}

	return a.publisher.Emit(ctx, platformaudit.Event{
		Timestamp:    requestcontext.Now(ctx),
		TenantID:     req.TenantID,
		Jurisdiction: req.Jurisdiction.String(),
		Action:       string(action),
		Subject:      subject,
		Decision:     string(decision.Action),
		Reason:       req.Classification.String(),
		RequestID:    requestcontext.RequestID(ctx),
	})
}

// RecordRuleCreated records a new residency rule.
func (a *DecisionAuditor) RecordRuleCreated(ctx context.Context, rule *residency.Rule) error {
	return a.publisher.Emit(ctx, platformaudit.Event{
		Timestamp:    requestcontext.Now(ctx),
		TenantID:     rule.TenantID,
		Jurisdiction: rule.Jurisdiction.String(),
		Action:       string(platformaudit.EventRuleCreated),
		Subject:      rule.ID.String(),
		Decision:     string(rule.Action),
		Reason:       rule.Classification.String(),
		RequestID:    requestcontext.RequestID(ctx),
	})
}

// RecordRouting records a routing decision, selected or not.
func (a *DecisionAuditor) RecordRouting(ctx context.Context, req routing.RouteRequest, decision routing.RoutingDecision) error {
	selected := ""
	if decision.SelectedDeploymentID != nil {
		selected = decision.SelectedDeploymentID.String()
	}

	return a.publisher.Emit(ctx, platformaudit.Event{
		Timestamp:    requestcontext.Now(ctx),
		TenantID:     req.TenantID,
		Jurisdiction: decision.Jurisdiction.String(),
		Action:       string(platformaudit.EventRoutingDecision),
		Subject:      req.ModelRef.String(),
		Decision:     selected,
		Reason:       decision.Reason,
		RequestID:    requestcontext.RequestID(ctx),
	})
}

// RecordModelRegistered records a new sovereign model registration.
func (a *DecisionAuditor) RecordModelRegistered(ctx context.Context, model *registry.SovereignModel) error {
	return a.publisher.Emit(ctx, platformaudit.Event{
		Timestamp:    requestcontext.Now(ctx),
		TenantID:     model.TenantID,
		Jurisdiction: model.Jurisdiction.String(),
		Action:       string(platformaudit.EventModelRegistered),
		Subject:      model.ModelRef.String(),
		Decision:     string(model.Status),
		RequestID:    requestcontext.RequestID(ctx),
	})
}

// RecordModelApproved records an approval transition.
func (a *DecisionAuditor) RecordModelApproved(ctx context.Context, model *registry.SovereignModel) error {
	return a.publisher.Emit(ctx, platformaudit.Event{
		Timestamp:    requestcontext.Now(ctx),
		TenantID:     model.TenantID,
		Jurisdiction: model.Jurisdiction.String(),
		Action:       string(platformaudit.EventModelApproved),
		Subject:      model.ModelRef.String(),
		Decision:     string(model.Status),
		RequestID:    requestcontext.RequestID(ctx),
	})
}

// RecordDeploymentInitiated records a deployment entering Provisioning.
func (a *DecisionAuditor) RecordDeploymentInitiated(ctx context.Context, dep *deployment.RegionalDeployment) error {
	return a.publisher.Emit(ctx, platformaudit.Event{
		Timestamp:    requestcontext.Now(ctx),
		TenantID:     dep.TenantID,
		Jurisdiction: dep.Jurisdiction.String(),
		Action:       string(platformaudit.EventDeploymentInitiated),
		Subject:      dep.ID.String(),
		Decision:     string(dep.Status),
		Reason:       dep.Region,
		RequestID:    requestcontext.RequestID(ctx),
	})
}

// RecordDeploymentActive records a deployment passing its health check.
func (a *DecisionAuditor) RecordDeploymentActive(ctx context.Context, dep *deployment.RegionalDeployment) error {
	return a.publisher.Emit(ctx, platformaudit.Event{
		Timestamp:    requestcontext.Now(ctx),
		TenantID:     dep.TenantID,
		Jurisdiction: dep.Jurisdiction.String(),
		Action:       string(platformaudit.EventDeploymentActive),
		Subject:      dep.ID.String(),
		Decision:     string(dep.Status),
		Reason:       dep.Region,
		RequestID:    requestcontext.RequestID(ctx),
	})
}

// RecordMappingCreated records a new compliance map.
func (a *DecisionAuditor) RecordMappingCreated(ctx context.Context, m *compliance.ComplianceMap) error {
	return a.publisher.Emit(ctx, platformaudit.Event{
		Timestamp:    requestcontext.Now(ctx),
		Jurisdiction: m.Jurisdiction.String(),
		Action:       string(platformaudit.EventMappingCreated),
		Subject:      m.ID.String(),
		Reason:       m.LegalFramework,
		RequestID:    requestcontext.RequestID(ctx),
	})
}

// Compile-time checks that the auditor satisfies every module port.
var (
	_ residency.Auditor  = (*DecisionAuditor)(nil)
	_ routing.Auditor    = (*DecisionAuditor)(nil)
	_ registry.Auditor   = (*DecisionAuditor)(nil)
	_ deployment.Auditor = (*DecisionAuditor)(nil)
	_ compliance.Auditor = (*DecisionAuditor)(nil)
)

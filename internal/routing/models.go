package routing

import (
	"time"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// Strategy controls how the resolver reacts when the primary deployment is
// not compliant.
type Strategy string

const (
	// StrategyStrict fails the request rather than route anywhere but the
	// primary deployment.
	StrategyStrict Strategy = "strict"

	// StrategyPreferred tries the primary first, then the declared fallback
	// sequence in order.
	StrategyPreferred Strategy = "preferred"

	// StrategyFallback is accepted on the wire as an alias of preferred.
	StrategyFallback Strategy = "fallback"
)

// ParseStrategy validates a wire strategy. Fallback normalizes to preferred;
// the two names describe the same resolution behavior.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyStrict:
		return StrategyStrict, nil
	case StrategyPreferred, StrategyFallback:
		return StrategyPreferred, nil
	default:
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid routing strategy %q", s)
	}
}

// Resolution reasons surfaced on decisions. Fallback selections carry
// "fallback:<index>" with the zero-based position in the declared sequence.
const (
	ReasonPrimary      = "primary"
	ReasonNoCompliant  = "no_compliant_deployment"
	fallbackReasonBase = "fallback:"
)

// RoutingPolicy declares where a jurisdiction's traffic goes. One policy per
// (tenant, jurisdiction).
//
/// Invariants:
//   - a strict policy declares no fallback sequence
//   - the primary deployment is always required; the fallback sequence is
//     ordered first-preferred-first and may be empty
type RoutingPolicy struct {
	ID                    id.PolicyID
	TenantID              id.TenantID
	Jurisdiction          id.Jurisdiction
	Strategy              Strategy
	PrimaryDeploymentID   id.DeploymentID
	FallbackDeploymentIDs []id.DeploymentID
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func NewRoutingPolicy(policyID id.PolicyID, tenantID id.TenantID, jurisdiction id.Jurisdiction,
	strategy Strategy, primary id.DeploymentID, fallbacks []id.DeploymentID, now time.Time) (*RoutingPolicy, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}
	if jurisdiction == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "jurisdiction is required")
	}
	if primary.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "primary deployment is required")
	}
	if strategy == StrategyStrict && len(fallbacks) > 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "strict policies must not declare fallback deployments")
	}
	for _, f := range fallbacks {
		if f.IsNil() {
			return nil, dErrors.New(dErrors.CodeValidation, "fallback deployment IDs must be non-nil")
		}
	}
	return &RoutingPolicy{
		ID:                    policyID,
		TenantID:              tenantID,
		Jurisdiction:          jurisdiction,
		Strategy:              strategy,
		PrimaryDeploymentID:   primary,
		FallbackDeploymentIDs: fallbacks,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// RouteRequest asks where to send an inference call for a model in a
// jurisdiction.
type RouteRequest struct {
	TenantID     id.TenantID
	Jurisdiction id.Jurisdiction
	ModelRef     id.ModelRef
}

// RoutingDecision is the resolver's output. A nil SelectedDeploymentID means
// no compliant deployment exists; that is a decision outcome the caller must
// surface, not an internal error.
type RoutingDecision struct {
	Jurisdiction         id.Jurisdiction
	SelectedDeploymentID *id.DeploymentID
	StrategyUsed         Strategy
	Reason               string
	ResolvedAt           time.Time
}

// Selected reports whether the decision names a deployment.
func (d RoutingDecision) Selected() bool {
	return d.SelectedDeploymentID != nil
}

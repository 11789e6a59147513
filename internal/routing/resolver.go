package routing

import (
	"strconv"
	"time"

	"meridian/internal/deployment"
	id "meridian/pkg/domain"
)

// Resolver applies a routing policy to a snapshot of deployment health and
// model approval. It is pure: no I/O, no clock reads, deterministic output
// for a fixed snapshot. The service owns loading the snapshot and auditing
// the result.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve picks a deployment for the jurisdiction.
//
// The primary is tried first regardless of strategy. Under strict, a
// non-compliant primary is a hard failure. Under preferred, the fallback
// sequence is walked in its declared order; candidate freshness never breaks
// ties. A deployment qualifies only if it is Active in the snapshot and the
// model is approved for the jurisdiction. No qualifying candidate yields a
// nil selection with reason "no_compliant_deployment" under every strategy.
func (r *Resolver) Resolve(policy *RoutingPolicy, candidates []*deployment.RegionalDeployment,
	modelUsable bool, now time.Time) RoutingDecision {

	decision := RoutingDecision{
		Jurisdiction: policy.Jurisdiction,
		StrategyUsed: policy.Strategy,
		Reason:       ReasonNoCompliant,
		ResolvedAt:   now,
	}

	byID := make(map[id.DeploymentID]*deployment.RegionalDeployment, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	eligible := func(depID id.DeploymentID) bool {
		dep, ok := byID[depID]
		return ok && dep.Routable() && modelUsable
	}

	if eligible(policy.PrimaryDeploymentID) {
		primary := policy.PrimaryDeploymentID
		decision.SelectedDeploymentID = &primary
		decision.Reason = ReasonPrimary
		return decision
	}

	if policy.Strategy == StrategyStrict {
		return decision
	}

	for i, fallbackID := range policy.FallbackDeploymentIDs {
		if eligible(fallbackID) {
			selected := fallbackID
			decision.SelectedDeploymentID = &selected
			decision.Reason = fallbackReasonBase + strconv.Itoa(i)
			return decision
		}
	}
	return decision
}

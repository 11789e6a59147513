package handler

import (
	"time"

	"meridian/internal/routing"
)

// DecisionResponse is the HTTP response body for POST /routing/route.
type DecisionResponse struct {
	Jurisdiction         string    `json:"jurisdiction"`
	SelectedDeploymentID string    `json:"selected_deployment_id,omitempty"`
	StrategyUsed         string    `json:"strategy_used"`
	Reason               string    `json:"reason"`
	ResolvedAt           time.Time `json:"resolved_at"`
}

// FromDecision converts a domain decision to its wire shape.
func FromDecision(d routing.RoutingDecision) DecisionResponse {
	resp := DecisionResponse{
		Jurisdiction: d.Jurisdiction.String(),
		StrategyUsed: string(d.StrategyUsed),
		Reason:       d.Reason,
		ResolvedAt:   d.ResolvedAt,
	}
	if d.SelectedDeploymentID != nil {
		resp.SelectedDeploymentID = d.SelectedDeploymentID.String()
	}
	return resp
}

// PolicyResponse is the wire shape of a routing policy.
type PolicyResponse struct {
	ID                    string    `json:"id"`
	Jurisdiction          string    `json:"jurisdiction"`
	Strategy              string    `json:"strategy"`
	PrimaryDeploymentID   string    `json:"primary_deployment_id"`
	FallbackDeploymentIDs []string  `json:"fallback_deployment_ids"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// FromPolicy converts a domain policy to its wire shape.
func FromPolicy(p *routing.RoutingPolicy) PolicyResponse {
	fallbacks := make([]string, 0, len(p.FallbackDeploymentIDs))
	for _, depID := range p.FallbackDeploymentIDs {
		fallbacks = append(fallbacks, depID.String())
	}
	return PolicyResponse{
		ID:                    p.ID.String(),
		Jurisdiction:          p.Jurisdiction.String(),
		Strategy:              string(p.Strategy),
		PrimaryDeploymentID:   p.PrimaryDeploymentID.String(),
		FallbackDeploymentIDs: fallbacks,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

// FromPolicies converts a policy list to its wire shape.
func FromPolicies(policies []*routing.RoutingPolicy) []PolicyResponse {
	out := make([]PolicyResponse, 0, len(policies))
	for _, p := range policies {
		out = append(out, FromPolicy(p))
	}
	return out
}

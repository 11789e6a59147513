package routing

import (
	"context"

	id "meridian/pkg/domain"
)

// PolicyStore persists routing policies, one per (tenant, jurisdiction).
//
// Implementations return sentinel.ErrNotFound for missing policies and
// sentinel.ErrConflict when a policy already exists for the jurisdiction.
type PolicyStore interface {
	// Create persists a new policy.
	Create(ctx context.Context, policy *RoutingPolicy) error

	// GetByJurisdiction returns the tenant's policy for one jurisdiction.
	GetByJurisdiction(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) (*RoutingPolicy, error)

	// List returns all of the tenant's policies.
	List(ctx context.Context, tenantID id.TenantID) ([]*RoutingPolicy, error)
}

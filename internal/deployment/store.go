package deployment

import (
	"context"

	id "meridian/pkg/domain"
)

// DeploymentStore persists regional deployments.
//
// Implementations return sentinel.ErrNotFound for missing deployments and
// sentinel.ErrConflict for concurrent mutation conflicts.
type DeploymentStore interface {
	// Create persists a new deployment.
	Create(ctx context.Context, dep *RegionalDeployment) error

	// Get returns one deployment owned by the tenant.
	Get(ctx context.Context, tenantID id.TenantID, depID id.DeploymentID) (*RegionalDeployment, error)

	// ListCandidates returns the tenant's non-terminal deployments in the
	// jurisdiction, in no guaranteed order.
	ListCandidates(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*RegionalDeployment, error)

	// List returns all of the tenant's deployments.
	List(ctx context.Context, tenantID id.TenantID) ([]*RegionalDeployment, error)

	// Execute loads the deployment, runs validate, and persists the result of
	// apply. The whole sequence runs under the store's concurrency control so
	// no other writer can interleave between validate and apply.
	Execute(ctx context.Context, tenantID id.TenantID, depID id.DeploymentID,
		validate func(*RegionalDeployment) error,
		apply func(*RegionalDeployment),
	) (*RegionalDeployment, error)
}

package routing

import (
	"context"

	"meridian/internal/deployment"
	id "meridian/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// DeploymentHealthView is the router's read model of regional deployment
// liveness. Implementations return non-terminal deployments in no guaranteed
// order; the resolver treats only Active as eligible.
type DeploymentHealthView interface {
	ListCandidates(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*deployment.RegionalDeployment, error)
}

// ApprovalChecker answers whether a model may serve traffic in a
// jurisdiction. Absence of an approval is not-usable.
type ApprovalChecker interface {
	IsUsable(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction) (bool, error)
}

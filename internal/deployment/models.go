package deployment

import (
	"fmt"
	"time"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// DeploymentStatus is the lifecycle state of a regional deployment.
type DeploymentStatus string

const (
	StatusProvisioning DeploymentStatus = "provisioning"
	StatusActive       DeploymentStatus = "active"
	StatusDegraded     DeploymentStatus = "degraded"
	StatusTerminating  DeploymentStatus = "terminating"
	StatusTerminated   DeploymentStatus = "terminated"
)

// allowedTransitions is the single source of truth for the deployment
// lifecycle. Terminated is terminal. Health flaps move Active and Degraded
// back and forth; decommission goes through Terminating.
var allowedTransitions = map[DeploymentStatus][]DeploymentStatus{
	StatusProvisioning: {StatusActive, StatusTerminating},
	StatusActive:       {StatusDegraded, StatusTerminating},
	StatusDegraded:     {StatusActive, StatusTerminating},
	StatusTerminating:  {StatusTerminated},
	StatusTerminated:   {},
}

func ParseDeploymentStatus(s string) (DeploymentStatus, error) {
	switch DeploymentStatus(s) {
	case StatusProvisioning, StatusActive, StatusDegraded, StatusTerminating, StatusTerminated:
		return DeploymentStatus(s), nil
	default:
		return "", dErrors.Newf(dErrors.CodeValidation, "invalid deployment status %q", s)
	}
}

// CanTransitionTo reports whether the lifecycle permits moving to next.
func (s DeploymentStatus) CanTransitionTo(next DeploymentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s DeploymentStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// RegionalDeployment is a model-serving deployment pinned to one
// jurisdiction. Region and namespace locate it in the serving substrate;
// routing only ever reads jurisdiction and status.
type RegionalDeployment struct {
	ID              id.DeploymentID
	TenantID        id.TenantID
	Jurisdiction    id.Jurisdiction
	Region          string
	Namespace       string
	Status          DeploymentStatus
	HealthCheckedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewRegionalDeployment(depID id.DeploymentID, tenantID id.TenantID, jurisdiction id.Jurisdiction,
	region, namespace string, now time.Time) (*RegionalDeployment, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}
	if jurisdiction == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "jurisdiction is required")
	}
	if region == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "region is required")
	}
	if namespace == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "namespace is required")
	}
	return &RegionalDeployment{
		ID:           depID,
		TenantID:     tenantID,
		Jurisdiction: jurisdiction,
		Region:       region,
		Namespace:    namespace,
		Status:       StatusProvisioning,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CanTransition validates a lifecycle move without applying it.
func (d *RegionalDeployment) CanTransition(to DeploymentStatus) error {
	if !d.Status.CanTransitionTo(to) {
		return dErrors.New(dErrors.CodeInvalidTransition,
			fmt.Sprintf("cannot transition deployment from %s to %s", d.Status, to))
	}
	return nil
}

// ApplyTransition moves the deployment to the new status. Transitions driven
// by health checks stamp HealthCheckedAt. Callers must have validated with
// CanTransition first.
func (d *RegionalDeployment) ApplyTransition(to DeploymentStatus, now time.Time) {
	d.Status = to
	d.UpdatedAt = now
	if to == StatusActive || to == StatusDegraded {
		d.HealthCheckedAt = now
	}
}

// Routable reports whether the router may select this deployment.
func (d *RegionalDeployment) Routable() bool {
	return d.Status == StatusActive
}

package handler

import (
	"time"

	"meridian/internal/deployment"
)

// DeploymentResponse is the wire shape of a regional deployment.
type DeploymentResponse struct {
	ID              string     `json:"id"`
	Jurisdiction    string     `json:"jurisdiction"`
	Region          string     `json:"region"`
	Namespace       string     `json:"namespace"`
	Status          string     `json:"status"`
	HealthCheckedAt *time.Time `json:"health_checked_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FromDeployment converts a domain deployment to its wire shape.
func FromDeployment(d *deployment.RegionalDeployment) DeploymentResponse {
	resp := DeploymentResponse{
		ID:           d.ID.String(),
		Jurisdiction: d.Jurisdiction.String(),
		Region:       d.Region,
		Namespace:    d.Namespace,
		Status:       string(d.Status),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if !d.HealthCheckedAt.IsZero() {
		t := d.HealthCheckedAt
		resp.HealthCheckedAt = &t
	}
	return resp
}

// FromDeployments converts a deployment list to its wire shape.
func FromDeployments(deps []*deployment.RegionalDeployment) []DeploymentResponse {
	out := make([]DeploymentResponse, 0, len(deps))
	for _, d := range deps {
		out = append(out, FromDeployment(d))
	}
	return out
}

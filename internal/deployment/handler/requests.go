package handler

import (
	"strings"

	"meridian/internal/deployment"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// DeployRequest is the HTTP request body for POST /deployments.
type DeployRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	Region       string `json:"region"`
	Namespace    string `json:"namespace"`

	// Parsed values (populated by Validate)
	parsedJurisdiction id.Jurisdiction
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *DeployRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	jurisdiction, err := id.ParseJurisdiction(strings.TrimSpace(r.Jurisdiction))
	if err != nil {
		return err
	}
	r.parsedJurisdiction = jurisdiction

	r.Region = strings.TrimSpace(r.Region)
	if r.Region == "" {
		return dErrors.New(dErrors.CodeValidation, "region is required")
	}

	r.Namespace = strings.TrimSpace(r.Namespace)
	if r.Namespace == "" {
		return dErrors.New(dErrors.CodeValidation, "namespace is required")
	}

	return nil
}

func (r *DeployRequest) ParsedJurisdiction() id.Jurisdiction { return r.parsedJurisdiction }

// TransitionRequest is the HTTP request body for POST /deployments/{id}/transition.
type TransitionRequest struct {
	Status string `json:"status"`

	// Parsed values (populated by Validate)
	parsedStatus deployment.DeploymentStatus
}

// Validate validates and parses the request.
func (r *TransitionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	status, err := deployment.ParseDeploymentStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return err
	}
	if status == deployment.StatusProvisioning {
		return dErrors.New(dErrors.CodeValidation, "deployments start provisioning; provisioning is not a transition target")
	}
	r.parsedStatus = status

	return nil
}

func (r *TransitionRequest) ParsedStatus() deployment.DeploymentStatus { return r.parsedStatus }

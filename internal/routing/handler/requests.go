package handler

import (
	"strings"

	"meridian/internal/routing"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// RouteRequest is the HTTP request body for POST /routing/route.
type RouteRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	ModelRef     string `json:"model_ref"`

	// Parsed values (populated by Validate)
	parsedJurisdiction id.Jurisdiction
	parsedModelRef     id.ModelRef
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RouteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	jurisdiction, err := id.ParseJurisdiction(strings.TrimSpace(r.Jurisdiction))
	if err != nil {
		return err
	}
	r.parsedJurisdiction = jurisdiction

	modelRef, err := id.ParseModelRef(strings.TrimSpace(r.ModelRef))
	if err != nil {
		return err
	}
	r.parsedModelRef = modelRef

	return nil
}

func (r *RouteRequest) ParsedJurisdiction() id.Jurisdiction { return r.parsedJurisdiction }

func (r *RouteRequest) ParsedModelRef() id.ModelRef { return r.parsedModelRef }

// CreatePolicyRequest is the HTTP request body for POST /routing/policies.
type CreatePolicyRequest struct {
	Jurisdiction          string   `json:"jurisdiction"`
	Strategy              string   `json:"strategy"`
	PrimaryDeploymentID   string   `json:"primary_deployment_id"`
	FallbackDeploymentIDs []string `json:"fallback_deployment_ids"`

	// Parsed values (populated by Validate)
	parsedJurisdiction id.Jurisdiction
	parsedStrategy     routing.Strategy
	parsedPrimary      id.DeploymentID
	parsedFallbacks    []id.DeploymentID
}

// Validate validates and parses the request.
func (r *CreatePolicyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	jurisdiction, err := id.ParseJurisdiction(strings.TrimSpace(r.Jurisdiction))
	if err != nil {
		return err
	}
	r.parsedJurisdiction = jurisdiction

	strategy, err := routing.ParseStrategy(strings.TrimSpace(r.Strategy))
	if err != nil {
		return err
	}
	r.parsedStrategy = strategy

	primary, err := id.ParseDeploymentID(strings.TrimSpace(r.PrimaryDeploymentID))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "primary_deployment_id must be a UUID")
	}
	r.parsedPrimary = primary

	r.parsedFallbacks = make([]id.DeploymentID, 0, len(r.FallbackDeploymentIDs))
	for _, raw := range r.FallbackDeploymentIDs {
		depID, err := id.ParseDeploymentID(strings.TrimSpace(raw))
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "fallback_deployment_ids must be UUIDs")
		}
		r.parsedFallbacks = append(r.parsedFallbacks, depID)
	}

	return nil
}

func (r *CreatePolicyRequest) ParsedJurisdiction() id.Jurisdiction { return r.parsedJurisdiction }

func (r *CreatePolicyRequest) ParsedStrategy() routing.Strategy { return r.parsedStrategy }

func (r *CreatePolicyRequest) ParsedPrimary() id.DeploymentID { return r.parsedPrimary }

func (r *CreatePolicyRequest) ParsedFallbacks() []id.DeploymentID { return r.parsedFallbacks }

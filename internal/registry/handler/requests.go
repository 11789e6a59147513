package handler

import (
	"strings"

	"meridian/internal/registry"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// RegisterRequest is the HTTP request body for POST /models.
type RegisterRequest struct {
	ModelRef     string `json:"model_ref"`
	Jurisdiction string `json:"jurisdiction"`

	// Parsed values (populated by Validate)
	parsedModelRef     id.ModelRef
	parsedJurisdiction id.Jurisdiction
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	modelRef, err := id.ParseModelRef(strings.TrimSpace(r.ModelRef))
	if err != nil {
		return err
	}
	r.parsedModelRef = modelRef

	jurisdiction, err := id.ParseJurisdiction(strings.TrimSpace(r.Jurisdiction))
	if err != nil {
		return err
	}
	r.parsedJurisdiction = jurisdiction

	return nil
}

func (r *RegisterRequest) ParsedModelRef() id.ModelRef { return r.parsedModelRef }

func (r *RegisterRequest) ParsedJurisdiction() id.Jurisdiction { return r.parsedJurisdiction }

// TransitionRequest is the HTTP request body for POST /models/transition.
type TransitionRequest struct {
	ModelRef     string `json:"model_ref"`
	Jurisdiction string `json:"jurisdiction"`
	Status       string `json:"status"`

	// Parsed values (populated by Validate)
	parsedModelRef     id.ModelRef
	parsedJurisdiction id.Jurisdiction
	parsedStatus       registry.ApprovalStatus
}

// Validate validates and parses the request.
func (r *TransitionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	modelRef, err := id.ParseModelRef(strings.TrimSpace(r.ModelRef))
	if err != nil {
		return err
	}
	r.parsedModelRef = modelRef

	jurisdiction, err := id.ParseJurisdiction(strings.TrimSpace(r.Jurisdiction))
	if err != nil {
		return err
	}
	r.parsedJurisdiction = jurisdiction

	status, err := registry.ParseApprovalStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return err
	}
	if status == registry.StatusPending {
		return dErrors.New(dErrors.CodeValidation, "registrations start pending; pending is not a transition target")
	}
	r.parsedStatus = status

	return nil
}

func (r *TransitionRequest) ParsedModelRef() id.ModelRef { return r.parsedModelRef }

func (r *TransitionRequest) ParsedJurisdiction() id.Jurisdiction { return r.parsedJurisdiction }

func (r *TransitionRequest) ParsedStatus() registry.ApprovalStatus { return r.parsedStatus }

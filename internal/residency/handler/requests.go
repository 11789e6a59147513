package handler

import (
	"strings"

	"meridian/internal/residency"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// EvaluateRequest is the HTTP request body for POST /residency/evaluate.
type EvaluateRequest struct {
	Jurisdiction   string `json:"jurisdiction"`
	Classification string `json:"data_classification"`
	PayloadRef     string `json:"payload_ref"`

	// Parsed values (populated by Validate)
	parsedJurisdiction   id.Jurisdiction
	parsedClassification id.DataClassification
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	jurisdiction, err := id.ParseJurisdiction(strings.TrimSpace(r.Jurisdiction))
	if err != nil {
		return err
	}
	r.parsedJurisdiction = jurisdiction

	// Wildcards are a rule concept; requests carry what the data actually is.
	classification, err := id.ParseDataClassification(strings.TrimSpace(r.Classification), false)
	if err != nil {
		return err
	}
	r.parsedClassification = classification

	return nil
}

func (r *EvaluateRequest) ParsedJurisdiction() id.Jurisdiction { return r.parsedJurisdiction }

func (r *EvaluateRequest) ParsedClassification() id.DataClassification {
	return r.parsedClassification
}

// CreateRuleRequest is the HTTP request body for POST /residency/rules.
type CreateRuleRequest struct {
	Jurisdiction   string `json:"jurisdiction"`
	Classification string `json:"data_classification"`
	Action         string `json:"action"`
	RedirectTarget string `json:"redirect_target"`
	Priority       int    `json:"priority"`

	// Parsed values (populated by Validate)
	parsedJurisdiction   id.Jurisdiction
	parsedClassification id.DataClassification
	parsedAction         residency.RuleAction
	parsedRedirect       id.Jurisdiction
}

// Validate validates and parses the request.
func (r *CreateRuleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	jurisdiction, err := id.ParseJurisdiction(strings.TrimSpace(r.Jurisdiction))
	if err != nil {
		return err
	}
	r.parsedJurisdiction = jurisdiction

	classification, err := id.ParseDataClassification(strings.TrimSpace(r.Classification), true)
	if err != nil {
		return err
	}
	r.parsedClassification = classification

	action, err := residency.ParseRuleAction(strings.TrimSpace(r.Action))
	if err != nil {
		return err
	}
	r.parsedAction = action

	if target := strings.TrimSpace(r.RedirectTarget); target != "" {
		redirect, err := id.ParseJurisdiction(target)
		if err != nil {
			return err
		}
		r.parsedRedirect = redirect
	}

	if r.Priority < 0 {
		return dErrors.New(dErrors.CodeValidation, "priority must not be negative")
	}

	return nil
}

func (r *CreateRuleRequest) ParsedJurisdiction() id.Jurisdiction { return r.parsedJurisdiction }

func (r *CreateRuleRequest) ParsedClassification() id.DataClassification {
	return r.parsedClassification
}

func (r *CreateRuleRequest) ParsedAction() residency.RuleAction { return r.parsedAction }

func (r *CreateRuleRequest) ParsedRedirectTarget() id.Jurisdiction { return r.parsedRedirect }

package handler

import (
	"strings"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// CreateMappingRequest is the HTTP request body for POST /compliance/maps.
type CreateMappingRequest struct {
	Jurisdiction       string   `json:"jurisdiction"`
	LegalFramework     string   `json:"legal_framework"`
	Requirements       []string `json:"requirements"`
	EncryptionRequired bool     `json:"encryption_required"`
	RetentionDays      int      `json:"retention_days"`

	// Parsed values (populated by Validate)
	parsedJurisdiction id.Jurisdiction
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateMappingRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	jurisdiction, err := id.ParseJurisdiction(strings.TrimSpace(r.Jurisdiction))
	if err != nil {
		return err
	}
	r.parsedJurisdiction = jurisdiction

	r.LegalFramework = strings.TrimSpace(r.LegalFramework)
	if r.LegalFramework == "" {
		return dErrors.New(dErrors.CodeValidation, "legal_framework is required")
	}

	if r.RetentionDays < 0 {
		return dErrors.New(dErrors.CodeValidation, "retention_days must not be negative")
	}

	return nil
}

func (r *CreateMappingRequest) ParsedJurisdiction() id.Jurisdiction { return r.parsedJurisdiction }

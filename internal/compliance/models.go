package compliance

import (
	"time"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// ComplianceMap describes what a jurisdiction's legal framework demands of
// data handling there. Maps are platform-level reference data keyed by
// jurisdiction, not tenant-owned.
type ComplianceMap struct {
	ID                 id.MappingID
	Jurisdiction       id.Jurisdiction
	LegalFramework     string
	Requirements       []string
	EncryptionRequired bool
	RetentionDays      int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewComplianceMap(mappingID id.MappingID, jurisdiction id.Jurisdiction, framework string,
	requirements []string, encryptionRequired bool, retentionDays int, now time.Time) (*ComplianceMap, error) {
	if jurisdiction == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "jurisdiction is required")
	}
	if framework == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "legal framework is required")
	}
	if retentionDays < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "retention days must not be negative")
	}
	return &ComplianceMap{
		ID:                 mappingID,
		Jurisdiction:       jurisdiction,
		LegalFramework:     framework,
		Requirements:       requirements,
		EncryptionRequired: encryptionRequired,
		RetentionDays:      retentionDays,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

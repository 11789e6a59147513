package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "meridian/pkg/domain-errors"
)

// Jurisdiction is an ISO-3166-1 alpha-2 country code or a recognized regional
// code (EU, APAC) governing applicable data-sovereignty rules.
//
// Invariant: uppercase, 2-8 ASCII letters. The service does not maintain a
// country allowlist; jurisdictions are tenant-configured and validated for
// format only.
type Jurisdiction string

// Recognized regional codes beyond plain country codes.
const (
	JurisdictionEU   Jurisdiction = "EU"
	JurisdictionAPAC Jurisdiction = "APAC"
)

// ParseJurisdiction constructs a Jurisdiction from external input.
//
// Errors: CodeValidation when the value is empty or not a plausible code.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 || len(s) > 8 {
		return "", dErrors.New(dErrors.CodeValidation, "jurisdiction must be an ISO 3166-1 alpha-2 or region code")
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", dErrors.New(dErrors.CodeValidation, "jurisdiction must contain only letters")
		}
	}
	return Jurisdiction(s), nil
}

func (j Jurisdiction) String() string { return string(j) }

// DataClassification is the sensitivity tier of data subject to residency rules.
type DataClassification string

const (
	ClassificationPII       DataClassification = "pii"
	ClassificationFinancial DataClassification = "financial"
	ClassificationHealth    DataClassification = "health"
	ClassificationBiometric DataClassification = "biometric"
	// ClassificationAll is a rule-side wildcard: a rule classified "all"
	// matches a request of any classification. Requests themselves must carry
	// a concrete classification.
	ClassificationAll DataClassification = "all"
)

var validClassifications = map[DataClassification]bool{
	ClassificationPII:       true,
	ClassificationFinancial: true,
	ClassificationHealth:    true,
	ClassificationBiometric: true,
	ClassificationAll:       true,
}

// ParseDataClassification constructs a DataClassification from external input.
// Set allowWildcard when parsing rule definitions; request classifications must
// be concrete.
func ParseDataClassification(s string, allowWildcard bool) (DataClassification, error) {
	c := DataClassification(strings.ToLower(strings.TrimSpace(s)))
	if !validClassifications[c] {
		return "", dErrors.New(dErrors.CodeValidation, "unknown data classification")
	}
	if c == ClassificationAll && !allowWildcard {
		return "", dErrors.New(dErrors.CodeValidation, "requests must carry a concrete data classification")
	}
	return c, nil
}

func (c DataClassification) String() string { return string(c) }

// Matches reports whether a rule carrying classification c applies to a
// request classified as req.
func (c DataClassification) Matches(req DataClassification) bool {
	return c == ClassificationAll || c == req
}

// ModelRef is an opaque cross-service model identifier (a UUID minted by the
// model registry). It is validated for format only and never dereferenced
// here; resolving it belongs to the registry service.
type ModelRef string

// ParseModelRef validates the identifier format.
func ParseModelRef(s string) (ModelRef, error) {
	s = strings.TrimSpace(s)
	if _, err := uuid.Parse(s); err != nil {
		return "", dErrors.New(dErrors.CodeValidation, "model_ref must be a UUID")
	}
	return ModelRef(s), nil
}

func (m ModelRef) String() string { return string(m) }

package handler

import (
	"time"

	"meridian/internal/compliance"
)

// MapResponse is the wire shape of a compliance map.
type MapResponse struct {
	ID                 string    `json:"id"`
	Jurisdiction       string    `json:"jurisdiction"`
	LegalFramework     string    `json:"legal_framework"`
	Requirements       []string  `json:"requirements"`
	EncryptionRequired bool      `json:"encryption_required"`
	RetentionDays      int       `json:"retention_days"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// FromMap converts a domain compliance map to its wire shape.
func FromMap(m *compliance.ComplianceMap) MapResponse {
	return MapResponse{
		ID:                 m.ID.String(),
		Jurisdiction:       m.Jurisdiction.String(),
		LegalFramework:     m.LegalFramework,
		Requirements:       m.Requirements,
		EncryptionRequired: m.EncryptionRequired,
		RetentionDays:      m.RetentionDays,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// FromMaps converts a map list to its wire shape.
func FromMaps(maps []*compliance.ComplianceMap) []MapResponse {
	out := make([]MapResponse, 0, len(maps))
	for _, m := range maps {
		out = append(out, FromMap(m))
	}
	return out
}

// VerifyResponse is the HTTP response body for the verify endpoint.
type VerifyResponse struct {
	Jurisdiction string `json:"jurisdiction"`
	Mapped       bool   `json:"mapped"`
}

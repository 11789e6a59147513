package compliance

import (
	"context"

	id "meridian/pkg/domain"
)

// MapStore persists compliance maps, one per jurisdiction.
//
// Implementations return sentinel.ErrNotFound for unmapped jurisdictions and
// sentinel.ErrConflict when a map already exists.
type MapStore interface {
	// Create persists a new compliance map.
	Create(ctx context.Context, m *ComplianceMap) error

	// GetByJurisdiction returns the jurisdiction's compliance map.
	GetByJurisdiction(ctx context.Context, jurisdiction id.Jurisdiction) (*ComplianceMap, error)

	// List returns all compliance maps.
	List(ctx context.Context) ([]*ComplianceMap, error)
}

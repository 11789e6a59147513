package registry

import (
	"context"

	id "meridian/pkg/domain"
)

// ModelStore persists sovereign model registrations, keyed by
// (tenant, model_ref, jurisdiction).
type ModelStore interface {
	// Create inserts a Pending registration; a second registration for the
	// same (model_ref, jurisdiction) is sentinel.ErrConflict.
	Create(ctx context.Context, model *SovereignModel) error

	// Get fetches a registration, sentinel.ErrNotFound when absent.
	Get(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction) (*SovereignModel, error)

	// ListByJurisdiction returns all registrations for one jurisdiction.
	ListByJurisdiction(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*SovereignModel, error)

	// Execute atomically validates and mutates one registration; the lock is
	// held across both callbacks.
	Execute(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction,
		validate func(*SovereignModel) error, apply func(*SovereignModel)) (*SovereignModel, error)
}

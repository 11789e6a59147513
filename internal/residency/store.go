package residency

import (
	"context"

	id "meridian/pkg/domain"
)

// RuleStore persists residency rules. Implementations enforce the per-tenant
// rule ceiling at creation time (returning sentinel.ErrLimitExceeded), not at
// evaluation time.
type RuleStore interface {
	// Create inserts a new rule, failing when the tenant is at its ceiling.
	Create(ctx context.Context, rule *Rule) error

	// ListActive returns the active rules for one tenant and jurisdiction in
	// no guaranteed order; the engine sorts its own snapshot.
	ListActive(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*Rule, error)

	// List returns all of a tenant's rules, active or not.
	List(ctx context.Context, tenantID id.TenantID) ([]*Rule, error)

	// Execute atomically validates and mutates one rule. The store holds its
	// lock (mutex or FOR UPDATE) across both callbacks, so a concurrent
	// mutation surfaces as sentinel.ErrConflict rather than a lost update.
	Execute(ctx context.Context, tenantID id.TenantID, ruleID id.RuleID,
		validate func(*Rule) error, apply func(*Rule)) (*Rule, error)
}

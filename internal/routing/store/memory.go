package store

import (
	"context"
	"sync"

	"meridian/internal/routing"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
)

type policyKey struct {
	tenantID     id.TenantID
	jurisdiction id.Jurisdiction
}

// InMemory is a mutex-guarded policy store for unit tests and local
// development.
type InMemory struct {
	mu       sync.RWMutex
	policies map[policyKey]*routing.RoutingPolicy
}

func NewInMemory() *InMemory {
	return &InMemory{
		policies: make(map[policyKey]*routing.RoutingPolicy),
	}
}

func (s *InMemory) Create(_ context.Context, policy *routing.RoutingPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := policyKey{policy.TenantID, policy.Jurisdiction}
	if _, exists := s.policies[key]; exists {
		return sentinel.ErrConflict
	}

	s.policies[key] = copyPolicy(policy)
	return nil
}

func (s *InMemory) GetByJurisdiction(_ context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) (*routing.RoutingPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy, ok := s.policies[policyKey{tenantID, jurisdiction}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyPolicy(policy), nil
}

func (s *InMemory) List(_ context.Context, tenantID id.TenantID) ([]*routing.RoutingPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*routing.RoutingPolicy
	for _, p := range s.policies {
		if p.TenantID == tenantID {
			out = append(out, copyPolicy(p))
		}
	}
	return out, nil
}

func copyPolicy(p *routing.RoutingPolicy) *routing.RoutingPolicy {
	cp := *p
	cp.FallbackDeploymentIDs = make([]id.DeploymentID, len(p.FallbackDeploymentIDs))
	copy(cp.FallbackDeploymentIDs, p.FallbackDeploymentIDs)
	return &cp
}

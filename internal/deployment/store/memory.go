package store

import (
	"context"
	"sync"

	"meridian/internal/deployment"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded deployment store for unit tests and local
// development.
type InMemory struct {
	mu          sync.RWMutex
	deployments map[id.DeploymentID]*deployment.RegionalDeployment
}

func NewInMemory() *InMemory {
	return &InMemory{
		deployments: make(map[id.DeploymentID]*deployment.RegionalDeployment),
	}
}

func (s *InMemory) Create(_ context.Context, dep *deployment.RegionalDeployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.deployments[dep.ID]; exists {
		return sentinel.ErrConflict
	}

	cp := *dep
	s.deployments[dep.ID] = &cp
	return nil
}

func (s *InMemory) Get(_ context.Context, tenantID id.TenantID, depID id.DeploymentID) (*deployment.RegionalDeployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dep, ok := s.deployments[depID]
	if !ok || dep.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	cp := *dep
	return &cp, nil
}

func (s *InMemory) ListCandidates(_ context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*deployment.RegionalDeployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*deployment.RegionalDeployment
	for _, d := range s.deployments {
		if d.TenantID == tenantID && d.Jurisdiction == jurisdiction && !d.Status.Terminal() {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) List(_ context.Context, tenantID id.TenantID) ([]*deployment.RegionalDeployment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*deployment.RegionalDeployment
	for _, d := range s.deployments {
		if d.TenantID == tenantID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, tenantID id.TenantID, depID id.DeploymentID,
	validate func(*deployment.RegionalDeployment) error, apply func(*deployment.RegionalDeployment)) (*deployment.RegionalDeployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dep, ok := s.deployments[depID]
	if !ok || dep.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}

	if err := validate(dep); err != nil {
		return nil, err
	}
	apply(dep)

	cp := *dep
	return &cp, nil
}

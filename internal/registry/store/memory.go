package store

import (
	"context"
	"sync"

	"meridian/internal/registry"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
)

type key struct {
	tenant       id.TenantID
	modelRef     id.ModelRef
	jurisdiction id.Jurisdiction
}

// InMemory is a mutex-guarded model registration store for unit tests and
// local development.
type InMemory struct {
	mu     sync.RWMutex
	models map[key]*registry.SovereignModel
}

func NewInMemory() *InMemory {
	return &InMemory{models: make(map[key]*registry.SovereignModel)}
}

func (s *InMemory) Create(_ context.Context, model *registry.SovereignModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{model.TenantID, model.ModelRef, model.Jurisdiction}
	if _, exists := s.models[k]; exists {
		return sentinel.ErrConflict
	}
	cp := *model
	s.models[k] = &cp
	return nil
}

func (s *InMemory) Get(_ context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction) (*registry.SovereignModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model, ok := s.models[key{tenantID, modelRef, jurisdiction}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *model
	return &cp, nil
}

func (s *InMemory) ListByJurisdiction(_ context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*registry.SovereignModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*registry.SovereignModel
	for _, m := range s.models {
		if m.TenantID == tenantID && m.Jurisdiction == jurisdiction {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction,
	validate func(*registry.SovereignModel) error, apply func(*registry.SovereignModel)) (*registry.SovereignModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	model, ok := s.models[key{tenantID, modelRef, jurisdiction}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	if err := validate(model); err != nil {
		return nil, err
	}
	apply(model)

	cp := *model
	return &cp, nil
}

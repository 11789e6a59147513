package store

import (
	"context"
	"sync"

	"meridian/internal/compliance"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded compliance map store for unit tests and local
// development.
type InMemory struct {
	mu   sync.RWMutex
	maps map[id.Jurisdiction]*compliance.ComplianceMap
}

func NewInMemory() *InMemory {
	return &InMemory{
		maps: make(map[id.Jurisdiction]*compliance.ComplianceMap),
	}
}

func (s *InMemory) Create(_ context.Context, m *compliance.ComplianceMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.maps[m.Jurisdiction]; exists {
		return sentinel.ErrConflict
	}

	s.maps[m.Jurisdiction] = copyMap(m)
	return nil
}

func (s *InMemory) GetByJurisdiction(_ context.Context, jurisdiction id.Jurisdiction) (*compliance.ComplianceMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.maps[jurisdiction]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyMap(m), nil
}

func (s *InMemory) List(_ context.Context) ([]*compliance.ComplianceMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*compliance.ComplianceMap
	for _, m := range s.maps {
		out = append(out, copyMap(m))
	}
	return out, nil
}

func copyMap(m *compliance.ComplianceMap) *compliance.ComplianceMap {
	cp := *m
	cp.Requirements = make([]string, len(m.Requirements))
	copy(cp.Requirements, m.Requirements)
	return &cp
}

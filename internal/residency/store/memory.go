package store

import (
	"context"
	"sync"

	"meridian/internal/residency"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded rule store for unit tests and local development.
type InMemory struct {
	mu      sync.RWMutex
	rules   map[id.RuleID]*residency.Rule
	ceiling int
}

// NewInMemory constructs an in-memory store with the given per-tenant ceiling.
func NewInMemory(ceiling int) *InMemory {
	return &InMemory{
		rules:   make(map[id.RuleID]*residency.Rule),
		ceiling: ceiling,
	}
}

func (s *InMemory) Create(_ context.Context, rule *residency.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.rules {
		if r.TenantID == rule.TenantID {
			count++
		}
	}
	if count >= s.ceiling {
		return sentinel.ErrLimitExceeded
	}

	if _, exists := s.rules[rule.ID]; exists {
		return sentinel.ErrConflict
	}

	cp := *rule
	s.rules[rule.ID] = &cp
	return nil
}

func (s *InMemory) ListActive(_ context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*residency.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*residency.Rule
	for _, r := range s.rules {
		if r.TenantID == tenantID && r.Jurisdiction == jurisdiction && r.Active {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) List(_ context.Context, tenantID id.TenantID) ([]*residency.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*residency.Rule
	for _, r := range s.rules {
		if r.TenantID == tenantID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *InMemory) Execute(_ context.Context, tenantID id.TenantID, ruleID id.RuleID,
	validate func(*residency.Rule) error, apply func(*residency.Rule)) (*residency.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[ruleID]
	if !ok || rule.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}

	if err := validate(rule); err != nil {
		return nil, err
	}
	apply(rule)

	cp := *rule
	return &cp, nil
}

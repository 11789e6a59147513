package compliance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	compliancemetrics "meridian/internal/compliance/metrics"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
	"meridian/pkg/requestcontext"
)

// Auditor records compliance mapping events. Failures are fatal to the
// enclosing operation.
type Auditor interface {
	RecordMappingCreated(ctx context.Context, m *ComplianceMap) error
}

// Service answers what a jurisdiction legally requires of data handled
// there. Lookups are read-through cached; mutations invalidate.
type Service struct {
	maps    MapStore
	cache   Cache
	audit   Auditor
	logger  *slog.Logger
	metrics *compliancemetrics.Metrics
	tx      txcontext.Runner
}

// Option configures the Service.
type Option func(*Service)

// WithCache sets the lookup cache; defaults to no caching.
func WithCache(cache Cache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *compliancemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTx sets the transaction runner; defaults to a no-op runner suitable for
// the in-memory store.
func WithTx(runner txcontext.Runner) Option {
	return func(s *Service) { s.tx = runner }
}

func NewService(maps MapStore, audit Auditor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		maps:   maps,
		cache:  NoopCache{},
		audit:  audit,
		logger: logger,
		tx:     txcontext.NewNoopRunner(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the jurisdiction's compliance map, served from cache when a
// fresh entry exists.
func (s *Service) Get(ctx context.Context, jurisdiction id.Jurisdiction) (*ComplianceMap, error) {
	if jurisdiction == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "jurisdiction is required")
	}

	if m, ok := s.cache.Get(ctx, jurisdiction); ok {
		if s.metrics != nil {
			s.metrics.IncCacheHit()
		}
		return m, nil
	}
	if s.metrics != nil {
		s.metrics.IncCacheMiss()
	}

	m, err := s.maps.GetByJurisdiction(ctx, jurisdiction)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no compliance map for jurisdiction %s", jurisdiction)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "compliance map store unavailable")
	}

	s.cache.Set(ctx, m)
	return m, nil
}

// CreateMappingParams carries validated handler input for map creation.
type CreateMappingParams struct {
	Jurisdiction       id.Jurisdiction
	LegalFramework     string
	Requirements       []string
	EncryptionRequired bool
	RetentionDays      int
}

// CreateMapping persists a new compliance map and its audit event atomically,
// then drops any cached entry for the jurisdiction.
func (s *Service) CreateMapping(ctx context.Context, params CreateMappingParams) (*ComplianceMap, error) {
	var created *ComplianceMap
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		m, err := NewComplianceMap(id.MappingID(uuid.New()), params.Jurisdiction,
			params.LegalFramework, params.Requirements,
			params.EncryptionRequired, params.RetentionDays,
			requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.maps.Create(txCtx, m); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "compliance map already exists for jurisdiction")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create compliance map")
		}
		if err := s.audit.RecordMappingCreated(txCtx, m); err != nil {
			return err
		}
		created = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, created.Jurisdiction)
	if s.metrics != nil {
		s.metrics.IncMappingCreated()
	}
	return created, nil
}

// Verify reports whether the jurisdiction has a compliance map at all.
// Routing does not consult this; it exists for operator tooling.
func (s *Service) Verify(ctx context.Context, jurisdiction id.Jurisdiction) (bool, error) {
	_, err := s.Get(ctx, jurisdiction)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns all compliance maps, uncached.
func (s *Service) List(ctx context.Context) ([]*ComplianceMap, error) {
	maps, err := s.maps.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "compliance map store unavailable")
	}
	return maps, nil
}

package compliance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"meridian/internal/audit"
	"meridian/internal/compliance"
	"meridian/internal/compliance/store"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	platformaudit "meridian/pkg/platform/audit"
	compliancepub "meridian/pkg/platform/audit/publishers/compliance"
	auditmemory "meridian/pkg/platform/audit/store/memory"
)

// mapCache is an in-process Cache with hit/set/invalidate counters.
type mapCache struct {
	entries     map[id.Jurisdiction]*compliance.ComplianceMap
	sets        int
	invalidates int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[id.Jurisdiction]*compliance.ComplianceMap)}
}

func (c *mapCache) Get(_ context.Context, jurisdiction id.Jurisdiction) (*compliance.ComplianceMap, bool) {
	m, ok := c.entries[jurisdiction]
	return m, ok
}

func (c *mapCache) Set(_ context.Context, m *compliance.ComplianceMap) {
	c.entries[m.Jurisdiction] = m
	c.sets++
}

func (c *mapCache) Invalidate(_ context.Context, jurisdiction id.Jurisdiction) {
	delete(c.entries, jurisdiction)
	c.invalidates++
}

type ServiceSuite struct {
	suite.Suite
	maps    *store.InMemory
	cache   *mapCache
	sink    *auditmemory.Store
	service *compliance.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.maps = store.NewInMemory()
	s.cache = newMapCache()
	s.sink = auditmemory.New()
	s.service = compliance.NewService(s.maps, audit.NewDecisionAuditor(compliancepub.New(s.sink)), logger,
		compliance.WithCache(s.cache))
}

func (s *ServiceSuite) gdprParams() compliance.CreateMappingParams {
	return compliance.CreateMappingParams{
		Jurisdiction:       id.JurisdictionEU,
		LegalFramework:     "GDPR",
		Requirements:       []string{"data_minimization", "right_to_erasure"},
		EncryptionRequired: true,
		RetentionDays:      30,
	}
}

func (s *ServiceSuite) TestCreateMapping() {
	s.Run("creation audits and invalidates the cache", func() {
		created, err := s.service.CreateMapping(context.Background(), s.gdprParams())
		s.Require().NoError(err)
		s.Equal("GDPR", created.LegalFramework)

		last := s.sink.LastEvent()
		s.Equal(string(platformaudit.EventMappingCreated), last.Action)
		s.Equal(created.ID.String(), last.Subject)
		s.Equal(1, s.cache.invalidates)
	})

	s.Run("one map per jurisdiction", func() {
		_, err := s.service.CreateMapping(context.Background(), s.gdprParams())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("negative retention is invalid", func() {
		params := s.gdprParams()
		params.Jurisdiction = id.JurisdictionAPAC
		params.RetentionDays = -1
		_, err := s.service.CreateMapping(context.Background(), params)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestGet_ReadThroughCache() {
	created, err := s.service.CreateMapping(context.Background(), s.gdprParams())
	s.Require().NoError(err)

	got, err := s.service.Get(context.Background(), id.JurisdictionEU)
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal(1, s.cache.sets, "a miss populates the cache")

	got, err = s.service.Get(context.Background(), id.JurisdictionEU)
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal(1, s.cache.sets, "a hit does not re-populate")
}

func (s *ServiceSuite) TestGet_UnknownJurisdiction() {
	_, err := s.service.Get(context.Background(), id.JurisdictionAPAC)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestVerify() {
	mapped, err := s.service.Verify(context.Background(), id.JurisdictionEU)
	s.Require().NoError(err)
	s.False(mapped)

	_, err = s.service.CreateMapping(context.Background(), s.gdprParams())
	s.Require().NoError(err)

	mapped, err = s.service.Verify(context.Background(), id.JurisdictionEU)
	s.Require().NoError(err)
	s.True(mapped)
}

func (s *ServiceSuite) TestCreateMapping_AuditFailureFailsCreation() {
	s.sink.FailAppend = errors.New("outbox down")

	_, err := s.service.CreateMapping(context.Background(), s.gdprParams())
	s.Require().Error(err)
	s.Zero(s.cache.invalidates, "a failed creation must not touch the cache")
}

//go:build integration

package compliance_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"meridian/internal/compliance"
	redisclient "meridian/internal/platform/redis"
	id "meridian/pkg/domain"
	"meridian/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	rc    *containers.RedisContainer
	cache *compliance.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.rc = containers.NewRedisContainer(s.T())
	client := &redisclient.Client{Client: s.rc.Client}
	s.cache = compliance.NewRedisCache(client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.rc.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) complianceMap() *compliance.ComplianceMap {
	now := time.Now().UTC().Truncate(time.Second)
	m, err := compliance.NewComplianceMap(id.MappingID(uuid.New()), id.JurisdictionEU,
		"GDPR", []string{"data_minimization"}, true, 30, now)
	s.Require().NoError(err)
	return m
}

func (s *RedisCacheSuite) TestSetGetRoundTrip() {
	ctx := context.Background()
	m := s.complianceMap()

	_, ok := s.cache.Get(ctx, id.JurisdictionEU)
	s.False(ok, "empty cache misses")

	s.cache.Set(ctx, m)

	got, ok := s.cache.Get(ctx, id.JurisdictionEU)
	s.Require().True(ok)
	s.Equal(m.ID, got.ID)
	s.Equal(m.Requirements, got.Requirements)
	s.Equal(m.RetentionDays, got.RetentionDays)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	s.cache.Set(ctx, s.complianceMap())

	s.cache.Invalidate(ctx, id.JurisdictionEU)

	_, ok := s.cache.Get(ctx, id.JurisdictionEU)
	s.False(ok)
}

func (s *RedisCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	shortLived := compliance.NewRedisCache(&redisclient.Client{Client: s.rc.Client}, 50*time.Millisecond)
	shortLived.Set(ctx, s.complianceMap())

	s.Eventually(func() bool {
		_, ok := shortLived.Get(ctx, id.JurisdictionEU)
		return !ok
	}, time.Second, 20*time.Millisecond)
}

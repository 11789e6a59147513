package routing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"meridian/internal/deployment"
	"meridian/internal/routing"
	id "meridian/pkg/domain"
)

type ResolverSuite struct {
	suite.Suite
	resolver *routing.Resolver
	tenantID id.TenantID
	now      time.Time
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.resolver = routing.NewResolver()
	s.tenantID = id.TenantID(uuid.New())
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
}

func (s *ResolverSuite) deploymentWithStatus(status deployment.DeploymentStatus) *deployment.RegionalDeployment {
	return &deployment.RegionalDeployment{
		ID:           id.DeploymentID(uuid.New()),
		TenantID:     s.tenantID,
		Jurisdiction: id.JurisdictionEU,
		Region:       "eu-central-1",
		Namespace:    "inference",
		Status:       status,
	}
}

func (s *ResolverSuite) policy(strategy routing.Strategy, primary id.DeploymentID, fallbacks ...id.DeploymentID) *routing.RoutingPolicy {
	policy, err := routing.NewRoutingPolicy(
		id.PolicyID(uuid.New()), s.tenantID, id.JurisdictionEU,
		strategy, primary, fallbacks, s.now,
	)
	s.Require().NoError(err)
	return policy
}

func (s *ResolverSuite) TestPrimarySelectedFirst() {
	primary := s.deploymentWithStatus(deployment.StatusActive)
	fallback := s.deploymentWithStatus(deployment.StatusActive)
	policy := s.policy(routing.StrategyPreferred, primary.ID, fallback.ID)

	decision := s.resolver.Resolve(policy,
		[]*deployment.RegionalDeployment{fallback, primary}, true, s.now)

	s.Require().True(decision.Selected())
	s.Equal(primary.ID, *decision.SelectedDeploymentID)
	s.Equal(routing.ReasonPrimary, decision.Reason)
	s.Equal(s.now, decision.ResolvedAt)
}

func (s *ResolverSuite) TestStrictNeverFallsBack() {
	primary := s.deploymentWithStatus(deployment.StatusDegraded)
	other := s.deploymentWithStatus(deployment.StatusActive)
	policy := s.policy(routing.StrategyStrict, primary.ID)

	decision := s.resolver.Resolve(policy,
		[]*deployment.RegionalDeployment{primary, other}, true, s.now)

	s.False(decision.Selected())
	s.Nil(decision.SelectedDeploymentID)
	s.Equal(routing.ReasonNoCompliant, decision.Reason)
}

func (s *ResolverSuite) TestPreferredWalksFallbacksInDeclaredOrder() {
	primary := s.deploymentWithStatus(deployment.StatusDegraded)
	first := s.deploymentWithStatus(deployment.StatusActive)
	second := s.deploymentWithStatus(deployment.StatusActive)
	policy := s.policy(routing.StrategyPreferred, primary.ID, first.ID, second.ID)

	decision := s.resolver.Resolve(policy,
		[]*deployment.RegionalDeployment{second, first, primary}, true, s.now)

	s.Require().True(decision.Selected())
	s.Equal(first.ID, *decision.SelectedDeploymentID)
	s.Equal("fallback:0", decision.Reason)
}

func (s *ResolverSuite) TestFallbackSkipsIneligibleEntries() {
	primary := s.deploymentWithStatus(deployment.StatusTerminating)
	first := s.deploymentWithStatus(deployment.StatusProvisioning)
	second := s.deploymentWithStatus(deployment.StatusActive)
	policy := s.policy(routing.StrategyPreferred, primary.ID, first.ID, second.ID)

	decision := s.resolver.Resolve(policy,
		[]*deployment.RegionalDeployment{primary, first, second}, true, s.now)

	s.Require().True(decision.Selected())
	s.Equal(second.ID, *decision.SelectedDeploymentID)
	s.Equal("fallback:1", decision.Reason)
}

func (s *ResolverSuite) TestNoQualifyingCandidate() {
	primary := s.deploymentWithStatus(deployment.StatusDegraded)
	fallback := s.deploymentWithStatus(deployment.StatusDegraded)
	policy := s.policy(routing.StrategyPreferred, primary.ID, fallback.ID)

	decision := s.resolver.Resolve(policy,
		[]*deployment.RegionalDeployment{primary, fallback}, true, s.now)

	s.False(decision.Selected())
	s.Equal(routing.ReasonNoCompliant, decision.Reason)
}

func (s *ResolverSuite) TestUnapprovedModelExcludesEverything() {
	primary := s.deploymentWithStatus(deployment.StatusActive)
	fallback := s.deploymentWithStatus(deployment.StatusActive)
	policy := s.policy(routing.StrategyPreferred, primary.ID, fallback.ID)

	decision := s.resolver.Resolve(policy,
		[]*deployment.RegionalDeployment{primary, fallback}, false, s.now)

	s.False(decision.Selected())
	s.Equal(routing.ReasonNoCompliant, decision.Reason)
}

func (s *ResolverSuite) TestDeploymentAbsentFromSnapshotIsIneligible() {
	primary := s.deploymentWithStatus(deployment.StatusActive)
	policy := s.policy(routing.StrategyStrict, primary.ID)

	decision := s.resolver.Resolve(policy, nil, true, s.now)

	s.False(decision.Selected())
	s.Equal(routing.ReasonNoCompliant, decision.Reason)
}

func (s *ResolverSuite) TestDeterministicForFixedSnapshot() {
	primary := s.deploymentWithStatus(deployment.StatusDegraded)
	first := s.deploymentWithStatus(deployment.StatusActive)
	second := s.deploymentWithStatus(deployment.StatusActive)
	policy := s.policy(routing.StrategyPreferred, primary.ID, first.ID, second.ID)
	candidates := []*deployment.RegionalDeployment{primary, first, second}

	baseline := s.resolver.Resolve(policy, candidates, true, s.now)
	for i := 0; i < 10; i++ {
		decision := s.resolver.Resolve(policy, candidates, true, s.now)
		s.Equal(baseline.Reason, decision.Reason)
		s.Equal(*baseline.SelectedDeploymentID, *decision.SelectedDeploymentID)
	}
}

func (s *ResolverSuite) TestParseStrategy() {
	strategy, err := routing.ParseStrategy("fallback")
	s.Require().NoError(err)
	s.Equal(routing.StrategyPreferred, strategy)

	strategy, err = routing.ParseStrategy("strict")
	s.Require().NoError(err)
	s.Equal(routing.StrategyStrict, strategy)

	_, err = routing.ParseStrategy("round_robin")
	s.Error(err)
}

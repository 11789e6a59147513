package deployment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"meridian/internal/audit"
	"meridian/internal/deployment"
	"meridian/internal/deployment/store"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	platformaudit "meridian/pkg/platform/audit"
	compliancepub "meridian/pkg/platform/audit/publishers/compliance"
	auditmemory "meridian/pkg/platform/audit/store/memory"
)

type ServiceSuite struct {
	suite.Suite
	deployments *store.InMemory
	sink        *auditmemory.Store
	service     *deployment.Service
	tenantID    id.TenantID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.deployments = store.NewInMemory()
	s.sink = auditmemory.New()
	s.service = deployment.NewService(s.deployments, audit.NewDecisionAuditor(compliancepub.New(s.sink)), logger)
	s.tenantID = id.TenantID(uuid.New())
}

func (s *ServiceSuite) deploy() *deployment.RegionalDeployment {
	dep, err := s.service.Deploy(context.Background(), s.tenantID, deployment.DeployParams{
		Jurisdiction: id.JurisdictionEU,
		Region:       "eu-central-1",
		Namespace:    "inference",
	})
	s.Require().NoError(err)
	return dep
}

func (s *ServiceSuite) transition(depID id.DeploymentID, to deployment.DeploymentStatus) (*deployment.RegionalDeployment, error) {
	return s.service.Transition(context.Background(), s.tenantID, depID, to)
}

func (s *ServiceSuite) TestDeploy() {
	s.Run("new deployments start provisioning and unroutable", func() {
		dep := s.deploy()
		s.Equal(deployment.StatusProvisioning, dep.Status)
		s.False(dep.Routable())
		s.True(dep.HealthCheckedAt.IsZero())

		last := s.sink.LastEvent()
		s.Equal(string(platformaudit.EventDeploymentInitiated), last.Action)
		s.Equal(dep.ID.String(), last.Subject)
		s.Equal("eu-central-1", last.Reason)
	})

	s.Run("region is required", func() {
		_, err := s.service.Deploy(context.Background(), s.tenantID, deployment.DeployParams{
			Jurisdiction: id.JurisdictionEU,
			Namespace:    "inference",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestTransition_Lifecycle() {
	dep := s.deploy()

	got, err := s.transition(dep.ID, deployment.StatusActive)
	s.Require().NoError(err)
	s.True(got.Routable())
	s.False(got.HealthCheckedAt.IsZero(), "going active stamps the health check time")
	s.Equal(string(platformaudit.EventDeploymentActive), s.sink.LastEvent().Action)

	got, err = s.transition(dep.ID, deployment.StatusDegraded)
	s.Require().NoError(err)
	s.False(got.Routable())

	got, err = s.transition(dep.ID, deployment.StatusActive)
	s.Require().NoError(err, "degraded deployments recover")
	s.True(got.Routable())

	got, err = s.transition(dep.ID, deployment.StatusTerminating)
	s.Require().NoError(err)
	s.False(got.Routable())

	got, err = s.transition(dep.ID, deployment.StatusTerminated)
	s.Require().NoError(err)
	s.True(got.Status.Terminal())
}

func (s *ServiceSuite) TestTransition_Disallowed() {
	dep := s.deploy()

	s.Run("provisioning cannot degrade", func() {
		_, err := s.transition(dep.ID, deployment.StatusDegraded)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("terminated is terminal", func() {
		for _, to := range []deployment.DeploymentStatus{deployment.StatusTerminating, deployment.StatusTerminated} {
			_, err := s.transition(dep.ID, to)
			s.Require().NoError(err)
		}
		_, err := s.transition(dep.ID, deployment.StatusActive)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("unknown deployment is not found", func() {
		_, err := s.transition(id.DeploymentID(uuid.New()), deployment.StatusActive)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("foreign tenant cannot transition", func() {
		other := s.deploy()
		_, err := s.service.Transition(context.Background(), id.TenantID(uuid.New()), other.ID, deployment.StatusActive)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListCandidates_ExcludesTerminated() {
	active := s.deploy()
	_, err := s.transition(active.ID, deployment.StatusActive)
	s.Require().NoError(err)

	gone := s.deploy()
	for _, to := range []deployment.DeploymentStatus{deployment.StatusTerminating, deployment.StatusTerminated} {
		_, err := s.transition(gone.ID, to)
		s.Require().NoError(err)
	}

	candidates, err := s.service.ListCandidates(context.Background(), s.tenantID, id.JurisdictionEU)
	s.Require().NoError(err)
	s.Require().Len(candidates, 1)
	s.Equal(active.ID, candidates[0].ID)
}

func (s *ServiceSuite) TestDeploy_AuditFailureFailsDeploy() {
	s.sink.FailAppend = errors.New("outbox down")

	_, err := s.service.Deploy(context.Background(), s.tenantID, deployment.DeployParams{
		Jurisdiction: id.JurisdictionEU,
		Region:       "eu-central-1",
		Namespace:    "inference",
	})
	s.Require().Error(err)
}

func (s *ServiceSuite) TestParseDeploymentStatus() {
	for _, valid := range []string{"provisioning", "active", "degraded", "terminating", "terminated"} {
		_, err := deployment.ParseDeploymentStatus(valid)
		s.NoError(err)
	}
	_, err := deployment.ParseDeploymentStatus("paused")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

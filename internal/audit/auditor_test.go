package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"meridian/internal/audit"
	"meridian/internal/deployment"
	"meridian/internal/residency"
	"meridian/internal/routing"
	id "meridian/pkg/domain"
	platformaudit "meridian/pkg/platform/audit"
	compliancepub "meridian/pkg/platform/audit/publishers/compliance"
	auditmemory "meridian/pkg/platform/audit/store/memory"
	"meridian/pkg/requestcontext"
)

type AuditorSuite struct {
	suite.Suite
	sink     *auditmemory.Store
	auditor  *audit.DecisionAuditor
	tenantID id.TenantID
}

func TestAuditorSuite(t *testing.T) {
	suite.Run(t, new(AuditorSuite))
}

func (s *AuditorSuite) SetupTest() {
	s.sink = auditmemory.New()
	s.auditor = audit.NewDecisionAuditor(compliancepub.New(s.sink))
	s.tenantID = id.TenantID(uuid.New())
}

func (s *AuditorSuite) TestRecordResidency() {
	ctx := context.Background()
	req := residency.AccessRequest{
		TenantID:       s.tenantID,
		Jurisdiction:   id.JurisdictionEU,
		Classification: id.ClassificationPII,
	}

	s.Run("allow emits residency.decision", func() {
		err := s.auditor.RecordResidency(ctx, req, residency.Decision{Action: residency.ActionAllow})
		s.Require().NoError(err)

		last := s.sink.LastEvent()
		s.Equal(string(platformaudit.EventResidencyDecision), last.Action)
		s.Equal("allow", last.Decision)
		s.Empty(last.Subject, "implicit allows match no rule")
		s.Equal(platformaudit.CategoryCompliance, last.Category)
	})

	s.Run("enforcement emits residency.violation with the matched rule", func() {
		ruleID := id.RuleID(uuid.New())
		err := s.auditor.RecordResidency(ctx, req, residency.Decision{
			RuleID: &ruleID,
			Action: residency.ActionBlock,
		})
		s.Require().NoError(err)

		last := s.sink.LastEvent()
		s.Equal(string(platformaudit.EventResidencyViolation), last.Action)
		s.Equal("block", last.Decision)
		s.Equal(ruleID.String(), last.Subject)
		s.Equal("pii", last.Reason)
		s.Equal(platformaudit.CategoryCompliance, last.Category)
	})
}

func (s *AuditorSuite) TestRecordRouting() {
	ctx := context.Background()
	modelRef := id.ModelRef(uuid.NewString())
	req := routing.RouteRequest{
		TenantID:     s.tenantID,
		Jurisdiction: id.JurisdictionEU,
		ModelRef:     modelRef,
	}

	s.Run("a selection carries the deployment ID", func() {
		depID := id.DeploymentID(uuid.New())
		err := s.auditor.RecordRouting(ctx, req, routing.RoutingDecision{
			Jurisdiction:         id.JurisdictionEU,
			SelectedDeploymentID: &depID,
			StrategyUsed:         routing.StrategyPreferred,
			Reason:               routing.ReasonPrimary,
		})
		s.Require().NoError(err)

		last := s.sink.LastEvent()
		s.Equal(string(platformaudit.EventRoutingDecision), last.Action)
		s.Equal(modelRef.String(), last.Subject)
		s.Equal(depID.String(), last.Decision)
		s.Equal("primary", last.Reason)
		s.Equal(platformaudit.CategoryCompliance, last.Category)
	})

	s.Run("an empty selection is recorded too", func() {
		err := s.auditor.RecordRouting(ctx, req, routing.RoutingDecision{
			Jurisdiction: id.JurisdictionEU,
			StrategyUsed: routing.StrategyStrict,
			Reason:       routing.ReasonNoCompliant,
		})
		s.Require().NoError(err)

		last := s.sink.LastEvent()
		s.Empty(last.Decision)
		s.Equal(routing.ReasonNoCompliant, last.Reason)
	})
}

func (s *AuditorSuite) TestDeploymentEventsAreOperational() {
	ctx := context.Background()
	dep := &deployment.RegionalDeployment{
		ID:           id.DeploymentID(uuid.New()),
		TenantID:     s.tenantID,
		Jurisdiction: id.JurisdictionEU,
		Region:       "eu-central-1",
		Namespace:    "inference",
		Status:       deployment.StatusProvisioning,
	}

	err := s.auditor.RecordDeploymentInitiated(ctx, dep)
	s.Require().NoError(err)

	last := s.sink.LastEvent()
	s.Equal(string(platformaudit.EventDeploymentInitiated), last.Action)
	s.Equal("eu-central-1", last.Reason)
	s.Equal(platformaudit.CategoryOperations, last.Category)
}

func (s *AuditorSuite) TestTimestampDefaultsToRequestTime() {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)

	err := s.auditor.RecordResidency(ctx, residency.AccessRequest{
		TenantID:       s.tenantID,
		Jurisdiction:   id.JurisdictionEU,
		Classification: id.ClassificationPII,
	}, residency.Decision{Action: residency.ActionAllow})
	s.Require().NoError(err)
	s.Equal(at, s.sink.LastEvent().Timestamp)
}

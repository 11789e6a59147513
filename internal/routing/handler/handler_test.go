package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"meridian/internal/audit"
	"meridian/internal/deployment"
	deploymentstore "meridian/internal/deployment/store"
	"meridian/internal/registry"
	registrystore "meridian/internal/registry/store"
	"meridian/internal/routing"
	"meridian/internal/routing/handler"
	routingstore "meridian/internal/routing/store"
	id "meridian/pkg/domain"
	compliancepub "meridian/pkg/platform/audit/publishers/compliance"
	auditmemory "meridian/pkg/platform/audit/store/memory"
	"meridian/pkg/requestcontext"
	"meridian/pkg/testutil"
)

// HandlerSuite exercises the routing endpoints against the real services over
// in-memory stores, the way the composed server wires them.
type HandlerSuite struct {
	suite.Suite
	router      chi.Router
	deployments *deployment.Service
	registry    *registry.Service
	tenantID    id.TenantID
	modelRef    id.ModelRef
	now         time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auditor := audit.NewDecisionAuditor(compliancepub.New(auditmemory.New()))

	s.deployments = deployment.NewService(deploymentstore.NewInMemory(), auditor, logger)
	s.registry = registry.NewService(registrystore.NewInMemory(), auditor, logger)
	routingSvc := routing.NewService(routingstore.NewInMemory(), s.deployments, s.registry, auditor, logger)

	s.router = chi.NewRouter()
	handler.New(routingSvc, logger).Register(s.router)

	s.tenantID = id.TenantID(uuid.New())
	s.modelRef = id.ModelRef(uuid.NewString())
	s.now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	req = testutil.WithTenant(req, s.tenantID.String())
	req = testutil.WithRequestTime(req, s.now)
	return testutil.DoRequest(s.router, req)
}

func (s *HandlerSuite) activeDeployment() id.DeploymentID {
	ctx := requestcontext.WithTime(context.Background(), s.now)
	dep, err := s.deployments.Deploy(ctx, s.tenantID, deployment.DeployParams{
		Jurisdiction: id.JurisdictionEU,
		Region:       "eu-central-1",
		Namespace:    "inference",
	})
	s.Require().NoError(err)
	_, err = s.deployments.Transition(ctx, s.tenantID, dep.ID, deployment.StatusActive)
	s.Require().NoError(err)
	return dep.ID
}

func (s *HandlerSuite) approveModel() {
	ctx := context.Background()
	_, err := s.registry.Register(ctx, s.tenantID, s.modelRef, id.JurisdictionEU)
	s.Require().NoError(err)
	_, err = s.registry.Transition(ctx, s.tenantID, s.modelRef, id.JurisdictionEU, registry.StatusApproved)
	s.Require().NoError(err)
}

func (s *HandlerSuite) createPolicy(body map[string]any) handler.PolicyResponse {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/routing/policies", body)
	rr := s.do(req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[handler.PolicyResponse](s.T(), rr)
}

func (s *HandlerSuite) TestCreatePolicy() {
	primary := s.activeDeployment()

	s.Run("fallback strategy normalizes to preferred", func() {
		policy := s.createPolicy(map[string]any{
			"jurisdiction":          "EU",
			"strategy":              "fallback",
			"primary_deployment_id": primary.String(),
		})
		s.Equal("preferred", policy.Strategy)
	})

	s.Run("second policy for the jurisdiction conflicts", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/routing/policies", map[string]any{
			"jurisdiction":          "EU",
			"strategy":              "strict",
			"primary_deployment_id": primary.String(),
		})
		rr := s.do(req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("malformed primary is invalid", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/routing/policies", map[string]any{
			"jurisdiction":          "APAC",
			"strategy":              "strict",
			"primary_deployment_id": "not-a-uuid",
		})
		rr := s.do(req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *HandlerSuite) TestRoute() {
	primary := s.activeDeployment()
	s.approveModel()
	s.createPolicy(map[string]any{
		"jurisdiction":          "EU",
		"strategy":              "preferred",
		"primary_deployment_id": primary.String(),
	})

	s.Run("routes to the primary deployment", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/routing/route", map[string]any{
			"jurisdiction": "EU",
			"model_ref":    s.modelRef.String(),
		})
		rr := s.do(req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		decision := testutil.UnmarshalResponse[handler.DecisionResponse](s.T(), rr)
		s.Equal(primary.String(), decision.SelectedDeploymentID)
		s.Equal("primary", decision.Reason)
	})

	s.Run("unapproved model yields an empty selection, not an error", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/routing/route", map[string]any{
			"jurisdiction": "EU",
			"model_ref":    uuid.NewString(),
		})
		rr := s.do(req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		decision := testutil.UnmarshalResponse[handler.DecisionResponse](s.T(), rr)
		s.Empty(decision.SelectedDeploymentID)
		s.Equal("no_compliant_deployment", decision.Reason)
	})

	s.Run("jurisdiction without a policy is not found", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/routing/route", map[string]any{
			"jurisdiction": "APAC",
			"model_ref":    s.modelRef.String(),
		})
		rr := s.do(req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("model_ref must be a UUID", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/routing/route", map[string]any{
			"jurisdiction": "EU",
			"model_ref":    "gpt-sovereign",
		})
		rr := s.do(req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *HandlerSuite) TestListPolicies() {
	primary := s.activeDeployment()
	s.createPolicy(map[string]any{
		"jurisdiction":          "EU",
		"strategy":              "strict",
		"primary_deployment_id": primary.String(),
	})

	req := testutil.NewRequest(s.T(), http.MethodGet, "/routing/policies")
	rr := s.do(req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	policies := testutil.UnmarshalResponse[[]handler.PolicyResponse](s.T(), rr)
	s.Len(*policies, 1)
}

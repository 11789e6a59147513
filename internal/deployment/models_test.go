package deployment_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meridian/internal/deployment"
	id "meridian/pkg/domain"
	"meridian/pkg/testutil"
)

func TestDeploymentLifecycle(t *testing.T) {
	transitions := []struct {
		from    deployment.DeploymentStatus
		to      deployment.DeploymentStatus
		allowed bool
	}{
		{deployment.StatusProvisioning, deployment.StatusActive, true},
		{deployment.StatusProvisioning, deployment.StatusTerminating, true},
		{deployment.StatusProvisioning, deployment.StatusDegraded, false},
		{deployment.StatusActive, deployment.StatusDegraded, true},
		{deployment.StatusActive, deployment.StatusTerminating, true},
		{deployment.StatusActive, deployment.StatusProvisioning, false},
		{deployment.StatusDegraded, deployment.StatusActive, true},
		{deployment.StatusDegraded, deployment.StatusTerminating, true},
		{deployment.StatusTerminating, deployment.StatusTerminated, true},
		{deployment.StatusTerminating, deployment.StatusActive, false},
		{deployment.StatusTerminated, deployment.StatusActive, false},
		{deployment.StatusTerminated, deployment.StatusProvisioning, false},
	}

	for _, tt := range transitions {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestHealthCheckStamping(t *testing.T) {
	newDeployment := func(t *testing.T) *deployment.RegionalDeployment {
		dep, err := deployment.NewRegionalDeployment(
			id.DeploymentID(uuid.New()), id.TenantID(uuid.New()),
			id.JurisdictionEU, "eu-central-1", "inference",
			time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		return dep
	}

	testutil.Given(t, "a provisioning deployment", func(t *testing.T) {
		dep := newDeployment(t)

		testutil.When(t, "a health check drives it active", func(t *testing.T) {
			now := time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)
			require.NoError(t, dep.CanTransition(deployment.StatusActive))
			dep.ApplyTransition(deployment.StatusActive, now)

			testutil.Then(t, "the health check time is stamped", func(t *testing.T) {
				assert.Equal(t, now, dep.HealthCheckedAt)
				assert.True(t, dep.Routable())
			})
		})

		testutil.When(t, "decommissioning starts", func(t *testing.T) {
			now := time.Date(2026, 3, 14, 9, 10, 0, 0, time.UTC)
			require.NoError(t, dep.CanTransition(deployment.StatusTerminating))
			dep.ApplyTransition(deployment.StatusTerminating, now)

			testutil.Then(t, "the health check time is untouched", func(t *testing.T) {
				assert.NotEqual(t, now, dep.HealthCheckedAt)
				assert.False(t, dep.Routable())
			})
		})
	})
}

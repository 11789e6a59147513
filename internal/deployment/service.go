package deployment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	deploymentmetrics "meridian/internal/deployment/metrics"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
	"meridian/pkg/requestcontext"
)

// Auditor records deployment lifecycle events. Failures are fatal to the
// enclosing operation.
type Auditor interface {
	RecordDeploymentInitiated(ctx context.Context, dep *RegionalDeployment) error
	RecordDeploymentActive(ctx context.Context, dep *RegionalDeployment) error
}

// Service owns the regional deployment lifecycle. The router consumes it
// read-only through ListCandidates; writes come from provisioning automation
// and health checkers.
type Service struct {
	deployments DeploymentStore
	audit       Auditor
	logger      *slog.Logger
	metrics     *deploymentmetrics.Metrics
	tx          txcontext.Runner
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *deploymentmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTx sets the transaction runner; defaults to a no-op runner suitable for
// the in-memory store.
func WithTx(runner txcontext.Runner) Option {
	return func(s *Service) { s.tx = runner }
}

func NewService(deployments DeploymentStore, audit Auditor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		deployments: deployments,
		audit:       audit,
		logger:      logger,
		tx:          txcontext.NewNoopRunner(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeployParams carries validated handler input for deployment creation.
type DeployParams struct {
	Jurisdiction id.Jurisdiction
	Region       string
	Namespace    string
}

// Deploy registers a new regional deployment in Provisioning. The deployment
// becomes routable only after a health check drives it to Active.
func (s *Service) Deploy(ctx context.Context, tenantID id.TenantID, params DeployParams) (*RegionalDeployment, error) {
	var dep *RegionalDeployment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		d, err := NewRegionalDeployment(id.DeploymentID(uuid.New()), tenantID,
			params.Jurisdiction, params.Region, params.Namespace, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.deployments.Create(txCtx, d); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "deployment already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to create regional deployment")
		}
		if err := s.audit.RecordDeploymentInitiated(txCtx, d); err != nil {
			return err
		}
		dep = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncInitiated()
	}
	return dep, nil
}

// Transition moves a deployment through its lifecycle. Disallowed moves fail
// with CodeInvalidTransition and leave the deployment unchanged.
func (s *Service) Transition(ctx context.Context, tenantID id.TenantID, depID id.DeploymentID, to DeploymentStatus) (*RegionalDeployment, error) {
	var dep *RegionalDeployment
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		d, err := s.deployments.Execute(txCtx, tenantID, depID,
			func(d *RegionalDeployment) error {
				return d.CanTransition(to)
			},
			func(d *RegionalDeployment) {
				d.ApplyTransition(to, now)
			},
		)
		if err != nil {
			return wrapDeploymentErr(err)
		}

		if to == StatusActive {
			if err := s.audit.RecordDeploymentActive(txCtx, d); err != nil {
				return err
			}
		}
		dep = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "deployment transition",
		"request_id", requestcontext.RequestID(ctx),
		"deployment_id", dep.ID,
		"jurisdiction", dep.Jurisdiction,
		"status", dep.Status,
	)
	if s.metrics != nil {
		s.metrics.IncTransition(string(dep.Status))
	}
	return dep, nil
}

// Get returns one deployment owned by the tenant.
func (s *Service) Get(ctx context.Context, tenantID id.TenantID, depID id.DeploymentID) (*RegionalDeployment, error) {
	dep, err := s.deployments.Get(ctx, tenantID, depID)
	if err != nil {
		return nil, wrapDeploymentErr(err)
	}
	return dep, nil
}

// ListCandidates returns the tenant's non-terminal deployments in the
// jurisdiction, in no guaranteed order. Callers must not assume anything
// listed is routable; only Active deployments are.
func (s *Service) ListCandidates(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*RegionalDeployment, error) {
	deps, err := s.deployments.ListCandidates(ctx, tenantID, jurisdiction)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "deployment view unavailable")
	}
	return deps, nil
}

// List returns all of the tenant's deployments.
func (s *Service) List(ctx context.Context, tenantID id.TenantID) ([]*RegionalDeployment, error) {
	deps, err := s.deployments.List(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "deployment view unavailable")
	}
	return deps, nil
}

func wrapDeploymentErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "regional deployment not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "concurrent deployment mutation, re-read and retry")
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "deployment store unavailable")
	}
}

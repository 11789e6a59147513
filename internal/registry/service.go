package registry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
	"meridian/pkg/requestcontext"
)

// Auditor records registry lifecycle events. Failures are fatal to the
// enclosing operation.
type Auditor interface {
	RecordModelRegistered(ctx context.Context, model *SovereignModel) error
	RecordModelApproved(ctx context.Context, model *SovereignModel) error
}

// Service is the approval registry: it owns the per-(model, jurisdiction)
// state machine and answers the router's "is this model usable here".
type Service struct {
	models ModelStore
	audit  Auditor
	logger *slog.Logger
	tx     txcontext.Runner
}

// Option configures the Service.
type Option func(*Service)

// WithTx sets the transaction runner; defaults to a no-op runner suitable for
// the in-memory store.
func WithTx(runner txcontext.Runner) Option {
	return func(s *Service) { s.tx = runner }
}

func NewService(models ModelStore, audit Auditor, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		models: models,
		audit:  audit,
		logger: logger,
		tx:     txcontext.NewNoopRunner(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a Pending registration for (model_ref, jurisdiction).
// Approval is a separate step by an authorized reviewer.
func (s *Service) Register(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction) (*SovereignModel, error) {
	var model *SovereignModel
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		m, err := NewSovereignModel(id.RegistrationID(uuid.New()), tenantID, modelRef, jurisdiction, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.models.Create(txCtx, m); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "model is already registered for this jurisdiction")
			}
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to register sovereign model")
		}
		if err := s.audit.RecordModelRegistered(txCtx, m); err != nil {
			return err
		}
		model = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Transition moves a registration through the approval state machine.
// Disallowed transitions fail with CodeInvalidTransition and leave the
// registration unchanged.
func (s *Service) Transition(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef,
	jurisdiction id.Jurisdiction, to ApprovalStatus) (*SovereignModel, error) {

	var model *SovereignModel
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		m, err := s.models.Execute(txCtx, tenantID, modelRef, jurisdiction,
			func(m *SovereignModel) error {
				return m.CanTransition(to)
			},
			func(m *SovereignModel) {
				m.ApplyTransition(to, now)
			},
		)
		if err != nil {
			return wrapModelErr(err)
		}

		if to == StatusApproved {
			if err := s.audit.RecordModelApproved(txCtx, m); err != nil {
				return err
			}
		}
		model = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "model approval transition",
		"request_id", requestcontext.RequestID(ctx),
		"model_ref", model.ModelRef,
		"jurisdiction", model.Jurisdiction,
		"status", model.Status,
	)
	return model, nil
}

// IsUsable reports whether the model may be selected for routing in the
// jurisdiction. Absence of a registration is not-usable, never implicitly
// approved: approval checks fail closed.
func (s *Service) IsUsable(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction) (bool, error) {
	model, err := s.models.Get(ctx, tenantID, modelRef, jurisdiction)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "approval registry unavailable")
	}
	return model.Usable(), nil
}

// ListByJurisdiction returns the tenant's registrations for one jurisdiction.
func (s *Service) ListByJurisdiction(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*SovereignModel, error) {
	models, err := s.models.ListByJurisdiction(ctx, tenantID, jurisdiction)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "approval registry unavailable")
	}
	return models, nil
}

func wrapModelErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "sovereign model registration not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "concurrent registration mutation, re-read and retry")
	case dErrors.HasCode(err, dErrors.CodeInvalidTransition):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "approval registry unavailable")
	}
}

package registry

import (
	"time"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// ApprovalStatus is the lifecycle state of a sovereign model registration.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
	StatusRevoked  ApprovalStatus = "revoked"
)

// allowedTransitions is the single source of truth for the approval state
// machine. Rejected and Revoked are terminal; Revoked is reachable only from
// Approved - a rejected model was never approved, so it cannot be revoked.
var allowedTransitions = map[ApprovalStatus][]ApprovalStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusRevoked},
	StatusRejected: {},
	StatusRevoked:  {},
}

// ParseApprovalStatus constructs an ApprovalStatus from external input.
func ParseApprovalStatus(s string) (ApprovalStatus, error) {
	st := ApprovalStatus(s)
	if _, ok := allowedTransitions[st]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "unknown approval status")
	}
	return st, nil
}

// CanTransitionTo reports whether the state machine permits moving to next.
func (s ApprovalStatus) CanTransitionTo(next ApprovalStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SovereignModel records the approval of one model for one jurisdiction.
// ModelRef is an opaque cross-service identifier; this service never
// dereferences it.
type SovereignModel struct {
	ID           id.RegistrationID `json:"id"`
	TenantID     id.TenantID       `json:"tenant_id"`
	ModelRef     id.ModelRef       `json:"model_ref"`
	Jurisdiction id.Jurisdiction   `json:"jurisdiction"`
	Status       ApprovalStatus    `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewSovereignModel constructs a Pending registration.
func NewSovereignModel(regID id.RegistrationID, tenantID id.TenantID, modelRef id.ModelRef,
	jurisdiction id.Jurisdiction, now time.Time) (*SovereignModel, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}
	if modelRef == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "model_ref is required")
	}
	if jurisdiction == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "jurisdiction is required")
	}
	return &SovereignModel{
		ID:           regID,
		TenantID:     tenantID,
		ModelRef:     modelRef,
		Jurisdiction: jurisdiction,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CanTransition checks the transition against the state machine table.
// On a disallowed transition the registration is left unchanged.
func (m *SovereignModel) CanTransition(to ApprovalStatus) error {
	if !m.Status.CanTransitionTo(to) {
		return dErrors.Newf(dErrors.CodeInvalidTransition,
			"cannot transition model approval from %s to %s", m.Status, to)
	}
	return nil
}

// ApplyTransition moves the registration to the new status.
// Call CanTransition first; this does not re-validate.
func (m *SovereignModel) ApplyTransition(to ApprovalStatus, now time.Time) {
	m.Status = to
	m.UpdatedAt = now
}

// Usable reports whether the model may be selected for routing. Only Approved
// qualifies; anything else - including a missing record - fails closed.
func (m *SovereignModel) Usable() bool {
	return m.Status == StatusApproved
}

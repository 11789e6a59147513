// Package domain holds identifier and value types shared by every module.
//
// IDs are distinct types over uuid.UUID so a DeploymentID can never be passed
// where a PolicyID is expected. Construct via Parse* at trust boundaries.
package domain

import "github.com/google/uuid"

// TenantID identifies the owning tenant. Every persisted entity is scoped to
// exactly one tenant; nothing in this service spans tenants in one evaluation.
type TenantID uuid.UUID

// RuleID identifies a residency rule. Rule evaluation order ties are broken by
// ID ascending, so IDs take part in decision determinism.
type RuleID uuid.UUID

// DeploymentID identifies a regional deployment.
type DeploymentID uuid.UUID

// PolicyID identifies a routing policy.
type PolicyID uuid.UUID

// MappingID identifies a compliance mapping.
type MappingID uuid.UUID

// RegistrationID identifies a sovereign model registration, i.e. one
// (model_ref, jurisdiction) approval record.
type RegistrationID uuid.UUID

func (t TenantID) IsNil() bool { return uuid.UUID(t) == uuid.Nil }

func (t TenantID) String() string { return uuid.UUID(t).String() }

func (r RuleID) IsNil() bool { return uuid.UUID(r) == uuid.Nil }

func (r RuleID) String() string { return uuid.UUID(r).String() }

func (d DeploymentID) IsNil() bool { return uuid.UUID(d) == uuid.Nil }

func (d DeploymentID) String() string { return uuid.UUID(d).String() }

func (p PolicyID) IsNil() bool { return uuid.UUID(p) == uuid.Nil }

func (p PolicyID) String() string { return uuid.UUID(p).String() }

func (m MappingID) IsNil() bool { return uuid.UUID(m) == uuid.Nil }

func (m MappingID) String() string { return uuid.UUID(m).String() }

func (r RegistrationID) IsNil() bool { return uuid.UUID(r) == uuid.Nil }

func (r RegistrationID) String() string { return uuid.UUID(r).String() }

// ParseTenantID constructs a TenantID from external input.
func ParseTenantID(s string) (TenantID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(u), nil
}

// ParseDeploymentID constructs a DeploymentID from external input.
func ParseDeploymentID(s string) (DeploymentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DeploymentID{}, err
	}
	return DeploymentID(u), nil
}

// ParseRuleID constructs a RuleID from external input.
func ParseRuleID(s string) (RuleID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return RuleID{}, err
	}
	return RuleID(u), nil
}

// ParsePolicyID constructs a PolicyID from external input.
func ParsePolicyID(s string) (PolicyID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PolicyID{}, err
	}
	return PolicyID(u), nil
}

// ParseMappingID constructs a MappingID from external input.
func ParseMappingID(s string) (MappingID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return MappingID{}, err
	}
	return MappingID(u), nil
}

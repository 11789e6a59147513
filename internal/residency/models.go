package residency

import (
	"time"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// RuleAction is the enforcement action a residency rule prescribes.
type RuleAction string

const (
	ActionBlock     RuleAction = "block"
	ActionEncrypt   RuleAction = "encrypt"
	ActionAnonymize RuleAction = "anonymize"
	ActionRedirect  RuleAction = "redirect"
	// ActionAllow is never configured on a rule; it is the implicit decision
	// when no active rule matches.
	ActionAllow RuleAction = "allow"
)

var validRuleActions = map[RuleAction]bool{
	ActionBlock:     true,
	ActionEncrypt:   true,
	ActionAnonymize: true,
	ActionRedirect:  true,
}

// ParseRuleAction constructs a RuleAction from external input. Allow is not a
// configurable action, so it is rejected here.
func ParseRuleAction(s string) (RuleAction, error) {
	a := RuleAction(s)
	if !validRuleActions[a] {
		return "", dErrors.New(dErrors.CodeValidation, "unknown residency action")
	}
	return a, nil
}

// Rule is a tenant-scoped residency enforcement rule.
//
// Invariants:
//   - redirect rules carry a RedirectTarget different from their own
//     jurisdiction (a self-redirect would loop)
//   - rules are immutable once created except for Active toggling; changing a
//     rule is modeled as create-new + deactivate-old to preserve audit history
//   - within one tenant, evaluation order is the total order
//     (Priority asc, ID asc) so equal priorities stay deterministic
type Rule struct {
	ID             id.RuleID             `json:"id"`
	TenantID       id.TenantID           `json:"tenant_id"`
	Jurisdiction   id.Jurisdiction       `json:"jurisdiction"`
	Classification id.DataClassification `json:"data_classification"`
	Action         RuleAction            `json:"action"`
	RedirectTarget id.Jurisdiction       `json:"redirect_target,omitempty"`
	Priority       int                   `json:"priority"`
	Active         bool                  `json:"active"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// NewRule validates and constructs an active rule.
func NewRule(
	ruleID id.RuleID,
	tenantID id.TenantID,
	jurisdiction id.Jurisdiction,
	classification id.DataClassification,
	action RuleAction,
	redirectTarget id.Jurisdiction,
	priority int,
	now time.Time,
) (*Rule, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "tenant ID is required")
	}
	if !validRuleActions[action] {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown residency action")
	}
	if action == ActionRedirect {
		if redirectTarget == "" {
			return nil, dErrors.New(dErrors.CodeConfiguration, "redirect rule requires a redirect target")
		}
		if redirectTarget == jurisdiction {
			return nil, dErrors.New(dErrors.CodeConfiguration, "redirect target must differ from rule jurisdiction")
		}
	} else if redirectTarget != "" {
		return nil, dErrors.New(dErrors.CodeValidation, "redirect target is only valid for redirect rules")
	}
	return &Rule{
		ID:             ruleID,
		TenantID:       tenantID,
		Jurisdiction:   jurisdiction,
		Classification: classification,
		Action:         action,
		RedirectTarget: redirectTarget,
		Priority:       priority,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanDeactivate checks the active→inactive transition.
func (r *Rule) CanDeactivate() error {
	if !r.Active {
		return dErrors.New(dErrors.CodeInvalidTransition, "rule is already inactive")
	}
	return nil
}

// ApplyDeactivation soft-deactivates the rule. Rules are never physically
// deleted; the decision history must stay reconstructable.
func (r *Rule) ApplyDeactivation(now time.Time) {
	r.Active = false
	r.UpdatedAt = now
}

// AccessRequest is the transient decision input. It is never persisted.
type AccessRequest struct {
	TenantID       id.TenantID
	Jurisdiction   id.Jurisdiction
	Classification id.DataClassification
	// PayloadRef points at the data under evaluation. The engine only decides;
	// acting on the payload (encrypting, anonymizing) is the caller's job.
	PayloadRef string
}

// Decision is the evaluation outcome for one access request.
type Decision struct {
	// RuleID is the matched rule, nil when no active rule matched and the
	// implicit allow applies.
	RuleID         *id.RuleID      `json:"rule_id,omitempty"`
	Action         RuleAction      `json:"action"`
	RedirectTarget id.Jurisdiction `json:"redirect_target,omitempty"`
	EvaluatedAt    time.Time       `json:"evaluated_at"`
}

// Allowed reports whether the request may proceed in place.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

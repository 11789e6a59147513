package handler

import (
	"time"

	"meridian/internal/residency"
)

// DecisionResponse is the HTTP response body for POST /residency/evaluate.
type DecisionResponse struct {
	RuleID         string    `json:"rule_id,omitempty"`
	Action         string    `json:"action"`
	RedirectTarget string    `json:"redirect_target,omitempty"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

// FromDecision converts a domain decision to its wire shape.
func FromDecision(d residency.Decision) DecisionResponse {
	resp := DecisionResponse{
		Action:         string(d.Action),
		RedirectTarget: d.RedirectTarget.String(),
		EvaluatedAt:    d.EvaluatedAt,
	}
	if d.RuleID != nil {
		resp.RuleID = d.RuleID.String()
	}
	return resp
}

// RuleResponse is the wire shape of a residency rule.
type RuleResponse struct {
	ID             string    `json:"id"`
	Jurisdiction   string    `json:"jurisdiction"`
	Classification string    `json:"data_classification"`
	Action         string    `json:"action"`
	RedirectTarget string    `json:"redirect_target,omitempty"`
	Priority       int       `json:"priority"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FromRule converts a domain rule to its wire shape.
func FromRule(r *residency.Rule) RuleResponse {
	return RuleResponse{
		ID:             r.ID.String(),
		Jurisdiction:   r.Jurisdiction.String(),
		Classification: r.Classification.String(),
		Action:         string(r.Action),
		RedirectTarget: r.RedirectTarget.String(),
		Priority:       r.Priority,
		Active:         r.Active,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// FromRules converts a rule list to its wire shape.
func FromRules(rules []*residency.Rule) []RuleResponse {
	out := make([]RuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, FromRule(r))
	}
	return out
}

package residency

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

// Engine turns a rule snapshot into a single enforcement decision.
// This is pure domain logic - no I/O, no side effects. The service fetches an
// in-memory snapshot per evaluation and hands it in, so concurrent
// evaluations share no mutable state.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate applies first-match-wins over the rules that match the request.
//
// Matching: the rule must be active, target the request's jurisdiction, and
// its classification must equal the request's or be the "all" wildcard.
// Order: (Priority asc, ID asc) - a total order, so equal priorities still
// evaluate deterministically. Once a rule matches, evaluation stops; there is
// no aggregation and no most-restrictive-wins.
//
// No match yields the implicit allow with a nil rule ID.
//
// Errors: CodeConfiguration when the matched rule is a redirect without a
// target or redirecting to the request's own jurisdiction. Bad configuration
// fails fast rather than producing a looping decision.
func (e *Engine) Evaluate(rules []*Rule, req AccessRequest, now time.Time) (Decision, error) {
	matching := make([]*Rule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if rule.Jurisdiction != req.Jurisdiction {
			continue
		}
		if !rule.Classification.Matches(req.Classification) {
			continue
		}
		matching = append(matching, rule)
	}

	sortRules(matching)

	for _, rule := range matching {
		return decisionFromRule(rule, req, now)
	}

	return Decision{Action: ActionAllow, EvaluatedAt: now}, nil
}

func decisionFromRule(rule *Rule, req AccessRequest, now time.Time) (Decision, error) {
	if rule.Action == ActionRedirect {
		if rule.RedirectTarget == "" {
			return Decision{}, dErrors.Newf(dErrors.CodeConfiguration,
				"redirect rule %s has no target", rule.ID)
		}
		if rule.RedirectTarget == req.Jurisdiction {
			return Decision{}, dErrors.Newf(dErrors.CodeConfiguration,
				"redirect rule %s targets its own jurisdiction %s", rule.ID, req.Jurisdiction)
		}
	}
	ruleID := rule.ID
	return Decision{
		RuleID:         &ruleID,
		Action:         rule.Action,
		RedirectTarget: rule.RedirectTarget,
		EvaluatedAt:    now,
	}, nil
}

// sortRules orders by (Priority asc, ID asc). IDs compare by UUID bytes,
// which is stable and reproducible across runs.
func sortRules(rules []*Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return compareRuleIDs(rules[i].ID, rules[j].ID) < 0
	})
}

func compareRuleIDs(a, b id.RuleID) int {
	ua, ub := uuid.UUID(a), uuid.UUID(b)
	return bytes.Compare(ua[:], ub[:])
}

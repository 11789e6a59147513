package residency

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
)

type EngineSuite struct {
	suite.Suite
	engine   *Engine
	tenantID id.TenantID
	now      time.Time
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.engine = NewEngine()
	s.tenantID = id.TenantID(uuid.New())
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *EngineSuite) rule(jurisdiction id.Jurisdiction, classification id.DataClassification,
	action RuleAction, priority int) *Rule {
	r, err := NewRule(id.RuleID(uuid.New()), s.tenantID, jurisdiction, classification,
		action, "", priority, s.now)
	s.Require().NoError(err)
	return r
}

func (s *EngineSuite) request(jurisdiction id.Jurisdiction, classification id.DataClassification) AccessRequest {
	return AccessRequest{
		TenantID:       s.tenantID,
		Jurisdiction:   jurisdiction,
		Classification: classification,
	}
}

func (s *EngineSuite) TestImplicitAllow() {
	s.Run("no rules at all", func() {
		decision, err := s.engine.Evaluate(nil, s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
		s.Require().NoError(err)
		s.True(decision.Allowed())
		s.Nil(decision.RuleID)
	})

	s.Run("rules exist but none match", func() {
		rules := []*Rule{
			s.rule(id.JurisdictionAPAC, id.ClassificationPII, ActionBlock, 0),
			s.rule(id.JurisdictionEU, id.ClassificationFinancial, ActionBlock, 0),
		}
		decision, err := s.engine.Evaluate(rules, s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
		s.Require().NoError(err)
		s.True(decision.Allowed())
		s.Nil(decision.RuleID)
	})

	s.Run("inactive rules do not match", func() {
		r := s.rule(id.JurisdictionEU, id.ClassificationPII, ActionBlock, 0)
		r.Active = false
		decision, err := s.engine.Evaluate([]*Rule{r}, s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
		s.Require().NoError(err)
		s.True(decision.Allowed())
	})
}

func (s *EngineSuite) TestFirstMatchWins() {
	s.Run("lower priority evaluates first", func() {
		block := s.rule(id.JurisdictionEU, id.ClassificationPII, ActionBlock, 1)
		encrypt := s.rule(id.JurisdictionEU, id.ClassificationPII, ActionEncrypt, 5)

		decision, err := s.engine.Evaluate([]*Rule{encrypt, block},
			s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
		s.Require().NoError(err)
		s.Equal(ActionBlock, decision.Action)
		s.Require().NotNil(decision.RuleID)
		s.Equal(block.ID, *decision.RuleID)
	})

	s.Run("no aggregation across matches", func() {
		// An encrypt at priority 0 shadows a block at priority 1; the engine
		// never combines into most-restrictive-wins.
		encrypt := s.rule(id.JurisdictionEU, id.ClassificationPII, ActionEncrypt, 0)
		block := s.rule(id.JurisdictionEU, id.ClassificationPII, ActionBlock, 1)

		decision, err := s.engine.Evaluate([]*Rule{block, encrypt},
			s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
		s.Require().NoError(err)
		s.Equal(ActionEncrypt, decision.Action)
	})
}

func (s *EngineSuite) TestEqualPriorityTieBreak() {
	a := s.rule(id.JurisdictionEU, id.ClassificationPII, ActionBlock, 3)
	b := s.rule(id.JurisdictionEU, id.ClassificationPII, ActionEncrypt, 3)

	// Order within equal priority is by rule ID bytes, independent of slice
	// order handed in.
	want := a
	if compareRuleIDs(b.ID, a.ID) < 0 {
		want = b
	}

	d1, err := s.engine.Evaluate([]*Rule{a, b}, s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
	s.Require().NoError(err)
	d2, err := s.engine.Evaluate([]*Rule{b, a}, s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
	s.Require().NoError(err)

	s.Require().NotNil(d1.RuleID)
	s.Require().NotNil(d2.RuleID)
	s.Equal(want.ID, *d1.RuleID)
	s.Equal(*d1.RuleID, *d2.RuleID, "decision must not depend on snapshot order")
}

func (s *EngineSuite) TestWildcardClassification() {
	wildcard := s.rule(id.JurisdictionEU, id.ClassificationAll, ActionEncrypt, 10)
	specific := s.rule(id.JurisdictionEU, id.ClassificationHealth, ActionBlock, 1)

	s.Run("wildcard matches any classification", func() {
		decision, err := s.engine.Evaluate([]*Rule{wildcard},
			s.request(id.JurisdictionEU, id.ClassificationBiometric), s.now)
		s.Require().NoError(err)
		s.Equal(ActionEncrypt, decision.Action)
	})

	s.Run("specific rule at lower priority beats wildcard", func() {
		decision, err := s.engine.Evaluate([]*Rule{wildcard, specific},
			s.request(id.JurisdictionEU, id.ClassificationHealth), s.now)
		s.Require().NoError(err)
		s.Equal(ActionBlock, decision.Action)
	})

	s.Run("wildcard catches what the specific rule does not", func() {
		decision, err := s.engine.Evaluate([]*Rule{wildcard, specific},
			s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
		s.Require().NoError(err)
		s.Equal(ActionEncrypt, decision.Action)
	})
}

func (s *EngineSuite) TestRedirect() {
	s.Run("valid redirect carries its target", func() {
		r, err := NewRule(id.RuleID(uuid.New()), s.tenantID, id.JurisdictionEU,
			id.ClassificationPII, ActionRedirect, id.JurisdictionAPAC, 0, s.now)
		s.Require().NoError(err)

		decision, err := s.engine.Evaluate([]*Rule{r},
			s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
		s.Require().NoError(err)
		s.Equal(ActionRedirect, decision.Action)
		s.Equal(id.JurisdictionAPAC, decision.RedirectTarget)
	})

	s.Run("redirect to own jurisdiction fails fast", func() {
		// Bypass NewRule validation to simulate a corrupted stored rule.
		r := s.rule(id.JurisdictionEU, id.ClassificationPII, ActionBlock, 0)
		r.Action = ActionRedirect
		r.RedirectTarget = id.JurisdictionEU

		_, err := s.engine.Evaluate([]*Rule{r},
			s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	s.Run("redirect without target fails fast", func() {
		r := s.rule(id.JurisdictionEU, id.ClassificationPII, ActionBlock, 0)
		r.Action = ActionRedirect
		r.RedirectTarget = ""

		_, err := s.engine.Evaluate([]*Rule{r},
			s.request(id.JurisdictionEU, id.ClassificationPII), s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
	})
}

func (s *EngineSuite) TestDeterminism() {
	rules := []*Rule{
		s.rule(id.JurisdictionEU, id.ClassificationAll, ActionEncrypt, 2),
		s.rule(id.JurisdictionEU, id.ClassificationPII, ActionBlock, 2),
		s.rule(id.JurisdictionEU, id.ClassificationPII, ActionAnonymize, 7),
	}
	req := s.request(id.JurisdictionEU, id.ClassificationPII)

	first, err := s.engine.Evaluate(rules, req, s.now)
	s.Require().NoError(err)
	for i := 0; i < 10; i++ {
		again, err := s.engine.Evaluate(rules, req, s.now)
		s.Require().NoError(err)
		s.Equal(first, again)
	}
}

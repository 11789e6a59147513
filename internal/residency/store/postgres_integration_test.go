//go:build integration

package store_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"meridian/internal/audit"
	"meridian/internal/residency"
	"meridian/internal/residency/store"
	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	compliancepub "meridian/pkg/platform/audit/publishers/compliance"
	auditstore "meridian/pkg/platform/audit/store/postgres"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
	"meridian/pkg/testutil/containers"
)

const testCeiling = 3

// requestTime truncates to microseconds so roundtrips through timestamptz
// compare equal.
func requestTime() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type PostgresSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	rules    *store.Postgres
	outbox   *auditstore.Store
	service  *residency.Service
	tenantID id.TenantID
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.pg.MigrateFromFile(s.T(), "../../../migrations/001_init.sql")
	s.rules = store.NewPostgres(s.pg.DB, testCeiling)
	s.outbox = auditstore.New(s.pg.DB)
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background(), "residency_rules", "outbox"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = residency.NewService(s.rules,
		audit.NewDecisionAuditor(compliancepub.New(s.outbox)), logger,
		residency.WithTx(txcontext.NewSQLRunner(s.pg.DB)))
	s.tenantID = id.TenantID(uuid.New())
}

func (s *PostgresSuite) newRule(jurisdiction id.Jurisdiction, priority int) *residency.Rule {
	rule, err := residency.NewRule(id.RuleID(uuid.New()), s.tenantID,
		jurisdiction, id.ClassificationPII, residency.ActionBlock, "", priority,
		requestTime())
	s.Require().NoError(err)
	return rule
}

func (s *PostgresSuite) TestCreateAndListActive() {
	ctx := context.Background()
	rule := s.newRule(id.JurisdictionEU, 1)
	s.Require().NoError(s.rules.Create(ctx, rule))

	active, err := s.rules.ListActive(ctx, s.tenantID, id.JurisdictionEU)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(rule.ID, active[0].ID)
	s.Equal(residency.ActionBlock, active[0].Action)

	other, err := s.rules.ListActive(ctx, s.tenantID, id.JurisdictionAPAC)
	s.Require().NoError(err)
	s.Empty(other)
}

func (s *PostgresSuite) TestCeilingEnforcedAtCreate() {
	ctx := context.Background()
	for i := 0; i < testCeiling; i++ {
		s.Require().NoError(s.rules.Create(ctx, s.newRule(id.JurisdictionEU, i)))
	}

	err := s.rules.Create(ctx, s.newRule(id.JurisdictionEU, testCeiling))
	s.Require().ErrorIs(err, sentinel.ErrLimitExceeded)
}

func (s *PostgresSuite) TestExecuteDeactivation() {
	ctx := context.Background()
	rule := s.newRule(id.JurisdictionEU, 1)
	s.Require().NoError(s.rules.Create(ctx, rule))

	now := requestTime()
	updated, err := s.rules.Execute(ctx, s.tenantID, rule.ID,
		func(r *residency.Rule) error { return r.CanDeactivate() },
		func(r *residency.Rule) { r.ApplyDeactivation(now) },
	)
	s.Require().NoError(err)
	s.False(updated.Active)

	active, err := s.rules.ListActive(ctx, s.tenantID, id.JurisdictionEU)
	s.Require().NoError(err)
	s.Empty(active)

	_, err = s.rules.Execute(ctx, s.tenantID, id.RuleID(uuid.New()),
		func(r *residency.Rule) error { return nil },
		func(r *residency.Rule) {},
	)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresSuite) TestRuleAndAuditCommitTogether() {
	ctx := context.Background()

	rule, err := s.service.CreateRule(ctx, s.tenantID, residency.CreateRuleParams{
		Jurisdiction:   id.JurisdictionEU,
		Classification: id.ClassificationPII,
		Action:         residency.ActionBlock,
	})
	s.Require().NoError(err)

	rules, err := s.rules.List(ctx, s.tenantID)
	s.Require().NoError(err)
	s.Len(rules, 1)

	entries, err := s.outbox.NextBatch(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("residency.rule_created", entries[0].EventType)
	s.Contains(string(entries[0].Payload), rule.ID.String())
}

func (s *PostgresSuite) TestCeilingFailureRollsBackEverything() {
	ctx := context.Background()
	for i := 0; i < testCeiling; i++ {
		_, err := s.service.CreateRule(ctx, s.tenantID, residency.CreateRuleParams{
			Jurisdiction:   id.JurisdictionEU,
			Classification: id.ClassificationPII,
			Action:         residency.ActionBlock,
			Priority:       i,
		})
		s.Require().NoError(err)
	}

	_, err := s.service.CreateRule(ctx, s.tenantID, residency.CreateRuleParams{
		Jurisdiction:   id.JurisdictionEU,
		Classification: id.ClassificationPII,
		Action:         residency.ActionBlock,
		Priority:       testCeiling,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeLimitExceeded))

	entries, err := s.outbox.NextBatch(ctx, 10)
	s.Require().NoError(err)
	s.Len(entries, testCeiling, "the failed create must not leave an outbox entry")
}

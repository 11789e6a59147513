package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"meridian/internal/residency"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
)

// Postgres persists residency rules. Mutations run inside a transaction so the
// ceiling check, the write, and the caller's audit enqueue commit atomically.
type Postgres struct {
	db      *sql.DB
	ceiling int
}

// NewPostgres constructs a PostgreSQL-backed rule store.
func NewPostgres(db *sql.DB, ceiling int) *Postgres {
	return &Postgres{db: db, ceiling: ceiling}
}

func (s *Postgres) Create(ctx context.Context, rule *residency.Rule) error {
	run := func(tx *sql.Tx) error {
		// Serialize rule creation per tenant so concurrent creates can't both
		// slip under the ceiling.
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM (
				SELECT id FROM residency_rules WHERE tenant_id = $1 FOR UPDATE
			) locked`,
			uuid.UUID(rule.TenantID),
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("count tenant rules: %w", err)
		}
		if count >= s.ceiling {
			return sentinel.ErrLimitExceeded
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO residency_rules
				(id, tenant_id, jurisdiction, data_classification, action,
				 redirect_target, priority, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			uuid.UUID(rule.ID), uuid.UUID(rule.TenantID), rule.Jurisdiction.String(),
			rule.Classification.String(), string(rule.Action), nullString(rule.RedirectTarget.String()),
			rule.Priority, rule.Active, rule.CreatedAt, rule.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert residency rule: %w", err)
		}
		return nil
	}

	if tx, ok := txcontext.From(ctx); ok {
		return run(tx)
	}
	return s.inTx(ctx, run)
}

func (s *Postgres) ListActive(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*residency.Rule, error) {
	return s.query(ctx, `
		SELECT id, tenant_id, jurisdiction, data_classification, action,
		       redirect_target, priority, active, created_at, updated_at
		FROM residency_rules
		WHERE tenant_id = $1 AND jurisdiction = $2 AND active
	`, uuid.UUID(tenantID), jurisdiction.String())
}

func (s *Postgres) List(ctx context.Context, tenantID id.TenantID) ([]*residency.Rule, error) {
	return s.query(ctx, `
		SELECT id, tenant_id, jurisdiction, data_classification, action,
		       redirect_target, priority, active, created_at, updated_at
		FROM residency_rules
		WHERE tenant_id = $1
	`, uuid.UUID(tenantID))
}

func (s *Postgres) Execute(ctx context.Context, tenantID id.TenantID, ruleID id.RuleID,
	validate func(*residency.Rule) error, apply func(*residency.Rule)) (*residency.Rule, error) {

	var out *residency.Rule
	run := func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, tenant_id, jurisdiction, data_classification, action,
			       redirect_target, priority, active, created_at, updated_at
			FROM residency_rules
			WHERE id = $1 AND tenant_id = $2
			FOR UPDATE
		`, uuid.UUID(ruleID), uuid.UUID(tenantID))

		rule, err := scanRule(row)
		if err != nil {
			return err
		}

		if err := validate(rule); err != nil {
			return err
		}
		apply(rule)

		_, err = tx.ExecContext(ctx, `
			UPDATE residency_rules
			SET active = $1, updated_at = $2
			WHERE id = $3
		`, rule.Active, rule.UpdatedAt, uuid.UUID(rule.ID))
		if err != nil {
			return fmt.Errorf("update residency rule: %w", err)
		}
		out = rule
		return nil
	}

	var err error
	if tx, ok := txcontext.From(ctx); ok {
		err = run(tx)
	} else {
		err = s.inTx(ctx, run)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Postgres) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]*residency.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query residency rules: %w", err)
	}
	defer rows.Close()

	var out []*residency.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*residency.Rule, error) {
	var (
		rule           residency.Rule
		ruleID         uuid.UUID
		tenantID       uuid.UUID
		jurisdiction   string
		classification string
		action         string
		redirectTarget sql.NullString
	)
	err := row.Scan(&ruleID, &tenantID, &jurisdiction, &classification, &action,
		&redirectTarget, &rule.Priority, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan residency rule: %w", err)
	}

	rule.ID = id.RuleID(ruleID)
	rule.TenantID = id.TenantID(tenantID)
	rule.Jurisdiction = id.Jurisdiction(jurisdiction)
	rule.Classification = id.DataClassification(classification)
	rule.Action = residency.RuleAction(action)
	if redirectTarget.Valid {
		rule.RedirectTarget = id.Jurisdiction(redirectTarget.String)
	}
	return &rule, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"meridian/internal/routing"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
)

// Postgres persists routing policies. The fallback sequence is stored as a
// text array so its declared order survives round trips.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, policy *routing.RoutingPolicy) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO routing_policies
			(id, tenant_id, jurisdiction, strategy, primary_deployment_id,
			 fallback_deployment_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.UUID(policy.ID), uuid.UUID(policy.TenantID), policy.Jurisdiction.String(),
		string(policy.Strategy), uuid.UUID(policy.PrimaryDeploymentID),
		pq.Array(fallbackStrings(policy.FallbackDeploymentIDs)),
		policy.CreatedAt, policy.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert routing policy: %w", err)
	}
	return nil
}

func (s *Postgres) GetByJurisdiction(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) (*routing.RoutingPolicy, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, tenant_id, jurisdiction, strategy, primary_deployment_id,
		       fallback_deployment_ids, created_at, updated_at
		FROM routing_policies
		WHERE tenant_id = $1 AND jurisdiction = $2
	`, uuid.UUID(tenantID), jurisdiction.String())
	return scanPolicy(row)
}

func (s *Postgres) List(ctx context.Context, tenantID id.TenantID) ([]*routing.RoutingPolicy, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, tenant_id, jurisdiction, strategy, primary_deployment_id,
		       fallback_deployment_ids, created_at, updated_at
		FROM routing_policies
		WHERE tenant_id = $1
	`, uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("query routing policies: %w", err)
	}
	defer rows.Close()

	var out []*routing.RoutingPolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, policy)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Postgres) execer(ctx context.Context) execer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*routing.RoutingPolicy, error) {
	var (
		policy       routing.RoutingPolicy
		policyID     uuid.UUID
		tenantID     uuid.UUID
		jurisdiction string
		strategy     string
		primaryID    uuid.UUID
		fallbacks    pq.StringArray
	)
	err := row.Scan(&policyID, &tenantID, &jurisdiction, &strategy, &primaryID,
		&fallbacks, &policy.CreatedAt, &policy.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan routing policy: %w", err)
	}

	policy.ID = id.PolicyID(policyID)
	policy.TenantID = id.TenantID(tenantID)
	policy.Jurisdiction = id.Jurisdiction(jurisdiction)
	policy.Strategy = routing.Strategy(strategy)
	policy.PrimaryDeploymentID = id.DeploymentID(primaryID)
	policy.FallbackDeploymentIDs = make([]id.DeploymentID, 0, len(fallbacks))
	for _, raw := range fallbacks {
		depID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse fallback deployment id %q: %w", raw, err)
		}
		policy.FallbackDeploymentIDs = append(policy.FallbackDeploymentIDs, id.DeploymentID(depID))
	}
	return &policy, nil
}

func fallbackStrings(ids []id.DeploymentID) []string {
	out := make([]string, len(ids))
	for i, depID := range ids {
		out[i] = depID.String()
	}
	return out
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"meridian/internal/deployment"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
)

// Postgres persists regional deployments.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, dep *deployment.RegionalDeployment) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO regional_deployments
			(id, tenant_id, jurisdiction, region, namespace, status,
			 health_checked_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		uuid.UUID(dep.ID), uuid.UUID(dep.TenantID), dep.Jurisdiction.String(),
		dep.Region, dep.Namespace, string(dep.Status),
		nullTime(dep.HealthCheckedAt), dep.CreatedAt, dep.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert regional deployment: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, tenantID id.TenantID, depID id.DeploymentID) (*deployment.RegionalDeployment, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, tenant_id, jurisdiction, region, namespace, status,
		       health_checked_at, created_at, updated_at
		FROM regional_deployments
		WHERE id = $1 AND tenant_id = $2
	`, uuid.UUID(depID), uuid.UUID(tenantID))
	return scanDeployment(row)
}

func (s *Postgres) ListCandidates(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*deployment.RegionalDeployment, error) {
	return s.queryDeployments(ctx, `
		SELECT id, tenant_id, jurisdiction, region, namespace, status,
		       health_checked_at, created_at, updated_at
		FROM regional_deployments
		WHERE tenant_id = $1 AND jurisdiction = $2 AND status <> 'terminated'
	`, uuid.UUID(tenantID), jurisdiction.String())
}

func (s *Postgres) List(ctx context.Context, tenantID id.TenantID) ([]*deployment.RegionalDeployment, error) {
	return s.queryDeployments(ctx, `
		SELECT id, tenant_id, jurisdiction, region, namespace, status,
		       health_checked_at, created_at, updated_at
		FROM regional_deployments
		WHERE tenant_id = $1
	`, uuid.UUID(tenantID))
}

func (s *Postgres) Execute(ctx context.Context, tenantID id.TenantID, depID id.DeploymentID,
	validate func(*deployment.RegionalDeployment) error, apply func(*deployment.RegionalDeployment)) (*deployment.RegionalDeployment, error) {

	var out *deployment.RegionalDeployment
	run := func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, tenant_id, jurisdiction, region, namespace, status,
			       health_checked_at, created_at, updated_at
			FROM regional_deployments
			WHERE id = $1 AND tenant_id = $2
			FOR UPDATE
		`, uuid.UUID(depID), uuid.UUID(tenantID))

		dep, err := scanDeployment(row)
		if err != nil {
			return err
		}

		if err := validate(dep); err != nil {
			return err
		}
		apply(dep)

		_, err = tx.ExecContext(ctx, `
			UPDATE regional_deployments
			SET status = $1, health_checked_at = $2, updated_at = $3
			WHERE id = $4
		`, string(dep.Status), nullTime(dep.HealthCheckedAt), dep.UpdatedAt, uuid.UUID(dep.ID))
		if err != nil {
			return fmt.Errorf("update regional deployment: %w", err)
		}
		out = dep
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

func (s *Postgres) queryDeployments(ctx context.Context, query string, args ...any) ([]*deployment.RegionalDeployment, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query regional deployments: %w", err)
	}
	defer rows.Close()

	var out []*deployment.RegionalDeployment
	for rows.Next() {
		dep, err := scanDeployment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeployment(row rowScanner) (*deployment.RegionalDeployment, error) {
	var (
		dep          deployment.RegionalDeployment
		depID        uuid.UUID
		tenantID     uuid.UUID
		jurisdiction string
		status       string
		healthAt     sql.NullTime
	)
	err := row.Scan(&depID, &tenantID, &jurisdiction, &dep.Region, &dep.Namespace,
		&status, &healthAt, &dep.CreatedAt, &dep.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan regional deployment: %w", err)
	}

	dep.ID = id.DeploymentID(depID)
	dep.TenantID = id.TenantID(tenantID)
	dep.Jurisdiction = id.Jurisdiction(jurisdiction)
	dep.Status = deployment.DeploymentStatus(status)
	if healthAt.Valid {
		dep.HealthCheckedAt = healthAt.Time
	}
	return &dep, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

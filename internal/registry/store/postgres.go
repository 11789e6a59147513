package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"meridian/internal/registry"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
)

// Postgres persists sovereign model registrations. A unique index on
// (tenant_id, model_ref, jurisdiction) backs the one-registration invariant.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, model *registry.SovereignModel) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO sovereign_models
			(id, tenant_id, model_ref, jurisdiction, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		uuid.UUID(model.ID), uuid.UUID(model.TenantID), model.ModelRef.String(),
		model.Jurisdiction.String(), string(model.Status), model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert sovereign model: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction) (*registry.SovereignModel, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, tenant_id, model_ref, jurisdiction, status, created_at, updated_at
		FROM sovereign_models
		WHERE tenant_id = $1 AND model_ref = $2 AND jurisdiction = $3
	`, uuid.UUID(tenantID), modelRef.String(), jurisdiction.String())
	return scanModel(row)
}

func (s *Postgres) ListByJurisdiction(ctx context.Context, tenantID id.TenantID, jurisdiction id.Jurisdiction) ([]*registry.SovereignModel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, model_ref, jurisdiction, status, created_at, updated_at
		FROM sovereign_models
		WHERE tenant_id = $1 AND jurisdiction = $2
	`, uuid.UUID(tenantID), jurisdiction.String())
	if err != nil {
		return nil, fmt.Errorf("list sovereign models: %w", err)
	}
	defer rows.Close()

	var out []*registry.SovereignModel
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	return out, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, tenantID id.TenantID, modelRef id.ModelRef, jurisdiction id.Jurisdiction,
	validate func(*registry.SovereignModel) error, apply func(*registry.SovereignModel)) (*registry.SovereignModel, error) {

	var out *registry.SovereignModel
	run := func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, tenant_id, model_ref, jurisdiction, status, created_at, updated_at
			FROM sovereign_models
			WHERE tenant_id = $1 AND model_ref = $2 AND jurisdiction = $3
			FOR UPDATE
		`, uuid.UUID(tenantID), modelRef.String(), jurisdiction.String())

		model, err := scanModel(row)
		if err != nil {
			return err
		}

		if err := validate(model); err != nil {
			return err
		}
		apply(model)

		_, err = tx.ExecContext(ctx, `
			UPDATE sovereign_models SET status = $1, updated_at = $2 WHERE id = $3
		`, string(model.Status), model.UpdatedAt, uuid.UUID(model.ID))
		if err != nil {
			return fmt.Errorf("update sovereign model: %w", err)
		}
		out = model
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModel(row rowScanner) (*registry.SovereignModel, error) {
	var (
		model        registry.SovereignModel
		regID        uuid.UUID
		tenantID     uuid.UUID
		modelRef     string
		jurisdiction string
		status       string
	)
	err := row.Scan(&regID, &tenantID, &modelRef, &jurisdiction, &status,
		&model.CreatedAt, &model.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan sovereign model: %w", err)
	}

	model.ID = id.RegistrationID(regID)
	model.TenantID = id.TenantID(tenantID)
	model.ModelRef = id.ModelRef(modelRef)
	model.Jurisdiction = id.Jurisdiction(jurisdiction)
	model.Status = registry.ApprovalStatus(status)
	return &model, nil
}

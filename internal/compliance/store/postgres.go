package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"meridian/internal/compliance"
	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"
	txcontext "meridian/pkg/platform/tx"
)

// Postgres persists compliance maps.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, m *compliance.ComplianceMap) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO compliance_maps
			(id, jurisdiction, legal_framework, requirements,
			 encryption_required, retention_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		uuid.UUID(m.ID), m.Jurisdiction.String(), m.LegalFramework,
		pq.Array(m.Requirements), m.EncryptionRequired, m.RetentionDays,
		m.CreatedAt, m.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert compliance map: %w", err)
	}
	return nil
}

func (s *Postgres) GetByJurisdiction(ctx context.Context, jurisdiction id.Jurisdiction) (*compliance.ComplianceMap, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, jurisdiction, legal_framework, requirements,
		       encryption_required, retention_days, created_at, updated_at
		FROM compliance_maps
		WHERE jurisdiction = $1
	`, jurisdiction.String())
	return scanMap(row)
}

func (s *Postgres) List(ctx context.Context) ([]*compliance.ComplianceMap, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, jurisdiction, legal_framework, requirements,
		       encryption_required, retention_days, created_at, updated_at
		FROM compliance_maps
	`)
	if err != nil {
		return nil, fmt.Errorf("query compliance maps: %w", err)
	}
	defer rows.Close()

	var out []*compliance.ComplianceMap
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
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

func scanMap(row rowScanner) (*compliance.ComplianceMap, error) {
	var (
		m            compliance.ComplianceMap
		mappingID    uuid.UUID
		jurisdiction string
		requirements pq.StringArray
	)
	err := row.Scan(&mappingID, &jurisdiction, &m.LegalFramework, &requirements,
		&m.EncryptionRequired, &m.RetentionDays, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan compliance map: %w", err)
	}

	m.ID = id.MappingID(mappingID)
	m.Jurisdiction = id.Jurisdiction(jurisdiction)
	m.Requirements = []string(requirements)
	return &m, nil
}

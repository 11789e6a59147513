package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	audit "meridian/pkg/platform/audit"
	"meridian/pkg/platform/audit/worker"
	txcontext "meridian/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and published to Kafka by the outbox
// worker. Kafka is the source of truth for downstream consumers; the outbox
// row is the durability guarantee between commit and publish.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka.
// Field names match audit.Event for deserialization by consumers.
type outboxPayload struct {
	ID           string `json:"ID"`
	Category     string `json:"Category"`
	Timestamp    string `json:"Timestamp"`
	TenantID     string `json:"TenantID,omitempty"`
	Jurisdiction string `json:"Jurisdiction,omitempty"`
	Action       string `json:"Action"`
	Subject      string `json:"Subject,omitempty"`
	Decision     string `json:"Decision,omitempty"`
	Reason       string `json:"Reason,omitempty"`
	RequestID    string `json:"RequestID,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
// When a transaction is present in ctx the insert joins it, so the event is
// committed atomically with the state change it records.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	// Always derive category from action - eventCategories is the source of truth.
	category := audit.EventType(event.Action).Category()

	payload := outboxPayload{
		ID:           eventID.String(),
		Category:     string(category),
		Timestamp:    event.Timestamp.Format(time.RFC3339Nano),
		Jurisdiction: event.Jurisdiction,
		Action:       event.Action,
		Subject:      event.Subject,
		Decision:     event.Decision,
		Reason:       event.Reason,
		RequestID:    event.RequestID,
	}
	if !event.TenantID.IsNil() {
		payload.TenantID = event.TenantID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	// Events for one tenant share an aggregate so Kafka ordering holds per
	// (topic, key) pair, which is all the delivery contract promises.
	aggregateType := "audit"
	aggregateID := eventID.String()
	if !event.TenantID.IsNil() {
		aggregateType = "tenant"
		aggregateID = event.TenantID.String()
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.New(), // outbox entry ID
		aggregateType,
		aggregateID,
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// NextBatch returns up to limit unpublished entries in commit order.
// A single worker polls the outbox, so no row locking is needed here.
func (s *Store) NextBatch(ctx context.Context, limit int) ([]worker.Entry, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select outbox batch: %w", err)
	}
	defer rows.Close()

	var entries []worker.Entry
	for rows.Next() {
		var e worker.Entry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkPublished stamps entries as delivered. At-least-once: a crash between
// produce and this update replays the batch on restart.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE outbox SET published_at = $1 WHERE id = ANY($2)`
	if _, err := s.db.ExecContext(ctx, query, time.Now(), pq.Array(ids)); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

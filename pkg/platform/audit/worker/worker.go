// Package worker drains the transactional outbox into Kafka.
//
// The worker polls for unpublished outbox entries, produces them keyed by
// aggregate ID (so per-tenant ordering holds), and marks them published.
// Delivery is at-least-once: a crash between produce and mark replays the
// batch on restart, and consumers must tolerate duplicates.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Source supplies unpublished outbox entries. Implemented by the postgres
// audit store.
type Source interface {
	NextBatch(ctx context.Context, limit int) ([]Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}

// Entry mirrors the outbox row shape the worker needs.
type Entry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
}

// Producer delivers one record to the broker. Implemented by the platform
// Kafka client.
type Producer interface {
	Produce(ctx context.Context, key string, value []byte) error
}

// Worker polls the outbox and publishes entries until its context is done.
type Worker struct {
	source    Source
	producer  Producer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// Option configures the Worker.
type Option func(*Worker)

// WithInterval overrides the poll interval (default 500ms).
func WithInterval(d time.Duration) Option {
	return func(w *Worker) { w.interval = d }
}

// WithBatchSize overrides the per-poll batch size (default 100).
func WithBatchSize(n int) Option {
	return func(w *Worker) { w.batchSize = n }
}

func New(source Source, producer Producer, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		source:    source,
		producer:  producer,
		logger:    logger,
		interval:  500 * time.Millisecond,
		batchSize: 100,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled. Publish errors are logged and retried on
// the next tick; they never drop entries.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) error {
	entries, err := w.source.NextBatch(ctx, w.batchSize)
	if err != nil {
		return err
	}

	published := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		if err := w.producer.Produce(ctx, entry.AggregateID, entry.Payload); err != nil {
			// Stop at the first failure to preserve per-aggregate order;
			// everything already produced still gets marked.
			w.logger.WarnContext(ctx, "outbox publish failed",
				"outbox_id", entry.ID,
				"event_type", entry.EventType,
				"error", err,
			)
			break
		}
		published = append(published, entry.ID)
	}

	return w.source.MarkPublished(ctx, published)
}

package audit

import "context"

// Store durably persists audit events. Production uses the transactional
// outbox (store/postgres) so an event written in the same transaction as the
// state change cannot be lost between commit and publish; tests use the
// in-memory store.
type Store interface {
	Append(ctx context.Context, event Event) error
}

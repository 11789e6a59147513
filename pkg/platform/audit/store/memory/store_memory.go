package memory

import (
	"context"
	"sync"

	audit "meridian/pkg/platform/audit"
)

// Store is an in-memory audit sink for unit tests and local development.
type Store struct {
	mu     sync.Mutex
	events []audit.Event
	// FailAppend makes Append return this error, for exercising the
	// fail-closed path of the compliance publisher.
	FailAppend error
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppend != nil {
		return s.FailAppend
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *Store) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}

// LastEvent returns the most recent event, or a zero Event if none.
func (s *Store) LastEvent() audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return audit.Event{}
	}
	return s.events[len(s.events)-1]
}

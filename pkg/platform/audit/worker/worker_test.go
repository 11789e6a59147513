package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type fakeSource struct {
	entries []Entry
	marked  [][]uuid.UUID
	err     error
}

func (s *fakeSource) NextBatch(_ context.Context, limit int) ([]Entry, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	return s.entries[:limit], nil
}

func (s *fakeSource) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	s.marked = append(s.marked, ids)
	return nil
}

type fakeProducer struct {
	produced []string
	failOn   string
}

func (p *fakeProducer) Produce(_ context.Context, key string, _ []byte) error {
	if key == p.failOn {
		return errors.New("broker unavailable")
	}
	p.produced = append(p.produced, key)
	return nil
}

type WorkerSuite struct {
	suite.Suite
	source   *fakeSource
	producer *fakeProducer
	worker   *Worker
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.source = &fakeSource{}
	s.producer = &fakeProducer{}
	s.worker = New(s.source, s.producer, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithInterval(time.Millisecond), WithBatchSize(10))
}

func entry(aggregate string) Entry {
	return Entry{
		ID:          uuid.New(),
		AggregateID: aggregate,
		EventType:   "residency.violation",
		Payload:     []byte(`{}`),
	}
}

func (s *WorkerSuite) TestDrainPreservesOrder() {
	a, b, c := entry("tenant-a"), entry("tenant-a"), entry("tenant-b")
	s.source.entries = []Entry{a, b, c}

	s.Require().NoError(s.worker.drainOnce(context.Background()))

	s.Equal([]string{"tenant-a", "tenant-a", "tenant-b"}, s.producer.produced)
	s.Require().Len(s.source.marked, 1)
	s.Equal([]uuid.UUID{a.ID, b.ID, c.ID}, s.source.marked[0])
}

func (s *WorkerSuite) TestDrainStopsAtFirstFailure() {
	a, b, c := entry("tenant-a"), entry("tenant-b"), entry("tenant-c")
	s.source.entries = []Entry{a, b, c}
	s.producer.failOn = "tenant-b"

	s.Require().NoError(s.worker.drainOnce(context.Background()))

	s.Equal([]string{"tenant-a"}, s.producer.produced,
		"nothing after the failed entry may be produced")
	s.Require().Len(s.source.marked, 1)
	s.Equal([]uuid.UUID{a.ID}, s.source.marked[0],
		"the successfully produced prefix is still marked")
}

func (s *WorkerSuite) TestDrainSourceFailure() {
	s.source.err = errors.New("connection refused")

	err := s.worker.drainOnce(context.Background())
	s.Require().Error(err)
	s.Empty(s.producer.produced)
}

func (s *WorkerSuite) TestRunStopsOnContextCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.worker.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("worker did not stop on cancel")
	}
}

package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborlabs/contact-directory/internal/ports"
)

type stubOutbox struct {
	mu           sync.Mutex
	pending      []ports.OutboxRecord
	published    []uuid.UUID
	failed       []uuid.UUID
	deadLettered []uuid.UUID
}

func (s *stubOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, ports.OutboxRecord{
		OutboxID:    event.EventID,
		EventType:   event.EventType,
		Payload:     event.Payload,
		CreatedAt:   event.OccurredAt,
		FirstSeenAt: event.OccurredAt,
	})
	return nil
}

func (s *stubOutbox) ClaimUnpublished(_ context.Context, limit int, _ string, _ time.Time) ([]ports.OutboxRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.pending) {
		limit = len(s.pending)
	}
	out := make([]ports.OutboxRecord, limit)
	copy(out, s.pending[:limit])
	return out, nil
}

func (s *stubOutbox) MarkPublished(_ context.Context, outboxID uuid.UUID, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, outboxID)
	s.remove(outboxID)
	return nil
}

func (s *stubOutbox) MarkFailed(_ context.Context, outboxID uuid.UUID, _ string, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, outboxID)
	for i := range s.pending {
		if s.pending[i].OutboxID == outboxID {
			s.pending[i].RetryCount++
			break
		}
	}
	return nil
}

func (s *stubOutbox) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, _ string, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadLettered = append(s.deadLettered, outboxID)
	s.remove(outboxID)
	return nil
}

func (s *stubOutbox) remove(outboxID uuid.UUID) {
	for i := range s.pending {
		if s.pending[i].OutboxID == outboxID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

type flakyPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (p *flakyPublisher) Publish(context.Context, ports.OutboxRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return errors.New("broker unavailable")
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOutboxWorkerPublishesPendingRecords(t *testing.T) {
	t.Parallel()

	outbox := &stubOutbox{}
	ctx := context.Background()
	_ = outbox.Enqueue(ctx, ports.OutboxEvent{EventID: uuid.New(), EventType: "directory.contact.created", Payload: []byte(`{}`), OccurredAt: time.Now().UTC()})
	_ = outbox.Enqueue(ctx, ports.OutboxEvent{EventID: uuid.New(), EventType: "directory.contact.deleted", Payload: []byte(`{}`), OccurredAt: time.Now().UTC()})

	worker := NewOutboxWorker(testLogger(), outbox, &flakyPublisher{}, time.Second, 10, time.Minute, 3)
	if err := worker.processOnce(ctx); err != nil {
		t.Fatalf("process once: %v", err)
	}

	if len(outbox.published) != 2 {
		t.Fatalf("expected 2 published records, got %d", len(outbox.published))
	}
	if len(outbox.pending) != 0 {
		t.Fatalf("expected drained outbox, got %d pending", len(outbox.pending))
	}
}

func TestOutboxWorkerRetriesThenDeadLetters(t *testing.T) {
	t.Parallel()

	outbox := &stubOutbox{}
	ctx := context.Background()
	_ = outbox.Enqueue(ctx, ports.OutboxEvent{EventID: uuid.New(), EventType: "directory.contact.created", Payload: []byte(`{}`), OccurredAt: time.Now().UTC()})

	publisher := &flakyPublisher{failures: 10}
	worker := NewOutboxWorker(testLogger(), outbox, publisher, time.Second, 10, time.Minute, 2)

	// First failure is retried, second crosses maxRetries and dead-letters.
	if err := worker.processOnce(ctx); err != nil {
		t.Fatalf("process once: %v", err)
	}
	if len(outbox.failed) != 1 || len(outbox.deadLettered) != 0 {
		t.Fatalf("expected one retry first, got failed=%d dlq=%d", len(outbox.failed), len(outbox.deadLettered))
	}

	if err := worker.processOnce(ctx); err != nil {
		t.Fatalf("process once: %v", err)
	}
	if len(outbox.deadLettered) != 1 {
		t.Fatalf("expected dead-lettered record, got failed=%d dlq=%d", len(outbox.failed), len(outbox.deadLettered))
	}
	if len(outbox.pending) != 0 {
		t.Fatalf("expected drained outbox after dlq, got %d pending", len(outbox.pending))
	}
}

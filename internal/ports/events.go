package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is the write-side event payload prior to storage. It is
// adapter-neutral so application code stays independent of broker specifics.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	FirstSeenAt    time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls the publish-retry workflow for domain events.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}

// EventPublisher delivers claimed outbox records downstream.
type EventPublisher interface {
	Publish(ctx context.Context, record OutboxRecord) error
}

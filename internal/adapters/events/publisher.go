package events

import (
	"context"
	"log/slog"

	"github.com/harborlabs/contact-directory/internal/ports"
)

// LoggingPublisher emits outbox records to the structured log. It stands in
// for a broker client until one is provisioned for this deployment.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(ctx context.Context, record ports.OutboxRecord) error {
	p.logger.InfoContext(ctx, "published event",
		"event_type", record.EventType,
		"partition_key", record.PartitionKey,
		"payload", string(record.Payload),
	)
	return nil
}

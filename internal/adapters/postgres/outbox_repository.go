package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harborlabs/contact-directory/internal/domain"
	"github.com/harborlabs/contact-directory/internal/ports"
)

type outboxRepository struct {
	db *gorm.DB
}

func (r *outboxRepository) Enqueue(ctx context.Context, event ports.OutboxEvent) error {
	return enqueueOutbox(r.db.WithContext(ctx), event)
}

// ClaimUnpublished marks a batch of pending rows with the worker's claim token
// so concurrent workers never publish the same event. Rows whose previous claim
// expired are reclaimable.
func (r *outboxRepository) ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	now := time.Now().UTC()

	var claimed []outboxModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []outboxModel
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("published_at IS NULL").
			Where("dead_lettered_at IS NULL").
			Where("claim_until IS NULL OR claim_until < ?", now).
			Order("created_at ASC").
			Limit(limit).
			Find(&rows).Error
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.OutboxID)
		}
		err = tx.Model(&outboxModel{}).
			Where("outbox_id IN ?", ids).
			Updates(map[string]any{
				"claim_token": claimToken,
				"claim_until": claimUntil,
			}).Error
		if err != nil {
			return err
		}

		for i := range rows {
			token := claimToken
			until := claimUntil
			rows[i].ClaimToken = &token
			rows[i].ClaimUntil = &until
		}
		claimed = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]ports.OutboxRecord, 0, len(claimed))
	for _, row := range claimed {
		result = append(result, toOutboxRecord(row))
	}
	return result, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ? AND claim_token = ?", outboxID, claimToken).
		Updates(map[string]any{
			"published_at": at,
			"claim_token":  nil,
			"claim_until":  nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ? AND claim_token = ?", outboxID, claimToken).
		Updates(map[string]any{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_error":    errMsg,
			"last_error_at": at,
			"claim_token":   nil,
			"claim_until":   nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *outboxRepository) MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ? AND claim_token = ?", outboxID, claimToken).
		Updates(map[string]any{
			"dead_lettered_at": at,
			"last_error":       errMsg,
			"last_error_at":    at,
			"claim_token":      nil,
			"claim_until":      nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toOutboxRecord(row outboxModel) ports.OutboxRecord {
	return ports.OutboxRecord{
		OutboxID:       row.OutboxID,
		EventType:      row.EventType,
		PartitionKey:   row.PartitionKey,
		Payload:        []byte(row.Payload),
		RetryCount:     row.RetryCount,
		LastError:      row.LastError,
		CreatedAt:      row.CreatedAt,
		FirstSeenAt:    row.FirstSeenAt,
		PublishedAt:    row.PublishedAt,
		LastErrorAt:    row.LastErrorAt,
		ClaimToken:     row.ClaimToken,
		ClaimUntil:     row.ClaimUntil,
		DeadLetteredAt: row.DeadLetteredAt,
	}
}

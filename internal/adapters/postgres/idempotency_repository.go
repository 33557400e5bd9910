package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/harborlabs/contact-directory/internal/domain"
	"github.com/harborlabs/contact-directory/internal/ports"
)

const (
	idempotencyStatusPending   = "PENDING"
	idempotencyStatusCompleted = "COMPLETED"
)

type idempotencyRepository struct {
	db *gorm.DB
}

func (r *idempotencyRepository) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	var rec idempotencyModel
	if err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := ports.IdempotencyRecord{
		Key:          rec.IdempotencyKey,
		RequestHash:  rec.RequestHash,
		Status:       rec.Status,
		ResponseCode: rec.ResponseCode,
		ExpiresAt:    rec.ExpiresAt,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if rec.ResponseBody != nil {
		out.ResponseBody = []byte(*rec.ResponseBody)
	}
	return &out, nil
}

func (r *idempotencyRepository) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	now := time.Now().UTC()
	rec := idempotencyModel{
		IdempotencyKey: key,
		RequestHash:    requestHash,
		Status:         idempotencyStatusPending,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *idempotencyRepository) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error {
	body := string(responseBody)
	res := r.db.WithContext(ctx).Model(&idempotencyModel{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]any{
			"status":        idempotencyStatusCompleted,
			"response_code": responseCode,
			"response_body": body,
			"updated_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

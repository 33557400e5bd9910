package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborlabs/contact-directory/internal/domain"
	"github.com/harborlabs/contact-directory/internal/ports"
)

type identityRepository struct {
	db *gorm.DB
}

func (r *identityRepository) CreateWithOutboxTx(ctx context.Context, params ports.CreateIdentityParams, event ports.OutboxEvent) (domain.Identity, error) {
	var result domain.Identity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := identityModel{
			Email:          params.Email,
			PasswordHash:   params.PasswordHash,
			EmailConfirmed: params.EmailConfirmed,
			CreatedAt:      params.RegisteredAtUTC,
			UpdatedAt:      params.RegisteredAtUTC,
		}
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}

		payload := event.Payload
		if len(payload) == 0 {
			payload = []byte(`{}`)
		}
		outbox := outboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: rec.IdentityID.String(),
			Payload:      string(payload),
			CreatedAt:    event.OccurredAt,
			FirstSeenAt:  event.OccurredAt,
		}
		if err := tx.Create(&outbox).Error; err != nil {
			return err
		}

		result = toDomainIdentity(rec, nil)
		return nil
	})
	if err != nil {
		return domain.Identity{}, err
	}
	return result, nil
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (domain.Identity, error) {
	var rec identityModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Identity{}, domain.ErrNotFound
		}
		return domain.Identity{}, err
	}
	claims, err := r.loadClaims(ctx, rec.IdentityID)
	if err != nil {
		return domain.Identity{}, err
	}
	return toDomainIdentity(rec, claims), nil
}

func (r *identityRepository) GetByID(ctx context.Context, identityID uuid.UUID) (domain.Identity, error) {
	var rec identityModel
	if err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Identity{}, domain.ErrNotFound
		}
		return domain.Identity{}, err
	}
	claims, err := r.loadClaims(ctx, rec.IdentityID)
	if err != nil {
		return domain.Identity{}, err
	}
	return toDomainIdentity(rec, claims), nil
}

func (r *identityRepository) RecordLoginFailure(ctx context.Context, identityID uuid.UUID, failedCount int, lockedUntil *time.Time, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&identityModel{}).
		Where("identity_id = ?", identityID).
		Updates(map[string]any{
			"failed_login_count": failedCount,
			"locked_until":       lockedUntil,
			"updated_at":         at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *identityRepository) ResetLockout(ctx context.Context, identityID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&identityModel{}).
		Where("identity_id = ?", identityID).
		Updates(map[string]any{
			"failed_login_count": 0,
			"locked_until":       nil,
			"updated_at":         at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *identityRepository) GrantClaim(ctx context.Context, identityID uuid.UUID, claim domain.Claim, at time.Time) error {
	rec := identityClaimModel{
		IdentityID: identityID,
		ClaimType:  claim.Type,
		ClaimValue: claim.Value,
		CreatedAt:  at,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *identityRepository) loadClaims(ctx context.Context, identityID uuid.UUID) ([]identityClaimModel, error) {
	var claims []identityClaimModel
	if err := r.db.WithContext(ctx).Where("identity_id = ?", identityID).Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborlabs/contact-directory/internal/domain"
	"github.com/harborlabs/contact-directory/internal/ports"
)

type contactRepository struct {
	db *gorm.DB
}

func (r *contactRepository) CreateWithOutboxTx(ctx context.Context, contact domain.Contact, event ports.OutboxEvent) (domain.Contact, error) {
	var result domain.Contact
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := contactModel{
			ContactID:   contact.ID,
			Nome:        contact.Nome,
			Telefone:    contact.Telefone,
			TipoContato: contact.TipoContato,
			CreatedAt:   contact.CreatedAt,
			UpdatedAt:   contact.UpdatedAt,
		}
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		if err := enqueueOutbox(tx, event); err != nil {
			return err
		}
		result = toDomainContact(rec)
		return nil
	})
	if err != nil {
		return domain.Contact{}, err
	}
	return result, nil
}

func (r *contactRepository) GetByID(ctx context.Context, contactID uuid.UUID) (domain.Contact, error) {
	var rec contactModel
	if err := r.db.WithContext(ctx).Where("contact_id = ?", contactID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Contact{}, domain.ErrNotFound
		}
		return domain.Contact{}, err
	}
	return toDomainContact(rec), nil
}

func (r *contactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	var rows []contactModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Contact, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainContact(row))
	}
	return result, nil
}

func (r *contactRepository) UpdateWithOutboxTx(ctx context.Context, contact domain.Contact, event ports.OutboxEvent) (domain.Contact, error) {
	var result domain.Contact
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&contactModel{}).
			Where("contact_id = ?", contact.ID).
			Updates(map[string]any{
				"nome":         contact.Nome,
				"telefone":     contact.Telefone,
				"tipo_contato": contact.TipoContato,
				"updated_at":   contact.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := enqueueOutbox(tx, event); err != nil {
			return err
		}

		var rec contactModel
		if err := tx.Where("contact_id = ?", contact.ID).Take(&rec).Error; err != nil {
			return err
		}
		result = toDomainContact(rec)
		return nil
	})
	if err != nil {
		return domain.Contact{}, err
	}
	return result, nil
}

func (r *contactRepository) DeleteWithOutboxTx(ctx context.Context, contactID uuid.UUID, event ports.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("contact_id = ?", contactID).Delete(&contactModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return enqueueOutbox(tx, event)
	})
}

func enqueueOutbox(tx *gorm.DB, event ports.OutboxEvent) error {
	rec := outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      string(event.Payload),
		CreatedAt:    event.OccurredAt,
		FirstSeenAt:  event.OccurredAt,
	}
	if len(event.Payload) == 0 {
		rec.Payload = `{}`
	}
	return tx.Create(&rec).Error
}

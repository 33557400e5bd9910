package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/harborlabs/contact-directory/internal/domain"
	"github.com/harborlabs/contact-directory/internal/ports"
)

// CreateContact validates the candidate, assigns a fresh id, and persists the
// record together with its outbox event in one transaction.
func (s *Service) CreateContact(ctx context.Context, req ContactRequest) (ContactResponse, error) {
	in := domain.NormalizeContact(req.input())
	if err := domain.ValidateContact(in, s.cfg.TelefonePattern); err != nil {
		return ContactResponse{}, err
	}

	now := s.nowFn()
	contact := domain.Contact{
		ID:          uuid.New(),
		Nome:        in.Nome,
		Telefone:    in.Telefone,
		TipoContato: in.TipoContato,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, err := s.contacts.CreateWithOutboxTx(ctx, contact, s.contactEvent(eventTypeContactCreated, contact.ID, now))
	if err != nil {
		return ContactResponse{}, err
	}
	return toContactResponse(stored), nil
}

// GetContact returns a contact by id.
func (s *Service) GetContact(ctx context.Context, contactID uuid.UUID) (ContactResponse, error) {
	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return ContactResponse{}, err
	}
	return toContactResponse(contact), nil
}

// ListContacts returns all contacts. Ordering is not guaranteed.
func (s *Service) ListContacts(ctx context.Context) ([]ContactResponse, error) {
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(c))
	}
	return out, nil
}

// UpdateContact replaces all caller-supplied fields of an existing contact.
// The id is never reassigned; a missing record fails NotFound before the
// replacement is even validated.
func (s *Service) UpdateContact(ctx context.Context, contactID uuid.UUID, req ContactRequest) (ContactResponse, error) {
	if _, err := s.contacts.GetByID(ctx, contactID); err != nil {
		return ContactResponse{}, err
	}

	in := domain.NormalizeContact(req.input())
	if err := domain.ValidateContact(in, s.cfg.TelefonePattern); err != nil {
		return ContactResponse{}, err
	}

	now := s.nowFn()
	replacement := domain.Contact{
		ID:          contactID,
		Nome:        in.Nome,
		Telefone:    in.Telefone,
		TipoContato: in.TipoContato,
		UpdatedAt:   now,
	}

	stored, err := s.contacts.UpdateWithOutboxTx(ctx, replacement, s.contactEvent(eventTypeContactUpdated, contactID, now))
	if err != nil {
		return ContactResponse{}, err
	}
	return toContactResponse(stored), nil
}

// DeleteContact removes a contact. Policy enforcement happens at the route;
// the repository itself performs no authorization.
func (s *Service) DeleteContact(ctx context.Context, contactID uuid.UUID) error {
	now := s.nowFn()
	return s.contacts.DeleteWithOutboxTx(ctx, contactID, s.contactEvent(eventTypeContactDeleted, contactID, now))
}

func (s *Service) contactEvent(eventType string, contactID uuid.UUID, now time.Time) ports.OutboxEvent {
	payload, _ := json.Marshal(map[string]any{
		"contact_id":  contactID,
		"occurred_at": now,
	})
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: contactID.String(),
		Payload:      payload,
		OccurredAt:   now,
	}
}

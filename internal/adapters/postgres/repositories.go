package postgres

import (
	"gorm.io/gorm"

	"github.com/harborlabs/contact-directory/internal/ports"
)

// Repositories bundles every gorm-backed repository over one connection pool.
type Repositories struct {
	Identities    ports.IdentityRepository
	Contacts      ports.ContactRepository
	LoginAttempts ports.LoginAttemptRepository
	Outbox        ports.OutboxRepository
	Idempotency   ports.IdempotencyRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Identities:    &identityRepository{db: db},
		Contacts:      &contactRepository{db: db},
		LoginAttempts: &loginAttemptRepository{db: db},
		Outbox:        &outboxRepository{db: db},
		Idempotency:   &idempotencyRepository{db: db},
	}
}

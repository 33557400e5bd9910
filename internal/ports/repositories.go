package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harborlabs/contact-directory/internal/domain"
)

// CreateIdentityParams captures atomic identity-creation inputs. Outbox and
// idempotency metadata ride along so registration stays durable and replay-safe.
type CreateIdentityParams struct {
	Email           string
	PasswordHash    string
	EmailConfirmed  bool
	IdempotencyKey  string
	RegisteredAtUTC time.Time
}

// IdentityRepository defines persistence for the credential store. The
// transactional create enforces identity+outbox consistency; lockout state is
// updated through explicit methods so the counters stay on the identity row.
type IdentityRepository interface {
	CreateWithOutboxTx(ctx context.Context, params CreateIdentityParams, event OutboxEvent) (domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (domain.Identity, error)
	GetByID(ctx context.Context, identityID uuid.UUID) (domain.Identity, error)
	RecordLoginFailure(ctx context.Context, identityID uuid.UUID, failedCount int, lockedUntil *time.Time, at time.Time) error
	ResetLockout(ctx context.Context, identityID uuid.UUID, at time.Time) error
	GrantClaim(ctx context.Context, identityID uuid.UUID, claim domain.Claim, at time.Time) error
}

// ContactRepository persists contact records. Field invariants are validated
// before these methods are called; each mutation runs in one transaction that
// also carries its outbox event.
type ContactRepository interface {
	CreateWithOutboxTx(ctx context.Context, contact domain.Contact, event OutboxEvent) (domain.Contact, error)
	GetByID(ctx context.Context, contactID uuid.UUID) (domain.Contact, error)
	List(ctx context.Context) ([]domain.Contact, error)
	UpdateWithOutboxTx(ctx context.Context, contact domain.Contact, event OutboxEvent) (domain.Contact, error)
	DeleteWithOutboxTx(ctx context.Context, contactID uuid.UUID, event OutboxEvent) error
}

// LoginAttemptRepository stores login outcomes used for audit.
type LoginAttemptRepository interface {
	Insert(ctx context.Context, attempt domain.LoginAttempt) error
	ListByIdentity(ctx context.Context, identityID uuid.UUID, limit, offset int) ([]domain.LoginAttempt, error)
}

// IdempotencyRecord tracks a previously accepted mutating request.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	Status       string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IdempotencyRepository enforces idempotent mutation semantics on registration.
type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
}

package application

import (
	"regexp"
	"time"

	"github.com/harborlabs/contact-directory/internal/domain"
	"github.com/harborlabs/contact-directory/internal/ports"
)

const (
	eventTypeUserRegistered = "auth.user.registered"
	eventTypeContactCreated = "directory.contact.created"
	eventTypeContactUpdated = "directory.contact.updated"
	eventTypeContactDeleted = "directory.contact.deleted"
)

type Config struct {
	TokenTTL             time.Duration
	FailedLoginThreshold int
	LockoutDuration      time.Duration
	PasswordPolicy       domain.PasswordPolicy
	// TelefonePattern is optional; nil keeps telephone validation to the
	// required/length checks only.
	TelefonePattern *regexp.Regexp

	RateLimitIPThreshold         int
	RateLimitIdentifierThreshold int
	RateLimitWindow              time.Duration
}

type Service struct {
	cfg           Config
	identities    ports.IdentityRepository
	contacts      ports.ContactRepository
	loginAttempts ports.LoginAttemptRepository
	outbox        ports.OutboxRepository
	idempotency   ports.IdempotencyRepository
	rateLimits    ports.RateLimitStore
	hasher        ports.PasswordHasher
	tokenSigner   ports.TokenSigner
	nowFn         func() time.Time
}

type Dependencies struct {
	Config        Config
	Identities    ports.IdentityRepository
	Contacts      ports.ContactRepository
	LoginAttempts ports.LoginAttemptRepository
	Outbox        ports.OutboxRepository
	Idempotency   ports.IdempotencyRepository
	RateLimits    ports.RateLimitStore
	Hasher        ports.PasswordHasher
	TokenSigner   ports.TokenSigner
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:           deps.Config,
		identities:    deps.Identities,
		contacts:      deps.Contacts,
		loginAttempts: deps.LoginAttempts,
		outbox:        deps.Outbox,
		idempotency:   deps.Idempotency,
		rateLimits:    deps.RateLimits,
		hasher:        deps.Hasher,
		tokenSigner:   deps.TokenSigner,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}

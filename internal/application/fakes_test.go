package application_test

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborlabs/contact-directory/internal/adapters/security"
	"github.com/harborlabs/contact-directory/internal/application"
	"github.com/harborlabs/contact-directory/internal/domain"
	"github.com/harborlabs/contact-directory/internal/ports"
)

type fixture struct {
	service    *application.Service
	identities *fakeIdentityRepo
	contacts   *fakeContactRepo
	attempts   *fakeLoginAttemptRepo
	limits     *fakeRateLimitStore
}

func newFixture() *fixture {
	return newFixtureWithConfig(application.Config{
		TokenTTL:             time.Hour,
		FailedLoginThreshold: 3,
		LockoutDuration:      15 * time.Minute,
		PasswordPolicy:       domain.PasswordPolicy{MinLength: 8, RequireLetterDigit: true},
		TelefonePattern:      regexp.MustCompile(`^[0-9()+\- ]+$`),
	})
}

func newFixtureWithConfig(cfg application.Config) *fixture {
	identities := &fakeIdentityRepo{byEmail: map[string]domain.Identity{}}
	contacts := &fakeContactRepo{byID: map[uuid.UUID]domain.Contact{}}
	attempts := &fakeLoginAttemptRepo{}
	limits := &fakeRateLimitStore{states: map[string]ports.RateLimitState{}}

	signer, err := security.NewEphemeralJWTSigner("test-key-1")
	if err != nil {
		panic(err)
	}

	svc := application.NewService(application.Dependencies{
		Config:        cfg,
		Identities:    identities,
		Contacts:      contacts,
		LoginAttempts: attempts,
		Idempotency:   &fakeIdempotencyRepo{records: map[string]ports.IdempotencyRecord{}},
		RateLimits:    limits,
		Hasher:        fakeHasher{},
		TokenSigner:   signer,
	})

	return &fixture{
		service:    svc,
		identities: identities,
		contacts:   contacts,
		attempts:   attempts,
		limits:     limits,
	}
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}

type fakeIdentityRepo struct {
	mu      sync.Mutex
	byEmail map[string]domain.Identity
	events  []ports.OutboxEvent
}

func (r *fakeIdentityRepo) CreateWithOutboxTx(_ context.Context, params ports.CreateIdentityParams, event ports.OutboxEvent) (domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[params.Email]; exists {
		return domain.Identity{}, domain.ErrConflict
	}
	identity := domain.Identity{
		ID:             uuid.New(),
		Email:          params.Email,
		PasswordHash:   params.PasswordHash,
		EmailConfirmed: params.EmailConfirmed,
		CreatedAt:      params.RegisteredAtUTC,
		UpdatedAt:      params.RegisteredAtUTC,
	}
	r.byEmail[params.Email] = identity
	r.events = append(r.events, event)
	return identity, nil
}

func (r *fakeIdentityRepo) GetByEmail(_ context.Context, email string) (domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byEmail[email]
	if !ok {
		return domain.Identity{}, domain.ErrNotFound
	}
	return identity, nil
}

func (r *fakeIdentityRepo) GetByID(_ context.Context, identityID uuid.UUID) (domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, identity := range r.byEmail {
		if identity.ID == identityID {
			return identity, nil
		}
	}
	return domain.Identity{}, domain.ErrNotFound
}

func (r *fakeIdentityRepo) RecordLoginFailure(_ context.Context, identityID uuid.UUID, failedCount int, lockedUntil *time.Time, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, identity := range r.byEmail {
		if identity.ID == identityID {
			identity.FailedLoginCount = failedCount
			identity.LockedUntil = lockedUntil
			identity.UpdatedAt = at
			r.byEmail[email] = identity
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeIdentityRepo) ResetLockout(_ context.Context, identityID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, identity := range r.byEmail {
		if identity.ID == identityID {
			identity.FailedLoginCount = 0
			identity.LockedUntil = nil
			identity.UpdatedAt = at
			r.byEmail[email] = identity
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeIdentityRepo) GrantClaim(_ context.Context, identityID uuid.UUID, claim domain.Claim, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, identity := range r.byEmail {
		if identity.ID == identityID {
			identity.Claims = append(identity.Claims, claim)
			r.byEmail[email] = identity
			return nil
		}
	}
	return domain.ErrNotFound
}

// expireLock rewinds a stored lockout so tests can exercise the expired-lock
// login path without sleeping.
func (r *fakeIdentityRepo) expireLock(email string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity := r.byEmail[email]
	identity.LockedUntil = &at
	r.byEmail[email] = identity
}

type fakeContactRepo struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]domain.Contact
	events []ports.OutboxEvent
}

func (r *fakeContactRepo) CreateWithOutboxTx(_ context.Context, contact domain.Contact, event ports.OutboxEvent) (domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[contact.ID]; exists {
		return domain.Contact{}, domain.ErrConflict
	}
	r.byID[contact.ID] = contact
	r.events = append(r.events, event)
	return contact, nil
}

func (r *fakeContactRepo) GetByID(_ context.Context, contactID uuid.UUID) (domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contact, ok := r.byID[contactID]
	if !ok {
		return domain.Contact{}, domain.ErrNotFound
	}
	return contact, nil
}

func (r *fakeContactRepo) List(_ context.Context) ([]domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Contact, 0, len(r.byID))
	for _, contact := range r.byID {
		out = append(out, contact)
	}
	return out, nil
}

func (r *fakeContactRepo) UpdateWithOutboxTx(_ context.Context, contact domain.Contact, event ports.OutboxEvent) (domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[contact.ID]
	if !ok {
		return domain.Contact{}, domain.ErrNotFound
	}
	contact.CreatedAt = existing.CreatedAt
	r.byID[contact.ID] = contact
	r.events = append(r.events, event)
	return contact, nil
}

func (r *fakeContactRepo) DeleteWithOutboxTx(_ context.Context, contactID uuid.UUID, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[contactID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, contactID)
	r.events = append(r.events, event)
	return nil
}

type fakeLoginAttemptRepo struct {
	mu       sync.Mutex
	attempts []domain.LoginAttempt
}

func (r *fakeLoginAttemptRepo) Insert(_ context.Context, attempt domain.LoginAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt.ID = int64(len(r.attempts) + 1)
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *fakeLoginAttemptRepo) ListByIdentity(_ context.Context, identityID uuid.UUID, limit, offset int) ([]domain.LoginAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.LoginAttempt
	for _, attempt := range r.attempts {
		if attempt.IdentityID != nil && *attempt.IdentityID == identityID {
			out = append(out, attempt)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLoginAttemptRepo) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.attempts))
	for _, attempt := range r.attempts {
		out = append(out, attempt.Status)
	}
	return out
}

type fakeIdempotencyRepo struct {
	mu      sync.Mutex
	records map[string]ports.IdempotencyRecord
}

func (r *fakeIdempotencyRepo) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeIdempotencyRepo) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[key]; exists {
		return domain.ErrConflict
	}
	r.records[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, Status: "PENDING", ExpiresAt: expiresAt}
	return nil
}

func (r *fakeIdempotencyRepo) Complete(_ context.Context, key string, responseCode int, responseBody []byte, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = "COMPLETED"
	rec.ResponseCode = responseCode
	rec.ResponseBody = responseBody
	rec.UpdatedAt = at
	r.records[key] = rec
	return nil
}

type fakeRateLimitStore struct {
	mu     sync.Mutex
	states map[string]ports.RateLimitState
}

func (s *fakeRateLimitStore) Get(_ context.Context, key string) (ports.RateLimitState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[key], nil
}

func (s *fakeRateLimitStore) Increment(_ context.Context, key string, now time.Time, threshold int, window time.Duration) (ports.RateLimitState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[key]
	state.Count++
	if state.Count >= threshold {
		blockedUntil := now.Add(window)
		state.BlockedUntil = &blockedUntil
	}
	s.states[key] = state
	return state, nil
}

func (s *fakeRateLimitStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, key)
	return nil
}

func containsStatus(statuses []string, want string) bool {
	for _, status := range statuses {
		if strings.EqualFold(status, want) {
			return true
		}
	}
	return false
}

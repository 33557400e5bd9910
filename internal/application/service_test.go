package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborlabs/contact-directory/internal/application"
	"github.com/harborlabs/contact-directory/internal/domain"
)

func TestRegisterAndLoginIssueTokens(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	registerRes, err := f.service.Register(ctx, application.RegisterRequest{
		Email:    "User@Example.com",
		Password: "Secure123",
	}, "idem-1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registerRes.AccessToken == "" || registerRes.TokenType != "Bearer" {
		t.Fatalf("unexpected register token response: %+v", registerRes)
	}

	claims, err := f.service.ValidateToken(ctx, registerRes.AccessToken)
	if err != nil {
		t.Fatalf("validate register token: %v", err)
	}
	if claims.SubjectEmail != "user@example.com" {
		t.Fatalf("expected normalized subject, got %q", claims.SubjectEmail)
	}

	loginRes, err := f.service.Login(ctx, application.LoginRequest{
		Email:     "user@example.com",
		Password:  "Secure123",
		IPAddress: "127.0.0.1",
		UserAgent: "unit-test",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loginRes.AccessToken == "" {
		t.Fatalf("login token should not be empty")
	}
	if !containsStatus(f.attempts.statuses(), "SUCCESS") {
		t.Fatalf("expected a recorded SUCCESS attempt, got %v", f.attempts.statuses())
	}
}

func TestRegisterValidationCollectsFieldErrors(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.service.Register(context.Background(), application.RegisterRequest{
		Email:    "not-an-email",
		Password: "short",
	}, "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Fields["email"]) == 0 || len(ve.Fields["password"]) == 0 {
		t.Fatalf("expected email and password failures, got %v", ve.Fields)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.Register(ctx, application.RegisterRequest{Email: "dup@example.com", Password: "Secure123"}, ""); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := f.service.Register(ctx, application.RegisterRequest{Email: "dup@example.com", Password: "Secure123"}, ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate email, got %v", err)
	}
}

func TestLoginUnknownEmailHidesExistence(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.service.Login(context.Background(), application.LoginRequest{
		Email:    "ghost@example.com",
		Password: "Secure123",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if !containsStatus(f.attempts.statuses(), "FAILED") {
		t.Fatalf("expected a recorded FAILED attempt, got %v", f.attempts.statuses())
	}
}

func TestLoginLockoutAfterThreshold(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	if _, err := f.service.Register(ctx, application.RegisterRequest{Email: "lock@example.com", Password: "Secure123"}, ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	wrong := application.LoginRequest{Email: "lock@example.com", Password: "Wrong1234"}
	for i := 0; i < 2; i++ {
		if _, err := f.service.Login(ctx, wrong); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// Third failure crosses the threshold and locks the account.
	if _, err := f.service.Login(ctx, wrong); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked on threshold, got %v", err)
	}

	// The lock wins even over the correct password.
	correct := application.LoginRequest{Email: "lock@example.com", Password: "Secure123"}
	if _, err := f.service.Login(ctx, correct); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked with correct password, got %v", err)
	}
	if !containsStatus(f.attempts.statuses(), "BLOCKED") {
		t.Fatalf("expected a recorded BLOCKED attempt, got %v", f.attempts.statuses())
	}

	// Once the lock expires the failure window restarts and login succeeds.
	f.identities.expireLock("lock@example.com", time.Now().UTC().Add(-time.Minute))
	if _, err := f.service.Login(ctx, correct); err != nil {
		t.Fatalf("expected login after lock expiry, got %v", err)
	}

	identity, err := f.identities.GetByEmail(ctx, "lock@example.com")
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	if identity.FailedLoginCount != 0 || identity.LockedUntil != nil {
		t.Fatalf("expected lockout state reset, got count=%d locked_until=%v", identity.FailedLoginCount, identity.LockedUntil)
	}
}

func TestAuthorizePolicies(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	res, err := f.service.Register(ctx, application.RegisterRequest{Email: "claims@example.com", Password: "Secure123"}, "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Anonymous policy admits anything, including a missing token.
	if _, err := f.service.Authorize(ctx, "", ""); err != nil {
		t.Fatalf("anonymous policy should pass, got %v", err)
	}

	if _, err := f.service.Authorize(ctx, res.AccessToken, domain.PolicyAuthenticated); err != nil {
		t.Fatalf("authenticated policy with valid token should pass, got %v", err)
	}
	if _, err := f.service.Authorize(ctx, "garbage", domain.PolicyAuthenticated); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for garbage token, got %v", err)
	}

	if _, err := f.service.Authorize(ctx, res.AccessToken, domain.PolicyExcluirContato); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden without claim, got %v", err)
	}

	identity, err := f.identities.GetByEmail(ctx, "claims@example.com")
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	if err := f.identities.GrantClaim(ctx, identity.ID, domain.Claim{Type: domain.PolicyExcluirContato, Value: "true"}, time.Now().UTC()); err != nil {
		t.Fatalf("grant claim: %v", err)
	}

	// Claims are embedded at issuance, so a fresh login is required.
	granted, err := f.service.Login(ctx, application.LoginRequest{Email: "claims@example.com", Password: "Secure123"})
	if err != nil {
		t.Fatalf("login after grant failed: %v", err)
	}
	if _, err := f.service.Authorize(ctx, granted.AccessToken, domain.PolicyExcluirContato); err != nil {
		t.Fatalf("expected claim-backed token to pass, got %v", err)
	}
}

func TestRegisterRateLimitedByIP(t *testing.T) {
	t.Parallel()

	f := newFixtureWithConfig(application.Config{
		TokenTTL:             time.Hour,
		FailedLoginThreshold: 3,
		LockoutDuration:      15 * time.Minute,
		PasswordPolicy:       domain.PasswordPolicy{MinLength: 8, RequireLetterDigit: true},
		RateLimitIPThreshold: 2,
		RateLimitWindow:      time.Minute,
	})
	ctx := context.Background()

	if _, err := f.service.Register(ctx, application.RegisterRequest{Email: "a@example.com", Password: "Secure123", IPAddress: "10.0.0.1"}, ""); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := f.service.Register(ctx, application.RegisterRequest{Email: "b@example.com", Password: "Secure123", IPAddress: "10.0.0.1"}, ""); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited at threshold, got %v", err)
	}
}

func TestContactCRUDRoundTrip(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	created, err := f.service.CreateContact(ctx, application.ContactRequest{
		Nome:        "Maria Silva",
		Telefone:    "11987654321",
		TipoContato: "P",
	})
	if err != nil {
		t.Fatalf("create contact failed: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("create should assign an id")
	}

	fetched, err := f.service.GetContact(ctx, created.ID)
	if err != nil {
		t.Fatalf("get contact failed: %v", err)
	}
	if fetched != created {
		t.Fatalf("get returned %+v, want %+v", fetched, created)
	}

	list, err := f.service.ListContacts(ctx)
	if err != nil {
		t.Fatalf("list contacts failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(list))
	}

	updated, err := f.service.UpdateContact(ctx, created.ID, application.ContactRequest{
		Nome:        "Maria Souza",
		Telefone:    "11912345678",
		TipoContato: "C",
	})
	if err != nil {
		t.Fatalf("update contact failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("update must not reassign id: got %s want %s", updated.ID, created.ID)
	}
	if updated.Nome != "Maria Souza" || updated.Telefone != "11912345678" || updated.TipoContato != "C" {
		t.Fatalf("update did not replace fields: %+v", updated)
	}

	if err := f.service.DeleteContact(ctx, created.ID); err != nil {
		t.Fatalf("delete contact failed: %v", err)
	}
	if _, err := f.service.GetContact(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// One event per mutation: create, update, delete.
	if len(f.contacts.events) != 3 {
		t.Fatalf("expected 3 outbox events, got %d", len(f.contacts.events))
	}
}

func TestContactMutationsOnMissingRecord(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	missing := uuid.New()

	if _, err := f.service.UpdateContact(ctx, missing, application.ContactRequest{Nome: "X", Telefone: "1", TipoContato: "P"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := f.service.DeleteContact(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}

	// NotFound wins even when the replacement body is itself invalid.
	if _, err := f.service.UpdateContact(ctx, missing, application.ContactRequest{Nome: "", Telefone: "", TipoContato: "PF"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for invalid replacement of missing record, got %v", err)
	}
}

func TestRegisterIdempotencyKeyReplay(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	req := application.RegisterRequest{Email: "idem@example.com", Password: "Secure123"}
	first, err := f.service.Register(ctx, req, "idem-key-1")
	if err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	// Same key and body replays the stored response instead of re-registering.
	second, err := f.service.Register(ctx, req, "idem-key-1")
	if err != nil {
		t.Fatalf("replayed register failed: %v", err)
	}
	if second != first {
		t.Fatalf("expected replayed response %+v, got %+v", first, second)
	}

	// Same key with a different body is a key-reuse conflict, not an email conflict.
	other := application.RegisterRequest{Email: "other@example.com", Password: "Secure123"}
	if _, err := f.service.Register(ctx, other, "idem-key-1"); !errors.Is(err, domain.ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict on key reuse, got %v", err)
	}
}

func TestCreateContactValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.service.CreateContact(context.Background(), application.ContactRequest{
		Nome:        "Maria",
		Telefone:    "not-a-phone",
		TipoContato: "PF",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Fields["telefone"]) == 0 || len(ve.Fields["tipoContato"]) == 0 {
		t.Fatalf("expected telefone and tipoContato failures, got %v", ve.Fields)
	}
}

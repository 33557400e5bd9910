package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborlabs/contact-directory/internal/domain"
	"github.com/harborlabs/contact-directory/internal/ports"
)

// Register creates an identity and emits a registration outbox event in one
// transaction, then issues a token for the stored identity. Registered
// identities are marked confirmed immediately; there is no verification step.
func (s *Service) Register(ctx context.Context, req RegisterRequest, idempotencyKey string) (TokenResponse, error) {
	ve := &domain.ValidationError{}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		ve.Add("email", strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "))
	}
	if err := domain.ValidatePassword(req.Password, s.cfg.PasswordPolicy); err != nil {
		ve.Add("password", strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "))
	}
	if err := ve.OrNil(); err != nil {
		return TokenResponse{}, err
	}

	if ip := strings.TrimSpace(req.IPAddress); ip != "" {
		if err := s.enforceRateLimit(ctx, "register:ip:"+ip, s.cfg.RateLimitIPThreshold); err != nil {
			return TokenResponse{}, err
		}
	}
	if err := s.enforceRateLimit(ctx, "register:identifier:"+email, s.cfg.RateLimitIdentifierThreshold); err != nil {
		return TokenResponse{}, err
	}

	if idempotencyKey != "" {
		requestHash := hashRequest(req)
		replay, ok, err := s.replayIdempotent(ctx, idempotencyKey, requestHash)
		if err != nil {
			return TokenResponse{}, err
		}
		if ok {
			return replay, nil
		}
		if err := s.idempotency.Reserve(ctx, idempotencyKey, requestHash, s.nowFn().Add(7*24*time.Hour)); err != nil {
			return TokenResponse{}, fmt.Errorf("%w: %v", domain.ErrIdempotencyConflict, err)
		}
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowFn()
	payload, _ := json.Marshal(map[string]any{
		"email":         email,
		"registered_at": now,
	})

	identity, err := s.identities.CreateWithOutboxTx(ctx, ports.CreateIdentityParams{
		Email:           email,
		PasswordHash:    passwordHash,
		EmailConfirmed:  true,
		IdempotencyKey:  idempotencyKey,
		RegisteredAtUTC: now,
	}, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventTypeUserRegistered,
		PartitionKey: email,
		Payload:      payload,
		OccurredAt:   now,
	})
	if err != nil {
		return TokenResponse{}, err
	}

	token, err := s.issueToken(identity, nil, now)
	if err != nil {
		return TokenResponse{}, err
	}

	if idempotencyKey != "" {
		responseBody, _ := json.Marshal(token)
		_ = s.idempotency.Complete(ctx, idempotencyKey, 200, responseBody, s.nowFn())
	}

	return token, nil
}

// Login verifies credentials and enforces the persisted lockout state.
// A lockout in the future wins even over a correct password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	ve := &domain.ValidationError{}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		ve.Add("email", strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "))
	}
	if req.Password == "" {
		ve.Add("password", "password is required")
	}
	if err := ve.OrNil(); err != nil {
		return TokenResponse{}, err
	}

	if ip := strings.TrimSpace(req.IPAddress); ip != "" {
		if err := s.enforceRateLimit(ctx, "login:ip:"+ip, s.cfg.RateLimitIPThreshold); err != nil {
			return TokenResponse{}, err
		}
	}

	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.recordAttempt(ctx, nil, req, "FAILED", "USER_NOT_FOUND")
			return TokenResponse{}, domain.ErrInvalidCredentials
		}
		return TokenResponse{}, err
	}

	now := s.nowFn()
	if identity.Locked(now) {
		s.recordAttempt(ctx, &identity.ID, req, "BLOCKED", "ACCOUNT_LOCKED")
		s.logger(ctx).WarnContext(ctx, "account lockout active",
			"operation", "login",
			"outcome", "blocked",
			"email", email,
			"locked_until", identity.LockedUntil,
		)
		return TokenResponse{}, domain.ErrAccountLocked
	}
	if identity.LockedUntil != nil {
		// Expired lock: start a fresh failure window before counting.
		if err := s.identities.ResetLockout(ctx, identity.ID, now); err != nil {
			return TokenResponse{}, err
		}
		identity.FailedLoginCount = 0
		identity.LockedUntil = nil
	}

	if err := s.hasher.Compare(identity.PasswordHash, req.Password); err != nil {
		s.recordAttempt(ctx, &identity.ID, req, "FAILED", "INVALID_PASSWORD")
		failedCount := identity.FailedLoginCount + 1
		var lockedUntil *time.Time
		if failedCount >= s.cfg.FailedLoginThreshold {
			t := now.Add(s.cfg.LockoutDuration)
			lockedUntil = &t
		}
		if err := s.identities.RecordLoginFailure(ctx, identity.ID, failedCount, lockedUntil, now); err != nil {
			return TokenResponse{}, err
		}
		if lockedUntil != nil {
			s.logger(ctx).WarnContext(ctx, "account lockout triggered",
				"operation", "login",
				"outcome", "blocked",
				"email", email,
				"locked_until", lockedUntil,
			)
			return TokenResponse{}, domain.ErrAccountLocked
		}
		return TokenResponse{}, domain.ErrInvalidCredentials
	}

	if identity.FailedLoginCount > 0 || identity.LockedUntil != nil {
		if err := s.identities.ResetLockout(ctx, identity.ID, now); err != nil {
			return TokenResponse{}, err
		}
	}
	s.recordAttempt(ctx, &identity.ID, req, "SUCCESS", "")

	return s.issueToken(identity, nil, now)
}

// issueToken builds and signs the claim set for an identity. It is a pure
// function of the identity, extra claims, clock, and configured key/TTL.
func (s *Service) issueToken(identity domain.Identity, extraClaims []domain.Claim, now time.Time) (TokenResponse, error) {
	claims := make([]domain.Claim, 0, len(identity.Claims)+len(extraClaims))
	claims = append(claims, identity.Claims...)
	claims = append(claims, extraClaims...)

	signed, err := s.tokenSigner.Sign(ports.AuthClaims{
		SubjectEmail: identity.Email,
		Claims:       claims,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.cfg.TokenTTL),
	})
	if err != nil {
		return TokenResponse{}, fmt.Errorf("%w: %v", domain.ErrTokenSigning, err)
	}

	return TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.TokenTTL.Seconds()),
	}, nil
}

// ValidateToken parses and verifies a bearer token. Any parse, signature, or
// expiry failure collapses to ErrUnauthenticated.
func (s *Service) ValidateToken(ctx context.Context, raw string) (ports.AuthClaims, error) {
	claims, err := s.tokenSigner.ParseAndValidate(raw)
	if err != nil {
		return ports.AuthClaims{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return claims, nil
}

// Authorize evaluates a named policy against a bearer token. An empty policy
// name admits anonymous callers; "authenticated" requires a valid token; any
// other policy additionally requires the mapped claim type.
func (s *Service) Authorize(ctx context.Context, raw, policyName string) (ports.AuthClaims, error) {
	if policyName == "" {
		return ports.AuthClaims{}, nil
	}

	claims, err := s.ValidateToken(ctx, raw)
	if err != nil {
		return ports.AuthClaims{}, err
	}

	if required := domain.RequiredClaim(policyName); required != "" && !claims.HasClaim(required) {
		s.logger(ctx).WarnContext(ctx, "policy denied",
			"operation", "authorize",
			"outcome", "denied",
			"policy", policyName,
			"subject", claims.SubjectEmail,
		)
		return ports.AuthClaims{}, fmt.Errorf("%w: missing claim %s", domain.ErrForbidden, required)
	}

	return claims, nil
}

// PublicJWKs exposes verification keys for the internal gRPC surface.
func (s *Service) PublicJWKs() ([]map[string]any, error) {
	return s.tokenSigner.PublicJWKs()
}

func (s *Service) recordAttempt(ctx context.Context, identityID *uuid.UUID, req LoginRequest, status, reason string) {
	if err := s.loginAttempts.Insert(ctx, domain.LoginAttempt{
		IdentityID:    identityID,
		AttemptAt:     s.nowFn(),
		IPAddress:     req.IPAddress,
		Status:        status,
		FailureReason: reason,
		UserAgent:     req.UserAgent,
	}); err != nil {
		s.logger(ctx).WarnContext(ctx, "failed to persist login attempt",
			"operation", "record_login_attempt",
			"outcome", "failure",
			"reason", reason,
			"error", err,
		)
	}
}

func (s *Service) logger(_ context.Context) *slog.Logger {
	return slog.Default().With(
		"service", "contact-directory",
		"module", "application",
		"layer", "application",
	)
}

package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"

	"github.com/harborlabs/contact-directory/internal/domain"
)

// normalizeEmail canonicalizes and validates email format before persistence
// and comparison.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

// hashRequest computes a deterministic request fingerprint for idempotency
// conflict detection.
func hashRequest(req any) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// replayIdempotent returns the stored response for a completed request that
// carried the same Idempotency-Key and body. Key reuse with a different body
// is a conflict; a pending reservation falls through so Reserve reports it.
func (s *Service) replayIdempotent(ctx context.Context, key, requestHash string) (TokenResponse, bool, error) {
	rec, err := s.idempotency.Get(ctx, key)
	if err != nil || rec == nil {
		return TokenResponse{}, false, err
	}
	if rec.RequestHash != requestHash {
		return TokenResponse{}, false, fmt.Errorf("%w: key reused with a different request", domain.ErrIdempotencyConflict)
	}
	if len(rec.ResponseBody) == 0 {
		return TokenResponse{}, false, nil
	}
	var token TokenResponse
	if err := json.Unmarshal(rec.ResponseBody, &token); err != nil {
		return TokenResponse{}, false, fmt.Errorf("decode stored idempotent response: %w", err)
	}
	return token, true, nil
}

// enforceRateLimit counts a hit against a key and rejects once the window
// threshold is exceeded. Store outages degrade open: a broken limiter must
// not take logins down with it.
func (s *Service) enforceRateLimit(ctx context.Context, key string, threshold int) error {
	if s.rateLimits == nil || threshold <= 0 || s.cfg.RateLimitWindow <= 0 {
		return nil
	}

	now := s.nowFn()
	state, err := s.rateLimits.Get(ctx, key)
	if err == nil && state.BlockedUntil != nil && state.BlockedUntil.After(now) {
		return domain.ErrRateLimited
	}

	updated, err := s.rateLimits.Increment(ctx, key, now, threshold, s.cfg.RateLimitWindow)
	if err != nil {
		s.logger(ctx).WarnContext(ctx, "rate-limit state unavailable",
			"operation", "rate_limit",
			"outcome", "warning",
			"key", key,
			"error", err,
		)
		return nil
	}
	if updated.BlockedUntil != nil && updated.BlockedUntil.After(now) {
		return domain.ErrRateLimited
	}
	return nil
}

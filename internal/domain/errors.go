package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether email or password failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked signals temporary lockout after repeated failed attempts.
	ErrAccountLocked = errors.New("account locked")
	// ErrUnauthenticated covers missing, malformed, badly signed, or expired tokens.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the token is valid but lacks the claim a policy requires.
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
	// ErrIdempotencyConflict means an Idempotency-Key was reused with a
	// different request body, or its first attempt is still in flight.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	// ErrTokenSigning marks an unusable or missing signing key. It is service
	// misconfiguration, surfaced as a generic failure and never downgraded.
	ErrTokenSigning = errors.New("token signing unavailable")
)

// ValidationError reports field-level failures as a field -> messages map.
// It matches ErrInvalidInput under errors.Is so the HTTP adapter keeps a
// single translation path.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add appends a message for a field, allocating the map lazily.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// OrNil returns nil when no field failed, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Claim is a named attribute attached to an identity and embedded in tokens.
// Policies grant access by requiring a claim type to be present.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Identity is the credential-store aggregate. Lockout counters live on the
// row itself so the threshold/duration stay explicit configuration instead of
// hidden library state.
type Identity struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	EmailConfirmed   bool
	FailedLoginCount int
	LockedUntil      *time.Time
	Claims           []Claim
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Locked reports whether the identity is locked out at the given instant.
func (i Identity) Locked(now time.Time) bool {
	return i.LockedUntil != nil && i.LockedUntil.After(now)
}

// HasClaim reports whether any claim of the given type is attached.
func (i Identity) HasClaim(claimType string) bool {
	for _, c := range i.Claims {
		if c.Type == claimType {
			return true
		}
	}
	return false
}

// LoginAttempt records authentication outcomes for audit and lockout review.
type LoginAttempt struct {
	ID            int64
	IdentityID    *uuid.UUID
	AttemptAt     time.Time
	IPAddress     string
	Status        string
	FailureReason string
	UserAgent     string
}

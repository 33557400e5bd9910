package ports

import (
	"time"

	"github.com/harborlabs/contact-directory/internal/domain"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthClaims is the token payload: subject email plus the identity's claims.
// Two identical payloads signed under the same key produce identical tokens.
type AuthClaims struct {
	SubjectEmail string         `json:"sub"`
	Claims       []domain.Claim `json:"claims"`
	IssuedAt     time.Time      `json:"issued_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	KeyID        string         `json:"kid"`
}

// HasClaim reports whether a claim of the given type is embedded in the token.
func (c AuthClaims) HasClaim(claimType string) bool {
	for _, claim := range c.Claims {
		if claim.Type == claimType {
			return true
		}
	}
	return false
}

type TokenSigner interface {
	Sign(claims AuthClaims) (string, error)
	ParseAndValidate(token string) (AuthClaims, error)
	PublicJWKs() ([]map[string]any, error)
}

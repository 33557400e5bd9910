package domain

import (
	"fmt"
	"unicode"
)

const maxPasswordLength = 128

// PasswordPolicy is the configured minimum policy applied on registration.
type PasswordPolicy struct {
	MinLength          int
	RequireLetterDigit bool
}

// ValidatePassword checks a candidate password against the configured policy.
func ValidatePassword(password string, policy PasswordPolicy) error {
	if len(password) < policy.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, policy.MinLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be <= %d characters", ErrInvalidInput, maxPasswordLength)
	}

	if policy.RequireLetterDigit {
		var hasLetter, hasDigit bool
		for _, r := range password {
			switch {
			case unicode.IsLetter(r):
				hasLetter = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		if !hasLetter || !hasDigit {
			return fmt.Errorf("%w: password must include a letter and a digit", ErrInvalidInput)
		}
	}

	return nil
}

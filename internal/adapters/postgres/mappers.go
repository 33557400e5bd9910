package postgres

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/harborlabs/contact-directory/internal/domain"
)

func toDomainIdentity(row identityModel, claims []identityClaimModel) domain.Identity {
	out := domain.Identity{
		ID:               row.IdentityID,
		Email:            row.Email,
		PasswordHash:     row.PasswordHash,
		EmailConfirmed:   row.EmailConfirmed,
		FailedLoginCount: row.FailedLoginCount,
		LockedUntil:      row.LockedUntil,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	for _, c := range claims {
		out.Claims = append(out.Claims, domain.Claim{Type: c.ClaimType, Value: c.ClaimValue})
	}
	return out
}

func toDomainContact(row contactModel) domain.Contact {
	return domain.Contact{
		ID:          row.ContactID,
		Nome:        row.Nome,
		Telefone:    row.Telefone,
		TipoContato: row.TipoContato,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toDomainLoginAttempt(row loginAttemptModel) domain.LoginAttempt {
	ip := ""
	if row.IPAddress != nil {
		ip = *row.IPAddress
	}
	return domain.LoginAttempt{
		ID:            row.ID,
		IdentityID:    row.IdentityID,
		AttemptAt:     row.AttemptAt,
		IPAddress:     ip,
		Status:        row.Status,
		FailureReason: row.FailureReason,
		UserAgent:     row.UserAgent,
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

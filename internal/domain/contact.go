package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxNomeLength     = 200
	maxTelefoneLength = 14
)

// Contact is a directory entry. The id is assigned once on create and never
// reassigned; updates replace all other fields wholesale.
type Contact struct {
	ID          uuid.UUID
	Nome        string
	Telefone    string
	TipoContato string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContactInput carries the caller-supplied fields for create and update.
type ContactInput struct {
	Nome        string
	Telefone    string
	TipoContato string
}

// ValidateContact enforces the contact field invariants before any write.
// The telefone pattern is optional configuration; nil skips format checks
// beyond the length cap.
func ValidateContact(in ContactInput, telefonePattern *regexp.Regexp) error {
	ve := &ValidationError{}

	nome := strings.TrimSpace(in.Nome)
	if nome == "" {
		ve.Add("nome", "nome is required")
	} else if utf8.RuneCountInString(nome) > maxNomeLength {
		ve.Add("nome", fmt.Sprintf("nome must be <= %d characters", maxNomeLength))
	}

	telefone := strings.TrimSpace(in.Telefone)
	if telefone == "" {
		ve.Add("telefone", "telefone is required")
	} else {
		if utf8.RuneCountInString(telefone) > maxTelefoneLength {
			ve.Add("telefone", fmt.Sprintf("telefone must be <= %d characters", maxTelefoneLength))
		}
		if telefonePattern != nil && !telefonePattern.MatchString(telefone) {
			ve.Add("telefone", "telefone has an invalid format")
		}
	}

	tipo := strings.TrimSpace(in.TipoContato)
	if tipo == "" {
		ve.Add("tipoContato", "tipoContato is required")
	} else if utf8.RuneCountInString(tipo) != 1 {
		ve.Add("tipoContato", "tipoContato must be exactly 1 character")
	}

	return ve.OrNil()
}

// NormalizeContact trims whitespace so stored values match what validation saw.
func NormalizeContact(in ContactInput) ContactInput {
	return ContactInput{
		Nome:        strings.TrimSpace(in.Nome),
		Telefone:    strings.TrimSpace(in.Telefone),
		TipoContato: strings.TrimSpace(in.TipoContato),
	}
}

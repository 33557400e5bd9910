package application

import (
	"github.com/google/uuid"

	"github.com/harborlabs/contact-directory/internal/domain"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"ip_address"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

// TokenResponse is returned by both register and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ContactRequest struct {
	Nome        string `json:"nome"`
	Telefone    string `json:"telefone"`
	TipoContato string `json:"tipoContato"`
}

type ContactResponse struct {
	ID          uuid.UUID `json:"id"`
	Nome        string    `json:"nome"`
	Telefone    string    `json:"telefone"`
	TipoContato string    `json:"tipoContato"`
}

func toContactResponse(c domain.Contact) ContactResponse {
	return ContactResponse{
		ID:          c.ID,
		Nome:        c.Nome,
		Telefone:    c.Telefone,
		TipoContato: c.TipoContato,
	}
}

func (r ContactRequest) input() domain.ContactInput {
	return domain.ContactInput{
		Nome:        r.Nome,
		Telefone:    r.Telefone,
		TipoContato: r.TipoContato,
	}
}

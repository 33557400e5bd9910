package postgres

import (
	"time"

	"github.com/google/uuid"
)

type identityModel struct {
	IdentityID       uuid.UUID  `gorm:"column:identity_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string     `gorm:"column:email"`
	PasswordHash     string     `gorm:"column:password_hash"`
	EmailConfirmed   bool       `gorm:"column:email_confirmed"`
	FailedLoginCount int        `gorm:"column:failed_login_count"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (identityModel) TableName() string { return "identities" }

type identityClaimModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	IdentityID uuid.UUID `gorm:"column:identity_id"`
	ClaimType  string    `gorm:"column:claim_type"`
	ClaimValue string    `gorm:"column:claim_value"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (identityClaimModel) TableName() string { return "identity_claims" }

type contactModel struct {
	ContactID   uuid.UUID `gorm:"column:contact_id;type:uuid;primaryKey"`
	Nome        string    `gorm:"column:nome"`
	Telefone    string    `gorm:"column:telefone"`
	TipoContato string    `gorm:"column:tipo_contato"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (contactModel) TableName() string { return "contatos" }

type loginAttemptModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	IdentityID    *uuid.UUID `gorm:"column:identity_id"`
	AttemptAt     time.Time  `gorm:"column:attempt_at"`
	IPAddress     *string    `gorm:"column:ip_address"`
	Status        string     `gorm:"column:status"`
	FailureReason string     `gorm:"column:failure_reason"`
	UserAgent     string     `gorm:"column:user_agent"`
}

func (loginAttemptModel) TableName() string { return "login_attempts" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	FirstSeenAt    time.Time  `gorm:"column:first_seen_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "directory_outbox" }

type idempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	Status         string    `gorm:"column:status"`
	ResponseCode   int       `gorm:"column:response_code"`
	ResponseBody   *string   `gorm:"column:response_body"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (idempotencyModel) TableName() string { return "request_idempotency" }

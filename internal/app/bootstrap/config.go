package bootstrap

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the directory service.
// It merges file defaults and environment overrides to support both local
// and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	JWTPrivateKeyPEM  string
	JWTPublicKeyPEM   string
	JWTKeyID          string
	AllowEphemeralJWT bool

	BcryptCost int

	TokenTTL        time.Duration
	LockoutDuration time.Duration
	FailedThreshold int

	PasswordMinLength          int
	PasswordRequireLetterDigit bool
	TelefonePattern            string

	RateLimitIPThreshold         int
	RateLimitIdentifierThreshold int
	RateLimitWindow              time.Duration

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Auth struct {
		TokenExpiryHours      int    `yaml:"token_expiry_hours"`
		FailedLoginThreshold  int    `yaml:"failed_login_threshold"`
		AccountLockoutMinutes int    `yaml:"account_lockout_minutes"`
		PasswordMinLength     int    `yaml:"password_min_length"`
		TelefonePattern       string `yaml:"telefone_pattern"`
	} `yaml:"auth"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific
// overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:                    "contact-directory",
		HTTPPort:                     8080,
		GRPCPort:                     9090,
		JWTKeyID:                     "directory-key-1",
		AllowEphemeralJWT:            true,
		BcryptCost:                   12,
		TokenTTL:                     time.Hour,
		LockoutDuration:              15 * time.Minute,
		FailedThreshold:              5,
		PasswordMinLength:            8,
		PasswordRequireLetterDigit:   true,
		RateLimitIPThreshold:         20,
		RateLimitIdentifierThreshold: 6,
		RateLimitWindow:              time.Minute,
		MaxDBConns:                   20,
		OutboxPollInterval:           2 * time.Second,
		OutboxBatchSize:              100,
		OutboxClaimTTL:               30 * time.Second,
		OutboxMaxRetries:             5,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Auth.TokenExpiryHours > 0 {
			cfg.TokenTTL = time.Duration(f.Auth.TokenExpiryHours) * time.Hour
		}
		if f.Auth.FailedLoginThreshold > 0 {
			cfg.FailedThreshold = f.Auth.FailedLoginThreshold
		}
		if f.Auth.AccountLockoutMinutes > 0 {
			cfg.LockoutDuration = time.Duration(f.Auth.AccountLockoutMinutes) * time.Minute
		}
		if f.Auth.PasswordMinLength > 0 {
			cfg.PasswordMinLength = f.Auth.PasswordMinLength
		}
		if f.Auth.TelefonePattern != "" {
			cfg.TelefonePattern = f.Auth.TelefonePattern
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.JWTPrivateKeyPEM = envOrDefault("JWT_PRIVATE_KEY_PEM", cfg.JWTPrivateKeyPEM)
	cfg.JWTPublicKeyPEM = envOrDefault("JWT_PUBLIC_KEY_PEM", cfg.JWTPublicKeyPEM)
	cfg.JWTKeyID = envOrDefault("JWT_KEY_ID", cfg.JWTKeyID)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.TelefonePattern = envOrDefault("TELEFONE_PATTERN", cfg.TelefonePattern)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.FailedThreshold = envInt("FAILED_LOGIN_THRESHOLD", cfg.FailedThreshold)
	cfg.PasswordMinLength = envInt("PASSWORD_MIN_LENGTH", cfg.PasswordMinLength)
	cfg.PasswordRequireLetterDigit = envBool("PASSWORD_REQUIRE_LETTER_DIGIT", cfg.PasswordRequireLetterDigit)
	cfg.RateLimitIPThreshold = envInt("RATE_LIMIT_IP_THRESHOLD", cfg.RateLimitIPThreshold)
	cfg.RateLimitIdentifierThreshold = envInt("RATE_LIMIT_IDENTIFIER_THRESHOLD", cfg.RateLimitIdentifierThreshold)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.TokenTTL = time.Duration(envInt("TOKEN_EXPIRY_HOURS", int(cfg.TokenTTL.Hours()))) * time.Hour
	cfg.LockoutDuration = time.Duration(envInt("ACCOUNT_LOCKOUT_MINUTES", int(cfg.LockoutDuration.Minutes()))) * time.Minute
	cfg.RateLimitWindow = time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", int(cfg.RateLimitWindow.Seconds()))) * time.Second
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if (cfg.JWTPrivateKeyPEM == "" || cfg.JWTPublicKeyPEM == "") && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_PRIVATE_KEY_PEM or JWT_PUBLIC_KEY_PEM")
	}
	if cfg.TelefonePattern != "" {
		if _, err := regexp.Compile(cfg.TelefonePattern); err != nil {
			return Config{}, fmt.Errorf("invalid TELEFONE_PATTERN: %w", err)
		}
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

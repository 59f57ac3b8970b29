// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Store backend names accepted in STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Dispatch mode names accepted in DISPATCH_MODE.
const (
	DispatchSimulated = "simulated"
	DispatchWebhook   = "webhook"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// StoreBackend selects code storage: memory, postgres, or redis.
	StoreBackend string `mapstructure:"STORE_BACKEND"`
	// DatabaseURL is the Postgres DSN; required when STORE_BACKEND=postgres.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisAddr is the Redis host:port; required when STORE_BACKEND=redis.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is the optional Redis password.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// ChallengeTTL is the challenge code lifetime (e.g. "10m").
	ChallengeTTL string `mapstructure:"CHALLENGE_TTL"`
	// VerificationTTL is the verification code lifetime (e.g. "5m").
	VerificationTTL string `mapstructure:"VERIFICATION_TTL"`
	// MaxAttempts is the verify attempt ceiling before lockout.
	MaxAttempts int `mapstructure:"MAX_ATTEMPTS"`
	// DispatchMode selects code delivery: simulated or webhook.
	DispatchMode string `mapstructure:"DISPATCH_MODE"`
	// DispatchWebhookURL is the delivery endpoint; required when DISPATCH_MODE=webhook.
	DispatchWebhookURL string `mapstructure:"DISPATCH_WEBHOOK_URL"`
	// DispatchAPIKey is the Authorization header value for the webhook dispatcher.
	DispatchAPIKey string `mapstructure:"DISPATCH_API_KEY"`
	// ProofTokenSecret signs proof tokens issued on successful verification; empty disables them.
	ProofTokenSecret string `mapstructure:"PROOF_TOKEN_SECRET"`
	// ProofTokenTTL is the proof token lifetime (e.g. "5m").
	ProofTokenTTL string `mapstructure:"PROOF_TOKEN_TTL"`
	// InstitutionDomain is the email suffix whose accounts always require verification.
	InstitutionDomain string `mapstructure:"INSTITUTION_DOMAIN"`
	// VerifyPolicyRego is an optional path to a Rego policy overriding the built-in required-verification rules.
	VerifyPolicyRego string `mapstructure:"VERIFY_POLICY_REGO"`
	// CleanupInterval is the cron spec between expired-code sweeps (e.g. "@every 1m").
	CleanupInterval string `mapstructure:"CLEANUP_INTERVAL"`
	// OTLPEndpoint is the OTLP gRPC endpoint for traces and metrics; empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORE_BACKEND", StoreMemory)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("CHALLENGE_TTL", "10m")
	v.SetDefault("VERIFICATION_TTL", "5m")
	v.SetDefault("MAX_ATTEMPTS", 3)
	v.SetDefault("DISPATCH_MODE", DispatchSimulated)
	v.SetDefault("DISPATCH_WEBHOOK_URL", "")
	v.SetDefault("DISPATCH_API_KEY", "")
	v.SetDefault("PROOF_TOKEN_SECRET", "")
	v.SetDefault("PROOF_TOKEN_TTL", "5m")
	v.SetDefault("INSTITUTION_DOMAIN", "@institution.edu")
	v.SetDefault("VERIFY_POLICY_REGO", "")
	v.SetDefault("CLEANUP_INTERVAL", "@every 1m")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	switch cfg.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL must be set when STORE_BACKEND=postgres")
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("config: REDIS_ADDR must be set when STORE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("config: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	switch cfg.DispatchMode {
	case DispatchSimulated:
	case DispatchWebhook:
		if cfg.DispatchWebhookURL == "" {
			return nil, errors.New("config: DISPATCH_WEBHOOK_URL must be set when DISPATCH_MODE=webhook")
		}
	default:
		return nil, fmt.Errorf("config: unknown DISPATCH_MODE %q", cfg.DispatchMode)
	}

	if cfg.MaxAttempts <= 0 {
		return nil, errors.New("config: MAX_ATTEMPTS must be positive")
	}

	return &cfg, nil
}

// ChallengeCodeTTL parses ChallengeTTL as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) ChallengeCodeTTL() time.Duration {
	d, err := time.ParseDuration(c.ChallengeTTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// VerificationCodeTTL parses VerificationTTL as a time.Duration. Returns 5m if unset or invalid.
func (c *Config) VerificationCodeTTL() time.Duration {
	d, err := time.ParseDuration(c.VerificationTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// ProofTTL parses ProofTokenTTL as a time.Duration. Returns 5m if unset or invalid.
func (c *Config) ProofTTL() time.Duration {
	d, err := time.ParseDuration(c.ProofTokenTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

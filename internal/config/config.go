package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/beatx/beatx-server/pkg/config"
)

// Token issuance modes. In provider mode the server forwards tokens minted by
// the identity provider and verifies them with the provider's JWT secret. In
// self mode the server mints and verifies its own tokens.
const (
	TokenModeProvider = "provider"
	TokenModeSelf     = "self"
)

// Config holds all configuration for the server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"beatx-server"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Token lifecycle
	TokenMode         string        `env:"TOKEN_MODE" envDefault:"provider"`
	JWTSigningSecret  string        `env:"JWT_SIGNING_SECRET"`
	ProviderJWTSecret string        `env:"PROVIDER_JWT_SECRET"`
	AccessTokenExpiry time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"168h"`

	// Resend cooldown and revocation housekeeping
	EmailResendCooldown time.Duration `env:"EMAIL_RESEND_COOLDOWN" envDefault:"300s"`
	BlacklistPurgeEvery time.Duration `env:"BLACKLIST_PURGE_INTERVAL" envDefault:"1h"`

	// Identity/storage provider
	ProviderBaseURL    string        `env:"PROVIDER_BASE_URL"`
	ProviderServiceKey string        `env:"PROVIDER_SERVICE_KEY"`
	ProviderAnonKey    string        `env:"PROVIDER_ANON_KEY"`
	ProviderTimeout    time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"15s"`
	EmailRedirectURL   string        `env:"EMAIL_REDIRECT_URL"`

	// Object storage
	AudioBucket     string        `env:"AUDIO_BUCKET" envDefault:"tracks"`
	SignedURLExpiry time.Duration `env:"SIGNED_URL_EXPIRY" envDefault:"120s"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"beatx"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"beatx_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"beatx_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis (revocation cache)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	TracingEnabled  bool    `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"OTEL_TRACE_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants. Token-mode faults are detected
// here, at startup, rather than surfacing as verification failures at request
// time.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.ProviderBaseURL == "" {
		return fmt.Errorf("PROVIDER_BASE_URL is required")
	}
	if c.ProviderServiceKey == "" {
		return fmt.Errorf("PROVIDER_SERVICE_KEY is required")
	}

	switch c.TokenMode {
	case TokenModeProvider:
		if c.ProviderJWTSecret == "" {
			return fmt.Errorf("token mode %q requires PROVIDER_JWT_SECRET", c.TokenMode)
		}
		if c.JWTSigningSecret != "" {
			return fmt.Errorf("JWT_SIGNING_SECRET is set but token mode is %q; unset it or switch to mode %q", c.TokenMode, TokenModeSelf)
		}
	case TokenModeSelf:
		if c.JWTSigningSecret == "" {
			return fmt.Errorf("token mode %q requires JWT_SIGNING_SECRET", c.TokenMode)
		}
		if c.ProviderJWTSecret != "" {
			return fmt.Errorf("PROVIDER_JWT_SECRET is set but token mode is %q; unset it or switch to mode %q", c.TokenMode, TokenModeProvider)
		}
	default:
		return fmt.Errorf("invalid token mode %q (want %q or %q)", c.TokenMode, TokenModeProvider, TokenModeSelf)
	}

	if c.Environment != "development" {
		secret := c.VerificationSecret()
		if len(secret) < 32 {
			return fmt.Errorf("JWT secret must be at least 32 bytes outside development")
		}
	}

	if c.EmailResendCooldown <= 0 {
		return fmt.Errorf("EMAIL_RESEND_COOLDOWN must be positive")
	}
	if c.SignedURLExpiry <= 0 {
		return fmt.Errorf("SIGNED_URL_EXPIRY must be positive")
	}

	return nil
}

// VerificationSecret returns the secret used to verify access tokens for the
// active token mode.
func (c *Config) VerificationSecret() string {
	if c.TokenMode == TokenModeSelf {
		return c.JWTSigningSecret
	}
	return c.ProviderJWTSecret
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the Redis address in host:port form.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty until DB is wired.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file; used with JWT_PUBLIC_KEY for RS256/ES256.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file; used with JWT_PRIVATE_KEY.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "roster-auth"); required when auth is enabled.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "roster-api"); required when auth is enabled.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "7d").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SMSLocalAPIKey is the API key for the SMS provider. Required in production when OTP is delivered over SMS.
	SMSLocalAPIKey string `mapstructure:"SMS_LOCAL_API_KEY"`
	// SMSLocalSender is the optional sender ID for the SMS provider.
	SMSLocalSender string `mapstructure:"SMS_LOCAL_SENDER"`
	// SMSLocalBaseURL is the SMS provider API base URL.
	SMSLocalBaseURL string `mapstructure:"SMS_LOCAL_BASE_URL"`
	// OTPTTLSeconds is how long a one-time code stays valid after issue (default 60).
	OTPTTLSeconds int `mapstructure:"OTP_TTL_SECONDS"`
	// NamePattern is the regex new-account first/last names must match.
	// Defaults to Persian script; override per deployment locale.
	NamePattern string `mapstructure:"NAME_PATTERN"`
	// OTPReturnToClient when true enables dev OTP mode: no SMS, OTP stored for GET /api/dev/otp. Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production"). Used with OTPReturnToClient to refuse dev OTP in production.
	Env string `mapstructure:"APP_ENV"`

	// CORSOrigins is a comma-separated allowlist for browser clients (the portal UI).
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	// Telemetry (optional). When Kafka brokers are set, the server emits telemetry to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events (default roster-telemetry).
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// OTLPEndpoint is the OTLP collector endpoint for traces/metrics/logs (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
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
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "roster-auth")
	v.SetDefault("JWT_AUDIENCE", "roster-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SMS_LOCAL_BASE_URL", "https://www.smslocal.com/dev/bulkV2")
	v.SetDefault("OTP_TTL_SECONDS", 60)
	v.SetDefault("NAME_PATTERN", `^[\p{Arabic}\x{200C} ]{2,}$`)
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "roster-telemetry")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "roster-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.OTPTTLSeconds <= 0 {
		return nil, errors.New("config: OTP_TTL_SECONDS must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses JWTRefreshTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTRefreshTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// OTPTTL returns the one-time code lifetime as a time.Duration.
func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLSeconds) * time.Second
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CORSOriginsJoined returns the allowed origins from the comma-separated config, joined for fiber's cors middleware.
func (c *Config) CORSOriginsJoined() string {
	if c == nil || c.CORSOrigins == "" {
		return ""
	}
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

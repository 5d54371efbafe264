// Package config loads application configuration from the environment.
package config

import (
	"fmt"

	pkgconfig "github.com/prasetia/inventaris/pkg/config"
)

// Config holds all configuration for the inventory service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// AppURL is the external base URL used in signed links and reset emails.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:8080"`

	// PostgreSQL
	PostgresHost          string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort          int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser          string `env:"POSTGRES_USER" envDefault:"inventaris"`
	PostgresPass          string `env:"POSTGRES_PASSWORD" envDefault:"inventaris_secret"`
	PostgresDB            string `env:"POSTGRES_DB" envDefault:"inventaris_db"`
	PostgresSSL           string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns            int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32  `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int    `env:"DB_MAX_CONN_LIFETIME_MINS" envDefault:"60"`
	DBMaxConnIdleTimeMins int    `env:"DB_MAX_CONN_IDLE_TIME_MINS" envDefault:"10"`

	// Redis (lock store)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret        string `env:"JWT_SECRET" envDefault:"dev-jwt-secret-change-me"`
	JWTAccessExpiry  string `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry string `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`

	// Signed verification links
	SignerSecret   string `env:"SIGNER_SECRET" envDefault:"dev-signer-secret-change-me"`
	SignerTTLHours int    `env:"SIGNER_TTL_HOURS" envDefault:"24"`

	// Mail provider. When the endpoint is empty, mail is logged instead of sent.
	MailEndpoint       string `env:"MAIL_ENDPOINT" envDefault:""`
	MailAPIKey         string `env:"MAIL_API_KEY" envDefault:""`
	MailFrom           string `env:"MAIL_FROM" envDefault:"no-reply@inventaris.local"`
	MailTimeoutSeconds int    `env:"MAIL_TIMEOUT_SECONDS" envDefault:"10"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"" envSeparator:","`

	// Per-IP rate limit on the public auth surface.
	AuthRateRPS   int `env:"AUTH_RATE_RPS" envDefault:"5"`
	AuthRateBurst int `env:"AUTH_RATE_BURST" envDefault:"10"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// minSecretLength is the shortest secret accepted outside development.
const minSecretLength = 32

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants. It runs inside pkgconfig.Load.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.Environment != "development" {
		if len(c.JWTSecret) < minSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters outside development", minSecretLength)
		}
		if len(c.SignerSecret) < minSecretLength {
			return fmt.Errorf("SIGNER_SECRET must be at least %d characters outside development", minSecretLength)
		}
	}
	return nil
}

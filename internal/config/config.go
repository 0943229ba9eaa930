package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/miservicio/reviews-service/pkg/config"
)

// Config holds all configuration for the reviews service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"REVIEWS_HTTP_PORT" envDefault:"4005"`

	// Eligibility gate
	RequireContactIntent bool `env:"REVIEWS_REQUIRE_CONTACT_INTENT" envDefault:"true"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"miservicio"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"miservicio_secret"`
	PostgresDB   string `env:"REVIEWS_DB_NAME" envDefault:"reviews_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Connection pool tuning
	DBMaxConns           int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns           int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	SlowQueryThresholdMs int   `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// PhotosDialect selects the photo-presence predicate used by summary
	// queries: "jsonb" for migrated schemas, "text" for legacy ones.
	PhotosDialect string `env:"REVIEWS_PHOTOS_DIALECT" envDefault:"jsonb"`

	// Redis (identity cache; disabled when no host is configured)
	RedisHost        string        `env:"REDIS_HOST" envDefault:""`
	RedisPort        int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword    string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"10m"`

	// Identity service
	IdentityServiceURL string        `env:"IDENTITY_SERVICE_URL" envDefault:""`
	IdentityTimeout    time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"3s"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"0.1"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load reviews config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.PhotosDialect != "jsonb" && cfg.PhotosDialect != "text" {
		return nil, fmt.Errorf("invalid photos dialect: %q", cfg.PhotosDialect)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

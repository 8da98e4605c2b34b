package config

import (
	"fmt"
	"time"

	"github.com/SamarthBurkul/uptoskills-ai-learning-platform/pkg/config"
)

const defaultJWTSecret = "dev-secret-change-me"

// Config holds the auth service configuration, loaded from the environment.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"uptoskills"`

	JWTSecret          string        `env:"ACCESS_TOKEN_SECRET" envDefault:"dev-secret-change-me"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"168h"`

	FirebaseWebAPIKey    string `env:"FIREBASE_WEB_API_KEY"`
	GoogleLookupEndpoint string `env:"GOOGLE_LOOKUP_ENDPOINT"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	TracingEnabled bool   `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
}

// Load parses the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate enforces the startup invariants. Outside development the JWT
// secret must be set to a strong value and the Firebase key must be present.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}

	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}

	if !c.IsDevelopment() {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("ACCESS_TOKEN_SECRET must be set outside development")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("ACCESS_TOKEN_SECRET must be at least 32 characters")
		}
		if c.FirebaseWebAPIKey == "" {
			return fmt.Errorf("FIREBASE_WEB_API_KEY is required outside development")
		}
	}

	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

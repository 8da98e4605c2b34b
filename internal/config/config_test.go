package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8000, cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ACCESS_TOKEN_SECRET", "a-much-stronger-secret-of-32-chars!!")
	t.Setenv("FIREBASE_WEB_API_KEY", "test-api-key")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment: "development",
			HTTPPort:    8000,
			MongoURI:    "mongodb://localhost:27017",
			JWTSecret:   defaultJWTSecret,
		}
	}

	t.Run("development accepts the default secret", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("production rejects the default secret", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		cfg.FirebaseWebAPIKey = "key"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects a short secret", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		cfg.JWTSecret = "short"
		cfg.FirebaseWebAPIKey = "key"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production requires the firebase key", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		cfg.JWTSecret = "a-much-stronger-secret-of-32-chars!!"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production with strong secret and key passes", func(t *testing.T) {
		cfg := base()
		cfg.Environment = "production"
		cfg.JWTSecret = "a-much-stronger-secret-of-32-chars!!"
		cfg.FirebaseWebAPIKey = "key"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects an out-of-range port", func(t *testing.T) {
		cfg := base()
		cfg.HTTPPort = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("requires a mongo uri", func(t *testing.T) {
		cfg := base()
		cfg.MongoURI = ""
		assert.Error(t, cfg.Validate())
	})
}

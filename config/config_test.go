package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "minio.local:9000")
	t.Setenv("MINIO_BUCKET", "assets")
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "https://cdn.example.com/assets/")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "assets", cfg.MinioBucket)
	assert.Equal(t, "https://cdn.example.com/assets", cfg.PublicBaseURL)
	assert.Equal(t, 2*time.Hour, cfg.PresignExpiry)
	assert.False(t, cfg.AuthEnabled())
}

func TestFromEnvParsesTypedValues(t *testing.T) {
	t.Setenv("REDIS_DB", "3")
	t.Setenv("STORAGE_PRIVATE", "true")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOG_MAX_BACKUPS", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.PrivateBucket)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, 5, cfg.LogMaxBackups)
}

func TestPublicBaseURLFollowsSSL(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "s3.example.com")
	t.Setenv("MINIO_BUCKET", "media")
	t.Setenv("MINIO_USE_SSL", "1")

	cfg := FromEnv()

	assert.Equal(t, "https://s3.example.com/media", cfg.PublicBaseURL)
}

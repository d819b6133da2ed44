package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("SHARE_DEFAULT_EXPIRY_DAYS", "3")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Storage.MinIO.UseSSL)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, 3, cfg.Share.DefaultExpiryDays)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "STORAGE_DRIVER", "STORAGE_SIGNED_URL_TTL", "JWT_EXPIRY", "SHARE_DEFAULT_EXPIRY_DAYS",
		"TRASH_RETENTION_DAYS", "PREVIEW_MAX_WIDTH", "PREVIEW_MAX_HEIGHT", "PREVIEW_JPEG_QUALITY",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, StorageDriverMinIO, cfg.Storage.Driver)
	assert.Equal(t, time.Hour, cfg.Storage.SignedURLTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, 7, cfg.Share.DefaultExpiryDays)
	assert.Equal(t, 30, cfg.Trash.RetentionDays)
	assert.Equal(t, 300, cfg.Preview.MaxWidth)
	assert.Equal(t, 300, cfg.Preview.MaxHeight)
	assert.Equal(t, 80, cfg.Preview.JPEGQuality)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.Auth.JWTSecret = ""
	cfg.Storage.Driver = "ftp"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
	assert.Contains(t, err.Error(), `unsupported STORAGE_DRIVER "ftp"`)

	cfg.Auth.JWTSecret = "secret"
	cfg.Storage.Driver = StorageDriverS3
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Driver = StorageDriverMemory
	cfg.Env = EnvProduction
	assert.ErrorContains(t, cfg.Validate(), "only allowed in development")
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	t.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	t.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "")
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	t.Setenv(key, "")
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"

	t.Setenv(key, "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration(key, time.Minute))

	t.Setenv(key, "soon")
	assert.Equal(t, time.Minute, getEnvDuration(key, time.Minute))
}

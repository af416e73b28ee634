package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, 3*time.Second, cfg.Notification.ToastDuration)
	assert.True(t, cfg.Auth.VerifyPassword)
	assert.Equal(t, PasswordHashingBcrypt, cfg.Auth.PasswordHashing)
	assert.Equal(t, "127.0.0.1:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_KEY_PREFIX", "demo:")
	t.Setenv("AUTH_VERIFY_PASSWORD", "false")
	t.Setenv("NOTIFY_TOAST_DURATION", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, "demo:", cfg.Redis.KeyPrefix)
	assert.False(t, cfg.Auth.VerifyPassword)
	assert.Equal(t, 500*time.Millisecond, cfg.Notification.ToastDuration)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "localstorage")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestValidate_PostgresNeedsDSN(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Driver: StoragePostgres},
		Auth:    AuthConfig{PasswordHashing: PasswordHashingPlain},
	}
	require.Error(t, cfg.Validate())

	cfg.Postgres.DSN = "postgres://localhost/ticketapp"
	require.NoError(t, cfg.Validate())
}

func TestRequestTimeout_Disabled(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
}

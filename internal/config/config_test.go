package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "STORE_DRIVER", "USERS_FILE", "DOCUMENT_NAME",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "NOTIFY_TIMEOUT", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Addr:            "0.0.0.0:3000",
		StoreDriver:     DriverFile,
		UsersFile:       "users.json",
		DocumentName:    "usuarios",
		RateLimitRPS:    0,
		RateLimitBurst:  20,
		NotifyTimeout:   5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}, cfg)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("USERS_FILE", "/data/users.json")
	t.Setenv("DOCUMENT_NAME", "registry")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("NOTIFY_TIMEOUT", "750ms")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "/data/users.json", cfg.UsersFile)
	assert.Equal(t, "registry", cfg.DocumentName)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, 750*time.Millisecond, cfg.NotifyTimeout)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"STORE_DRIVER":     "mongo",
		"RATE_LIMIT_RPS":   "-1",
		"RATE_LIMIT_BURST": "0",
		"NOTIFY_TIMEOUT":   "soon",
		"SHUTDOWN_TIMEOUT": "-5s",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := ConfigFromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}

// Package config holds the server-level settings read once at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Config is the server configuration. Logger and database settings are read
// by their own packages.
type Config struct {
	Addr            string
	StoreDriver     string
	UsersFile       string
	DocumentName    string
	RateLimitRPS    float64 // 0 disables rate limiting
	RateLimitBurst  int
	NotifyTimeout   time.Duration
	ShutdownTimeout time.Duration
}

// ConfigFromEnv builds a Config from environment variables, applying defaults
// for anything unset. Malformed values are reported rather than ignored.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Addr:            getenv("HTTP_ADDR", "0.0.0.0:3000"),
		StoreDriver:     getenv("STORE_DRIVER", DriverFile),
		UsersFile:       getenv("USERS_FILE", "users.json"),
		DocumentName:    getenv("DOCUMENT_NAME", "usuarios"),
		RateLimitBurst:  20,
		NotifyTimeout:   5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}

	if cfg.StoreDriver != DriverFile && cfg.StoreDriver != DriverPostgres {
		return Config{}, fmt.Errorf("STORE_DRIVER: unsupported driver %q", cfg.StoreDriver)
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps < 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT_RPS: invalid value %q", v)
		}
		cfg.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst < 1 {
			return Config{}, fmt.Errorf("RATE_LIMIT_BURST: invalid value %q", v)
		}
		cfg.RateLimitBurst = burst
	}
	var err error
	if cfg.NotifyTimeout, err = durationEnv("NOTIFY_TIMEOUT", cfg.NotifyTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ericfisherdev/onboarding/internal/application"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	DBPath          string
	SecretKey       []byte // nil when ONBOARDING_SECRET_KEY is unset
	CallbackTimeout time.Duration
	NATSURL         string
	AdminToken      string
	IDPolicy        application.IDPolicy
}

// HasSecretKey reports whether passwords and credentials can be stored.
func (c *Config) HasSecretKey() bool {
	return c.SecretKey != nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional:
//
//	ONBOARDING_LISTEN_ADDR       (127.0.0.1:8080)
//	ONBOARDING_DB_PATH           (onboarding.db)
//	ONBOARDING_SECRET_KEY        64 hex chars; without it secrets cannot be stored
//	ONBOARDING_CALLBACK_TIMEOUT  (30s)
//	ONBOARDING_NATS_URL          events are discarded when unset
//	ONBOARDING_ADMIN_TOKEN       mutating API routes are open when unset
//	ONBOARDING_ID_POLICY         preserve | regenerate (preserve)
func Load() (*Config, error) {
	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("ONBOARDING_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "onboarding.db"
	if v, ok := os.LookupEnv("ONBOARDING_DB_PATH"); ok {
		dbPath = v
	}

	var secretKey []byte
	if v := strings.TrimSpace(os.Getenv("ONBOARDING_SECRET_KEY")); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("ONBOARDING_SECRET_KEY must be hex encoded: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("ONBOARDING_SECRET_KEY must be 32 bytes (64 hex chars), got %d bytes", len(key))
		}
		secretKey = key
	}

	callbackTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("ONBOARDING_CALLBACK_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ONBOARDING_CALLBACK_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("ONBOARDING_CALLBACK_TIMEOUT must be positive, got %s", parsed)
		}
		callbackTimeout = parsed
	}

	idPolicy, err := application.ParseIDPolicy(os.Getenv("ONBOARDING_ID_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("ONBOARDING_ID_POLICY: %w", err)
	}

	return &Config{
		ListenAddr:      listenAddr,
		DBPath:          dbPath,
		SecretKey:       secretKey,
		CallbackTimeout: callbackTimeout,
		NATSURL:         strings.TrimSpace(os.Getenv("ONBOARDING_NATS_URL")),
		AdminToken:      os.Getenv("ONBOARDING_ADMIN_TOKEN"),
		IDPolicy:        idPolicy,
	}, nil
}

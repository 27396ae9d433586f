package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// PostgresURL selects the record store; empty keeps the in-memory store.
	PostgresURL string

	// RedisURL enables the read-through record cache; empty disables it.
	RedisURL string

	// MasterKeyHex is the hex-encoded 32-byte master secret for the
	// encryption primitive.
	MasterKeyHex string

	// AdminJWTKey signs and validates admin bearer tokens.
	AdminJWTKey string

	// RecordCacheTTL bounds retention of cached encrypted bundles.
	RecordCacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CIPHERID_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	ttl := 5 * time.Minute
	if raw := os.Getenv("CIPHERID_CACHE_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}

	adminKey := os.Getenv("CIPHERID_ADMIN_JWT_KEY")
	if adminKey == "" {
		// Use a default for development - should be overridden in production
		adminKey = "dev-admin-key-change-in-production"
	}

	return Server{
		Addr:           addr,
		PostgresURL:    os.Getenv("CIPHERID_POSTGRES_URL"),
		RedisURL:       os.Getenv("CIPHERID_REDIS_URL"),
		MasterKeyHex:   os.Getenv("CIPHERID_MASTER_KEY"),
		AdminJWTKey:    adminKey,
		RecordCacheTTL: ttl,
	}
}

// MasterKey decodes the configured master secret. With no key configured it
// falls back to a fixed development secret; production deployments must set
// CIPHERID_MASTER_KEY to 64 hex characters from a secrets manager.
func (s Server) MasterKey() ([]byte, error) {
	if s.MasterKeyHex == "" {
		sum := sha256.Sum256([]byte("cipherid-dev-master-key"))
		return sum[:], nil
	}
	key, err := hex.DecodeString(s.MasterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("CIPHERID_MASTER_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("CIPHERID_MASTER_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

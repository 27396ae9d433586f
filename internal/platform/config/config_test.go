package config

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.NotEmpty(t, cfg.AdminJWTKey)
	assert.Positive(t, cfg.RecordCacheTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CIPHERID_ADDR", ":9999")
	t.Setenv("CIPHERID_CACHE_TTL", "90s")
	t.Setenv("CIPHERID_POSTGRES_URL", "postgres://localhost/cipherid")

	cfg := FromEnv()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "90s", cfg.RecordCacheTTL.String())
	assert.Equal(t, "postgres://localhost/cipherid", cfg.PostgresURL)
}

func TestMasterKey(t *testing.T) {
	t.Run("dev fallback is 32 bytes and stable", func(t *testing.T) {
		a, err := Server{}.MasterKey()
		require.NoError(t, err)
		b, err := Server{}.MasterKey()
		require.NoError(t, err)
		assert.Len(t, a, 32)
		assert.Equal(t, a, b)
	})

	t.Run("valid hex key", func(t *testing.T) {
		raw := strings.Repeat("ab", 32)
		key, err := Server{MasterKeyHex: raw}.MasterKey()
		require.NoError(t, err)
		assert.Equal(t, raw, hex.EncodeToString(key))
	})

	t.Run("rejects bad hex", func(t *testing.T) {
		_, err := Server{MasterKeyHex: "zz"}.MasterKey()
		assert.Error(t, err)
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := Server{MasterKeyHex: "abcd"}.MasterKey()
		assert.Error(t, err)
	})
}

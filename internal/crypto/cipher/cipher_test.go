package cipher

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherid/internal/crypto/envelope"
	dErrors "cipherid/pkg/domain-errors"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key := sha256.Sum256([]byte("test master key"))
	c, err := New(key[:])
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadKeySizes(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := New(make([]byte, size))
		assert.Error(t, err, "key size %d must be rejected", size)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := testCipher(t)

	tests := []struct {
		name  string
		value envelope.Value
	}{
		{"name", envelope.String("Amjad Masad")},
		{"empty string", envelope.String("")},
		{"unicode", envelope.String("Ångström ✓")},
		{"age", envelope.Int(35)},
		{"zero", envelope.Int(0)},
		{"negative", envelope.Int(-1)},
		{"digit string keeps kind", envelope.String("35")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := c.Encrypt(tt.value)
			require.NoError(t, err)
			assert.Equal(t, envelope.Scheme, ct.Scheme)

			got, err := c.Decrypt(ct)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got, "decrypt must recover value and kind exactly")
		})
	}
}

func TestEncryptionIsProbabilistic(t *testing.T) {
	c := testCipher(t)
	v := envelope.String("same plaintext")

	a, err := c.Encrypt(v)
	require.NoError(t, err)
	b, err := c.Encrypt(v)
	require.NoError(t, err)

	assert.False(t, bytes.Equal(a.Payload, b.Payload), "payloads must differ across encryptions")
	assert.False(t, bytes.Equal(a.Noise, b.Noise), "noise tags must differ across encryptions")
}

func TestDecryptRejectsTamperedPayload(t *testing.T) {
	c := testCipher(t)

	ct, err := c.Encrypt(envelope.String("secret"))
	require.NoError(t, err)
	ct.Payload[len(ct.Payload)-1] ^= 0xFF

	_, err = c.Decrypt(ct)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeDecryptionFailed))
}

func TestDecryptRejectsStructuralViolations(t *testing.T) {
	c := testCipher(t)

	t.Run("wrong scheme", func(t *testing.T) {
		ct, err := c.Encrypt(envelope.Int(1))
		require.NoError(t, err)
		ct.Scheme = "other-v2"
		_, err = c.Decrypt(ct)
		assert.True(t, dErrors.Is(err, dErrors.CodeDecryptionFailed))
	})

	t.Run("short payload", func(t *testing.T) {
		_, err := c.Decrypt(envelope.Envelope{Scheme: envelope.Scheme, Payload: []byte{0x01}})
		assert.True(t, dErrors.Is(err, dErrors.CodeDecryptionFailed))
	})
}

func TestDecryptRequiresMatchingKeyContext(t *testing.T) {
	a := testCipher(t)
	otherKey := sha256.Sum256([]byte("a different master key"))
	b, err := New(otherKey[:])
	require.NoError(t, err)

	ct, err := a.Encrypt(envelope.String("cross-tenant"))
	require.NoError(t, err)

	_, err = b.Decrypt(ct)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeDecryptionFailed))
}

func TestNoiseDoesNotAffectDecryption(t *testing.T) {
	// Noise strengthens non-determinism; it carries no plaintext and is not
	// authenticated with the payload.
	c := testCipher(t)
	ct, err := c.Encrypt(envelope.Int(42))
	require.NoError(t, err)
	ct.Noise = []byte("replaced")

	got, err := c.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, envelope.Int(42), got)
}

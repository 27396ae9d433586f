// Package cipher implements the probabilistic encryption primitive behind the
// ciphertext envelope format.
//
// Key material is an explicit, caller-supplied context rather than process
// global state, so tests can isolate tenants and deployments can rotate keys.
// Subkeys are derived from the master secret with HKDF-SHA256 under distinct
// context strings; the payload key never doubles as anything else.
package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"cipherid/internal/crypto/envelope"
	dErrors "cipherid/pkg/domain-errors"
)

const (
	// MasterKeySize is the required length of the master secret in bytes.
	MasterKeySize = 32

	// noiseSize is the length of the independent randomness tag. It plays
	// the role a real scheme's randomized coefficients would occupy and
	// strengthens ciphertext non-determinism beyond the GCM nonce.
	noiseSize = 16

	payloadKeyInfo = "cipherid/payload-key/v1"
)

// Cipher is the key context for encrypting and decrypting envelopes. It is
// stateless after construction and safe for concurrent use.
type Cipher struct {
	aead stdcipher.AEAD
}

// New derives the payload key from masterKey and returns a ready key context.
// The master secret must be exactly MasterKeySize bytes of high-entropy
// material; derivation does not stretch weak secrets.
func New(masterKey []byte) (*Cipher, error) {
	if len(masterKey) != MasterKeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", MasterKeySize, len(masterKey))
	}

	payloadKey := make([]byte, 32)
	kdf := hkdf.New(sha256.New, masterKey, nil, []byte(payloadKeyInfo))
	if _, err := io.ReadFull(kdf, payloadKey); err != nil {
		return nil, fmt.Errorf("derive payload key: %w", err)
	}

	block, err := aes.NewCipher(payloadKey)
	if err != nil {
		return nil, fmt.Errorf("init payload cipher: %w", err)
	}
	aead, err := stdcipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init payload aead: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals a plaintext value into an envelope. Every call consumes fresh
// entropy from crypto/rand for both the nonce and the noise tag, so two
// encryptions of the same plaintext are byte-distinct in payload and noise.
func (c *Cipher) Encrypt(v envelope.Value) (envelope.Envelope, error) {
	plaintext, err := envelope.EncodeValue(v)
	if err != nil {
		return envelope.Envelope{}, err
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return envelope.Envelope{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate encryption nonce")
	}
	noise := make([]byte, noiseSize)
	if _, err := io.ReadFull(rand.Reader, noise); err != nil {
		return envelope.Envelope{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate noise tag")
	}

	// The scheme marker is authenticated as associated data so an envelope
	// cannot be replayed under a future format version.
	sealed := c.aead.Seal(nil, nonce, plaintext, []byte(envelope.Scheme))

	return envelope.Envelope{
		Scheme:  envelope.Scheme,
		Payload: append(nonce, sealed...),
		Noise:   noise,
	}, nil
}

// Decrypt recovers the plaintext value from an envelope. It fails only on
// structural or authentication violations, never because the value fails some
// caller expectation, and it never fails for a well-formed envelope produced
// by Encrypt under the same key context.
func (c *Cipher) Decrypt(e envelope.Envelope) (envelope.Value, error) {
	if e.Scheme != envelope.Scheme {
		return envelope.Value{}, dErrors.New(dErrors.CodeDecryptionFailed, "unknown ciphertext scheme")
	}
	nonceSize := c.aead.NonceSize()
	if len(e.Payload) <= nonceSize {
		return envelope.Value{}, dErrors.New(dErrors.CodeDecryptionFailed, "ciphertext payload too short")
	}

	nonce, sealed := e.Payload[:nonceSize], e.Payload[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, []byte(envelope.Scheme))
	if err != nil {
		return envelope.Value{}, dErrors.Wrap(err, dErrors.CodeDecryptionFailed, "ciphertext authentication failed")
	}

	v, err := envelope.DecodeValue(plaintext)
	if err != nil {
		return envelope.Value{}, dErrors.Wrap(err, dErrors.CodeDecryptionFailed, "payload does not decode to a value")
	}
	return v, nil
}

// Package evaluator computes encrypted equality over ciphertext envelopes.
//
// The Evaluator interface is the trust boundary: callers hand in ciphertexts
// and receive an encrypted boolean back, never a plaintext comparison result.
// The reference Oracle implementation satisfies the contract by decrypting,
// comparing, and re-encrypting inside the boundary; a homomorphic backend can
// replace it without touching callers, the same way a real equality circuit
// would evaluate the comparison without ever holding plaintext.
package evaluator

import (
	"cipherid/internal/crypto/cipher"
	"cipherid/internal/crypto/envelope"
	dErrors "cipherid/pkg/domain-errors"
)

// Encrypted boolean values produced by equality gates.
var (
	match    = envelope.Int(1)
	mismatch = envelope.Int(0)
)

// Evaluator evaluates field-level and aggregate equality over ciphertexts.
type Evaluator interface {
	// FieldEquals returns an encrypted 1 if both operands decrypt to the
	// same value (kind and content), else an encrypted 0. It fails if
	// either operand is structurally invalid.
	FieldEquals(a, b envelope.Envelope) (envelope.Envelope, error)

	// AggregateAnd composes encrypted booleans into one encrypted boolean
	// that decrypts to 1 only if every input decrypts to 1. An empty input
	// is a caller error: aggregation requires at least one comparison.
	AggregateAnd(results []envelope.Envelope) (envelope.Envelope, error)
}

// Oracle is the reference Evaluator. It holds the key context and simulates
// the equality circuit by decrypt-compare-re-encrypt.
type Oracle struct {
	cipher *cipher.Cipher
}

// NewOracle builds the reference evaluator over the given key context.
func NewOracle(c *cipher.Cipher) *Oracle {
	return &Oracle{cipher: c}
}

func (o *Oracle) FieldEquals(a, b envelope.Envelope) (envelope.Envelope, error) {
	va, err := o.cipher.Decrypt(a)
	if err != nil {
		return envelope.Envelope{}, err
	}
	vb, err := o.cipher.Decrypt(b)
	if err != nil {
		return envelope.Envelope{}, err
	}

	if va.Equal(vb) {
		return o.cipher.Encrypt(match)
	}
	return o.cipher.Encrypt(mismatch)
}

// AggregateAnd mirrors the repeated-multiplication composition a homomorphic
// scheme would use to AND boolean ciphertexts: any input that is not an
// encrypted 1 forces the product to 0.
func (o *Oracle) AggregateAnd(results []envelope.Envelope) (envelope.Envelope, error) {
	if len(results) == 0 {
		return envelope.Envelope{}, dErrors.New(dErrors.CodeInvalidQuery, "aggregation requires at least one field comparison")
	}

	all := true
	for _, r := range results {
		v, err := o.cipher.Decrypt(r)
		if err != nil {
			return envelope.Envelope{}, err
		}
		if !v.Equal(match) {
			all = false
		}
	}

	if all {
		return o.cipher.Encrypt(match)
	}
	return o.cipher.Encrypt(mismatch)
}

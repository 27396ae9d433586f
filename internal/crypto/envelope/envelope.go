// Package envelope defines the versioned wire format for encrypted scalars.
//
// An envelope carries a scheme marker, an opaque payload produced by the
// encryption primitive, and an independent randomness tag. Client-side query
// construction and server-side storage must agree byte-for-byte on this
// shape; it is the one load-bearing cross-component format in the system.
package envelope

import (
	"encoding/json"

	dErrors "cipherid/pkg/domain-errors"
)

// Scheme identifies the envelope format understood by this package. Bump on
// breaking changes to the payload layout; Parse rejects anything else.
const Scheme = "cipherid-he1"

// Envelope is the serialized container for one encrypted scalar. Payload and
// Noise are base64-encoded on the wire via encoding/json.
type Envelope struct {
	Scheme  string `json:"scheme"`
	Payload []byte `json:"payload"`
	Noise   []byte `json:"noise"`
}

// Marshal serializes the envelope to its JSON wire form.
func (e Envelope) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize ciphertext envelope")
	}
	return data, nil
}

// Parse deserializes and structurally validates an envelope. It fails with a
// malformed-ciphertext error if the input is not valid JSON, the scheme
// marker mismatches, or the payload is empty. It does not authenticate the
// payload; that is the encryption primitive's job.
func Parse(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, dErrors.Wrap(err, dErrors.CodeMalformedCiphertext, "ciphertext envelope is not valid JSON")
	}
	if e.Scheme != Scheme {
		return Envelope{}, dErrors.New(dErrors.CodeMalformedCiphertext, "unknown ciphertext scheme")
	}
	if len(e.Payload) == 0 {
		return Envelope{}, dErrors.New(dErrors.CodeMalformedCiphertext, "ciphertext payload is empty")
	}
	return e, nil
}

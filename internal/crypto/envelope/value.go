package envelope

import (
	"encoding/json"

	dErrors "cipherid/pkg/domain-errors"
)

// Kind discriminates the plaintext union. Only strings and integers are
// representable; attribute schemas are built from these two kinds.
type Kind string

const (
	KindString Kind = "s"
	KindInt    Kind = "i"
)

// Value is the tagged plaintext union carried inside a payload. Encryption
// and decryption round-trip the kind exactly: an integer never comes back as
// its decimal string form.
type Value struct {
	Kind Kind
	Str  string
	Int  int64
}

// String wraps a string plaintext.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Int wraps an integer plaintext.
func Int(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// Equal compares by kind and value. A string of digits never equals the
// integer it spells.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindInt:
		return v.Int == other.Int
	default:
		return false
	}
}

// wireValue is the inner JSON form sealed into a payload.
type wireValue struct {
	T Kind   `json:"t"`
	S string `json:"s"`
	I int64  `json:"i"`
}

// EncodeValue serializes a plaintext value for the encryption primitive.
func EncodeValue(v Value) ([]byte, error) {
	switch v.Kind {
	case KindString, KindInt:
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "plaintext value has no kind")
	}
	data, err := json.Marshal(wireValue{T: v.Kind, S: v.Str, I: v.Int})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode plaintext value")
	}
	return data, nil
}

// DecodeValue is the inverse of EncodeValue. It fails with a
// malformed-ciphertext error on unparseable input or an unknown kind tag.
func DecodeValue(data []byte) (Value, error) {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return Value{}, dErrors.Wrap(err, dErrors.CodeMalformedCiphertext, "payload does not decode to a value")
	}
	switch w.T {
	case KindString:
		return String(w.S), nil
	case KindInt:
		return Int(w.I), nil
	default:
		return Value{}, dErrors.New(dErrors.CodeMalformedCiphertext, "payload carries an unknown value kind")
	}
}

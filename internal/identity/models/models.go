// Package models holds the identity record shapes and request contracts.
// Attribute values only ever appear here in encrypted form; the raw passport
// identifier is hashed at the boundary and never persisted.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"cipherid/internal/crypto/envelope"
)

// Attribute names fixed by the registration schema. Bundles are keyed by
// these; the passport identifier itself is never part of a bundle.
const (
	FieldFullName         = "fullName"
	FieldAge              = "age"
	FieldExpiryDate       = "expiryDate"
	FieldVerificationCode = "verificationCode"
)

// Bundle maps attribute names to their ciphertext envelopes. Insertion order
// is irrelevant; every present key carries a well-formed envelope.
type Bundle map[string]envelope.Envelope

// Record is the persisted unit: one row per registered identity. Records are
// created once and never updated or deleted by this service.
type Record struct {
	ID        int64     `json:"id"`
	LookupKey string    `json:"lookupKey"`
	Bundle    Bundle    `json:"bundle"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeriveLookupKey computes the one-way index key for a raw passport
// identifier. SHA-256 hex keeps the index non-reversible while letting
// relying parties derive the same key client side.
func DeriveLookupKey(passportID string) string {
	sum := sha256.Sum256([]byte(passportID))
	return hex.EncodeToString(sum[:])
}

// RecordStatus is the PII-free admin view of a record.
type RecordStatus struct {
	Registered bool      `json:"registered"`
	CreatedAt  time.Time `json:"createdAt"`
}

package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	dErrors "cipherid/pkg/domain-errors"
)

const expiryDateLayout = "2006-01-02"

// RegistrationRequest carries the raw attributes submitted at registration.
// This is the only point in the system where plaintext attributes exist; they
// are encrypted immediately after validation.
type RegistrationRequest struct {
	FullName         string `json:"fullName"`
	Age              int64  `json:"age"`
	PassportID       string `json:"passportId"`
	ExpiryDate       string `json:"expiryDate"`
	VerificationCode string `json:"verificationCode"`
}

func (r *RegistrationRequest) Normalize() {
	if r == nil {
		return
	}
	r.FullName = strings.TrimSpace(r.FullName)
	r.PassportID = strings.TrimSpace(r.PassportID)
	r.ExpiryDate = strings.TrimSpace(r.ExpiryDate)
	r.VerificationCode = strings.TrimSpace(r.VerificationCode)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
// Violations name the offending field so callers can correct and retry.
func (r *RegistrationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if len(r.FullName) > 255 {
		return dErrors.New(dErrors.CodeValidation, "fullName must be 255 characters or less")
	}
	if len(r.PassportID) > 64 {
		return dErrors.New(dErrors.CodeValidation, "passportId must be 64 characters or less")
	}
	if len(r.VerificationCode) > 64 {
		return dErrors.New(dErrors.CodeValidation, "verificationCode must be 64 characters or less")
	}

	if r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "fullName is required")
	}
	if len(r.PassportID) < 5 {
		return dErrors.New(dErrors.CodeValidation, "passportId must be at least 5 characters")
	}
	if len(r.VerificationCode) < 4 {
		return dErrors.New(dErrors.CodeValidation, "verificationCode must be at least 4 characters")
	}

	if !govalidator.Matches(r.ExpiryDate, `^\d{4}-\d{2}-\d{2}$`) {
		return dErrors.New(dErrors.CodeValidation, "expiryDate must match YYYY-MM-DD")
	}
	if _, err := time.Parse(expiryDateLayout, r.ExpiryDate); err != nil {
		return dErrors.New(dErrors.CodeValidation, "expiryDate is not a valid calendar date")
	}

	if r.Age < 18 {
		return dErrors.New(dErrors.CodeValidation, "age must be at least 18")
	}

	return nil
}

// VerificationRequest carries the clear lookup hash and the encrypted query.
// Query values arrive as serialized ciphertext envelopes; this layer never
// sees their plaintext.
type VerificationRequest struct {
	PassportHash   string            `json:"passportHash"`
	EncryptedQuery map[string]string `json:"encryptedQuery"`
}

func (r *VerificationRequest) Normalize() {
	if r == nil {
		return
	}
	r.PassportHash = strings.ToLower(strings.TrimSpace(r.PassportHash))
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *VerificationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if r.PassportHash == "" {
		return dErrors.New(dErrors.CodeValidation, "passportHash is required")
	}
	if len(r.PassportHash) != 64 || !govalidator.IsHexadecimal(r.PassportHash) {
		return dErrors.New(dErrors.CodeValidation, "passportHash must be a 64-character hex digest")
	}

	if len(r.EncryptedQuery) == 0 {
		return dErrors.New(dErrors.CodeInvalidQuery, "encryptedQuery must contain at least one field")
	}
	for field, ct := range r.EncryptedQuery {
		if strings.TrimSpace(field) == "" {
			return dErrors.New(dErrors.CodeInvalidQuery, "encryptedQuery contains an empty field name")
		}
		if ct == "" {
			return dErrors.New(dErrors.CodeInvalidQuery, "encryptedQuery contains an empty ciphertext")
		}
	}

	return nil
}

// RegisterResponse returns the persistence-assigned record identifier.
type RegisterResponse struct {
	ID int64 `json:"id"`
}

// VerifyResponse carries the encrypted aggregate result; the match bit is
// never exposed in plaintext.
type VerifyResponse struct {
	EncryptedResult string `json:"encryptedResult"`
}

package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cipherid/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-signing-key")

	tok, err := svc.GenerateAdminToken("ops@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key")

	tok, err := svc.GenerateAdminToken("ops@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tok)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsWrongKey(t *testing.T) {
	tok, err := NewService("key-one").GenerateAdminToken("ops@example.com", time.Minute)
	require.NoError(t, err)

	_, err = NewService("key-two").ValidateToken(tok)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewService("key").ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

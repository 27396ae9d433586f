package evaluator

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"cipherid/internal/crypto/cipher"
	"cipherid/internal/crypto/envelope"
	dErrors "cipherid/pkg/domain-errors"
)

type OracleSuite struct {
	suite.Suite
	cipher *cipher.Cipher
	oracle *Oracle
}

func (s *OracleSuite) SetupTest() {
	key := sha256.Sum256([]byte("evaluator test key"))
	c, err := cipher.New(key[:])
	s.Require().NoError(err)
	s.cipher = c
	s.oracle = NewOracle(c)
}

func TestOracleSuite(t *testing.T) {
	suite.Run(t, new(OracleSuite))
}

func (s *OracleSuite) encrypt(v envelope.Value) envelope.Envelope {
	ct, err := s.cipher.Encrypt(v)
	s.Require().NoError(err)
	return ct
}

func (s *OracleSuite) decryptBit(ct envelope.Envelope) int64 {
	v, err := s.cipher.Decrypt(ct)
	s.Require().NoError(err)
	s.Require().Equal(envelope.KindInt, v.Kind)
	return v.Int
}

func (s *OracleSuite) TestFieldEqualsSoundness() {
	tests := []struct {
		name string
		a, b envelope.Value
		want int64
	}{
		{"equal strings", envelope.String("Amjad Masad"), envelope.String("Amjad Masad"), 1},
		{"unequal strings", envelope.String("Amjad Masad"), envelope.String("Someone Else"), 0},
		{"equal ints", envelope.Int(35), envelope.Int(35), 1},
		{"unequal ints", envelope.Int(35), envelope.Int(36), 0},
		{"int vs digit string", envelope.Int(35), envelope.String("35"), 0},
		{"empty strings equal", envelope.String(""), envelope.String(""), 1},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.oracle.FieldEquals(s.encrypt(tt.a), s.encrypt(tt.b))
			s.Require().NoError(err)
			s.Equal(tt.want, s.decryptBit(result))
		})
	}
}

func (s *OracleSuite) TestFieldEqualsResultIsEncrypted() {
	a := s.encrypt(envelope.String("x"))
	b := s.encrypt(envelope.String("x"))

	r1, err := s.oracle.FieldEquals(a, b)
	s.Require().NoError(err)
	r2, err := s.oracle.FieldEquals(a, b)
	s.Require().NoError(err)

	// Same verdict, different ciphertexts: the result bit is re-encrypted
	// probabilistically, not echoed.
	s.NotEqual(r1.Payload, r2.Payload)
	s.Equal(s.decryptBit(r1), s.decryptBit(r2))
}

func (s *OracleSuite) TestFieldEqualsRejectsMalformedOperand() {
	good := s.encrypt(envelope.Int(1))
	bad := good
	bad.Payload = []byte{0x00}

	_, err := s.oracle.FieldEquals(bad, good)
	s.True(dErrors.Is(err, dErrors.CodeDecryptionFailed))

	_, err = s.oracle.FieldEquals(good, bad)
	s.True(dErrors.Is(err, dErrors.CodeDecryptionFailed))
}

func (s *OracleSuite) TestAggregateAndTruthTable() {
	one := func() envelope.Envelope { return s.encrypt(envelope.Int(1)) }
	zero := func() envelope.Envelope { return s.encrypt(envelope.Int(0)) }

	tests := []struct {
		name    string
		results []envelope.Envelope
		want    int64
	}{
		{"single one", []envelope.Envelope{one()}, 1},
		{"single zero", []envelope.Envelope{zero()}, 0},
		{"all ones", []envelope.Envelope{one(), one(), one(), one()}, 1},
		{"one zero poisons", []envelope.Envelope{one(), zero(), one()}, 0},
		{"all zeros", []envelope.Envelope{zero(), zero()}, 0},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.oracle.AggregateAnd(tt.results)
			s.Require().NoError(err)
			s.Equal(tt.want, s.decryptBit(result))
		})
	}
}

func (s *OracleSuite) TestAggregateAndEmptyInputIsInvalidQuery() {
	_, err := s.oracle.AggregateAnd(nil)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInvalidQuery))

	_, err = s.oracle.AggregateAnd([]envelope.Envelope{})
	s.True(dErrors.Is(err, dErrors.CodeInvalidQuery))
}

func (s *OracleSuite) TestAggregateAndTreatsNonBooleanAsMismatch() {
	// A result that decrypts to something other than 1 can never satisfy
	// the AND; it counts as 0 rather than raising.
	weird := s.encrypt(envelope.String("1"))
	result, err := s.oracle.AggregateAnd([]envelope.Envelope{weird})
	s.Require().NoError(err)
	s.Equal(int64(0), s.decryptBit(result))
}

func TestOracleSatisfiesEvaluator(t *testing.T) {
	key := sha256.Sum256([]byte("iface"))
	c, err := cipher.New(key[:])
	require.NoError(t, err)
	var _ Evaluator = NewOracle(c)
	assert.NotNil(t, NewOracle(c))
}

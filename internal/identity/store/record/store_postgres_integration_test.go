//go:build integration

package record_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"cipherid/internal/crypto/envelope"
	"cipherid/internal/identity/models"
	"cipherid/internal/identity/store/record"
	"cipherid/pkg/platform/sentinel"
	"cipherid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *record.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	_, err := s.postgres.DB.Exec(record.Schema)
	s.Require().NoError(err)
	s.store = record.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "identity_records"))
}

func newPostgresTestRecord(lookupKey string) *models.Record {
	return &models.Record{
		LookupKey: lookupKey,
		Bundle: models.Bundle{
			models.FieldFullName: envelope.Envelope{
				Scheme:  envelope.Scheme,
				Payload: []byte("sealed-name"),
				Noise:   []byte("noise-a"),
			},
			models.FieldAge: envelope.Envelope{
				Scheme:  envelope.Scheme,
				Payload: []byte("sealed-age"),
				Noise:   []byte("noise-b"),
			},
		},
	}
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	rec := newPostgresTestRecord("pg-key-1")
	id, err := s.store.Create(context.Background(), rec)
	s.Require().NoError(err)
	s.Positive(id)

	found, err := s.store.FindByLookupKey(context.Background(), "pg-key-1")
	s.Require().NoError(err)
	s.Equal(id, found.ID)
	s.Equal("pg-key-1", found.LookupKey)
	s.False(found.CreatedAt.IsZero())
	s.Equal(rec.Bundle, found.Bundle, "bundle must survive the TEXT column round trip byte-exact")
}

func (s *PostgresStoreSuite) TestUniqueConstraintMapsToConflict() {
	_, err := s.store.Create(context.Background(), newPostgresTestRecord("pg-dup"))
	s.Require().NoError(err)

	_, err = s.store.Create(context.Background(), newPostgresTestRecord("pg-dup"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestFindUnknownKeyIsNotFound() {
	_, err := s.store.FindByLookupKey(context.Background(), "pg-missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentInsertSameKeyOneWinner() {
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.store.Create(context.Background(), newPostgresTestRecord("pg-contended"))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			s.ErrorIs(err, sentinel.ErrConflict)
		}
	}
	s.Equal(1, successes, "the unique constraint must admit exactly one insert")
}

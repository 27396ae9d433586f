package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"cipherid/internal/identity/models"
	"cipherid/pkg/platform/sentinel"
)

// Schema creates the identity record table. The UNIQUE constraint on
// lookup_key is what makes concurrent registration of the same passport
// resolve to exactly one success.
const Schema = `
CREATE TABLE IF NOT EXISTS identity_records (
	id BIGSERIAL PRIMARY KEY,
	lookup_key TEXT NOT NULL UNIQUE,
	bundle TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore persists identity records in PostgreSQL. The bundle is stored
// as one opaque JSON blob per row; the database never sees attribute
// plaintext or individual ciphertext structure.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, rec *models.Record) (int64, error) {
	bundle, err := json.Marshal(rec.Bundle)
	if err != nil {
		return 0, fmt.Errorf("serialize bundle: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO identity_records (lookup_key, bundle)
		VALUES ($1, $2)
		RETURNING id
	`, rec.LookupKey, string(bundle)).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return 0, fmt.Errorf("lookup key already registered: %w", sentinel.ErrConflict)
		}
		return 0, fmt.Errorf("insert identity record: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) FindByLookupKey(ctx context.Context, lookupKey string) (*models.Record, error) {
	rec := &models.Record{LookupKey: lookupKey}
	var bundle string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, bundle, created_at
		FROM identity_records
		WHERE lookup_key = $1
	`, lookupKey).Scan(&rec.ID, &bundle, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find identity record: %w", err)
	}

	if err := json.Unmarshal([]byte(bundle), &rec.Bundle); err != nil {
		return nil, fmt.Errorf("deserialize bundle: %w", err)
	}
	return rec, nil
}

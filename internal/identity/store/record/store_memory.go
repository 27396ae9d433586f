package record

import (
	"context"
	"sync"
	"time"

	"cipherid/internal/identity/models"
	"cipherid/pkg/platform/sentinel"
)

// InMemoryStore keeps records in a mutex-guarded map. It backs unit tests and
// dev mode; production uses the PostgreSQL store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.Record
	nextID  int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.Record)}
}

func (s *InMemoryStore) Create(_ context.Context, rec *models.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.LookupKey]; exists {
		return 0, sentinel.ErrConflict
	}

	s.nextID++
	stored := cloneRecord(rec)
	stored.ID = s.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.records[rec.LookupKey] = stored
	return stored.ID, nil
}

func (s *InMemoryStore) FindByLookupKey(_ context.Context, lookupKey string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[lookupKey]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneRecord(rec), nil
}

// cloneRecord copies the record and its bundle so callers cannot mutate
// stored state through returned pointers.
func cloneRecord(rec *models.Record) *models.Record {
	bundle := make(models.Bundle, len(rec.Bundle))
	for field, ct := range rec.Bundle {
		bundle[field] = ct
	}
	return &models.Record{
		ID:        rec.ID,
		LookupKey: rec.LookupKey,
		Bundle:    bundle,
		CreatedAt: rec.CreatedAt,
	}
}

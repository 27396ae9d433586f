package record

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"cipherid/internal/identity/models"
)

const cacheKeyPrefix = "record:lk:"

// CachedStore is a read-through cache in front of a backing Store. Bundles are
// already ciphertext, so caching them leaks nothing beyond registration
// status to anyone holding the cache. Cache failures degrade to the backing
// store rather than failing the request.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// CachedStoreOption configures a CachedStore.
type CachedStoreOption func(*CachedStore)

// WithCacheLogger sets the logger for degraded-cache warnings.
func WithCacheLogger(logger *slog.Logger) CachedStoreOption {
	return func(s *CachedStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewCached(next Store, client *redis.Client, ttl time.Duration, opts ...CachedStoreOption) *CachedStore {
	s := &CachedStore{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create writes through to the backing store. The cache is populated lazily
// on reads; records are immutable, so there is no invalidation to manage.
func (s *CachedStore) Create(ctx context.Context, rec *models.Record) (int64, error) {
	return s.next.Create(ctx, rec)
}

func (s *CachedStore) FindByLookupKey(ctx context.Context, lookupKey string) (*models.Record, error) {
	key := cacheKeyPrefix + lookupKey

	cached, err := s.client.Get(ctx, key).Result()
	if err == nil {
		var rec models.Record
		if err := json.Unmarshal([]byte(cached), &rec); err == nil {
			return &rec, nil
		}
		// Unreadable cache entry: drop it and fall through.
		s.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.logger.WarnContext(ctx, "record cache read failed, falling back to store", "error", err.Error())
	}

	rec, err := s.next.FindByLookupKey(ctx, lookupKey)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rec); err == nil {
		if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
			s.logger.WarnContext(ctx, "record cache write failed", "error", err.Error())
		}
	}
	return rec, nil
}

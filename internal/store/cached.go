package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/nutriscan/backend/internal/models"
)

const (
	listCacheKey    = "nutriscan:diary:entries"
	versionCacheKey = "nutriscan:diary:version"
)

// CachedStore is a read-through Redis cache in front of another store.
// Cache failures are logged and fall back to the wrapped store.
//
// Every append bumps a version key before dropping the list. A refill only
// writes the list if the version it read before loading is still current, so
// a slow reader never caches a list older than the newest append.
type CachedStore struct {
	next  EntryStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedStore wraps next with a list cache kept for ttl
func NewCachedStore(next EntryStore, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{next: next, redis: client, ttl: ttl}
}

// Append writes through and drops the cached list
func (s *CachedStore) Append(ctx context.Context, entry models.DiaryEntry) (models.DiaryEntry, error) {
	stored, err := s.next.Append(ctx, entry)
	if err != nil {
		return models.DiaryEntry{}, err
	}
	if err := s.redis.Incr(ctx, versionCacheKey).Err(); err != nil {
		log.Printf("[CachedStore] Failed to bump list version: %v", err)
	}
	if err := s.redis.Del(ctx, listCacheKey).Err(); err != nil {
		log.Printf("[CachedStore] Failed to invalidate list cache: %v", err)
	}
	return stored, nil
}

// List serves from the cache when possible
func (s *CachedStore) List(ctx context.Context) ([]models.DiaryEntry, error) {
	data, err := s.redis.Get(ctx, listCacheKey).Bytes()
	switch {
	case err == nil:
		var entries []models.DiaryEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
		log.Printf("[CachedStore] Dropping undecodable cache value")
	case !errors.Is(err, redis.Nil):
		log.Printf("[CachedStore] Cache read failed: %v", err)
	}

	version, verr := s.version(ctx, s.redis)

	entries, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if verr != nil {
		log.Printf("[CachedStore] Skipping cache refill, version unreadable: %v", verr)
		return entries, nil
	}
	if err := s.refill(ctx, version, entries); err != nil {
		log.Printf("[CachedStore] Cache write failed: %v", err)
	}
	return entries, nil
}

// refill caches entries unless an append bumped the version since it was read
func (s *CachedStore) refill(ctx context.Context, version int64, entries []models.DiaryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	err = s.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.version(ctx, tx)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listCacheKey, data, s.ttl)
			return nil
		})
		return err
	}, versionCacheKey)
	if errors.Is(err, redis.TxFailedErr) {
		// An append landed while refilling
		return nil
	}
	return err
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *CachedStore) version(ctx context.Context, c getter) (int64, error) {
	v, err := c.Get(ctx, versionCacheKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Hash fields for a stored entry. The absolute deadline and sliding window
// ride along with the payload so that reads can refresh the entry's TTL.
const (
	fieldAbsExp  = "absexp" // unix milliseconds, -1 when unset
	fieldSliding = "sldexp" // milliseconds, -1 when unset
	fieldData    = "data"
)

// RedisStore is a Store backed by Redis. Each entry is a hash carrying the
// payload plus its expiration metadata; reads of sliding entries re-arm the
// key TTL, capped by the absolute deadline.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces all stored keys with prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a Redis-backed store. client must be an initialized
// redis.UniversalClient; its lifecycle stays with the caller.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	s := &RedisStore{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get retrieves the stored bytes for key. When the entry carries a sliding
// window, the key TTL is refreshed to the window, capped by the remaining
// absolute lifetime.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}

	k := s.prefix + key
	vals, err := s.client.HMGet(ctx, k, fieldAbsExp, fieldSliding, fieldData).Result()
	if err != nil {
		return nil, false, fmt.Errorf("store: redis get %q: %w", key, err)
	}

	raw, ok := vals[2].(string)
	if !ok {
		return nil, false, nil
	}

	absExp := parseField(vals[0])
	sliding := parseField(vals[1])
	now := s.now()

	// Redis expires the key on its own; this guards the window between
	// the deadline passing and Redis reclaiming the key.
	if absExp >= 0 && now.UnixMilli() >= absExp {
		return nil, false, nil
	}

	if sliding > 0 {
		ttl := time.Duration(sliding) * time.Millisecond
		if absExp >= 0 {
			if remain := time.Duration(absExp-now.UnixMilli()) * time.Millisecond; remain < ttl {
				ttl = remain
			}
		}
		if err := s.client.PExpire(ctx, k, ttl).Err(); err != nil {
			return nil, false, fmt.Errorf("store: redis refresh %q: %w", key, err)
		}
	}

	return []byte(raw), true, nil
}

// Set stores value under key with the given policy. A policy whose absolute
// bound has already passed removes any existing entry and stores nothing.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, policy Policy) error {
	if key == "" {
		return ErrEmptyKey
	}

	now := s.now()
	deadline, hasDeadline := policy.Deadline(now)
	k := s.prefix + key

	if hasDeadline && !deadline.After(now) {
		if err := s.client.Del(ctx, k).Err(); err != nil {
			return fmt.Errorf("store: redis set %q: %w", key, err)
		}
		return nil
	}

	absExp := int64(-1)
	if hasDeadline {
		absExp = deadline.UnixMilli()
	}
	sliding := int64(-1)
	if policy.SlidingExpiration > 0 {
		sliding = policy.SlidingExpiration.Milliseconds()
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, k, fieldAbsExp, absExp, fieldSliding, sliding, fieldData, value)
	if ttl, hasTTL := policy.TTL(now); hasTTL {
		pipe.PExpire(ctx, k, ttl)
	} else {
		pipe.Persist(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: redis set %q: %w", key, err)
	}

	return nil
}

// Delete removes a stored entry. Idempotent - no error on miss.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("store: redis delete %q: %w", key, err)
	}
	return nil
}

// parseField decodes an int64 hash field, -1 when absent or malformed.
func parseField(v any) int64 {
	raw, ok := v.(string)
	if !ok {
		return -1
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

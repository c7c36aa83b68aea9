package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation. It honors absolute and
// sliding expiration and is the reference backend for tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero = no expiry
	deadline  time.Time // absolute cap for sliding reads, zero = none
	sliding   time.Duration
}

// NewMemoryStore creates an in-memory store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an in-memory store reading time from now.
// Tests use this to drive expiration deterministically.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     now,
	}
}

// Get retrieves the stored bytes for key. An entry whose expiry instant has
// been reached is a miss and is cleaned up lazily. A sliding read extends
// the entry, never past its absolute deadline.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}

	now := s.now()
	if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}

	if e.sliding > 0 {
		next := now.Add(e.sliding)
		if !e.deadline.IsZero() && next.After(e.deadline) {
			next = e.deadline
		}
		e.expiresAt = next
	}

	return e.value, true, nil
}

// Set stores value under key with the given policy. A policy whose absolute
// bound has already passed removes any existing entry and stores nothing.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, policy Policy) error {
	if key == "" {
		return ErrEmptyKey
	}

	now := s.now()
	deadline, hasDeadline := policy.Deadline(now)

	s.mu.Lock()
	defer s.mu.Unlock()

	if hasDeadline && !deadline.After(now) {
		delete(s.entries, key)
		return nil
	}

	e := &memoryEntry{
		value:   value,
		sliding: policy.SlidingExpiration,
	}
	if hasDeadline {
		e.deadline = deadline
		e.expiresAt = deadline
	}
	if policy.SlidingExpiration > 0 {
		next := now.Add(policy.SlidingExpiration)
		if hasDeadline && next.After(deadline) {
			next = deadline
		}
		e.expiresAt = next
	}
	s.entries[key] = e

	return nil
}

// Delete removes a stored entry. Idempotent - no error on miss.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of live entries, expired ones included until their
// lazy cleanup.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

package store

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives MemoryStore expiration in tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newClockedStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewMemoryStoreWithClock(clock.Now), clock
}

func TestMemoryStore_GetMiss(t *testing.T) {
	s, _ := newClockedStore()

	v, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || v != nil {
		t.Errorf("Get() = (%v, %v), want miss", v, ok)
	}
}

func TestMemoryStore_SetGetRoundTrip(t *testing.T) {
	s, _ := newClockedStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("payload"), Policy{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || string(v) != "payload" {
		t.Errorf("Get() = (%q, %v), want (payload, true)", v, ok)
	}
}

func TestMemoryStore_EmptyKey(t *testing.T) {
	s, _ := newClockedStore()
	ctx := context.Background()

	if err := s.Set(ctx, "", []byte("x"), Policy{}); err != ErrEmptyKey {
		t.Errorf("Set() error = %v, want ErrEmptyKey", err)
	}
	if _, _, err := s.Get(ctx, ""); err != ErrEmptyKey {
		t.Errorf("Get() error = %v, want ErrEmptyKey", err)
	}
}

// A key written with ExpiresAfter = 10m is retrievable before the deadline
// and a miss at and after it.
func TestMemoryStore_RelativeExpiration(t *testing.T) {
	s, clock := newClockedStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), Policy{ExpiresAfter: 10 * time.Minute}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	clock.Advance(9 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("Get() before deadline = miss, want hit")
	}

	clock.Advance(time.Minute) // exactly at the deadline
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Get() at deadline = hit, want miss")
	}

	clock.Advance(time.Hour)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Get() after deadline = hit, want miss")
	}
}

func TestMemoryStore_AbsoluteInstantExpiration(t *testing.T) {
	s, clock := newClockedStore()
	ctx := context.Background()

	policy := Policy{AbsoluteExpiration: clock.Now().Add(5 * time.Minute)}
	if err := s.Set(ctx, "k", []byte("v"), policy); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	clock.Advance(4 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("Get() before instant = miss, want hit")
	}
	clock.Advance(time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Get() at instant = hit, want miss")
	}
}

func TestMemoryStore_EarliestBoundWins(t *testing.T) {
	s, clock := newClockedStore()
	ctx := context.Background()

	policy := Policy{
		AbsoluteExpiration: clock.Now().Add(2 * time.Minute),
		ExpiresAfter:       time.Hour,
	}
	if err := s.Set(ctx, "k", []byte("v"), policy); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	clock.Advance(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Get() past earliest bound = hit, want miss")
	}
}

func TestMemoryStore_SlidingRefreshOnRead(t *testing.T) {
	s, clock := newClockedStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), Policy{SlidingExpiration: 5 * time.Minute}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Reads inside the window keep the entry alive well past the
	// original window.
	for i := 0; i < 4; i++ {
		clock.Advance(4 * time.Minute)
		if _, ok, _ := s.Get(ctx, "k"); !ok {
			t.Fatalf("Get() read %d inside window = miss, want hit", i)
		}
	}

	clock.Advance(5 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Get() after idle window = hit, want miss")
	}
}

func TestMemoryStore_SlidingNeverExtendsPastAbsolute(t *testing.T) {
	s, clock := newClockedStore()
	ctx := context.Background()

	policy := Policy{
		SlidingExpiration: 5 * time.Minute,
		ExpiresAfter:      8 * time.Minute,
	}
	if err := s.Set(ctx, "k", []byte("v"), policy); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	clock.Advance(4 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("Get() inside both windows = miss, want hit")
	}

	// The sliding window alone would reach t+9m, but the absolute bound
	// at t+8m wins.
	clock.Advance(4 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Get() at absolute bound = hit, want miss despite sliding reads")
	}
}

func TestMemoryStore_SetWithPassedDeadlineStoresNothing(t *testing.T) {
	s, clock := newClockedStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("old"), Policy{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	policy := Policy{AbsoluteExpiration: clock.Now().Add(-time.Second)}
	if err := s.Set(ctx, "k", []byte("new"), policy); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Get() after expired Set = hit, want miss")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s, _ := newClockedStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), Policy{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("Get() after delete = hit, want miss")
	}
	// Idempotent on miss.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() second call error = %v", err)
	}
}

func TestMemoryStore_LazyCleanup(t *testing.T) {
	s, clock := newClockedStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v"), Policy{ExpiresAfter: time.Minute}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	clock.Advance(2 * time.Minute)

	if got := s.Len(); got != 1 {
		t.Fatalf("Len() before cleanup = %d, want 1", got)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("Get() = hit, want miss")
	}
	if got := s.Len(); got != 0 {
		t.Errorf("Len() after cleanup = %d, want 0", got)
	}
}

package flight

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/fragcache/fragment"
	"github.com/jonwraymond/fragcache/store"
)

// RenderFunc produces a fragment when the cache cannot. It is invoked at
// most once per winning computation and may fail.
type RenderFunc func(ctx context.Context) (fragment.Fragment, error)

// gate is the one-shot signal for a single in-flight computation. Waiters
// never receive the result through it; they re-read storage once it closes.
type gate struct {
	done chan struct{}
}

// Service coalesces concurrent fragment renders per cache key.
//
// Contract:
// - Concurrency: safe for parallel use; at most one render is in flight per
//   key at any instant.
// - Errors: render, serialization, and storage failures reach only the
//   caller whose attempt failed, never concurrent waiters on the same key.
type Service struct {
	store     store.Store
	formatter fragment.Formatter
	metrics   *metrics

	mu       sync.Mutex
	inflight map[string]*gate
}

// Option configures a Service.
type Option func(*serviceOptions)

// NewService creates a coalescing service over the given store and formatter.
func NewService(st store.Store, f fragment.Formatter, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, ErrNilStore
	}
	if f == nil {
		return nil, ErrNilFormatter
	}

	options := defaultServiceOptions()
	for _, opt := range opts {
		opt(options)
	}
	m, err := newMetrics(options.meterProvider)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     st,
		formatter: f,
		metrics:   m,
		inflight:  make(map[string]*gate),
	}, nil
}

// Serve returns the cached fragment for key, rendering and caching it on a
// miss. Concurrent calls for the same key trigger at most one render; late
// arrivals block until the winner resolves and then re-read storage.
//
// A store Set failure still returns the freshly rendered fragment, wrapped
// with ErrSetFailed; the value was not cached and the next caller recomputes.
func (s *Service) Serve(ctx context.Context, key string, policy store.Policy, render RenderFunc) (fragment.Fragment, error) {
	if render == nil {
		return fragment.Fragment{}, ErrNilRender
	}

	for {
		data, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return fragment.Fragment{}, fmt.Errorf("flight: store get: %w", err)
		}
		if ok {
			s.metrics.recordHit(ctx)
			return s.formatter.Deserialize(data)
		}

		g, owner := s.claim(key)
		if !owner {
			s.metrics.recordCoalesced(ctx)
			select {
			case <-g.done:
			case <-ctx.Done():
				return fragment.Fragment{}, ctx.Err()
			}
			// Success left the value in storage; failure left a miss.
			// Either way the loop re-checks storage and, if still
			// missing, competes for ownership again.
			continue
		}

		s.metrics.recordMiss(ctx)
		return s.render(ctx, key, policy, render, g)
	}
}

// render runs the owning caller's attempt. The gate entry is removed before
// the gate closes, on success and failure alike, so no attempt state ever
// outlives its computation.
func (s *Service) render(ctx context.Context, key string, policy store.Policy, render RenderFunc, g *gate) (fragment.Fragment, error) {
	defer s.release(key, g)

	frag, err := render(ctx)
	if err != nil {
		s.metrics.recordRenderError(ctx)
		return fragment.Fragment{}, fmt.Errorf("flight: render: %w", err)
	}

	data, err := s.formatter.Serialize(frag)
	if err != nil {
		return fragment.Fragment{}, fmt.Errorf("flight: serialize: %w", err)
	}

	if err := s.store.Set(ctx, key, data, policy); err != nil {
		return frag, fmt.Errorf("%w: %w", ErrSetFailed, err)
	}

	return frag, nil
}

// claim returns the key's gate and whether this caller became its owner.
func (s *Service) claim(key string) (*gate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.inflight[key]; ok {
		return g, false
	}
	g := &gate{done: make(chan struct{})}
	s.inflight[key] = g
	return g, true
}

// release removes the gate entry and then signals the waiters.
func (s *Service) release(key string, g *gate) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
	close(g.done)
}

// InFlight returns the number of keys with an active computation. Useful for
// monitoring and tests.
func (s *Service) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

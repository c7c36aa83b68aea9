package flight

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/fragcache/fragment"
	"github.com/jonwraymond/fragcache/store"
)

func newRedisService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	client := redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		DialTimeout: 100 * time.Millisecond,
		PoolSize:    4,
	})
	st, err := store.NewRedisStore(client, store.WithKeyPrefix("frag:"))
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	svc, err := NewService(st, fragment.NewFormatter())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return svc, mr
}

func TestServe_RedisBackend(t *testing.T) {
	svc, _ := newRedisService(t)
	ctx := context.Background()

	var renders atomic.Int32
	render := func(context.Context) (fragment.Fragment, error) {
		renders.Add(1)
		return fragment.Fragment{Content: "<p>from redis</p>"}, nil
	}
	policy := store.Policy{ExpiresAfter: 10 * time.Minute}

	first, err := svc.Serve(ctx, "k", policy, render)
	if err != nil {
		t.Fatalf("Serve() miss error = %v", err)
	}
	second, err := svc.Serve(ctx, "k", policy, render)
	if err != nil {
		t.Fatalf("Serve() hit error = %v", err)
	}
	if first != second {
		t.Errorf("hit content %q differs from rendered %q", second.Content, first.Content)
	}
	if got := renders.Load(); got != 1 {
		t.Errorf("render count = %d, want 1", got)
	}
}

func TestServe_RedisBackendExpiry(t *testing.T) {
	svc, mr := newRedisService(t)
	ctx := context.Background()

	var renders atomic.Int32
	render := func(context.Context) (fragment.Fragment, error) {
		renders.Add(1)
		return fragment.Fragment{Content: "v"}, nil
	}
	policy := store.Policy{ExpiresAfter: 10 * time.Minute}

	if _, err := svc.Serve(ctx, "k", policy, render); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	mr.FastForward(10 * time.Minute)
	if _, err := svc.Serve(ctx, "k", policy, render); err != nil {
		t.Fatalf("Serve() after expiry error = %v", err)
	}
	if got := renders.Load(); got != 2 {
		t.Errorf("render count = %d, want a recompute after expiry", got)
	}
}

func TestServe_RedisBackendSingleFlight(t *testing.T) {
	svc, _ := newRedisService(t)
	ctx := context.Background()

	const callers = 16
	var renders atomic.Int32
	release := make(chan struct{})
	render := func(context.Context) (fragment.Fragment, error) {
		renders.Add(1)
		<-release
		return fragment.Fragment{Content: "winner"}, nil
	}

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			_, err := svc.Serve(ctx, "k", store.Policy{}, render)
			return err
		})
	}
	waitFor(t, func() bool { return renders.Load() == 1 })
	time.Sleep(10 * time.Millisecond)
	close(release)

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent Serve() error = %v", err)
	}
	if got := renders.Load(); got != 1 {
		t.Errorf("render count = %d, want 1", got)
	}
}

package store

import (
	"context"
	"errors"
)

// Sentinel errors for store construction and operations.
var (
	ErrNilClient = errors.New("store: client is nil")
	ErrEmptyKey  = errors.New("store: key is empty")
)

// Store is the byte-oriented key/value backend for cached fragments.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: transport failures are returned verbatim; this layer never
//   retries.
// - Visibility: a successful Set must be visible to a subsequent Get from
//   the same process.
type Store interface {
	// Get retrieves the stored bytes for key. Returns (nil, false, nil)
	// on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given expiration policy.
	// Implementations must honor absolute expiration when the policy
	// requests it.
	Set(ctx context.Context, key string, value []byte, policy Policy) error
}

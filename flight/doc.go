// Package flight serves cached fragments with single-flight coalescing.
//
// Concurrent callers for the same key share one render: the first caller to
// claim the key's gate invokes the renderer and writes the result through the
// store; everyone else waits on the gate and then re-reads storage, so the
// byte path stays the single source of truth. A failed render releases the
// gate without poisoning the waiters - the key simply becomes a miss again
// and the next caller renders for itself.
package flight

// Package store provides the byte-oriented key/value surface that fragment
// caching writes through, together with entry expiration policies.
//
// Two implementations ship with the package: MemoryStore, a mutex-guarded map
// used as the reference backend in tests, and RedisStore, which persists
// entries in Redis with absolute and sliding expiration.
package store

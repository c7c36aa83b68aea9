// Package vary derives deterministic cache keys for rendered fragments.
//
// A fragment's identity is the combination of its tag name and the configured
// vary-by dimensions: a raw value, cookies, headers, query parameters, route
// values, and the authenticated user. BuildKey folds the dimensions into a
// canonical signature and hashes it, so equal inputs always map to the same
// key across processes and restarts.
package vary

package vary

// Config describes the vary-by dimensions for a single cache-eligible
// fragment. The zero value varies by nothing but the tag name.
//
// The list-valued dimensions (Cookies, Headers, Queries, Routes) hold raw
// comma-separated name lists exactly as supplied by the caller; tokens are
// split, trimmed, and filtered during key derivation, preserving their
// relative order.
type Config struct {
	// TagName identifies the fragment and always contributes to the key.
	TagName string

	// VaryBy is an opaque caller-supplied value folded into the key
	// verbatim. It is never trimmed or normalized.
	VaryBy string

	// Cookies is a comma-separated list of cookie names whose values
	// contribute to the key.
	Cookies string

	// Headers is a comma-separated list of header names whose values
	// contribute to the key.
	Headers string

	// Queries is a comma-separated list of query-parameter names whose
	// values contribute to the key. Lookup is case-insensitive.
	Queries string

	// Routes is a comma-separated list of route-value names whose
	// stringified values contribute to the key.
	Routes string

	// ByUser folds the authenticated user name into the key. An
	// unauthenticated principal contributes an empty name.
	ByUser bool
}

package vary

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// sectionSeparator delimits signature sections and name/value pairs.
const sectionSeparator = "||"

// BuildKey derives the cache key for a fragment from its vary-by
// configuration and the current request context.
//
// Contract:
// - Determinism: equal inputs produce byte-identical keys, across calls and
//   across process restarts. No randomized salt is involved.
// - Purity: no I/O and no mutation of cfg or ctx.
//
// The key is the standard-base64 encoding of the SHA-256 digest of the
// canonical signature (see Signature).
func BuildKey(cfg Config, ctx Context) string {
	sum := sha256.Sum256([]byte(Signature(cfg, ctx)))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Signature assembles the canonical signature string that BuildKey hashes.
// It is exported for debugging and testing; storage lookups must use the
// hashed key, not the signature.
//
// Sections appear in fixed order: tag name, raw vary-by, cookies, headers,
// query parameters, route values, user. A dimension with no configuration is
// omitted entirely, never emitted empty.
func Signature(cfg Config, ctx Context) string {
	var b strings.Builder
	b.WriteString(cfg.TagName)

	// The raw value is folded in verbatim, whitespace included.
	if cfg.VaryBy != "" {
		b.WriteString(sectionSeparator)
		b.WriteString("VaryBy")
		b.WriteString(sectionSeparator)
		b.WriteString(cfg.VaryBy)
	}

	writePairs(&b, "VaryByCookie", cfg.Cookies, func(name string) string {
		v, _ := ctx.Cookie(name)
		return v
	})
	writePairs(&b, "VaryByHeader", cfg.Headers, func(name string) string {
		v, _ := ctx.Header(name)
		return v
	})
	writePairs(&b, "VaryByQuery", cfg.Queries, func(name string) string {
		v, _ := ctx.Query(name)
		return v
	})
	writePairs(&b, "VaryByRoute", cfg.Routes, func(name string) string {
		v, ok := ctx.Route(name)
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	})

	if cfg.ByUser {
		b.WriteString(sectionSeparator)
		b.WriteString("VaryByUser")
		b.WriteString(sectionSeparator)
		if u := ctx.User(); u != nil && u.Authenticated() {
			b.WriteString(u.Name())
		}
	}

	return b.String()
}

// writePairs emits one list-valued section: the section label followed by
// parenthesized name/value pairs for every surviving token. A name whose
// lookup misses still contributes a pair with an empty value; a section with
// no surviving tokens is omitted.
func writePairs(b *strings.Builder, label, rawList string, lookup func(name string) string) {
	names := splitList(rawList)
	if len(names) == 0 {
		return
	}

	b.WriteString(sectionSeparator)
	b.WriteString(label)
	b.WriteString("(")
	for i, name := range names {
		if i > 0 {
			b.WriteString(sectionSeparator)
		}
		b.WriteString(name)
		b.WriteString(sectionSeparator)
		b.WriteString(lookup(name))
	}
	b.WriteString(")")
}

// splitList splits a raw comma-separated name list into trimmed, non-empty
// tokens, preserving relative order. No sorting, no deduplication.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

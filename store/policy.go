package store

import "time"

// Policy describes the lifetime of a cache entry. All three dials are
// independent; a zero field requests nothing. When several bounds apply the
// entry expires at the earliest one.
type Policy struct {
	// AbsoluteExpiration is the instant after which the entry is expired.
	// The zero time means no absolute instant is set.
	AbsoluteExpiration time.Time

	// ExpiresAfter is the absolute lifetime relative to entry creation.
	// Zero means no relative bound.
	ExpiresAfter time.Duration

	// SlidingExpiration expires the entry when it has not been read for
	// this long. Zero disables sliding expiry. Sliding reads never extend
	// an entry past its absolute bound.
	SlidingExpiration time.Duration
}

// NewPolicy builds a Policy from the three optional expiration inputs.
// A zero absoluteOn, expiresAfter, or sliding leaves that dial unset.
func NewPolicy(absoluteOn time.Time, expiresAfter, sliding time.Duration) Policy {
	return Policy{
		AbsoluteExpiration: absoluteOn,
		ExpiresAfter:       expiresAfter,
		SlidingExpiration:  sliding,
	}
}

// HasExpiration reports whether any expiration dial is set. When false, the
// backend's default retention applies.
func (p Policy) HasExpiration() bool {
	return !p.AbsoluteExpiration.IsZero() || p.ExpiresAfter > 0 || p.SlidingExpiration > 0
}

// Deadline resolves the earliest absolute bound for an entry created at now.
// Returns (zero, false) when no absolute bound is set.
func (p Policy) Deadline(now time.Time) (time.Time, bool) {
	var deadline time.Time
	if p.ExpiresAfter > 0 {
		deadline = now.Add(p.ExpiresAfter)
	}
	if !p.AbsoluteExpiration.IsZero() {
		if deadline.IsZero() || p.AbsoluteExpiration.Before(deadline) {
			deadline = p.AbsoluteExpiration
		}
	}
	return deadline, !deadline.IsZero()
}

// TTL resolves the effective initial time-to-live for an entry created at
// now: the sliding window capped by the absolute deadline, or the deadline
// alone when sliding is unset. Returns (0, false) when the policy requests
// no expiration.
func (p Policy) TTL(now time.Time) (time.Duration, bool) {
	deadline, hasDeadline := p.Deadline(now)

	if p.SlidingExpiration > 0 {
		ttl := p.SlidingExpiration
		if hasDeadline {
			if remain := deadline.Sub(now); remain < ttl {
				ttl = remain
			}
		}
		return ttl, true
	}
	if hasDeadline {
		return deadline.Sub(now), true
	}
	return 0, false
}

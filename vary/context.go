package vary

import (
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"
)

// Principal is the authenticated requester, if any.
//
// Contract:
// - Name returns the empty string when Authenticated is false.
// - Implementations must be safe for concurrent use.
type Principal interface {
	// Authenticated reports whether the requester is authenticated.
	Authenticated() bool

	// Name returns the principal's display name.
	Name() string
}

// Context exposes the request dimensions that key derivation reads.
//
// Contract:
// - Lookups are read-only; BuildKey never mutates the context.
// - Query must match parameter names case-insensitively.
// - Missing values return ("", false) or (nil, false); BuildKey treats a
//   missing value as the empty string.
type Context interface {
	// Cookie returns the value of the named cookie.
	Cookie(name string) (string, bool)

	// Header returns the value of the named header.
	Header(name string) (string, bool)

	// Query returns the value of the named query parameter,
	// matched case-insensitively. Resolution must be deterministic
	// when case-variant duplicate names are present.
	Query(name string) (string, bool)

	// Route returns the named route value. Values are stringified
	// during key derivation.
	Route(name string) (any, bool)

	// User returns the requester's principal, never nil.
	User() Principal
}

// anonymous is the unauthenticated principal.
type anonymous struct{}

func (anonymous) Authenticated() bool { return false }
func (anonymous) Name() string        { return "" }

// Anonymous returns the unauthenticated principal. Its name is empty.
func Anonymous() Principal {
	return anonymous{}
}

// RequestContext adapts an *http.Request, a route-value map, and a Principal
// to the Context interface. It is the reference implementation for HTTP
// handlers.
type RequestContext struct {
	req       *http.Request
	query     url.Values
	queryKeys []string // sorted, for deterministic fold-matching
	routes    map[string]any
	user      Principal
}

// RequestOption configures a RequestContext.
type RequestOption func(*RequestContext)

// WithRouteValues attaches route values (e.g. path parameters) to the context.
func WithRouteValues(routes map[string]any) RequestOption {
	return func(c *RequestContext) {
		c.routes = routes
	}
}

// WithUser attaches the authenticated principal to the context.
func WithUser(user Principal) RequestOption {
	return func(c *RequestContext) {
		if user != nil {
			c.user = user
		}
	}
}

// NewRequestContext builds a Context from an HTTP request. The query string
// is parsed once at construction.
func NewRequestContext(r *http.Request, opts ...RequestOption) *RequestContext {
	c := &RequestContext{
		req:  r,
		user: Anonymous(),
	}
	if r.URL != nil {
		c.query = r.URL.Query()
		c.queryKeys = make([]string, 0, len(c.query))
		for k := range c.query {
			c.queryKeys = append(c.queryKeys, k)
		}
		sort.Strings(c.queryKeys)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cookie returns the value of the named request cookie.
func (c *RequestContext) Cookie(name string) (string, bool) {
	ck, err := c.req.Cookie(name)
	if err != nil {
		return "", false
	}
	return ck.Value, true
}

// Header returns the first value of the named request header.
func (c *RequestContext) Header(name string) (string, bool) {
	vs, ok := c.req.Header[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Query returns the first value of the named query parameter. The name is
// matched case-insensitively against the parsed query string. An exact-name
// match wins over case-variant duplicates; remaining candidates resolve in
// sorted key order, so equal requests always yield equal values.
func (c *RequestContext) Query(name string) (string, bool) {
	if vs, ok := c.query[name]; ok && len(vs) > 0 {
		return vs[0], true
	}
	for _, k := range c.queryKeys {
		if k == name {
			continue
		}
		if vs := c.query[k]; strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0], true
		}
	}
	return "", false
}

// Route returns the named route value.
func (c *RequestContext) Route(name string) (any, bool) {
	v, ok := c.routes[name]
	return v, ok
}

// User returns the request principal, Anonymous if none was attached.
func (c *RequestContext) User() Principal {
	return c.user
}

// Ensure RequestContext implements Context
var _ Context = (*RequestContext)(nil)

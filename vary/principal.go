package vary

import (
	"github.com/golang-jwt/jwt/v5"
)

// DefaultNameClaim is the claim read for the principal name when none is
// configured.
const DefaultNameClaim = "sub"

// ClaimsPrincipal is a Principal backed by JWT claims. It reads the display
// name from a single claim; a missing or non-string claim yields an
// unauthenticated principal.
type ClaimsPrincipal struct {
	name string
}

// NewClaimsPrincipal builds a principal from token claims. nameClaim selects
// the claim holding the display name; empty means DefaultNameClaim.
func NewClaimsPrincipal(claims jwt.MapClaims, nameClaim string) *ClaimsPrincipal {
	if nameClaim == "" {
		nameClaim = DefaultNameClaim
	}
	name, _ := claims[nameClaim].(string)
	return &ClaimsPrincipal{name: name}
}

// Authenticated reports whether a non-empty name claim was present.
func (p *ClaimsPrincipal) Authenticated() bool {
	return p.name != ""
}

// Name returns the principal's display name, empty when unauthenticated.
func (p *ClaimsPrincipal) Name() string {
	return p.name
}

// Ensure ClaimsPrincipal implements Principal
var _ Principal = (*ClaimsPrincipal)(nil)

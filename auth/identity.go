package auth

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Role is the kind of operator a credential belongs to.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCompany Role = "company"
)

// Identity is the verified principal of a request. It is built once by the
// verifier and never mutated afterwards.
type Identity struct {
	SubjectID string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	// ScopeKey is the tenant a company operator is confined to: the
	// companyId claim, or the subject id when that claim is absent.
	ScopeKey string `json:"-"`
	// TokenID identifies the credential for revocation.
	TokenID string `json:"-"`
	// ExpiresAt is when the credential stops being accepted.
	ExpiresAt time.Time `json:"-"`
}

// IsAdmin reports whether the identity may see every tenant.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// IsCompany reports whether the identity is confined to ScopeKey.
func (i Identity) IsCompany() bool { return i.Role == RoleCompany }

// ContextKey is the gin context key the auth middleware stores the
// identity under.
const ContextKey = "identity"

type ctxKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored on ctx. It understands both gin
// contexts populated by the auth middleware and plain contexts built with
// WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	if c, ok := ctx.(*gin.Context); ok {
		if v, exists := c.Get(ContextKey); exists {
			id, ok := v.(Identity)
			return id, ok
		}
		if c.Request == nil {
			return Identity{}, false
		}
		ctx = c.Request.Context()
	}
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

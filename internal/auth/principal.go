package auth

import (
	"context"

	"kantin/internal/models"
)

// Principal represents the authenticated caller of a request.
type Principal struct {
	UserID   int64
	Name     string
	Role     models.Role
	Approved bool // vendors only; false for everyone else
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

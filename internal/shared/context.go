package shared

import "context"

// Principal identifies the authenticated caller for the lifetime of a request.
type Principal struct {
	UserID int64
}

type principalContextKey struct{}

// ContextWithPrincipal stores the caller identity in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the caller identity from context.
// Returns nil on public routes and when authentication is disabled.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

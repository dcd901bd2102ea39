package identity

import "context"

// Directory is the slice of the rights store the resolver needs to map
// external subjects to internal users.
type Directory interface {
	UserIDByExternalID(ctx context.Context, externalID string) (int64, error)
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	IsAdminByExternalID(ctx context.Context, externalID string) (bool, error)
}

// Resolver turns bearer tokens into external identities and external
// identities into internal user records.
type Resolver struct {
	provider  Provider
	directory Directory
}

// NewResolver constructs a resolver.
func NewResolver(provider Provider, directory Directory) *Resolver {
	return &Resolver{provider: provider, directory: directory}
}

// Resolve exchanges a token with the provider.
func (r *Resolver) Resolve(ctx context.Context, token string) (Identity, error) {
	return r.provider.Exchange(ctx, token)
}

// LookupUser maps an external subject to the internal user id.
func (r *Resolver) LookupUser(ctx context.Context, externalID string) (int64, error) {
	return r.directory.UserIDByExternalID(ctx, externalID)
}

// IsAdmin reports the global admin bit for an internal user.
func (r *Resolver) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return r.directory.IsAdmin(ctx, userID)
}

// IsAdminByExternalID reports the global admin bit for an external subject.
func (r *Resolver) IsAdminByExternalID(ctx context.Context, externalID string) (bool, error) {
	return r.directory.IsAdminByExternalID(ctx, externalID)
}

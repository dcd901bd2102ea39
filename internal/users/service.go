// Package users handles account registration against the identity provider.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/bastionworks/bastion/internal/identity"
	"github.com/bastionworks/bastion/internal/shared"
)

// RoleAdmin marks a registration as a global admin account.
const RoleAdmin = "admin"

// Store is the slice of the rights store registration needs.
type Store interface {
	CreateUser(ctx context.Context, externalID string, isAdmin bool) (int64, error)
}

// Service registers users by exchanging their token with the provider.
type Service struct {
	provider identity.Provider
	store    Store
}

// NewService constructs a Service.
func NewService(provider identity.Provider, store Store) *Service {
	return &Service{provider: provider, store: store}
}

// Register exchanges the token and creates the internal user record.
// The account is immutable afterwards; re-registering the same external
// identity fails with a duplicate-identity error.
func (s *Service) Register(ctx context.Context, token, role string) (int64, error) {
	id, err := s.provider.Exchange(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrTokenRejected) {
			return 0, shared.ErrInvalidToken
		}
		return 0, fmt.Errorf("users: exchange token: %w", err)
	}
	return s.store.CreateUser(ctx, id.ExternalID, role == RoleAdmin)
}

// Package grants implements the rights-granting protocol: the algorithm
// behind changing another user's rights on a project.
package grants

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bastionworks/bastion/internal/identity"
	"github.com/bastionworks/bastion/internal/rights"
	"github.com/bastionworks/bastion/internal/shared"
)

// Store is the slice of the rights store the protocol needs.
type Store interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
	AccessByProjectName(ctx context.Context, userID int64, name string) (*rights.Access, error)
	ProjectIDByName(ctx context.Context, name string) (int64, error)
	HasAccess(ctx context.Context, userID, projectID int64) (bool, error)
	CreateAccess(ctx context.Context, projectID, userID int64, r rights.Rights) error
	UpdateAccess(ctx context.Context, userID, projectID int64, r rights.Rights) (bool, error)
}

// Resolver resolves the target user's token and admin standing.
type Resolver interface {
	Resolve(ctx context.Context, token string) (identity.Identity, error)
	LookupUser(ctx context.Context, externalID string) (int64, error)
	IsAdminByExternalID(ctx context.Context, externalID string) (bool, error)
}

// Service runs the grant protocol.
type Service struct {
	store    Store
	resolver Resolver
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(store Store, resolver Resolver, logger *slog.Logger) *Service {
	return &Service{store: store, resolver: resolver, logger: logger}
}

// Grant replaces the target user's rights triple on the named project.
//
// The grantor must be an admin or hold an access row with the grant bit;
// the target authenticates out-of-band and is identified by their own
// token; admins can never be targets; and no requested bit may exceed the
// grantor's own effective rights. The requested triple fully replaces the
// stored one, it is never merged.
func (s *Service) Grant(ctx context.Context, grantorID int64, projectName, targetToken string, requested rights.Rights) error {
	grantorAdmin, err := s.store.IsAdmin(ctx, grantorID)
	if err != nil {
		return fmt.Errorf("grants: grantor role: %w", err)
	}

	// Standing: an access row, or the admin override. Strangers get
	// project-not-found whether or not the project exists.
	var effective rights.Rights
	var projectID int64
	access, err := s.store.AccessByProjectName(ctx, grantorID, projectName)
	switch {
	case err == nil:
		effective = access.Rights
		projectID = access.ProjectID
	case errors.Is(err, rights.ErrNoAccess):
		if !grantorAdmin {
			return shared.ErrProjectNotFound
		}
		projectID, err = s.store.ProjectIDByName(ctx, projectName)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("grants: grantor access: %w", err)
	}
	if grantorAdmin {
		effective = rights.FullRights()
	}

	if !effective.Grant {
		return shared.ErrNotEnoughRights
	}

	targetIdentity, err := s.resolver.Resolve(ctx, targetToken)
	if err != nil {
		if errors.Is(err, identity.ErrTokenRejected) {
			return shared.ErrUserNotFound
		}
		return fmt.Errorf("grants: resolve target: %w", err)
	}
	targetID, err := s.resolver.LookupUser(ctx, targetIdentity.ExternalID)
	if err != nil {
		return err
	}

	targetAdmin, err := s.resolver.IsAdminByExternalID(ctx, targetIdentity.ExternalID)
	if err != nil {
		return fmt.Errorf("grants: target role: %w", err)
	}
	if targetAdmin {
		return shared.ErrAdminTarget
	}

	if !effective.Covers(requested) {
		return shared.ErrNotEnoughRights
	}

	// Provisioning: CreateAccess is insert-if-absent, so the existence
	// check cannot race a concurrent grant into a duplicate row.
	hasRow, err := s.store.HasAccess(ctx, targetID, projectID)
	if err != nil {
		return fmt.Errorf("grants: check target access: %w", err)
	}
	if !hasRow {
		if err := s.store.CreateAccess(ctx, projectID, targetID, requested); err != nil {
			return fmt.Errorf("grants: provision target access: %w", err)
		}
	}

	ok, err := s.store.UpdateAccess(ctx, targetID, projectID, requested)
	if err != nil {
		return fmt.Errorf("grants: update target access: %w", err)
	}
	if !ok {
		return shared.ErrUpdateRights
	}

	if s.logger != nil {
		s.logger.Debug("rights granted",
			slog.Int64("grantor_id", grantorID),
			slog.Int64("target_id", targetID),
			slog.Int64("project_id", projectID),
			slog.Bool("read", requested.Read),
			slog.Bool("write", requested.Write),
			slog.Bool("grant", requested.Grant))
	}
	return nil
}

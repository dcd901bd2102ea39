// Package projects owns project creation, renaming and per-caller project
// info: the registry side of the access-control core.
package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/bastionworks/bastion/internal/rights"
	"github.com/bastionworks/bastion/internal/shared"
)

// Store is the slice of the rights store the registry needs.
type Store interface {
	CreateProjectWithOwner(ctx context.Context, name string, ownerID int64) (int64, error)
	ProjectIDByName(ctx context.Context, name string) (int64, error)
	AccessByProjectName(ctx context.Context, userID int64, name string) (*rights.Access, error)
	RenameProject(ctx context.Context, projectID int64, newName string) error
	RenameProjectByName(ctx context.Context, oldName, newName string) error
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Service implements the project registry rules.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create registers a project and grants the creator full rights.
func (s *Service) Create(ctx context.Context, actorID int64, name string) (int64, error) {
	id, err := s.store.CreateProjectWithOwner(ctx, name, actorID)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Rename changes a project's name. Admins rename unconditionally by name;
// everyone else needs an access row with the write bit. A caller with no
// row learns nothing about the project's existence.
func (s *Service) Rename(ctx context.Context, actorID int64, oldName, newName string) error {
	isAdmin, err := s.store.IsAdmin(ctx, actorID)
	if err != nil {
		return fmt.Errorf("projects: actor role: %w", err)
	}
	if isAdmin {
		return s.store.RenameProjectByName(ctx, oldName, newName)
	}

	access, err := s.store.AccessByProjectName(ctx, actorID, oldName)
	if err != nil {
		if errors.Is(err, rights.ErrNoAccess) {
			return shared.ErrProjectNotFound
		}
		return fmt.Errorf("projects: fetch access: %w", err)
	}
	if !access.Write {
		return shared.ErrNotEnoughRights
	}
	return s.store.RenameProject(ctx, access.ProjectID, newName)
}

// Info returns the project name and the caller's effective rights on it.
// Admins see any project with implicit full rights.
func (s *Service) Info(ctx context.Context, actorID int64, name string) (ProjectInfoResponse, error) {
	isAdmin, err := s.store.IsAdmin(ctx, actorID)
	if err != nil {
		return ProjectInfoResponse{}, fmt.Errorf("projects: actor role: %w", err)
	}
	normalized := rights.NormalizeName(name)
	if isAdmin {
		if _, err := s.store.ProjectIDByName(ctx, normalized); err != nil {
			return ProjectInfoResponse{}, err
		}
		full := rights.FullRights()
		return ProjectInfoResponse{Name: normalized, Grant: full.Grant, Read: full.Read, Write: full.Write}, nil
	}

	access, err := s.store.AccessByProjectName(ctx, actorID, normalized)
	if err != nil {
		if errors.Is(err, rights.ErrNoAccess) {
			return ProjectInfoResponse{}, shared.ErrProjectNotFound
		}
		return ProjectInfoResponse{}, fmt.Errorf("projects: fetch access: %w", err)
	}
	return ProjectInfoResponse{Name: normalized, Grant: access.Grant, Read: access.Read, Write: access.Write}, nil
}

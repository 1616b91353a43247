package service

import (
	"context"
	"strings"

	"github.com/minato/dormgate/internal/domain"
)

// DirectoryStore mutates the manager registrations behind recipient routing.
type DirectoryStore interface {
	AssignManager(ctx context.Context, location, managerID string) error
	RemoveManager(ctx context.Context, location, managerID string) error
}

// DirectoryService administers which managers receive notifications for a
// location. Mutations are admin-only.
type DirectoryService struct {
	store DirectoryStore
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(store DirectoryStore) *DirectoryService {
	return &DirectoryService{store: store}
}

// AssignManager registers a manager for a location. Idempotent.
func (s *DirectoryService) AssignManager(ctx context.Context, actor domain.Actor, location, managerID string) error {
	if !actor.CanManageDirectory() {
		return domain.ErrForbidden
	}
	location, managerID, err := normalizeAssignment(location, managerID)
	if err != nil {
		return err
	}
	return s.store.AssignManager(ctx, location, managerID)
}

// RemoveManager unregisters a manager from a location.
func (s *DirectoryService) RemoveManager(ctx context.Context, actor domain.Actor, location, managerID string) error {
	if !actor.CanManageDirectory() {
		return domain.ErrForbidden
	}
	location, managerID, err := normalizeAssignment(location, managerID)
	if err != nil {
		return err
	}
	return s.store.RemoveManager(ctx, location, managerID)
}

func normalizeAssignment(location, managerID string) (string, string, error) {
	location = strings.TrimSpace(location)
	managerID = strings.TrimSpace(managerID)
	if location == "" {
		return "", "", &domain.ValidationError{Field: "location", Message: "is required"}
	}
	if managerID == "" {
		return "", "", &domain.ValidationError{Field: "manager_id", Message: "is required"}
	}
	return location, managerID, nil
}

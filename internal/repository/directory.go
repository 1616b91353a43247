package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DirectoryRepository resolves the recipients of an access event: the badge
// subject plus every manager registered for the event's location. Recipient
// routing is a policy decision, so callers depend on the service-level
// Directory interface rather than this type.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository creates a new DirectoryRepository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// ResolveRecipients returns the deduplicated recipient set for an event.
func (r *DirectoryRepository) ResolveRecipients(ctx context.Context, location, subjectID string) ([]string, error) {
	managers := []string{}
	err := r.db.SelectContext(ctx, &managers,
		`SELECT manager_id FROM location_managers WHERE location = $1 ORDER BY manager_id`, location)
	if err != nil {
		return nil, fmt.Errorf("resolve managers for %s: %w", location, err)
	}

	recipients := make([]string, 0, len(managers)+1)
	seen := map[string]struct{}{subjectID: {}}
	recipients = append(recipients, subjectID)
	for _, m := range managers {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		recipients = append(recipients, m)
	}
	return recipients, nil
}

// AssignManager registers a manager for a location. Idempotent.
func (r *DirectoryRepository) AssignManager(ctx context.Context, location, managerID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO location_managers (location, manager_id)
		 VALUES ($1, $2)
		 ON CONFLICT (location, manager_id) DO NOTHING`, location, managerID)
	if err != nil {
		return fmt.Errorf("assign manager %s to %s: %w", managerID, location, err)
	}
	return nil
}

// RemoveManager unregisters a manager from a location.
func (r *DirectoryRepository) RemoveManager(ctx context.Context, location, managerID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM location_managers WHERE location = $1 AND manager_id = $2`, location, managerID)
	if err != nil {
		return fmt.Errorf("remove manager %s from %s: %w", managerID, location, err)
	}
	return nil
}

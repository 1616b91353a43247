package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/minato/dormgate/internal/domain"
)

// EventRepository persists access events as an append-only log.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert appends an event. Inserting an id that already exists is a no-op
// that returns the previously stored row, so redelivery of the same event
// is safe.
func (r *EventRepository) Insert(ctx context.Context, ev domain.AccessEvent) (*domain.AccessEvent, error) {
	var stored domain.AccessEvent
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO access_events (id, subject_id, location, outcome, denial_reason, reader_id, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING id, subject_id, location, outcome, denial_reason, reader_id, occurred_at`,
		ev.ID, ev.SubjectID, ev.Location, ev.Outcome, ev.DenialReason, ev.ReaderID, ev.OccurredAt,
	).StructScan(&stored)
	if err == nil {
		return &stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("insert event %s: %w", ev.ID, err)
	}

	// Conflict: the event was ingested before. Return the stored record.
	err = r.db.GetContext(ctx, &stored,
		`SELECT id, subject_id, location, outcome, denial_reason, reader_id, occurred_at
		 FROM access_events WHERE id = $1`, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("find event %s: %w", ev.ID, err)
	}
	return &stored, nil
}

// ListRecent returns events most-recent-first, limited to limit, optionally
// narrowed by filter. Failures are reported as domain.ErrUnavailable so the
// query surface maps them to a 503 rather than a generic internal error.
func (r *EventRepository) ListRecent(ctx context.Context, filter domain.EventFilter, limit int) ([]domain.AccessEvent, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, clause+"$"+strconv.Itoa(len(args)))
	}

	if filter.SubjectID != "" {
		add("subject_id = ", filter.SubjectID)
	}
	if filter.Location != "" {
		add("location = ", filter.Location)
	}
	if filter.Outcome != "" {
		add("outcome = ", filter.Outcome)
	}
	if !filter.Since.IsZero() {
		add("occurred_at >= ", filter.Since)
	}

	q := `SELECT id, subject_id, location, outcome, denial_reason, reader_id, occurred_at
	      FROM access_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d", len(args))

	events := []domain.AccessEvent{}
	if err := r.db.SelectContext(ctx, &events, q, args...); err != nil {
		return nil, fmt.Errorf("%w: list events: %v", domain.ErrUnavailable, err)
	}
	return events, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minato/dormgate/internal/domain"
)

// EventStore defines the event log access interface consumed by EventService.
type EventStore interface {
	Insert(ctx context.Context, ev domain.AccessEvent) (*domain.AccessEvent, error)
	ListRecent(ctx context.Context, filter domain.EventFilter, limit int) ([]domain.AccessEvent, error)
}

// NotificationCreator stores derived notifications. Insert reports false when
// a notification for the same (event, recipient) pair already exists.
type NotificationCreator interface {
	Insert(ctx context.Context, n domain.Notification) (bool, error)
}

// Directory resolves the recipients entitled to a notification for an event.
// The routing rule is a pluggable policy; the default implementation returns
// the badge subject plus the managers registered for the location.
type Directory interface {
	ResolveRecipients(ctx context.Context, location, subjectID string) ([]string, error)
}

// UnreadNotifier signals that a recipient's unread count may have changed.
// Implementations must never block the caller.
type UnreadNotifier interface {
	UnreadChanged(ctx context.Context, recipientID string)
}

// IngestInput is a request to append one access event. ID and OccurredAt are
// assigned at ingestion when absent.
type IngestInput struct {
	ID           string
	SubjectID    string
	Location     string
	Outcome      domain.Outcome
	DenialReason *domain.DenialReason
	ReaderID     *string
	OccurredAt   time.Time
}

// EventService appends access events, derives notifications from them, and
// serves the administrative event log.
type EventService struct {
	events        EventStore
	notifications NotificationCreator
	directory     Directory
	notifier      UnreadNotifier
	maxListLimit  int
}

// NewEventService creates a new EventService. maxListLimit caps ListEvents
// page sizes and is used as the default when no limit is given.
func NewEventService(events EventStore, notifications NotificationCreator, directory Directory, notifier UnreadNotifier, maxListLimit int) *EventService {
	return &EventService{
		events:        events,
		notifications: notifications,
		directory:     directory,
		notifier:      notifier,
		maxListLimit:  maxListLimit,
	}
}

// Ingest validates and appends one access event, then fans out notifications
// to the event's recipients. Fan-out failures are degraded mode: the event is
// already stored, so they are logged as delivery warnings and never fail the
// call. Re-ingesting an event id is idempotent end to end.
func (s *EventService) Ingest(ctx context.Context, actor domain.Actor, in IngestInput) (*domain.AccessEvent, error) {
	if !actor.CanIngest() {
		return nil, domain.ErrForbidden
	}

	ev, err := buildEvent(in)
	if err != nil {
		return nil, err
	}

	stored, err := s.events.Insert(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}

	s.fanOut(ctx, stored)
	return stored, nil
}

// ListEvents returns the event log most-recent-first, limited to limit
// (clamped to the configured maximum; non-positive means the maximum).
func (s *EventService) ListEvents(ctx context.Context, actor domain.Actor, filter domain.EventFilter, limit int) ([]domain.AccessEvent, error) {
	if !actor.CanReadEventLog() {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 || limit > s.maxListLimit {
		limit = s.maxListLimit
	}
	return s.events.ListRecent(ctx, filter, limit)
}

// fanOut derives one notification per recipient and signals unread changes.
func (s *EventService) fanOut(ctx context.Context, ev *domain.AccessEvent) {
	recipients, err := s.directory.ResolveRecipients(ctx, ev.Location, ev.SubjectID)
	if err != nil {
		slog.Warn("delivery warning: recipient resolution failed",
			"event_id", ev.ID,
			"location", ev.Location,
			"error", err,
		)
		return
	}

	for _, recipient := range recipients {
		created, err := s.notifications.Insert(ctx, domain.Notification{
			ID:          uuid.NewString(),
			EventID:     ev.ID,
			RecipientID: recipient,
			Payload:     notificationPayload(ev),
			CreatedAt:   ev.OccurredAt,
		})
		if err != nil {
			slog.Warn("delivery warning: notification create failed",
				"event_id", ev.ID,
				"recipient_id", recipient,
				"error", err,
			)
			continue
		}
		if created {
			s.notifier.UnreadChanged(ctx, recipient)
		}
	}
}

func buildEvent(in IngestInput) (domain.AccessEvent, error) {
	subjectID := strings.TrimSpace(in.SubjectID)
	location := strings.TrimSpace(in.Location)

	if subjectID == "" {
		return domain.AccessEvent{}, &domain.ValidationError{Field: "subject_id", Message: "is required"}
	}
	if location == "" {
		return domain.AccessEvent{}, &domain.ValidationError{Field: "location", Message: "is required"}
	}
	if !in.Outcome.Valid() {
		return domain.AccessEvent{}, &domain.ValidationError{Field: "outcome", Message: "must be granted or denied"}
	}
	if in.DenialReason != nil && in.Outcome != domain.OutcomeDenied {
		return domain.AccessEvent{}, &domain.ValidationError{Field: "denial_reason", Message: "only allowed on denied events"}
	}

	ev := domain.AccessEvent{
		ID:           in.ID,
		SubjectID:    subjectID,
		Location:     location,
		Outcome:      in.Outcome,
		DenialReason: in.DenialReason,
		ReaderID:     in.ReaderID,
		OccurredAt:   in.OccurredAt.UTC(),
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if in.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	return ev, nil
}

// notificationPayload derives the human-readable message for an event. It is
// a pure function of the event so redelivery produces identical payloads.
func notificationPayload(ev *domain.AccessEvent) string {
	when := ev.OccurredAt.Format("Jan 2 15:04")
	switch ev.Outcome {
	case domain.OutcomeDenied:
		msg := fmt.Sprintf("Access denied at %s, %s", ev.Location, when)
		if ev.DenialReason != nil {
			msg += " (" + string(*ev.DenialReason) + ")"
		}
		return msg
	default:
		return fmt.Sprintf("Access granted at %s, %s", ev.Location, when)
	}
}

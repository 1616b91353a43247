package service

import (
	"context"
	"fmt"

	"github.com/minato/dormgate/internal/domain"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationStore defines the notification data access interface consumed
// by NotificationService.
type NotificationStore interface {
	ListFor(ctx context.Context, recipientID string, opts domain.NotificationListOptions) ([]domain.Notification, string, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	UnreadCount(ctx context.Context, recipientID string) (int, error)
}

// NotificationService serves a recipient's notifications and read state.
// All operations are scoped to the calling actor: a caller can only ever see
// or mutate its own notifications.
type NotificationService struct {
	store    NotificationStore
	notifier UnreadNotifier
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store NotificationStore, notifier UnreadNotifier) *NotificationService {
	return &NotificationService{store: store, notifier: notifier}
}

// List returns the actor's notifications most-recent-first with an opaque
// continuation cursor.
func (s *NotificationService) List(ctx context.Context, actor domain.Actor, opts domain.NotificationListOptions) ([]domain.Notification, string, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultNotificationLimit
	}
	if opts.Limit > maxNotificationLimit {
		opts.Limit = maxNotificationLimit
	}
	return s.store.ListFor(ctx, actor.ID, opts)
}

// MarkRead transitions one of the actor's notifications to read. Idempotent:
// marking an already-read notification succeeds without change.
func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.store.MarkRead(ctx, id, actor.ID); err != nil {
		return err
	}
	s.notifier.UnreadChanged(ctx, actor.ID)
	return nil
}

// UnreadCount returns the actor's authoritative unread count. Clients use it
// on reconnect to reconcile pushes missed while disconnected.
func (s *NotificationService) UnreadCount(ctx context.Context, actor domain.Actor) (int, error) {
	count, err := s.store.UnreadCount(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return count, nil
}

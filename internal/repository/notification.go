package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/minato/dormgate/internal/domain"
)

// NotificationRepository handles notification data access.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert stores a notification. Returns false without error when a
// notification for the same (event, recipient) pair already exists, which
// makes at-least-once redelivery of the derivation step safe.
func (r *NotificationRepository) Insert(ctx context.Context, n domain.Notification) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, event_id, recipient_id, payload, read, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5)
		 ON CONFLICT (event_id, recipient_id) DO NOTHING`,
		n.ID, n.EventID, n.RecipientID, n.Payload, n.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert notification for event %s: %w", n.EventID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert notification for event %s: %w", n.EventID, err)
	}
	return rows > 0, nil
}

// ListFor returns a recipient's notifications most-recent-first. The returned
// cursor is non-empty when more rows may follow.
func (r *NotificationRepository) ListFor(ctx context.Context, recipientID string, opts domain.NotificationListOptions) ([]domain.Notification, string, error) {
	args := []any{recipientID}
	q := `SELECT id, event_id, recipient_id, payload, read, created_at
	      FROM notifications WHERE recipient_id = $1`

	if opts.UnreadOnly {
		q += " AND NOT read"
	}
	if opts.Cursor != "" {
		createdAt, id, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, "", err
		}
		args = append(args, createdAt, id)
		q += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", len(args)-1, len(args))
	}

	args = append(args, opts.Limit+1)
	q += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args))

	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, q, args...); err != nil {
		return nil, "", fmt.Errorf("list notifications for %s: %w", recipientID, err)
	}

	next := ""
	if len(notifications) > opts.Limit {
		notifications = notifications[:opts.Limit]
		last := notifications[len(notifications)-1]
		next = encodeCursor(last.CreatedAt, last.ID)
	}
	return notifications, next, nil
}

// MarkRead transitions a notification to read. Marking an already-read
// notification succeeds without change. Returns domain.ErrNotFound for an
// unknown id and domain.ErrForbidden when the notification belongs to a
// different recipient.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	defer tx.Rollback()

	var row struct {
		RecipientID string `db:"recipient_id"`
		Read        bool   `db:"read"`
	}
	err = tx.GetContext(ctx, &row,
		`SELECT recipient_id, read FROM notifications WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	if row.RecipientID != recipientID {
		return domain.ErrForbidden
	}
	if row.Read {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	return tx.Commit()
}

// UnreadCount returns the number of unread notifications for a recipient,
// exact at the instant of the query.
func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT count(*) FROM notifications WHERE recipient_id = $1 AND NOT read`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("unread count for %s: %w", recipientID, err)
	}
	return count, nil
}

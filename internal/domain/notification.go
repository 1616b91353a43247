package domain

import "time"

// Notification is an in-app notification derived from one access event for
// one recipient. The (EventID, RecipientID) pair is unique: redelivering an
// event never produces a duplicate.
type Notification struct {
	ID          string    `json:"id" db:"id"`
	EventID     string    `json:"event_id" db:"event_id"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Payload     string    `json:"payload" db:"payload"`
	Read        bool      `json:"read" db:"read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// NotificationListOptions narrows a notification list query.
type NotificationListOptions struct {
	UnreadOnly bool
	Limit      int
	Cursor     string
}

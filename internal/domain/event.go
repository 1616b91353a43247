package domain

import "time"

// Outcome is the decision recorded for a badge read.
type Outcome string

const (
	OutcomeGranted Outcome = "granted"
	OutcomeDenied  Outcome = "denied"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	return o == OutcomeGranted || o == OutcomeDenied
}

// DenialReason is an optional machine-readable reason on denied events.
type DenialReason string

const (
	DenialNoPermission DenialReason = "no_permission"
	DenialCardInactive DenialReason = "card_inactive"
	DenialCardExpired  DenialReason = "card_expired"
	DenialOutsideHours DenialReason = "outside_hours"
)

// AccessEvent is one badge-read access attempt. Events are append-only:
// once stored they are never edited or deleted by the service.
type AccessEvent struct {
	ID           string        `json:"id" db:"id"`
	SubjectID    string        `json:"subject_id" db:"subject_id"`
	Location     string        `json:"location" db:"location"`
	Outcome      Outcome       `json:"outcome" db:"outcome"`
	DenialReason *DenialReason `json:"denial_reason,omitempty" db:"denial_reason"`
	ReaderID     *string       `json:"reader_id,omitempty" db:"reader_id"`
	OccurredAt   time.Time     `json:"occurred_at" db:"occurred_at"`
}

// EventFilter narrows an event log query. Zero values mean "no filter".
type EventFilter struct {
	SubjectID string
	Location  string
	Outcome   Outcome
	Since     time.Time
}

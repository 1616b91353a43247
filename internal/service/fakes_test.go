package service

import (
	"context"
	"sort"
	"sync"

	"github.com/minato/dormgate/internal/domain"
)

type fakeEventStore struct {
	mu      sync.Mutex
	events  map[string]domain.AccessEvent
	listErr error
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: map[string]domain.AccessEvent{}}
}

func (f *fakeEventStore) Insert(_ context.Context, ev domain.AccessEvent) (*domain.AccessEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if stored, ok := f.events[ev.ID]; ok {
		return &stored, nil
	}
	f.events[ev.ID] = ev
	return &ev, nil
}

func (f *fakeEventStore) ListRecent(_ context.Context, filter domain.EventFilter, limit int) ([]domain.AccessEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []domain.AccessEvent{}
	for _, ev := range f.events {
		if filter.SubjectID != "" && ev.SubjectID != filter.SubjectID {
			continue
		}
		if filter.Location != "" && ev.Location != filter.Location {
			continue
		}
		if filter.Outcome != "" && ev.Outcome != filter.Outcome {
			continue
		}
		if !filter.Since.IsZero() && ev.OccurredAt.Before(filter.Since) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeNotificationStore mirrors the SQL store's behavior: a unique
// (event_id, recipient_id) key, recipient-scoped reads, idempotent markRead.
type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []domain.Notification
	insertErr     error
}

func (f *fakeNotificationStore) Insert(_ context.Context, n domain.Notification) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.notifications {
		if existing.EventID == n.EventID && existing.RecipientID == n.RecipientID {
			return false, nil
		}
	}
	f.notifications = append(f.notifications, n)
	return true, nil
}

func (f *fakeNotificationStore) ListFor(_ context.Context, recipientID string, opts domain.NotificationListOptions) ([]domain.Notification, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []domain.Notification{}
	for _, n := range f.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if opts.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	if opts.Cursor != "" {
		idx := len(out)
		for i, n := range out {
			if n.ID == opts.Cursor {
				idx = i + 1
				break
			}
		}
		out = out[idx:]
	}

	next := ""
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notifications {
		if n.ID != id {
			continue
		}
		if n.RecipientID != recipientID {
			return domain.ErrForbidden
		}
		f.notifications[i].Read = true
		return nil
	}
	return domain.ErrNotFound
}

func (f *fakeNotificationStore) UnreadCount(_ context.Context, recipientID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationStore) forRecipient(recipientID string) []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Notification{}
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out
}

type fakeDirectory struct {
	mu         sync.Mutex
	recipients map[string][]string // location -> manager ids
	err        error
}

func (f *fakeDirectory) ResolveRecipients(_ context.Context, location, subjectID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	recipients := []string{subjectID}
	for _, m := range f.recipients[location] {
		if m != subjectID {
			recipients = append(recipients, m)
		}
	}
	return recipients, nil
}

func (f *fakeDirectory) AssignManager(_ context.Context, location, managerID string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.recipients[location] {
		if m == managerID {
			return nil
		}
	}
	f.recipients[location] = append(f.recipients[location], managerID)
	return nil
}

func (f *fakeDirectory) RemoveManager(_ context.Context, location, managerID string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.recipients[location][:0]
	for _, m := range f.recipients[location] {
		if m != managerID {
			kept = append(kept, m)
		}
	}
	f.recipients[location] = kept
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	signals []string
}

func (f *fakeNotifier) UnreadChanged(_ context.Context, recipientID string) {
	f.mu.Lock()
	f.signals = append(f.signals, recipientID)
	f.mu.Unlock()
}

func (f *fakeNotifier) count(recipientID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.signals {
		if s == recipientID {
			n++
		}
	}
	return n
}

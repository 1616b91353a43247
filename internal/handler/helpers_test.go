package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/minato/dormgate/internal/domain"
	"github.com/minato/dormgate/internal/service"
	"github.com/minato/dormgate/internal/stream"
)

type memEventStore struct {
	mu     sync.Mutex
	events map[string]domain.AccessEvent
}

func (s *memEventStore) Insert(_ context.Context, ev domain.AccessEvent) (*domain.AccessEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.events[ev.ID]; ok {
		return &stored, nil
	}
	s.events[ev.ID] = ev
	return &ev, nil
}

func (s *memEventStore) ListRecent(_ context.Context, filter domain.EventFilter, limit int) ([]domain.AccessEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.AccessEvent{}
	for _, ev := range s.events {
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
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memNotificationStore struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (s *memNotificationStore) Insert(_ context.Context, n domain.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.notifications {
		if existing.EventID == n.EventID && existing.RecipientID == n.RecipientID {
			return false, nil
		}
	}
	s.notifications = append(s.notifications, n)
	return true, nil
}

func (s *memNotificationStore) ListFor(_ context.Context, recipientID string, opts domain.NotificationListOptions) ([]domain.Notification, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Notification{}
	for _, n := range s.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if opts.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, "", nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, id, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID != id {
			continue
		}
		if n.RecipientID != recipientID {
			return domain.ErrForbidden
		}
		s.notifications[i].Read = true
		return nil
	}
	return domain.ErrNotFound
}

func (s *memNotificationStore) UnreadCount(_ context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

type memDirectory struct {
	mu       sync.Mutex
	managers map[string][]string
}

func (d *memDirectory) ResolveRecipients(_ context.Context, location, subjectID string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	recipients := []string{subjectID}
	for _, m := range d.managers[location] {
		if m != subjectID {
			recipients = append(recipients, m)
		}
	}
	return recipients, nil
}

func (d *memDirectory) AssignManager(_ context.Context, location, managerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.managers[location] {
		if m == managerID {
			return nil
		}
	}
	d.managers[location] = append(d.managers[location], managerID)
	return nil
}

func (d *memDirectory) RemoveManager(_ context.Context, location, managerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.managers[location][:0]
	for _, m := range d.managers[location] {
		if m != managerID {
			kept = append(kept, m)
		}
	}
	d.managers[location] = kept
	return nil
}

type testAPI struct {
	e             *echo.Echo
	hub           *stream.Hub
	tokens        *service.TokenService
	events        *memEventStore
	notifications *memNotificationStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	events := &memEventStore{events: map[string]domain.AccessEvent{}}
	notifications := &memNotificationStore{}
	directory := &memDirectory{managers: map[string][]string{"R204": {"m1"}}}
	hub := stream.NewHub()
	tokens := service.NewTokenService("test-secret", time.Minute)

	e := echo.New()
	Register(e, RouterConfig{
		Events:          service.NewEventService(events, notifications, directory, hub, 100),
		Notifications:   service.NewNotificationService(notifications, hub),
		Directory:       service.NewDirectoryService(directory),
		Tokens:          tokens,
		Hub:             hub,
		BootstrapSecret: "bootstrap",
		FrontendURL:     "http://localhost:5173",
	})

	return &testAPI{e: e, hub: hub, tokens: tokens, events: events, notifications: notifications}
}

func (a *testAPI) token(t *testing.T, actor domain.Actor) string {
	t.Helper()
	token, err := a.tokens.Issue(actor)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (a *testAPI) request(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

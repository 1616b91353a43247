package stream

import (
	"context"
	"sync"
)

// Hub fans unread-change signals out to subscribers, keyed by recipient.
// Signals carry no payload: a subscriber re-reads the authoritative count on
// each wake-up, so coalescing back-to-back signals loses nothing. A slow
// subscriber can never block a publisher or another subscriber.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers a subscription for one recipient. The returned channel
// receives a signal whenever the recipient's unread count may have changed.
// The cancel func releases the subscription; it is safe to call twice.
func (h *Hub) Subscribe(recipientID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	set, ok := h.subs[recipientID]
	if !ok {
		set = make(map[chan struct{}]struct{})
		h.subs[recipientID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if set, ok := h.subs[recipientID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, recipientID)
				}
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Notify signals every subscriber of recipientID. Non-blocking: when a
// subscriber already has a pending signal the new one is dropped, which is
// safe because signals are wake-ups, not values.
func (h *Hub) Notify(recipientID string) {
	h.mu.Lock()
	for ch := range h.subs[recipientID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

// UnreadChanged implements the service notifier interface for single-instance
// deployments, where local fan-out is the whole delivery path.
func (h *Hub) UnreadChanged(_ context.Context, recipientID string) {
	h.Notify(recipientID)
}

// Subscribers reports the number of active subscriptions for a recipient.
func (h *Hub) Subscribers(recipientID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[recipientID])
}

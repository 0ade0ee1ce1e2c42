package app

import (
	"sync"

	"assessment-engine/internal/domain"
)

// EventHub fans session lifecycle events out to per-user subscribers.
type EventHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.SessionEvent]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{subscribers: make(map[string]map[chan domain.SessionEvent]struct{})}
}

// Subscribe returns a channel of events for userID.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *EventHub) Subscribe(userID string) (<-chan domain.SessionEvent, func()) {
	ch := make(chan domain.SessionEvent, 8)

	h.mu.Lock()
	subs, ok := h.subscribers[userID]
	if !ok {
		subs = make(map[chan domain.SessionEvent]struct{})
		h.subscribers[userID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[userID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, userID)
		}
	}
	return ch, cancel
}

// Publish delivers ev to every subscriber of ev.UserID without blocking.
func (h *EventHub) Publish(ev domain.SessionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[ev.UserID] {
		select {
		case ch <- ev:
		default:
			// Slow consumer: drop its oldest event to make room.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// Subscribers reports how many channels are open for userID.
func (h *EventHub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[userID])
}

package notifications

import (
	"context"
	"sync"
)

// Hub fans notifications out to in-process subscribers (the SSE stream).
// A subscriber that is not keeping up loses notifications rather than blocking senders.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]chan Notification
	next   uint64
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[uint64]chan Notification),
		buffer: buffer,
	}
}

// Subscribe returns a receive channel and a cancel func that closes it. Cancel is idempotent.
func (h *Hub) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, h.buffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

func (h *Hub) Send(_ context.Context, n Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) RequestPermission(context.Context) Permission {
	return PermissionGranted
}

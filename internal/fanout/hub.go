// Package fanout is a minimal in-process change-notification primitive.
// Writers call Broadcast after every mutation, subscribers get a coalesced
// tick and re-read whatever view they are interested in.
package fanout

import "sync"

type Hub struct {
	mu   sync.Mutex
	subs map[uint64]chan struct{}
	next uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]chan struct{})}
}

// Subscribe registers a listener and returns its tick channel plus a
// cancel function. The channel has a buffer of one, so bursts of
// broadcasts coalesce into a single pending tick. Cancel is idempotent
// and closes the channel.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}

	return ch, cancel
}

// Broadcast signals every active subscriber without blocking: a
// subscriber with a tick already pending is skipped.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len reports the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// Package progress implements the per-job channel between a download task
// and its (at most one) live stream subscriber.
package progress

import (
	"sync"

	"github.com/vgetd/vgetd/internal/data"
)

// subscriberBuffer absorbs bursts from the engine callback so Publish can
// stay non-blocking without dropping under normal pacing.
const subscriberBuffer = 16

// Hub maps job ids to the channel of their single live subscriber.
//
// Subscription policy: the last subscriber wins. A second Subscribe for
// the same id closes the previous channel, so the earlier consumer sees
// end-of-channel and terminates immediately rather than idling against a
// registration it no longer owns.
type Hub struct {
	mu   sync.Mutex
	subs map[string]chan data.Snapshot
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan data.Snapshot)}
}

// Subscribe registers a channel for id and returns it with a cancel
// function. Cancel is safe to call on every exit path; it only removes the
// registration if this subscription still owns it.
func (h *Hub) Subscribe(id string) (<-chan data.Snapshot, func()) {
	ch := make(chan data.Snapshot, subscriberBuffer)
	h.mu.Lock()
	if prev, ok := h.subs[id]; ok {
		close(prev)
	}
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if cur, ok := h.subs[id]; ok && cur == ch {
			delete(h.subs, id)
			close(cur)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers snap to the subscriber for id, if one is attached. A
// missing or full channel never blocks the caller; the snapshot store
// remains the source of truth for anything dropped here.
func (h *Hub) Publish(id string, snap data.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.subs[id]
	if !ok {
		return
	}
	// Send under the lock so a concurrent cancel cannot close the channel
	// mid-send. The send is non-blocking, so the lock is held briefly.
	select {
	case ch <- snap:
	default:
	}
}

// Subscribed reports whether a live subscriber is attached for id.
func (h *Hub) Subscribed(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.subs[id]
	return ok
}

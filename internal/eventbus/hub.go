// Package eventbus fans progress notifications out to debug observers. The
// hub is process-wide state with an explicit lifecycle: created at server
// start, injected into the handlers that need it, torn down at shutdown.
package eventbus

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tripcast/api/internal/models"
)

// defaultObserverBuffer is how many undelivered notifications an observer
// may lag behind before broadcasts start skipping it.
const defaultObserverBuffer = 16

// Observer is one attached debug viewer. Identity is the pointer itself:
// subscribing the same Observer twice is a no-op, two Observers built from
// the same connection are distinct.
type Observer struct {
	ch chan models.ProgressNotification
}

// NewObserver creates an observer with the given channel buffer; zero or
// negative picks the default.
func NewObserver(buffer int) *Observer {
	if buffer <= 0 {
		buffer = defaultObserverBuffer
	}
	return &Observer{ch: make(chan models.ProgressNotification, buffer)}
}

// Notifications is the receive side of the observer. The channel closes
// when the observer is unsubscribed or the hub shuts down.
func (o *Observer) Notifications() <-chan models.ProgressNotification {
	return o.ch
}

// Hub broadcasts notifications to the currently subscribed observers.
// Delivery is best effort and independent per observer: one observer that
// is not ready is skipped for that broadcast, never removed.
type Hub struct {
	mu        sync.RWMutex
	observers map[*Observer]struct{}
	logger    *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		observers: make(map[*Observer]struct{}),
		logger:    logger,
	}
}

// Subscribe adds an observer. Subscribing an already subscribed observer
// changes nothing.
func (h *Hub) Subscribe(o *Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers[o] = struct{}{}
}

// Unsubscribe removes an observer and closes its channel. Unknown or
// already removed observers are ignored.
func (h *Hub) Unsubscribe(o *Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.observers[o]; !ok {
		return
	}
	delete(h.observers, o)
	close(o.ch)
}

// Broadcast delivers a notification to every ready observer. Observers with
// a full buffer miss this notification; they stay subscribed and catch the
// next one they have room for.
func (h *Hub) Broadcast(n models.ProgressNotification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for o := range h.observers {
		select {
		case o.ch <- n:
		default:
			// not ready, skip; removal is only ever explicit
		}
	}
}

// Len reports how many observers are attached.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Close unsubscribes every observer. Used at server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for o := range h.observers {
		delete(h.observers, o)
		close(o.ch)
	}
	if h.logger != nil {
		h.logger.Debug("event hub closed")
	}
}

// Package notify provides an in-process change hub used by the local store to
// back live query subscriptions: repositories broadcast a signal per topic
// after every successful write, and watchers re-query on each signal.
package notify

import (
	"context"
	"sync"
)

// Hub fans out change signals by topic. Signals carry no payload; a watcher
// re-reads the store on every signal. Broadcast never blocks: a subscriber
// that has not consumed its previous signal simply keeps the one pending
// signal (coalescing), which is enough because watchers re-query full state.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Broadcast signals every subscriber of the topic.
func (h *Hub) Broadcast(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
			// subscriber already has a pending signal
		}
	}
}

// Subscribe registers for signals on topic until ctx is cancelled. The
// returned channel is closed after unsubscription.
func (h *Hub) Subscribe(ctx context.Context, topic string) <-chan struct{} {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[chan struct{}]struct{})
	}
	h.subs[topic][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[topic], ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

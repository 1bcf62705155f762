// Package realtime fans wishlist snapshots out to subscribed viewers. The
// channel carries full snapshots, not deltas, so a missed message is healed
// by the next one and no replay is needed.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wishwell/api/internal/domain"
)

const subscriberBuffer = 8

// Hub is the process-local subscriber registry: which viewers are watching
// which slug. Connections are pinned to one process, so a plain mutex is all
// the coordination it needs.
type Hub struct {
	log *logrus.Logger

	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe registers a viewer for a slug and returns the snapshot feed plus
// a cancel func. Cancelling closes the feed.
func (h *Hub) Subscribe(slug string) (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.subs[slug]
	if !ok {
		set = make(map[chan []byte]struct{})
		h.subs[slug] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[slug], ch)
			if len(h.subs[slug]) == 0 {
				delete(h.subs, slug)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Broadcast encodes the snapshot once and delivers it to every local
// subscriber of the slug.
func (h *Hub) Broadcast(slug string, snapshot domain.PublicWishlist) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		h.log.WithError(err).WithField("slug", slug).Error("encode snapshot")
		return
	}
	h.Deliver(slug, payload)
}

// Deliver pushes an already-encoded snapshot to local subscribers. Delivery
// is best-effort: a viewer whose buffer is full skips this snapshot and
// catches up on the next.
func (h *Hub) Deliver(slug string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[slug] {
		select {
		case ch <- payload:
		default:
		}
	}
}

// Subscribers reports the viewer count for a slug.
func (h *Hub) Subscribers(slug string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[slug])
}

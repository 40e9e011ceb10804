package ledger

import (
	"sync"
	"time"
)

// Change tells a subscriber that a collection was modified by a committed
// transaction. Subscribers re-read the collection to get its new contents.
type Change struct {
	UserID     string
	Collection Collection
	At         time.Time
}

// Hub fans committed changes out to subscribers. Changes to the same
// collection coalesce until the subscriber takes them, so a slow reader
// sees fewer events but never misses a collection.
type Hub struct {
	mu     sync.RWMutex
	next   uint64
	subs   map[uint64]*subscriber
	closed bool
}

type subscriber struct {
	userID      string
	collections map[Collection]struct{}
	notify      chan struct{}

	mu      sync.Mutex
	pending []Change
}

func (s *subscriber) wants(userID string, c Collection) bool {
	if s.userID != userID {
		return false
	}
	if len(s.collections) == 0 {
		return true
	}
	_, ok := s.collections[c]
	return ok
}

// mark records c as dirty. It reports false when c was already pending.
func (s *subscriber) mark(c Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pending {
		if p.Collection == c.Collection {
			return false
		}
	}
	s.pending = append(s.pending, c)
	return true
}

// Subscription is a live change feed. C receives a signal whenever changes
// are pending; Changes takes them. C is closed by Close.
type Subscription struct {
	C <-chan struct{}

	sub  *subscriber
	hub  *Hub
	id   uint64
	once sync.Once
}

// Changes returns the pending changes, oldest first, and clears them.
func (s *Subscription) Changes() []Change {
	s.sub.mu.Lock()
	defer s.sub.mu.Unlock()
	out := s.sub.pending
	s.sub.pending = nil
	return out
}

// Close unsubscribes and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s.id) })
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers for changes on userID's collections; none means all.
func (h *Hub) Subscribe(userID string, collections ...Collection) *Subscription {
	sub := &subscriber{
		userID:      userID,
		collections: make(map[Collection]struct{}, len(collections)),
		notify:      make(chan struct{}, 1),
	}
	for _, c := range collections {
		sub.collections[c] = struct{}{}
	}

	h.mu.Lock()
	h.next++
	id := h.next
	if h.closed {
		close(sub.notify)
	} else {
		h.subs[id] = sub
	}
	h.mu.Unlock()

	return &Subscription{C: sub.notify, sub: sub, hub: h, id: id}
}

// Publish marks each collection dirty for matching subscribers and wakes
// them. It never blocks.
func (h *Hub) Publish(userID string, collections ...Collection) {
	if len(collections) == 0 {
		return
	}
	now := time.Now()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		woke := false
		for _, c := range collections {
			if sub.wants(userID, c) && sub.mark(Change{UserID: userID, Collection: c, At: now}) {
				woke = true
			}
		}
		if !woke {
			continue
		}
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription and makes later ones start closed. The API
// server calls it on shutdown so open streams return.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.notify)
	}
}

func (h *Hub) unsubscribe(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.notify)
	}
}

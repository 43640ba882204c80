package sqlite

import (
	"errors"
	"sync"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

var (
	// ErrSubscriberOverflow terminates a subscription that fell too far behind the writers
	ErrSubscriberOverflow = errors.New("subscriber queue overflow")

	// ErrStoreClosed terminates every open subscription when the store shuts down
	ErrStoreClosed = errors.New("document store closed")
)

// hub fans committed changes out to the open subscriptions of each collection
type hub struct {
	mu          sync.Mutex
	subscribers map[string]map[*subscription]struct{}
	bufferSize  int
}

func newHub(bufferSize int) *hub {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &hub{
		subscribers: make(map[string]map[*subscription]struct{}),
		bufferSize:  bufferSize,
	}
}

func (h *hub) add(collection string) *subscription {
	sub := &subscription{
		hub:        h,
		collection: collection,
		batches:    make(chan store.RawBatch, h.bufferSize),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[collection] == nil {
		h.subscribers[collection] = make(map[*subscription]struct{})
	}
	h.subscribers[collection][sub] = struct{}{}
	return sub
}

func (h *hub) remove(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.subscribers[sub.collection]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, sub.collection)
	}
}

// publish never blocks; a subscriber with a full queue is terminated
func (h *hub) publish(collection string, batch store.RawBatch) {
	h.mu.Lock()
	subs := make([]*subscription, 0, len(h.subscribers[collection]))
	for sub := range h.subscribers[collection] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if !sub.deliver(batch) {
			h.remove(sub)
		}
	}
}

func (h *hub) closeAll(err error) {
	h.mu.Lock()
	var subs []*subscription
	for _, set := range h.subscribers {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	h.subscribers = make(map[string]map[*subscription]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		sub.terminate(err)
	}
}

// subscription implements store.Subscription on top of the hub
type subscription struct {
	hub        *hub
	collection string
	batches    chan store.RawBatch
	done       chan struct{}

	mu     sync.Mutex
	closed bool
	err    error
}

func (s *subscription) Batches() <-chan store.RawBatch {
	return s.batches
}

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Close() {
	if s.terminate(nil) {
		s.hub.remove(s)
	}
}

func (s *subscription) deliver(batch store.RawBatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.batches <- batch:
		return true
	default:
		s.closeLocked(&domain.SyncFailure{Collection: s.collection, Err: ErrSubscriberOverflow})
		return false
	}
}

// terminate closes the subscription once; it reports whether this call closed it
func (s *subscription) terminate(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if err != nil {
		err = &domain.SyncFailure{Collection: s.collection, Err: err}
	}
	s.closeLocked(err)
	return true
}

func (s *subscription) closeLocked(err error) {
	s.closed = true
	s.err = err
	close(s.batches)
	close(s.done)
}

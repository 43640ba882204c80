package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
)

// Subscription is the cancellable handle of one materialized view
type Subscription struct {
	updates  chan Update
	upstream store.Subscription
	cancel   context.CancelFunc

	// emit holds mu for reading while it may send; Cancel takes it for writing
	// after closing stop, so no send is in flight once Cancel returns
	mu   sync.RWMutex
	stop chan struct{}
	once sync.Once

	errMu sync.Mutex
	err   error
}

func newSubscription(upstream store.Subscription, cancel context.CancelFunc) *Subscription {
	return &Subscription{
		updates:  make(chan Update),
		upstream: upstream,
		cancel:   cancel,
		stop:     make(chan struct{}),
	}
}

// Updates yields one update per applied or rejected batch and is closed when the
// subscription ends
func (s *Subscription) Updates() <-chan Update {
	return s.updates
}

// Err reports the SyncFailure that terminated the subscription, if any
func (s *Subscription) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Cancel releases the upstream subscription. No update is delivered after it returns.
// Safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.stop)
		s.cancel()
		s.mu.Lock()
		s.mu.Unlock()
		s.upstream.Close()
	})
}

// pump forwards materialized updates to the caller until the pipeline ends or Cancel
func (s *Subscription) pump(in <-chan Update) {
	defer s.cancel()
	defer close(s.updates)

	for u := range in {
		var syncErr *domain.SyncFailure
		if errors.As(u.Err, &syncErr) {
			s.errMu.Lock()
			s.err = u.Err
			s.errMu.Unlock()
		}

		if !s.emit(u) {
			// drain so the pipeline can observe its cancelled context and exit
			for range in {
			}
			return
		}
	}
}

func (s *Subscription) emit(u Update) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	select {
	case <-s.stop:
		return false
	default:
	}

	select {
	case s.updates <- u:
		return true
	case <-s.stop:
		return false
	}
}

package mutation

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

type gateKey struct {
	recordID string
	userID   string
}

type slot struct {
	sem  *semaphore.Weighted
	refs int
}

// gate allows one in-flight mutation per (record, user) pair
type gate struct {
	mu    sync.Mutex
	slots map[gateKey]*slot
}

func newGate() *gate {
	return &gate{slots: make(map[gateKey]*slot)}
}

// acquire blocks until the key is free or ctx is done; release must be called exactly once
func (g *gate) acquire(ctx context.Context, key gateKey) (func(), error) {
	g.mu.Lock()
	s, ok := g.slots[key]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		g.slots[key] = s
	}
	s.refs++
	g.mu.Unlock()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		g.unref(key, s)
		return nil, err
	}

	return func() {
		s.sem.Release(1)
		g.unref(key, s)
	}, nil
}

func (g *gate) unref(key gateKey, s *slot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(g.slots, key)
	}
}

func (g *gate) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

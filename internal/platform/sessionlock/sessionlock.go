package sessionlock

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Registry hands out a weight-1 semaphore per session so mutating operations
// (swipe, fit, swap, confirm) never interleave within one session. Different
// sessions proceed in parallel.
type Registry struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*entry
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[uuid.UUID]*entry)}
}

// Acquire blocks until the session lock is held or ctx is done. The returned
// release func must be called exactly once.
func (r *Registry) Acquire(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	r.mu.Lock()
	e, ok := r.locks[sessionID]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		r.locks[sessionID] = e
	}
	e.refs++
	r.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		r.put(sessionID, e)
		return nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			e.sem.Release(1)
			r.put(sessionID, e)
		})
	}
	return release, nil
}

func (r *Registry) put(sessionID uuid.UUID, e *entry) {
	r.mu.Lock()
	e.refs--
	if e.refs <= 0 {
		delete(r.locks, sessionID)
	}
	r.mu.Unlock()
}

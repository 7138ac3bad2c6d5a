package cart

import (
	"sync"
	"time"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/model"
)

const (
	// SessionTTL is how long an untouched cart survives before the sweep
	// discards it.
	SessionTTL = 24 * time.Hour

	// sweepInterval is how often the background sweep runs
	sweepInterval = 10 * time.Minute
)

type entry struct {
	state   model.CartState
	touched time.Time
}

// MemoryStore holds one cart per visitor session, in process memory.
// Carts are throwaway client state; losing them on restart is acceptable.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]*entry
	ttl   time.Duration

	stopSweep chan struct{}
	wg        sync.WaitGroup
}

// NewMemoryStore creates a session cart store and starts its expiry sweep.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	s := &MemoryStore{
		carts:     make(map[string]*entry),
		ttl:       ttl,
		stopSweep: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweepLoop()

	return s
}

func (s *MemoryStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expire()
		case <-s.stopSweep:
			return
		}
	}
}

func (s *MemoryStore) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-s.ttl)
	for id, e := range s.carts {
		if e.touched.Before(cutoff) {
			delete(s.carts, id)
		}
	}
}

// Get returns the current cart for a session. Unknown sessions get an
// empty cart without creating one.
func (s *MemoryStore) Get(sessionID string) model.CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.carts[sessionID]; ok {
		return e.state
	}
	return recompute(nil)
}

// Dispatch applies an action to the session's cart and returns the new
// state. The reducer runs under the lock so concurrent requests for the
// same session cannot interleave.
func (s *MemoryStore) Dispatch(sessionID string, a Action) (model.CartState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := recompute(nil)
	if e, ok := s.carts[sessionID]; ok {
		current = e.state
	}

	next, err := Reduce(current, a)
	if err != nil {
		return current, err
	}

	if a.Type == ActionClear {
		delete(s.carts, sessionID)
		return next, nil
	}

	s.carts[sessionID] = &entry{state: next, touched: time.Now()}
	return next, nil
}

// Close stops the background sweep and waits for it to finish.
func (s *MemoryStore) Close() error {
	close(s.stopSweep)
	s.wg.Wait()
	return nil
}

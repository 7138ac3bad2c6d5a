package cart

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_UnknownSessionGetsEmptyCart(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	state := s.Get("nobody")
	assert.Empty(t, state.Items)
	assert.Equal(t, 0, state.TotalItems)
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	_, err := s.Dispatch("alice", Action{Type: ActionAdd, Item: fiberEssential()})
	require.NoError(t, err)

	assert.Len(t, s.Get("alice").Items, 1)
	assert.Empty(t, s.Get("bob").Items)
}

func TestMemoryStore_ClearDropsSession(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	_, err := s.Dispatch("alice", Action{Type: ActionAdd, Item: fiberEssential()})
	require.NoError(t, err)

	state, err := s.Dispatch("alice", Action{Type: ActionClear})
	require.NoError(t, err)
	assert.Empty(t, state.Items)

	s.mu.RLock()
	_, ok := s.carts["alice"]
	s.mu.RUnlock()
	assert.False(t, ok)
}

func TestMemoryStore_FailedActionKeepsState(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	_, err := s.Dispatch("alice", Action{Type: ActionAdd, Item: fiberEssential()})
	require.NoError(t, err)

	_, err = s.Dispatch("alice", Action{Type: "bogus"})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Len(t, s.Get("alice").Items, 1)
}

func TestMemoryStore_ExpireDropsStaleCarts(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	_, err := s.Dispatch("stale", Action{Type: ActionAdd, Item: fiberEssential()})
	require.NoError(t, err)

	s.mu.Lock()
	s.carts["stale"].touched = time.Now().Add(-2 * time.Hour)
	s.mu.Unlock()

	s.expire()
	assert.Empty(t, s.Get("stale").Items)
}

func TestMemoryStore_ConcurrentDispatchesDoNotInterleave(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	defer s.Close()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Dispatch("alice", Action{Type: ActionAdd, Item: fiberEssential()})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state := s.Get("alice")
	require.Len(t, state.Items, 1)
	assert.Equal(t, n, state.Items[0].Quantity)
	assert.Equal(t, n, state.TotalItems)
}

func TestMemoryStore_GetReturnsCopyOfTotals(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	it := *fiberEssential()
	_, err := s.Dispatch("alice", Action{Type: ActionAdd, Item: &it})
	require.NoError(t, err)

	before := s.Get("alice")
	_, err = s.Dispatch("alice", Action{Type: ActionSetQuantity, ItemID: it.ID, Quantity: 4})
	require.NoError(t, err)

	assert.Equal(t, 1, before.TotalItems)
	assert.Equal(t, 4, s.Get("alice").TotalItems)
}

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sadsod/storefront/internal/domain/cart"
)

type cartEntry struct {
	cart      cart.Cart
	expiresAt time.Time
}

// InMemoryCartStore keeps carts in process memory.
// Suitable for a single instance and for tests.
type InMemoryCartStore struct {
	mu        sync.RWMutex
	entries   map[string]cartEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCartStore creates an in-memory cart store and starts a
// background goroutine that evicts expired carts
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	s := &InMemoryCartStore{
		entries:  make(map[string]cartEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// Load returns the stored cart, or an empty one when missing or expired
func (s *InMemoryCartStore) Load(_ context.Context, sessionID string) (cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[sessionID]
	if !ok || s.now().After(e.expiresAt) {
		return cart.New(), nil
	}
	return e.cart, nil
}

// Save stores the cart; an empty cart removes the entry
func (s *InMemoryCartStore) Save(_ context.Context, sessionID string, c cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.IsEmpty() {
		delete(s.entries, sessionID)
		return nil
	}
	s.entries[sessionID] = cartEntry{cart: c, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Delete removes the session's cart
func (s *InMemoryCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Take removes the session's cart and returns it
func (s *InMemoryCartStore) Take(_ context.Context, sessionID string) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	if !ok || s.now().After(e.expiresAt) {
		return cart.New(), nil
	}
	return e.cart, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryCartStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored carts, expired ones included
func (s *InMemoryCartStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryCartStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryCartStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

var _ cart.Store = (*InMemoryCartStore)(nil)

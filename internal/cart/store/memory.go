package store

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/stockroom/internal/cart/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
)

const minSweepInterval = time.Minute

type memoryEntry struct {
	cart      domain.Cart
	expiresAt time.Time
}

// MemoryStore keeps carts in process memory and evicts carts idle longer
// than the TTL. Carts do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	locks   map[string]struct{}
	ttl     time.Duration
	clock   clock.Clock

	stop chan struct{}
	done chan struct{}
}

func NewMemoryStore(c clock.Clock, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		locks:   make(map[string]struct{}),
		ttl:     ttl,
		clock:   c,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok || !s.clock.Now().Before(entry.expiresAt) {
		delete(s.entries, id)
		return domain.Cart{ID: id}, nil
	}
	return entry.cart.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[cart.ID] = memoryEntry{
		cart:      cart.Clone(),
		expiresAt: s.clock.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) Lock(_ context.Context, id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.locks[id]; held {
		return nil, domain.ErrCartBusy
	}
	s.locks[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locks, id)
			s.mu.Unlock()
		})
	}, nil
}

// Sweep drops expired carts and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start runs the eviction loop until Stop is called.
func (s *MemoryStore) Start() {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done
	s.mu.Unlock()

	interval := s.ttl / 4
	if interval < minSweepInterval {
		interval = minSweepInterval
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (s *MemoryStore) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

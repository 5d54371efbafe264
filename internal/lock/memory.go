package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. It is used in tests
// and single-instance deployments where Redis is not available.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	nowFunc func() time.Time
}

// NewMemoryStore creates an in-memory lock store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

func (s *MemoryStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	if deadline, ok := s.entries[key]; ok && now.Before(deadline) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if !s.nowFunc().Before(deadline) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	remaining := deadline.Sub(s.nowFunc())
	if remaining <= 0 {
		delete(s.entries, key)
		return 0, nil
	}
	return remaining, nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

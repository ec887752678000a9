package otp

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore implements Store with a mutex-guarded map and a janitor
// goroutine that sweeps expired entries. Suitable for a single instance;
// use the Redis store when running more than one.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	done    chan struct{}
}

type entry struct {
	hashedCode string
	expiresAt  time.Time
}

// NewInMemoryStore creates an InMemoryStore and starts its eviction
// janitor, which sweeps at the given interval until Close is called.
func NewInMemoryStore(sweepInterval time.Duration) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go s.janitor(sweepInterval)
	return s
}

func (s *InMemoryStore) Set(_ context.Context, phone, hashedCode string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[phone] = entry{hashedCode: hashedCode, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, phone string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[phone]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.entries, phone)
		return "", ErrNotFound
	}
	return e.hashedCode, nil
}

func (s *InMemoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
	return nil
}

func (s *InMemoryStore) Close() error {
	close(s.done)
	return nil
}

func (s *InMemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for phone, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, phone)
				}
			}
			s.mu.Unlock()
		}
	}
}

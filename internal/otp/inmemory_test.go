package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryStoreSetGet(t *testing.T) {
	s := NewInMemoryStore(time.Minute)
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "+15551234567", "hash-1", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "hash-1" {
		t.Errorf("Get = %q, want hash-1", got)
	}

	if _, err := s.Get(ctx, "+15550000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get unknown phone: err = %v, want ErrNotFound", err)
	}
}

func TestInMemoryStoreReplacesPreviousCode(t *testing.T) {
	s := NewInMemoryStore(time.Minute)
	defer s.Close()
	ctx := context.Background()

	s.Set(ctx, "+15551234567", "hash-1", time.Minute)
	s.Set(ctx, "+15551234567", "hash-2", time.Minute)

	got, err := s.Get(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "hash-2" {
		t.Errorf("Get = %q, want the most recent code hash-2", got)
	}
}

func TestInMemoryStoreExpiry(t *testing.T) {
	s := NewInMemoryStore(time.Minute)
	defer s.Close()
	ctx := context.Background()

	s.Set(ctx, "+15551234567", "hash-1", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, err := s.Get(ctx, "+15551234567"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired entry: err = %v, want ErrNotFound", err)
	}
}

func TestInMemoryStoreDelete(t *testing.T) {
	s := NewInMemoryStore(time.Minute)
	defer s.Close()
	ctx := context.Background()

	s.Set(ctx, "+15551234567", "hash-1", time.Minute)
	if err := s.Delete(ctx, "+15551234567"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.Get(ctx, "+15551234567"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted entry: err = %v, want ErrNotFound", err)
	}
}

func TestInMemoryStoreJanitorEviction(t *testing.T) {
	s := NewInMemoryStore(10 * time.Millisecond)
	defer s.Close()
	ctx := context.Background()

	s.Set(ctx, "+15551234567", "hash-1", 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	s.mu.Lock()
	_, still := s.entries["+15551234567"]
	s.mu.Unlock()
	if still {
		t.Error("janitor did not evict the expired entry")
	}
}

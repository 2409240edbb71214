package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	ttl    time.Duration
	rec    *Record
	closed bool
}

// NewMemoryStore creates an empty store. A nil clock uses the real clock.
func NewMemoryStore(ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{clock: clock, ttl: ttl}
}

// Load implements CredentialStore.
func (s *MemoryStore) Load(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrClosed
	}
	if s.rec == nil {
		return Record{}, ErrNotFound
	}
	if s.rec.Expired(s.clock.Now()) {
		s.rec = nil
		return Record{}, ErrExpired
	}
	return *s.rec, nil
}

// Save implements CredentialStore.
func (s *MemoryStore) Save(ctx context.Context, credential string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Record{}, ErrClosed
	}
	now := s.clock.Now()
	rec := Record{Credential: credential, SavedAt: now, ExpiresAt: now.Add(s.ttl)}
	s.rec = &rec
	return rec, nil
}

// Delete implements CredentialStore.
func (s *MemoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.rec = nil
	return nil
}

// Close implements CredentialStore.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// ABOUTME: In-memory TTL cache store shared by all entity readers
// ABOUTME: Keeps stale values reachable for degraded reads and tracks a last-write marker
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is shared by all entities. PutTTL exists so a per-key override can
// arrive later without changing callers.
const DefaultTTL = 30 * time.Second

type entry struct {
	value     any
	fetchedAt time.Time
	ttl       time.Duration
}

// Store is a single-namespace TTL cache. Invalidation clears an entry's
// timestamp rather than deleting it, so the value stays reachable through
// GetStale for degraded reads after an upstream failure.
type Store struct {
	mu        sync.Mutex
	entries   map[string]*entry
	ttl       time.Duration
	lastWrite time.Time

	now func() time.Time
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if it is younger than its TTL.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.fetchedAt.IsZero() {
		return nil, false
	}
	if s.now().Sub(e.fetchedAt) >= e.ttl {
		return nil, false
	}
	return e.value, true
}

// GetStale returns the last known value for key regardless of age, including
// entries that have been invalidated. Used as the degraded-read fallback when
// an upstream refresh fails.
func (s *Store) GetStale(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Put stores value under key with the store-wide TTL.
func (s *Store) Put(key string, value any) {
	s.PutTTL(key, value, s.ttl)
}

// PutTTL stores value under key with an explicit TTL.
func (s *Store) PutTTL(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{value: value, fetchedAt: s.now(), ttl: ttl}
}

// Invalidate forces the next Get for key to miss. The value itself is kept for
// stale fallback. Bumps the last-write marker.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.fetchedAt = time.Time{}
	}
	s.lastWrite = s.now()
}

// Flush invalidates every entry and bumps the last-write marker.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		e.fetchedAt = time.Time{}
	}
	s.lastWrite = s.now()
}

// LastWrite returns when the store was last invalidated. Polling clients use it
// to detect "something changed" without re-fetching every key.
func (s *Store) LastWrite() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWrite
}

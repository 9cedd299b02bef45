// ABOUTME: Tests for the TTL cache store
// ABOUTME: Covers expiry, invalidation, stale reads, and the last-write marker
package cache

import (
	"testing"
	"time"
)

func TestGetHitWithinTTL(t *testing.T) {
	s := New(30 * time.Second)
	s.Put("contacts", []string{"a"})

	v, ok := s.Get("contacts")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got := v.([]string); len(got) != 1 || got[0] != "a" {
		t.Errorf("unexpected value %v", got)
	}
}

func TestGetMissAfterTTL(t *testing.T) {
	s := New(30 * time.Second)

	base := time.Now()
	s.now = func() time.Time { return base }
	s.Put("contacts", "v1")

	s.now = func() time.Time { return base.Add(29 * time.Second) }
	if _, ok := s.Get("contacts"); !ok {
		t.Error("expected hit just under TTL")
	}

	s.now = func() time.Time { return base.Add(30 * time.Second) }
	if _, ok := s.Get("contacts"); ok {
		t.Error("expected miss at TTL boundary")
	}
}

func TestPutTTLOverride(t *testing.T) {
	s := New(30 * time.Second)

	base := time.Now()
	s.now = func() time.Time { return base }
	s.PutTTL("reports", "v1", 5*time.Minute)

	s.now = func() time.Time { return base.Add(time.Minute) }
	if _, ok := s.Get("reports"); !ok {
		t.Error("per-key TTL override not honored")
	}
}

func TestInvalidateForcesMissButKeepsStale(t *testing.T) {
	s := New(30 * time.Second)
	s.Put("contacts", "v1")
	s.Invalidate("contacts")

	if _, ok := s.Get("contacts"); ok {
		t.Error("expected miss after invalidation")
	}

	v, ok := s.GetStale("contacts")
	if !ok || v != "v1" {
		t.Errorf("expected stale value preserved, got %v (ok=%v)", v, ok)
	}
}

func TestFlushInvalidatesAll(t *testing.T) {
	s := New(30 * time.Second)
	s.Put("a", 1)
	s.Put("b", 2)
	s.Flush()

	if _, ok := s.Get("a"); ok {
		t.Error("expected miss for a after flush")
	}
	if _, ok := s.Get("b"); ok {
		t.Error("expected miss for b after flush")
	}
}

func TestLastWriteBumpedByInvalidation(t *testing.T) {
	s := New(30 * time.Second)

	if !s.LastWrite().IsZero() {
		t.Fatal("expected zero last-write on a fresh store")
	}

	s.Put("a", 1)
	s.Invalidate("a")
	first := s.LastWrite()
	if first.IsZero() {
		t.Fatal("expected last-write set after invalidation")
	}

	base := first.Add(time.Second)
	s.now = func() time.Time { return base }
	s.Flush()
	if !s.LastWrite().After(first) {
		t.Error("expected flush to bump last-write")
	}
}

func TestGetUnknownKey(t *testing.T) {
	s := New(30 * time.Second)
	if _, ok := s.Get("nope"); ok {
		t.Error("expected miss for unknown key")
	}
	if _, ok := s.GetStale("nope"); ok {
		t.Error("expected no stale value for unknown key")
	}
}

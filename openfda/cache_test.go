package openfda

import (
	"testing"
	"time"
)

func TestCacheGetPut(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(4, time.Minute, clock.Now)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	c.Put("k", Result{Drug: "aspirin", Entries: []Entry{{Term: "NAUSEA", Count: 3}}})
	got, ok := c.Get("k")
	if !ok || got.Drug != "aspirin" {
		t.Fatalf("expected a hit, got %+v %v", got, ok)
	}

	// Callers get copies.
	got.Entries[0].Count = 99
	again, _ := c.Get("k")
	if again.Entries[0].Count != 3 {
		t.Error("cached entries were modified through a returned copy")
	}
}

func TestCacheExpiresWithClock(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(4, time.Minute, clock.Now)
	c.Put("k", Result{Drug: "aspirin"})

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should still be fresh")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry older than the TTL must be a miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed on read, len=%d", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2, time.Minute, newFakeClock().Now)
	c.Put("a", Result{Drug: "a"})
	c.Put("b", Result{Drug: "b"})
	c.Get("a")
	c.Put("c", Result{Drug: "c"})

	if _, ok := c.Get("b"); ok {
		t.Error("b was least recently used and should be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
}

func TestCachePurgeExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(8, time.Minute, clock.Now)
	c.Put("old", Result{})
	clock.Advance(30 * time.Second)
	c.Put("new", Result{})
	clock.Advance(45 * time.Second)

	if n := c.PurgeExpired(); n != 1 {
		t.Errorf("expected 1 purged entry, got %d", n)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 remaining entry, got %d", c.Len())
	}
}

func TestCacheClearAndDefaults(t *testing.T) {
	c := NewCache(0, 0, nil)
	if c.TTL() != DefaultCacheTTL {
		t.Errorf("expected default TTL, got %v", c.TTL())
	}
	c.Put("k", Result{})
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}

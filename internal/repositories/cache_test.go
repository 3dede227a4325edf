package repositories

import (
	"testing"
	"time"

	"github.com/ericfjmnz/encore/internal/shared"
)

func newTestCache(t *testing.T, ttl time.Duration) *ResponseCache {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cache := NewResponseCache(db, ttl)
	if err := cache.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return cache
}

func TestResponseCache_PutGet(t *testing.T) {
	cache := newTestCache(t, time.Minute)

	if _, ok := cache.Get("https://example.com/a"); ok {
		t.Error("expected miss on empty cache")
	}

	if err := cache.Put("https://example.com/a", []byte("body-a")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	body, ok := cache.Get("https://example.com/a")
	if !ok {
		t.Fatal("expected hit after Put")
	}
	if string(body) != "body-a" {
		t.Errorf("Get() = %q, want %q", body, "body-a")
	}

	// Replacement keeps one row per URL.
	if err := cache.Put("https://example.com/a", []byte("body-b")); err != nil {
		t.Fatalf("Put() replace error = %v", err)
	}
	body, _ = cache.Get("https://example.com/a")
	if string(body) != "body-b" {
		t.Errorf("Get() after replace = %q, want %q", body, "body-b")
	}

	n, err := cache.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestResponseCache_TTLExpiry(t *testing.T) {
	cache := newTestCache(t, time.Minute)

	base := time.Now()
	cache.now = func() time.Time { return base }

	if err := cache.Put("https://example.com/page", []byte("stale")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	cache.now = func() time.Time { return base.Add(2 * time.Minute) }

	if _, ok := cache.Get("https://example.com/page"); ok {
		t.Error("expected expired entry to miss")
	}

	n, err := cache.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("expired entry not deleted on read, Count() = %d", n)
	}
}

func TestResponseCache_PruneAndPurge(t *testing.T) {
	cache := newTestCache(t, time.Minute)

	base := time.Now()
	cache.now = func() time.Time { return base }
	cache.Put("old", []byte("x"))

	cache.now = func() time.Time { return base.Add(2 * time.Minute) }
	cache.Put("fresh", []byte("y"))

	pruned, err := cache.PruneExpired()
	if err != nil {
		t.Fatalf("PruneExpired() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("PruneExpired() = %d, want 1", pruned)
	}

	purged, err := cache.Purge()
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("Purge() = %d, want 1", purged)
	}
}

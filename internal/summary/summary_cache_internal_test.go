package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsbrief/internal/domain"
)

func TestMemoryCacheServesRepeatedReads(t *testing.T) {
	backing := newMemoryStore()
	backing.records["key"] = domain.SummaryRecord{URL: "key", Points: []string{"value"}}

	cache := NewMemoryCache(backing, 2, time.Hour)
	ctx := context.Background()

	for range 3 {
		record, ok, err := cache.GetSummary(ctx, "key")
		if err != nil || !ok {
			t.Fatalf("expected cached record, got ok=%v err=%v", ok, err)
		}

		if record.Points[0] != "value" {
			t.Fatalf("unexpected record: %+v", record)
		}
	}

	if backing.gets != 1 {
		t.Fatalf("expected one backing read, got %d", backing.gets)
	}
}

func TestMemoryCacheMissFallsThrough(t *testing.T) {
	backing := newMemoryStore()
	cache := NewMemoryCache(backing, 2, time.Hour)

	if _, ok, err := cache.GetSummary(context.Background(), "missing"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if _, ok, _ := cache.GetSummary(context.Background(), "missing"); ok {
		t.Fatalf("misses must not be cached as hits")
	}

	if backing.gets != 2 {
		t.Fatalf("expected both reads to reach backing store, got %d", backing.gets)
	}
}

func TestMemoryCacheKeepsOnlyPersistedRecords(t *testing.T) {
	backing := newMemoryStore()
	backing.records["key"] = domain.SummaryRecord{URL: "key", Points: []string{"winner"}}

	cache := NewMemoryCache(backing, 2, time.Hour)
	ctx := context.Background()

	err := cache.PutSummary(ctx, domain.SummaryRecord{URL: "key", Points: []string{"loser"}})
	if !errors.Is(err, domain.ErrDuplicateKey) {
		t.Fatalf("expected duplicate key, got %v", err)
	}

	record, ok, err := cache.GetSummary(ctx, "key")
	if err != nil || !ok {
		t.Fatalf("expected record, got ok=%v err=%v", ok, err)
	}

	if record.Points[0] != "winner" {
		t.Fatalf("expected stored points, got %q", record.Points)
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	backing := newMemoryStore()
	cache := NewMemoryCache(backing, 2, time.Hour)
	ctx := context.Background()

	for _, url := range []string{"a", "b", "c"} {
		if err := cache.PutSummary(ctx, domain.SummaryRecord{URL: url, Points: []string{url}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	gets := backing.gets
	if _, ok, _ := cache.GetSummary(ctx, "a"); !ok {
		t.Fatalf("expected a to be served by the backing store")
	}

	if backing.gets != gets+1 {
		t.Fatalf("expected evicted entry to be read from backing store")
	}
}

func TestNewMemoryCacheDisabled(t *testing.T) {
	backing := newMemoryStore()

	if store := NewMemoryCache(backing, 0, time.Hour); store != Store(backing) {
		t.Fatalf("expected backing store to be returned unchanged")
	}
}

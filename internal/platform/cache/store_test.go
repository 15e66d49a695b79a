package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoadSharesConcurrentMisses(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return []string{"Combined", "OvD"}, nil
	}

	var wg sync.WaitGroup
	for range 24 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrLoad(t.Context(), "elo:modes:Q3-2025", loader)
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
				return
			}
			if modes, _ := v.([]string); len(modes) != 2 {
				t.Errorf("unexpected value %v", v)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
	if _, err := store.GetOrLoad(t.Context(), "elo:modes:Q3-2025", loader); err != nil {
		t.Fatalf("cached GetOrLoad: %v", err)
	}
	if hits, misses := store.Stats(); hits != 1 || misses != 24 {
		t.Fatalf("unexpected stats hits=%d misses=%d", hits, misses)
	}
}

func TestStore_ExpiresEntriesAfterTTL(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Set(t.Context(), "player-stats:recent:10", 1)
	if _, ok := store.Get(t.Context(), "player-stats:recent:10"); !ok {
		t.Fatalf("expected fresh entry")
	}
	now = now.Add(time.Minute)
	if _, ok := store.Get(t.Context(), "player-stats:recent:10"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry should be removed")
	}
}

func TestStore_DeletePrefixLeavesOtherNamespaces(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := t.Context()
	store.Set(ctx, "squad:list", "a")
	store.Set(ctx, "squad:id:1", "b")
	store.Set(ctx, "elo:board", "c")

	store.DeletePrefix(ctx, "squad:")

	if _, ok := store.Get(ctx, "squad:id:1"); ok {
		t.Fatalf("expected squad keys to be evicted")
	}
	if _, ok := store.Get(ctx, "elo:board"); !ok {
		t.Fatalf("expected elo key to survive")
	}
}

func TestStore_InvalidationDuringLoadIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	loaded := make(chan struct{})
	release := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := store.GetOrLoad(t.Context(), "elo:board:Combined", func(context.Context) (any, error) {
			close(loaded)
			<-release
			return "stale", nil
		})
		done <- err
	}()

	<-loaded
	store.DeletePrefix(t.Context(), "elo:")
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}

	if _, ok := store.Get(t.Context(), "elo:board:Combined"); ok {
		t.Fatalf("load that raced an invalidation must not be cached")
	}
}

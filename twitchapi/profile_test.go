package twitchapi

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeLookup struct {
	calls  atomic.Int32
	avatar string
	err    error
	delay  time.Duration
}

func (f *fakeLookup) GetProfileImageURL(ctx context.Context, userID string) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.avatar, f.err
}

func TestProfileResolver_Memoizes(t *testing.T) {
	lookup := &fakeLookup{avatar: "http://img/u1.png"}
	r := NewProfileResolver(lookup, nil)

	first := r.Resolve(context.Background(), "u1")
	if first != "http://img/u1.png" {
		t.Fatalf("Resolve() = %s, want http://img/u1.png", first)
	}

	// Upstream changes its answer; the cached one must win.
	lookup.avatar = "http://img/changed.png"
	second := r.Resolve(context.Background(), "u1")
	if second != first {
		t.Errorf("second Resolve() = %s, want cached %s", second, first)
	}
	if n := lookup.calls.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func TestProfileResolver_FailureCachesPlaceholder(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("boom")}
	r := NewProfileResolver(lookup, nil)

	if got := r.Resolve(context.Background(), "u2"); got != PlaceholderAvatar {
		t.Fatalf("Resolve() = %s, want placeholder", got)
	}

	// Upstream recovers, but the placeholder is a permanent answer.
	lookup.err = nil
	lookup.avatar = "http://img/u2.png"
	if got := r.Resolve(context.Background(), "u2"); got != PlaceholderAvatar {
		t.Errorf("Resolve() after recovery = %s, want cached placeholder", got)
	}
	if n := lookup.calls.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func TestProfileResolver_DistinctUsers(t *testing.T) {
	lookup := &fakeLookup{avatar: "a"}
	cache := NewProfileCache()
	r := NewProfileResolver(lookup, cache)

	r.Resolve(context.Background(), "u1")
	r.Resolve(context.Background(), "u2")
	if n := lookup.calls.Load(); n != 2 {
		t.Errorf("expected 2 upstream calls, got %d", n)
	}
	if cache.Len() != 2 {
		t.Errorf("cache size = %d, want 2", cache.Len())
	}
}

func TestProfileResolver_ConcurrentMissesCollapse(t *testing.T) {
	lookup := &fakeLookup{avatar: "a", delay: 50 * time.Millisecond}
	r := NewProfileResolver(lookup, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := r.Resolve(context.Background(), "u1"); got != "a" {
				t.Errorf("Resolve() = %s, want a", got)
			}
		}()
	}
	wg.Wait()
	if n := lookup.calls.Load(); n != 1 {
		t.Errorf("expected concurrent misses to share 1 upstream call, got %d", n)
	}
}

func TestProfileCache_PutKeepsFirstValue(t *testing.T) {
	c := NewProfileCache()
	if got := c.Put("u", "first"); got != "first" {
		t.Errorf("Put() = %s, want first", got)
	}
	if got := c.Put("u", "second"); got != "first" {
		t.Errorf("Put() = %s, want first kept", got)
	}
	if v, ok := c.Get("u"); !ok || v != "first" {
		t.Errorf("Get() = %s,%v", v, ok)
	}
}

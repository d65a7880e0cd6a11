package displaycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/melly/timerocket/internal/server/models"
)

func newCacheWithServer(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)

	cache, err := Open(context.Background(), srv.Addr(), "", 0, 5*time.Minute)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	return cache, srv
}

func TestOpen_PingFails(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := Open(context.Background(), addr, "", 0, time.Minute)
	if err == nil {
		t.Fatalf("expected connection error, got nil")
	}
}

func TestGet_MissReturnsSentinel(t *testing.T) {
	cache, _ := newCacheWithServer(t)

	_, err := cache.Get(context.Background(), 1)
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("want ErrCacheMiss, got %v", err)
	}
}

func TestSetGet_RoundTrip(t *testing.T) {
	cache, _ := newCacheWithServer(t)

	want := []models.PublicChest{
		{ChestID: 5, RocketID: 7, RocketName: "first", DisplayLocation: 1},
		{ChestID: 6, RocketID: 8, RocketName: "second", DisplayLocation: 2},
	}

	if err := cache.Set(context.Background(), 1, want); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, err := cache.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if len(got) != 2 || got[0].ChestID != 5 || got[1].DisplayLocation != 2 {
		t.Fatalf("unexpected cached list: %+v", got)
	}
}

func TestSet_AppliesTTL(t *testing.T) {
	cache, srv := newCacheWithServer(t)

	if err := cache.Set(context.Background(), 1, []models.PublicChest{{ChestID: 5}}); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if ttl := srv.TTL("display:publicChests:1"); ttl != 5*time.Minute {
		t.Fatalf("want ttl 5m, got %v", ttl)
	}

	srv.FastForward(6 * time.Minute)

	if _, err := cache.Get(context.Background(), 1); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("want miss after expiry, got %v", err)
	}
}

func TestInvalidate_RemovesEntry(t *testing.T) {
	cache, _ := newCacheWithServer(t)

	if err := cache.Set(context.Background(), 1, []models.PublicChest{{ChestID: 5}}); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := cache.Invalidate(context.Background(), 1); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}

	if _, err := cache.Get(context.Background(), 1); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("want miss after invalidate, got %v", err)
	}
}

func TestGet_CorruptEntry(t *testing.T) {
	cache, srv := newCacheWithServer(t)

	srv.Set("display:publicChests:1", "not-json")

	_, err := cache.Get(context.Background(), 1)
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, defaultTTL time.Duration) (*RedisStore, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(rdb, "la", defaultTTL)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisStoreSaveAndLoad(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	creds := Credentials{
		SessionToken:     "opaque-session",
		RefreshToken:     "opaque-refresh",
		PlayerIdentifier: "player-1",
		PlayerID:         42,
		PlayerName:       "ada",
	}
	if err := store.Save(ctx, creds); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx, "player-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.SessionToken != creds.SessionToken || got.PlayerID != 42 || got.PlayerName != "ada" {
		t.Fatalf("unexpected credentials %+v", got)
	}

	if ttl := mr.TTL("la:session:player-1"); ttl != time.Hour {
		t.Fatalf("expected default ttl 1h, got %v", ttl)
	}
	latest, err := store.Latest(ctx)
	if err != nil || latest.PlayerIdentifier != "player-1" {
		t.Fatalf("latest: %+v %v", latest, err)
	}
}

func TestRedisStoreUsesTokenExpiry(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, time.Hour)
	defer done()
	ctx := context.Background()

	creds := Credentials{
		SessionToken:     signedToken(t, time.Now().Add(10*time.Minute)),
		PlayerIdentifier: "player-1",
	}
	if err := store.Save(ctx, creds); err != nil {
		t.Fatalf("save: %v", err)
	}
	ttl := mr.TTL("la:session:player-1")
	if ttl <= 9*time.Minute || ttl > 10*time.Minute {
		t.Fatalf("expected ttl near 10m, got %v", ttl)
	}

	mr.FastForward(11 * time.Minute)
	if _, err := store.Load(ctx, "player-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after expiry, got %v", err)
	}
}

func TestRedisStoreDeleteIdempotent(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, 0)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, Credentials{SessionToken: "s", PlayerIdentifier: "p1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "p1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "p1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if mr.Exists("la:latest") {
		t.Fatal("expected latest pointer to be cleared")
	}
	if _, err := store.Latest(ctx); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	store := NewRedisStore(rdb, "la", time.Hour)
	mr.Close()

	err = store.Save(context.Background(), Credentials{SessionToken: "s", PlayerIdentifier: "p1"})
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

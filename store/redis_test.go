package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func openTestRedis(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r, err := OpenRedis(context.Background(), client, RedisOptions{})
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	return mr, r
}

func TestRedisRoundtrip(t *testing.T) {
	_, r := openTestRedis(t)
	roundtrip(t, r)
}

func TestRedisDefaultPrefix(t *testing.T) {
	mr, r := openTestRedis(t)
	ctx := context.Background()

	if err := r.SetAccessToken(ctx, "prefixed"); err != nil {
		t.Fatalf("SetAccessToken: %v", err)
	}
	got, err := mr.Get("sessionkit:access_token")
	if err != nil {
		t.Fatalf("key not written under default prefix: %v", err)
	}
	if got != "prefixed" {
		t.Fatalf("stored value %q", got)
	}
}

func TestRedisCustomPrefixIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	a, err := OpenRedis(ctx, client, RedisOptions{Prefix: "kiosk-a"})
	if err != nil {
		t.Fatalf("OpenRedis a: %v", err)
	}
	b, err := OpenRedis(ctx, client, RedisOptions{Prefix: "kiosk-b"})
	if err != nil {
		t.Fatalf("OpenRedis b: %v", err)
	}

	if err := a.SetAccessToken(ctx, "token-a"); err != nil {
		t.Fatalf("SetAccessToken: %v", err)
	}
	if tok, _ := b.AccessToken(ctx); tok != "" {
		t.Fatalf("prefix b sees prefix a's token %q", tok)
	}
	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear b: %v", err)
	}
	if tok, _ := a.AccessToken(ctx); tok != "token-a" {
		t.Fatalf("clearing prefix b disturbed prefix a: %q", tok)
	}
}

func TestRedisClearRemovesAllKeys(t *testing.T) {
	mr, r := openTestRedis(t)
	ctx := context.Background()

	if err := r.SetAccessToken(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetRefreshToken(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetCachedProfile(ctx, "c"); err != nil {
		t.Fatal(err)
	}

	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, key := range []string{
		"sessionkit:access_token",
		"sessionkit:refresh_token",
		"sessionkit:cached_profile",
	} {
		if mr.Exists(key) {
			t.Fatalf("key %s survived Clear", key)
		}
	}
}

func TestOpenRedisUnreachableGivesUp(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })

	_, err := OpenRedis(context.Background(), client, RedisOptions{
		ConnectTimeout: 200 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected OpenRedis to fail against an unreachable address")
	}
}

func TestOpenRedisNilClient(t *testing.T) {
	if _, err := OpenRedis(context.Background(), nil, RedisOptions{}); err == nil {
		t.Fatal("expected an error for the nil client")
	}
}

func TestRedisUnavailableAfterShutdown(t *testing.T) {
	mr, r := openTestRedis(t)
	mr.Close()

	if _, err := r.AccessToken(context.Background()); err == nil {
		t.Fatal("expected an unavailability error after the backend went away")
	}
}

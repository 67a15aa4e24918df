package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"acadport/cmd/identity"
)

// Integration tests against a real Redis, gated behind
// ACADPORT_TEST_REDIS_ADDR. Keys are namespaced per test run and
// removed afterwards.

func mustOpenTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("ACADPORT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ACADPORT_TEST_REDIS_ADDR not set; skipping Redis integration tests")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("ACADPORT_TEST_REDIS_PASSWORD"),
	})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if os.Getenv("CI") == "" {
			t.Skipf("redis at %s unreachable: %v", addr, err)
		}
		t.Fatalf("redis at %s unreachable: %v", addr, err)
	}
	return client
}

func TestRedisCache_RoundTrip(t *testing.T) {
	client := mustOpenTestRedis(t)
	cache := NewRedisCache(client, 2*time.Second)
	ctx := context.Background()

	const key = "acadport_it:roundtrip"
	t.Cleanup(func() { _ = client.Del(context.Background(), key).Err() })

	if err := cache.SetTTL(ctx, key, "value", time.Minute); err != nil {
		t.Fatalf("SetTTL: %v", err)
	}
	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "value" {
		t.Fatalf("Get=%q", got)
	}

	ok, err := cache.Expire(ctx, key, 2*time.Minute)
	if err != nil || !ok {
		t.Fatalf("Expire: ok=%v err=%v", ok, err)
	}
	ttl, err := client.TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= time.Minute {
		t.Fatalf("TTL not extended: %s", ttl)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := cache.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestRedisCache_MissAndExpireAbsent(t *testing.T) {
	client := mustOpenTestRedis(t)
	cache := NewRedisCache(client, 2*time.Second)
	ctx := context.Background()

	if _, err := cache.Get(ctx, "acadport_it:absent"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	ok, err := cache.Expire(ctx, "acadport_it:absent", time.Minute)
	if err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if ok {
		t.Fatalf("Expire reported success for absent key")
	}
}

func TestManagerOnRedis_LifecycleParity(t *testing.T) {
	client := mustOpenTestRedis(t)
	cache := NewRedisCache(client, 2*time.Second)
	mgr := NewManager(DefaultConfig(), cache, WithLogger(discardLogger()))
	ctx := context.Background()

	student := identity.New(identity.RoleStudent, "IT-REDIS-USN-1")
	t.Cleanup(func() {
		tokVal, err := client.Get(context.Background(), student.Key()).Result()
		if err == nil {
			_ = client.Del(context.Background(), forwardKey(tokVal)).Err()
		}
		_ = client.Del(context.Background(), student.Key()).Err()
	})

	tok, err := mgr.Issue(ctx, student)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	again, err := mgr.Issue(ctx, student)
	if err != nil {
		t.Fatalf("re-Issue: %v", err)
	}
	if again != tok {
		t.Fatalf("live session not reused")
	}

	got, err := mgr.Resolve(ctx, tok)
	if err != nil || got != student {
		t.Fatalf("Resolve: %v %v", got, err)
	}

	if err := mgr.Renew(ctx, student); err != nil {
		t.Fatalf("Renew: %v", err)
	}

	if err := mgr.Revoke(ctx, tok); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := mgr.Resolve(ctx, tok); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("revoked token resolves: %v", err)
	}
}

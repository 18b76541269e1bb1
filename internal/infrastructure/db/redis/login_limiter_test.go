package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLoginLimiter(client, max, window), mr
}

func TestLoginLimiter_BlocksAfterMaxFailures(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "alice")
		if err != nil || !ok {
			t.Fatalf("attempt %d: expected allowed, got %v, %v", i, ok, err)
		}
		if err := l.RecordFailure(ctx, "alice"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}

	ok, err := l.Allow(ctx, "alice")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatalf("expected alice to be blocked")
	}

	if ok, _ := l.Allow(ctx, "bob"); !ok {
		t.Fatalf("expected other usernames to be unaffected")
	}
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if err := l.RecordFailure(ctx, "alice"); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if ok, _ := l.Allow(ctx, "alice"); ok {
		t.Fatalf("expected alice to be blocked")
	}

	mr.FastForward(time.Minute + time.Second)

	if ok, err := l.Allow(ctx, "alice"); err != nil || !ok {
		t.Fatalf("expected alice to be allowed after window, got %v, %v", ok, err)
	}
}

func TestLoginLimiter_Reset(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_ = l.RecordFailure(ctx, "alice")
	if err := l.Reset(ctx, "alice"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if mr.Exists("login_failures:alice") {
		t.Fatalf("expected counter to be deleted")
	}
	if ok, _ := l.Allow(ctx, "alice"); !ok {
		t.Fatalf("expected alice to be allowed after reset")
	}
}

func TestLoginLimiter_RedisDown(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	if _, err := l.Allow(context.Background(), "alice"); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}
